package icd10

// Static reference tables used by the enrichers. These are read-only
// configuration data: package-level values constructed once and never
// mutated at runtime.

// chapterEntry maps a leading code letter to its ICD-10-CM chapter.
type chapterEntry struct {
	Name  string // chapter-level category label
	Range string // coarse range label, e.g. "E00-E89"
}

var chapterByLetter = map[byte]chapterEntry{
	'A': {"Certain infectious and parasitic diseases", "A00-B99"},
	'B': {"Certain infectious and parasitic diseases", "A00-B99"},
	'C': {"Neoplasms", "C00-D49"},
	'D': {"Neoplasms", "C00-D49"},
	'E': {"Endocrine, nutritional and metabolic diseases", "E00-E89"},
	'F': {"Mental, behavioral and neurodevelopmental disorders", "F01-F99"},
	'G': {"Diseases of the nervous system", "G00-G99"},
	'H': {"Diseases of the eye, adnexa, ear and mastoid process", "H00-H95"},
	'I': {"Diseases of the circulatory system", "I00-I99"},
	'J': {"Diseases of the respiratory system", "J00-J99"},
	'K': {"Diseases of the digestive system", "K00-K95"},
	'L': {"Diseases of the skin and subcutaneous tissue", "L00-L99"},
	'M': {"Diseases of the musculoskeletal system and connective tissue", "M00-M99"},
	'N': {"Diseases of the genitourinary system", "N00-N99"},
	'O': {"Pregnancy, childbirth and the puerperium", "O00-O9A"},
	'P': {"Certain conditions originating in the perinatal period", "P00-P96"},
	'Q': {"Congenital malformations, deformations and chromosomal abnormalities", "Q00-Q99"},
	'R': {"Symptoms, signs and abnormal clinical and laboratory findings", "R00-R99"},
	'S': {"Injury, poisoning and certain other consequences of external causes", "S00-T88"},
	'T': {"Injury, poisoning and certain other consequences of external causes", "S00-T88"},
	'V': {"External causes of morbidity", "V00-Y99"},
	'W': {"External causes of morbidity", "V00-Y99"},
	'X': {"External causes of morbidity", "V00-Y99"},
	'Y': {"External causes of morbidity", "V00-Y99"},
	'Z': {"Factors influencing health status and contact with health services", "Z00-Z99"},
}

// subRange is a finer category block within a chapter. Lo and Hi are the
// inclusive 3-character bounds of the block.
type subRange struct {
	Lo, Hi string
	Label  string
}

// subRangesByLetter holds the finer sub-range categories, scoped by the
// code's leading letter. A 3-character base falling lexicographically
// within [Lo, Hi] classifies to the block label instead of the chapter.
var subRangesByLetter = map[byte][]subRange{
	'A': {
		{"A00", "A09", "Intestinal infectious diseases"},
		{"A15", "A19", "Tuberculosis"},
		{"A30", "A49", "Other bacterial diseases"},
	},
	'C': {
		{"C00", "C14", "Malignant neoplasms of lip, oral cavity and pharynx"},
		{"C15", "C26", "Malignant neoplasms of digestive organs"},
		{"C30", "C39", "Malignant neoplasms of respiratory and intrathoracic organs"},
		{"C50", "C50", "Malignant neoplasms of breast"},
	},
	'E': {
		{"E00", "E07", "Disorders of thyroid gland"},
		{"E08", "E13", "Diabetes mellitus"},
		{"E65", "E68", "Overweight, obesity and other hyperalimentation"},
		{"E70", "E88", "Metabolic disorders"},
	},
	'F': {
		{"F10", "F19", "Mental and behavioral disorders due to psychoactive substance use"},
		{"F30", "F39", "Mood [affective] disorders"},
		{"F40", "F48", "Anxiety, dissociative, stress-related disorders"},
	},
	'G': {
		{"G40", "G47", "Episodic and paroxysmal disorders"},
		{"G89", "G99", "Other disorders of the nervous system"},
	},
	'I': {
		{"I10", "I16", "Hypertensive diseases"},
		{"I20", "I25", "Ischemic heart diseases"},
		{"I30", "I52", "Other forms of heart disease"},
		{"I60", "I69", "Cerebrovascular diseases"},
		{"I70", "I79", "Diseases of arteries, arterioles and capillaries"},
	},
	'J': {
		{"J00", "J06", "Acute upper respiratory infections"},
		{"J09", "J18", "Influenza and pneumonia"},
		{"J40", "J47", "Chronic lower respiratory diseases"},
	},
	'K': {
		{"K20", "K31", "Diseases of esophagus, stomach and duodenum"},
		{"K70", "K77", "Diseases of liver"},
	},
	'M': {
		{"M15", "M19", "Osteoarthritis"},
		{"M40", "M54", "Dorsopathies"},
		{"M80", "M85", "Disorders of bone density and structure"},
	},
	'N': {
		{"N00", "N08", "Glomerular diseases"},
		{"N17", "N19", "Acute kidney failure and chronic kidney disease"},
		{"N39", "N39", "Other disorders of the urinary system"},
	},
	'R': {
		{"R00", "R09", "Symptoms and signs involving the circulatory and respiratory systems"},
		{"R50", "R69", "General symptoms and signs"},
	},
	'S': {
		{"S00", "S09", "Injuries to the head"},
		{"S60", "S69", "Injuries to the wrist, hand and fingers"},
		{"S70", "S79", "Injuries to the hip and thigh"},
		{"S80", "S89", "Injuries to the knee and lower leg"},
	},
	'Z': {
		{"Z00", "Z13", "Persons encountering health services for examinations"},
		{"Z79", "Z79", "Long term (current) drug therapy"},
	},
}

// curatedNotes are authoritative inclusion/exclusion notes keyed by code
// prefix. Lookup picks the longest matching prefix.
var curatedNotes = map[string]Notes{
	"E10": {
		Inclusion: []string{"Juvenile onset diabetes", "Ketosis-prone diabetes"},
		Exclusion: []string{"Type 2 diabetes mellitus", "Gestational diabetes", "Neonatal diabetes mellitus"},
	},
	"E11": {
		Inclusion: []string{"Adult-onset diabetes", "Insulin-resistant diabetes", "Stable diabetes"},
		Exclusion: []string{"Type 1 diabetes mellitus", "Gestational diabetes", "Secondary diabetes mellitus"},
	},
	"I10": {
		Inclusion: []string{"High blood pressure", "Essential hypertension", "Benign hypertension"},
		Exclusion: []string{"Hypertensive disease complicating pregnancy", "Neonatal hypertension", "Pulmonary hypertension"},
	},
	"I21": {
		Inclusion: []string{"Acute myocardial infarction", "Coronary artery thrombosis"},
		Exclusion: []string{"Old myocardial infarction", "Subsequent myocardial infarction"},
	},
	"J44": {
		Inclusion: []string{"Chronic bronchitis with emphysema", "Chronic obstructive asthma"},
		Exclusion: []string{"Simple chronic bronchitis", "Emphysema without chronic bronchitis"},
	},
	"J45": {
		Inclusion: []string{"Allergic asthma", "Atopic asthma", "Extrinsic allergic asthma"},
		Exclusion: []string{"Chronic obstructive asthma", "Eosinophilic asthma"},
	},
	"N18": {
		Inclusion: []string{"Chronic uremia", "Diffuse sclerosing glomerulonephritis"},
		Exclusion: []string{"Acute kidney failure", "Hypertensive chronic kidney disease"},
	},
	"F32": {
		Inclusion: []string{"Single episode of depressive reaction", "Single episode of psychogenic depression"},
		Exclusion: []string{"Bipolar disorder", "Recurrent depressive disorder"},
	},
}

// abbreviations maps clinical abbreviations to their expansions. The
// synonym generator applies it in both directions: a description that
// contains the abbreviation gains the expansion, and vice versa.
var abbreviations = map[string]string{
	"COPD":  "chronic obstructive pulmonary disease",
	"CHF":   "congestive heart failure",
	"CAD":   "coronary artery disease",
	"CKD":   "chronic kidney disease",
	"HTN":   "hypertension",
	"DM":    "diabetes mellitus",
	"MI":    "myocardial infarction",
	"CVA":   "cerebrovascular accident",
	"GERD":  "gastroesophageal reflux disease",
	"UTI":   "urinary tract infection",
	"URI":   "upper respiratory infection",
	"AFib":  "atrial fibrillation",
	"DVT":   "deep vein thrombosis",
	"TIA":   "transient ischemic attack",
	"RA":    "rheumatoid arthritis",
	"OSA":   "obstructive sleep apnea",
}

// termVariations maps clinical terms found in a description to the lay
// or alternate terms added as synonyms.
var termVariations = map[string][]string{
	"hypertension":            {"high blood pressure", "elevated blood pressure"},
	"diabetes mellitus":       {"diabetes"},
	"myocardial infarction":   {"heart attack"},
	"cerebrovascular accident": {"stroke"},
	"hyperlipidemia":          {"high cholesterol"},
	"pyrexia":                 {"fever"},
	"cephalgia":               {"headache"},
	"dyspnea":                 {"shortness of breath"},
	"pruritus":                {"itching"},
	"emesis":                  {"vomiting"},
	"renal failure":           {"kidney failure"},
	"neoplasm":                {"tumor"},
}

// curatedSynonyms are per-prefix synonym overrides, longest-prefix
// matched like curatedNotes.
var curatedSynonyms = map[string][]string{
	"E10": {"T1DM", "Insulin-dependent diabetes", "Juvenile diabetes"},
	"E11": {"T2DM", "Non-insulin-dependent diabetes", "Adult-onset diabetes"},
	"I10": {"HTN", "High blood pressure", "Essential hypertension"},
	"I21": {"Heart attack", "Acute MI", "STEMI"},
	"I50": {"CHF", "Congestive heart failure", "Cardiac failure"},
	"J44": {"COPD", "Chronic obstructive lung disease"},
	"J45": {"Bronchial asthma", "Reactive airway disease"},
	"N18": {"CKD", "Chronic renal failure", "Chronic renal insufficiency"},
	"M54": {"Back pain", "Dorsalgia"},
	"F32": {"Major depression", "Unipolar depression", "Clinical depression"},
	"G43": {"Migraine headache", "Sick headache"},
	"K21": {"GERD", "Acid reflux", "Reflux esophagitis"},
}

// longestPrefix returns the longest key in keys that is a prefix of
// code, or "" when none matches. Keys are probed from the full code down
// so a more specific entry always wins over a broader one.
func longestPrefix(code string, has func(string) bool) string {
	for i := len(code); i >= 1; i-- {
		if has(code[:i]) {
			return code[:i]
		}
	}
	return ""
}
