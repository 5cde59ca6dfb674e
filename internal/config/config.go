package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Env           string `mapstructure:"ENV"`
	DatabaseURL   string `mapstructure:"DATABASE_URL"`
	DBMaxConns    int32  `mapstructure:"DB_MAX_CONNS"`
	DBMinConns    int32  `mapstructure:"DB_MIN_CONNS"`
	ChunkSize     int    `mapstructure:"CHUNK_SIZE"`
	SourceLabel   string `mapstructure:"SOURCE_LABEL"`
	MigrationsDir string `mapstructure:"MIGRATIONS_DIR"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("CHUNK_SIZE", 1000)
	v.SetDefault("SOURCE_LABEL", "cms-icd10")
	v.SetDefault("MIGRATIONS_DIR", "./migrations")

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("CHUNK_SIZE")
	v.BindEnv("SOURCE_LABEL")
	v.BindEnv("MIGRATIONS_DIR")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks that the configuration is safe to run a load with.
func (c *Config) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	return nil
}
