package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/icd10-loader/internal/config"
	"github.com/ehr/icd10-loader/internal/domain/icd10"
	"github.com/ehr/icd10-loader/internal/platform/db"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "icd10-loader",
		Short: "ICD-10 code enrichment and hierarchical loading pipeline",
	}

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(loadCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	return logger
}

func setup(ctx context.Context) (*config.Config, *icd10.Service, func(), error) {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connect to database: %w", err)
	}

	repo := icd10.NewCodeRepoPG(pool)
	svc := icd10.NewService(repo, logger, cfg.ChunkSize, cfg.SourceLabel)
	return cfg, svc, pool.Close, nil
}

func printReport(report *icd10.RunReport) error {
	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Enrich the stored reference table and write the result back",
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			ctx := context.Background()
			_, svc, closePool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closePool()

			report, err := svc.Run(ctx, limit)
			if err != nil {
				return err
			}
			return printReport(report)
		},
	}
	cmd.Flags().Int("limit", 0, "Process at most N codes (0 = all), for sampled runs")
	return cmd
}

func loadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <codes.json>",
		Short: "Ingest a JSON array of code records, enrich and persist them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read input file: %w", err)
			}

			var records []*icd10.CodeRecord
			if err := json.Unmarshal(data, &records); err != nil {
				return fmt.Errorf("parse input file: %w", err)
			}

			ctx := context.Background()
			_, svc, closePool, err := setup(ctx)
			if err != nil {
				return err
			}
			defer closePool()

			report, err := svc.LoadRecords(ctx, records)
			if err != nil {
				return err
			}
			return printReport(report)
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, cfg.MigrationsDir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	return cmd
}
