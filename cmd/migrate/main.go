// Package main provides the schema migration runner.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"github.com/yourusername/kyotei-note/internal/config"
)

var (
	configFile     string
	migrationsPath string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVarP(&migrationsPath, "path", "p", "./migrations", "Path to migration files")
	rootCmd.AddCommand(upCmd, downCmd, versionCmd)
}

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the record store schema",
	Long:  `Applies and reverts the versioned race_data schema migrations. Running up is idempotent.`,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrate()
		if err != nil {
			return err
		}
		defer closeMigrate(m)

		if err := m.Up(); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("Schema already up to date")
				return nil
			}
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
		fmt.Println("Migrations applied")
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrate()
		if err != nil {
			return err
		}
		defer closeMigrate(m)

		if err := m.Steps(-1); err != nil {
			if errors.Is(err, migrate.ErrNoChange) {
				fmt.Println("Nothing to revert")
				return nil
			}
			return fmt.Errorf("failed to revert migration: %w", err)
		}
		fmt.Println("Migration reverted")
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newMigrate()
		if err != nil {
			return err
		}
		defer closeMigrate(m)

		version, dirty, err := m.Version()
		if err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("No migrations applied yet")
				return nil
			}
			return fmt.Errorf("failed to read schema version: %w", err)
		}
		fmt.Printf("Schema version: %d (dirty: %v)\n", version, dirty)
		return nil
	},
}

func newMigrate() (*migrate.Migrate, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	m, err := migrate.New("file://"+migrationsPath, cfg.GetDatabaseDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return m, nil
}

func closeMigrate(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Printf("migration source close error: %v", srcErr)
	}
	if dbErr != nil {
		log.Printf("migration database close error: %v", dbErr)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
