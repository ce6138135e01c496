// Package main provides the CSV export and backup tool.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/kyotei-note/internal/config"
	"github.com/yourusername/kyotei-note/internal/database"
	"github.com/yourusername/kyotei-note/internal/export"
	"github.com/yourusername/kyotei-note/internal/health"
	"github.com/yourusername/kyotei-note/internal/logger"
	"github.com/yourusername/kyotei-note/internal/metrics"
	"github.com/yourusername/kyotei-note/internal/repository"
	"github.com/yourusername/kyotei-note/internal/scheduler"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configFile string
	outputPath string
	appLogger  *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	runCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: dated backup in the configured output dir)")
	rootCmd.AddCommand(runCmd, daemonCmd)
}

var rootCmd = &cobra.Command{
	Use:   "export",
	Short: "Dump the record table to CSV",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = loadConfigWithSecrets(configFile)
		if err != nil {
			return err
		}
		appLogger = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Write one CSV dump now",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		exporter, db, err := buildExporter(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		if outputPath != "" {
			rows, err := exporter.WriteFile(ctx, outputPath)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %d records to %s\n", rows, outputPath)
			return nil
		}

		path, rows, err := exporter.Backup(ctx, cfg.Export.OutputDir)
		if err != nil {
			return err
		}
		fmt.Printf("Wrote %d records to %s\n", rows, path)
		return nil
	},
}

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the scheduled daily backup job",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Export.BackupSchedule == "" {
			return fmt.Errorf("export.backup_schedule is empty, nothing to run")
		}

		ctx := context.Background()
		exporter, db, err := buildExporter(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		sched := scheduler.NewScheduler(exporter, appLogger)
		if err := sched.ScheduleDailyBackup(cfg.Export.BackupSchedule, cfg.Export.OutputDir); err != nil {
			return err
		}

		healthCtx, healthCancel := context.WithCancel(ctx)
		defer healthCancel()
		healthServer := health.NewServer(health.Config{
			ServiceName: "kyotei-note-export",
			Version:     version,
			Logger:      appLogger,
			DB:          db,
			Scheduler:   sched,
		})
		if err := healthServer.Start(healthCtx); err != nil {
			return err
		}

		if err := sched.Start(); err != nil {
			return err
		}
		healthServer.SetReady(true)
		appLogger.WithField("next_run", sched.GetNextRun()).Info("Backup daemon started")

		var metricsServer *http.Server
		if cfg.Metrics.Enabled {
			metricsServer = startMetricsServer()
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		appLogger.Info("Shutting down")
		healthServer.SetReady(false)
		if metricsServer != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(shutdownCtx); err != nil {
				appLogger.WithError(err).Warn("Metrics server shutdown failed")
			}
		}
		return sched.Stop()
	},
}

func buildExporter(ctx context.Context) (*export.Exporter, *database.DB, error) {
	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize record store: %w", err)
	}

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return export.NewExporter(repos.Record, appLogger), db, nil
}

func startMetricsServer() *http.Server {
	path := cfg.Metrics.Path
	if path == "" {
		path = "/metrics"
	}

	mux := http.NewServeMux()
	mux.Handle(path, metrics.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
		Handler: mux,
	}
	go func() {
		appLogger.WithField("addr", server.Addr).Info("Metrics server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Error("Metrics server failed")
		}
	}()
	return server
}

func loadConfigWithSecrets(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
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
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
