// Package main provides the racecard snapshot prefetcher.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/kyotei-note/internal/config"
	"github.com/yourusername/kyotei-note/internal/datasource"
	"github.com/yourusername/kyotei-note/internal/logger"
	"github.com/yourusername/kyotei-note/internal/metrics"
	"github.com/yourusername/kyotei-note/internal/models"
)

var (
	configFile string
	dateStr    string
	venues     []string
	appLogger  *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&dateStr, "date", "d", time.Now().Format("20060102"), "Race day (YYYYMMDD)")
	rootCmd.Flags().StringSliceVarP(&venues, "venue", "v", nil, "Venue name, repeatable")
	rootCmd.MarkFlagRequired("venue")
}

var rootCmd = &cobra.Command{
	Use:   "save-racecard",
	Short: "Pre-fetch a day's race cards into the local snapshot dir",
	Long:  `Fetches races 1..12 for each venue from the official site and writes them as local snapshot files, so annotation works offline and survives the site dropping old cards.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		if err := config.Validate(cfg); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		appLogger = logger.NewLogger(cfg.App.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return run()
	},
}

func run() error {
	if _, err := time.Parse("20060102", dateStr); err != nil {
		return fmt.Errorf("invalid date %q: %w", dateStr, err)
	}
	for _, venue := range venues {
		if _, ok := models.VenueCode(venue); !ok {
			return fmt.Errorf("unknown venue %q", venue)
		}
	}

	snapshots, err := datasource.NewSnapshotStore(cfg.Source.SnapshotDir)
	if err != nil {
		return fmt.Errorf("failed to open snapshot dir: %w", err)
	}

	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.Source.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.Source.MaxRetries
	httpCfg.RateLimit = cfg.Source.RateLimit
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, appLogger)
	defer httpClient.Close()

	client := datasource.NewBoatraceClient(httpClient, cfg.Source.BaseURL, appLogger)

	ctx := context.Background()
	saved, skipped := 0, 0
	for _, venue := range venues {
		for raceNo := 1; raceNo <= 12; raceNo++ {
			key := datasource.RaceKey{Date: dateStr, VenueName: venue, RaceNumber: raceNo}

			start := time.Now()
			rows, err := client.FetchCard(ctx, key)
			if err != nil {
				if errors.Is(err, datasource.ErrCardNotPublished) {
					metrics.RecordCardFetch("not_published", time.Since(start).Seconds())
					appLogger.WithField("race", key.String()).Warn("Card not published, skipped")
					skipped++
					continue
				}
				metrics.RecordCardFetch("unreachable", time.Since(start).Seconds())
				return fmt.Errorf("failed to fetch %s: %w", key.String(), err)
			}
			metrics.RecordCardFetch("ok", time.Since(start).Seconds())

			if err := snapshots.Save(key, rows); err != nil {
				return fmt.Errorf("failed to save %s: %w", key.String(), err)
			}
			saved++
		}
	}

	fmt.Printf("Saved %d cards, skipped %d\n", saved, skipped)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
