// Package main provides the racer tendency report CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/kyotei-note/internal/config"
	"github.com/yourusername/kyotei-note/internal/database"
	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/repository"
	"github.com/yourusername/kyotei-note/internal/stats"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

var (
	configFile string
	playerName string
	laneNo     int
	drillMove  string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	rootCmd.Flags().StringVarP(&playerName, "name", "n", "", "Racer name")
	rootCmd.Flags().IntVarP(&laneNo, "lane", "l", 0, "Starting lane (1..6)")
	rootCmd.Flags().StringVarP(&drillMove, "move", "m", "", "Drill into one move instead of the summary")
	rootCmd.MarkFlagRequired("name")
	rootCmd.MarkFlagRequired("lane")
}

var rootCmd = &cobra.Command{
	Use:   "racer-stats",
	Short: "Report a racer's per-lane tendencies",
	Long:  `Aggregates a racer's stored records from one starting lane into move shares, finish counts, tag rates and start-timing spread.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if laneNo < 1 || laneNo > 6 {
			return fmt.Errorf("lane %d must be 1..6", laneNo)
		}
		return run()
	},
}

func run() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize record store: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	history, err := repos.Record.HistoryByRacerAndLane(ctx, playerName, laneNo)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if drillMove != "" {
		return printDrillDown(history)
	}
	return printSummary(history)
}

func printSummary(history []*models.Record) error {
	summary, err := stats.Summarize(history)
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			fmt.Printf("No records for %s from lane %d\n", playerName, laneNo)
			return nil
		}
		return err
	}

	fmt.Printf("%s, lane %d: %d races\n\n", playerName, summary.Lane, summary.Total)

	fmt.Println("Moves:")
	for _, g := range summary.Moves {
		fmt.Printf("  %-28s %4d  %6s%%   1st %d / 2nd %d / 3rd %d / out %d\n",
			g.Move, g.Count, g.Share.String(), g.Wins, g.Seconds, g.Thirds, g.OutOfMoney)
	}

	if len(summary.TagRates) > 0 {
		fmt.Println("\nTag rates:")
		for _, t := range summary.TagRates {
			fmt.Printf("  %-24s %4d  %6s%%\n", t.Tag, t.Count, t.Rate.String())
		}
	}

	if len(summary.STEvals) > 0 {
		fmt.Println("\nStart timing:")
		for _, b := range summary.STEvals {
			fmt.Printf("  %-8s %4d  %6s%%\n", b.Label, b.Count, b.Share.String())
		}
	}
	return nil
}

func printDrillDown(history []*models.Record) error {
	detail, err := stats.DrillDown(history, taxonomy.Move(drillMove))
	if err != nil {
		if errors.Is(err, models.ErrNoData) {
			fmt.Printf("No %q records for %s from lane %d\n", drillMove, playerName, laneNo)
			return nil
		}
		return err
	}

	fmt.Printf("%s, lane %d, move %s: %d races\n", playerName, laneNo, detail.Move, detail.Count)
	printBreakdown("Second place", detail.SecondPlace)
	printBreakdown("Lost to", detail.LostTo)
	printBreakdown("Ranks", detail.Ranks)
	return nil
}

func printBreakdown(title string, rows []stats.Breakdown) {
	if len(rows) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, b := range rows {
		fmt.Printf("  %-10s %4d  %6s%%\n", b.Label, b.Count, b.Share.String())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
