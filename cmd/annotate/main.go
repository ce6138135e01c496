// Package main provides the race annotation CLI.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/kyotei-note/internal/config"
	"github.com/yourusername/kyotei-note/internal/database"
	"github.com/yourusername/kyotei-note/internal/datasource"
	"github.com/yourusername/kyotei-note/internal/logger"
	"github.com/yourusername/kyotei-note/internal/metrics"
	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/repository"
	"github.com/yourusername/kyotei-note/internal/session"
	"github.com/yourusername/kyotei-note/internal/shortcut"
	"github.com/yourusername/kyotei-note/internal/taxonomy"
)

var (
	configFile string
	raceFile   string
	appLogger  *logrus.Logger
	cfg        *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "./config/config.yaml", "Path to configuration file")
	submitCmd.Flags().StringVarP(&raceFile, "file", "f", "", "Path to the annotated race document (JSON)")
	submitCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(cardCmd, submitCmd)
}

var rootCmd = &cobra.Command{
	Use:   "annotate",
	Short: "Record manual race annotations",
	Long:  `Fetches race cards, expands outcome shortcuts and persists per-boat race records.`,
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

var cardCmd = &cobra.Command{
	Use:   "card <date YYYYMMDD> <venue> <race 1..12>",
	Short: "Fetch and print one race card",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		raceNo, err := strconv.Atoi(args[2])
		if err != nil || raceNo < 1 || raceNo > 12 {
			return fmt.Errorf("race number %q must be 1..12", args[2])
		}

		source, cleanup, err := buildSource(cfg, appLogger)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		key := datasource.RaceKey{Date: args[0], VenueName: args[1], RaceNumber: raceNo}
		rows, err := source.FetchCard(ctx, key)
		if err != nil {
			return fmt.Errorf("failed to fetch card %s: %w", key.String(), err)
		}
		for _, row := range rows {
			fmt.Printf("%d  %s\n", row.BoatNumber, row.Name)
		}
		return nil
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Build and persist the six records of one annotated race",
	RunE: func(cmd *cobra.Command, args []string) error {
		doc, err := loadRaceDocument(raceFile)
		if err != nil {
			return err
		}
		return submitRace(doc)
	},
}

// raceDocument is the on-disk shape of one annotated race.
type raceDocument struct {
	Date       string                  `json:"date"`
	VenueName  string                  `json:"venue_name"`
	RaceNumber int                     `json:"race_number"`
	Order      []int                   `json:"order"`
	Shortcuts  map[string]string       `json:"shortcuts"`
	Boats      map[string]boatDocument `json:"boats"`
}

type boatDocument struct {
	PlayerName  string         `json:"player_name"`
	Move        string         `json:"move"`
	Rank        string         `json:"rank"`
	SecondPlace *int           `json:"second_place"`
	LostTo      *int           `json:"lost_to"`
	Tags        map[string]int `json:"tags"`
	STEval      string         `json:"st_eval"`
}

func loadRaceDocument(path string) (*raceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read race document: %w", err)
	}
	var doc raceDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse race document: %w", err)
	}
	return &doc, nil
}

func submitRace(doc *raceDocument) error {
	date, err := time.Parse("2006-01-02", doc.Date)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", doc.Date, err)
	}

	ctx := context.Background()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize record store: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	source, cleanup, err := buildSource(cfg, appLogger)
	if err != nil {
		return err
	}
	defer cleanup()

	audit := logger.NewSessionLogger(appLogger)
	sess := session.New(appLogger)
	sess.SetRace(session.RaceIdentity{
		Date:       date,
		VenueName:  doc.VenueName,
		RaceNumber: doc.RaceNumber,
	})

	loadCard(ctx, sess, source, audit, date, doc)

	if len(doc.Order) > 0 {
		sess.SetOrder(doc.Order)
	}

	if err := applyShortcuts(sess, doc.Shortcuts); err != nil {
		return err
	}
	if err := applyBoats(sess, doc.Boats); err != nil {
		return err
	}

	result, err := session.NewSubmitter(repos.Record, audit).Submit(ctx, sess)
	if err != nil {
		return err
	}

	for _, b := range result.Boats {
		line := fmt.Sprintf("boat %d  %-12s %s", b.Boat, b.PlayerName, b.Status)
		if b.Err != nil {
			line += "  (" + b.Err.Error() + ")"
		}
		fmt.Println(line)
	}
	fmt.Printf("saved %d, duplicates %d, rejected %d\n",
		result.Saved(), result.Skipped(), result.Rejected())
	return nil
}

// loadCard seeds racer names from the card source, degrading to an empty
// list when the card is unavailable.
func loadCard(ctx context.Context, sess *session.Session, source datasource.CardSource, audit *logger.SessionLogger, date time.Time, doc *raceDocument) {
	key := datasource.RaceKey{
		Date:       date.Format("20060102"),
		VenueName:  doc.VenueName,
		RaceNumber: doc.RaceNumber,
	}

	start := time.Now()
	rows, err := source.FetchCard(ctx, key)
	if err != nil {
		outcome := "unreachable"
		if errors.Is(err, datasource.ErrCardNotPublished) {
			outcome = "not_published"
		}
		metrics.RecordCardFetch(outcome, time.Since(start).Seconds())
		audit.LogCardFallback(key.String(), err.Error())
		return
	}
	metrics.RecordCardFetch("ok", time.Since(start).Seconds())
	sess.LoadCard(rows)
}

func applyShortcuts(sess *session.Session, shortcuts map[string]string) error {
	for _, family := range []shortcut.Family{shortcut.FamilyEscape, shortcut.FamilyMakuri, shortcut.FamilyMakurizashi} {
		key, ok := shortcuts[string(family)]
		if !ok || key == "" {
			continue
		}
		if _, err := sess.ApplyShortcut(family, key); err != nil {
			return fmt.Errorf("shortcut %s=%q: %w", family, key, err)
		}
	}
	return nil
}

func applyBoats(sess *session.Session, boats map[string]boatDocument) error {
	for boatStr, b := range boats {
		boat, err := strconv.Atoi(boatStr)
		if err != nil || boat < 1 || boat > 6 {
			return fmt.Errorf("boat key %q must be 1..6", boatStr)
		}
		if b.PlayerName != "" {
			sess.SetPlayerName(boat, b.PlayerName)
		}
		if b.Move != "" {
			sess.SetMove(boat, taxonomy.Move(b.Move))
		}
		if b.Rank != "" {
			sess.SetRank(boat, models.Rank(b.Rank))
		}
		if b.SecondPlace != nil {
			sess.SetSecondPlace(boat, *b.SecondPlace)
		}
		if b.LostTo != nil {
			sess.SetLostTo(boat, *b.LostTo)
		}
		for tag, v := range b.Tags {
			sess.SetTag(boat, taxonomy.Tag(tag), v)
		}
		if b.STEval != "" {
			sess.SetSTEval(boat, models.STEval(b.STEval))
		}
	}
	return nil
}

func buildSource(cfg *config.Config, log *logrus.Logger) (datasource.CardSource, func(), error) {
	snapshots, err := datasource.NewSnapshotStore(cfg.Source.SnapshotDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open snapshot dir: %w", err)
	}

	httpCfg := datasource.DefaultHTTPClientConfig()
	httpCfg.Timeout = time.Duration(cfg.Source.TimeoutSeconds) * time.Second
	httpCfg.MaxRetries = cfg.Source.MaxRetries
	httpCfg.RateLimit = cfg.Source.RateLimit
	httpClient := datasource.NewRateLimitedHTTPClient(httpCfg, log)

	network := datasource.NewBoatraceClient(httpClient, cfg.Source.BaseURL, log)
	tiered := datasource.NewTieredSource(snapshots, network)
	cached := datasource.NewCachedSource(tiered, time.Duration(cfg.Source.CacheTTLSeconds)*time.Second)

	cleanup := func() {
		_, _, ratio := cached.Stats()
		metrics.UpdateCardCacheHitRatio(ratio)
		httpClient.Close()
	}
	return cached, cleanup, nil
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
