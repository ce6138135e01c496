package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/watchlist"
)

var (
	wlLane int
	wlNote string
	wlMark string
)

func init() {
	watchlistCmd.AddCommand(wlListCmd, wlAddCmd, wlEditCmd, wlDeleteCmd, wlDayCmd)
	for _, c := range []*cobra.Command{wlAddCmd, wlEditCmd} {
		c.Flags().IntVar(&wlLane, "lane", 0, "Starting lane (1..6)")
		c.Flags().StringVar(&wlNote, "note", "", "Free-form note")
		c.Flags().StringVar(&wlMark, "mark", string(models.MarkWatch), "Mark: good or watch")
	}
	wlDeleteCmd.Flags().IntVar(&wlLane, "lane", 0, "Starting lane (1..6)")
	rootCmd.AddCommand(watchlistCmd)
}

var watchlistCmd = &cobra.Command{
	Use:   "watchlist",
	Short: "Manage the target racer list",
}

func watchlistStore() *watchlist.Store {
	return watchlist.NewStore(cfg.Watchlist.FilePath, appLogger)
}

var wlListCmd = &cobra.Command{
	Use:   "list [query]",
	Short: "List entries, optionally filtered by name substring",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		entries, err := watchlistStore().Search(query)
		if err != nil {
			return err
		}
		for _, e := range entries {
			fmt.Printf("%-12s lane %d  %-5s  %s\n", e.Name, e.Lane, e.Mark, e.Note)
		}
		return nil
	},
}

var wlAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchlistStore().Add(models.WatchlistEntry{
			Name: args[0],
			Lane: wlLane,
			Note: wlNote,
			Mark: models.WatchlistMark(wlMark),
		})
	},
}

var wlEditCmd = &cobra.Command{
	Use:   "edit <name>",
	Short: "Replace the entry for a name and lane",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchlistStore().Edit(args[0], wlLane, models.WatchlistEntry{
			Name: args[0],
			Lane: wlLane,
			Note: wlNote,
			Mark: models.WatchlistMark(wlMark),
		})
	},
}

var wlDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete the entry for a name and lane",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return watchlistStore().Delete(args[0], wlLane)
	},
}

var wlDayCmd = &cobra.Command{
	Use:   "day <date YYYYMMDD> <venue>...",
	Short: "Show listed racers on a day's saved cards",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		source, cleanup, err := buildSource(cfg, appLogger)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		hits, err := watchlistStore().DayView(ctx, source, args[0], args[1:])
		if err != nil {
			return err
		}
		if len(hits) == 0 {
			fmt.Println("No listed racers found")
			return nil
		}
		for _, h := range hits {
			fmt.Printf("%s R%-2d  %-12s drawn lane %d (listed lane %d, %s)  %s\n",
				h.VenueName, h.RaceNumber, h.Entry.Name, h.DrawnLane, h.Entry.Lane, h.Entry.Mark, h.Entry.Note)
		}
		return nil
	},
}
