package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yourusername/kyotei-note/internal/models"
	"github.com/yourusername/kyotei-note/internal/scenario"
)

var scFactor string

func init() {
	scenarioCmd.AddCommand(scListCmd, scAddCmd, scDeleteCmd, scCountCmd)
	scAddCmd.Flags().StringVar(&scFactor, "factor", "", "Causal factor note")
	rootCmd.AddCommand(scenarioCmd)
}

var scenarioCmd = &cobra.Command{
	Use:   "scenario",
	Short: "Manage the race-development pattern dictionary",
}

func scenarioStore() *scenario.Store {
	return scenario.NewStore(cfg.Scenario.FilePath, appLogger)
}

var scListCmd = &cobra.Command{
	Use:   "list [category]",
	Short: "List patterns of one category, or all categories",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := scenarioStore()
		categories := models.ScenarioCategories
		if len(args) == 1 {
			categories = []models.ScenarioCategory{models.ScenarioCategory(args[0])}
		}
		for _, cat := range categories {
			patterns, err := store.Patterns(cat)
			if err != nil {
				return err
			}
			if len(patterns) == 0 {
				continue
			}
			fmt.Printf("%s:\n", cat)
			for _, p := range patterns {
				fmt.Printf("  %-20s %s\n", p.Label, p.Factor)
				for _, o := range p.Outcomes {
					fmt.Printf("    %-8s x%d\n", o.FinishOrder, o.Count)
				}
			}
		}
		return nil
	},
}

var scAddCmd = &cobra.Command{
	Use:   "add <category> <label>",
	Short: "Register a new pattern",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scenarioStore().Add(models.ScenarioCategory(args[0]), models.ScenarioPattern{
			Label:  args[1],
			Factor: scFactor,
		})
	},
}

var scDeleteCmd = &cobra.Command{
	Use:   "delete <category> <label>",
	Short: "Delete a pattern",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scenarioStore().Delete(models.ScenarioCategory(args[0]), args[1])
	},
}

var scCountCmd = &cobra.Command{
	Use:   "count <category> <label> <finish-order>",
	Short: "Record one observed finish order under a pattern",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return scenarioStore().IncrementOutcome(models.ScenarioCategory(args[0]), args[1], args[2])
	},
}
