package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent profile switches and lighting changes",
	RunE: func(cmd *cobra.Command, args []string) error {
		loadResult, err := loadConfigForCommand()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg := loadResult.Config
		if !cfg.History.Enabled {
			return errors.New("history is disabled (history.enabled: false)")
		}

		store, err := openHistory(cfg.History.Dir)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer store.Close()

		entries, err := store.Recent(commandContext(cmd), historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No history yet.")
			return nil
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tKIND\tCHANGE\tRESULT")
		for _, e := range entries {
			result := "ok"
			if !e.OK {
				result = "failed: " + e.Error
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Time.Local().Format(time.DateTime), e.Kind, e.Summary, result)
		}
		return tw.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
	rootCmd.AddCommand(historyCmd)
}
