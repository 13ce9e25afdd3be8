// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/ppd/internal/history"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded downloads",
		Long: `History lists the outcomes recorded in the download ledger, newest run
first. The ledger is an SQLite database enabled with --history (or
PPD_HISTORY / "history" in ppd.yaml); runs without it are not recorded.`,
		Args: cobra.NoArgs,
		RunE: a.runHistory,
	}
	cmd.Flags().Int("limit", 50, "maximum number of entries to show (0 for all)")
	cmd.Flags().Bool("yaml", false, "output entries as YAML")
	return cmd
}

func (a *app) runHistory(cmd *cobra.Command, args []string) error {
	cfg := historyConfig(a.v)
	if !cfg.Enabled() {
		return fmt.Errorf("no history database configured (use --history or PPD_HISTORY)")
	}
	cmd.SilenceUsage = true

	limit, _ := cmd.Flags().GetInt("limit")
	asYAML, _ := cmd.Flags().GetBool("yaml")

	store, err := history.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.Recent(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if asYAML {
		return history.WriteYAML(a.stdout, entries)
	}
	return history.WriteTable(a.stdout, entries)
}
