// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/aigrok/internal/config"
	"github.com/pdiddy/aigrok/internal/history"
	"github.com/pdiddy/aigrok/internal/logging"
)

func newHistoryCmd(a *app, root *rootOptions) *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent aigrok runs",
		Long: `History lists the runs recorded in the history database, newest first.
Runs are recorded only when history.enabled is set in the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.Get()
			mgr := config.NewManager(root.configFile, log)
			if err := mgr.Load(); err != nil {
				return err
			}
			store, err := history.Open(mgr.Config.History.Path)
			if err != nil {
				return err
			}
			defer store.Close()

			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if asJSON {
				return writeRunsJSON(a.stdout, runs)
			}
			writeRuns(a.stdout, runs)
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of runs to list")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output runs as JSON")
	return cmd
}

func writeRunsJSON(w io.Writer, runs []history.Run) error {
	if runs == nil {
		runs = []history.Run{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(runs)
}

func writeRuns(w io.Writer, runs []history.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs recorded.")
		return
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %s  %s  %d files, %d failed\n",
			r.StartedAt.Local().Format(time.DateTime), r.ID, r.Format, len(r.Entries), r.Failed())
		if r.Prompt != "" {
			fmt.Fprintf(w, "  prompt: %s\n", r.Prompt)
		}
		for _, e := range r.Entries {
			switch {
			case !e.Success:
				fmt.Fprintf(w, "  FAIL %s: %s\n", e.Filename, e.Error)
			case e.PageCount > 0:
				fmt.Fprintf(w, "  ok   %s (%d pages)\n", e.Filename, e.PageCount)
			default:
				fmt.Fprintf(w, "  ok   %s\n", e.Filename)
			}
		}
	}
}
