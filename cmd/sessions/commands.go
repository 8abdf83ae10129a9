package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/whisper/recent-sessions/internal/metrics"
	"github.com/whisper/recent-sessions/internal/recent"
)

func touchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "touch <session-id>",
		Short:       "Mark a session as just used",
		Annotations: usesStore(),
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Upsert(cmd.Context(), args[0])
		},
	}
}

func newCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "new",
		Short:       "Create a session ID, record it and print it",
		Annotations: usesStore(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := uuid.NewString()
			if err := a.store.Upsert(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
}

func listCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List sessions used in the last 7 days, newest first",
		Annotations: usesStore(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.store.ListRecent(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), records)
			}
			return writeTable(cmd.OutOrStdout(), records)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the records as JSON")
	return cmd
}

func dumpCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "dump",
		Short:       "Print the stored list as JSON, including expired records",
		Annotations: usesStore(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), records)
		},
	}
}

func removeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "remove <session-id>",
		Short:       "Forget a session",
		Annotations: usesStore(),
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Remove(cmd.Context(), args[0])
		},
	}
}

func clearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "clear",
		Short:       "Forget all sessions",
		Annotations: usesStore(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.store.Clear(cmd.Context())
		},
	}
}

func statsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "stats",
		Short:       "Print the stored list size and this run's counters in Prometheus text format",
		Annotations: usesStore(),
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stored, err := a.store.Load(cmd.Context())
			if err != nil {
				return err
			}
			live, err := a.store.ListRecent(cmd.Context())
			if err != nil {
				return err
			}
			metrics.ObserveList(len(stored), len(live))
			return metrics.WriteText(cmd.OutOrStdout())
		},
	}
}

func writeJSON(w io.Writer, records []recent.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func writeTable(w io.Writer, records []recent.Record) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SESSION\tLAST ACCESSED")
	for _, r := range records {
		ts := time.UnixMilli(r.LastAccessed).UTC().Format(time.RFC3339)
		fmt.Fprintf(tw, "%s\t%s\n", r.SessionID, ts)
	}
	return tw.Flush()
}
