package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/verdant/internal/cache"
)

// StatsOptions holds flags for the stats command.
type StatsOptions struct {
	*RootOptions
	Dir string
}

// SessionStats is one recorded session, flattened for display.
type SessionStats struct {
	Token         string `json:"token"`
	EngineVersion string `json:"engine_version"`
	Nodes         int    `json:"nodes"`
	Edges         int    `json:"edges"`
	Green         int    `json:"green"`
	Red           int    `json:"red"`
}

// StatsResult holds the complete stats output.
type StatsResult struct {
	Dir      string         `json:"dir"`
	Results  int            `json:"results"`
	Sessions []SessionStats `json:"sessions"`
}

// NewStatsCommand creates the stats command.
func NewStatsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StatsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show result cache statistics",
		Long: `Show statistics from an incremental cache directory.

Lists every recorded session with its node, edge, and color counts,
plus the number of cached query results.

Examples:
  verdant stats --dir .verdant
  verdant stats --dir .verdant --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Dir, "dir", "", "path to incremental cache directory (required)")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runStats(opts *StatsOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	// Opening the store creates it; stats on a nonexistent directory
	// should report, not create.
	if _, err := os.Stat(opts.Dir); os.IsNotExist(err) {
		return WrapExitError(ExitCommandError, "cache directory not found", err)
	}

	dir, err := cache.OpenDir(opts.Dir)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open cache directory", err)
	}

	st, err := dir.OpenStore()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open result store", err)
	}
	defer st.Close()

	results, err := st.CountResults(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count results", err)
	}

	sessions, err := st.ListSessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list sessions", err)
	}

	result := StatsResult{
		Dir:      opts.Dir,
		Results:  results,
		Sessions: make([]SessionStats, 0, len(sessions)),
	}
	for _, rec := range sessions {
		result.Sessions = append(result.Sessions, SessionStats{
			Token:         rec.Token,
			EngineVersion: rec.EngineVersion,
			Nodes:         rec.Nodes,
			Edges:         rec.Edges,
			Green:         rec.Green,
			Red:           rec.Red,
		})
	}

	if opts.Format == "json" {
		return outputStatsJSON(cmd, result)
	}
	return outputStatsText(cmd, result)
}

// outputStatsJSON outputs the stats result as JSON.
func outputStatsJSON(cmd *cobra.Command, result StatsResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputStatsText outputs the stats result as text.
func outputStatsText(cmd *cobra.Command, result StatsResult) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Cache: %s\n", result.Dir)
	fmt.Fprintf(w, "Cached results: %d\n", result.Results)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Sessions ===")
	if len(result.Sessions) == 0 {
		fmt.Fprintln(w, "  (no sessions recorded)")
		return nil
	}
	for _, s := range result.Sessions {
		fmt.Fprintf(w, "  %s\n", s.Token)
		fmt.Fprintf(w, "      Engine: %s  Nodes: %d  Edges: %d  Green: %d  Red: %d\n",
			s.EngineVersion, s.Nodes, s.Edges, s.Green, s.Red)
	}

	return nil
}
