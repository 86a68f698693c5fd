package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/verdant/internal/dep"
	"github.com/roach88/verdant/internal/serial"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Graph string
}

// VerifyResult holds the verification outcome.
type VerifyResult struct {
	Path          string `json:"path"`
	FormatVersion uint32 `json:"format_version"`
	Nodes         int    `json:"nodes"`
	Edges         int    `json:"edges"`
	Valid         bool   `json:"valid"`
	Reason        string `json:"reason,omitempty"`
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a serialized dependency graph",
		Long: `Verify that a serialized dependency graph blob is well formed.

Runs the full decode validation: magic, format version, node table
bounds, and edge target ranges. Exits 0 when the blob is valid, 1 when
it fails validation, 2 when it cannot be read at all.

Examples:
  verdant verify --graph .verdant/dep-graph.bin
  verdant verify --graph .verdant/dep-graph.bin --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Graph, "graph", "", "path to serialized graph blob (required)")
	_ = cmd.MarkFlagRequired("graph")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	data, err := os.ReadFile(opts.Graph)
	if os.IsNotExist(err) {
		return WrapExitError(ExitCommandError, "graph blob not found", err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read graph blob", err)
	}

	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	g, err := serial.Decode(data)
	if err != nil {
		var fe *serial.FormatError
		if errors.As(err, &fe) {
			result := VerifyResult{
				Path:          opts.Graph,
				FormatVersion: dep.GraphFormatVersion,
				Valid:         false,
				Reason:        fmt.Sprintf("%s: %s", fe.Code, fe.Message),
			}
			if opts.Format == "json" {
				if err := outputVerifyJSON(cmd, result); err != nil {
					return err
				}
			} else {
				_ = formatter.Error(ErrCodeBadGraph, result.Reason, nil)
			}
			return NewExitError(ExitFailure, "graph blob failed validation")
		}
		return WrapExitError(ExitCommandError, "failed to decode graph blob", err)
	}

	result := VerifyResult{
		Path:          opts.Graph,
		FormatVersion: dep.GraphFormatVersion,
		Nodes:         g.NumNodes(),
		Edges:         g.NumEdges(),
		Valid:         true,
	}

	if opts.Format == "json" {
		return outputVerifyJSON(cmd, result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Graph: %s\n", result.Path)
	fmt.Fprintf(w, "Format version: %d\n", result.FormatVersion)
	fmt.Fprintf(w, "Nodes: %d  Edges: %d\n", result.Nodes, result.Edges)
	fmt.Fprintln(w, "OK")
	return nil
}

// outputVerifyJSON outputs the verify result as JSON.
func outputVerifyJSON(cmd *cobra.Command, result VerifyResult) error {
	status := "ok"
	if !result.Valid {
		status = "error"
	}
	response := CLIResponse{
		Status: status,
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}
