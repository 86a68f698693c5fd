package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/verdant/internal/dep"
	"github.com/roach88/verdant/internal/serial"
)

// DumpOptions holds flags for the dump command.
type DumpOptions struct {
	*RootOptions
	Graph string
	Kind  string // optional - filter to one node kind
}

// DumpNode is one node of the serialized graph, flattened for display.
type DumpNode struct {
	Index       uint32   `json:"index"`
	Kind        string   `json:"kind"`
	Hash        string   `json:"hash"`
	Fingerprint string   `json:"fingerprint"`
	Deps        []uint32 `json:"deps,omitempty"`
}

// DumpResult holds the complete dump output.
type DumpResult struct {
	Path  string     `json:"path"`
	Nodes int        `json:"nodes"`
	Edges int        `json:"edges"`
	Graph []DumpNode `json:"graph"`
}

// NewDumpCommand creates the dump command.
func NewDumpCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &DumpOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Dump a serialized dependency graph",
		Long: `Dump the contents of a serialized dependency graph blob.

Lists every node with its kind, key hash, result fingerprint, and the
indices of the nodes it depends on.

Examples:
  verdant dump --graph .verdant/dep-graph.bin
  verdant dump --graph .verdant/dep-graph.bin --kind TypeCheck
  verdant dump --graph .verdant/dep-graph.bin --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Graph, "graph", "", "path to serialized graph blob (required)")
	_ = cmd.MarkFlagRequired("graph")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one node kind")

	return cmd
}

func runDump(opts *DumpOptions, cmd *cobra.Command) error {
	g, err := loadGraphBlob(opts.Graph)
	if err != nil {
		return err
	}

	var kindFilter dep.Kind
	if opts.Kind != "" {
		kindFilter, err = dep.KindFromName(opts.Kind)
		if err != nil {
			return WrapExitError(ExitCommandError, "unknown kind", err)
		}
	}

	result := DumpResult{
		Path:  opts.Graph,
		Nodes: g.NumNodes(),
		Edges: g.NumEdges(),
	}
	for i := 0; i < g.NumNodes(); i++ {
		idx := dep.PrevNodeIndex(i)
		node := g.Node(idx)
		if opts.Kind != "" && node.Kind != kindFilter {
			continue
		}

		targets := g.EdgeTargets(idx)
		deps := make([]uint32, len(targets))
		for j, t := range targets {
			deps[j] = uint32(t)
		}
		result.Graph = append(result.Graph, DumpNode{
			Index:       uint32(i),
			Kind:        node.Kind.String(),
			Hash:        node.Hash.Short(),
			Fingerprint: g.Fingerprint(idx).Short(),
			Deps:        deps,
		})
	}

	if opts.Format == "json" {
		return outputDumpJSON(cmd, result)
	}
	return outputDumpText(cmd, result, opts.Verbose)
}

// loadGraphBlob reads and decodes a graph blob, mapping failures onto
// exit codes: a missing file is a command error, a blob that fails
// format validation is a verification failure.
func loadGraphBlob(path string) (*serial.Graph, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, WrapExitError(ExitCommandError, "graph blob not found", err)
	}
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read graph blob", err)
	}

	g, err := serial.Decode(data)
	if err != nil {
		if serial.IsFormatError(err) {
			return nil, WrapExitError(ExitFailure, "graph blob failed validation", err)
		}
		return nil, WrapExitError(ExitCommandError, "failed to decode graph blob", err)
	}
	return g, nil
}

// outputDumpJSON outputs the dump result as JSON.
func outputDumpJSON(cmd *cobra.Command, result DumpResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(response)
}

// outputDumpText outputs the dump result as text.
func outputDumpText(cmd *cobra.Command, result DumpResult, verbose bool) error {
	w := cmd.OutOrStdout()

	fmt.Fprintf(w, "Graph: %s\n", result.Path)
	fmt.Fprintf(w, "Nodes: %d  Edges: %d\n", result.Nodes, result.Edges)
	fmt.Fprintln(w)

	if len(result.Graph) == 0 {
		fmt.Fprintln(w, "  (no nodes)")
		return nil
	}

	for _, node := range result.Graph {
		fmt.Fprintf(w, "  [%d] %s(%s)\n", node.Index, node.Kind, node.Hash)
		if verbose {
			fmt.Fprintf(w, "      Fingerprint: %s\n", node.Fingerprint)
		}
		if len(node.Deps) > 0 {
			fmt.Fprintf(w, "      Deps: %v\n", node.Deps)
		}
	}

	return nil
}
