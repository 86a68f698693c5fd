package harness

import (
	_ "embed"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Scenario defines a two-session coloring conformance test.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Previous declares the previous session's graph.
	Previous PreviousSession `yaml:"previous"`

	// Current declares what the current session observes.
	Current CurrentSession `yaml:"current,omitempty"`

	// Expect lists the colors the engine must assign.
	Expect Expectation `yaml:"expect"`
}

// PreviousSession is the simulated prior session.
type PreviousSession struct {
	Nodes []NodeSpec `yaml:"nodes"`
}

// NodeSpec declares one previous-session node.
type NodeSpec struct {
	// Name identifies the node within the scenario.
	Name string `yaml:"name"`

	// Kind is a dep.Kind name (e.g. "SourceFile", "TypeCheck").
	Kind string `yaml:"kind"`

	// Key is the query key; defaults to Name for parameterized kinds
	// and is ignored for parameterless ones.
	Key string `yaml:"key,omitempty"`

	// Result is the fingerprint label recorded for the node's result.
	Result string `yaml:"result"`

	// Deps names previously declared nodes this node read.
	Deps []string `yaml:"deps,omitempty"`
}

// CurrentSession is what the current session can observe without
// recomputation: the fingerprint oracle's answers.
type CurrentSession struct {
	// Fingerprints maps node name to the fingerprint label re-hashing
	// would produce this session. Absent nodes are unknown to the
	// oracle.
	Fingerprints map[string]string `yaml:"fingerprints,omitempty"`
}

// Expectation lists the expected coloring outcome.
type Expectation struct {
	// Colors maps node name to "green" or "red".
	Colors map[string]string `yaml:"colors"`
}

// LoadScenario reads and validates a scenario YAML file.
//
// Validation happens in two steps: the raw document is checked against
// the embedded CUE schema (catching unknown fields, missing required
// fields, and bad color values with precise messages), then decoded into
// the typed Scenario.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}

	if err := validateScenario(raw); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", path, err)
	}

	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return &sc, nil
}

// validateScenario unifies the raw document with the #Scenario schema.
func validateScenario(raw map[string]any) error {
	ctx := cuecontext.New()

	schemaVal := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schemaVal.Err(); err != nil {
		// The schema is embedded; failing to compile it is a bug.
		panic(fmt.Sprintf("harness: embedded schema invalid: %v", err))
	}
	schema := schemaVal.LookupPath(cue.ParsePath("#Scenario"))
	if !schema.Exists() {
		panic("harness: embedded schema missing #Scenario")
	}

	doc := ctx.Encode(raw)
	if err := doc.Err(); err != nil {
		return formatCUEError(err)
	}

	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(err)
	}
	return nil
}

// formatCUEError flattens CUE's error list into one readable message.
func formatCUEError(err error) error {
	details := cueerrors.Details(err, nil)
	return fmt.Errorf("schema validation failed:\n%s", details)
}
