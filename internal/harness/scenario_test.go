package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeScenarioFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadScenario(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", "chain-unchanged.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "chain-unchanged", sc.Name)
	assert.NotEmpty(t, sc.Description)
	require.Len(t, sc.Previous.Nodes, 3)
	assert.Equal(t, "C", sc.Previous.Nodes[0].Name)
	assert.Equal(t, "SourceFile", sc.Previous.Nodes[0].Kind)
	assert.Equal(t, []string{"C"}, sc.Previous.Nodes[1].Deps)
	assert.Equal(t, "C", sc.Current.Fingerprints["C"])
	assert.Equal(t, "green", sc.Expect.Colors["A"])
}

func TestLoadScenarioMissingFile(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadScenarioSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "bad color value",
			body: `
name: bad-color
description: color must be green or red
previous:
  nodes:
    - name: a
      kind: SourceFile
      result: a
expect:
  colors:
    a: purple
`,
		},
		{
			name: "missing description",
			body: `
name: no-description
previous:
  nodes: []
expect:
  colors: {}
`,
		},
		{
			name: "uppercase scenario name",
			body: `
name: BadName
description: names are lowercase kebab
previous:
  nodes: []
expect:
  colors: {}
`,
		},
		{
			name: "node missing result",
			body: `
name: no-result
description: every node records a result label
previous:
  nodes:
    - name: a
      kind: SourceFile
expect:
  colors: {}
`,
		},
		{
			name: "unknown node field",
			body: `
name: unknown-field
description: extra fields are rejected
previous:
  nodes:
    - name: a
      kind: SourceFile
      result: a
      weight: 3
expect:
  colors: {}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeScenarioFile(t, tt.body)
			_, err := LoadScenario(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "schema validation failed")
		})
	}
}

func TestRunUnknownKind(t *testing.T) {
	sc := &Scenario{
		Name: "unknown-kind",
		Previous: PreviousSession{
			Nodes: []NodeSpec{{Name: "a", Kind: "Bogus", Result: "a"}},
		},
	}
	_, err := Run(sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Bogus")
}

func TestRunUndeclaredDep(t *testing.T) {
	sc := &Scenario{
		Name: "undeclared-dep",
		Previous: PreviousSession{
			Nodes: []NodeSpec{{Name: "a", Kind: "SourceFile", Result: "a", Deps: []string{"ghost"}}},
		},
	}
	_, err := Run(sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestRunExpectationOnUndeclaredNode(t *testing.T) {
	sc := &Scenario{
		Name: "missing-expect-node",
		Previous: PreviousSession{
			Nodes: []NodeSpec{{Name: "a", Kind: "SourceFile", Result: "a"}},
		},
		Expect: Expectation{Colors: map[string]string{"ghost": "green"}},
	}
	_, err := Run(sc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestRunRecordsExpectationMismatch(t *testing.T) {
	sc := &Scenario{
		Name: "mismatch",
		Previous: PreviousSession{
			Nodes: []NodeSpec{{Name: "a", Kind: "SourceFile", Result: "a"}},
		},
		Current: CurrentSession{Fingerprints: map[string]string{"a": "a-changed"}},
		Expect:  Expectation{Colors: map[string]string{"a": "green"}},
	}
	result, err := Run(sc)
	require.NoError(t, err)

	assert.False(t, result.Pass())
	require.Len(t, result.Failures, 1)
	assert.Contains(t, result.Failures[0], "expected green, got red")
}
