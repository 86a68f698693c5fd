package harness

import (
	"encoding/json"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Snapshot is the serialized form of a Result used for golden files.
// Field order is fixed by the struct, event order by the runner, so the
// encoding is byte-stable across runs.
type Snapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Marked       []TraceEvent `json:"marked"`
	Final        []TraceEvent `json:"final"`
}

// RunWithGolden executes a scenario and compares its trace against the
// golden file testdata/golden/<scenario.Name>.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns the result so callers can additionally assert on Failures.
func RunWithGolden(t *testing.T, sc *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(sc)
	if err != nil {
		return nil, err
	}

	snapshot := Snapshot{
		ScenarioName: result.ScenarioName,
		Marked:       result.Marked,
		Final:        result.Final,
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, sc.Name, data)

	return result, nil
}
