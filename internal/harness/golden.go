package harness

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
)

// idKeys lists payload fields that carry generated aggregate ids.
// Their values are replaced with stable placeholders before golden
// comparison; everything else in a scenario run is already fixed.
var idKeys = map[string]bool{
	"aggregateId": true,
	"questionId":  true,
}

// TraceSnapshot is the golden file shape for one scenario run.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// RunWithGolden executes a scenario and compares its normalized trace
// against testdata/golden/{scenario.Name}.golden.
//
// Regenerate golden files with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	for _, msg := range result.Errors {
		t.Error(msg)
	}

	return AssertGolden(t, scenario.Name, result)
}

// AssertGolden compares an already-obtained result's trace against
// the named golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snapshot := TraceSnapshot{
		ScenarioName: scenarioName,
		Trace:        NormalizeTrace(result.Trace),
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, append(data, '\n'))
	return nil
}

// NormalizeTrace replaces generated ids with placeholders assigned in
// first-seen order and renders timestamps as RFC3339.
func NormalizeTrace(trace []TraceEvent) []TraceEvent {
	seen := make(map[string]string)
	normalized := make([]TraceEvent, 0, len(trace))
	for _, e := range trace {
		normalized = append(normalized, TraceEvent{
			Group:   e.Group,
			Name:    e.Name,
			Payload: normalizeValue(e.Payload, seen),
		})
	}
	return normalized
}

func normalizeValue(v any, seen map[string]string) any {
	payload, ok := v.(map[string]any)
	if !ok {
		if ts, ok := v.(time.Time); ok {
			return ts.UTC().Format(time.RFC3339)
		}
		return v
	}

	out := make(map[string]any, len(payload))
	for k, val := range payload {
		switch {
		case idKeys[k]:
			id, isString := val.(string)
			if !isString {
				out[k] = val
				continue
			}
			placeholder, known := seen[id]
			if !known {
				placeholder = fmt.Sprintf("id-%02d", len(seen)+1)
				seen[id] = placeholder
			}
			out[k] = placeholder
		default:
			out[k] = normalizeValue(val, seen)
		}
	}
	return out
}
