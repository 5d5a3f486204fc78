package entity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrace_FinalizeOnlyOnce(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	tr := NewTrace("run-1", "cart total wrong", "http://localhost:3000", start)

	require.NoError(t, tr.Finalize(RunReproduced, "total shows 0", start.Add(time.Minute)))
	err := tr.Finalize(RunFailed, "second", start.Add(2*time.Minute))
	assert.ErrorIs(t, err, ErrStatusAlreadySet)

	r := tr.Report()
	assert.Equal(t, RunReproduced, r.Status)
	assert.Equal(t, "total shows 0", r.Reason)
	assert.Equal(t, start.Add(time.Minute), r.EndTime)
}

func TestTrace_FinalizeRejectsUnknownStatus(t *testing.T) {
	tr := NewTrace("run-1", "bug", "http://localhost", time.Now())

	assert.Error(t, tr.Finalize(RunStatus("maybe"), "", time.Now()))
	assert.False(t, tr.Finalized())
}

func TestTrace_StepsAreCopiedOnRead(t *testing.T) {
	tr := NewTrace("run-1", "bug", "http://localhost", time.Now())
	tr.Append(ExecutionStep{StepNumber: 1, Thought: "look around"})

	steps := tr.Steps()
	steps[0].Thought = "changed"

	assert.Equal(t, "look around", tr.Steps()[0].Thought)
	assert.Equal(t, 1, tr.Len())
}

func TestRunReport_RoundTrip(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	click, err := NewClick(`text="Add to Cart"`)
	require.NoError(t, err)
	status := 500

	tr := NewTrace("run-7", "Adding an item leaves the cart empty", "http://localhost:3000", start)
	tr.Append(ExecutionStep{StepNumber: 1, Action: click, Thought: "add item", Status: PolicyInProgress, ActionResult: "clicked"})
	tr.Append(ExecutionStep{StepNumber: 2, Action: click, Thought: "cart is empty", Status: PolicyReproduced})
	tr.SetLogs([]string{"TypeError: x is undefined"}, []NetworkEntry{{URL: "http://localhost:3000/api/cart", Method: "POST", Status: &status}})
	tr.SetArtifacts(ArtifactRefs{Report: "run-7/report.json"})
	require.NoError(t, tr.Finalize(RunReproduced, "cart is empty after add", start.Add(time.Minute)))

	data, err := tr.Report().Marshal()
	require.NoError(t, err)

	parsed, err := ParseRunReport(data)
	require.NoError(t, err)
	assert.Equal(t, "Adding an item leaves the cart empty", parsed.BugDescription)
	assert.Equal(t, RunReproduced, parsed.Status)
	assert.Len(t, parsed.Steps, 2)
	assert.Equal(t, click, parsed.Steps[0].Action)
	require.Len(t, parsed.NetworkEntries, 1)
	require.NotNil(t, parsed.NetworkEntries[0].Status)
	assert.Equal(t, 500, *parsed.NetworkEntries[0].Status)
	assert.True(t, start.Equal(parsed.StartTime))
}

func TestRunReport_TimestampFieldNames(t *testing.T) {
	status := 200
	tr := NewTrace("run-8", "bug", "http://x", time.Unix(0, 0))
	tr.SetLogs(nil, []NetworkEntry{{URL: "http://x/api", Method: "GET", Status: &status, TimestampMs: 1700000000123}})
	require.NoError(t, tr.Finalize(RunFailed, "gave up", time.Unix(1, 0)))

	data, err := tr.Report().Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"timestampMs": 1700000000123`)
	assert.NotContains(t, string(data), `"timestamp":`)

	entry, err := json.Marshal(ConsoleEntry{Level: "error", Text: "boom", TimestampMs: 5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"error","text":"boom","timestampMs":5}`, string(entry))
}

func TestParseRunReport_RejectsMissingStatus(t *testing.T) {
	_, err := ParseRunReport([]byte(`{"bugDescription":"x","steps":[]}`))
	assert.Error(t, err)
}

func TestNewHAR(t *testing.T) {
	status := 201
	har := NewHAR("bug-reproducer", "dev", []NetworkEntry{
		{URL: "http://a/api", Method: "POST", Status: &status, TimestampMs: 1000, RequestHeaders: map[string]string{"b": "2", "a": "1"}},
		{URL: "http://a/slow", Method: "GET"},
	})

	require.Len(t, har.Log.Entries, 2)
	assert.Equal(t, "1.2", har.Log.Version)
	assert.Equal(t, 201, har.Log.Entries[0].Response.Status)
	assert.Equal(t, []HARHeader{{Name: "a", Value: "1"}, {Name: "b", Value: "2"}}, har.Log.Entries[0].Request.Headers)
	assert.Equal(t, 0, har.Log.Entries[1].Response.Status)
}
