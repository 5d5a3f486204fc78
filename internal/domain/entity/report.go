package entity

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

type RunStatus string

const (
	RunReproduced RunStatus = "reproduced"
	RunFailed     RunStatus = "failed"
	RunTimedOut   RunStatus = "timed_out"
)

func (s RunStatus) Valid() bool {
	switch s {
	case RunReproduced, RunFailed, RunTimedOut:
		return true
	}
	return false
}

type ExecutionStep struct {
	StepNumber  int         `json:"stepNumber"`
	Action      Action      `json:"action"`
	Observation Observation `json:"observation"`
	// ScreenshotRef is the artifact key of the step's screenshot. The
	// observation itself is recorded without the image.
	ScreenshotRef string       `json:"screenshotRef,omitempty"`
	Thought       string       `json:"thought"`
	Status        PolicyStatus `json:"status"`
	ActionResult  string       `json:"actionResult,omitempty"`
	ActionError   string       `json:"actionError,omitempty"`
}

type ArtifactRefs struct {
	NetworkLog  string   `json:"networkLog,omitempty"`
	ConsoleLog  string   `json:"consoleLog,omitempty"`
	DOMSnapshot string   `json:"domSnapshot,omitempty"`
	Report      string   `json:"report,omitempty"`
	Trace       string   `json:"trace,omitempty"`
	Video       string   `json:"video,omitempty"`
	Screenshots []string `json:"screenshots,omitempty"`
}

type RunReport struct {
	RunID          string          `json:"runId"`
	BugDescription string          `json:"bugDescription"`
	TargetURL      string          `json:"targetUrl"`
	StartTime      time.Time       `json:"startTime"`
	EndTime        time.Time       `json:"endTime"`
	Status         RunStatus       `json:"status"`
	Reason         string          `json:"reason,omitempty"`
	Steps          []ExecutionStep `json:"steps"`
	ConsoleErrors  []string        `json:"consoleErrors"`
	NetworkEntries []NetworkEntry  `json:"networkEntries"`
	ArtifactRefs   ArtifactRefs    `json:"artifactRefs"`
}

func (r RunReport) Marshal() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

func ParseRunReport(data []byte) (*RunReport, error) {
	var r RunReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse run report: %w", err)
	}
	if !r.Status.Valid() {
		return nil, fmt.Errorf("failed to parse run report: invalid status %q", r.Status)
	}
	return &r, nil
}

// Trace accumulates the steps of one run. Steps are appended once and never
// changed; the terminal status can be set only once.
type Trace struct {
	mu        sync.Mutex
	report    RunReport
	finalized bool
}

func NewTrace(runID, bugDescription, targetURL string, start time.Time) *Trace {
	return &Trace{report: RunReport{
		RunID:          runID,
		BugDescription: bugDescription,
		TargetURL:      targetURL,
		StartTime:      start,
		Steps:          []ExecutionStep{},
		ConsoleErrors:  []string{},
		NetworkEntries: []NetworkEntry{},
	}}
}

func (t *Trace) Append(step ExecutionStep) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.Steps = append(t.report.Steps, step)
}

func (t *Trace) Steps() []ExecutionStep {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]ExecutionStep(nil), t.report.Steps...)
}

func (t *Trace) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.report.Steps)
}

func (t *Trace) SetLogs(consoleErrors []string, entries []NetworkEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if consoleErrors != nil {
		t.report.ConsoleErrors = append([]string(nil), consoleErrors...)
	}
	if entries != nil {
		t.report.NetworkEntries = make([]NetworkEntry, len(entries))
		for i, e := range entries {
			t.report.NetworkEntries[i] = e.Clone()
		}
	}
}

func (t *Trace) SetArtifacts(refs ArtifactRefs) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.report.ArtifactRefs = refs
}

// Finalize records the terminal status. A second call returns
// ErrStatusAlreadySet and leaves the first status in place.
func (t *Trace) Finalize(status RunStatus, reason string, end time.Time) error {
	if !status.Valid() {
		return fmt.Errorf("invalid run status %q", status)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.finalized {
		return ErrStatusAlreadySet
	}
	t.finalized = true
	t.report.Status = status
	t.report.Reason = reason
	t.report.EndTime = end
	return nil
}

func (t *Trace) Finalized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finalized
}

// Report returns a copy of the report assembled so far.
func (t *Trace) Report() RunReport {
	t.mu.Lock()
	defer t.mu.Unlock()
	r := t.report
	r.Steps = append([]ExecutionStep(nil), t.report.Steps...)
	r.ConsoleErrors = append([]string(nil), t.report.ConsoleErrors...)
	r.NetworkEntries = append([]NetworkEntry(nil), t.report.NetworkEntries...)
	r.ArtifactRefs.Screenshots = append([]string(nil), t.report.ArtifactRefs.Screenshots...)
	return r
}
