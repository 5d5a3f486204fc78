package reproduce

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"bug-reproducer/internal/application/port/input"
	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
)

const (
	harCreator        = "bug-reproducer"
	harCreatorVersion = "1.0"
)

// run holds the state of a single reproduction attempt.
type run struct {
	uc     *UseCase
	req    input.RunRequest
	id     string
	start  time.Time
	state  State
	logger output.LoggerPort

	trace       *entity.Trace
	history     entity.History
	step        int
	initialized bool
	status      entity.RunStatus
	reason      string
	screenshots []string
}

func (r *run) execute(ctx context.Context) (report *entity.RunReport, err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Run panicked", "step", r.step, "panic", p)
			r.conclude(entity.RunFailed, fmt.Sprintf("internal error: %v", p))
			err = fmt.Errorf("%w: %v", ErrRunPanicked, p)
		}
		report = r.finalize(ctx)
	}()

	if err := r.req.Validate(); err != nil {
		r.conclude(entity.RunFailed, err.Error())
		return nil, err
	}

	r.logger.Info("Run started",
		"bug", r.req.BugDescription,
		"target", r.req.TargetURL,
		"max_steps", r.req.MaxSteps,
		"timeout", r.req.Timeout.String(),
	)

	runCtx, cancel := context.WithTimeout(ctx, r.req.Timeout)
	defer cancel()

	if err := r.initialize(runCtx); err != nil {
		r.conclude(entity.RunFailed, err.Error())
		return nil, err
	}

	r.state = StateExploring
	return nil, r.explore(ctx, runCtx)
}

func (r *run) initialize(ctx context.Context) error {
	if err := r.uc.browser.Init(ctx, r.req.Headless); err != nil {
		return fatal(err, "initialize browser session")
	}
	r.initialized = true

	if err := r.uc.browser.Navigate(ctx, r.req.TargetURL); err != nil {
		return fatal(err, "navigate to %s", r.req.TargetURL)
	}
	return nil
}

// explore runs the observe-decide-act loop until the policy reaches a
// verdict or a budget runs out.
func (r *run) explore(parent, ctx context.Context) error {
	deadline := r.start.Add(r.req.Timeout)

	for {
		if r.step >= r.req.MaxSteps {
			r.conclude(entity.RunTimedOut, fmt.Sprintf("step budget of %d exhausted without reproducing the bug", r.req.MaxSteps))
			return nil
		}
		if !r.uc.now().Before(deadline) {
			r.conclude(entity.RunTimedOut, fmt.Sprintf("time budget of %s exhausted without reproducing the bug", r.req.Timeout))
			return nil
		}
		if err := ctx.Err(); err != nil {
			if parent.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
				r.conclude(entity.RunTimedOut, fmt.Sprintf("time budget of %s exhausted without reproducing the bug", r.req.Timeout))
				return nil
			}
			r.conclude(entity.RunFailed, "run cancelled")
			return err
		}

		if r.iterate(ctx) {
			return nil
		}
	}
}

// iterate performs one step and reports whether the policy ended the run.
func (r *run) iterate(ctx context.Context) bool {
	r.step++
	logger := r.logger.WithField("step", r.step)

	obs := r.uc.observer.Capture(ctx, r.step)
	r.uc.progress.ShowStep(ctx, r.step, r.req.MaxSteps, obs.State.URL)
	shotKey := r.persistScreenshot(ctx, obs)
	r.history.AddObservation(obs)

	decision := r.uc.policy.Decide(ctx, r.req.BugDescription, obs, r.history.Snapshot())
	r.uc.progress.ShowThinking(ctx, decision.Thought)

	// The report references the stored image instead of inlining it.
	recorded := obs
	recorded.Screenshot = ""
	step := entity.ExecutionStep{
		StepNumber:    r.step,
		Action:        decision.Action,
		Observation:   recorded,
		ScreenshotRef: shotKey,
		Thought:       decision.Thought,
		Status:        decision.Status,
	}

	switch decision.Status {
	case entity.PolicyReproduced:
		r.trace.Append(step)
		logger.Info("Bug reproduced", "reason", decision.Reason)
		r.conclude(entity.RunReproduced, decision.Reason)
		return true
	case entity.PolicyFailed:
		r.trace.Append(step)
		logger.Info("Policy gave up", "reason", decision.Reason)
		r.conclude(entity.RunFailed, decision.Reason)
		return true
	}

	r.uc.progress.ShowAction(ctx, decision.Action)
	result, err := r.uc.executor.Execute(ctx, decision.Action)
	if err != nil {
		logger.Warn("Action failed", "action", decision.Action.String(), "error", err)
		step.ActionError = err.Error()
		r.uc.progress.ShowActionResult(ctx, err.Error(), true)
	} else {
		logger.Debug("Action completed", "action", decision.Action.String(), "result", result)
		step.ActionResult = result
		r.uc.progress.ShowActionResult(ctx, result, false)
	}

	r.trace.Append(step)
	r.history.AddAction(decision.Action)

	// Cancellation is picked up at the top of the loop.
	_ = sleep(ctx, r.uc.cfg.StepDelay)
	return false
}

// conclude records the first terminal status; later calls are ignored.
func (r *run) conclude(status entity.RunStatus, reason string) {
	if r.status != "" {
		return
	}
	r.status = status
	r.reason = reason
	switch status {
	case entity.RunReproduced:
		r.state = StateReproduced
	case entity.RunTimedOut:
		r.state = StateTimedOut
	default:
		r.state = StateFailed
	}
}

// persistScreenshot stores the step's screenshot and returns its key, or ""
// when there is nothing stored.
func (r *run) persistScreenshot(ctx context.Context, obs entity.Observation) string {
	if obs.Screenshot == "" {
		return ""
	}
	data, err := base64.StdEncoding.DecodeString(obs.Screenshot)
	if err != nil {
		r.logger.Warn("Screenshot is not valid base64", "step", obs.StepNumber, "error", err)
		return ""
	}
	key, err := r.put(ctx, fmt.Sprintf("screenshots/step-%03d.jpg", obs.StepNumber), data)
	if err != nil {
		r.logger.Warn("Failed to persist screenshot", "step", obs.StepNumber, "error", err)
		return ""
	}
	r.screenshots = append(r.screenshots, key)
	return key
}

// finalize runs exactly once per run, whatever happened before. Every
// cleanup step is isolated so one failure cannot skip the others.
func (r *run) finalize(ctx context.Context) *entity.RunReport {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.uc.cfg.FinalizeTimeout)
	defer cancel()

	if r.status == "" {
		r.conclude(entity.RunFailed, "run ended without a terminal status")
	}

	refs := entity.ArtifactRefs{Screenshots: append([]string(nil), r.screenshots...)}
	consoleErrors := []string{}
	var backendLogs []string
	network := []entity.NetworkEntry{}

	if r.initialized {
		r.safely("fetch final state", func() error {
			st, err := r.uc.browser.State(ctx)
			if err != nil {
				return err
			}
			if st.ConsoleErrors != nil {
				consoleErrors = st.ConsoleErrors
			}
			backendLogs = st.BackendLogs
			return nil
		})
		r.safely("fetch final network log", func() error {
			entries, err := r.uc.browser.Network(ctx)
			if err != nil {
				return err
			}
			if entries != nil {
				network = entries
			}
			return nil
		})
		r.safely("capture DOM snapshot", func() error {
			html, err := r.uc.browser.HTML(ctx)
			if err != nil || html == "" {
				return err
			}
			refs.DOMSnapshot, err = r.put(ctx, "dom.html", []byte(html))
			return err
		})
		r.safely("finalize browser session", func() error {
			res, err := r.uc.browser.Finalize(ctx, filepath.Join(r.uc.cfg.TraceDir, r.id, "trace.json"))
			if err != nil {
				return err
			}
			if res != nil {
				refs.Trace = res.TracingPath
				refs.Video = res.VideoPath
			}
			return nil
		})
	}

	r.safely("persist network log", func() error {
		data, err := json.MarshalIndent(entity.NewHAR(harCreator, harCreatorVersion, network), "", "  ")
		if err != nil {
			return err
		}
		refs.NetworkLog, err = r.put(ctx, "network.har.json", data)
		return err
	})
	r.safely("persist console log", func() error {
		var buf bytes.Buffer
		for _, line := range consoleErrors {
			buf.WriteString("[console] " + line + "\n")
		}
		for _, line := range backendLogs {
			buf.WriteString("[backend] " + line + "\n")
		}
		var err error
		refs.ConsoleLog, err = r.put(ctx, "console.log", buf.Bytes())
		return err
	})

	refs.Report = r.key("report.json")
	r.trace.SetLogs(consoleErrors, network)
	r.trace.SetArtifacts(refs)
	if err := r.trace.Finalize(r.status, r.reason, r.uc.now()); err != nil {
		r.logger.Error("Failed to finalize trace", "error", err)
	}
	report := r.trace.Report()

	r.safely("persist report", func() error {
		data, err := report.Marshal()
		if err != nil {
			return err
		}
		_, err = r.put(ctx, "report.json", data)
		return err
	})
	r.safely("close browser session", r.uc.browser.Close)

	r.logger.Info("Run finished",
		"status", report.Status,
		"reason", report.Reason,
		"steps", len(report.Steps),
		"duration", report.EndTime.Sub(report.StartTime).String(),
	)
	r.uc.progress.ShowOutcome(ctx, &report)
	return &report
}

func (r *run) safely(name string, fn func() error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Finalization step panicked", "task", name, "panic", p)
		}
	}()
	if err := fn(); err != nil {
		r.logger.Warn("Finalization step failed", "task", name, "error", err)
	}
}

func (r *run) key(name string) string {
	return path.Join(r.id, name)
}

// put stores an artifact and returns its key.
func (r *run) put(ctx context.Context, name string, data []byte) (string, error) {
	if r.uc.store == nil {
		return "", errors.New("no artifact store configured")
	}
	key := r.key(name)
	if err := r.uc.store.Upload(ctx, key, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

