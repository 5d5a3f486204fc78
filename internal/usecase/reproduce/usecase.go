package reproduce

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"bug-reproducer/internal/application/port/input"
	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
	"bug-reproducer/internal/usecase/action"
	"bug-reproducer/internal/usecase/observation"
)

var _ input.Reproducer = (*UseCase)(nil)

// ErrRunPanicked marks a run aborted by a recovered panic.
var ErrRunPanicked = errors.New("run panicked")

type State string

const (
	StateInitializing State = "initializing"
	StateExploring    State = "exploring"
	StateReproduced   State = "reproduced"
	StateFailed       State = "failed"
	StateTimedOut     State = "timed_out"
)

type Config struct {
	StepDelay       time.Duration
	FinalizeTimeout time.Duration
	// TraceDir is where the browser writes its session trace.
	TraceDir string
}

func DefaultConfig() Config {
	return Config{
		StepDelay:       2 * time.Second,
		FinalizeTimeout: 30 * time.Second,
		TraceDir:        "artifacts",
	}
}

type UseCase struct {
	browser  output.BrowserPort
	observer *observation.UseCase
	executor *action.UseCase
	policy   output.DecisionPolicy
	store    output.ArtifactStore
	progress output.ProgressPort
	logger   output.LoggerPort
	cfg      Config

	now   func() time.Time
	newID func() string
}

type Option func(*UseCase)

// WithClock replaces time.Now, for deterministic timeouts in tests.
func WithClock(now func() time.Time) Option {
	return func(uc *UseCase) { uc.now = now }
}

func WithRunID(newID func() string) Option {
	return func(uc *UseCase) { uc.newID = newID }
}

// New wires a reproducer around one browser session. A UseCase drives one
// run at a time; concurrent runs need their own UseCase and browser.
func New(
	browser output.BrowserPort,
	observer *observation.UseCase,
	executor *action.UseCase,
	policy output.DecisionPolicy,
	store output.ArtifactStore,
	progress output.ProgressPort,
	logger output.LoggerPort,
	cfg Config,
	opts ...Option,
) *UseCase {
	uc := &UseCase{
		browser:  browser,
		observer: observer,
		executor: executor,
		policy:   policy,
		store:    store,
		progress: progress,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	if uc.progress == nil {
		uc.progress = nopProgress{}
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Run reproduces one bug. The returned report is never nil: fatal errors
// are reported both as a Failed report and as the error.
func (uc *UseCase) Run(ctx context.Context, req input.RunRequest) (*entity.RunReport, error) {
	r := &run{
		uc:     uc,
		req:    req,
		id:     uc.newID(),
		start:  uc.now(),
		state:  StateInitializing,
		logger: uc.logger,
	}
	r.logger = uc.logger.WithFields(map[string]any{"run_id": r.id})
	r.trace = entity.NewTrace(r.id, req.BugDescription, req.TargetURL, r.start)
	return r.execute(ctx)
}

type nopProgress struct{}

func (nopProgress) ShowStep(context.Context, int, int, string) {}
func (nopProgress) ShowThinking(context.Context, string) {}
func (nopProgress) ShowAction(context.Context, entity.Action) {}
func (nopProgress) ShowActionResult(context.Context, string, bool) {}
func (nopProgress) ShowOutcome(context.Context, *entity.RunReport) {}

func fatal(err error, format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
