package action

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
)

type Config struct {
	ClickSettle time.Duration
	FillSettle  time.Duration
	WaitDelay   time.Duration
}

func DefaultConfig() Config {
	return Config{
		ClickSettle: time.Second,
		FillSettle:  500 * time.Millisecond,
		WaitDelay:   2 * time.Second,
	}
}

type UseCase struct {
	browser output.BrowserPort
	logger  output.LoggerPort
	cfg     Config
}

func New(browser output.BrowserPort, logger output.LoggerPort, cfg Config) *UseCase {
	return &UseCase{
		browser: browser,
		logger:  logger,
		cfg:     cfg,
	}
}

// Execute performs a single action and returns a short description of what
// happened. Failures come back as *entity.ActionExecutionError.
func (uc *UseCase) Execute(ctx context.Context, a entity.Action) (string, error) {
	if err := a.Validate(); err != nil {
		return "", &entity.ActionExecutionError{Action: a.Type, Selector: a.Selector, Err: err}
	}

	switch a.Type {
	case entity.ActionClick:
		return uc.click(ctx, a)
	case entity.ActionInput:
		return uc.input(ctx, a)
	case entity.ActionWait:
		d := a.Duration
		if d == 0 {
			d = uc.cfg.WaitDelay
		}
		if err := sleep(ctx, d); err != nil {
			return "", &entity.ActionExecutionError{Action: a.Type, Err: err}
		}
		return fmt.Sprintf("Waited %s", d), nil
	case entity.ActionNavigate:
		if err := uc.browser.Navigate(ctx, a.URL); err != nil {
			return "", &entity.ActionExecutionError{Action: a.Type, Err: fmt.Errorf("navigate to %s: %w", a.URL, err)}
		}
		return fmt.Sprintf("Navigated to %s", a.URL), nil
	default:
		return "", &entity.ActionExecutionError{Action: a.Type, Err: entity.ErrUnsupportedAction}
	}
}

func (uc *UseCase) click(ctx context.Context, a entity.Action) (string, error) {
	target := ResolveSelector(a.Selector)
	if target.Value == "" {
		return "", &entity.ActionExecutionError{Action: a.Type, Selector: a.Selector, Err: errors.New("selector resolved to nothing")}
	}

	uc.logger.Debug("Clicking", "selector", a.Selector, "strategy", target.Kind.String(), "value", target.Value)

	var err error
	if target.Kind == TargetText {
		err = uc.browser.ClickText(ctx, target.Value)
	} else {
		err = uc.browser.ClickSelector(ctx, target.Value)
	}
	if err != nil {
		return "", &entity.ActionExecutionError{Action: a.Type, Selector: a.Selector, Err: err}
	}

	if err := sleep(ctx, uc.cfg.ClickSettle); err != nil {
		return "", &entity.ActionExecutionError{Action: a.Type, Selector: a.Selector, Err: err}
	}
	return fmt.Sprintf("Clicked %s %q", target.Kind, target.Value), nil
}

func (uc *UseCase) input(ctx context.Context, a entity.Action) (string, error) {
	target := ResolveSelector(a.Selector)
	if target.Value == "" {
		return "", &entity.ActionExecutionError{Action: a.Type, Selector: a.Selector, Err: errors.New("selector resolved to nothing")}
	}

	uc.logger.Debug("Filling", "selector", a.Selector, "strategy", target.Kind.String(), "value", target.Value)

	var err error
	if target.Kind == TargetText {
		err = uc.browser.FillText(ctx, target.Value, a.Text)
	} else {
		err = uc.browser.FillSelector(ctx, target.Value, a.Text)
	}
	if err != nil {
		return "", &entity.ActionExecutionError{Action: a.Type, Selector: a.Selector, Err: err}
	}

	if err := sleep(ctx, uc.cfg.FillSettle); err != nil {
		return "", &entity.ActionExecutionError{Action: a.Type, Selector: a.Selector, Err: err}
	}
	return fmt.Sprintf("Filled %s %q with %q", target.Kind, target.Value, a.Text), nil
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
