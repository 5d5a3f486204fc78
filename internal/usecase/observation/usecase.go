package observation

import (
	"context"
	"encoding/base64"

	"golang.org/x/sync/errgroup"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
)

type UseCase struct {
	browser output.BrowserPort
	logger  output.LoggerPort
}

func New(browser output.BrowserPort, logger output.LoggerPort) *UseCase {
	return &UseCase{
		browser: browser,
		logger:  logger,
	}
}

// Capture takes a snapshot of the page. The four reads run concurrently and
// each one falls back to an empty value on failure, so a capture never fails
// as a whole.
func (uc *UseCase) Capture(ctx context.Context, step int) entity.Observation {
	var (
		elements   []entity.PageElement
		state      *entity.BrowserState
		network    []entity.NetworkEntry
		screenshot string
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(uc.isolated(step, "dom", func() error {
		els, err := uc.browser.DOM(gctx)
		if err != nil {
			uc.logger.Warn("DOM capture failed", "step", step, "error", err)
			return nil
		}
		elements = els
		return nil
	}))

	g.Go(uc.isolated(step, "state", func() error {
		st, err := uc.browser.State(gctx)
		if err != nil {
			uc.logger.Warn("State capture failed", "step", step, "error", err)
			return nil
		}
		state = st
		return nil
	}))

	g.Go(uc.isolated(step, "network", func() error {
		entries, err := uc.browser.Network(gctx)
		if err != nil {
			uc.logger.Warn("Network capture failed", "step", step, "error", err)
			return nil
		}
		network = entries
		return nil
	}))

	g.Go(uc.isolated(step, "screenshot", func() error {
		shot, err := uc.browser.Screenshot(gctx)
		if err != nil {
			uc.logger.Warn("Screenshot failed", "step", step, "error", err)
			return nil
		}
		if shot != nil && len(shot.Data) > 0 {
			screenshot = base64.StdEncoding.EncodeToString(shot.Data)
		}
		return nil
	}))

	_ = g.Wait()

	obs := entity.Observation{
		DOM:        elements,
		Screenshot: screenshot,
		StepNumber: step,
	}
	if obs.DOM == nil {
		obs.DOM = []entity.PageElement{}
	}
	if state != nil {
		obs.State = *state
	}
	if obs.State.ConsoleErrors == nil {
		obs.State.ConsoleErrors = []string{}
	}
	if network != nil {
		obs.State.NetworkEntries = network
	}
	if obs.State.NetworkEntries == nil {
		obs.State.NetworkEntries = []entity.NetworkEntry{}
	}

	uc.logger.Debug("Observation captured",
		"step", step,
		"url", obs.State.URL,
		"elements", len(obs.DOM),
		"consoleErrors", len(obs.State.ConsoleErrors),
		"networkEntries", len(obs.State.NetworkEntries),
		"screenshot", screenshot != "",
	)

	return obs
}

// isolated keeps a panicking read from taking the capture down with it.
func (uc *UseCase) isolated(step int, part string, fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				uc.logger.Error("Observation read panicked", "step", step, "part", part, "panic", r)
				err = nil
			}
		}()
		return fn()
	}
}
