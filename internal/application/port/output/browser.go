package output

import (
	"context"

	"bug-reproducer/internal/domain/entity"
)

// BrowserPort is one browser session. Every method except Init and Close
// fails with entity.ErrNotInitialized before Init succeeds.
type BrowserPort interface {
	Init(ctx context.Context, headless bool) error
	Navigate(ctx context.Context, url string) error

	DOM(ctx context.Context) ([]entity.PageElement, error)
	State(ctx context.Context) (*entity.BrowserState, error)
	Network(ctx context.Context) ([]entity.NetworkEntry, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)
	HTML(ctx context.Context) (string, error)

	ClickSelector(ctx context.Context, selector string) error
	ClickText(ctx context.Context, text string) error
	FillSelector(ctx context.Context, selector, text string) error
	FillText(ctx context.Context, label, text string) error

	Finalize(ctx context.Context, tracingPath string) (*entity.FinalizeResult, error)
	Close() error
}
