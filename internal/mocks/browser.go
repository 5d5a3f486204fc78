package mocks

import (
	"context"
	"sync"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
)

// FakeBrowser is a scripted BrowserPort. Zero-valued error fields mean
// success; calls are recorded for assertions.
type FakeBrowser struct {
	mu sync.Mutex

	Elements      []entity.PageElement
	Current       entity.BrowserState
	Entries       []entity.NetworkEntry
	Shot          *entity.Screenshot
	Page          string
	ClickTextHook func(text string) error

	InitErr       error
	NavigateErr   error
	DOMErr        error
	StateErr      error
	NetworkErr    error
	ScreenshotErr error
	ClickErr      error
	FillErr       error
	FinalizeErr   error
	CloseErr      error
	PanicOnDOM    any

	initialized bool
	Calls       []string
	Clicks      []string
	Fills       [][2]string
	Navigations []string
	Finalized   int
	Closed      int
}

var _ output.BrowserPort = (*FakeBrowser)(nil)

func (f *FakeBrowser) record(call string) {
	f.Calls = append(f.Calls, call)
}

func (f *FakeBrowser) Init(_ context.Context, _ bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("init")
	if f.InitErr != nil {
		return f.InitErr
	}
	f.initialized = true
	return nil
}

func (f *FakeBrowser) Navigate(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("navigate")
	if !f.initialized {
		return entity.ErrNotInitialized
	}
	if f.NavigateErr != nil {
		return f.NavigateErr
	}
	f.Navigations = append(f.Navigations, url)
	f.Current.URL = url
	return nil
}

func (f *FakeBrowser) DOM(_ context.Context) ([]entity.PageElement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("dom")
	if f.PanicOnDOM != nil {
		panic(f.PanicOnDOM)
	}
	if f.DOMErr != nil {
		return nil, f.DOMErr
	}
	return append([]entity.PageElement(nil), f.Elements...), nil
}

func (f *FakeBrowser) State(_ context.Context) (*entity.BrowserState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("state")
	if f.StateErr != nil {
		return nil, f.StateErr
	}
	st := f.Current
	st.ConsoleErrors = append([]string(nil), f.Current.ConsoleErrors...)
	return &st, nil
}

func (f *FakeBrowser) Network(_ context.Context) ([]entity.NetworkEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("network")
	if f.NetworkErr != nil {
		return nil, f.NetworkErr
	}
	return append([]entity.NetworkEntry(nil), f.Entries...), nil
}

func (f *FakeBrowser) Screenshot(_ context.Context) (*entity.Screenshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("screenshot")
	if f.ScreenshotErr != nil {
		return nil, f.ScreenshotErr
	}
	return f.Shot, nil
}

func (f *FakeBrowser) HTML(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("html")
	return f.Page, nil
}

func (f *FakeBrowser) ClickSelector(_ context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("clickSelector")
	f.Clicks = append(f.Clicks, selector)
	return f.ClickErr
}

func (f *FakeBrowser) ClickText(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("clickText")
	f.Clicks = append(f.Clicks, "text:"+text)
	if f.ClickTextHook != nil {
		if err := f.ClickTextHook(text); err != nil {
			return err
		}
	}
	return f.ClickErr
}

func (f *FakeBrowser) FillSelector(_ context.Context, selector, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("fillSelector")
	f.Fills = append(f.Fills, [2]string{selector, text})
	return f.FillErr
}

func (f *FakeBrowser) FillText(_ context.Context, label, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("fillText")
	f.Fills = append(f.Fills, [2]string{"text:" + label, text})
	return f.FillErr
}

func (f *FakeBrowser) Finalize(_ context.Context, tracingPath string) (*entity.FinalizeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("finalize")
	f.Finalized++
	if f.FinalizeErr != nil {
		return nil, f.FinalizeErr
	}
	return &entity.FinalizeResult{TracingPath: tracingPath}, nil
}

func (f *FakeBrowser) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("close")
	f.Closed++
	return f.CloseErr
}

// Called reports how many times the named call was made.
func (f *FakeBrowser) Called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == call {
			n++
		}
	}
	return n
}
