package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bug-reproducer/internal/application/port/output"
	"bug-reproducer/internal/domain/entity"
	"bug-reproducer/internal/infrastructure/browser/capture"
	"bug-reproducer/internal/infrastructure/browser/htmlsource"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

var _ output.BrowserPort = (*BrowserAdapter)(nil)

type BrowserAdapter struct {
	mu       sync.Mutex
	cfg      BrowserConfig
	logger   output.LoggerPort
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	recorder *capture.Recorder
	stop     context.CancelFunc
}

type BrowserConfig struct {
	SlowMotion  time.Duration
	Timeout     time.Duration
	NavTimeout  time.Duration
	NoSandbox   bool
	DevTools    bool
	// ControlURL attaches to an already running browser instead of
	// launching one.
	ControlURL      string
	ScreenshotWidth int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Timeout:         10 * time.Second,
		NavTimeout:      30 * time.Second,
		NoSandbox:       true,
		ScreenshotWidth: 1024,
	}
}

// NewBrowserAdapter prepares a session; nothing is launched until Init.
func NewBrowserAdapter(cfg BrowserConfig, logger output.LoggerPort) *BrowserAdapter {
	return &BrowserAdapter{
		cfg:      cfg,
		logger:   logger,
		recorder: capture.NewRecorder(),
	}
}

func (b *BrowserAdapter) Init(ctx context.Context, headless bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.page != nil {
		return nil
	}

	controlURL := b.cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().
			Context(ctx).
			Headless(headless).
			Devtools(b.cfg.DevTools).
			NoSandbox(b.cfg.NoSandbox).
			Delete("use-mock-keychain").
			Set("disable-setuid-sandbox")

		u, err := l.Launch()
		if err != nil {
			return fmt.Errorf("failed to launch browser: %w", err)
		}
		b.launcher = l
		controlURL = u
	}

	browser := rod.New().ControlURL(controlURL).SlowMotion(b.cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		b.killLauncher()
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = browser.Close()
		b.killLauncher()
		return fmt.Errorf("failed to open page: %w", err)
	}

	evCtx, stop := context.WithCancel(context.Background())
	b.subscribe(page.Context(evCtx))

	b.browser = browser
	b.page = page
	b.stop = stop

	b.logger.Info("Browser session started", "headless", headless, "remote", b.cfg.ControlURL != "")
	return nil
}

func (b *BrowserAdapter) current() (*rod.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.page == nil {
		return nil, entity.ErrNotInitialized
	}
	return b.page, nil
}

func (b *BrowserAdapter) Navigate(ctx context.Context, rawURL string) error {
	page, err := b.current()
	if err != nil {
		return err
	}
	if err := validateURL(rawURL); err != nil {
		return err
	}

	p := page.Context(ctx).Timeout(b.cfg.NavTimeout)
	waitIdle := p.WaitRequestIdle(500*time.Millisecond, nil, nil, nil)

	if err := p.Navigate(rawURL); err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("page did not load: %w", err)
	}
	waitIdle()
	return nil
}

func validateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", entity.ErrInvalidURL, rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: %s: missing host", entity.ErrInvalidURL, rawURL)
		}
	case "file", "about", "data":
	default:
		return fmt.Errorf("%w: %s: unsupported scheme %q", entity.ErrInvalidURL, rawURL, u.Scheme)
	}
	return nil
}

func (b *BrowserAdapter) ClickSelector(ctx context.Context, selector string) error {
	page, err := b.current()
	if err != nil {
		return err
	}

	el, err := page.Context(ctx).Timeout(b.cfg.Timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", entity.ErrElementNotFound, selector, err)
	}
	return click(el)
}

func (b *BrowserAdapter) ClickText(ctx context.Context, text string) error {
	page, err := b.current()
	if err != nil {
		return err
	}

	el, err := b.findByText(page.Context(ctx), clickableByText(text), anyByText(text))
	if err != nil {
		return fmt.Errorf("%w: text %q: %v", entity.ErrElementNotFound, text, err)
	}
	return click(el)
}

func (b *BrowserAdapter) FillSelector(ctx context.Context, selector, text string) error {
	page, err := b.current()
	if err != nil {
		return err
	}

	el, err := page.Context(ctx).Timeout(b.cfg.Timeout).Element(selector)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", entity.ErrElementNotFound, selector, err)
	}
	return fill(el, text)
}

func (b *BrowserAdapter) FillText(ctx context.Context, label, text string) error {
	page, err := b.current()
	if err != nil {
		return err
	}

	el, err := b.findByText(page.Context(ctx), fieldByLabel(label), fieldByLabel(label))
	if err != nil {
		return fmt.Errorf("%w: field %q: %v", entity.ErrElementNotFound, label, err)
	}
	return fill(el, text)
}

// findByText waits until fallback matches anything, then prefers the first
// visible match of preferred.
func (b *BrowserAdapter) findByText(page *rod.Page, preferred, fallback string) (*rod.Element, error) {
	first, err := page.Timeout(b.cfg.Timeout).ElementX(fallback + " | " + preferred)
	if err != nil {
		return nil, err
	}

	candidates, err := page.ElementsX(preferred)
	if err == nil {
		for _, el := range candidates {
			if visible, _ := el.Visible(); visible {
				return el, nil
			}
		}
	}
	return first, nil
}

func click(el *rod.Element) error {
	_ = el.ScrollIntoView()
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}

func fill(el *rod.Element, text string) error {
	if err := el.SelectAllText(); err == nil {
		_ = el.Input("")
	}
	if err := el.Input(text); err != nil {
		return fmt.Errorf("input failed: %w", err)
	}
	return nil
}

func (b *BrowserAdapter) State(ctx context.Context) (*entity.BrowserState, error) {
	page, err := b.current()
	if err != nil {
		return nil, err
	}

	info, err := page.Context(ctx).Info()
	if err != nil {
		return nil, fmt.Errorf("failed to read page info: %w", err)
	}

	return &entity.BrowserState{
		URL:            info.URL,
		Title:          info.Title,
		ConsoleErrors:  b.recorder.ConsoleErrors(),
		NetworkEntries: b.recorder.Network(capture.DefaultSnapshotLimit),
		BackendLogs:    b.recorder.BackendLogs(),
	}, nil
}

func (b *BrowserAdapter) Network(ctx context.Context) ([]entity.NetworkEntry, error) {
	if _, err := b.current(); err != nil {
		return nil, err
	}
	return b.recorder.Network(capture.DefaultSnapshotLimit), nil
}

// AddBackendLog attaches a server-side log line to the session.
func (b *BrowserAdapter) AddBackendLog(line string) {
	b.recorder.AddBackendLog(line)
}

func (b *BrowserAdapter) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := b.current()
	if err != nil {
		return nil, err
	}

	imgBytes, err := page.Context(ctx).Screenshot(false, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if w := b.cfg.ScreenshotWidth; w > 0 && img.Bounds().Dx() > w {
		img = imaging.Resize(img, w, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (b *BrowserAdapter) HTML(ctx context.Context) (string, error) {
	page, err := b.current()
	if err != nil {
		return "", err
	}

	raw, err := page.Context(ctx).HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return htmlsource.CleanSnapshot(raw, nil)
}

// Finalize writes the session timeline to tracingPath. Video recording is
// not supported, so VideoPath stays empty.
func (b *BrowserAdapter) Finalize(_ context.Context, tracingPath string) (*entity.FinalizeResult, error) {
	if _, err := b.current(); err != nil {
		return nil, err
	}
	if tracingPath == "" {
		return &entity.FinalizeResult{}, nil
	}

	if err := os.MkdirAll(filepath.Dir(tracingPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create trace directory: %w", err)
	}
	f, err := os.Create(tracingPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace file: %w", err)
	}
	defer f.Close()

	if err := b.recorder.WriteTrace(f); err != nil {
		return nil, fmt.Errorf("failed to write trace: %w", err)
	}
	return &entity.FinalizeResult{TracingPath: tracingPath}, nil
}

// Close releases the session. It is safe to call more than once and before
// Init.
func (b *BrowserAdapter) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stop != nil {
		b.stop()
		b.stop = nil
	}

	var err error
	if b.browser != nil {
		if cerr := b.browser.Close(); cerr != nil {
			err = fmt.Errorf("failed to close browser: %w", cerr)
		}
		b.browser = nil
	}
	b.killLauncher()
	b.page = nil
	return err
}

func (b *BrowserAdapter) killLauncher() {
	if b.launcher != nil {
		b.launcher.Kill()
		b.launcher.Cleanup()
		b.launcher = nil
	}
}
