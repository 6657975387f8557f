package browser

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chromedp/chromedp"

	"github.com/shopclip/backend/internal/domain"
)

const (
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
	windowWidth      = 1920
	windowHeight     = 1080
)

// Config controls the headless Chrome instance
type Config struct {
	// ExecPath points at a Chrome/Chromium binary; empty uses chromedp's lookup
	ExecPath  string
	UserAgent string
	// Timeout bounds one page render, navigation included
	Timeout time.Duration
	// SettleDelay gives client-side rendering time to fill the DOM after load
	SettleDelay time.Duration
}

// Fetcher renders pages in a shared headless Chrome, one tab per call
type Fetcher struct {
	cfg           Config
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

func allocatorOptions(cfg Config) []chromedp.ExecAllocatorOption {
	ua := cfg.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(windowWidth, windowHeight),
		chromedp.UserAgent(ua),
	)
	if cfg.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ExecPath))
	}
	return opts
}

// New launches the browser. It fails fast when Chrome cannot be started so
// the caller can run without the headless pass.
func New(cfg Config) (*Fetcher, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// An empty Run starts the browser so later tabs share it.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("%w: %v", domain.ErrBrowserUnavailable, err)
	}

	log.Info("headless browser started", "exec", cfg.ExecPath, "timeout", cfg.Timeout)
	return &Fetcher{
		cfg:           cfg,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Fetch opens pageURL in a new tab and returns the rendered outer HTML
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*domain.Page, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	timeoutCtx, cancel := context.WithTimeout(tabCtx, f.cfg.Timeout)
	defer cancel()

	// Propagate the caller's cancellation into the tab.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	tasks := []chromedp.Action{
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
	}
	if f.cfg.SettleDelay > 0 {
		tasks = append(tasks, chromedp.Sleep(f.cfg.SettleDelay))
	}

	var html, location string
	tasks = append(tasks,
		chromedp.Location(&location),
		chromedp.OuterHTML("html", &html),
	)

	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		log.Warn("headless render failed", "url", pageURL, "err", err)
		return nil, fmt.Errorf("%w: headless render: %v", domain.ErrFetchFailed, err)
	}
	if location == "" {
		location = pageURL
	}

	log.Debug("page rendered", "url", location, "bytes", len(html))
	return &domain.Page{URL: location, HTML: []byte(html)}, nil
}

// Close shuts the browser down
func (f *Fetcher) Close() error {
	f.browserCancel()
	f.allocCancel()
	return nil
}
