// Package surface implements the form-surface collaborator over a real
// browser using go-rod. It is the only package that touches the DOM; the
// engine sees ordered Field and Control values and nothing else.
package surface

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// BrowserConfig holds browser connection settings.
type BrowserConfig struct {
	DebuggerURL         string `yaml:"debugger_url" json:"debugger_url"`
	Headless            bool   `yaml:"headless" json:"headless"`
	ViewportWidth       int    `yaml:"viewport_width" json:"viewport_width"`
	ViewportHeight      int    `yaml:"viewport_height" json:"viewport_height"`
	NavigationTimeoutMs int    `yaml:"navigation_timeout_ms" json:"navigation_timeout_ms"`
}

// DefaultBrowserConfig returns sensible defaults.
func DefaultBrowserConfig() BrowserConfig {
	return BrowserConfig{
		Headless:            false,
		ViewportWidth:       1920,
		ViewportHeight:      1080,
		NavigationTimeoutMs: 30000,
	}
}

// NavigationTimeout returns the navigation timeout.
func (c BrowserConfig) NavigationTimeout() time.Duration {
	if c.NavigationTimeoutMs == 0 {
		return 30 * time.Second
	}
	return time.Duration(c.NavigationTimeoutMs) * time.Millisecond
}

// Browser owns the Chrome connection and hands out pages.
type Browser struct {
	cfg        BrowserConfig
	mu         sync.Mutex
	browser    *rod.Browser
	controlURL string
}

// NewBrowser creates an unconnected browser manager.
func NewBrowser(cfg BrowserConfig) *Browser {
	return &Browser{cfg: cfg}
}

// Start connects to an existing Chrome or launches a new one.
func (b *Browser) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser != nil {
		if _, err := b.browser.Version(); err == nil {
			return nil
		}
		_ = b.browser.Close()
		b.browser = nil
	}

	controlURL := b.cfg.DebuggerURL
	if controlURL == "" {
		url, err := launcher.New().Headless(b.cfg.Headless).Launch()
		if err != nil {
			return fmt.Errorf("no debugger_url and failed to launch: %w", err)
		}
		controlURL = url
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to chrome: %w", err)
	}

	b.browser = browser
	b.controlURL = controlURL
	return nil
}

// Shutdown closes the browser connection.
func (b *Browser) Shutdown() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	b.controlURL = ""
	return err
}

// OpenPage navigates a fresh page to the URL and wraps it as a PageSurface.
func (b *Browser) OpenPage(ctx context.Context, url string) (*PageSurface, error) {
	b.mu.Lock()
	browser := b.browser
	b.mu.Unlock()
	if browser == nil {
		return nil, fmt.Errorf("browser not connected")
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: url})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             b.cfg.ViewportWidth,
		Height:            b.cfg.ViewportHeight,
		DeviceScaleFactor: 1.0,
		Mobile:            false,
	}).Call(page); err != nil {
		// Viewport is cosmetic; keep going.
		_ = err
	}

	if err := page.Timeout(b.cfg.NavigationTimeout()).WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	return NewPageSurface(page), nil
}
