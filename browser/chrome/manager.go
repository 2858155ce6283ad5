package chrome

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// Options configures the Chrome process.
type Options struct {
	// ExecPath falls back to CHROME_BIN, then to chromedp auto-detection.
	ExecPath     string
	Headless     bool
	WindowWidth  int
	WindowHeight int
	UserAgent    string
	UserDataDir  string
	// Args are extra command line switches, "--flag" or "--flag=value".
	Args []string
}

// Manager manages a Chrome browser instance and the tabs opened in it.
type Manager struct {
	options       Options
	allocator     context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	execPath      string
}

// NewManager creates a new Manager.
// It initializes the allocator context but does not launch the browser yet.
func NewManager(options Options) (*Manager, error) {
	execPath := options.ExecPath
	if execPath == "" {
		execPath = os.Getenv("CHROME_BIN")
		if execPath == "" {
			log.Warn("Chrome path not specified in config or CHROME_BIN env, will attempt auto-detection.")
		}
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
	}

	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	if options.Headless {
		opts = append(opts, chromedp.Headless)
		opts = append(opts, chromedp.DisableGPU)
	}

	if options.WindowWidth > 0 && options.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(options.WindowWidth, options.WindowHeight))
	}

	if options.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(options.UserDataDir))
	}

	if options.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(options.UserAgent))
	}

	opts = append(opts, flagOptions(options.Args)...)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Manager{
		options:     options,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		execPath:    execPath,
	}, nil
}

func flagOptions(args []string) []chromedp.ExecAllocatorOption {
	opts := make([]chromedp.ExecAllocatorOption, 0, len(args))
	for _, arg := range args {
		if arg == "" {
			continue
		}
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(strings.TrimPrefix(parts[0], "--"), parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(strings.TrimPrefix(parts[0], "--"), true))
		}
	}
	return opts
}

// Launch starts the browser process and its root context.
func (m *Manager) Launch() error {
	if m.allocator == nil {
		return fmt.Errorf("manager not properly initialized, allocator is nil")
	}

	browserCtx, browserCancel := chromedp.NewContext(
		m.allocator,
		chromedp.WithLogf(log.Infof),
		chromedp.WithErrorf(log.Debugf),
	)
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel

	if err := chromedp.Run(m.browserCtx); err != nil {
		_ = m.Close()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Infof("Chrome launched successfully with path: %s", m.execPath)
	return nil
}

// NewDriver opens a new tab at url and returns a driver bound to it.
func (m *Manager) NewDriver(url string) (*Driver, error) {
	if m.browserCtx == nil {
		return nil, fmt.Errorf("browser context not initialized. Call Launch first")
	}
	return NewDriver(m.browserCtx, url)
}

func (m *Manager) Close() error {
	if m.browserCancel != nil {
		log.Debug("Cancelling chromedp browser context...")
		m.browserCancel()
		m.browserCancel = nil
		m.browserCtx = nil
		log.Info("Chromedp browser context cancelled.")
	}

	if m.allocCancel != nil {
		log.Debug("Cancelling chromedp allocator context...")
		m.allocCancel()
		m.allocCancel = nil
		m.allocator = nil
		log.Info("Chromedp allocator context cancelled and browser process shut down.")
	}

	return nil
}

// ClearBrowserCache clears the browser cache.
func (m *Manager) ClearBrowserCache() error {
	if m.browserCtx == nil {
		return fmt.Errorf("browser context not initialized")
	}
	log.Info("Clearing browser cache...")
	if err := chromedp.Run(m.browserCtx, network.ClearBrowserCache()); err != nil {
		return fmt.Errorf("failed to clear browser cache: %w", err)
	}
	log.Info("Browser cache cleared.")
	return nil
}

// ClearBrowserCookies clears all browser cookies.
func (m *Manager) ClearBrowserCookies() error {
	if m.browserCtx == nil {
		return fmt.Errorf("browser context not initialized")
	}
	log.Info("Clearing browser cookies...")
	if err := chromedp.Run(m.browserCtx, network.ClearBrowserCookies()); err != nil {
		return fmt.Errorf("failed to clear browser cookies: %w", err)
	}
	log.Info("Browser cookies cleared.")
	return nil
}
