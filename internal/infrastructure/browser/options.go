// Package browser owns the headless Chrome process for one run and exposes the
// loaded tab and its frames as ports.Surface values.
package browser

import (
	"time"

	"github.com/chromedp/chromedp"
)

const (
	DefaultWindowWidth  = 1366
	DefaultWindowHeight = 900
	DefaultUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
	DefaultNavTimeout   = 60 * time.Second
	DefaultLoadSettle   = 1500 * time.Millisecond
)

// Options contains configuration for browser automation.
type Options struct {
	Headless     bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
	NavTimeout   time.Duration
	// LoadSettle bounds the wait for rendered body text after navigation.
	LoadSettle time.Duration
	// ExecPath overrides the Chrome binary lookup when set.
	ExecPath string
}

// DefaultOptions returns standard browser options.
func DefaultOptions() Options {
	return Options{
		Headless:     true,
		UserAgent:    DefaultUserAgent,
		WindowWidth:  DefaultWindowWidth,
		WindowHeight: DefaultWindowHeight,
		NavTimeout:   DefaultNavTimeout,
		LoadSettle:   DefaultLoadSettle,
	}
}

// BuildChromeOptions creates allocator options. Site isolation stays off so
// every frame lives in the page's own target and can be evaluated directly.
func BuildChromeOptions(opts Options) []chromedp.ExecAllocatorOption {
	chromeOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	chromeOpts = append(chromeOpts,
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-features", "IsolateOrigins,site-per-process"),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("lang", "en-US"),
		chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight),
	)

	if opts.UserAgent != "" {
		chromeOpts = append(chromeOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		chromeOpts = append(chromeOpts, chromedp.ExecPath(opts.ExecPath))
	}

	return chromeOpts
}

// stealthScript runs before any page script in every document of the tab.
const stealthScript = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined, configurable: true });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'], configurable: true });
window.chrome = window.chrome || { runtime: {} };
`
