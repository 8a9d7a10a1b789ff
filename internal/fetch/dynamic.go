package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"sjsage522/listingtracker/helpers"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// DefaultDynamicTimeout bounds one headless browser session
const DefaultDynamicTimeout = 90 * time.Second

// DefaultCookieButton is the portal's consent dialog accept button
const DefaultCookieButton = ".cc-modal__btn--daft"

// DynamicOptions configures the headless browser
type DynamicOptions struct {
	ExecPath     string
	Timeout      time.Duration
	CookieButton string
	ScrollSteps  int
	ScrollPause  time.Duration
	Settle       time.Duration
}

// DynamicFetcher renders pages in headless Chrome. Each Fetch starts its own
// browser and tears it down before returning.
type DynamicFetcher struct {
	opts DynamicOptions
}

// NewDynamicFetcher fills unset options with defaults
func NewDynamicFetcher(opts DynamicOptions) *DynamicFetcher {
	if opts.ExecPath == "" {
		opts.ExecPath = FindChromeBinary()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultDynamicTimeout
	}
	if opts.CookieButton == "" {
		opts.CookieButton = DefaultCookieButton
	}
	if opts.ScrollSteps <= 0 {
		opts.ScrollSteps = 8
	}
	if opts.ScrollPause <= 0 {
		opts.ScrollPause = 500 * time.Millisecond
	}
	if opts.Settle <= 0 {
		opts.Settle = 2 * time.Second
	}
	return &DynamicFetcher{opts: opts}
}

func (d *DynamicFetcher) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(helpers.UserAgent),
	)
	if d.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(d.opts.ExecPath))
	}
	return opts
}

// Fetch navigates, dismisses the cookie dialog, scrolls to trigger lazy
// loading and returns the rendered document.
func (d *DynamicFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, d.allocatorOptions()...)
	defer cancelAlloc()

	// Suppress chromedp log noise
	tabCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancelTab()

	runCtx, cancel := context.WithTimeout(tabCtx, d.opts.Timeout)
	defer cancel()

	var html string
	err := chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(d.opts.Settle),
		d.acceptCookies(),
		d.scroll(),
		chromedp.Evaluate(`document.documentElement.outerHTML`, &html),
	)
	if err != nil {
		return nil, apperrors.NewRender("fetch", url, "headless session failed", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, apperrors.NewParsing("fetch", url, "failed to parse rendered HTML", err)
	}
	return doc, nil
}

// acceptCookies clicks the consent button only if it is on the page
func (d *DynamicFetcher) acceptCookies() chromedp.Action {
	js := fmt.Sprintf(`(() => {
		const b = document.querySelector(%q);
		if (b) { b.click(); return true; }
		return false;
	})()`, d.opts.CookieButton)
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var clicked bool
		if err := chromedp.Evaluate(js, &clicked).Do(ctx); err != nil {
			return err
		}
		if clicked {
			return chromedp.Sleep(d.opts.ScrollPause).Do(ctx)
		}
		return nil
	})
}

func (d *DynamicFetcher) scroll() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for i := 0; i < d.opts.ScrollSteps; i++ {
			if err := chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil).Do(ctx); err != nil {
				return err
			}
			if err := chromedp.Sleep(d.opts.ScrollPause).Do(ctx); err != nil {
				return err
			}
		}
		return chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil).Do(ctx)
	})
}

// FindChromeBinary resolves CHROME_BIN or a well-known browser install
func FindChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	paths := []string{
		"/usr/bin/google-chrome-stable",
		"/usr/bin/chromium",
		"/snap/bin/chromium",
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
