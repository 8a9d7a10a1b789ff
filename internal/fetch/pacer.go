package fetch

import (
	"context"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultCooldown is the pause after every request
const DefaultCooldown = 2 * time.Second

// Pacer enforces a fixed pause after every request, successful or not.
// Requests are sequential, so a pause after each one is the whole rate policy.
type Pacer struct {
	delay time.Duration
	wait  func(ctx context.Context, d time.Duration) error
}

// NewPacer creates a pacer; a negative delay disables pausing
func NewPacer(delay time.Duration) *Pacer {
	if delay < 0 {
		delay = 0
	}
	return &Pacer{delay: delay, wait: sleep}
}

// Delay returns the configured pause
func (p *Pacer) Delay() time.Duration {
	return p.delay
}

// Wait blocks for the cooldown or until ctx is done
func (p *Pacer) Wait(ctx context.Context) error {
	if p.delay == 0 {
		return ctx.Err()
	}
	return p.wait(ctx, p.delay)
}

// Fetcher wraps f so each fetch is followed by the cooldown
func (p *Pacer) Fetcher(f Fetcher) Fetcher {
	return FetcherFunc(func(ctx context.Context, url string) (*goquery.Document, error) {
		doc, err := f.Fetch(ctx, url)
		if werr := p.Wait(ctx); werr != nil && err == nil {
			err = werr
		}
		return doc, err
	})
}

// Poster wraps jp so each request is followed by the cooldown
func (p *Pacer) Poster(jp JSONPoster) JSONPoster {
	return PosterFunc(func(ctx context.Context, url string, payload any) ([]byte, error) {
		body, err := jp.PostJSON(ctx, url, payload)
		if werr := p.Wait(ctx); werr != nil && err == nil {
			err = werr
		}
		return body, err
	})
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
