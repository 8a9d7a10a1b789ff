package fetch

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/listingtracker/logger"
	apperrors "sjsage522/listingtracker/pkg/errors"
	"sjsage522/listingtracker/services/cache"
)

// DefaultBlockTime is how long a host stays blocked after throttling us
const DefaultBlockTime = 500 * time.Second

// BlockGuard remembers hosts that answered 429/430 and fails requests to them
// fast until the block expires.
type BlockGuard struct {
	cache     cache.CacheService
	blockTime time.Duration
	log       *logger.Logger
}

// NewBlockGuard creates a guard storing block markers in c
func NewBlockGuard(c cache.CacheService, blockTime time.Duration, log *logger.Logger) *BlockGuard {
	if blockTime <= 0 {
		blockTime = DefaultBlockTime
	}
	if log == nil {
		log = logger.Nop()
	}
	return &BlockGuard{cache: c, blockTime: blockTime, log: log}
}

// Key is the cache key marking rawURL's host as blocked
func (g *BlockGuard) Key(rawURL string) string {
	host := rawURL
	if u, err := url.Parse(rawURL); err == nil && u.Host != "" {
		host = u.Host
	}
	return host + "_rate_limited"
}

func (g *BlockGuard) check(rawURL string) error {
	if g.cache == nil {
		return nil
	}
	if _, err := g.cache.Get(g.Key(rawURL)); err == nil {
		return apperrors.NewRateLimit("fetch", rawURL, g.blockTime)
	}
	return nil
}

func (g *BlockGuard) observe(rawURL string, err error) {
	if g.cache == nil || !apperrors.Is(err, apperrors.ErrorTypeRateLimit) {
		return
	}
	key := g.Key(rawURL)
	if serr := g.cache.Set(key, []byte(fmt.Sprintf("%d", g.blockTime/time.Second)), g.blockTime); serr != nil {
		g.log.Warn().Err(serr).Str("key", key).Msg("failed to store rate limit marker")
		return
	}
	g.log.Warn().Str("key", key).Dur("block", g.blockTime).Msg("host rate limited us, blocking further requests")
}

// Fetcher wraps f with the block check
func (g *BlockGuard) Fetcher(f Fetcher) Fetcher {
	return FetcherFunc(func(ctx context.Context, rawURL string) (*goquery.Document, error) {
		if err := g.check(rawURL); err != nil {
			return nil, err
		}
		doc, err := f.Fetch(ctx, rawURL)
		g.observe(rawURL, err)
		return doc, err
	})
}

// Poster wraps jp with the block check
func (g *BlockGuard) Poster(jp JSONPoster) JSONPoster {
	return PosterFunc(func(ctx context.Context, rawURL string, payload any) ([]byte, error) {
		if err := g.check(rawURL); err != nil {
			return nil, err
		}
		body, err := jp.PostJSON(ctx, rawURL, payload)
		g.observe(rawURL, err)
		return body, err
	})
}
