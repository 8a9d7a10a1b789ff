package crawler

import (
	"context"
	"fmt"

	"sjsage522/listingtracker/internal/listing"
	"sjsage522/listingtracker/logger"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// WalkResult is everything a walk collected
type WalkResult struct {
	Records     []listing.Record
	Pages       int
	FailedPages int
	Duplicates  int
}

// Walker pages through a source strictly sequentially
type Walker struct {
	source   Source
	maxPages int
	log      *logger.Logger
}

// NewWalker creates a walker; maxPages 0 means no cap
func NewWalker(source Source, maxPages int, log *logger.Logger) *Walker {
	if log == nil {
		log = logger.Nop()
	}
	return &Walker{source: source, maxPages: maxPages, log: log}
}

// Walk collects every listing matching filter. The first page must succeed
// since it carries the result count; later failures are logged and skipped.
// Identical cards (same address and price) seen on several pages are kept once.
func (w *Walker) Walk(ctx context.Context, filter SearchFilter) (WalkResult, error) {
	req := FirstPage(filter, w.source.PageSize())

	first, err := w.source.Fetch(ctx, req)
	if err != nil {
		return WalkResult{}, fmt.Errorf("%s: first index page: %w", w.source.GetName(), err)
	}
	// Without a count the walk cannot know where to stop, and stopping early
	// would flag every listing on the unseen pages as vanished.
	if first.Total <= 0 && first.Pages <= 0 && len(first.Listings) > 0 {
		return WalkResult{}, apperrors.NewParsing(w.source.GetName(), "", "first index page has listings but no result count", nil)
	}

	pages := pageCount(first, req.PageSize)
	if w.maxPages > 0 && pages > w.maxPages {
		pages = w.maxPages
	}
	w.log.Info().Str("source", w.source.GetName()).Int("total", first.Total).Int("pages", pages).Msg("walking index pages")

	result := WalkResult{Pages: pages}
	seen := make(map[string]struct{})
	collect := func(p Page) {
		for _, rec := range p.Listings {
			key := rec.DedupKey()
			if _, dup := seen[key]; dup {
				result.Duplicates++
				continue
			}
			seen[key] = struct{}{}
			result.Records = append(result.Records, rec)
		}
	}
	collect(first)

	for n := 2; n <= pages; n++ {
		if err := ctx.Err(); err != nil {
			return WalkResult{}, err
		}
		req = req.Next()
		page, err := w.source.Fetch(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return WalkResult{}, ctx.Err()
			}
			result.FailedPages++
			w.log.Warn().Err(err).Int("page", req.Number()).Msg("index page failed, skipping")
			continue
		}
		collect(page)
	}

	w.log.Info().
		Int("records", len(result.Records)).
		Int("failed_pages", result.FailedPages).
		Int("duplicates", result.Duplicates).
		Msg("walk complete")
	return result, nil
}

func pageCount(first Page, pageSize int) int {
	if first.Pages > 0 {
		return first.Pages
	}
	if first.Total > 0 && pageSize > 0 {
		return (first.Total + pageSize - 1) / pageSize
	}
	return 0
}
