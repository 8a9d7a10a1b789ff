// Package detail fills in what only a listing's own page knows.
package detail

import (
	"context"

	"sjsage522/listingtracker/internal/extract"
	"sjsage522/listingtracker/internal/fetch"
	"sjsage522/listingtracker/internal/listing"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// Enricher fetches detail pages and merges them into records
type Enricher struct {
	fetcher   fetch.Fetcher
	extractor *extract.Extractor
}

// NewEnricher creates an enricher reading pages through f
func NewEnricher(f fetch.Fetcher, ex *extract.Extractor) *Enricher {
	return &Enricher{fetcher: f, extractor: ex}
}

// Enrich fetches rec's page once and returns the enriched copy. On a fetch
// failure the record comes back unchanged together with the error; callers
// keep the record and log the error.
//
// Description, features and view count only exist on the detail page and are
// always taken from it. Publish date and coordinates only fill gaps.
func (e *Enricher) Enrich(ctx context.Context, rec listing.Record) (listing.Record, error) {
	out := rec.Clone()

	doc, err := e.fetcher.Fetch(ctx, rec.ID)
	if err != nil {
		return out, err
	}
	raw, err := doc.Html()
	if err != nil {
		return out, apperrors.NewParsing("detail", rec.ID, "failed to render document", err)
	}

	d := e.extractor.FromDetailPage(doc, raw)

	out.Description = d.Description.Ptr()
	out.Features = d.Features.Ptr()
	out.ViewCount = d.ViewCount.Ptr()

	if out.PublishDate == nil {
		out.PublishDate = d.PublishDate.Ptr()
	}
	if !out.HasPoint() && d.Longitude.OK() && d.Latitude.OK() {
		out.Longitude = d.Longitude.Ptr()
		out.Latitude = d.Latitude.Ptr()
	}
	return out, nil
}
