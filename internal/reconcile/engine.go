package reconcile

import (
	"context"
	"time"

	"sjsage522/listingtracker/internal/listing"
	"sjsage522/listingtracker/logger"
)

// DetailEnricher fetches a listing's own page
type DetailEnricher interface {
	Enrich(ctx context.Context, rec listing.Record) (listing.Record, error)
}

// GeoEnricher attaches region labels
type GeoEnricher interface {
	Enrich(rec listing.Record) listing.Record
}

// Transition is a previous row whose flags changed in this run
type Transition struct {
	Record listing.Record
	Status Policy
}

// Result is the merged dataset plus what changed
type Result struct {
	Dataset     *listing.Dataset
	Fresh       []listing.Record
	Transitions []Transition

	Untouched      int
	Flagged        int
	New            int
	EnrichFailures int
}

// Engine applies a Plan: flags vanished rows, enriches fresh ones, merges
type Engine struct {
	details DetailEnricher
	geo     GeoEnricher
	policy  Policy
	now     func() time.Time
	log     *logger.Logger
}

// NewEngine creates an engine. A nil details or geo enricher skips that step.
func NewEngine(details DetailEnricher, geo GeoEnricher, policy Policy, log *logger.Logger) *Engine {
	if policy == "" {
		policy = PolicySold
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{details: details, geo: geo, policy: policy, now: time.Now, log: log}
}

// Reconcile merges scraped into prior. Rows seen again are left exactly as
// they were and their pages are never fetched. Fresh rows come first in the
// merged dataset, followed by every previous row in its original order.
//
// Only ctx cancellation returns an error; per-listing enrichment failures are
// logged and counted.
func (e *Engine) Reconcile(ctx context.Context, prior *listing.Dataset, scraped []listing.Record) (*Result, error) {
	plan := MakePlan(prior, scraped)
	now := e.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	res := &Result{
		Untouched: len(plan.Retained),
		Flagged:   len(plan.Vanished),
		New:       len(plan.Fresh),
	}

	for _, rec := range plan.Fresh {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec.CurrentlyListed = true
		rec.Sold = false
		rec.DateScraped = today

		if e.details != nil {
			enriched, err := e.details.Enrich(ctx, rec)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				res.EnrichFailures++
				e.log.Warn().Err(err).Str("url", rec.ID).Msg("detail page unavailable, keeping summary")
			}
			rec = enriched
		}
		if e.geo != nil {
			rec = e.geo.Enrich(rec)
		}
		res.Fresh = append(res.Fresh, rec)
	}

	vanished := make(map[string]struct{}, len(plan.Vanished))
	for _, id := range plan.Vanished {
		vanished[id] = struct{}{}
	}

	merged := listing.NewDataset()
	for _, rec := range res.Fresh {
		if err := merged.Append(rec); err != nil {
			return nil, err
		}
	}
	for _, rec := range prior.Records() {
		if _, ok := vanished[rec.ID]; ok && e.policy.apply(&rec) {
			res.Transitions = append(res.Transitions, Transition{Record: rec.Clone(), Status: e.policy})
		}
		if err := merged.Append(rec); err != nil {
			return nil, err
		}
	}
	res.Dataset = merged

	e.log.Info().
		Int("untouched", res.Untouched).
		Int("flagged", res.Flagged).
		Int("new", res.New).
		Int("transitions", len(res.Transitions)).
		Int("enrich_failures", res.EnrichFailures).
		Msg("reconciled")
	return res, nil
}
