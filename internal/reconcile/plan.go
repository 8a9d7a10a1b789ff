// Package reconcile merges a fresh scrape into the previous dataset.
package reconcile

import (
	"fmt"
	"strings"

	"sjsage522/listingtracker/internal/listing"
)

// Policy decides what a vanished listing is assumed to have become
type Policy string

const (
	// PolicySold marks vanished listings sold and no longer listed
	PolicySold Policy = "sold"
	// PolicyDelisted only marks vanished listings as no longer listed
	PolicyDelisted Policy = "delisted"
)

// ParsePolicy accepts "sold" or "delisted"; empty means sold
func ParsePolicy(s string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicySold:
		return PolicySold, nil
	case PolicyDelisted:
		return PolicyDelisted, nil
	}
	return "", fmt.Errorf("unknown vanished policy %q (want sold or delisted)", s)
}

// Plan is the key-level diff between a previous dataset and a scrape
type Plan struct {
	// Fresh are scraped records unknown to the previous dataset, in scrape
	// order, one per ID
	Fresh []listing.Record
	// Vanished are previous IDs missing from the scrape, in dataset order
	Vanished []string
	// Retained are previous IDs seen again, in dataset order
	Retained []string
}

// MakePlan diffs scraped against prior. A nil prior means a first run.
func MakePlan(prior *listing.Dataset, scraped []listing.Record) Plan {
	var plan Plan

	seen := make(map[string]struct{}, len(scraped))
	for _, r := range scraped {
		if r.ID == "" {
			continue
		}
		if _, dup := seen[r.ID]; dup {
			continue
		}
		seen[r.ID] = struct{}{}
		if !prior.Has(r.ID) {
			plan.Fresh = append(plan.Fresh, r.Clone())
		}
	}

	for _, id := range prior.Keys() {
		if _, ok := seen[id]; ok {
			plan.Retained = append(plan.Retained, id)
		} else {
			plan.Vanished = append(plan.Vanished, id)
		}
	}
	return plan
}

// apply flags a vanished record under policy; changed reports whether any
// flag actually moved
func (p Policy) apply(r *listing.Record) (changed bool) {
	before := *r
	r.CurrentlyListed = false
	if p == PolicySold {
		r.Sold = true
	}
	return before.CurrentlyListed != r.CurrentlyListed || before.Sold != r.Sold
}
