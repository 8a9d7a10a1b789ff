package crawler

import (
	"context"

	"sjsage522/listingtracker/internal/listing"
)

// DefaultPageSize is the portal's index page size
const DefaultPageSize = 20

// Page is one index page worth of results
type Page struct {
	// Total is the number of matching listings, if the page reports it
	Total int
	// Pages is the explicit page count, if the page reports it
	Pages    int
	Listings []listing.Record
}

// Source produces index pages for a filter
type Source interface {
	// Fetch retrieves and extracts one page
	Fetch(ctx context.Context, req PageRequest) (Page, error)

	// PageSize is the number of results per page this source asks for
	PageSize() int

	// GetName returns the source's name for logging
	GetName() string
}

// PageRequest describes one page of a search. It is a value: advancing
// produces a new request and never mutates the old one.
type PageRequest struct {
	Filter   SearchFilter
	From     int
	PageSize int
}

// FirstPage is the request for the first page of filter's results
func FirstPage(filter SearchFilter, pageSize int) PageRequest {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return PageRequest{Filter: filter.Clone(), From: 0, PageSize: pageSize}
}

// Next is the request for the following page
func (r PageRequest) Next() PageRequest {
	r.From += r.PageSize
	return r
}

// Number is the 1-based page number
func (r PageRequest) Number() int {
	if r.PageSize <= 0 {
		return 1
	}
	return r.From/r.PageSize + 1
}
