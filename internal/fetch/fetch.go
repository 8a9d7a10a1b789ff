// Package fetch turns URLs into parsed documents. Fetchers never retry; every
// failure is returned as a typed error for the caller to log and skip.
package fetch

import (
	"context"

	"github.com/PuerkitoBio/goquery"
)

// Fetcher retrieves a page and parses it
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
}

// JSONPoster sends a JSON request body and returns the raw response
type JSONPoster interface {
	PostJSON(ctx context.Context, url string, payload any) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, url string) (*goquery.Document, error)

// Fetch calls f
func (f FetcherFunc) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	return f(ctx, url)
}

// PosterFunc adapts a function to JSONPoster
type PosterFunc func(ctx context.Context, url string, payload any) ([]byte, error)

// PostJSON calls f
func (f PosterFunc) PostJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	return f(ctx, url, payload)
}
