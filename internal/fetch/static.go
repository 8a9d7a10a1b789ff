package fetch

import (
	"bytes"
	"context"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/listingtracker/helpers"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// DefaultStaticTimeout bounds one plain HTTP fetch
const DefaultStaticTimeout = 30 * time.Second

// StaticFetcher issues one plain GET per page
type StaticFetcher struct {
	client  *http.Client
	timeout time.Duration
	headers map[string]string
}

// NewStaticFetcher creates a fetcher; a nil client uses helpers.DefaultClient
func NewStaticFetcher(client *http.Client, timeout time.Duration) *StaticFetcher {
	if timeout <= 0 {
		timeout = DefaultStaticTimeout
	}
	return &StaticFetcher{client: client, timeout: timeout}
}

// WithHeaders returns a copy that adds headers to JSON requests
func (s *StaticFetcher) WithHeaders(headers map[string]string) *StaticFetcher {
	cp := *s
	cp.headers = make(map[string]string, len(headers))
	for k, v := range headers {
		cp.headers[k] = v
	}
	return &cp
}

// Fetch GETs url and parses the UTF-8 body
func (s *StaticFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	body, err := helpers.FetchHTML(ctx, s.client, url)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.NewParsing("fetch", url, "failed to parse HTML", err)
	}
	return doc, nil
}

// PostJSON POSTs payload as JSON
func (s *StaticFetcher) PostJSON(ctx context.Context, url string, payload any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return helpers.PostJSON(ctx, s.client, url, s.headers, payload)
}
