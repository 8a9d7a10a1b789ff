package crawler

import (
	"fmt"

	"sjsage522/listingtracker/internal/extract"
	"sjsage522/listingtracker/internal/fetch"
	"sjsage522/listingtracker/logger"
)

// Source kinds
const (
	SourceHTML = "html"
	SourceAPI  = "api"
)

// SourceConfig selects and configures a source
type SourceConfig struct {
	Kind      string
	SearchURL string
	APIURL    string
}

// CreateSource builds the configured source. f serves index pages for the
// HTML source, p serves gateway queries for the API source.
func CreateSource(cfg SourceConfig, f fetch.Fetcher, p fetch.JSONPoster, ex *extract.Extractor, log *logger.Logger) (Source, error) {
	switch cfg.Kind {
	case "", SourceHTML:
		return NewHTMLSource(cfg.SearchURL, f, ex, log), nil
	case SourceAPI:
		return NewAPISource(cfg.APIURL, p, ex, log), nil
	}
	return nil, fmt.Errorf("unknown source %q", cfg.Kind)
}
