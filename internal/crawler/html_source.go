package crawler

import (
	"context"
	"net/url"
	"strconv"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/listingtracker/internal/extract"
	"sjsage522/listingtracker/internal/fetch"
	"sjsage522/listingtracker/internal/listing"
	"sjsage522/listingtracker/logger"
)

// DefaultSearchURL is the house-for-sale index for the whole country
const DefaultSearchURL = "https://www.daft.ie/property-for-sale/ireland/houses"

// HTMLSource walks the public search result pages
type HTMLSource struct {
	searchURL string
	fetcher   fetch.Fetcher
	extractor *extract.Extractor
	log       *logger.Logger
}

// NewHTMLSource creates a source reading searchURL through f
func NewHTMLSource(searchURL string, f fetch.Fetcher, ex *extract.Extractor, log *logger.Logger) *HTMLSource {
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &HTMLSource{searchURL: searchURL, fetcher: f, extractor: ex, log: log}
}

// GetName returns the source's name for logging
func (s *HTMLSource) GetName() string {
	return "html"
}

// PageSize returns the index page size
func (s *HTMLSource) PageSize() int {
	return DefaultPageSize
}

// URL builds the index URL for req
func (s *HTMLSource) URL(req PageRequest) string {
	u, err := url.Parse(s.searchURL)
	if err != nil {
		return s.searchURL
	}
	q := u.Query()
	q.Set("sort", "publishDateDesc")
	q.Set("from", strconv.Itoa(req.From))
	q.Set("pageSize", strconv.Itoa(req.PageSize))
	for _, loc := range req.Filter.Locations {
		q.Add("location", loc)
	}
	if req.Filter.PriceFrom > 0 {
		q.Set("salePrice_from", strconv.Itoa(req.Filter.PriceFrom))
	}
	if req.Filter.PriceTo > 0 {
		q.Set("salePrice_to", strconv.Itoa(req.Filter.PriceTo))
	}
	if req.Filter.MinBeds > 0 {
		q.Set("numBeds_from", strconv.Itoa(req.Filter.MinBeds))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Fetch retrieves one index page and extracts its cards
func (s *HTMLSource) Fetch(ctx context.Context, req PageRequest) (Page, error) {
	pageURL := s.URL(req)
	doc, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return Page{}, err
	}
	return s.parse(doc, pageURL), nil
}

func (s *HTMLSource) parse(doc *goquery.Document, pageURL string) Page {
	page := Page{Total: s.extractor.ResultCount(doc).OrElse(0)}

	skipped := 0
	s.extractor.Cards(doc).Each(func(_ int, card *goquery.Selection) {
		rec, ok := s.extractor.FromCard(card)
		if !ok {
			skipped++
			return
		}
		page.Listings = append(page.Listings, rec)
	})
	if skipped > 0 {
		s.log.Debug().Str("url", pageURL).Int("skipped", skipped).Msg("cards without a link skipped")
	}
	if page.Listings == nil {
		page.Listings = []listing.Record{}
	}
	return page
}
