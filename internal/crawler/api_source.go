package crawler

import (
	"context"
	"encoding/json"
	"strconv"

	"sjsage522/listingtracker/internal/extract"
	"sjsage522/listingtracker/internal/fetch"
	"sjsage522/listingtracker/internal/listing"
	"sjsage522/listingtracker/logger"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// DefaultAPIURL is the portal's search gateway
const DefaultAPIURL = "https://gateway.daft.ie/old/v1/listings"

// APIPageSize is the page size the gateway is queried with
const APIPageSize = 50

// DefaultStoredShapes are the gateway's shape ids covering the four provinces
var DefaultStoredShapes = []string{"1", "3", "2", "4"}

// APIHeaders are sent with every gateway request
var APIHeaders = map[string]string{
	"brand":           "daft",
	"platform":        "web",
	"cache-control":   "no-cache, no-store",
	"accept-language": "en-IE,en;q=0.9",
}

// APISource walks the JSON search gateway
type APISource struct {
	apiURL    string
	poster    fetch.JSONPoster
	extractor *extract.Extractor
	shapes    []string
	log       *logger.Logger
}

// NewAPISource creates a source posting to apiURL through p
func NewAPISource(apiURL string, p fetch.JSONPoster, ex *extract.Extractor, log *logger.Logger) *APISource {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &APISource{apiURL: apiURL, poster: p, extractor: ex, shapes: DefaultStoredShapes, log: log}
}

// GetName returns the source's name for logging
func (s *APISource) GetName() string {
	return "api"
}

// PageSize returns the gateway page size
func (s *APISource) PageSize() int {
	return APIPageSize
}

// Payload is the gateway request body for req
func (s *APISource) Payload(req PageRequest) map[string]any {
	ranges := []map[string]string{}
	if req.Filter.PriceFrom > 0 || req.Filter.PriceTo > 0 {
		ranges = append(ranges, rangeFilter("salePrice", req.Filter.PriceFrom, req.Filter.PriceTo))
	}
	if req.Filter.MinBeds > 0 {
		ranges = append(ranges, rangeFilter("numBeds", req.Filter.MinBeds, 0))
	}

	return map[string]any{
		"section": "residential-for-sale",
		"filters": []map[string]any{
			{"name": "adState", "values": []string{"published"}},
			{"name": "propertyType", "values": []string{"houses"}},
		},
		"andFilters": []any{},
		"ranges":     ranges,
		"paging": map[string]string{
			"from":     strconv.Itoa(req.From),
			"pageSize": strconv.Itoa(req.PageSize),
		},
		"geoFilter": map[string]any{
			"storedShapeIds": s.shapes,
			"geoSearchType":  "STORED_SHAPES",
		},
		"terms": "",
		"sort":  "publishDateDesc",
	}
}

func rangeFilter(name string, from, to int) map[string]string {
	r := map[string]string{"name": name, "from": "", "to": ""}
	if from > 0 {
		r["from"] = strconv.Itoa(from)
	}
	if to > 0 {
		r["to"] = strconv.Itoa(to)
	}
	return r
}

type apiResponse struct {
	Paging struct {
		TotalPages   int `json:"totalPages"`
		TotalResults int `json:"totalResults"`
	} `json:"paging"`
	Listings []struct {
		Listing map[string]any `json:"listing"`
	} `json:"listings"`
}

// Fetch posts one page query and extracts its listings
func (s *APISource) Fetch(ctx context.Context, req PageRequest) (Page, error) {
	if len(req.Filter.Locations) > 0 && req.From == 0 {
		s.log.Warn().Strs("locations", req.Filter.Locations).
			Msg("api source searches stored shapes; location filter ignored")
	}

	body, err := s.poster.PostJSON(ctx, s.apiURL, s.Payload(req))
	if err != nil {
		return Page{}, err
	}

	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Page{}, apperrors.NewParsing("crawler", s.apiURL, "failed to decode search response", err)
	}

	page := Page{
		Total:    resp.Paging.TotalResults,
		Pages:    resp.Paging.TotalPages,
		Listings: make([]listing.Record, 0, len(resp.Listings)),
	}
	for _, entry := range resp.Listings {
		if entry.Listing == nil {
			continue
		}
		if rec, ok := s.extractor.FromAPIListing(entry.Listing); ok {
			page.Listings = append(page.Listings, rec)
		}
	}
	return page, nil
}
