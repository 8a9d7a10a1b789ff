package crawler

import (
	"fmt"
	"regexp"
	"strings"

	apperrors "sjsage522/listingtracker/pkg/errors"
)

var locationSlugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// SearchFilter narrows a search. Zero values mean "no bound".
type SearchFilter struct {
	Locations []string `yaml:"locations"`
	PriceFrom int      `yaml:"price_from"`
	PriceTo   int      `yaml:"price_to"`
	MinBeds   int      `yaml:"min_beds"`
}

// Clone copies the filter so requests never share the locations slice
func (f SearchFilter) Clone() SearchFilter {
	f.Locations = append([]string(nil), f.Locations...)
	return f
}

// Normalize lowercases locations and turns spaces into dashes, the portal's
// slug form ("Dublin City" -> "dublin-city").
func (f SearchFilter) Normalize() SearchFilter {
	out := f.Clone()
	out.Locations = out.Locations[:0]
	for _, loc := range f.Locations {
		loc = strings.ToLower(strings.TrimSpace(loc))
		if loc == "" {
			continue
		}
		out.Locations = append(out.Locations, strings.Join(strings.Fields(loc), "-"))
	}
	return out
}

// Validate rejects filters the portal would misread
func (f SearchFilter) Validate() error {
	if f.PriceFrom < 0 {
		return apperrors.NewValidation("filter", fmt.Sprintf("price_from must not be negative, got %d", f.PriceFrom))
	}
	if f.PriceTo < 0 {
		return apperrors.NewValidation("filter", fmt.Sprintf("price_to must not be negative, got %d", f.PriceTo))
	}
	if f.PriceFrom > 0 && f.PriceTo > 0 && f.PriceFrom > f.PriceTo {
		return apperrors.NewValidation("filter", fmt.Sprintf("price_from %d is above price_to %d", f.PriceFrom, f.PriceTo))
	}
	if f.MinBeds < 0 {
		return apperrors.NewValidation("filter", fmt.Sprintf("min_beds must not be negative, got %d", f.MinBeds))
	}
	for _, loc := range f.Locations {
		if !locationSlugRegex.MatchString(loc) {
			return apperrors.NewValidation("filter", fmt.Sprintf("malformed location %q", loc))
		}
	}
	return nil
}
