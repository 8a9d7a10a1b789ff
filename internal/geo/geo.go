// Package geo labels listings with the administrative regions containing them.
package geo

import "sjsage522/listingtracker/internal/listing"

// Lookup resolves a point to region labels
type Lookup interface {
	Locate(lng, lat float64) listing.GeoLabels
}

// NopLookup knows no regions
type NopLookup struct{}

// Locate returns all-null labels
func (NopLookup) Locate(float64, float64) listing.GeoLabels {
	return listing.GeoLabels{}
}

// Adapter attaches labels to records
type Adapter struct {
	lookup Lookup
}

// NewAdapter wraps l; a nil lookup labels nothing
func NewAdapter(l Lookup) *Adapter {
	if l == nil {
		l = NopLookup{}
	}
	return &Adapter{lookup: l}
}

// Enrich sets rec's labels. A record without coordinates gets all-null labels
// and the lookup is not consulted.
func (a *Adapter) Enrich(rec listing.Record) listing.Record {
	if !rec.HasPoint() {
		rec.Geo = listing.GeoLabels{}
		return rec
	}
	rec.Geo = a.lookup.Locate(*rec.Longitude, *rec.Latitude)
	return rec
}
