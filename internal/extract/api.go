package extract

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"sjsage522/listingtracker/internal/listing"
)

// Path walks a decoded JSON value by map keys (string) and slice indices (int)
func Path(v any, keys ...any) Field[any] {
	cur := v
	for _, k := range keys {
		switch key := k.(type) {
		case string:
			m, ok := cur.(map[string]any)
			if !ok {
				return None[any]()
			}
			if cur, ok = m[key]; !ok {
				return None[any]()
			}
		case int:
			s, ok := cur.([]any)
			if !ok || key < 0 || key >= len(s) {
				return None[any]()
			}
			cur = s[key]
		default:
			return None[any]()
		}
	}
	if cur == nil {
		return None[any]()
	}
	return Some(cur)
}

// AsString renders a JSON scalar as text
func AsString(v any) Field[string] {
	switch t := v.(type) {
	case string:
		return NonEmpty(t)
	case json.Number:
		return Some(t.String())
	case float64:
		return Some(strconv.FormatFloat(t, 'f', -1, 64))
	case bool:
		return Some(strconv.FormatBool(t))
	}
	return None[string]()
}

// AsFloat reads a JSON number or numeric string
func AsFloat(v any) Field[float64] {
	switch t := v.(type) {
	case float64:
		return Some(t)
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return None[float64]()
		}
		return Some(f)
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		if err != nil {
			return None[float64]()
		}
		return Some(f)
	}
	return None[float64]()
}

// EpochMillis reads a millisecond timestamp as a UTC calendar date
func EpochMillis(v any) Field[time.Time] {
	return Map(AsFloat(v), func(ms float64) Field[time.Time] {
		if ms <= 0 {
			return None[time.Time]()
		}
		t := time.UnixMilli(int64(ms)).UTC()
		return Some(time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC))
	})
}

// FromAPIListing builds a record from one entry of the search API response
// (the object under "listing"). ok is false when no link can be formed.
func (e *Extractor) FromAPIListing(obj map[string]any) (listing.Record, bool) {
	link := Safe(func() Field[string] {
		return Map(Map(Path(obj, "seoFriendlyPath"), AsString), e.Canonical)
	})
	id, ok := link.Get()
	if !ok {
		return listing.Record{}, false
	}

	rec := listing.Record{
		ID:              id,
		PortalID:        Or(Map(Path(obj, "id"), AsString), PortalID(id)).Ptr(),
		Address:         Map(Path(obj, "title"), AsString).OrElse(""),
		CurrentlyListed: true,
	}

	rec.Price = Safe(func() Field[listing.Price] {
		return Map(Map(Path(obj, "price"), AsString), Price)
	}).Ptr()
	rec.Beds = Safe(func() Field[int] {
		return Map(Map(Path(obj, "numBedrooms"), AsString), Count)
	}).Ptr()
	rec.Baths = Safe(func() Field[int] {
		return Map(Map(Path(obj, "numBathrooms"), AsString), Count)
	}).Ptr()
	rec.PropertyType = Map(Path(obj, "propertyType"), AsString).Ptr()
	rec.EstateAgent = Safe(func() Field[string] {
		raw := Or(
			Map(Path(obj, "seller", "branch"), AsString),
			Map(Path(obj, "seller", "name"), AsString),
		)
		return Map(raw, e.agents.Normalize)
	}).Ptr()
	rec.BER = Safe(func() Field[listing.BER] {
		return Map(Map(Path(obj, "ber", "rating"), AsString), BER)
	}).Ptr()

	area := Map(Path(obj, "floorArea", "value"), AsFloat)
	if area.OK() {
		rec.FloorArea = area.Ptr()
		rec.FloorAreaUnit = Or(
			Map(Map(Path(obj, "floorArea", "unit"), AsString), AreaUnit),
			Some(listing.UnitSquareMetres),
		).Ptr()
	}

	rec.Longitude = Map(Path(obj, "point", "coordinates", 0), AsFloat).Ptr()
	rec.Latitude = Map(Path(obj, "point", "coordinates", 1), AsFloat).Ptr()
	if !rec.HasPoint() {
		rec.Longitude, rec.Latitude = nil, nil
	}

	rec.PublishDate = Map(Path(obj, "publishDate"), EpochMillis).Ptr()

	return rec, true
}
