package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"sjsage522/listingtracker/internal/listing"
)

func encodeRecord(r listing.Record) []string {
	price := ""
	if r.Price != nil {
		price = r.Price.String()
	}
	ber := ""
	if r.BER != nil {
		ber = string(*r.BER)
	}
	return []string{
		r.ID,
		str(r.PortalID),
		r.Address,
		price,
		integer(r.Beds),
		integer(r.Baths),
		str(r.PropertyType),
		str(r.EstateAgent),
		ber,
		float(r.FloorArea),
		str(r.FloorAreaUnit),
		float(r.Longitude),
		float(r.Latitude),
		date(r.PublishDate),
		str(r.Description),
		str(r.Features),
		integer(r.ViewCount),
		str(r.Geo.SmallArea),
		str(r.Geo.CountyArea),
		str(r.Geo.Constituency),
		str(r.Geo.Province),
		str(r.Geo.LocalElectoral),
		str(r.Geo.County),
		boolean(r.CurrentlyListed),
		boolean(r.Sold),
		r.DateScraped.UTC().Format(time.RFC3339),
	}
}

func decodeRecord(row []string, cols map[string]int) listing.Record {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	r := listing.Record{
		ID:            get("id"),
		PortalID:      parseStr(get("portal_id")),
		Address:       get("address"),
		Beds:          parseInt(get("beds")),
		Baths:         parseInt(get("baths")),
		PropertyType:  parseStr(get("property_type")),
		EstateAgent:   parseStr(get("estate_agent")),
		FloorArea:     parseFloat(get("floor_area")),
		FloorAreaUnit: parseStr(get("floor_area_unit")),
		Longitude:     parseFloat(get("longitude")),
		Latitude:      parseFloat(get("latitude")),
		PublishDate:   parseDate(get("publish_date")),
		Description:   parseStr(get("description")),
		Features:      parseStr(get("features")),
		ViewCount:     parseInt(get("view_count")),
		Geo: listing.GeoLabels{
			SmallArea:      parseStr(get("small_area")),
			CountyArea:     parseStr(get("county_area")),
			Constituency:   parseStr(get("constituency")),
			Province:       parseStr(get("province")),
			LocalElectoral: parseStr(get("local_electoral")),
			County:         parseStr(get("county")),
		},
		CurrentlyListed: parseBool(get("currently_listed")),
		Sold:            parseBool(get("sold")),
	}
	if p, ok := listing.ParsePrice(get("price")); ok {
		r.Price = &p
	}
	if b, ok := listing.ParseBER(get("ber_rating")); ok {
		r.BER = &b
	}
	if t := parseTimestamp(get("date_scraped")); t != nil {
		r.DateScraped = *t
	}
	if r.Longitude == nil || r.Latitude == nil {
		r.Longitude, r.Latitude = nil, nil
	}
	return r
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func integer(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func float(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func date(p *time.Time) string {
	if p == nil {
		return ""
	}
	return p.Format(listing.DateLayout)
}

func boolean(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func parseStr(s string) *string {
	if s == "" || s == "nan" || s == "None" {
		return nil
	}
	return &s
}

// parseInt accepts "3" and the "3.0" form integer columns with gaps are written in
func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	n := int(f)
	return &n
}

func parseFloat(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return nil
	}
	return &f
}

// parseDate accepts a bare date or a timestamp whose date part leads
func parseDate(s string) *time.Time {
	if len(s) < len(listing.DateLayout) {
		return nil
	}
	t, err := time.Parse(listing.DateLayout, s[:len(listing.DateLayout)])
	if err != nil {
		return nil
	}
	return &t
}

// parseTimestamp reads RFC3339 and falls back to the leading date of older
// "2021-06-01" or "2021-06-01 10:22:01" values
func parseTimestamp(s string) *time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t
	}
	return parseDate(s)
}

// parseBool accepts 1/0 and the True/False older snapshots were written with
func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.ToLower(s))
	return err == nil && b
}
