package listing

import (
	"strconv"
	"strings"
	"time"
)

// POA is the string form of a listing without a published price
const POA = "POA"

// DateLayout is the on-disk form of publish dates
const DateLayout = "2006-01-02"

// Price is either a numeric amount or "price on application"
type Price struct {
	Amount int64
	POA    bool
}

// String renders the price the way it is stored in the dataset
func (p Price) String() string {
	if p.POA {
		return POA
	}
	return strconv.FormatInt(p.Amount, 10)
}

// ParsePrice reads the dataset form back; ok is false for anything unrecognized
func ParsePrice(s string) (Price, bool) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, POA) {
		return Price{POA: true}, true
	}
	// pandas writes integer columns with missing values as floats
	s = strings.TrimSuffix(s, ".0")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return Price{}, false
	}
	return Price{Amount: n}, true
}

// BER is a Building Energy Rating label
type BER string

var berRatings = map[BER]struct{}{
	"A1": {}, "A2": {}, "A3": {},
	"B1": {}, "B2": {}, "B3": {},
	"C1": {}, "C2": {}, "C3": {},
	"D1": {}, "D2": {},
	"E1": {}, "E2": {},
	"F": {}, "G": {},
	"SI_666": {}, "EXEMPT": {},
}

// ParseBER normalizes a rating; ok is false when it is not a known label
func ParseBER(s string) (BER, bool) {
	b := BER(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := berRatings[b]; !ok {
		return "", false
	}
	return b, true
}

// Floor area units
const (
	UnitSquareMetres = "m2"
	UnitAcres        = "ac"
)

// GeoLabels are the administrative regions containing a listing
type GeoLabels struct {
	SmallArea      *string
	CountyArea     *string
	Constituency   *string
	Province       *string
	LocalElectoral *string
	County         *string
}

// Record is one observed property listing.
//
// ID and DateScraped never change once the record exists. Only CurrentlyListed
// and Sold are mutated on rows carried over from a previous run.
type Record struct {
	ID       string
	PortalID *string

	Address       string
	Price         *Price
	Beds          *int
	Baths         *int
	PropertyType  *string
	EstateAgent   *string
	BER           *BER
	FloorArea     *float64
	FloorAreaUnit *string

	Longitude   *float64
	Latitude    *float64
	PublishDate *time.Time

	Description *string
	Features    *string
	ViewCount   *int

	Geo GeoLabels

	CurrentlyListed bool
	Sold            bool
	DateScraped     time.Time
}

// HasPoint reports whether both coordinates are known
func (r *Record) HasPoint() bool {
	return r.Longitude != nil && r.Latitude != nil
}

// DedupKey is the (address, price) pair used to collapse identical cards seen
// on overlapping index pages. It is not an identity key.
func (r *Record) DedupKey() string {
	price := ""
	if r.Price != nil {
		price = r.Price.String()
	}
	return strings.ToLower(strings.TrimSpace(r.Address)) + "\x00" + price
}

// Clone returns a deep copy so callers can mutate flags without aliasing
func (r Record) Clone() Record {
	c := r
	c.PortalID = clonePtr(r.PortalID)
	c.Price = clonePtr(r.Price)
	c.Beds = clonePtr(r.Beds)
	c.Baths = clonePtr(r.Baths)
	c.PropertyType = clonePtr(r.PropertyType)
	c.EstateAgent = clonePtr(r.EstateAgent)
	c.BER = clonePtr(r.BER)
	c.FloorArea = clonePtr(r.FloorArea)
	c.FloorAreaUnit = clonePtr(r.FloorAreaUnit)
	c.Longitude = clonePtr(r.Longitude)
	c.Latitude = clonePtr(r.Latitude)
	c.PublishDate = clonePtr(r.PublishDate)
	c.Description = clonePtr(r.Description)
	c.Features = clonePtr(r.Features)
	c.ViewCount = clonePtr(r.ViewCount)
	c.Geo = GeoLabels{
		SmallArea:      clonePtr(r.Geo.SmallArea),
		CountyArea:     clonePtr(r.Geo.CountyArea),
		Constituency:   clonePtr(r.Geo.Constituency),
		Province:       clonePtr(r.Geo.Province),
		LocalElectoral: clonePtr(r.Geo.LocalElectoral),
		County:         clonePtr(r.Geo.County),
	}
	return c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
