package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// StatisticDateLayout is how the detail page prints the listing date
const StatisticDateLayout = "02/01/2006"

var (
	// [lng,lat] pairs inside embedded map config, within Ireland's bounding box
	coordPairRegex = regexp.MustCompile(`\[(-(?:[6-9]|10)\.\d+),\s*(5[1-5]\.\d+)\]`)
	// "lat+lng" inside static map / directions URLs
	coordURLRegex = regexp.MustCompile(`(5[1-5]\.\d+)(?:\+|%2B|,)(-(?:[6-9]|10)\.\d+)`)
)

// Detail is what a property page adds to a record
type Detail struct {
	Description Field[string]
	Features    Field[string]
	PublishDate Field[time.Time]
	ViewCount   Field[int]
	Longitude   Field[float64]
	Latitude    Field[float64]
}

// FromDetailPage reads a property page. raw is the unparsed body, used for the
// coordinate search since coordinates live in script blobs and URLs.
func (e *Extractor) FromDetailPage(doc *goquery.Document, raw string) Detail {
	d := Detail{
		Description: Safe(func() Field[string] {
			return e.locator.Text(doc.Selection, RoleDescription)
		}),
		Features: Safe(func() Field[string] {
			var items []string
			e.locator.Find(doc.Selection, RoleFeatureItem).Each(func(_ int, s *goquery.Selection) {
				if t := strings.TrimSpace(s.Text()); t != "" {
					items = append(items, t)
				}
			})
			if len(items) == 0 {
				return None[string]()
			}
			return Some(strings.Join(items, ". "))
		}),
	}

	stats := e.locator.Find(doc.Selection, RoleStatistic)
	d.PublishDate = Safe(func() Field[time.Time] {
		if stats.Length() < 1 {
			return None[time.Time]()
		}
		return Date(stats.Eq(0).Text(), StatisticDateLayout)
	})
	d.ViewCount = Safe(func() Field[int] {
		if stats.Length() < 2 {
			return None[int]()
		}
		return Integer(stats.Eq(1).Text())
	})

	d.Longitude, d.Latitude = Coordinates(raw)
	return d
}

// Coordinates finds a listing's point in raw page text. Bracketed [lng,lat]
// pairs are tried first, then "lat+lng" URL fragments. Both must be found
// together or neither is returned.
func Coordinates(raw string) (lng, lat Field[float64]) {
	if m := coordPairRegex.FindStringSubmatch(raw); len(m) == 3 {
		if lo, la, ok := parsePair(m[1], m[2]); ok {
			return Some(lo), Some(la)
		}
	}
	if m := coordURLRegex.FindStringSubmatch(raw); len(m) == 3 {
		if lo, la, ok := parsePair(m[2], m[1]); ok {
			return Some(lo), Some(la)
		}
	}
	return None[float64](), None[float64]()
}

func parsePair(lngText, latText string) (float64, float64, bool) {
	lng, err := strconv.ParseFloat(lngText, 64)
	if err != nil {
		return 0, 0, false
	}
	lat, err := strconv.ParseFloat(latText, 64)
	if err != nil {
		return 0, 0, false
	}
	return lng, lat, true
}
