package geo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sjsage522/listingtracker/internal/listing"
	"sjsage522/listingtracker/logger"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

// Boundary file names expected in the geo directory
const (
	SmallAreasFile          = "small_areas.geojson"
	ConstituenciesFile      = "constituencies.geojson"
	ElectoralDivisionsFile  = "electoral_divisions.geojson"
	LocalElectoralAreasFile = "local_electoral_areas.geojson"
)

var (
	seatCountRegex = regexp.MustCompile(`^(.+) \(\d+\)$`)
	leaSuffixRegex = regexp.MustCompile(`( LEA-\d+|-LEA-\d+)`)
)

type region struct {
	geom  orb.Geometry
	bound orb.Bound
	props geojson.Properties
}

// Layer is one boundary set
type Layer struct {
	name    string
	regions []region
}

// NewLayer indexes the polygon features of fc
func NewLayer(name string, fc *geojson.FeatureCollection) *Layer {
	l := &Layer{name: name}
	for _, f := range fc.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		switch f.Geometry.(type) {
		case orb.Polygon, orb.MultiPolygon:
			l.regions = append(l.regions, region{geom: f.Geometry, bound: f.Geometry.Bound(), props: f.Properties})
		}
	}
	return l
}

// Len is the number of polygons in the layer
func (l *Layer) Len() int {
	if l == nil {
		return 0
	}
	return len(l.regions)
}

// match returns the properties of the only region containing pt. Zero or
// several matches mean the point cannot be attributed.
func (l *Layer) match(pt orb.Point) geojson.Properties {
	if l == nil {
		return nil
	}
	var found geojson.Properties
	hits := 0
	for _, r := range l.regions {
		if !r.bound.Contains(pt) || !contains(r.geom, pt) {
			continue
		}
		hits++
		if hits > 1 {
			return nil
		}
		found = r.props
	}
	return found
}

func contains(g orb.Geometry, pt orb.Point) bool {
	switch g := g.(type) {
	case orb.Polygon:
		return planar.PolygonContains(g, pt)
	case orb.MultiPolygon:
		return planar.MultiPolygonContains(g, pt)
	}
	return false
}

// BoundaryIndex answers region lookups from four boundary layers. Any layer
// may be missing, in which case its labels are always null.
type BoundaryIndex struct {
	SmallAreas          *Layer
	Constituencies      *Layer
	ElectoralDivisions  *Layer
	LocalElectoralAreas *Layer
}

// LoadDir reads the boundary files in dir once. Missing files disable their
// layer; unreadable or malformed files are an error.
func LoadDir(dir string, log *logger.Logger) (*BoundaryIndex, error) {
	if log == nil {
		log = logger.Nop()
	}
	idx := &BoundaryIndex{}
	targets := []struct {
		file  string
		layer **Layer
	}{
		{SmallAreasFile, &idx.SmallAreas},
		{ConstituenciesFile, &idx.Constituencies},
		{ElectoralDivisionsFile, &idx.ElectoralDivisions},
		{LocalElectoralAreasFile, &idx.LocalElectoralAreas},
	}
	for _, t := range targets {
		path := filepath.Join(dir, t.file)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			log.Warn().Str("file", path).Msg("boundary file missing, layer disabled")
			continue
		}
		if err != nil {
			return nil, apperrors.NewConfiguration(fmt.Sprintf("failed to read %s", path), err)
		}
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, apperrors.NewConfiguration(fmt.Sprintf("failed to parse %s", path), err)
		}
		*t.layer = NewLayer(t.file, fc)
		log.Debug().Str("file", path).Int("regions", (*t.layer).Len()).Msg("boundary layer loaded")
	}
	return idx, nil
}

// Locate labels the point (lng, lat)
func (b *BoundaryIndex) Locate(lng, lat float64) listing.GeoLabels {
	pt := orb.Point{lng, lat}
	var labels listing.GeoLabels

	if p := b.SmallAreas.match(pt); p != nil {
		labels.SmallArea = prop(p, "EDNAME")
		labels.CountyArea = prop(p, "COUNTYNAME")
	}
	if p := b.Constituencies.match(pt); p != nil {
		labels.Constituency = mapLabel(prop(p, "CON_SEAT_"), ConstituencyName)
	}
	if p := b.ElectoralDivisions.match(pt); p != nil {
		labels.Province = prop(p, "PROVINCE")
	}
	if p := b.LocalElectoralAreas.match(pt); p != nil {
		labels.LocalElectoral = mapLabel(prop(p, "ENGLISH"), LocalElectoralName)
		labels.County = mapLabel(prop(p, "COUNTY"), TitleCase)
	}
	return labels
}

func prop(p geojson.Properties, key string) *string {
	s, ok := p[key].(string)
	if !ok {
		return nil
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func mapLabel(s *string, fn func(string) string) *string {
	if s == nil {
		return nil
	}
	v := fn(*s)
	return &v
}

// ConstituencyName drops the seat count: "Dublin Bay North (5)" -> "Dublin Bay North"
func ConstituencyName(s string) string {
	return seatCountRegex.ReplaceAllString(s, "$1")
}

// LocalElectoralName drops the LEA suffix and title-cases the rest
func LocalElectoralName(s string) string {
	return TitleCase(leaSuffixRegex.ReplaceAllString(s, ""))
}

// TitleCase capitalizes each word: "DUBLIN CITY" -> "Dublin City"
func TitleCase(s string) string {
	return cases.Title(language.English).String(strings.TrimSpace(s))
}
