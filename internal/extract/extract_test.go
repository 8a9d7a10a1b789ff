package extract

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/listingtracker/internal/listing"
)

const searchPage = `<html><body>
<p class="SearchPagePagination__PaginationResults-sc-1b3 kXq">Showing 1 - 20 of 1,234 total results</p>
<ul>
  <li class="SearchPage__Result-gg133s-2 abc">
    <a href="/for-sale/house-1-main-street-dublin/4512345?utm=x#top">
      <p class="TitleBlock__Address-sc-1avkvav-8 x">1 Main Street, Dublin</p>
      <span class="TitleBlock__StyledSpan-sc-1avkvav-5">€450,000</span>
      <img class="TitleBlock__Ber-sc-1avkvav-6" src="https://hermes.daft.ie/ber/B2.svg" alt="B2"/>
      <span class="TitleBlock__AgentNameTextWrapper-sc-1avkvav-10">Sherry FitzGerald Rathmines</span>
      <p class="TitleBlock__CardInfoItem-sc-1avkvav-9" data-testid="beds">3 &amp; 4 Bed</p>
      <p class="TitleBlock__CardInfoItem-sc-1avkvav-9" data-testid="baths">2 Bath</p>
      <p class="TitleBlock__CardInfoItem-sc-1avkvav-9" data-testid="floor-area">1,120 m²</p>
      <p class="TitleBlock__CardInfoItem-sc-1avkvav-9" data-testid="property-type">Semi-D</p>
    </a>
  </li>
  <li class="SearchPage__Result-gg133s-2 abc">
    <a href="https://www.daft.ie/for-sale/cottage-kerry/99">
      <p class="TitleBlock__Address-sc-1avkvav-8">Cottage, Kerry</p>
      <span class="TitleBlock__StyledSpan-sc-1avkvav-5">Price on Application</span>
      <p class="TitleBlock__CardInfoItem-sc-1avkvav-9" data-testid="floor-area">2.5 ac</p>
    </a>
  </li>
  <li class="SearchPage__Result-gg133s-2">
    <p class="TitleBlock__Address-sc-1avkvav-8">No link here</p>
  </li>
</ul>
</body></html>`

func newTestExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor("https://www.daft.ie", nil, nil)
	require.NoError(t, err)
	return e
}

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFieldCombinators(t *testing.T) {
	assert.Equal(t, 5, Some(5).OrElse(1))
	assert.Equal(t, 1, None[int]().OrElse(1))
	assert.Nil(t, None[string]().Ptr())
	assert.Equal(t, "x", *Some("x").Ptr())

	doubled := Map(Some(2), func(v int) Field[int] { return Some(v * 2) })
	assert.Equal(t, 4, doubled.OrElse(0))
	assert.False(t, Map(None[int](), func(v int) Field[int] { return Some(v) }).OK())

	assert.Equal(t, "b", Or(None[string](), Some("b"), Some("c")).OrElse(""))

	recovered := Safe(func() Field[int] {
		var m map[string]*int
		return Some(*m["missing"])
	})
	assert.False(t, recovered.OK())
}

func TestPrice(t *testing.T) {
	tests := []struct {
		in   string
		want Field[listing.Price]
	}{
		{"€450,000", Some(listing.Price{Amount: 450000})},
		{"AMV: €1,250,000", Some(listing.Price{Amount: 1250000})},
		{"Price on Application", Some(listing.Price{POA: true})},
		{"", None[listing.Price]()},
		{"   ", None[listing.Price]()},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Price(tt.in))
		})
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, Some(3), Count("3 Bed"))
	assert.Equal(t, Some(4), Count("3 & 4 Bed"))
	assert.False(t, Count("Studio").OK())
}

func TestFloorArea(t *testing.T) {
	v, u := FloorArea("1,120 m²")
	assert.Equal(t, Some(1120.0), v)
	assert.Equal(t, Some(listing.UnitSquareMetres), u)

	v, u = FloorArea("2.5 ac")
	assert.Equal(t, Some(2.5), v)
	assert.Equal(t, Some(listing.UnitAcres), u)

	v, u = FloorArea("n/a")
	assert.False(t, v.OK())
	assert.False(t, u.OK())
}

func TestBER(t *testing.T) {
	assert.Equal(t, Some(listing.BER("B2")), BERFromImage("https://x/ber/B2.svg"))
	assert.Equal(t, Some(listing.BER("G")), BERFromImage("/img/G.svg"))
	assert.Equal(t, Some(listing.BER("SI_666")), BERFromImage("/img/SI_666.svg"))
	assert.False(t, BERFromImage("/img/logo.png").OK())
	assert.False(t, BER("Z9").OK())
}

func TestAgentNormalizer(t *testing.T) {
	n := NewAgentNormalizer(nil)
	assert.Equal(t, Some("Sherry FitzGerald"), n.Normalize("Sherry FitzGerald Rathmines"))
	assert.Equal(t, Some("DNG"), n.Normalize("DNG Ted Healy"))
	assert.Equal(t, Some("Local Agent Ltd"), n.Normalize("  Local Agent Ltd "))
	assert.False(t, n.Normalize(" ").OK())

	custom := NewAgentNormalizer([]string{"Acme"})
	assert.Equal(t, Some("Savills Cork"), custom.Normalize("Savills Cork"))
}

func TestLocatorMatchesClassPrefix(t *testing.T) {
	doc := parse(t, searchPage)
	l := DefaultLocator()
	assert.Equal(t, 3, l.Find(doc.Selection, RoleResultCard).Length())
	assert.Equal(t, 0, l.Find(doc.Selection, Role("unknown")).Length())

	custom := NewLocator(map[Role]Rule{RoleResultCard: {Tag: "li", ClassPrefix: "Nope__"}})
	assert.Equal(t, 0, custom.Find(doc.Selection, RoleResultCard).Length())
	assert.Equal(t, 2, custom.Find(doc.Selection, RolePrice).Length())
}

func TestFromCard(t *testing.T) {
	e := newTestExtractor(t)
	doc := parse(t, searchPage)
	cards := e.Cards(doc)
	require.Equal(t, 3, cards.Length())

	rec, ok := e.FromCard(cards.Eq(0))
	require.True(t, ok)
	assert.Equal(t, "https://www.daft.ie/for-sale/house-1-main-street-dublin/4512345", rec.ID)
	assert.Equal(t, "4512345", *rec.PortalID)
	assert.Equal(t, "1 Main Street, Dublin", rec.Address)
	assert.Equal(t, listing.Price{Amount: 450000}, *rec.Price)
	assert.Equal(t, listing.BER("B2"), *rec.BER)
	assert.Equal(t, "Sherry FitzGerald", *rec.EstateAgent)
	assert.Equal(t, 4, *rec.Beds)
	assert.Equal(t, 2, *rec.Baths)
	assert.Equal(t, 1120.0, *rec.FloorArea)
	assert.Equal(t, "m2", *rec.FloorAreaUnit)
	assert.Equal(t, "Semi-D", *rec.PropertyType)
	assert.True(t, rec.CurrentlyListed)
	assert.False(t, rec.Sold)
	assert.Nil(t, rec.PublishDate)

	rec, ok = e.FromCard(cards.Eq(1))
	require.True(t, ok)
	assert.True(t, rec.Price.POA)
	assert.Nil(t, rec.BER)
	assert.Nil(t, rec.EstateAgent)
	assert.Nil(t, rec.Beds)
	assert.Equal(t, "ac", *rec.FloorAreaUnit)

	_, ok = e.FromCard(cards.Eq(2))
	assert.False(t, ok)
}

func TestResultCount(t *testing.T) {
	e := newTestExtractor(t)
	assert.Equal(t, Some(1234), e.ResultCount(parse(t, searchPage)))
	assert.False(t, e.ResultCount(parse(t, "<html></html>")).OK())
}

func TestFromAPIListing(t *testing.T) {
	e := newTestExtractor(t)
	body := `{
		"id": 5123456,
		"title": "2 The Green, Galway",
		"seoFriendlyPath": "/for-sale/house-2-the-green-galway/5123456",
		"price": "€320,000",
		"numBedrooms": "3 Bed",
		"numBathrooms": "1 Bath",
		"propertyType": "Terrace",
		"seller": {"branch": "REA Brady Galway"},
		"ber": {"rating": "C1"},
		"floorArea": {"value": "95", "unit": "METRES_SQUARED"},
		"point": {"coordinates": [-9.05, 53.27]},
		"publishDate": 1700000000000
	}`
	var obj map[string]any
	require.NoError(t, json.Unmarshal([]byte(body), &obj))

	rec, ok := e.FromAPIListing(obj)
	require.True(t, ok)
	assert.Equal(t, "https://www.daft.ie/for-sale/house-2-the-green-galway/5123456", rec.ID)
	assert.Equal(t, "5123456", *rec.PortalID)
	assert.Equal(t, int64(320000), rec.Price.Amount)
	assert.Equal(t, 3, *rec.Beds)
	assert.Equal(t, 1, *rec.Baths)
	assert.Equal(t, "REA", *rec.EstateAgent)
	assert.Equal(t, listing.BER("C1"), *rec.BER)
	assert.Equal(t, 95.0, *rec.FloorArea)
	assert.Equal(t, "m2", *rec.FloorAreaUnit)
	assert.Equal(t, -9.05, *rec.Longitude)
	assert.Equal(t, 53.27, *rec.Latitude)
	assert.Equal(t, time.Date(2023, 11, 14, 0, 0, 0, 0, time.UTC), *rec.PublishDate)
}

func TestFromAPIListingTolerance(t *testing.T) {
	e := newTestExtractor(t)

	_, ok := e.FromAPIListing(map[string]any{"title": "no link"})
	assert.False(t, ok)

	rec, ok := e.FromAPIListing(map[string]any{
		"seoFriendlyPath": "/for-sale/x/1",
		"price":           []any{"wrong", "shape"},
		"point":           map[string]any{"coordinates": []any{-8.1}},
		"ber":             "not an object",
	})
	require.True(t, ok)
	assert.Nil(t, rec.Price)
	assert.Nil(t, rec.Longitude)
	assert.Nil(t, rec.Latitude)
	assert.Nil(t, rec.BER)
	assert.Equal(t, "", rec.Address)
}

const detailPage = `<html><body>
<div class="PropertyPage__StandardParagraph-sc-14jmnho-8">  Bright family home.  </div>
<ul>
  <li class="PropertyDetailsList__PropertyDetailsListItem-sc-1cjwtjz-0">Gas heating</li>
  <li class="PropertyDetailsList__PropertyDetailsListItem-sc-1cjwtjz-0">South facing garden</li>
</ul>
<p class="Statistics__StyledLabel-sc-15tgae4-1">05/03/2024</p>
<p class="Statistics__StyledLabel-sc-15tgae4-1">1,204</p>
<script>window.__MAP__ = {"center":[-6.2603,53.3498]}</script>
</body></html>`

func TestFromDetailPage(t *testing.T) {
	e := newTestExtractor(t)
	d := e.FromDetailPage(parse(t, detailPage), detailPage)

	assert.Equal(t, Some("Bright family home."), d.Description)
	assert.Equal(t, Some("Gas heating. South facing garden"), d.Features)
	assert.Equal(t, Some(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)), d.PublishDate)
	assert.Equal(t, Some(1204), d.ViewCount)
	assert.Equal(t, Some(-6.2603), d.Longitude)
	assert.Equal(t, Some(53.3498), d.Latitude)
}

func TestFromDetailPageMissingEverything(t *testing.T) {
	e := newTestExtractor(t)
	raw := "<html><body><p>gone</p></body></html>"
	d := e.FromDetailPage(parse(t, raw), raw)

	assert.False(t, d.Description.OK())
	assert.False(t, d.Features.OK())
	assert.False(t, d.PublishDate.OK())
	assert.False(t, d.ViewCount.OK())
	assert.False(t, d.Longitude.OK())
}

func TestCoordinatesFallsBackToURLForm(t *testing.T) {
	raw := `<a href="https://maps.google.com/?q=52.6638+-8.6267">map</a>`
	lng, lat := Coordinates(raw)
	assert.Equal(t, Some(-8.6267), lng)
	assert.Equal(t, Some(52.6638), lat)

	lng, lat = Coordinates("[12.5,41.9]")
	assert.False(t, lng.OK())
	assert.False(t, lat.OK())
}
