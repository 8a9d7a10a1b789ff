package crawler

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sjsage522/listingtracker/internal/extract"
	"sjsage522/listingtracker/internal/fetch"
	apperrors "sjsage522/listingtracker/pkg/errors"
)

const indexPage = `<html><body>
<p class="SearchPagePagination__PaginationResults-abc">Showing 1 - 20 of 41 total results</p>
<ul>
<li class="SearchPage__Result-1"><a href="/for-sale/a/1"><p class="TitleBlock__Address-1">1 A Road</p><span class="TitleBlock__StyledSpan-1">€100,000</span></a></li>
<li class="SearchPage__Result-1"><a href="/for-sale/b/2"><p class="TitleBlock__Address-1">2 B Road</p><span class="TitleBlock__StyledSpan-1">POA</span></a></li>
<li class="SearchPage__Result-1"><p class="TitleBlock__Address-1">no link</p></li>
</ul></body></html>`

func newExtractor(t *testing.T) *extract.Extractor {
	t.Helper()
	ex, err := extract.NewExtractor("https://www.daft.ie", nil, nil)
	require.NoError(t, err)
	return ex
}

func TestHTMLSourceURL(t *testing.T) {
	s := NewHTMLSource("", nil, newExtractor(t), nil)
	req := FirstPage(SearchFilter{Locations: []string{"dublin", "cork"}, PriceFrom: 100000, PriceTo: 400000, MinBeds: 3}, 20).Next()

	u, err := url.Parse(s.URL(req))
	require.NoError(t, err)
	assert.Equal(t, "/property-for-sale/ireland/houses", u.Path)
	q := u.Query()
	assert.Equal(t, "publishDateDesc", q.Get("sort"))
	assert.Equal(t, "20", q.Get("from"))
	assert.Equal(t, "20", q.Get("pageSize"))
	assert.Equal(t, []string{"dublin", "cork"}, q["location"])
	assert.Equal(t, "100000", q.Get("salePrice_from"))
	assert.Equal(t, "400000", q.Get("salePrice_to"))
	assert.Equal(t, "3", q.Get("numBeds_from"))

	plain, _ := url.Parse(s.URL(FirstPage(SearchFilter{}, 20)))
	assert.Empty(t, plain.Query().Get("salePrice_from"))
	assert.Empty(t, plain.Query()["location"])
}

func TestHTMLSourceFetch(t *testing.T) {
	var fetched []string
	f := fetch.FetcherFunc(func(ctx context.Context, u string) (*goquery.Document, error) {
		fetched = append(fetched, u)
		return goquery.NewDocumentFromReader(strings.NewReader(indexPage))
	})
	s := NewHTMLSource("", f, newExtractor(t), nil)

	page, err := s.Fetch(context.Background(), FirstPage(SearchFilter{}, 20))
	require.NoError(t, err)
	assert.Equal(t, 41, page.Total)
	require.Len(t, page.Listings, 2)
	assert.Equal(t, "https://www.daft.ie/for-sale/a/1", page.Listings[0].ID)
	assert.True(t, page.Listings[1].Price.POA)
	assert.Len(t, fetched, 1)

	res, err := NewWalker(s, 0, nil).Walk(context.Background(), SearchFilter{})
	require.NoError(t, err)
	// 41 results over 20 per page, identical pages collapse
	assert.Equal(t, 3, res.Pages)
	assert.Len(t, res.Records, 2)
	assert.Equal(t, 4, res.Duplicates)
}

func TestHTMLSourceWalkWithoutPaginationText(t *testing.T) {
	// the pagination summary moved to markup the locator no longer matches
	noCount := strings.Replace(indexPage, "SearchPagePagination__PaginationResults", "Pager__Summary", 1)
	fetches := 0
	f := fetch.FetcherFunc(func(ctx context.Context, u string) (*goquery.Document, error) {
		fetches++
		return goquery.NewDocumentFromReader(strings.NewReader(noCount))
	})

	res, err := NewWalker(NewHTMLSource("", f, newExtractor(t), nil), 0, nil).Walk(context.Background(), SearchFilter{})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrorTypeParsing))
	assert.Empty(t, res.Records)
	assert.Equal(t, 1, fetches)
}

func TestAPISourcePayload(t *testing.T) {
	s := NewAPISource("", nil, newExtractor(t), nil)
	req := FirstPage(SearchFilter{PriceFrom: 200000, MinBeds: 2}, APIPageSize).Next()
	p := s.Payload(req)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))

	assert.Equal(t, "residential-for-sale", got["section"])
	assert.Equal(t, map[string]any{"from": "50", "pageSize": "50"}, got["paging"])
	assert.Equal(t, "publishDateDesc", got["sort"])
	ranges := got["ranges"].([]any)
	require.Len(t, ranges, 2)
	assert.Equal(t, map[string]any{"name": "salePrice", "from": "200000", "to": ""}, ranges[0])
	assert.Equal(t, map[string]any{"name": "numBeds", "from": "2", "to": ""}, ranges[1])
	geo := got["geoFilter"].(map[string]any)
	assert.Equal(t, "STORED_SHAPES", geo["geoSearchType"])
}

func TestAPISourceFetch(t *testing.T) {
	body := `{
		"paging": {"totalPages": 2, "totalResults": 51},
		"listings": [
			{"listing": {"id": 1, "title": "1 A Road", "seoFriendlyPath": "/for-sale/a/1", "price": "€100,000"}},
			{"listing": {"id": 2, "title": "no path"}},
			{}
		]
	}`
	var payloads []map[string]any
	p := fetch.PosterFunc(func(ctx context.Context, u string, payload any) ([]byte, error) {
		assert.Equal(t, DefaultAPIURL, u)
		payloads = append(payloads, payload.(map[string]any))
		return []byte(body), nil
	})
	s := NewAPISource("", p, newExtractor(t), nil)

	page, err := s.Fetch(context.Background(), FirstPage(SearchFilter{}, APIPageSize))
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pages)
	assert.Equal(t, 51, page.Total)
	require.Len(t, page.Listings, 1)
	assert.Equal(t, "https://www.daft.ie/for-sale/a/1", page.Listings[0].ID)

	res, err := NewWalker(s, 0, nil).Walk(context.Background(), SearchFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Pages)
	require.Len(t, payloads, 3)
	assert.Equal(t, "50", payloads[2]["paging"].(map[string]string)["from"])
}

func TestAPISourceBadJSON(t *testing.T) {
	p := fetch.PosterFunc(func(ctx context.Context, u string, payload any) ([]byte, error) {
		return []byte("<html>blocked</html>"), nil
	})
	_, err := NewAPISource("", p, newExtractor(t), nil).Fetch(context.Background(), FirstPage(SearchFilter{}, APIPageSize))
	assert.Error(t, err)
}

func TestCreateSource(t *testing.T) {
	ex := newExtractor(t)
	s, err := CreateSource(SourceConfig{Kind: SourceAPI}, nil, nil, ex, nil)
	require.NoError(t, err)
	assert.Equal(t, "api", s.GetName())

	s, err = CreateSource(SourceConfig{}, nil, nil, ex, nil)
	require.NoError(t, err)
	assert.Equal(t, "html", s.GetName())

	_, err = CreateSource(SourceConfig{Kind: "ftp"}, nil, nil, ex, nil)
	assert.Error(t, err)
}
