package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"sjsage522/listingtracker/internal/listing"
)

var portalIDRegex = regexp.MustCompile(`/(\d+)/?$`)

// Extractor turns portal markup or API objects into records
type Extractor struct {
	locator *Locator
	agents  *AgentNormalizer
	base    *url.URL
}

// NewExtractor builds an extractor resolving links against baseURL
func NewExtractor(baseURL string, locator *Locator, agents *AgentNormalizer) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if locator == nil {
		locator = DefaultLocator()
	}
	if agents == nil {
		agents = NewAgentNormalizer(nil)
	}
	return &Extractor{locator: locator, agents: agents, base: base}, nil
}

// Locator exposes the role table used by this extractor
func (e *Extractor) Locator() *Locator {
	return e.locator
}

// Canonical resolves href against the portal base and strips query and
// fragment. The result is the listing's identity.
func (e *Extractor) Canonical(href string) Field[string] {
	href = strings.TrimSpace(href)
	if href == "" {
		return None[string]()
	}
	ref, err := url.Parse(href)
	if err != nil {
		return None[string]()
	}
	u := e.base.ResolveReference(ref)
	u.RawQuery = ""
	u.Fragment = ""
	s := strings.TrimSuffix(u.String(), "/")
	if u.Host == "" {
		return None[string]()
	}
	return Some(s)
}

// PortalID is the trailing numeric path segment of a listing URL
func PortalID(link string) Field[string] {
	m := portalIDRegex.FindStringSubmatch(link)
	if len(m) < 2 {
		return None[string]()
	}
	return Some(m[1])
}

// Cards returns every result card on an index page
func (e *Extractor) Cards(doc *goquery.Document) *goquery.Selection {
	return e.locator.Find(doc.Selection, RoleResultCard)
}

// FromCard builds a record from one search-result card. ok is false only
// when the card has no link, since the link is the record's identity.
func (e *Extractor) FromCard(card *goquery.Selection) (listing.Record, bool) {
	id := Safe(func() Field[string] {
		href, _ := card.Find("a[href]").First().Attr("href")
		return e.Canonical(href)
	})
	link, ok := id.Get()
	if !ok {
		return listing.Record{}, false
	}

	rec := listing.Record{
		ID:              link,
		PortalID:        PortalID(link).Ptr(),
		Address:         e.locator.Text(card, RoleAddress).OrElse(""),
		CurrentlyListed: true,
	}

	rec.Price = Safe(func() Field[listing.Price] {
		return Map(e.locator.Text(card, RolePrice), Price)
	}).Ptr()

	rec.BER = Safe(func() Field[listing.BER] {
		src, _ := e.locator.First(card, RoleBER).Attr("src")
		alt, _ := e.locator.First(card, RoleBER).Attr("alt")
		return Or(BERFromImage(src), BER(alt))
	}).Ptr()

	rec.EstateAgent = Safe(func() Field[string] {
		return Map(e.locator.Text(card, RoleAgent), e.agents.Normalize)
	}).Ptr()

	e.locator.Find(card, RoleCardInfo).Each(func(_ int, item *goquery.Selection) {
		testID, _ := item.Attr("data-testid")
		text := item.Text()
		switch testID {
		case "beds":
			rec.Beds = Safe(func() Field[int] { return Count(text) }).Ptr()
		case "baths":
			rec.Baths = Safe(func() Field[int] { return Count(text) }).Ptr()
		case "floor-area":
			v, u := FloorArea(text)
			rec.FloorArea, rec.FloorAreaUnit = v.Ptr(), u.Ptr()
		case "property-type":
			rec.PropertyType = NonEmpty(text).Ptr()
		}
	})

	return rec, true
}

// ResultCount is the largest integer in the pagination summary
// ("Showing 1 - 20 of 1,234"), i.e. the total number of matches.
func (e *Extractor) ResultCount(doc *goquery.Document) Field[int] {
	text := e.locator.Text(doc.Selection, RoleResultCount)
	return Map(text, func(s string) Field[int] {
		best := None[int]()
		for _, word := range strings.Fields(s) {
			n := Integer(word)
			if v, ok := n.Get(); ok && (!best.OK() || v > best.OrElse(0)) {
				best = n
			}
		}
		return best
	})
}
