package extract

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Role names an element by what it means rather than how it is marked up
type Role string

const (
	RoleResultCard  Role = "result_card"
	RoleAddress     Role = "address"
	RolePrice       Role = "price"
	RoleBER         Role = "ber"
	RoleAgent       Role = "agent"
	RoleCardInfo    Role = "card_info"
	RoleResultCount Role = "result_count"
	RoleDescription Role = "description"
	RoleFeatureItem Role = "feature_item"
	RoleStatistic   Role = "statistic"
)

// Rule locates a role: a tag name plus the stable prefix of an auto-generated
// class name (the suffix changes between site deployments).
type Rule struct {
	Tag         string
	ClassPrefix string
}

type compiledRule struct {
	tag   string
	class *regexp.Regexp
}

// Locator is the single place that knows the portal's markup
type Locator struct {
	rules map[Role]compiledRule
}

// DefaultRules are the class prefixes of the daft.ie styled-components markup
var DefaultRules = map[Role]Rule{
	RoleResultCard:  {Tag: "li", ClassPrefix: "SearchPage__Result"},
	RoleAddress:     {Tag: "p", ClassPrefix: "TitleBlock__Address"},
	RolePrice:       {Tag: "span", ClassPrefix: "TitleBlock__StyledSpan"},
	RoleBER:         {Tag: "img", ClassPrefix: "TitleBlock__Ber"},
	RoleAgent:       {Tag: "span", ClassPrefix: "TitleBlock__AgentNameTextWrapper"},
	RoleCardInfo:    {Tag: "p", ClassPrefix: "TitleBlock__CardInfoItem"},
	RoleResultCount: {Tag: "p", ClassPrefix: "SearchPagePagination__PaginationResults"},
	RoleDescription: {Tag: "div", ClassPrefix: "PropertyPage__StandardParagraph"},
	RoleFeatureItem: {Tag: "li", ClassPrefix: "PropertyDetailsList__PropertyDetailsListItem"},
	RoleStatistic:   {Tag: "p", ClassPrefix: "Statistics__StyledLabel"},
}

// NewLocator compiles a rule table; roles missing from rules fall back to
// DefaultRules.
func NewLocator(rules map[Role]Rule) *Locator {
	l := &Locator{rules: make(map[Role]compiledRule, len(DefaultRules))}
	for role, r := range DefaultRules {
		l.rules[role] = compile(r)
	}
	for role, r := range rules {
		l.rules[role] = compile(r)
	}
	return l
}

// DefaultLocator returns a locator for DefaultRules
func DefaultLocator() *Locator {
	return NewLocator(nil)
}

func compile(r Rule) compiledRule {
	tag := r.Tag
	if tag == "" {
		tag = "*"
	}
	return compiledRule{
		tag:   tag,
		class: regexp.MustCompile("^" + regexp.QuoteMeta(r.ClassPrefix)),
	}
}

// Find returns every element under root playing the given role
func (l *Locator) Find(root *goquery.Selection, role Role) *goquery.Selection {
	rule, ok := l.rules[role]
	if !ok || root == nil {
		return emptySelection(root)
	}
	return root.Find(rule.tag).FilterFunction(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		for _, token := range strings.Fields(class) {
			if rule.class.MatchString(token) {
				return true
			}
		}
		return false
	})
}

// First returns the first element playing the role (possibly empty)
func (l *Locator) First(root *goquery.Selection, role Role) *goquery.Selection {
	return l.Find(root, role).First()
}

// Text is the trimmed text of the first element playing the role
func (l *Locator) Text(root *goquery.Selection, role Role) Field[string] {
	sel := l.First(root, role)
	if sel.Length() == 0 {
		return None[string]()
	}
	return NonEmpty(sel.Text())
}

func emptySelection(root *goquery.Selection) *goquery.Selection {
	if root == nil {
		return &goquery.Selection{}
	}
	return root.FilterFunction(func(int, *goquery.Selection) bool { return false })
}
