package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"sjsage522/listingtracker/internal/listing"
)

var (
	nonDigitRegex = regexp.MustCompile(`\D`)
	digitRunRegex = regexp.MustCompile(`\d+`)
	decimalRegex  = regexp.MustCompile(`\d+(?:\.\d+)?`)
	berImageRegex = regexp.MustCompile(`([A-G]\d?|SI_666)\.svg`)
)

// Price parses a displayed price. Text without any digit is a listing with no
// published price and resolves to the POA sentinel.
func Price(text string) Field[listing.Price] {
	text = strings.TrimSpace(text)
	if text == "" {
		return None[listing.Price]()
	}
	digits := nonDigitRegex.ReplaceAllString(text, "")
	if digits == "" {
		return Some(listing.Price{POA: true})
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return None[listing.Price]()
	}
	return Some(listing.Price{Amount: n})
}

// Count parses bed or bath counts. A range such as "3 & 4 Bed" resolves to
// its largest value.
func Count(text string) Field[int] {
	runs := digitRunRegex.FindAllString(text, -1)
	if len(runs) == 0 {
		return None[int]()
	}
	best := -1
	for _, r := range runs {
		n, err := strconv.Atoi(r)
		if err != nil {
			continue
		}
		if n > best {
			best = n
		}
	}
	if best < 0 {
		return None[int]()
	}
	return Some(best)
}

// FloorArea parses "120 m²" or "1.5 ac" into a value and its unit
func FloorArea(text string) (Field[float64], Field[string]) {
	clean := strings.ReplaceAll(text, ",", "")
	m := decimalRegex.FindString(clean)
	if m == "" {
		return None[float64](), None[string]()
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return None[float64](), None[string]()
	}
	unit := AreaUnit(text)
	if !unit.OK() {
		unit = Some(listing.UnitSquareMetres)
	}
	return Some(v), unit
}

// AreaUnit maps free-text or API unit names onto m2 / ac
func AreaUnit(text string) Field[string] {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "":
		return None[string]()
	case strings.Contains(t, "ac"):
		return Some(listing.UnitAcres)
	case strings.Contains(t, "m"):
		return Some(listing.UnitSquareMetres)
	}
	return None[string]()
}

// BERFromImage reads the rating out of a badge image URL such as ".../B2.svg"
func BERFromImage(src string) Field[listing.BER] {
	m := berImageRegex.FindStringSubmatch(src)
	if len(m) < 2 {
		return None[listing.BER]()
	}
	return BER(m[1])
}

// BER validates a rating label
func BER(text string) Field[listing.BER] {
	b, ok := listing.ParseBER(text)
	if !ok {
		return None[listing.BER]()
	}
	return Some(b)
}

// Integer strips everything but digits, e.g. view counts "1,204"
func Integer(text string) Field[int] {
	digits := nonDigitRegex.ReplaceAllString(text, "")
	if digits == "" {
		return None[int]()
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return None[int]()
	}
	return Some(n)
}

// Date parses text with the given layout, keeping only the calendar date
func Date(text, layout string) Field[time.Time] {
	t, err := time.Parse(layout, strings.TrimSpace(text))
	if err != nil {
		return None[time.Time]()
	}
	return Some(t)
}

// NonEmpty trims text and treats the empty string as absent
func NonEmpty(text string) Field[string] {
	text = strings.TrimSpace(text)
	if text == "" {
		return None[string]()
	}
	return Some(text)
}
