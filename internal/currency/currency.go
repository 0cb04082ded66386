package currency

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
	"github.com/pkg/errors"
)

// Code is an ISO currency code supported by the ECB reference feed.
type Code string

const (
	EUR Code = "EUR"
	USD Code = "USD"
	JPY Code = "JPY"
	BGN Code = "BGN"
	CZK Code = "CZK"
	DKK Code = "DKK"
	GBP Code = "GBP"
	HUF Code = "HUF"
	PLN Code = "PLN"
	RON Code = "RON"
	SEK Code = "SEK"
	CHF Code = "CHF"
	ISK Code = "ISK"
	NOK Code = "NOK"
	HRK Code = "HRK"
	RUB Code = "RUB"
	TRY Code = "TRY"
	AUD Code = "AUD"
	BRL Code = "BRL"
	CAD Code = "CAD"
	CNY Code = "CNY"
	HKD Code = "HKD"
	IDR Code = "IDR"
	ILS Code = "ILS"
	INR Code = "INR"
	KRW Code = "KRW"
	MXN Code = "MXN"
	MYR Code = "MYR"
	NZD Code = "NZD"
	PHP Code = "PHP"
	SGD Code = "SGD"
	THB Code = "THB"
	ZAR Code = "ZAR"
)

// Baseline is the currency the ECB feed quotes everything against.
const Baseline = EUR

type entry struct {
	code   Code
	tokens []string
}

// Guesser resolves free-text price strings to a currency code using the
// codes and the symbols historically used for them. Registration order
// matters: on equal similarity the first registered currency wins, which
// makes ambiguous symbols like "$" resolve deterministically (to USD).
type Guesser struct {
	entries []entry
}

func NewGuesser() *Guesser {
	return &Guesser{
		entries: []entry{
			{EUR, []string{"€"}},
			{USD, []string{"$"}},
			{JPY, []string{"¥", "YEN"}},
			{BGN, []string{"лв"}},
			{CZK, []string{"Kč"}},
			{DKK, []string{"kr"}},
			{GBP, []string{"£"}},
			{HUF, []string{"Ft"}},
			{PLN, []string{"zł"}},
			{RON, []string{"lei"}},
			{SEK, []string{"kr"}},
			{CHF, []string{"Fr"}},
			{ISK, []string{"kr"}},
			{NOK, []string{"kr"}},
			{HRK, []string{"kn"}},
			// The full symbol would be руб, but the digit-heavy values we
			// match against skew the similarity, so just ру.
			{RUB, []string{"ру"}},
			{TRY, []string{"₺"}},
			{AUD, []string{"$", "A$"}},
			{BRL, []string{"R$"}},
			{CAD, []string{"$", "C$"}},
			{CNY, []string{"¥"}},
			{HKD, []string{"$", "HK$"}},
			{IDR, []string{"Rp"}},
			{ILS, []string{"₪"}},
			{INR, []string{"₹"}},
			{KRW, []string{"₩"}},
			{MXN, []string{"$"}},
			{MYR, []string{"RM"}},
			{NZD, []string{"$"}},
			{PHP, []string{"₱"}},
			{SGD, []string{"$"}},
			{THB, []string{"฿"}},
			{ZAR, []string{"R"}},
		},
	}
}

// MatchCode checks value against the registered currency codes. With
// exact=true the value must equal the code, otherwise containing it is
// enough ("CAD250.00" matches CAD).
func (g *Guesser) MatchCode(value string, exact bool) (Code, bool) {
	for _, e := range g.entries {
		if exact {
			if value == string(e.code) {
				return e.code, true
			}
		} else if strings.Contains(value, string(e.code)) {
			return e.code, true
		}
	}
	return "", false
}

// Guess resolves value to a currency code. Codes are checked first since
// they never collide; symbols are scored by normalized Levenshtein
// similarity and the single best currency wins. A best score of zero
// means no match.
func (g *Guesser) Guess(value string) (Code, bool) {
	if code, ok := g.MatchCode(value, false); ok {
		return code, true
	}

	var best float64
	var bestCode Code
	for _, e := range g.entries {
		var sim float64
		for _, token := range e.tokens {
			if s := similarity(value, token); s > sim {
				sim = s
			}
		}
		// Strictly greater keeps the registration order on ties.
		if sim > best {
			best = sim
			bestCode = e.code
		}
	}

	if best == 0 {
		return "", false
	}
	return bestCode, true
}

// similarity is the normalized Levenshtein score in 0..1 (1 = equal).
func similarity(a, b string) float64 {
	la := utf8.RuneCountInString(a)
	lb := utf8.RuneCountInString(b)
	longest := la
	if lb > longest {
		longest = lb
	}
	if longest == 0 {
		return 1.0
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(d)/float64(longest)
}

// ParseAmount recovers the numeric value from a price string, treating
// "." and "," as either decimal or thousands separators: with both
// present the later one is the decimal separator; a single separator
// followed by exactly three digits is a thousands separator.
func ParseAmount(value string) (float64, error) {
	var b strings.Builder
	for _, r := range value {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	s := b.String()
	if s == "" {
		return 0, errors.Errorf("no numeric value in %q", value)
	}

	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastDot > lastComma {
			s = strings.ReplaceAll(s, ",", "")
		} else {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		}
	case lastDot >= 0:
		s = normalizeSingleSeparator(s, ".")
	case lastComma >= 0:
		s = normalizeSingleSeparator(s, ",")
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "parse amount %q", value)
	}
	return f, nil
}

func normalizeSingleSeparator(s, sep string) string {
	if strings.Count(s, sep) > 1 {
		// Repeated separator can only be grouping ("123.456.789").
		return strings.ReplaceAll(s, sep, "")
	}
	idx := strings.LastIndex(s, sep)
	if len(s)-idx-1 == 3 {
		// Exactly three trailing digits: grouping ("123,456" -> 123456).
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}
