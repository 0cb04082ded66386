package currency

import (
	"context"
	"encoding/xml"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

// DefaultFeedURL is the ECB daily euro reference feed.
const DefaultFeedURL = "https://www.ecb.europa.eu/stats/eurofxref/eurofxref-daily.xml"

// Deserialization structs for the ECB envelope
// (<Envelope><Cube><Cube time=...><Cube currency=... rate=.../>...).
type envelope struct {
	Cube struct {
		Time struct {
			Date  string `xml:"time,attr"`
			Rates []struct {
				Currency string  `xml:"currency,attr"`
				Rate     float64 `xml:"rate,attr"`
			} `xml:"Cube"`
		} `xml:"Cube"`
	} `xml:"Cube"`
}

// Table is one immutable snapshot of exchange rates relative to the
// baseline currency. It is built once per run; a currency missing from
// the snapshot stays missing for the whole run.
type Table struct {
	rates map[Code]float64
}

// NewTable builds a table from explicit rates, inserting the baseline
// at 1.0 when absent.
func NewTable(rates map[Code]float64) *Table {
	m := make(map[Code]float64, len(rates)+1)
	for c, r := range rates {
		m[c] = r
	}
	if _, ok := m[Baseline]; !ok {
		m[Baseline] = 1.0
	}
	return &Table{rates: m}
}

// FetchTable downloads and parses the reference feed. Feed entries are
// mapped to supported codes via exact code match; unknown entries are
// discarded. The baseline currency itself is not part of the feed and is
// inserted at rate 1.0.
func FetchTable(ctx context.Context, feedURL string) (*Table, error) {
	if feedURL == "" {
		feedURL = DefaultFeedURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}

	httpc := &http.Client{Timeout: 10 * time.Second}
	resp, err := httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch exchange rates")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("exchange feed http %d", resp.StatusCode)
	}

	var env envelope
	if err := xml.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, errors.Wrap(err, "decode exchange feed")
	}

	slog.Info("extracted exchange rates", "date", env.Cube.Time.Date, "entries", len(env.Cube.Time.Rates))

	guesser := NewGuesser()
	rates := make(map[Code]float64, len(env.Cube.Time.Rates)+1)
	rates[Baseline] = 1.0
	for _, r := range env.Cube.Time.Rates {
		if code, ok := guesser.MatchCode(r.Currency, true); ok {
			rates[code] = r.Rate
		}
	}

	return &Table{rates: rates}, nil
}

// Rate returns the snapshot rate for code relative to the baseline.
func (t *Table) Rate(code Code) (float64, bool) {
	r, ok := t.rates[code]
	return r, ok
}

// Convert translates amount between two currencies of the snapshot.
// Either currency being absent is a permanent error for this run.
func (t *Table) Convert(amount float64, from, to Code) (float64, error) {
	rf, ok := t.rates[from]
	if !ok {
		return 0, errors.Errorf("currency %s not in exchange snapshot", from)
	}
	rt, ok := t.rates[to]
	if !ok {
		return 0, errors.Errorf("currency %s not in exchange snapshot", to)
	}
	return amount / rf * rt, nil
}
