package dataset

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// NumericNA marks a numerically coerced cell whose raw value did not parse.
// Exporters render it as an empty cell.
const NumericNA = "NaN"

// DateTimeLayout is the canonical form parsed dates are rewritten into.
// Lexicographic order of canonical values equals chronological order.
const DateTimeLayout = "2006-01-02 15:04:05"

// dateLayouts are the accepted textual date forms, canonical first, then
// ISO variants, then Brazilian day-first spellings.
var dateLayouts = []string{
	DateTimeLayout,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006",
}

// ParseDate interprets one raw cell as a timestamp. Besides the textual
// layouts, bare numbers are treated as Excel date serials, which is how
// real date cells arrive from raw workbook reads.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= 1 {
		if ts, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// CoerceNumeric parses every cell of the named column as a number and
// rewrites the column canonically: integral values lose any decimal part,
// unparseable cells become NumericNA. The parsed values are returned in row
// order with NaN marking the failures; parsing never errors per cell.
func (t Table) CoerceNumeric(name string) (Table, []float64, error) {
	raw, err := t.Column(name)
	if err != nil {
		return t, nil, err
	}

	parsed := make([]float64, len(raw))
	canonical := make([]string, len(raw))
	for i, v := range raw {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			parsed[i] = math.NaN()
			canonical[i] = NumericNA
			continue
		}
		parsed[i] = f
		canonical[i] = strconv.FormatFloat(f, 'f', -1, 64)
	}
	return t.WithColumn(name, canonical), parsed, nil
}
