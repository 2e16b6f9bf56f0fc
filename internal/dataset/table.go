package dataset

import (
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Table is a loosely typed view over one uploaded sheet. Every column
// starts as strings; per-step coercions (numeric payer, parsed dates)
// rewrite columns explicitly. The zero value is not usable; build one
// with New or one of the readers.
type Table struct {
	df dataframe.DataFrame
}

// New builds a Table from a header row and data rows. Headers must be
// non-blank and unique after trimming; rows shorter than the header are
// padded with empty cells and longer rows truncated.
func New(headers []string, rows [][]string) (Table, error) {
	if len(headers) == 0 {
		return Table{}, fmt.Errorf("missing header row")
	}

	names := make([]string, len(headers))
	seen := make(map[string]struct{}, len(headers))
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			return Table{}, fmt.Errorf("blank header in column %d", i+1)
		}
		if _, dup := seen[h]; dup {
			return Table{}, fmt.Errorf("duplicate header %q", h)
		}
		seen[h] = struct{}{}
		names[i] = h
	}

	// gota's LoadRecords rejects header-only input, so an empty sheet is
	// assembled from zero-length string series instead.
	if len(rows) == 0 {
		cols := make([]series.Series, len(names))
		for i, name := range names {
			cols[i] = series.New([]string{}, series.String, name)
		}
		df := dataframe.New(cols...)
		if df.Err != nil {
			return Table{}, fmt.Errorf("build table: %w", df.Err)
		}
		return Table{df: df}, nil
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, names)
	for _, row := range rows {
		padded := make([]string, len(names))
		copy(padded, row)
		records = append(records, padded)
	}

	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return Table{}, fmt.Errorf("build table: %w", df.Err)
	}
	return Table{df: df}, nil
}

// Headers returns the column names in sheet order.
func (t Table) Headers() []string {
	return t.df.Names()
}

// Len returns the number of data rows.
func (t Table) Len() int {
	n := t.df.Nrow()
	if n < 0 {
		return 0
	}
	return n
}

// Records returns the header row followed by every data row.
func (t Table) Records() [][]string {
	return t.df.Records()
}

// Rows returns the data rows without the header.
func (t Table) Rows() [][]string {
	rec := t.df.Records()
	if len(rec) <= 1 {
		return nil
	}
	return rec[1:]
}

// Has reports whether a column with exactly this name exists.
func (t Table) Has(name string) bool {
	for _, h := range t.df.Names() {
		if h == name {
			return true
		}
	}
	return false
}

// Lookup resolves name against the table headers. The exact spelling wins;
// otherwise the first case-insensitive match is returned and exact is
// false, which callers surface as a single warning.
func (t Table) Lookup(name string) (resolved string, found, exact bool) {
	headers := t.df.Names()
	for _, h := range headers {
		if h == name {
			return h, true, true
		}
	}
	for _, h := range headers {
		if strings.EqualFold(h, name) {
			return h, true, false
		}
	}
	return "", false, false
}

// Column returns the raw values of an exactly named column.
func (t Table) Column(name string) ([]string, error) {
	if !t.Has(name) {
		return nil, fmt.Errorf("column %q not found", name)
	}
	if t.Len() == 0 {
		return nil, nil
	}
	return t.df.Col(name).Records(), nil
}

// Keep returns a table containing only the rows at the given indexes, in
// the given order.
func (t Table) Keep(idx []int) Table {
	if len(idx) == 0 {
		return t.truncate()
	}
	return Table{df: t.df.Subset(idx)}
}

// truncate returns a zero-row table with the same columns.
func (t Table) truncate() Table {
	names := t.df.Names()
	cols := make([]series.Series, len(names))
	for i, name := range names {
		cols[i] = series.New([]string{}, series.String, name)
	}
	return Table{df: dataframe.New(cols...)}
}

// Drop returns a table without the named column.
func (t Table) Drop(name string) Table {
	return Table{df: t.df.Drop(name)}
}

// WithColumn returns a table with the named string column replaced in
// place or, when absent, appended after the existing columns.
func (t Table) WithColumn(name string, values []string) Table {
	return Table{df: t.df.Mutate(series.New(values, series.String, name))}
}

// WithIntColumn is WithColumn for integer columns. Integer typing matters
// when sorting: numeric order, not lexical.
func (t Table) WithIntColumn(name string, values []int) Table {
	return Table{df: t.df.Mutate(series.New(values, series.Int, name))}
}

// SortKey orders rows by one column.
type SortKey struct {
	Column string
	Desc   bool
}

// Arrange returns a table sorted by the given keys, applied left to right
// with stable ties.
func (t Table) Arrange(keys ...SortKey) Table {
	if len(keys) == 0 || t.Len() == 0 {
		return t
	}
	order := make([]dataframe.Order, len(keys))
	for i, k := range keys {
		if k.Desc {
			order[i] = dataframe.RevSort(k.Column)
		} else {
			order[i] = dataframe.Sort(k.Column)
		}
	}
	return Table{df: t.df.Arrange(order...)}
}

// Err surfaces any deferred dataframe error from a chain of table
// operations. Chains that only use columns verified through Lookup never
// set it.
func (t Table) Err() error {
	return t.df.Err
}
