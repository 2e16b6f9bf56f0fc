// Package dataset loads uploaded churn spreadsheets into an in-memory
// columnar table and provides the column resolution used by the filter
// pipeline.
//
// The package is organized into three main components:
//
// Table: a loosely typed, string-backed view over one sheet. Every cell is
// kept as its raw text; numeric and date coercions happen per step inside
// the pipeline, never at load time.
//
// Readers: ReadXLSX and ReadCSV build a Table from an upload. Excel files
// are read from their first sheet with raw cell values; CSV files are
// delimiter-sniffed and transcoded from Latin-1 when they are not valid
// UTF-8.
//
// Columns: the registry of recognized input columns and the
// case-insensitive lookup that maps a canonical name onto whatever spelling
// the upload actually carries.
//
// Example usage:
//
//	table, err := dataset.ReadXLSX(file)
//	if err != nil {
//	    return err
//	}
//	col, ok := table.Lookup(dataset.ColumnPayer)
package dataset
