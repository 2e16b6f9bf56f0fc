package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"churnmail/internal/dataset"
)

// CSVWriter writes the processed table as comma-separated text.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV artifact writer.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	// BOMPrefix prepends the UTF-8 BOM so Excel recognizes the encoding.
	BOMPrefix bool
}

// Write renders table into out with the BOM prefix on, which is what the
// download endpoint serves.
func (w *CSVWriter) Write(out io.Writer, table dataset.Table) error {
	return w.WriteWithOptions(out, table, WriteOptions{BOMPrefix: true})
}

// WriteWithOptions renders table into out. Payer coercion markers become
// empty cells, as in the Excel artifact.
func (w *CSVWriter) WriteWithOptions(out io.Writer, table dataset.Table, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if err := writer.Write(table.Headers()); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	payerIdx := payerColumn(table)
	for i, row := range table.Rows() {
		if payerIdx >= 0 && row[payerIdx] == dataset.NumericNA {
			clean := make([]string, len(row))
			copy(clean, row)
			clean[payerIdx] = ""
			row = clean
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}

	w.logger.Debug("writing csv artifact", slog.Int("rows", table.Len()))

	writer.Flush()
	return writer.Error()
}
