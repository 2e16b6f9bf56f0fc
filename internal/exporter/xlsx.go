package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"churnmail/internal/config"
	"churnmail/internal/dataset"
)

// Column width bounds in Excel character units.
const (
	minColumnWidth = 10.0
	maxColumnWidth = 50.0
)

// XLSXWriter writes the processed table as a styled Excel workbook.
type XLSXWriter struct {
	logger *slog.Logger
}

// NewXLSXWriter creates a new Excel artifact writer.
func NewXLSXWriter(logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{logger: logger}
}

// Write renders table into out as a single-sheet workbook. Payer cells are
// written as numbers so Excel treats them numerically; coercion markers
// become empty cells.
func (w *XLSXWriter) Write(out io.Writer, table dataset.Table) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			w.logger.Warn("closing workbook", slog.String("error", err.Error()))
		}
	}()

	sheet := config.OutputSheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#1A659E"}, Pattern: 1},
		Font:      &excelize.Font{Color: "FFFFFF", Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "FFFFFF", Style: 1},
			{Type: "right", Color: "FFFFFF", Style: 1},
			{Type: "top", Color: "FFFFFF", Style: 1},
			{Type: "bottom", Color: "FFFFFF", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	headers := table.Headers()
	widths := make([]int, len(headers))
	for col, name := range headers {
		widths[col] = utf8.RuneCountInString(name)
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		f.SetCellValue(sheet, cell, name)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	payerIdx := payerColumn(table)
	for rowIdx, row := range table.Rows() {
		for colIdx, value := range row {
			if n := utf8.RuneCountInString(value); n > widths[colIdx] {
				widths[colIdx] = n
			}
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if colIdx == payerIdx {
				if value == dataset.NumericNA {
					continue
				}
				if num, convErr := strconv.ParseFloat(strings.TrimSpace(value), 64); convErr == nil {
					f.SetCellValue(sheet, cell, num)
					continue
				}
			}
			f.SetCellValue(sheet, cell, value)
		}
	}

	for col := range headers {
		width := float64(widths[col]) + 2
		if width < minColumnWidth {
			width = minColumnWidth
		}
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		colName, _ := excelize.ColumnNumberToName(col + 1)
		if err := f.SetColWidth(sheet, colName, colName, width); err != nil {
			return fmt.Errorf("size column %s: %w", colName, err)
		}
	}

	if err := f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header row: %w", err)
	}

	w.logger.Debug("writing xlsx artifact",
		slog.Int("rows", table.Len()),
		slog.Int("columns", len(headers)))

	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// payerColumn returns the index of the payer column, resolved case
// insensitively, or -1 when the table has none.
func payerColumn(table dataset.Table) int {
	resolved, found, _ := table.Lookup(dataset.ColumnPayer)
	if !found {
		return -1
	}
	for i, h := range table.Headers() {
		if h == resolved {
			return i
		}
	}
	return -1
}
