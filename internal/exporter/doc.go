// Package exporter renders a processed churn table into the downloadable
// mailing artifacts and the pre-filled e-mail link.
//
// This package contains three main components:
//
// XLSXWriter: Excel output via excelize with the styled "Churn Processado"
// sheet: bold header on a colored fill, frozen header row, content-sized
// columns and numerically typed payer cells.
//
// CSVWriter: comma-separated output with an optional UTF-8 BOM so Excel
// recognizes the encoding.
//
// Filename, ContentType and MailtoLink: the dated artifact name, the
// download MIME types and the mailto URL with the fixed Portuguese
// subject and body.
//
// Example usage:
//
//	var buf bytes.Buffer
//	if err := exporter.NewXLSXWriter(logger).Write(&buf, table); err != nil {
//	    return err
//	}
//	name := exporter.Filename(time.Now(), domain.ArtifactFormatXLSX)
package exporter
