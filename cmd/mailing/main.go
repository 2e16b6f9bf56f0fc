// Command mailing runs the churn filter pipeline over a local spreadsheet
// and writes the prioritized mailing into a directory, without starting the
// web service.
//
// Usage:
//
//	mailing -in churn.xlsx [-out dir] [-categories file] [-payers "123,456"] [-window 30] [-csv]
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"churnmail/internal/config"
	"churnmail/internal/dataset"
	"churnmail/internal/exporter"
	"churnmail/internal/infrastructure"
	"churnmail/internal/pipeline"
	"churnmail/internal/services"
	"churnmail/internal/session"
	"churnmail/internal/validation"
	"churnmail/pkg/contracts"
	"churnmail/pkg/contracts/domain"
)

func main() {
	inPath := flag.String("in", "", "Input churn spreadsheet (.xlsx or .csv)")
	outDir := flag.String("out", ".", "Directory the processed mailing is written to")
	categoriesPath := flag.String("categories", "", "File with allowed categories in priority order, one per line (default: built-in list)")
	payers := flag.String("payers", "", "Payer ids to exclude, comma separated")
	window := flag.Int("window", 0, "Recency window in days (0 uses the configured default)")
	writeCSV := flag.Bool("csv", false, "Also write a CSV next to the Excel file")
	showVersion := flag.Bool("version", false, "Print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	if *inPath == "" {
		fmt.Println("Error: -in flag is required")
		flag.Usage()
		os.Exit(1)
	}

	if err := godotenv.Load(); err == nil {
		slog.Info("Loaded environment from .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Warn("Failed to load config, using defaults", "error", err)
		cfg = config.Default()
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	// One trace id per invocation, same correlation scheme as the web service.
	ctx = infrastructure.EnsureTraceID(ctx)

	opts := runOptions{
		inPath:         *inPath,
		outDir:         *outDir,
		categoriesPath: *categoriesPath,
		payers:         splitList(*payers),
		windowDays:     *window,
		writeCSV:       *writeCSV,
	}
	if err := run(ctx, cfg, logger, opts); err != nil {
		infrastructure.WithError(logger, err).ErrorContext(ctx, "Mailing run failed")
		os.Exit(1)
	}
}

type runOptions struct {
	inPath         string
	outDir         string
	categoriesPath string
	payers         []string
	windowDays     int
	writeCSV       bool
}

// run executes one pipeline pass end to end. A run whose filters leave no
// rows is a success: it prints the no-cases message and writes nothing.
func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts runOptions) error {
	files := validation.NewFileValidator(logger)
	if err := files.ValidateInputFile(opts.inPath); err != nil {
		return err
	}
	if err := files.ValidateOutputDirectory(opts.outDir); err != nil {
		return err
	}

	categories, err := loadCategories(opts.categoriesPath)
	if err != nil {
		return err
	}

	table, err := loadTable(opts.inPath)
	if err != nil {
		return err
	}

	fmt.Printf("Planilha carregada: %s (%d linhas)\n", filepath.Base(opts.inPath), table.Len())
	logger.InfoContext(ctx, "Input spreadsheet loaded",
		slog.String("file", opts.inPath),
		slog.Int("rows", table.Len()),
		slog.Int("categories", len(categories)),
		slog.Int("excluded_payers", len(opts.payers)))

	runner := pipeline.NewRunner(logger, pipeline.WithDefaultWindow(cfg.Pipeline.RecencyDays))
	result, err := runner.Run(ctx, table, pipeline.Params{
		AllowedCategories: categories,
		ExcludedPayers:    opts.payers,
		WindowDays:        opts.windowDays,
	})
	if err != nil {
		return err
	}

	printReport(result.Report)

	if result.Empty() {
		fmt.Println(services.EmptyOutcomeMessage)
		return nil
	}

	fmt.Printf("✅ Processamento concluído! Foram encontrados %d casos após o processamento.\n", result.Table.Len())

	ts := time.Now()
	xlsxPath := filepath.Join(opts.outDir, exporter.Filename(ts, domain.ArtifactFormatXLSX))
	if err := writeArtifact(xlsxPath, func(w io.Writer) error {
		return exporter.NewXLSXWriter(logger).Write(w, result.Table)
	}); err != nil {
		return err
	}
	fmt.Printf("Planilha gravada: %s\n", xlsxPath)

	if opts.writeCSV {
		csvPath := filepath.Join(opts.outDir, exporter.Filename(ts, domain.ArtifactFormatCSV))
		if err := writeArtifact(csvPath, func(w io.Writer) error {
			return exporter.NewCSVWriter(logger).Write(w, result.Table)
		}); err != nil {
			return err
		}
		fmt.Printf("CSV gravado: %s\n", csvPath)
	}

	fmt.Printf("Link de e-mail: %s\n", exporter.MailtoLink())

	logger.InfoContext(ctx, "Mailing written",
		slog.String("output", xlsxPath),
		slog.Int("cases", result.Table.Len()))
	return nil
}

// loadCategories reads the allow-list file, one category per line in
// priority order, skipping blank lines. Without a file the built-in list
// applies.
func loadCategories(path string) ([]string, error) {
	if path == "" {
		return session.DefaultCategories(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read categories file: %w", err)
	}
	var categories []string
	for _, line := range strings.Split(string(data), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			categories = append(categories, line)
		}
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("categories file %s has no categories", path)
	}
	return categories, nil
}

// loadTable reads the spreadsheet, picking the reader by extension. The
// file validator has already constrained the extension.
func loadTable(path string) (dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataset.Table{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if strings.ToLower(filepath.Ext(path)) == ".csv" {
		return dataset.ReadCSV(f)
	}
	return dataset.ReadXLSX(f)
}

// splitList splits a comma separated flag value, trimming whitespace and
// dropping empty tokens.
func splitList(raw string) []string {
	var out []string
	for _, tok := range strings.Split(raw, ",") {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// printReport prints the per-step account the web UI renders as a table.
func printReport(report domain.RunReport) {
	fmt.Printf("\nLinhas de entrada: %d\n", report.RowsIn)
	for _, s := range report.Steps {
		status := "aplicada"
		if s.Status != domain.StepStatusApplied {
			status = "ignorada"
		}
		fmt.Printf("  - %s: %s (%d -> %d, removidas %d)\n",
			s.Name, status, s.RowsBefore, s.RowsAfter, s.RowsDropped)
	}
	if len(report.Warnings) > 0 {
		fmt.Println("\nAvisos:")
		for _, w := range report.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	fmt.Println()
}

func writeArtifact(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
