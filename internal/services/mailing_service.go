package services

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"churnmail/internal/dataset"
	apierrors "churnmail/internal/errors"
	"churnmail/internal/exporter"
	"churnmail/internal/infrastructure"
	"churnmail/internal/pipeline"
	"churnmail/internal/validation"
	"churnmail/pkg/contracts/domain"
)

// EmptyOutcomeMessage is the operator-facing text returned when the filters
// leave no rows to mail.
const EmptyOutcomeMessage = "Nenhum caso encontrado após aplicar os filtros. Não há planilha para exportar ou enviar."

// MailingRequest carries one upload and its run parameters into the service.
type MailingRequest struct {
	File   multipart.File
	Header *multipart.FileHeader

	// Categories is the ordered churn-reason allow-list. Must be non-empty.
	Categories []string

	// Payers holds raw payer-id tokens to exclude. May be empty.
	Payers []string

	// WindowDays overrides the recency window when positive.
	WindowDays int
}

// MailingService runs the churn filter pipeline over an uploaded
// spreadsheet and turns the survivors into downloadable artifacts.
type MailingService struct {
	runner    *pipeline.Runner
	artifacts *ArtifactStore
	uploads   *validation.UploadValidator
	xlsx      *exporter.XLSXWriter
	csv       *exporter.CSVWriter
	metrics   *infrastructure.BusinessMetrics
	logger    *slog.Logger
	now       func() time.Time
}

// NewMailingService creates a mailing service. metrics may be nil, in which
// case business metrics are not recorded.
func NewMailingService(runner *pipeline.Runner, artifacts *ArtifactStore, uploads *validation.UploadValidator, metrics *infrastructure.BusinessMetrics, logger *slog.Logger) *MailingService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = infrastructure.WithComponent(logger, "mailing_service")

	logger.Info("MailingService initialized",
		slog.Bool("metrics_enabled", metrics != nil))

	return &MailingService{
		runner:    runner,
		artifacts: artifacts,
		uploads:   uploads,
		xlsx:      exporter.NewXLSXWriter(logger),
		csv:       exporter.NewCSVWriter(logger),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateMailing validates the upload, loads it, runs the filter pipeline
// and, when rows survive, writes the xlsx and csv artifacts concurrently.
// A run that filters everything out is not an error: the result carries
// zero cases, the step report and the no-cases message.
func (s *MailingService) CreateMailing(ctx context.Context, req MailingRequest) (*domain.MailingResult, error) {
	started := s.now()

	result, err := s.runUpload(ctx, req)
	if err != nil {
		infrastructure.RecordMailingRun(ctx, s.metrics, "error", s.now().Sub(started), 0)
		return nil, err
	}

	outcome := "success"
	if result.Empty() {
		outcome = "empty"
	}
	infrastructure.RecordMailingRun(ctx, s.metrics, outcome, s.now().Sub(started), result.Cases)

	return result, nil
}

func (s *MailingService) runUpload(ctx context.Context, req MailingRequest) (*domain.MailingResult, error) {
	if len(req.Categories) == 0 {
		return nil, apierrors.ErrEmptyCategories
	}
	if err := s.uploads.Validate(req.File, req.Header); err != nil {
		return nil, err
	}

	table, err := s.loadTable(req)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "processing upload",
		slog.String("filename", req.Header.Filename),
		slog.Int64("size", req.Header.Size),
		slog.Int("rows", table.Len()))

	run, err := s.runner.Run(ctx, table, pipeline.Params{
		AllowedCategories: req.Categories,
		ExcludedPayers:    req.Payers,
		WindowDays:        req.WindowDays,
	})
	if err != nil {
		return nil, err
	}

	for _, step := range run.Report.Steps {
		infrastructure.RecordMailingStep(ctx, s.metrics, step.ID, string(step.Status), step.RowsDropped)
	}

	if run.Empty() {
		s.logger.InfoContext(ctx, "mailing run produced no cases",
			slog.Int("rows_in", run.Report.RowsIn))
		return &domain.MailingResult{
			Cases:   0,
			Report:  run.Report,
			Message: EmptyOutcomeMessage,
		}, nil
	}

	artifacts, err := s.exportArtifacts(ctx, run.Table)
	if err != nil {
		return nil, err
	}

	return &domain.MailingResult{
		Cases:      run.Table.Len(),
		Report:     run.Report,
		Artifacts:  artifacts,
		MailtoLink: exporter.MailtoLink(),
	}, nil
}

// loadTable reads the upload into a table, picking the reader by extension.
// The upload validator has already constrained the extension and sniffed
// the content. Read failures are classified as parse errors so the API
// answers 422 rather than 500.
func (s *MailingService) loadTable(req MailingRequest) (dataset.Table, error) {
	var (
		table dataset.Table
		err   error
	)
	switch strings.ToLower(filepath.Ext(req.Header.Filename)) {
	case ".csv":
		table, err = dataset.ReadCSV(req.File)
	default:
		table, err = dataset.ReadXLSX(req.File)
	}
	if err != nil {
		return dataset.Table{}, apierrors.NewParseError("uploaded dataset could not be parsed", err)
	}
	return table, nil
}

// exportArtifacts writes the xlsx and csv files of one run under a shared
// id. Both writers run concurrently; the first failure cancels the run.
func (s *MailingService) exportArtifacts(ctx context.Context, table dataset.Table) ([]domain.Artifact, error) {
	id := s.artifacts.NewID()
	ts := s.now()

	var xlsxArtifact, csvArtifact domain.Artifact

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		xlsxArtifact, err = s.artifacts.Write(gctx, id, exporter.Filename(ts, domain.ArtifactFormatXLSX), domain.ArtifactFormatXLSX, func(w io.Writer) error {
			return s.xlsx.Write(w, table)
		})
		return err
	})
	g.Go(func() error {
		var err error
		csvArtifact, err = s.artifacts.Write(gctx, id, exporter.Filename(ts, domain.ArtifactFormatCSV), domain.ArtifactFormatCSV, func(w io.Writer) error {
			return s.csv.Write(w, table)
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apierrors.WrapError("failed to export artifacts", err)
	}

	infrastructure.RecordArtifactBytes(ctx, s.metrics, string(domain.ArtifactFormatXLSX), xlsxArtifact.Size)
	infrastructure.RecordArtifactBytes(ctx, s.metrics, string(domain.ArtifactFormatCSV), csvArtifact.Size)

	s.logger.InfoContext(ctx, "artifacts generated",
		slog.String("artifact_id", id),
		slog.Int("cases", table.Len()),
		slog.Int64("xlsx_bytes", xlsxArtifact.Size),
		slog.Int64("csv_bytes", csvArtifact.Size))

	return []domain.Artifact{xlsxArtifact, csvArtifact}, nil
}

// OpenArtifact returns the stored file for one artifact id and format.
func (s *MailingService) OpenArtifact(ctx context.Context, id string, format domain.ArtifactFormat) (io.ReadCloser, domain.Artifact, error) {
	rc, artifact, err := s.artifacts.Open(id, format)
	if err != nil {
		s.logger.WarnContext(ctx, "artifact lookup failed",
			slog.String("artifact_id", id),
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
		return nil, domain.Artifact{}, err
	}
	return rc, artifact, nil
}
