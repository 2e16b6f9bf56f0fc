package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"churnmail/internal/config"
	"churnmail/internal/dataset"
	apperrors "churnmail/internal/errors"
	"churnmail/pkg/contracts/domain"
)

// Step ids in execution order. They are stable identifiers used in step
// reports, logs and metrics.
const (
	StepPayerExclusion       = "payer_exclusion"
	StepChurnTypeExclusion   = "churn_type_exclusion"
	StepLegalFormExclusion   = "legal_form_exclusion"
	StepRecencyWindow        = "recency_window"
	StepDelinquencyExclusion = "delinquency_exclusion"
	StepCategoryRank         = "category_rank"
)

// Params carries the operator-provided inputs of one run.
type Params struct {
	// AllowedCategories is the ordered churn-reason allow-list. Position is
	// priority: the first category outranks the second, and so on.
	AllowedCategories []string

	// ExcludedPayers holds payer ids to drop, as raw tokens. Every token
	// must parse as an integer or the payer step skips itself.
	ExcludedPayers []string

	// WindowDays is the recency window. Zero or negative means the default.
	WindowDays int
}

// Result is the outcome of a run: the surviving rows and the account of
// what every step did.
type Result struct {
	Table  dataset.Table
	Report domain.RunReport
}

// Empty reports whether the filters left no rows to mail.
func (r Result) Empty() bool {
	return r.Table.Len() == 0
}

// Runner executes the filter chain. It is stateless across runs and safe
// for concurrent use.
type Runner struct {
	logger      *slog.Logger
	now         func() time.Time
	defaultDays int
}

// Option configures a Runner.
type Option func(*Runner)

// WithClock replaces the wall clock used for the recency cutoff and run
// timing. Tests pin it to a fixed moment.
func WithClock(now func() time.Time) Option {
	return func(r *Runner) {
		r.now = now
	}
}

// WithDefaultWindow sets the recency window used when a run does not carry
// its own. Non-positive values keep the built-in default.
func WithDefaultWindow(days int) Option {
	return func(r *Runner) {
		if days > 0 {
			r.defaultDays = days
		}
	}
}

// NewRunner creates a Runner logging through the given logger.
func NewRunner(logger *slog.Logger, opts ...Option) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Runner{
		logger:      logger,
		now:         time.Now,
		defaultDays: config.DefaultRecencyDays,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// step couples a stable id and an operator-facing display name with the
// function that applies it.
type step struct {
	id   string
	name string
	run  func(rc *runContext) (domain.StepStatus, string, error)
}

// steps is the filter chain in its fixed execution order.
var steps = []step{
	{id: StepPayerExclusion, name: "Exclusão de pagadores", run: payerExclusion},
	{id: StepChurnTypeExclusion, name: "Exclusão de churn involuntário", run: churnTypeExclusion},
	{id: StepLegalFormExclusion, name: "Exclusão de forma jurídica C1", run: legalFormExclusion},
	{id: StepRecencyWindow, name: "Janela de recência", run: recencyWindow},
	{id: StepDelinquencyExclusion, name: "Exclusão de inadimplentes", run: delinquencyExclusion},
	{id: StepCategoryRank, name: "Filtro e priorização por categoria", run: categoryRank},
}

// runContext is the mutable state threaded through the steps of one run.
type runContext struct {
	table  dataset.Table
	params Params
	now    time.Time
	window time.Duration
	logger *slog.Logger

	warnings []string
	warned   map[string]bool

	// dateColumn is the resolved creation-date column once the recency
	// step has seen it. The category step sorts by it when set.
	dateColumn string
}

// warn records one operator-facing warning.
func (rc *runContext) warn(msg string) {
	rc.warnings = append(rc.warnings, msg)
}

// resolve maps a canonical column name onto the spelling the upload
// actually carries. A case-variant match is accepted but warned about,
// once per column regardless of how many steps touch it.
func (rc *runContext) resolve(name string) (string, bool) {
	resolved, found, exact := rc.table.Lookup(name)
	if !found {
		return "", false
	}
	if !exact && !rc.warned[name] {
		rc.warned[name] = true
		rc.warn(fmt.Sprintf("A coluna %q foi encontrada no lugar de %q. Recomenda-se ajustar o cabeçalho na planilha.", resolved, name))
	}
	return resolved, true
}

// missingColumn decides the fate of a step whose canonical column is not in
// the upload: columns the registry marks required abort the run, the rest
// skip their step with the given operator warning.
func (rc *runContext) missingColumn(canonical, warning string) (domain.StepStatus, string, error) {
	if dataset.Required(canonical) {
		return "", "", apperrors.NewColumnMissingError(canonical)
	}
	return domain.StepStatusSkipped, warning, nil
}

// keepRows filters the table down to the rows whose cell in col satisfies
// pred, preserving order.
func (rc *runContext) keepRows(col string, pred func(string) bool) error {
	values, err := rc.table.Column(col)
	if err != nil {
		return err
	}
	keep := make([]int, 0, len(values))
	for i, v := range values {
		if pred(v) {
			keep = append(keep, i)
		}
	}
	rc.table = rc.table.Keep(keep)
	return nil
}

// Run applies the filter chain to table and returns the surviving rows
// together with a per-step report. Zero surviving rows is a valid result.
// The returned error is a typed *errors.AppError when a required column is
// missing or the table cannot be read.
func (r *Runner) Run(ctx context.Context, table dataset.Table, params Params) (*Result, error) {
	started := r.now()

	windowDays := params.WindowDays
	if windowDays <= 0 {
		windowDays = r.defaultDays
	}

	rc := &runContext{
		table:  table,
		params: params,
		now:    started,
		window: time.Duration(windowDays) * 24 * time.Hour,
		logger: r.logger,
		warned: make(map[string]bool),
	}

	report := domain.RunReport{
		RowsIn:    table.Len(),
		StartedAt: started,
		Steps:     make([]domain.StepReport, 0, len(steps)),
	}

	r.logger.InfoContext(ctx, "mailing run started",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("window_days", windowDays),
		slog.Int("categories", len(params.AllowedCategories)),
		slog.Int("excluded_payers", len(params.ExcludedPayers)))

	for _, s := range steps {
		if err := ctx.Err(); err != nil {
			r.logger.WarnContext(ctx, "mailing run cancelled",
				slog.String("step", s.id))
			return nil, apperrors.WrapError("mailing run cancelled", err)
		}

		before := rc.table.Len()
		status, warning, err := s.run(rc)
		if err != nil {
			r.logger.ErrorContext(ctx, "mailing step failed",
				slog.String("step", s.id),
				slog.String("error", err.Error()))
			return nil, err
		}
		if err := rc.table.Err(); err != nil {
			r.logger.ErrorContext(ctx, "mailing step corrupted table",
				slog.String("step", s.id),
				slog.String("error", err.Error()))
			return nil, apperrors.WrapError(fmt.Sprintf("step %s failed", s.id), err)
		}
		if warning != "" {
			rc.warn(warning)
		}

		after := rc.table.Len()
		report.Steps = append(report.Steps, domain.StepReport{
			ID:          s.id,
			Name:        s.name,
			Status:      status,
			RowsBefore:  before,
			RowsAfter:   after,
			RowsDropped: before - after,
			Warning:     warning,
		})
		r.logger.InfoContext(ctx, "mailing step finished",
			slog.String("step", s.id),
			slog.String("status", string(status)),
			slog.Int("rows_before", before),
			slog.Int("rows_after", after))
	}

	report.RowsOut = rc.table.Len()
	report.Warnings = rc.warnings
	report.Duration = r.now().Sub(started)

	r.logger.InfoContext(ctx, "mailing run finished",
		slog.Int("rows_in", report.RowsIn),
		slog.Int("rows_out", report.RowsOut),
		slog.Int("warnings", len(rc.warnings)),
		slog.Duration("duration", report.Duration))

	return &Result{Table: rc.table, Report: report}, nil
}
