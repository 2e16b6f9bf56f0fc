package pipeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"churnmail/internal/dataset"
	apperrors "churnmail/internal/errors"
	"churnmail/pkg/contracts/domain"
)

// Cell values with filter semantics.
const (
	churnTypeInvoluntary = "Involuntário"
	legalFormBranch      = "C1"
	delinquentFlag       = "I"
)

// payerExclusion drops rows whose payer id is on the exclusion list. The
// step never aborts a run: an absent column, a non-integer token or a
// coercion failure all skip it with a warning instead.
func payerExclusion(rc *runContext) (domain.StepStatus, string, error) {
	if len(rc.params.ExcludedPayers) == 0 {
		return domain.StepStatusSkipped, "", nil
	}

	col, ok := rc.resolve(dataset.ColumnPayer)
	if !ok {
		return rc.missingColumn(dataset.ColumnPayer, "A coluna 'PAGADOR' não foi encontrada na planilha. Ignorando filtro de pagadores.")
	}

	excluded := make(map[float64]struct{}, len(rc.params.ExcludedPayers))
	for _, token := range rc.params.ExcludedPayers {
		id, err := strconv.Atoi(strings.TrimSpace(token))
		if err != nil {
			return domain.StepStatusSkipped, "Os pagadores para remover devem ser números inteiros. Ignorando filtro de pagadores.", nil
		}
		excluded[float64(id)] = struct{}{}
	}

	coerced, values, err := rc.table.CoerceNumeric(col)
	if err != nil {
		return domain.StepStatusSkipped, fmt.Sprintf("Ocorreu um erro ao filtrar pagadores: %v. Ignorando filtro de pagadores.", err), nil
	}

	// Rows whose payer cell did not parse are kept: NaN never matches an id.
	keep := make([]int, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			keep = append(keep, i)
			continue
		}
		if _, drop := excluded[v]; !drop {
			keep = append(keep, i)
		}
	}
	rc.table = coerced.Keep(keep)
	return domain.StepStatusApplied, "", nil
}

// dropWhereEqual removes every row whose cell in the canonical column
// equals value. Both callers pass registry-required columns, so absence
// aborts the run.
func dropWhereEqual(rc *runContext, canonical, value string) (domain.StepStatus, string, error) {
	col, ok := rc.resolve(canonical)
	if !ok {
		return rc.missingColumn(canonical, "")
	}
	if err := rc.keepRows(col, func(v string) bool { return v != value }); err != nil {
		return "", "", apperrors.WrapError(fmt.Sprintf("filter column %s", canonical), err)
	}
	return domain.StepStatusApplied, "", nil
}

func churnTypeExclusion(rc *runContext) (domain.StepStatus, string, error) {
	return dropWhereEqual(rc, dataset.ColumnChurnType, churnTypeInvoluntary)
}

func legalFormExclusion(rc *runContext) (domain.StepStatus, string, error) {
	return dropWhereEqual(rc, dataset.ColumnLegalForm, legalFormBranch)
}

// recencyWindow keeps rows created inside the window ending now. Parsed
// dates are rewritten canonically so later sorting is chronological;
// unparseable dates drop their row.
func recencyWindow(rc *runContext) (domain.StepStatus, string, error) {
	col, ok := rc.resolve(dataset.ColumnCreatedAt)
	if !ok {
		return rc.missingColumn(dataset.ColumnCreatedAt, "A coluna 'DATACRIACAOOS' não foi encontrada. O filtro por data não será aplicado.")
	}

	values, err := rc.table.Column(col)
	if err != nil {
		return "", "", apperrors.WrapError("read creation date column", err)
	}

	cutoff := rc.now.Add(-rc.window)
	canonical := make([]string, len(values))
	keep := make([]int, 0, len(values))
	for i, v := range values {
		ts, parsed := dataset.ParseDate(v)
		if !parsed {
			canonical[i] = v
			continue
		}
		canonical[i] = ts.Format(dataset.DateTimeLayout)
		if !ts.Before(cutoff) {
			keep = append(keep, i)
		}
	}

	rc.table = rc.table.WithColumn(col, canonical).Keep(keep)
	rc.dateColumn = col
	return domain.StepStatusApplied, "", nil
}

// delinquencyExclusion drops delinquent rows.
func delinquencyExclusion(rc *runContext) (domain.StepStatus, string, error) {
	col, ok := rc.resolve(dataset.ColumnDelinquency)
	if !ok {
		return rc.missingColumn(dataset.ColumnDelinquency, "A coluna 'STATUSINADIMPLENTE' não foi encontrada. O filtro de inadimplência não será aplicado.")
	}
	if err := rc.keepRows(col, func(v string) bool { return v != delinquentFlag }); err != nil {
		return "", "", apperrors.WrapError("read delinquency column", err)
	}
	return domain.StepStatusApplied, "", nil
}

// categoryRank keeps the allow-listed churn reasons and orders the result
// for outreach: newest creation date first, allow-list position breaking
// ties. The rank lives in a transient column dropped before the table
// leaves the run.
func categoryRank(rc *runContext) (domain.StepStatus, string, error) {
	col, ok := rc.resolve(dataset.ColumnCategory)
	if !ok {
		return rc.missingColumn(dataset.ColumnCategory, "A coluna 'CATEGORIA4' não foi encontrada. O filtro por categorias não será aplicado.")
	}

	// 1-based positions; a category listed twice keeps its last position.
	priority := make(map[string]int, len(rc.params.AllowedCategories))
	for i, c := range rc.params.AllowedCategories {
		priority[c] = i + 1
	}

	values, err := rc.table.Column(col)
	if err != nil {
		return "", "", apperrors.WrapError("read category column", err)
	}
	keep := make([]int, 0, len(values))
	ranks := make([]int, 0, len(values))
	for i, v := range values {
		p, allowed := priority[v]
		if !allowed {
			continue
		}
		keep = append(keep, i)
		ranks = append(ranks, p)
	}

	ranked := rc.table.Keep(keep).WithIntColumn(dataset.ColumnPriority, ranks)
	keys := []dataset.SortKey{{Column: dataset.ColumnPriority}}
	if rc.dateColumn != "" {
		keys = append([]dataset.SortKey{{Column: rc.dateColumn, Desc: true}}, keys...)
	}
	rc.table = ranked.Arrange(keys...).Drop(dataset.ColumnPriority)
	return domain.StepStatusApplied, "", nil
}
