package domain

import (
	"time"
)

// StepStatus represents the outcome of a single filter step.
type StepStatus string

const (
	StepStatusApplied StepStatus = "applied"
	StepStatusSkipped StepStatus = "skipped"
)

// StepReport describes what one filter step did to the table.
type StepReport struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Status      StepStatus `json:"status"`
	RowsBefore  int        `json:"rows_before"`
	RowsAfter   int        `json:"rows_after"`
	RowsDropped int        `json:"rows_dropped"`
	Warning     string     `json:"warning,omitempty"`
}

// RunReport aggregates the per-step reports of one pipeline run.
type RunReport struct {
	RowsIn    int           `json:"rows_in"`
	RowsOut   int           `json:"rows_out"`
	Steps     []StepReport  `json:"steps"`
	Warnings  []string      `json:"warnings,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
}

// Applied reports whether the step with the given id ran and filtered rows.
func (r RunReport) Applied(stepID string) bool {
	for _, s := range r.Steps {
		if s.ID == stepID {
			return s.Status == StepStatusApplied
		}
	}
	return false
}

// ArtifactFormat identifies the on-disk encoding of a generated mailing file.
type ArtifactFormat string

const (
	ArtifactFormatXLSX ArtifactFormat = "xlsx"
	ArtifactFormatCSV  ArtifactFormat = "csv"
)

// Artifact is a generated mailing file held for download.
type Artifact struct {
	ID        string         `json:"id"`
	Filename  string         `json:"filename"`
	Format    ArtifactFormat `json:"format"`
	Size      int64          `json:"size"`
	CreatedAt time.Time      `json:"created_at"`
}

// MailingResult is the full outcome of one mailing run as returned to callers.
// Cases is zero and Artifacts empty when no row survived the filters; the
// Message field then carries the user-facing "no cases" text.
type MailingResult struct {
	Cases      int        `json:"cases"`
	Report     RunReport  `json:"report"`
	Artifacts  []Artifact `json:"artifacts,omitempty"`
	MailtoLink string     `json:"mailto_link,omitempty"`
	Message    string     `json:"message,omitempty"`
}

// Empty reports whether the run produced no mailing cases.
func (m MailingResult) Empty() bool {
	return m.Cases == 0
}

// CategoryList is an ordered churn-reason allow-list. Order is meaningful:
// the 1-based position of a category is its outreach priority.
type CategoryList struct {
	Categories []string   `json:"categories"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
	Builtin    bool       `json:"builtin"`
}
