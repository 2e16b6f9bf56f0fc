// Package api contains API contract definitions for the churnmail service.
// Version v1 represents the current stable API version.
package api

// MailingCreateRequest carries the non-file fields of the multipart
// POST /api/mailing form. Categories arrive as one label per line and
// payers as a comma-separated list; both are parsed server-side.
type MailingCreateRequest struct {
	Categories string `json:"categories" form:"categories"`
	Payers     string `json:"payers" form:"payers"`
	WindowDays int    `json:"window_days,omitempty" form:"window_days" validate:"omitempty,min=1,max=3650"`
}

// ArtifactDownloadRequest identifies a generated artifact to download.
type ArtifactDownloadRequest struct {
	ArtifactID string `json:"artifact_id" param:"id" validate:"required,uuid"`
	Format     string `json:"format" query:"format" validate:"omitempty,oneof=xlsx csv"`
}

// SessionCategoriesUpdateRequest replaces a session's category allow-list.
type SessionCategoriesUpdateRequest struct {
	Categories []string `json:"categories" validate:"required,min=1,dive,required"`
}
