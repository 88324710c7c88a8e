package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/inlethq/inlet/model"
)

// ImportRequest is the form payload of a project-scoped import upload.
type ImportRequest struct {
	ProjectID string `form:"project_id"`
	FileName  string `form:"-"`
}

func (r *ImportRequest) ValidateImportRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ProjectID, validation.Required),
		validation.Field(&r.FileName, validation.Required),
	)
}

// BulkUpdateRequest is the form payload of the account bulk-update upload;
// it has no target project.
type BulkUpdateRequest struct {
	FileName string `form:"-"`
}

func (r *BulkUpdateRequest) ValidateBulkUpdateRequest() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FileName, validation.Required),
	)
}

// ImportRunResponse is the externally visible shape of a finished run.
type ImportRunResponse struct {
	ImportID    string             `json:"import_id"`
	Flow        string             `json:"flow"`
	TargetID    string             `json:"target_id,omitempty"`
	Status      string             `json:"status"`
	Report      *model.BatchReport `json:"report,omitempty"`
	StartedAt   string             `json:"started_at"`
	CompletedAt string             `json:"completed_at,omitempty"`
}

// ToImportRunResponse converts an ImportRun to its API shape.
func ToImportRunResponse(run *model.ImportRun) ImportRunResponse {
	resp := ImportRunResponse{
		ImportID:  run.ImportID,
		Flow:      run.Flow,
		TargetID:  run.TargetID,
		Status:    run.Status,
		Report:    run.Report,
		StartedAt: run.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return resp
}
