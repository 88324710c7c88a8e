package database

import (
	"context"

	"github.com/inlethq/inlet/model"
)

type contact interface {
	GetContactCandidates(ctx context.Context) ([]model.Candidate, error)
	CreateContact(ctx context.Context, c *model.Contact) (string, error)
	LinkContactToProject(ctx context.Context, contactID, projectID string) error
	IsContactLinked(ctx context.Context, contactID, projectID string) (bool, error)
}

type visionModel interface {
	GetVisionModelCandidates(ctx context.Context, projectID string) ([]model.Candidate, error)
	CreateVisionModel(ctx context.Context, v *model.VisionModel) (string, error)
}

type account interface {
	GetAccountCandidates(ctx context.Context) ([]model.Candidate, error)
	UpdateAccountInfo(ctx context.Context, accountID string, update model.AccountUpdate) error
}

type importRun interface {
	RecordImportRun(ctx context.Context, run *model.ImportRun) error
	UpdateImportRun(ctx context.Context, run *model.ImportRun) error
	GetImportRun(ctx context.Context, importID string) (*model.ImportRun, error)
}

// IDataSource is the composed store interface the pipeline consumes.
type IDataSource interface {
	contact
	visionModel
	account
	importRun
}
