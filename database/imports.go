package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"

	"github.com/inlethq/inlet/internal/apierror"
	"github.com/inlethq/inlet/model"
)

// RecordImportRun inserts a new import run record.
func (d Datasource) RecordImportRun(ctx context.Context, run *model.ImportRun) error {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Saving import run to db")
	defer span.End()

	report, err := marshalReport(run.Report)
	if err != nil {
		return err
	}

	_, err = d.Conn.ExecContext(ctx, `
		INSERT INTO import_runs (import_id, flow, target_id, status, report, started_at, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, run.ImportID, run.Flow, run.TargetID, run.Status, report, run.StartedAt, run.CompletedAt)
	return err
}

// UpdateImportRun updates the status, report and completion time of a run.
func (d Datasource) UpdateImportRun(ctx context.Context, run *model.ImportRun) error {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Updating import run")
	defer span.End()

	report, err := marshalReport(run.Report)
	if err != nil {
		return err
	}

	completedAt := sql.NullTime{}
	if run.CompletedAt != nil {
		completedAt = sql.NullTime{Time: *run.CompletedAt, Valid: true}
	}

	_, err = d.Conn.ExecContext(ctx, `
		UPDATE import_runs
		SET status = $2, report = $3, completed_at = $4
		WHERE import_id = $1
	`, run.ImportID, run.Status, report, completedAt)
	return err
}

// GetImportRun retrieves an import run by its ID.
func (d Datasource) GetImportRun(ctx context.Context, importID string) (*model.ImportRun, error) {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Fetching import run from db")
	defer span.End()

	run := &model.ImportRun{}
	var report []byte
	var targetID sql.NullString
	var completedAt sql.NullTime

	err := d.Conn.QueryRowContext(ctx, `
		SELECT id, import_id, flow, target_id, status, report, started_at, completed_at
		FROM import_runs
		WHERE import_id = $1
	`, importID).Scan(
		&run.ID, &run.ImportID, &run.Flow, &targetID, &run.Status,
		&report, &run.StartedAt, &completedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apierror.NewAPIError(apierror.ErrNotFound, fmt.Sprintf("Import run with ID '%s' not found", importID), err)
		}
		return nil, err
	}

	run.TargetID = targetID.String
	if completedAt.Valid {
		t := completedAt.Time
		run.CompletedAt = &t
	}
	if len(report) > 0 {
		run.Report = &model.BatchReport{}
		if err := json.Unmarshal(report, run.Report); err != nil {
			return nil, errors.Wrap(err, "decoding import report")
		}
	}
	return run, nil
}

func marshalReport(report *model.BatchReport) (interface{}, error) {
	if report == nil {
		return nil, nil
	}
	data, err := json.Marshal(report)
	if err != nil {
		return nil, errors.Wrap(err, "encoding import report")
	}
	return data, nil
}
