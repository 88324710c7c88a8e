package database

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/inlethq/inlet/model"
)

// GetVisionModelCandidates returns the project's existing hardware rows as
// match candidates. The SKU is the exact-identity alias used for duplicate
// detection; the line/position/equipment combination feeds the advisory
// fuzzy check.
func (d Datasource) GetVisionModelCandidates(ctx context.Context, projectID string) ([]model.Candidate, error) {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Fetching vision model candidates")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT model_id, sku, COALESCE(line, ''), COALESCE(position, ''), COALESCE(equipment, '')
		FROM vision_models
		WHERE project_id = $1
		ORDER BY model_id
	`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []model.Candidate
	for rows.Next() {
		var c model.Candidate
		var sku, line, position, equipment string
		if err := rows.Scan(&c.ID, &sku, &line, &position, &equipment); err != nil {
			return nil, err
		}
		c.DisplayName = sku
		c.Aliases = []string{sku}
		c.CompareFields = []string{line + " " + position + " " + equipment}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CreateVisionModel inserts a hardware row into the project's catalog.
func (d Datasource) CreateVisionModel(ctx context.Context, v *model.VisionModel) (string, error) {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Saving vision model to db")
	defer span.End()

	if v.ModelID == "" {
		v.ModelID = model.GenerateUUIDWithSuffix("vm")
	}
	v.CreatedAt = time.Now()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO vision_models (model_id, project_id, sku, line, position, equipment, quantity, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, v.ModelID, v.ProjectID, v.SKU, v.Line, v.Position, v.Equipment, v.Quantity, v.CreatedAt)
	if err != nil {
		return "", err
	}
	return v.ModelID, nil
}
