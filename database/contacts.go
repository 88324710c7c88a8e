package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/inlethq/inlet/model"
)

// GetContactCandidates returns every contact as a match candidate. Aliases
// carry all of the contact's e-mail addresses so the exact-identity matcher
// can hit on any of them.
func (d Datasource) GetContactCandidates(ctx context.Context) ([]model.Candidate, error) {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Fetching contact candidates")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT c.contact_id, c.name, COALESCE(array_agg(ce.email) FILTER (WHERE ce.email IS NOT NULL), '{}')
		FROM contacts c
		LEFT JOIN contact_emails ce ON ce.contact_id = c.contact_id
		GROUP BY c.contact_id, c.name
		ORDER BY c.contact_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []model.Candidate
	for rows.Next() {
		var c model.Candidate
		var emails pq.StringArray
		if err := rows.Scan(&c.ID, &c.DisplayName, &emails); err != nil {
			return nil, err
		}
		c.Aliases = emails
		c.CompareFields = []string{c.DisplayName}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CreateContact inserts a contact and its e-mail aliases.
func (d Datasource) CreateContact(ctx context.Context, c *model.Contact) (string, error) {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Saving contact to db")
	defer span.End()

	if c.ContactID == "" {
		c.ContactID = model.GenerateUUIDWithSuffix("cnt")
	}
	c.CreatedAt = time.Now()

	tx, err := d.Conn.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO contacts (contact_id, name, phone, roles, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, c.ContactID, c.Name, c.Phone, c.Roles, c.CreatedAt)
	if err != nil {
		return "", err
	}

	for _, email := range c.Emails {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO contact_emails (contact_id, email)
			VALUES ($1, $2)
			ON CONFLICT (contact_id, email) DO NOTHING
		`, c.ContactID, email)
		if err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return c.ContactID, nil
}

// LinkContactToProject associates an existing contact with a project.
func (d Datasource) LinkContactToProject(ctx context.Context, contactID, projectID string) error {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Linking contact to project")
	defer span.End()

	_, err := d.Conn.ExecContext(ctx, `
		INSERT INTO project_contacts (project_id, contact_id)
		VALUES ($1, $2)
	`, projectID, contactID)
	return err
}

// IsContactLinked reports whether the contact is already on the project.
func (d Datasource) IsContactLinked(ctx context.Context, contactID, projectID string) (bool, error) {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Checking project contact link")
	defer span.End()

	var exists bool
	err := d.Conn.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM project_contacts WHERE project_id = $1 AND contact_id = $2
		)
	`, projectID, contactID).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return false, err
	}
	return exists, nil
}
