package database

import (
	"context"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"

	"github.com/inlethq/inlet/model"
)

// GetAccountCandidates returns every customer account as a fuzzy match
// candidate. The company name plus any recorded trading names are the
// comparable fields; the bulk-update flow has no exact-identity aliases.
func (d Datasource) GetAccountCandidates(ctx context.Context) ([]model.Candidate, error) {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Fetching account candidates")
	defer span.End()

	rows, err := d.Conn.QueryContext(ctx, `
		SELECT account_id, company_name, COALESCE(trading_names, '{}')
		FROM accounts
		ORDER BY account_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []model.Candidate
	for rows.Next() {
		var c model.Candidate
		var tradingNames pq.StringArray
		if err := rows.Scan(&c.ID, &c.DisplayName, &tradingNames); err != nil {
			return nil, err
		}
		c.CompareFields = append([]string{c.DisplayName}, tradingNames...)
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// UpdateAccountInfo overwrites the updatable account fields. Nil fields are
// left unchanged.
func (d Datasource) UpdateAccountInfo(ctx context.Context, accountID string, update model.AccountUpdate) error {
	ctx, span := otel.Tracer("Imports").Start(ctx, "Updating account info")
	defer span.End()

	set := []string{"updated_at = NOW()"}
	args := []interface{}{accountID}

	if update.Status != nil {
		args = append(args, *update.Status)
		set = append(set, "status = $"+strconv.Itoa(len(args)))
	}
	if update.HealthScore != nil {
		args = append(args, *update.HealthScore)
		set = append(set, "health_score = $"+strconv.Itoa(len(args)))
	}
	if update.RenewalDate != nil {
		args = append(args, *update.RenewalDate)
		set = append(set, "renewal_date = $"+strconv.Itoa(len(args)))
	}

	query := "UPDATE accounts SET " + strings.Join(set, ", ") + " WHERE account_id = $1"
	_, err := d.Conn.ExecContext(ctx, query, args...)
	return err
}
