/*
Copyright 2024 Inlet Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package inlet

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/inlethq/inlet/database"
	"github.com/inlethq/inlet/model"
)

// Logical columns of an account-info sheet.
const (
	colAccountCompany     = "company_name"
	colAccountStatus      = "status"
	colAccountHealthScore = "health_score"
	colAccountRenewalDate = "renewal_date"
)

const accountCandidateKey = "candidates:accounts"

// accountStatuses is the allowed status enum for bulk updates.
var accountStatuses = []string{"active", "onboarding", "at_risk", "churned"}

var minHealthScore = 0.0

// accountUpdateSpec configures the bulk account-info flow. This is the one
// flow where the fuzzy match is decisive, which is why only high-confidence
// matches are applied; weaker matches are deferred to manual review.
func accountUpdateSpec() ImportSpec {
	return ImportSpec{
		Flow: "accounts",
		Noun: "account",
		Columns: []string{
			colAccountCompany, colAccountStatus, colAccountHealthScore, colAccountRenewalDate,
		},
		DateColumns: []string{colAccountRenewalDate},
		Rules: []Rule{
			{Field: colAccountCompany, Check: Required(), Message: "company name is required"},
			{Field: colAccountStatus, Check: OneOf(accountStatuses...), Message: "status must be one of: " + strings.Join(accountStatuses, ", ")},
			{Field: colAccountHealthScore, Check: Numeric(&minHealthScore), Message: "health score must be a non-negative number"},
		},
		IdentityKey: func(row model.InputRow) string { return row.Get(colAccountCompany) },
		DisplayName: func(row model.InputRow) string { return row.Get(colAccountCompany) },
		Mode:        ModeUpdateOnly,
	}
}

type accountApplier struct {
	datasource database.IDataSource
}

func (a accountApplier) Create(ctx context.Context, targetID string, row model.InputRow) (string, error) {
	return "", errors.New("bulk account update does not create accounts")
}

func (a accountApplier) Update(ctx context.Context, accountID string, row model.InputRow) error {
	update := model.AccountUpdate{}

	if status := strings.ToLower(strings.TrimSpace(row.Get(colAccountStatus))); status != "" {
		update.Status = &status
	}
	if score := strings.TrimSpace(row.Get(colAccountHealthScore)); score != "" {
		if parsed, err := strconv.ParseFloat(score, 64); err == nil {
			update.HealthScore = &parsed
		}
	}
	if renewal := row.Dates[colAccountRenewalDate]; renewal != nil {
		update.RenewalDate = renewal
	}

	return a.datasource.UpdateAccountInfo(ctx, accountID, update)
}

func (a accountApplier) Link(ctx context.Context, accountID, targetID string) error {
	return errors.New("bulk account update does not link accounts")
}

func (a accountApplier) IsLinked(ctx context.Context, accountID, targetID string) (bool, error) {
	return false, nil
}

// BulkUpdateAccounts runs one account-info sheet against the account list.
// Rows matching an account with high confidence overwrite its status, health
// score and renewal date; everything else lands in the manual-review bucket
// untouched.
func (s *Inlet) BulkUpdateAccounts(ctx context.Context, file io.Reader, filename string) (*model.ImportRun, error) {
	candidates, err := s.loadCandidates(ctx, accountCandidateKey, s.datasource.GetAccountCandidates)
	if err != nil {
		return nil, err
	}
	run, err := s.runImport(ctx, accountUpdateSpec(), accountApplier{datasource: s.datasource}, "", file, filename, candidates)
	s.invalidateCandidates(ctx, accountCandidateKey, run)
	return run, err
}
