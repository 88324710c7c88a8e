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

	"github.com/inlethq/inlet/database"
	"github.com/inlethq/inlet/model"
)

// Logical columns of a contact sheet.
const (
	colContactName  = "name"
	colContactPhone = "phone"
	colContactEmail = "primary_email"
	colContactRoles = "roles"
)

const contactCandidateKey = "candidates:contacts"

// contactImportSpec configures the contact flow: identity is the e-mail
// address, resolved by the exact-match path against every alias a contact
// carries. Fuzzy name similarity plays no part in contact identity.
func contactImportSpec() ImportSpec {
	return ImportSpec{
		Flow: "contacts",
		Noun: "project",
		Columns: []string{
			colContactName, colContactPhone, colContactEmail, colContactRoles,
		},
		Rules: []Rule{
			{Field: colContactName, Check: Required(), Message: "name is required"},
			{Field: colContactEmail, Check: Email(), Message: "a valid primary e-mail is required"},
		},
		IdentityKey: func(row model.InputRow) string { return row.Get(colContactEmail) },
		DisplayName: func(row model.InputRow) string { return row.Get(colContactName) },
		Mode:        ModeCreateLink,
	}
}

// contactApplier dispatches contact actions against the store. Creating a
// contact also links it to the target project so a created row needs no
// separate link step.
type contactApplier struct {
	datasource database.IDataSource
}

func (a contactApplier) Create(ctx context.Context, projectID string, row model.InputRow) (string, error) {
	contact := &model.Contact{
		Name:   row.Get(colContactName),
		Phone:  row.Get(colContactPhone),
		Roles:  row.Get(colContactRoles),
		Emails: []string{row.Get(colContactEmail)},
	}
	id, err := a.datasource.CreateContact(ctx, contact)
	if err != nil {
		return "", err
	}
	if err := a.datasource.LinkContactToProject(ctx, id, projectID); err != nil {
		return "", err
	}
	return id, nil
}

func (a contactApplier) Update(ctx context.Context, contactID string, row model.InputRow) error {
	return errors.New("contact import does not update existing contacts")
}

func (a contactApplier) Link(ctx context.Context, contactID, projectID string) error {
	return a.datasource.LinkContactToProject(ctx, contactID, projectID)
}

func (a contactApplier) IsLinked(ctx context.Context, contactID, projectID string) (bool, error) {
	return a.datasource.IsContactLinked(ctx, contactID, projectID)
}

// ImportContacts runs one contact sheet against a project. Existing contacts
// (matched by any e-mail alias) are linked; unknown ones are created and
// linked; contacts already on the project are skipped as duplicates.
func (s *Inlet) ImportContacts(ctx context.Context, projectID string, file io.Reader, filename string) (*model.ImportRun, error) {
	candidates, err := s.loadCandidates(ctx, contactCandidateKey, s.datasource.GetContactCandidates)
	if err != nil {
		return nil, err
	}
	run, err := s.runImport(ctx, contactImportSpec(), contactApplier{datasource: s.datasource}, projectID, file, filename, candidates)
	s.invalidateCandidates(ctx, contactCandidateKey, run)
	return run, err
}
