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
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/inlethq/inlet/model"
)

type mockApplier struct {
	mock.Mock
}

func (m *mockApplier) Create(ctx context.Context, targetID string, row model.InputRow) (string, error) {
	args := m.Called(ctx, targetID, row)
	return args.String(0), args.Error(1)
}

func (m *mockApplier) Update(ctx context.Context, candidateID string, row model.InputRow) error {
	args := m.Called(ctx, candidateID, row)
	return args.Error(0)
}

func (m *mockApplier) Link(ctx context.Context, candidateID, targetID string) error {
	args := m.Called(ctx, candidateID, targetID)
	return args.Error(0)
}

func (m *mockApplier) IsLinked(ctx context.Context, candidateID, targetID string) (bool, error) {
	args := m.Called(ctx, candidateID, targetID)
	return args.Bool(0), args.Error(1)
}

func contactRow(number int, name, email string) model.InputRow {
	return model.InputRow{
		RowNumber: number,
		Values: map[string]string{
			"name":          name,
			"primary_email": email,
		},
	}
}

func testCreateLinkSpec() ImportSpec {
	return ImportSpec{
		Flow: "contacts",
		Noun: "project",
		Rules: []Rule{
			{Field: "name", Check: Required(), Message: "name is required"},
			{Field: "primary_email", Check: Email(), Message: "a valid primary e-mail is required"},
		},
		IdentityKey: func(r model.InputRow) string { return r.Get("primary_email") },
		DisplayName: func(r model.InputRow) string { return r.Get("name") },
		Mode:        ModeCreateLink,
	}
}

func testUpdateSpec() ImportSpec {
	return ImportSpec{
		Flow: "accounts",
		Noun: "account",
		Rules: []Rule{
			{Field: "company_name", Check: Required(), Message: "company name is required"},
		},
		IdentityKey: func(r model.InputRow) string { return r.Get("company_name") },
		DisplayName: func(r model.InputRow) string { return r.Get("company_name") },
		Mode:        ModeUpdateOnly,
	}
}

func TestEngineCreatesUnmatchedRows(t *testing.T) {
	applier := new(mockApplier)
	applier.On("Create", mock.Anything, "prj_1", mock.Anything).Return("ctc_new", nil)

	engine := NewEngine(testCreateLinkSpec(), applier, nil)
	report := engine.Run(context.Background(), []model.InputRow{
		contactRow(2, "Jordan Hale", "jordan@example.com"),
	}, "prj_1")

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 0, report.Linked)
	assert.Empty(t, report.Errors)
	applier.AssertExpectations(t)
}

func TestEngineLinksExistingCandidate(t *testing.T) {
	candidates := []model.Candidate{
		{ID: "ctc_1", DisplayName: "Jordan Hale", Aliases: []string{"jordan@example.com"}},
	}

	applier := new(mockApplier)
	applier.On("IsLinked", mock.Anything, "ctc_1", "prj_1").Return(false, nil)
	applier.On("Link", mock.Anything, "ctc_1", "prj_1").Return(nil)

	engine := NewEngine(testCreateLinkSpec(), applier, candidates)
	report := engine.Run(context.Background(), []model.InputRow{
		contactRow(2, "Jordan Hale", "JORDAN@example.com"),
	}, "prj_1")

	assert.Equal(t, 1, report.Linked)
	assert.Equal(t, 0, report.Created)
	applier.AssertExpectations(t)
	applier.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngineSkipsAlreadyLinked(t *testing.T) {
	candidates := []model.Candidate{
		{ID: "ctc_1", DisplayName: "Jordan Hale", Aliases: []string{"jordan@example.com"}},
	}

	applier := new(mockApplier)
	applier.On("IsLinked", mock.Anything, "ctc_1", "prj_1").Return(true, nil)

	engine := NewEngine(testCreateLinkSpec(), applier, candidates)
	report := engine.Run(context.Background(), []model.InputRow{
		contactRow(2, "Jordan Hale", "jordan@example.com"),
	}, "prj_1")

	assert.Equal(t, 1, report.SkippedDuplicates)
	assert.Len(t, report.Duplicates, 1)
	assert.Contains(t, report.Duplicates[0], "already on this project")
	applier.AssertNotCalled(t, "Link", mock.Anything, mock.Anything, mock.Anything)
}

// Two rows carrying the same identity in one file: the first is applied, the
// second is a duplicate regardless of what the store said at batch start.
func TestEngineInBatchDuplicateCreate(t *testing.T) {
	applier := new(mockApplier)
	applier.On("Create", mock.Anything, "prj_1", mock.Anything).Return("ctc_new", nil).Once()

	engine := NewEngine(testCreateLinkSpec(), applier, nil)
	report := engine.Run(context.Background(), []model.InputRow{
		contactRow(2, "Jordan Hale", "jordan@example.com"),
		contactRow(3, "Jordan Hale", "Jordan@Example.com"),
	}, "prj_1")

	assert.Equal(t, 1, report.Created)
	assert.Equal(t, 1, report.SkippedDuplicates)
	assert.Contains(t, report.Duplicates[0], "already created earlier in this file")
	applier.AssertExpectations(t)
}

func TestEngineInBatchDuplicateLink(t *testing.T) {
	candidates := []model.Candidate{
		{ID: "ctc_1", DisplayName: "Jordan Hale", Aliases: []string{"jordan@example.com"}},
	}

	applier := new(mockApplier)
	applier.On("IsLinked", mock.Anything, "ctc_1", "prj_1").Return(false, nil).Once()
	applier.On("Link", mock.Anything, "ctc_1", "prj_1").Return(nil).Once()

	engine := NewEngine(testCreateLinkSpec(), applier, candidates)
	report := engine.Run(context.Background(), []model.InputRow{
		contactRow(2, "Jordan Hale", "jordan@example.com"),
		contactRow(3, "J. Hale", "jordan@example.com"),
	}, "prj_1")

	assert.Equal(t, 1, report.Linked)
	assert.Equal(t, 1, report.SkippedDuplicates)
	assert.Contains(t, report.Duplicates[0], "already processed earlier in this file")
	applier.AssertExpectations(t)
}

// A failing row must not take the rest of the batch with it.
func TestEngineRowFailureIsolation(t *testing.T) {
	applier := new(mockApplier)
	applier.On("Create", mock.Anything, "prj_1", mock.MatchedBy(func(r model.InputRow) bool {
		return r.RowNumber == 5
	})).Return("", errors.New("store unavailable")).Once()
	applier.On("Create", mock.Anything, "prj_1", mock.Anything).Return("ctc_new", nil)

	var rows []model.InputRow
	for i := 2; i <= 7; i++ {
		rows = append(rows, contactRow(i, fmt.Sprintf("Contact %d", i), fmt.Sprintf("contact%d@example.com", i)))
	}

	engine := NewEngine(testCreateLinkSpec(), applier, nil)
	report := engine.Run(context.Background(), rows, "prj_1")

	assert.Equal(t, 5, report.Created)
	assert.Len(t, report.Errors, 1)
	assert.Equal(t, 5, report.Errors[0].Row)
	assert.Contains(t, report.Errors[0].Message, "store unavailable")
}

func TestEngineValidationErrors(t *testing.T) {
	applier := new(mockApplier)
	applier.On("Create", mock.Anything, "prj_1", mock.Anything).Return("ctc_new", nil)

	engine := NewEngine(testCreateLinkSpec(), applier, nil)
	report := engine.Run(context.Background(), []model.InputRow{
		contactRow(2, "", "jordan@example.com"),
		contactRow(3, "Sam Reed", "not-an-email"),
		contactRow(4, "Ada Okafor", "ada@example.com"),
	}, "prj_1")

	assert.Equal(t, 1, report.Created)
	assert.Len(t, report.Errors, 2)
	assert.Equal(t, 2, report.Errors[0].Row)
	assert.Equal(t, "name is required", report.Errors[0].Message)
	assert.Equal(t, 3, report.Errors[1].Row)
	assert.Equal(t, "a valid primary e-mail is required", report.Errors[1].Message)
}

func TestEngineUpdateHighConfidence(t *testing.T) {
	candidates := []model.Candidate{
		{ID: "acc_1", DisplayName: "AquaScot Seafood Ltd", CompareFields: []string{"AquaScot Seafood Ltd"}},
	}

	applier := new(mockApplier)
	applier.On("Update", mock.Anything, "acc_1", mock.Anything).Return(nil)

	engine := NewEngine(testUpdateSpec(), applier, candidates)
	report := engine.Run(context.Background(), []model.InputRow{
		{RowNumber: 2, Values: map[string]string{"company_name": "Aqua-Scot"}},
	}, "")

	assert.Equal(t, 1, report.Updated)
	assert.Empty(t, report.Review)
	applier.AssertExpectations(t)
}

// A medium-confidence match is deferred to a human and must not touch the
// store.
func TestEngineUpdateMediumConfidenceGoesToReview(t *testing.T) {
	candidates := []model.Candidate{
		{ID: "acc_1", DisplayName: "Alpha Beta Gamma Delta X", CompareFields: []string{"alpha beta gamma delta x"}},
	}

	applier := new(mockApplier)

	engine := NewEngine(testUpdateSpec(), applier, candidates)
	report := engine.Run(context.Background(), []model.InputRow{
		{RowNumber: 2, Values: map[string]string{"company_name": "alpha beta gamma delta y"}},
	}, "")

	assert.Equal(t, 0, report.Updated)
	assert.Len(t, report.Review, 1)
	assert.Equal(t, 2, report.Review[0].Row)
	assert.Contains(t, report.Review[0].Message, "confidence: medium")
	applier.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngineUpdateNoMatchGoesToReview(t *testing.T) {
	applier := new(mockApplier)

	engine := NewEngine(testUpdateSpec(), applier, nil)
	report := engine.Run(context.Background(), []model.InputRow{
		{RowNumber: 2, Values: map[string]string{"company_name": "Unknown Holdings"}},
	}, "")

	assert.Len(t, report.Review, 1)
	assert.Contains(t, report.Review[0].Message, "no confident match")
	applier.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

// Re-running the same file after a completed run only produces duplicates:
// the first run's effects are now visible in the store.
func TestEngineRerunIsIdempotent(t *testing.T) {
	rows := []model.InputRow{
		contactRow(2, "Jordan Hale", "jordan@example.com"),
		contactRow(3, "Sam Reed", "sam@example.com"),
	}

	firstApplier := new(mockApplier)
	firstApplier.On("Create", mock.Anything, "prj_1", mock.Anything).Return("ctc_new", nil)

	first := NewEngine(testCreateLinkSpec(), firstApplier, nil)
	firstReport := first.Run(context.Background(), rows, "prj_1")
	assert.Equal(t, 2, firstReport.Created)

	// Second run: both contacts now exist and are linked.
	candidates := []model.Candidate{
		{ID: "ctc_1", DisplayName: "Jordan Hale", Aliases: []string{"jordan@example.com"}},
		{ID: "ctc_2", DisplayName: "Sam Reed", Aliases: []string{"sam@example.com"}},
	}
	secondApplier := new(mockApplier)
	secondApplier.On("IsLinked", mock.Anything, mock.Anything, "prj_1").Return(true, nil)

	second := NewEngine(testCreateLinkSpec(), secondApplier, candidates)
	secondReport := second.Run(context.Background(), rows, "prj_1")

	assert.Equal(t, 0, secondReport.Created)
	assert.Equal(t, 0, secondReport.Linked)
	assert.Equal(t, 2, secondReport.SkippedDuplicates)
	secondApplier.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
}

func TestEngineAdvisoryWarningDoesNotBlock(t *testing.T) {
	spec := testCreateLinkSpec()
	spec.Advisory = func(row model.InputRow, candidates []model.Candidate) (string, bool) {
		return "configuration looks unusual", true
	}

	applier := new(mockApplier)
	applier.On("Create", mock.Anything, "prj_1", mock.Anything).Return("ctc_new", nil)

	engine := NewEngine(spec, applier, nil)
	report := engine.Run(context.Background(), []model.InputRow{
		contactRow(2, "Jordan Hale", "jordan@example.com"),
	}, "prj_1")

	assert.Equal(t, 1, report.Created)
	assert.Len(t, report.Warnings, 1)
	applier.AssertExpectations(t)
}

// Cancellation stops processing between rows; already applied rows stay
// committed and the partial report is returned.
func TestEngineCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	applier := new(mockApplier)
	applier.On("Create", mock.Anything, "prj_1", mock.Anything).Return("ctc_new", nil).Run(func(args mock.Arguments) {
		cancel()
	}).Once()

	engine := NewEngine(testCreateLinkSpec(), applier, nil)
	report := engine.Run(ctx, []model.InputRow{
		contactRow(2, "Jordan Hale", "jordan@example.com"),
		contactRow(3, "Sam Reed", "sam@example.com"),
	}, "prj_1")

	assert.Equal(t, 1, report.Created)
	applier.AssertNumberOfCalls(t, "Create", 1)
}
