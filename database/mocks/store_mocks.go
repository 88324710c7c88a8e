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
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/inlethq/inlet/model"
)

// MockDataSource is a mock implementation of the IDataSource interface
type MockDataSource struct {
	mock.Mock
}

// Contact methods

func (m *MockDataSource) GetContactCandidates(ctx context.Context) ([]model.Candidate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Candidate), args.Error(1)
}

func (m *MockDataSource) CreateContact(ctx context.Context, c *model.Contact) (string, error) {
	args := m.Called(ctx, c)
	return args.String(0), args.Error(1)
}

func (m *MockDataSource) LinkContactToProject(ctx context.Context, contactID, projectID string) error {
	args := m.Called(ctx, contactID, projectID)
	return args.Error(0)
}

func (m *MockDataSource) IsContactLinked(ctx context.Context, contactID, projectID string) (bool, error) {
	args := m.Called(ctx, contactID, projectID)
	return args.Bool(0), args.Error(1)
}

// Vision model methods

func (m *MockDataSource) GetVisionModelCandidates(ctx context.Context, projectID string) ([]model.Candidate, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]model.Candidate), args.Error(1)
}

func (m *MockDataSource) CreateVisionModel(ctx context.Context, v *model.VisionModel) (string, error) {
	args := m.Called(ctx, v)
	return args.String(0), args.Error(1)
}

// Account methods

func (m *MockDataSource) GetAccountCandidates(ctx context.Context) ([]model.Candidate, error) {
	args := m.Called(ctx)
	return args.Get(0).([]model.Candidate), args.Error(1)
}

func (m *MockDataSource) UpdateAccountInfo(ctx context.Context, accountID string, update model.AccountUpdate) error {
	args := m.Called(ctx, accountID, update)
	return args.Error(0)
}

// Import run methods

func (m *MockDataSource) RecordImportRun(ctx context.Context, run *model.ImportRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockDataSource) UpdateImportRun(ctx context.Context, run *model.ImportRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockDataSource) GetImportRun(ctx context.Context, importID string) (*model.ImportRun, error) {
	args := m.Called(ctx, importID)
	return args.Get(0).(*model.ImportRun), args.Error(1)
}
