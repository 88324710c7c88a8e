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
	"io"
	"strconv"
	"strings"

	"github.com/inlethq/inlet/database"
	"github.com/inlethq/inlet/model"
)

// Logical columns of a vision-model sheet.
const (
	colModelSKU       = "sku"
	colModelLine      = "line"
	colModelPosition  = "position"
	colModelEquipment = "equipment"
	colModelQuantity  = "quantity"
)

var minQuantity = 1

func visionModelCandidateKey(projectID string) string {
	return "candidates:vision_models:" + projectID
}

// visionModelImportSpec configures the hardware upload flow. Identity is
// the SKU (exact match within the project); the fuzzy layer only verifies
// configurations and surfaces warnings, it never blocks a row.
func visionModelImportSpec() ImportSpec {
	return ImportSpec{
		Flow: "vision_models",
		Noun: "project",
		Columns: []string{
			colModelSKU, colModelLine, colModelPosition, colModelEquipment, colModelQuantity,
		},
		Rules: []Rule{
			{Field: colModelSKU, Check: Required(), Message: "sku is required"},
			{Field: colModelQuantity, Check: Integer(&minQuantity), Message: "quantity must be a whole number of at least 1"},
		},
		IdentityKey: func(row model.InputRow) string { return row.Get(colModelSKU) },
		DisplayName: func(row model.InputRow) string { return row.Get(colModelSKU) },
		Mode:        ModeCreateLink,
		Advisory:    verifyConfiguration,
	}
}

// verifyConfiguration compares a row's line/position/equipment combination
// against the combinations already present in the project. A combination
// that resembles nothing existing is flagged; the row is still applied.
func verifyConfiguration(row model.InputRow, candidates []model.Candidate) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}
	combination := strings.TrimSpace(strings.Join([]string{
		row.Get(colModelLine), row.Get(colModelPosition), row.Get(colModelEquipment),
	}, " "))
	if combination == "" {
		return "", false
	}

	result := Match(combination, candidates)
	if result.Tier == model.TierNone || result.Tier == model.TierLow {
		return fmt.Sprintf("this line/position/equipment combination looks unusual for this project: %q", combination), true
	}
	return "", false
}

type visionModelApplier struct {
	datasource database.IDataSource
}

func (a visionModelApplier) Create(ctx context.Context, projectID string, row model.InputRow) (string, error) {
	quantity := 1
	if q := strings.TrimSpace(row.Get(colModelQuantity)); q != "" {
		if parsed, err := strconv.Atoi(q); err == nil {
			quantity = parsed
		}
	}
	vm := &model.VisionModel{
		ProjectID: projectID,
		SKU:       row.Get(colModelSKU),
		Line:      row.Get(colModelLine),
		Position:  row.Get(colModelPosition),
		Equipment: row.Get(colModelEquipment),
		Quantity:  quantity,
	}
	return a.datasource.CreateVisionModel(ctx, vm)
}

func (a visionModelApplier) Update(ctx context.Context, modelID string, row model.InputRow) error {
	return errors.New("vision model upload does not update existing rows")
}

// Link is never reached: candidates are scoped to the target project, so a
// SKU match always reports as already linked and the row is skipped.
func (a visionModelApplier) Link(ctx context.Context, modelID, projectID string) error {
	return nil
}

func (a visionModelApplier) IsLinked(ctx context.Context, modelID, projectID string) (bool, error) {
	return true, nil
}

// ImportVisionModels runs one hardware sheet against a project. Rows whose
// SKU already exists in the project are skipped as duplicates; everything
// else is created, with advisory configuration warnings where the
// combination looks unusual.
func (s *Inlet) ImportVisionModels(ctx context.Context, projectID string, file io.Reader, filename string) (*model.ImportRun, error) {
	key := visionModelCandidateKey(projectID)
	candidates, err := s.loadCandidates(ctx, key, func(ctx context.Context) ([]model.Candidate, error) {
		return s.datasource.GetVisionModelCandidates(ctx, projectID)
	})
	if err != nil {
		return nil, err
	}
	run, err := s.runImport(ctx, visionModelImportSpec(), visionModelApplier{datasource: s.datasource}, projectID, file, filename, candidates)
	s.invalidateCandidates(ctx, key, run)
	return run, err
}
