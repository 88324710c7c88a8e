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
package model

import "time"

// ConfidenceTier buckets a similarity score. The thresholds that produce
// these tiers live in the matcher; the tier itself is a pure function of
// the score.
type ConfidenceTier string

const (
	TierHigh   ConfidenceTier = "high"
	TierMedium ConfidenceTier = "medium"
	TierLow    ConfidenceTier = "low"
	TierNone   ConfidenceTier = "none"
)

// ReconciliationAction is the terminal classification of one valid input row.
type ReconciliationAction string

const (
	ActionCreate        ReconciliationAction = "create"
	ActionLinkExisting  ReconciliationAction = "link_existing"
	ActionSkipDuplicate ReconciliationAction = "skip_duplicate"
	ActionApplyUpdate   ReconciliationAction = "apply_update"
	ActionReject        ReconciliationAction = "reject"
)

// InputRow is a single parsed record from an uploaded file. RowNumber is the
// 1-based spreadsheet line number so error messages map back to a line the
// author can find manually. Dates holds the normalized value of any configured
// date column; a nil entry means the cell did not parse as a date.
type InputRow struct {
	RowNumber int
	Values    map[string]string
	Dates     map[string]*time.Time
}

// Get returns the value of a logical column, or "" when absent.
func (r InputRow) Get(column string) string {
	return r.Values[column]
}

// ValidationOutcome is the tagged result of validating one InputRow. Every
// InputRow produces exactly one outcome.
type ValidationOutcome struct {
	Valid     bool
	RowNumber int
	Reason    string
}

// Candidate is a read-only projection of an existing stored entity, loaded
// once at batch start and immutable for the duration of the batch.
//
// CompareFields feed the fuzzy scorer (e.g. company name plus project name);
// Aliases feed the exact-identity path (e.g. a contact's e-mail addresses, a
// vision model's SKU).
type Candidate struct {
	ID            string
	DisplayName   string
	CompareFields []string
	Aliases       []string
}

// MatchResult pairs a valid input row's identity key with its best candidate.
// Candidate is nil when no candidates exist. A TierNone result is equivalent
// to "no usable match" even when a best candidate is technically present.
type MatchResult struct {
	Candidate *Candidate
	Score     float64
	Tier      ConfidenceTier
}

// RowMessage is a per-row report entry.
type RowMessage struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// BatchReport is the accumulated outcome of one batch. Counts cover applied
// actions; Duplicates, Warnings, Errors and Review preserve file order.
// Review holds rows deferred to a human in update-only flows; they are not
// failures.
type BatchReport struct {
	Created           int          `json:"created"`
	Updated           int          `json:"updated"`
	Linked            int          `json:"linked"`
	SkippedDuplicates int          `json:"skipped_duplicates"`
	Duplicates        []string     `json:"duplicates"`
	Warnings          []RowMessage `json:"warnings"`
	Errors            []RowMessage `json:"errors"`
	Review            []RowMessage `json:"review"`
}

// ImportRun is the persisted record of one batch.
type ImportRun struct {
	ID          int64        `json:"-"`
	ImportID    string       `json:"import_id"`
	Flow        string       `json:"flow"`
	TargetID    string       `json:"target_id,omitempty"`
	Status      string       `json:"status"`
	Report      *BatchReport `json:"report,omitempty"`
	StartedAt   time.Time    `json:"started_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}
