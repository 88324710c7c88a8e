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
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"

	"github.com/inlethq/inlet/model"
)

// Mode selects the terminal actions a flow is allowed to take.
type Mode int

const (
	// ModeCreateLink creates unmatched rows and links matched candidates to
	// the target context. Identity is resolved by the exact-match path only.
	ModeCreateLink Mode = iota
	// ModeUpdateOnly overwrites matched entities. Identity is resolved by the
	// fuzzy path and only high-confidence matches are applied; everything
	// else is routed to manual review.
	ModeUpdateOnly
)

// Applier dispatches the terminal actions against the entity store. Each
// call is assumed atomic; the engine keeps no transaction log of its own.
type Applier interface {
	Create(ctx context.Context, targetID string, row model.InputRow) (string, error)
	Update(ctx context.Context, candidateID string, row model.InputRow) error
	Link(ctx context.Context, candidateID, targetID string) error
	IsLinked(ctx context.Context, candidateID, targetID string) (bool, error)
}

// AdvisoryCheck inspects a row against the batch's candidates and returns a
// warning message when something looks off. Advisory findings never block
// the row from being applied.
type AdvisoryCheck func(row model.InputRow, candidates []model.Candidate) (string, bool)

// ImportSpec configures one reconciliation flow. The engine itself is
// generic; the three import flows differ only in the values below.
type ImportSpec struct {
	// Flow names the instantiation, e.g. "contacts".
	Flow string
	// Noun is the human word used in duplicate/review messages.
	Noun string
	// Columns and DateColumns feed the parser.
	Columns     []string
	DateColumns []string
	// Rules validate each row before matching.
	Rules []Rule
	// IdentityKey extracts the string used to resolve a row's identity.
	IdentityKey func(row model.InputRow) string
	// DisplayName extracts the human-readable name used in messages.
	DisplayName func(row model.InputRow) string
	// Mode selects create/link vs update-only semantics.
	Mode Mode
	// Advisory, when set, surfaces configuration warnings per row.
	Advisory AdvisoryCheck
}

// batchState tracks the in-batch effects later rows must observe: candidates
// linked or created earlier in the same file. It is scoped to one engine run
// and never shared.
type batchState struct {
	linked      map[string]struct{}
	createdKeys map[string]string
}

func newBatchState() *batchState {
	return &batchState{
		linked:      make(map[string]struct{}),
		createdKeys: make(map[string]string),
	}
}

// Engine orchestrates parse → validate → match → classify → apply for one
// batch. Rows are processed strictly in file order: row N's duplicate check
// depends on whether an earlier row already created or linked the entity it
// would also match, so the apply phase must stay sequential.
type Engine struct {
	spec       ImportSpec
	applier    Applier
	candidates []model.Candidate
	state      *batchState
}

// NewEngine builds an engine for one batch. The candidate list is read once
// here and not refreshed mid-batch.
func NewEngine(spec ImportSpec, applier Applier, candidates []model.Candidate) *Engine {
	return &Engine{
		spec:       spec,
		applier:    applier,
		candidates: candidates,
		state:      newBatchState(),
	}
}

// Run processes every row and returns the batch report. No row's failure
// aborts the batch; the only fatal error class (ParseError) is raised before
// an engine ever runs. Cancellation is checked between rows — already
// applied rows stay committed, there is no rollback.
func (e *Engine) Run(ctx context.Context, rows []model.InputRow, targetID string) model.BatchReport {
	ctx, span := otel.Tracer("inlet.reconciliation").Start(ctx, "RunBatch")
	defer span.End()

	reporter := NewReporter()

	for _, row := range rows {
		select {
		case <-ctx.Done():
			logrus.Warnf("%s import cancelled at row %d; earlier rows remain applied", e.spec.Flow, row.RowNumber)
			return reporter.Snapshot()
		default:
		}

		e.processRow(ctx, row, targetID, reporter)
	}

	return reporter.Snapshot()
}

// processRow walks a single row through the state machine:
//
//	Invalid                          ⇒ error
//	Valid, no match                  ⇒ create
//	Valid, match, already linked     ⇒ skip duplicate
//	Valid, match, not linked         ⇒ link existing
//	Valid, high match (update mode)  ⇒ apply update
//	Valid, weaker match (update mode)⇒ manual review
func (e *Engine) processRow(ctx context.Context, row model.InputRow, targetID string, reporter *Reporter) {
	outcome := Validate(row, e.spec.Rules)
	if !outcome.Valid {
		reporter.RecordError(row.RowNumber, outcome.Reason)
		return
	}

	if e.spec.Advisory != nil {
		if msg, flagged := e.spec.Advisory(row, e.candidates); flagged {
			reporter.RecordWarning(row.RowNumber, msg)
		}
	}

	switch e.spec.Mode {
	case ModeUpdateOnly:
		e.applyUpdate(ctx, row, reporter)
	default:
		e.createOrLink(ctx, row, targetID, reporter)
	}
}

// applyUpdate handles update-only flows. The fuzzy match is decisive here,
// which is exactly why only the high tier is trusted: anything weaker is a
// deferred decision, not a failure, and must not touch the store.
func (e *Engine) applyUpdate(ctx context.Context, row model.InputRow, reporter *Reporter) {
	key := e.spec.IdentityKey(row)
	result := Match(key, e.candidates)

	if result.Tier != model.TierHigh || result.Candidate == nil {
		reporter.RecordReview(row.RowNumber, fmt.Sprintf("no confident match for %q (confidence: %s)", key, result.Tier))
		return
	}

	if err := e.applier.Update(ctx, result.Candidate.ID, row); err != nil {
		reporter.RecordError(row.RowNumber, fmt.Sprintf("updating %s: %v", result.Candidate.DisplayName, err))
		return
	}
	reporter.RecordUpdated()
}

// createOrLink handles create/link flows. Identity is resolved by the exact
// alias path only; fuzzy similarity never decides identity in these flows.
func (e *Engine) createOrLink(ctx context.Context, row model.InputRow, targetID string, reporter *Reporter) {
	key := e.spec.IdentityKey(row)
	name := e.spec.DisplayName(row)
	result := MatchExact(key, e.candidates)

	if result.Candidate == nil {
		e.createNew(ctx, row, targetID, key, name, reporter)
		return
	}

	candidateID := result.Candidate.ID
	if _, seen := e.state.linked[candidateID]; seen {
		reporter.RecordDuplicate(fmt.Sprintf("row %d: %s already processed earlier in this file", row.RowNumber, name))
		return
	}

	alreadyLinked, err := e.applier.IsLinked(ctx, candidateID, targetID)
	if err != nil {
		reporter.RecordError(row.RowNumber, fmt.Sprintf("checking %s: %v", name, err))
		return
	}
	if alreadyLinked {
		reporter.RecordDuplicate(fmt.Sprintf("row %d: %s is already on this %s", row.RowNumber, name, e.spec.Noun))
		return
	}

	if err := e.applier.Link(ctx, candidateID, targetID); err != nil {
		reporter.RecordError(row.RowNumber, fmt.Sprintf("linking %s: %v", name, err))
		return
	}
	e.state.linked[candidateID] = struct{}{}
	reporter.RecordLinked()
}

// createNew creates an entity for an unmatched row, guarding against two
// rows in the same file creating the same logical entity.
func (e *Engine) createNew(ctx context.Context, row model.InputRow, targetID, key, name string, reporter *Reporter) {
	normalized := strings.ToLower(strings.TrimSpace(key))
	if _, seen := e.state.createdKeys[normalized]; seen {
		reporter.RecordDuplicate(fmt.Sprintf("row %d: %s already created earlier in this file", row.RowNumber, name))
		return
	}

	id, err := e.applier.Create(ctx, targetID, row)
	if err != nil {
		reporter.RecordError(row.RowNumber, fmt.Sprintf("creating %s: %v", name, err))
		return
	}

	e.state.createdKeys[normalized] = id
	e.state.linked[id] = struct{}{}
	reporter.RecordCreated()
}
