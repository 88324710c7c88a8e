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

import "github.com/inlethq/inlet/model"

// Reporter accumulates per-row outcomes for one batch. It is owned by a
// single sequential engine run; concurrent batches must each create their
// own reporter.
type Reporter struct {
	report model.BatchReport
}

// NewReporter returns an empty accumulator.
func NewReporter() *Reporter {
	return &Reporter{}
}

func (r *Reporter) RecordCreated() {
	r.report.Created++
}

func (r *Reporter) RecordUpdated() {
	r.report.Updated++
}

func (r *Reporter) RecordLinked() {
	r.report.Linked++
}

// RecordDuplicate counts an intentionally skipped row. Duplicates are a
// failure-class outcome: they never count toward created/updated/linked.
func (r *Reporter) RecordDuplicate(message string) {
	r.report.SkippedDuplicates++
	r.report.Duplicates = append(r.report.Duplicates, message)
}

// RecordWarning is advisory; the row is still applied.
func (r *Reporter) RecordWarning(rowNumber int, message string) {
	r.report.Warnings = append(r.report.Warnings, model.RowMessage{Row: rowNumber, Message: message})
}

func (r *Reporter) RecordError(rowNumber int, message string) {
	r.report.Errors = append(r.report.Errors, model.RowMessage{Row: rowNumber, Message: message})
}

// RecordReview defers a row to a human. Review entries are not failures;
// they are decisions the pipeline refuses to make automatically.
func (r *Reporter) RecordReview(rowNumber int, message string) {
	r.report.Review = append(r.report.Review, model.RowMessage{Row: rowNumber, Message: message})
}

// Snapshot returns the accumulated report. The engine calls this once at
// batch end; the returned value is a copy and safe to hand to callers.
func (r *Reporter) Snapshot() model.BatchReport {
	return r.report
}
