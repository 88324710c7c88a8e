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
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/wacul/ptr"

	"github.com/inlethq/inlet/cache"
	"github.com/inlethq/inlet/config"
	"github.com/inlethq/inlet/database"
	"github.com/inlethq/inlet/internal/notification"
	"github.com/inlethq/inlet/model"
)

// Status constants representing the states an import run can be in.
const (
	StatusStarted    = "started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Inlet is the import service. It owns the entity store and an optional
// candidate cache; each upload becomes one batch run through the
// reconciliation engine.
type Inlet struct {
	datasource database.IDataSource
	cache      cache.Cache
}

// NewInlet initializes the service with the provided datasource. The
// candidate cache is best-effort: when Redis is unavailable the service
// degrades to fetching candidates per batch.
func NewInlet(db database.IDataSource) (*Inlet, error) {
	if _, err := config.Fetch(); err != nil {
		return nil, err
	}

	c, err := cache.NewCache()
	if err != nil {
		logrus.Warnf("candidate cache disabled: %v", err)
		c = nil
	}

	return &Inlet{datasource: db, cache: c}, nil
}

// loadCandidates fetches a candidate list through the cache when one is
// configured. Candidates are read once at batch start and never refreshed
// mid-batch.
func (s *Inlet) loadCandidates(ctx context.Context, key string, fetch func(context.Context) ([]model.Candidate, error)) ([]model.Candidate, error) {
	conf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(conf.Import.CandidateCacheTTLSec) * time.Second

	if s.cache != nil && ttl > 0 {
		var cached []model.Candidate
		if err := s.cache.Get(ctx, key, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	candidates, err := fetch(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil && ttl > 0 {
		if err := s.cache.Set(ctx, key, candidates, ttl); err != nil {
			logrus.Warnf("caching candidates for %s: %v", key, err)
		}
	}
	return candidates, nil
}

// invalidateCandidates drops a flow's cached candidate list after a run that
// added entities to the store. The next batch re-reads candidates, so an
// immediate re-run of the same file resolves its rows against what the first
// run created instead of a stale snapshot. Updates only touch fields the
// matcher never compares on and leave the cache alone.
func (s *Inlet) invalidateCandidates(ctx context.Context, key string, run *model.ImportRun) {
	if s.cache == nil || run == nil || run.Report == nil {
		return
	}
	if run.Report.Created == 0 && run.Report.Linked == 0 {
		return
	}
	if err := s.cache.Delete(ctx, key); err != nil {
		logrus.Warnf("invalidating candidates for %s: %v", key, err)
	}
}

// runImport is the shared batch lifecycle: record the run, parse the file,
// run the engine, persist the final report. A ParseError fails the run
// before the engine starts; engine-level row failures never fail the run.
func (s *Inlet) runImport(ctx context.Context, spec ImportSpec, applier Applier, targetID string, file io.Reader, filename string, candidates []model.Candidate) (*model.ImportRun, error) {
	run := &model.ImportRun{
		ImportID:  model.GenerateUUIDWithSuffix("imp"),
		Flow:      spec.Flow,
		TargetID:  targetID,
		Status:    StatusStarted,
		StartedAt: time.Now(),
	}
	if err := s.datasource.RecordImportRun(ctx, run); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(file)
	if err == nil {
		var rows []model.InputRow
		rows, err = ParseFile(data, filename, ParseConfig{Columns: spec.Columns, DateColumns: spec.DateColumns})
		if err == nil {
			run.Status = StatusInProgress
			if progressErr := s.datasource.UpdateImportRun(ctx, run); progressErr != nil {
				logrus.Warnf("marking import run %s in progress: %v", run.ImportID, progressErr)
			}
			engine := NewEngine(spec, applier, candidates)
			report := engine.Run(ctx, rows, targetID)
			run.Report = &report
			run.Status = StatusCompleted
		}
	}

	if err != nil {
		run.Status = StatusFailed
		notification.NotifyError(err)
	}
	run.CompletedAt = ptr.Time(time.Now())

	if updateErr := s.datasource.UpdateImportRun(ctx, run); updateErr != nil {
		logrus.Errorf("updating import run %s: %v", run.ImportID, updateErr)
	}

	if err != nil {
		return run, err
	}
	logrus.Infof("import %s completed: %d created, %d updated, %d linked, %d duplicates, %d errors",
		run.ImportID, run.Report.Created, run.Report.Updated, run.Report.Linked,
		run.Report.SkippedDuplicates, len(run.Report.Errors))
	return run, nil
}

// GetImportRun returns a previously recorded import run.
func (s *Inlet) GetImportRun(ctx context.Context, importID string) (*model.ImportRun, error) {
	return s.datasource.GetImportRun(ctx, importID)
}
