package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/repository/contract"
	"ai-interview-be/internal/repository/unitofwork"
	"ai-interview-be/pkg/transcriber"

	"github.com/google/uuid"
)

// In-memory doubles for the persistence boundary. They implement the same
// contracts the GORM repositories do, keyed the same way, so the services
// under test see identical semantics without a database.

type noopLogger struct{}

func (noopLogger) Debug(string, string, map[string]interface{}) {}
func (noopLogger) Info(string, string, map[string]interface{})  {}
func (noopLogger) Warn(string, string, map[string]interface{})  {}
func (noopLogger) Error(string, string, map[string]interface{}) {}
func (noopLogger) Sync() error                                  { return nil }

type memoryStore struct {
	mu        sync.Mutex
	practices map[uuid.UUID]*entity.Practice
	answers   map[uuid.UUID]map[string]*entity.SectionAnswer // practice -> "index|section"
	reports   map[uuid.UUID]*entity.Report                   // keyed by practice id
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		practices: make(map[uuid.UUID]*entity.Practice),
		answers:   make(map[uuid.UUID]map[string]*entity.SectionAnswer),
		reports:   make(map[uuid.UUID]*entity.Report),
	}
}

func answerKey(questionIndex int, sectionName string) string {
	return fmt.Sprintf("%d|%s", questionIndex, sectionName)
}

type memoryPracticeRepo struct{ store *memoryStore }

func (r *memoryPracticeRepo) Create(_ context.Context, practice *entity.Practice) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *practice
	r.store.practices[practice.Id] = &copied
	return nil
}

func (r *memoryPracticeRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Practice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.practices[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memoryPracticeRepo) FindByIDAndUser(_ context.Context, id, userID uuid.UUID) (*entity.Practice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.practices[id]
	if !ok || p.UserId != userID {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (r *memoryPracticeRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]*entity.Practice, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.Practice
	for _, p := range r.store.practices {
		if p.UserId == userID && len(out) < limit {
			copied := *p
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memoryPracticeRepo) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if p, ok := r.store.practices[id]; ok {
		p.Status = status
	}
	return nil
}

type memorySectionAnswerRepo struct{ store *memoryStore }

func (r *memorySectionAnswerRepo) Upsert(_ context.Context, answer *entity.SectionAnswer) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	byKey, ok := r.store.answers[answer.PracticeId]
	if !ok {
		byKey = make(map[string]*entity.SectionAnswer)
		r.store.answers[answer.PracticeId] = byKey
	}
	key := answerKey(answer.QuestionIndex, answer.SectionName)
	copied := *answer
	if existing, ok := byKey[key]; ok {
		// The row identity survives resubmission, like ON CONFLICT DO UPDATE.
		copied.Id = existing.Id
		answer.Id = existing.Id
	}
	byKey[key] = &copied
	return nil
}

func (r *memorySectionAnswerRepo) ListByQuestion(_ context.Context, practiceID uuid.UUID, questionIndex int) ([]*entity.SectionAnswer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.SectionAnswer
	for _, a := range r.store.answers[practiceID] {
		if a.QuestionIndex == questionIndex {
			copied := *a
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memorySectionAnswerRepo) ListByPractice(_ context.Context, practiceID uuid.UUID) ([]*entity.SectionAnswer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*entity.SectionAnswer
	for _, a := range r.store.answers[practiceID] {
		copied := *a
		out = append(out, &copied)
	}
	return out, nil
}

func (r *memorySectionAnswerRepo) LatestForQuestion(_ context.Context, practiceID uuid.UUID, questionIndex int) (*entity.SectionAnswer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var latest *entity.SectionAnswer
	for _, a := range r.store.answers[practiceID] {
		if a.QuestionIndex != questionIndex {
			continue
		}
		if latest == nil || a.SubmittedAt.After(latest.SubmittedAt) {
			copied := *a
			latest = &copied
		}
	}
	return latest, nil
}

func (r *memorySectionAnswerRepo) ReplaceAnalysis(_ context.Context, practiceID uuid.UUID, questionIndex int, answerID uuid.UUID, analysis json.RawMessage, analyzedAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, a := range r.store.answers[practiceID] {
		if a.QuestionIndex != questionIndex {
			continue
		}
		if a.Id == answerID {
			a.Analysis = analysis
			at := analyzedAt
			a.AnalyzedAt = &at
		} else {
			a.Analysis = nil
			a.AnalyzedAt = nil
		}
	}
	return nil
}

type memoryReportRepo struct{ store *memoryStore }

func (r *memoryReportRepo) Upsert(_ context.Context, report *entity.Report) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if existing, ok := r.store.reports[report.PracticeId]; ok {
		// Conflict on practice_id keeps the original row id and created_at.
		now := time.Now()
		existing.ScoreSummary = report.ScoreSummary
		existing.OverallFeedback = report.OverallFeedback
		existing.PerQuestionFeedback = report.PerQuestionFeedback
		existing.OverallScore = report.OverallScore
		existing.UpdatedAt = &now
		return nil
	}
	copied := *report
	r.store.reports[report.PracticeId] = &copied
	return nil
}

func (r *memoryReportRepo) FindByPracticeID(_ context.Context, practiceID uuid.UUID) (*entity.Report, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	rep, ok := r.store.reports[practiceID]
	if !ok {
		return nil, nil
	}
	copied := *rep
	return &copied, nil
}

type memoryUnitOfWork struct{ store *memoryStore }

func (u *memoryUnitOfWork) Begin(context.Context) error { return nil }
func (u *memoryUnitOfWork) Commit() error               { return nil }
func (u *memoryUnitOfWork) Rollback() error             { return nil }

func (u *memoryUnitOfWork) PracticeRepository() contract.PracticeRepository {
	return &memoryPracticeRepo{store: u.store}
}

func (u *memoryUnitOfWork) SectionAnswerRepository() contract.SectionAnswerRepository {
	return &memorySectionAnswerRepo{store: u.store}
}

func (u *memoryUnitOfWork) ReportRepository() contract.ReportRepository {
	return &memoryReportRepo{store: u.store}
}

type memoryFactory struct{ store *memoryStore }

func (f *memoryFactory) NewUnitOfWork(context.Context) unitofwork.UnitOfWork {
	return &memoryUnitOfWork{store: f.store}
}

type fakeTranscriber struct {
	result *transcriber.Transcription
	err    error
}

func (f *fakeTranscriber) Transcribe(context.Context, []byte, string, string) (*transcriber.Transcription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type capturingPublisher struct {
	mu       sync.Mutex
	payloads [][]byte
}

func (p *capturingPublisher) Publish(_ context.Context, payload []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *capturingPublisher) published() [][]byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([][]byte(nil), p.payloads...)
}
