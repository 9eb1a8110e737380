package contract

import (
	"context"
	"encoding/json"
	"time"

	"ai-interview-be/internal/entity"

	"github.com/google/uuid"
)

type SectionAnswerRepository interface {
	// Upsert writes the answer for its (practice, question, section) key.
	// An existing record for the key is fully replaced, never appended to.
	Upsert(ctx context.Context, answer *entity.SectionAnswer) error

	ListByQuestion(ctx context.Context, practiceID uuid.UUID, questionIndex int) ([]*entity.SectionAnswer, error)
	ListByPractice(ctx context.Context, practiceID uuid.UUID) ([]*entity.SectionAnswer, error)
	LatestForQuestion(ctx context.Context, practiceID uuid.UUID, questionIndex int) (*entity.SectionAnswer, error)

	// ReplaceAnalysis attaches the aggregate analysis JSON to the given answer
	// and clears it from every other answer of the same question, so exactly
	// one analysis document exists per question at a time.
	ReplaceAnalysis(ctx context.Context, practiceID uuid.UUID, questionIndex int, answerID uuid.UUID, analysis json.RawMessage, analyzedAt time.Time) error
}
