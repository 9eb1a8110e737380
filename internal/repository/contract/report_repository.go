package contract

import (
	"context"

	"ai-interview-be/internal/entity"

	"github.com/google/uuid"
)

type ReportRepository interface {
	// Upsert inserts or replaces the report row keyed on its unique
	// practice_id, atomically under concurrent synthesize calls.
	Upsert(ctx context.Context, report *entity.Report) error
	FindByPracticeID(ctx context.Context, practiceID uuid.UUID) (*entity.Report, error)
}
