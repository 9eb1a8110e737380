package contract

import (
	"context"

	"ai-interview-be/internal/entity"

	"github.com/google/uuid"
)

type PracticeRepository interface {
	Create(ctx context.Context, practice *entity.Practice) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Practice, error)
	FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*entity.Practice, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Practice, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}
