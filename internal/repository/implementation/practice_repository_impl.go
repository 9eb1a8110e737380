package implementation

import (
	"context"
	"errors"

	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/mapper"
	"ai-interview-be/internal/model"
	"ai-interview-be/internal/repository/contract"
	"ai-interview-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PracticeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PracticeMapper
}

func NewPracticeRepository(db *gorm.DB) contract.PracticeRepository {
	return &PracticeRepositoryImpl{
		db:     db,
		mapper: mapper.NewPracticeMapper(),
	}
}

func (r *PracticeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PracticeRepositoryImpl) Create(ctx context.Context, practice *entity.Practice) error {
	m := r.mapper.ToModel(practice)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	created, err := r.mapper.ToEntity(m)
	if err != nil {
		return err
	}
	*practice = *created
	return nil
}

func (r *PracticeRepositoryImpl) findOne(ctx context.Context, specs ...specification.Specification) (*entity.Practice, error) {
	var m model.Practice
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m)
}

func (r *PracticeRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*entity.Practice, error) {
	return r.findOne(ctx, specification.ByID{ID: id})
}

func (r *PracticeRepositoryImpl) FindByIDAndUser(ctx context.Context, id, userID uuid.UUID) (*entity.Practice, error) {
	return r.findOne(ctx, specification.ByID{ID: id}, specification.OwnedBy{UserID: userID})
}

func (r *PracticeRepositoryImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entity.Practice, error) {
	var models []*model.Practice
	query := r.applySpecifications(
		r.db.WithContext(ctx),
		specification.OwnedBy{UserID: userID},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: limit},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models)
}

func (r *PracticeRepositoryImpl) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return r.db.WithContext(ctx).
		Model(&model.Practice{}).
		Where("id = ?", id).
		Update("status", status).Error
}
