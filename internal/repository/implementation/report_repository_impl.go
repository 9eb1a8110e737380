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
	"gorm.io/gorm/clause"
)

type ReportRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReportMapper
}

func NewReportRepository(db *gorm.DB) contract.ReportRepository {
	return &ReportRepositoryImpl{
		db:     db,
		mapper: mapper.NewReportMapper(),
	}
}

// Upsert is keyed on the unique practice_id index, so two concurrent
// synthesize calls settle on one row with the later call's values.
func (r *ReportRepositoryImpl) Upsert(ctx context.Context, report *entity.Report) error {
	m := r.mapper.ToModel(report)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "practice_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"score_summary", "overall_feedback", "per_question_feedback", "overall_score", "updated_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*report = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReportRepositoryImpl) FindByPracticeID(ctx context.Context, practiceID uuid.UUID) (*entity.Report, error) {
	var m model.Report
	query := specification.ByPractice{PracticeID: practiceID}.Apply(r.db.WithContext(ctx))
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}
