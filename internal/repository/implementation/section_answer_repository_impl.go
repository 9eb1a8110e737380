package implementation

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/mapper"
	"ai-interview-be/internal/model"
	"ai-interview-be/internal/repository/contract"
	"ai-interview-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SectionAnswerRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SectionAnswerMapper
}

func NewSectionAnswerRepository(db *gorm.DB) contract.SectionAnswerRepository {
	return &SectionAnswerRepositoryImpl{
		db:     db,
		mapper: mapper.NewSectionAnswerMapper(),
	}
}

func (r *SectionAnswerRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

// Upsert relies on the composite unique index over
// (practice_id, question_index, section_name). The conflict target makes
// concurrent resubmissions a full-row replace: last write wins, no
// read-modify-write.
func (r *SectionAnswerRepositoryImpl) Upsert(ctx context.Context, answer *entity.SectionAnswer) error {
	m := r.mapper.ToModel(answer)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "practice_id"},
			{Name: "question_index"},
			{Name: "section_name"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"answer_text", "time_spent_seconds", "submitted_at",
		}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*answer = *r.mapper.ToEntity(m)
	return nil
}

func (r *SectionAnswerRepositoryImpl) ListByQuestion(ctx context.Context, practiceID uuid.UUID, questionIndex int) ([]*entity.SectionAnswer, error) {
	var models []*model.SectionAnswer
	query := r.applySpecifications(
		r.db.WithContext(ctx),
		specification.ByPractice{PracticeID: practiceID},
		specification.ByQuestionIndex{Index: questionIndex},
		specification.OrderBy{Field: "submitted_at"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SectionAnswerRepositoryImpl) ListByPractice(ctx context.Context, practiceID uuid.UUID) ([]*entity.SectionAnswer, error) {
	var models []*model.SectionAnswer
	query := r.applySpecifications(
		r.db.WithContext(ctx),
		specification.ByPractice{PracticeID: practiceID},
		specification.OrderBy{Field: "question_index"},
	)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SectionAnswerRepositoryImpl) LatestForQuestion(ctx context.Context, practiceID uuid.UUID, questionIndex int) (*entity.SectionAnswer, error) {
	var m model.SectionAnswer
	query := r.applySpecifications(
		r.db.WithContext(ctx),
		specification.ByPractice{PracticeID: practiceID},
		specification.ByQuestionIndex{Index: questionIndex},
		specification.OrderBy{Field: "submitted_at", Desc: true},
	)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SectionAnswerRepositoryImpl) ReplaceAnalysis(ctx context.Context, practiceID uuid.UUID, questionIndex int, answerID uuid.UUID, analysis json.RawMessage, analyzedAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Drop the previous document wherever it lives for this question.
		if err := tx.Model(&model.SectionAnswer{}).
			Where("practice_id = ? AND question_index = ? AND id <> ?", practiceID, questionIndex, answerID).
			Updates(map[string]interface{}{"analysis": nil, "analyzed_at": nil}).Error; err != nil {
			return err
		}
		return tx.Model(&model.SectionAnswer{}).
			Where("id = ?", answerID).
			Updates(map[string]interface{}{
				"analysis":    datatypes.JSON(analysis),
				"analyzed_at": analyzedAt,
			}).Error
	})
}
