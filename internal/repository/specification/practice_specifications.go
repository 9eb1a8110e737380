package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByPractice filters section answers (or reports) by their parent practice.
type ByPractice struct {
	PracticeID uuid.UUID
}

func (s ByPractice) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("practice_id = ?", s.PracticeID)
}

// ByQuestionIndex filters section answers by question index.
type ByQuestionIndex struct {
	Index int
}

func (s ByQuestionIndex) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("question_index = ?", s.Index)
}

// ByStatus filters practices by lifecycle status.
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}
