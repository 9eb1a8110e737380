package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SectionAnswer carries a composite unique index so concurrent resubmissions
// of the same section resolve to last-write-wins at the storage layer.
type SectionAnswer struct {
	Id               uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PracticeId       uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_section_answer_key"`
	QuestionIndex    int            `gorm:"not null;uniqueIndex:idx_section_answer_key"`
	SectionName      string         `gorm:"type:varchar(64);not null;uniqueIndex:idx_section_answer_key"`
	AnswerText       string         `gorm:"type:text;not null"`
	TimeSpentSeconds int            `gorm:"not null;default:0"`
	Analysis         datatypes.JSON `gorm:"type:jsonb"`
	SubmittedAt      time.Time      `gorm:"not null"`
	AnalyzedAt       *time.Time
}

func (SectionAnswer) TableName() string {
	return "section_answers"
}
