package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Report has a unique practice_id so the synthesize upsert is atomic under
// concurrent finalize calls.
type Report struct {
	Id                  uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PracticeId          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	ScoreSummary        datatypes.JSON `gorm:"type:jsonb"`
	OverallFeedback     string         `gorm:"type:text"`
	PerQuestionFeedback datatypes.JSON `gorm:"type:jsonb"`
	OverallScore        float64        `gorm:"not null;default:0"`
	CreatedAt           time.Time      `gorm:"autoCreateTime"`
	UpdatedAt           time.Time      `gorm:"autoUpdateTime"`
}

func (Report) TableName() string {
	return "reports"
}
