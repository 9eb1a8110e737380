package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type ReportResponse struct {
	Id                  uuid.UUID       `json:"id"`
	PracticeId          uuid.UUID       `json:"practice_id"`
	OverallScore        float64         `json:"overall_score"`
	OverallFeedback     string          `json:"overall_feedback"`
	ScoreSummary        json.RawMessage `json:"score_summary"`
	PerQuestionFeedback json.RawMessage `json:"per_question_feedback"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           *time.Time      `json:"updated_at"`
}
