package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Report is the whole-practice synthesized scoring document. One row per
// practice, replaced atomically on re-synthesis.
type Report struct {
	Id                  uuid.UUID
	PracticeId          uuid.UUID
	ScoreSummary        json.RawMessage
	OverallFeedback     string
	PerQuestionFeedback json.RawMessage
	OverallScore        float64
	CreatedAt           time.Time
	UpdatedAt           *time.Time
}
