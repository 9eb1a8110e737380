package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SectionAnswer is the durable record of one answer per
// (practice, question, section) key. Resubmission overwrites the record.
// Analysis holds the latest aggregate analysis JSON for the question and is
// attached to the most recently submitted section answer.
type SectionAnswer struct {
	Id               uuid.UUID
	PracticeId       uuid.UUID
	QuestionIndex    int
	SectionName      string
	AnswerText       string
	TimeSpentSeconds int
	Analysis         json.RawMessage
	SubmittedAt      time.Time
	AnalyzedAt       *time.Time
}
