package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type WordTimingRequest struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type AnalyzeQuestionRequest struct {
	QuestionIndex int      `json:"question_index" validate:"gte=0"`
	Kinds         []string `json:"kinds" validate:"required,min=1"`

	// Optional speech timings captured when the answer came in as audio;
	// the pace and pause dimensions need them.
	DurationSeconds float64             `json:"duration_seconds" validate:"gte=0"`
	Words           []WordTimingRequest `json:"words"`
}

// AnalysisCompletedMessage is the internal pubsub payload consumed by the
// consumer service after an aggregate analysis is persisted.
type AnalysisCompletedMessage struct {
	PracticeId     uuid.UUID `json:"practice_id"`
	UserId         uuid.UUID `json:"user_id"`
	QuestionIndex  int       `json:"question_index"`
	CompositeScore float64   `json:"composite_score"`
	FullyAnalyzed  bool      `json:"fully_analyzed"`
}

type AnalysisResultResponse struct {
	Kind    string          `json:"kind"`
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

type SectionQualityResponse struct {
	Name    string `json:"name"`
	Quality string `json:"quality"`
}

type AnalyzeQuestionResponse struct {
	PracticeId       uuid.UUID                `json:"practice_id"`
	QuestionIndex    int                      `json:"question_index"`
	Results          []AnalysisResultResponse `json:"results"`
	RequestedKinds   []string                 `json:"requested_kinds"`
	SucceededKinds   []string                 `json:"succeeded_kinds"`
	FailedKinds      []string                 `json:"failed_kinds"`
	SectionQualities []SectionQualityResponse `json:"section_qualities"`
	CompositeScore   float64                  `json:"composite_score"`
	ComputedAt       time.Time                `json:"computed_at"`
}
