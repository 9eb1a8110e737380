package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreatePracticeRequest struct {
	Track         string `json:"track" validate:"required"`
	Difficulty    string `json:"difficulty"`
	QuestionCount int    `json:"question_count" validate:"gte=0,lte=20"`
}

type PracticeQuestionResponse struct {
	Index         int      `json:"index"`
	Text          string   `json:"text"`
	Topic         string   `json:"topic,omitempty"`
	StructureHint string   `json:"structure_hint"`
	Framework     string   `json:"framework"`
	Sections      []string `json:"sections"`
}

type CreatePracticeResponse struct {
	Id        uuid.UUID                  `json:"id"`
	Track     string                     `json:"track"`
	Status    string                     `json:"status"`
	Questions []PracticeQuestionResponse `json:"questions"`
	CreatedAt time.Time                  `json:"created_at"`
}

type PracticeListItemResponse struct {
	Id            uuid.UUID `json:"id"`
	Track         string    `json:"track"`
	Status        string    `json:"status"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}

type ShowPracticeResponse struct {
	Id        uuid.UUID                  `json:"id"`
	Track     string                     `json:"track"`
	Status    string                     `json:"status"`
	Questions []PracticeQuestionResponse `json:"questions"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt *time.Time                 `json:"updated_at"`
}

type SubmitSectionRequest struct {
	QuestionIndex    int    `json:"question_index" validate:"gte=0"`
	SectionName      string `json:"section_name" validate:"required"`
	AnswerText       string `json:"answer_text" validate:"required"`
	TimeSpentSeconds int    `json:"time_spent_seconds" validate:"gte=0"`
}

type SectionStateResponse struct {
	Name             string     `json:"name"`
	Hint             string     `json:"hint"`
	Submitted        bool       `json:"submitted"`
	AnswerText       string     `json:"answer_text,omitempty"`
	TimeSpentSeconds int        `json:"time_spent_seconds"`
	SubmittedAt      *time.Time `json:"submitted_at,omitempty"`
}

type TranscriptionResponse struct {
	Text            string              `json:"text"`
	Language        string              `json:"language"`
	DurationSeconds float64             `json:"duration_seconds"`
	WordCount       int                 `json:"word_count"`
	ModelIdentifier string              `json:"model_identifier"`
	LatencyMs       int64               `json:"latency_ms"`
	Words           []WordTimingRequest `json:"words"`
}

// SubmitSectionAudioResponse returns the snapshot plus the transcription so
// the client can hand word timings back when requesting pace/pause analysis.
type SubmitSectionAudioResponse struct {
	Snapshot      *SectionSnapshotResponse `json:"snapshot"`
	Transcription *TranscriptionResponse   `json:"transcription"`
}

// SectionSnapshotResponse is the progress snapshot for one question,
// recomputed from storage on every read.
type SectionSnapshotResponse struct {
	PracticeId     uuid.UUID              `json:"practice_id"`
	QuestionIndex  int                    `json:"question_index"`
	Framework      string                 `json:"framework"`
	Sections       []SectionStateResponse `json:"sections"`
	SubmittedCount int                    `json:"submitted_count"`
	TotalSections  int                    `json:"total_sections"`
	NextSection    string                 `json:"next_section,omitempty"`
	NextHint       string                 `json:"next_hint,omitempty"`
	IsComplete     bool                   `json:"is_complete"`
}
