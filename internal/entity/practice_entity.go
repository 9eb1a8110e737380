package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	PracticeStatusActive    = "active"
	PracticeStatusCompleted = "completed"
)

// Practice is one structured-practice run: a set of questions, each with a
// framework assigned once at creation time.
type Practice struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Track     string
	Status    string
	Questions []PracticeQuestion
	CreatedAt time.Time
	UpdatedAt *time.Time
}

// PracticeQuestion is stable and zero-based within its practice; immutable
// after creation.
type PracticeQuestion struct {
	Index         int    `json:"index"`
	Text          string `json:"text"`
	Topic         string `json:"topic,omitempty"`
	StructureHint string `json:"structure_hint"`
	Framework     string `json:"framework"`
}

// QuestionAt returns the question with the given index, or nil when the
// index is outside the practice's question list.
func (p *Practice) QuestionAt(index int) *PracticeQuestion {
	if index < 0 || index >= len(p.Questions) {
		return nil
	}
	return &p.Questions[index]
}
