package mapper

import (
	"testing"
	"time"

	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestPracticeMapper_RoundTrip(t *testing.T) {
	m := NewPracticeMapper()

	src := &entity.Practice{
		Id:     uuid.New(),
		UserId: uuid.New(),
		Track:  "behavioral",
		Status: entity.PracticeStatusActive,
		Questions: []entity.PracticeQuestion{
			{Index: 0, Text: "Tell me about a deadline.", StructureHint: "Use STAR", Framework: "STAR"},
			{Index: 1, Text: "Describe a disagreement.", StructureHint: "Use STAR", Framework: "STAR"},
		},
		CreatedAt: time.Now(),
	}

	got, err := m.ToEntity(m.ToModel(src))
	require.NoError(t, err)
	assert.Equal(t, src.Id, got.Id)
	assert.Equal(t, src.Questions, got.Questions)
}

func TestPracticeMapper_CorruptQuestionsIsAnError(t *testing.T) {
	m := NewPracticeMapper()

	corrupt := &model.Practice{
		Id:        uuid.New(),
		UserId:    uuid.New(),
		Track:     "behavioral",
		Status:    entity.PracticeStatusActive,
		Questions: datatypes.JSON("{not valid json"),
	}

	got, err := m.ToEntity(corrupt)
	require.Error(t, err, "a corrupt blob must not read back as a zero-question practice")
	assert.Nil(t, got)
	assert.Contains(t, err.Error(), "questions column")
}

func TestPracticeMapper_NilIsNil(t *testing.T) {
	m := NewPracticeMapper()

	got, err := m.ToEntity(nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
