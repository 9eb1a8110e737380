package mapper

import (
	"encoding/json"
	"fmt"
	"time"

	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/model"
)

type PracticeMapper struct{}

func NewPracticeMapper() *PracticeMapper {
	return &PracticeMapper{}
}

func (m *PracticeMapper) ToEntity(p *model.Practice) (*entity.Practice, error) {
	if p == nil {
		return nil, nil
	}

	// A corrupt questions blob must surface as a storage error, not as a
	// practice with zero questions.
	var questions []entity.PracticeQuestion
	if err := json.Unmarshal(p.Questions, &questions); err != nil {
		return nil, fmt.Errorf("practice %s has an unreadable questions column: %w", p.Id, err)
	}

	var updatedAt *time.Time
	if !p.UpdatedAt.IsZero() {
		t := p.UpdatedAt
		updatedAt = &t
	}

	return &entity.Practice{
		Id:        p.Id,
		UserId:    p.UserId,
		Track:     p.Track,
		Status:    p.Status,
		Questions: questions,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}

func (m *PracticeMapper) ToModel(p *entity.Practice) *model.Practice {
	if p == nil {
		return nil
	}

	questions, _ := json.Marshal(p.Questions)

	var updatedAt time.Time
	if p.UpdatedAt != nil {
		updatedAt = *p.UpdatedAt
	}

	return &model.Practice{
		Id:        p.Id,
		UserId:    p.UserId,
		Track:     p.Track,
		Status:    p.Status,
		Questions: questions,
		CreatedAt: p.CreatedAt,
		UpdatedAt: updatedAt,
	}
}

func (m *PracticeMapper) ToEntities(practices []*model.Practice) ([]*entity.Practice, error) {
	entities := make([]*entity.Practice, len(practices))
	for i, p := range practices {
		e, err := m.ToEntity(p)
		if err != nil {
			return nil, err
		}
		entities[i] = e
	}
	return entities, nil
}
