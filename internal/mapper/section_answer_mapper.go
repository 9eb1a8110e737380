package mapper

import (
	"encoding/json"

	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/model"

	"gorm.io/datatypes"
)

type SectionAnswerMapper struct{}

func NewSectionAnswerMapper() *SectionAnswerMapper {
	return &SectionAnswerMapper{}
}

func (m *SectionAnswerMapper) ToEntity(a *model.SectionAnswer) *entity.SectionAnswer {
	if a == nil {
		return nil
	}

	var analysis json.RawMessage
	if len(a.Analysis) > 0 {
		analysis = json.RawMessage(a.Analysis)
	}

	return &entity.SectionAnswer{
		Id:               a.Id,
		PracticeId:       a.PracticeId,
		QuestionIndex:    a.QuestionIndex,
		SectionName:      a.SectionName,
		AnswerText:       a.AnswerText,
		TimeSpentSeconds: a.TimeSpentSeconds,
		Analysis:         analysis,
		SubmittedAt:      a.SubmittedAt,
		AnalyzedAt:       a.AnalyzedAt,
	}
}

func (m *SectionAnswerMapper) ToModel(a *entity.SectionAnswer) *model.SectionAnswer {
	if a == nil {
		return nil
	}

	var analysis datatypes.JSON
	if len(a.Analysis) > 0 {
		analysis = datatypes.JSON(a.Analysis)
	}

	return &model.SectionAnswer{
		Id:               a.Id,
		PracticeId:       a.PracticeId,
		QuestionIndex:    a.QuestionIndex,
		SectionName:      a.SectionName,
		AnswerText:       a.AnswerText,
		TimeSpentSeconds: a.TimeSpentSeconds,
		Analysis:         analysis,
		SubmittedAt:      a.SubmittedAt,
		AnalyzedAt:       a.AnalyzedAt,
	}
}

func (m *SectionAnswerMapper) ToEntities(answers []*model.SectionAnswer) []*entity.SectionAnswer {
	entities := make([]*entity.SectionAnswer, len(answers))
	for i, a := range answers {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
