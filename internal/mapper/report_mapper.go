package mapper

import (
	"encoding/json"
	"time"

	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/model"

	"gorm.io/datatypes"
)

type ReportMapper struct{}

func NewReportMapper() *ReportMapper {
	return &ReportMapper{}
}

func (m *ReportMapper) ToEntity(r *model.Report) *entity.Report {
	if r == nil {
		return nil
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	return &entity.Report{
		Id:                  r.Id,
		PracticeId:          r.PracticeId,
		ScoreSummary:        json.RawMessage(r.ScoreSummary),
		OverallFeedback:     r.OverallFeedback,
		PerQuestionFeedback: json.RawMessage(r.PerQuestionFeedback),
		OverallScore:        r.OverallScore,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}

func (m *ReportMapper) ToModel(r *entity.Report) *model.Report {
	if r == nil {
		return nil
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.Report{
		Id:                  r.Id,
		PracticeId:          r.PracticeId,
		ScoreSummary:        datatypes.JSON(r.ScoreSummary),
		OverallFeedback:     r.OverallFeedback,
		PerQuestionFeedback: datatypes.JSON(r.PerQuestionFeedback),
		OverallScore:        r.OverallScore,
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           updatedAt,
	}
}
