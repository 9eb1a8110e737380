package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"ai-interview-be/internal/apperror"
	"ai-interview-be/internal/dto"
	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/pkg/logger"
	"ai-interview-be/internal/repository/unitofwork"
	"ai-interview-be/pkg/analysis"
	"ai-interview-be/pkg/events"
	"ai-interview-be/pkg/framework"
	pktNats "ai-interview-be/pkg/nats"

	"github.com/google/uuid"
)

type IAnalysisService interface {
	AnalyzeQuestion(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, req *dto.AnalyzeQuestionRequest) (*dto.AnalyzeQuestionResponse, error)
	GetAnalysis(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, questionIndex int) (*dto.AnalyzeQuestionResponse, error)
	SupportedKinds() []string
}

type analysisService struct {
	uowFactory       unitofwork.RepositoryFactory
	registry         *framework.Registry
	aggregator       *analysis.Aggregator
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	logger           logger.ILogger
}

func NewAnalysisService(
	uowFactory unitofwork.RepositoryFactory,
	registry *framework.Registry,
	aggregator *analysis.Aggregator,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	logger logger.ILogger,
) IAnalysisService {
	return &analysisService{
		uowFactory:       uowFactory,
		registry:         registry,
		aggregator:       aggregator,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
	}
}

func (s *analysisService) SupportedKinds() []string {
	return s.aggregator.SupportedKinds()
}

// AnalyzeQuestion runs all requested kinds over the question's current
// answer and persists the aggregate. A previous aggregate for the question
// is replaced, never merged.
func (s *analysisService) AnalyzeQuestion(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, req *dto.AnalyzeQuestionRequest) (*dto.AnalyzeQuestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	practice, question, err := s.resolveQuestion(ctx, uow, userId, practiceId, req.QuestionIndex)
	if err != nil {
		return nil, err
	}

	answers, err := uow.SectionAnswerRepository().ListByQuestion(ctx, practice.Id, question.Index)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}
	if len(answers) == 0 {
		return nil, apperror.NewEmptyAnswer(practice.Id.String(), question.Index)
	}

	input := s.buildInput(question, answers, req)

	agg, err := s.aggregator.Aggregate(ctx, input, req.Kinds)
	if err != nil {
		switch {
		case errors.Is(err, analysis.ErrEmptyAnswer):
			return nil, apperror.NewEmptyAnswer(practice.Id.String(), question.Index)
		case errors.Is(err, analysis.ErrNoKindsRequested):
			return nil, apperror.NewNoKindsRequested(s.aggregator.SupportedKinds())
		default:
			return nil, err
		}
	}

	if err := s.persistAggregate(ctx, uow, practice, question, answers, agg); err != nil {
		return nil, err
	}

	fullyAnalyzed, err := s.isFullyAnalyzed(ctx, uow, practice)
	if err != nil {
		// The analysis itself succeeded; log and report not-fully-analyzed.
		s.logger.Warn("analysis_service", "failed to check practice analysis coverage", map[string]interface{}{
			"practice_id": practice.Id,
			"error":       err.Error(),
		})
		fullyAnalyzed = false
	}
	s.notify(ctx, practice, question, userId, agg, fullyAnalyzed)

	return s.toResponse(practice.Id, question.Index, agg), nil
}

// GetAnalysis returns the stored aggregate for the question, if any.
func (s *analysisService) GetAnalysis(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, questionIndex int) (*dto.AnalyzeQuestionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	practice, question, err := s.resolveQuestion(ctx, uow, userId, practiceId, questionIndex)
	if err != nil {
		return nil, err
	}

	answers, err := uow.SectionAnswerRepository().ListByQuestion(ctx, practice.Id, question.Index)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}
	for _, a := range answers {
		if len(a.Analysis) == 0 {
			continue
		}
		var agg analysis.Aggregate
		if err := json.Unmarshal(a.Analysis, &agg); err != nil {
			return nil, apperror.NewStorage(fmt.Errorf("stored analysis is unreadable: %w", err))
		}
		return s.toResponse(practice.Id, question.Index, &agg), nil
	}
	return nil, apperror.NewNotFound("analysis", fmt.Sprintf("%s/%d", practiceId, questionIndex))
}

func (s *analysisService) resolveQuestion(ctx context.Context, uow unitofwork.UnitOfWork, userId, practiceId uuid.UUID, questionIndex int) (*entity.Practice, *entity.PracticeQuestion, error) {
	practice, err := uow.PracticeRepository().FindByIDAndUser(ctx, practiceId, userId)
	if err != nil {
		return nil, nil, apperror.NewStorage(err)
	}
	if practice == nil {
		return nil, nil, apperror.NewNotFound("practice", practiceId.String())
	}
	question := practice.QuestionAt(questionIndex)
	if question == nil {
		return nil, nil, apperror.NewQuestionIndexOutOfRange(questionIndex, len(practice.Questions))
	}
	return practice, question, nil
}

// buildInput joins submitted sections in framework order, each marked with
// [Section Name], mirroring the combined-answer format the content-quality
// prompt expects.
func (s *analysisService) buildInput(question *entity.PracticeQuestion, answers []*entity.SectionAnswer, req *dto.AnalyzeQuestionRequest) *analysis.Input {
	fw := s.registry.ByName(question.Framework)

	byName := make(map[string]*entity.SectionAnswer, len(answers))
	for _, a := range answers {
		byName[a.SectionName] = a
	}

	input := &analysis.Input{
		QuestionText:    question.Text,
		StructureHint:   question.StructureHint,
		FrameworkName:   fw.Name,
		DurationSeconds: req.DurationSeconds,
	}
	var parts []string
	for _, name := range fw.Sections {
		section := analysis.SectionInput{Name: name}
		if a, ok := byName[name]; ok {
			section.Submitted = true
			section.AnswerText = a.AnswerText
			section.TimeSpentSeconds = a.TimeSpentSeconds
			parts = append(parts, fmt.Sprintf("[%s] %s", name, a.AnswerText))
		}
		input.Sections = append(input.Sections, section)
	}
	input.AnswerText = strings.Join(parts, "\n\n")

	for _, w := range req.Words {
		input.Words = append(input.Words, analysis.WordTiming{Word: w.Word, Start: w.Start, End: w.End})
	}
	return input
}

// persistAggregate attaches the aggregate JSON to the most recently
// submitted answer of the question and clears any older copy.
func (s *analysisService) persistAggregate(ctx context.Context, uow unitofwork.UnitOfWork, practice *entity.Practice, question *entity.PracticeQuestion, answers []*entity.SectionAnswer, agg *analysis.Aggregate) error {
	encoded, err := json.Marshal(agg)
	if err != nil {
		return apperror.NewStorage(fmt.Errorf("encode aggregate: %w", err))
	}

	latest := answers[0]
	for _, a := range answers[1:] {
		if a.SubmittedAt.After(latest.SubmittedAt) {
			latest = a
		}
	}

	if err := uow.SectionAnswerRepository().ReplaceAnalysis(ctx, practice.Id, question.Index, latest.Id, encoded, time.Now()); err != nil {
		return apperror.NewStorage(err)
	}
	return nil
}

// isFullyAnalyzed reports whether every question of the practice carries a
// stored aggregate.
func (s *analysisService) isFullyAnalyzed(ctx context.Context, uow unitofwork.UnitOfWork, practice *entity.Practice) (bool, error) {
	all, err := uow.SectionAnswerRepository().ListByPractice(ctx, practice.Id)
	if err != nil {
		return false, err
	}

	analyzed := make(map[int]bool)
	for _, a := range all {
		if len(a.Analysis) > 0 {
			analyzed[a.QuestionIndex] = true
		}
	}
	for _, q := range practice.Questions {
		if !analyzed[q.Index] {
			return false, nil
		}
	}
	return len(practice.Questions) > 0, nil
}

// notify publishes best-effort: internal pubsub for the status consumer and
// NATS for external subscribers. Neither failure fails the analysis.
func (s *analysisService) notify(ctx context.Context, practice *entity.Practice, question *entity.PracticeQuestion, userId uuid.UUID, agg *analysis.Aggregate, fullyAnalyzed bool) {
	msg := dto.AnalysisCompletedMessage{
		PracticeId:     practice.Id,
		UserId:         userId,
		QuestionIndex:  question.Index,
		CompositeScore: agg.CompositeScore,
		FullyAnalyzed:  fullyAnalyzed,
	}
	if payload, err := json.Marshal(msg); err == nil {
		if err := s.publisherService.Publish(ctx, payload); err != nil {
			s.logger.Warn("analysis_service", "failed to publish analysis completed message", map[string]interface{}{
				"practice_id": practice.Id,
				"error":       err.Error(),
			})
		}
	}

	if s.eventPublisher != nil {
		evt := events.NewAnalysisCompleted(practice.Id.String(), userId.String(), question.Index, agg.SucceededKinds, agg.FailedKinds, agg.CompositeScore, fullyAnalyzed)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("analysis_service", "failed to publish analysis completed event", map[string]interface{}{
				"practice_id": practice.Id,
				"error":       err.Error(),
			})
		}
	}
}

func (s *analysisService) toResponse(practiceId uuid.UUID, questionIndex int, agg *analysis.Aggregate) *dto.AnalyzeQuestionResponse {
	resp := &dto.AnalyzeQuestionResponse{
		PracticeId:     practiceId,
		QuestionIndex:  questionIndex,
		RequestedKinds: agg.RequestedKinds,
		SucceededKinds: agg.SucceededKinds,
		FailedKinds:    agg.FailedKinds,
		CompositeScore: agg.CompositeScore,
		ComputedAt:     agg.ComputedAt,
	}
	for _, r := range agg.Results {
		resp.Results = append(resp.Results, dto.AnalysisResultResponse{
			Kind:    r.Kind,
			Status:  r.Status,
			Payload: r.Payload,
			Error:   r.Error,
		})
	}
	for _, q := range agg.SectionQualities {
		resp.SectionQualities = append(resp.SectionQualities, dto.SectionQualityResponse{Name: q.Name, Quality: q.Quality})
	}
	return resp
}
