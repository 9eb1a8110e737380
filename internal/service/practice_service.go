package service

import (
	"context"
	"strings"
	"time"

	"ai-interview-be/internal/apperror"
	"ai-interview-be/internal/dto"
	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/pkg/logger"
	"ai-interview-be/internal/repository/unitofwork"
	"ai-interview-be/pkg/events"
	"ai-interview-be/pkg/framework"
	pktNats "ai-interview-be/pkg/nats"
	"ai-interview-be/pkg/questionbank"
	"ai-interview-be/pkg/transcriber"

	"github.com/google/uuid"
)

const defaultQuestionCount = 3

type IPracticeService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePracticeRequest) (*dto.CreatePracticeResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.PracticeListItemResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowPracticeResponse, error)
	SubmitSection(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, req *dto.SubmitSectionRequest) (*dto.SectionSnapshotResponse, error)
	SubmitSectionAudio(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, questionIndex int, sectionName string, timeSpentSeconds int, audio []byte, filename string) (*dto.SubmitSectionAudioResponse, error)
	GetSnapshot(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, questionIndex int) (*dto.SectionSnapshotResponse, error)
}

type practiceService struct {
	uowFactory     unitofwork.RepositoryFactory
	registry       *framework.Registry
	bank           *questionbank.Bank
	transcriber    transcriber.Transcriber
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewPracticeService(
	uowFactory unitofwork.RepositoryFactory,
	registry *framework.Registry,
	bank *questionbank.Bank,
	transcriber transcriber.Transcriber,
	eventPublisher *pktNats.Publisher,
	logger logger.ILogger,
) IPracticeService {
	return &practiceService{
		uowFactory:     uowFactory,
		registry:       registry,
		bank:           bank,
		transcriber:    transcriber,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

func (s *practiceService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreatePracticeRequest) (*dto.CreatePracticeResponse, error) {
	count := req.QuestionCount
	if count == 0 {
		count = defaultQuestionCount
	}
	selected := s.bank.Select(req.Track, req.Difficulty, count)

	practice := entity.Practice{
		Id:        uuid.New(),
		UserId:    userId,
		Track:     req.Track,
		Status:    entity.PracticeStatusActive,
		CreatedAt: time.Now(),
	}
	for i, q := range selected {
		// The framework is detected once from the structure hint and pinned
		// to the question for the practice's whole lifetime.
		fw := s.registry.Detect(q.StructureHint)
		practice.Questions = append(practice.Questions, entity.PracticeQuestion{
			Index:         i,
			Text:          q.Text,
			Topic:         q.Topic,
			StructureHint: q.StructureHint,
			Framework:     fw.Name,
		})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.PracticeRepository().Create(ctx, &practice); err != nil {
		return nil, apperror.NewStorage(err)
	}

	s.logger.Info("practice_service", "practice created", map[string]interface{}{
		"practice_id": practice.Id,
		"track":       practice.Track,
		"questions":   len(practice.Questions),
	})

	return &dto.CreatePracticeResponse{
		Id:        practice.Id,
		Track:     practice.Track,
		Status:    practice.Status,
		Questions: s.toQuestionResponses(practice.Questions),
		CreatedAt: practice.CreatedAt,
	}, nil
}

func (s *practiceService) List(ctx context.Context, userId uuid.UUID) ([]*dto.PracticeListItemResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	practices, err := uow.PracticeRepository().ListByUser(ctx, userId, 50)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}

	items := make([]*dto.PracticeListItemResponse, 0, len(practices))
	for _, p := range practices {
		items = append(items, &dto.PracticeListItemResponse{
			Id:            p.Id,
			Track:         p.Track,
			Status:        p.Status,
			QuestionCount: len(p.Questions),
			CreatedAt:     p.CreatedAt,
		})
	}
	return items, nil
}

func (s *practiceService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowPracticeResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	practice, err := uow.PracticeRepository().FindByIDAndUser(ctx, id, userId)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}
	if practice == nil {
		return nil, apperror.NewNotFound("practice", id.String())
	}

	return &dto.ShowPracticeResponse{
		Id:        practice.Id,
		Track:     practice.Track,
		Status:    practice.Status,
		Questions: s.toQuestionResponses(practice.Questions),
		CreatedAt: practice.CreatedAt,
		UpdatedAt: practice.UpdatedAt,
	}, nil
}

// SubmitSection validates before any write: the practice must exist, the
// index must be in range and the section must belong to the question's
// framework. The write is an upsert, so resubmission replaces.
func (s *practiceService) SubmitSection(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, req *dto.SubmitSectionRequest) (*dto.SectionSnapshotResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	practice, question, fw, err := s.resolveQuestion(ctx, uow, userId, practiceId, req.QuestionIndex)
	if err != nil {
		return nil, err
	}
	if !fw.HasSection(req.SectionName) {
		return nil, apperror.NewInvalidSection(req.SectionName, fw.Name, fw.SectionNames())
	}
	if strings.TrimSpace(req.AnswerText) == "" {
		return nil, apperror.NewEmptyAnswer(practiceId.String(), req.QuestionIndex)
	}

	answer := entity.SectionAnswer{
		Id:               uuid.New(),
		PracticeId:       practice.Id,
		QuestionIndex:    question.Index,
		SectionName:      req.SectionName,
		AnswerText:       req.AnswerText,
		TimeSpentSeconds: req.TimeSpentSeconds,
		SubmittedAt:      time.Now(),
	}
	if err := uow.SectionAnswerRepository().Upsert(ctx, &answer); err != nil {
		return nil, apperror.NewStorage(err)
	}

	snapshot, err := s.buildSnapshot(ctx, uow, practice, question, fw)
	if err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		evt := events.NewSectionSubmitted(practice.Id.String(), userId.String(), question.Index, req.SectionName, snapshot.IsComplete)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("practice_service", "failed to publish section submitted event", map[string]interface{}{
				"practice_id": practice.Id,
				"error":       err.Error(),
			})
		}
	}

	return snapshot, nil
}

// SubmitSectionAudio transcribes the recording first and then follows the
// text submission path. A transcription failure fails the submission; no
// record is written with substituted empty text.
func (s *practiceService) SubmitSectionAudio(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, questionIndex int, sectionName string, timeSpentSeconds int, audio []byte, filename string) (*dto.SubmitSectionAudioResponse, error) {
	transcription, err := s.transcriber.Transcribe(ctx, audio, filename, "en")
	if err != nil {
		return nil, apperror.NewTranscriptionFailed(err)
	}

	timeSpent := timeSpentSeconds
	if timeSpent == 0 && transcription.DurationSeconds > 0 {
		timeSpent = int(transcription.DurationSeconds)
	}

	snapshot, err := s.SubmitSection(ctx, userId, practiceId, &dto.SubmitSectionRequest{
		QuestionIndex:    questionIndex,
		SectionName:      sectionName,
		AnswerText:       transcription.Text,
		TimeSpentSeconds: timeSpent,
	})
	if err != nil {
		return nil, err
	}

	resp := &dto.SubmitSectionAudioResponse{
		Snapshot: snapshot,
		Transcription: &dto.TranscriptionResponse{
			Text:            transcription.Text,
			Language:        transcription.Language,
			DurationSeconds: transcription.DurationSeconds,
			WordCount:       transcription.WordCount,
			ModelIdentifier: transcription.ModelIdentifier,
			LatencyMs:       transcription.LatencyMs,
		},
	}
	for _, w := range transcription.Words {
		resp.Transcription.Words = append(resp.Transcription.Words, dto.WordTimingRequest{
			Word:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}
	return resp, nil
}

// GetSnapshot recomputes the progress snapshot from storage on every call.
func (s *practiceService) GetSnapshot(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID, questionIndex int) (*dto.SectionSnapshotResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	practice, question, fw, err := s.resolveQuestion(ctx, uow, userId, practiceId, questionIndex)
	if err != nil {
		return nil, err
	}
	return s.buildSnapshot(ctx, uow, practice, question, fw)
}

func (s *practiceService) resolveQuestion(ctx context.Context, uow unitofwork.UnitOfWork, userId, practiceId uuid.UUID, questionIndex int) (*entity.Practice, *entity.PracticeQuestion, framework.Framework, error) {
	practice, err := uow.PracticeRepository().FindByIDAndUser(ctx, practiceId, userId)
	if err != nil {
		return nil, nil, framework.Framework{}, apperror.NewStorage(err)
	}
	if practice == nil {
		return nil, nil, framework.Framework{}, apperror.NewNotFound("practice", practiceId.String())
	}

	question := practice.QuestionAt(questionIndex)
	if question == nil {
		return nil, nil, framework.Framework{}, apperror.NewQuestionIndexOutOfRange(questionIndex, len(practice.Questions))
	}

	return practice, question, s.registry.ByName(question.Framework), nil
}

// buildSnapshot walks the framework's canonical section order; next section
// and next hint point at the first section without a stored answer.
func (s *practiceService) buildSnapshot(ctx context.Context, uow unitofwork.UnitOfWork, practice *entity.Practice, question *entity.PracticeQuestion, fw framework.Framework) (*dto.SectionSnapshotResponse, error) {
	answers, err := uow.SectionAnswerRepository().ListByQuestion(ctx, practice.Id, question.Index)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}

	byName := make(map[string]*entity.SectionAnswer, len(answers))
	for _, a := range answers {
		byName[a.SectionName] = a
	}

	snapshot := &dto.SectionSnapshotResponse{
		PracticeId:    practice.Id,
		QuestionIndex: question.Index,
		Framework:     fw.Name,
		TotalSections: len(fw.Sections),
	}
	for _, name := range fw.Sections {
		hint, _ := fw.HintFor(name)
		state := dto.SectionStateResponse{Name: name, Hint: hint}
		if a, ok := byName[name]; ok {
			submittedAt := a.SubmittedAt
			state.Submitted = true
			state.AnswerText = a.AnswerText
			state.TimeSpentSeconds = a.TimeSpentSeconds
			state.SubmittedAt = &submittedAt
			snapshot.SubmittedCount++
		} else if snapshot.NextSection == "" {
			snapshot.NextSection = name
			snapshot.NextHint = hint
		}
		snapshot.Sections = append(snapshot.Sections, state)
	}
	snapshot.IsComplete = snapshot.SubmittedCount == snapshot.TotalSections

	return snapshot, nil
}

func (s *practiceService) toQuestionResponses(questions []entity.PracticeQuestion) []dto.PracticeQuestionResponse {
	responses := make([]dto.PracticeQuestionResponse, 0, len(questions))
	for _, q := range questions {
		fw := s.registry.ByName(q.Framework)
		responses = append(responses, dto.PracticeQuestionResponse{
			Index:         q.Index,
			Text:          q.Text,
			Topic:         q.Topic,
			StructureHint: q.StructureHint,
			Framework:     q.Framework,
			Sections:      fw.SectionNames(),
		})
	}
	return responses
}
