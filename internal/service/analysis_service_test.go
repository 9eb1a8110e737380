package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-interview-be/internal/apperror"
	"ai-interview-be/internal/dto"
	"ai-interview-be/pkg/analysis"
	"ai-interview-be/pkg/framework"
	"ai-interview-be/pkg/questionbank"
	"ai-interview-be/pkg/transcriber"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnalysisFixture(t *testing.T) (IAnalysisService, IPracticeService, *capturingPublisher, uuid.UUID) {
	t.Helper()
	store := newMemoryStore()
	registry := framework.NewRegistry()
	publisher := &capturingPublisher{}

	// Nil LLM provider: the content-quality dimension runs on its heuristic.
	aggregator := analysis.NewAggregator(
		2*time.Second,
		analysis.NewContentQualityAnalyzer(nil),
		analysis.NewCompletenessAnalyzer(),
		analysis.NewPaceAnalyzer(),
		analysis.NewPauseAnalyzer(),
	)

	practiceSvc := NewPracticeService(
		&memoryFactory{store: store},
		registry,
		questionbank.NewBank(),
		&fakeTranscriber{result: &transcriber.Transcription{Text: "ok"}},
		nil,
		noopLogger{},
	)
	analysisSvc := NewAnalysisService(
		&memoryFactory{store: store},
		registry,
		aggregator,
		publisher,
		nil,
		noopLogger{},
	)
	return analysisSvc, practiceSvc, publisher, uuid.New()
}

func submitAnswer(t *testing.T, svc IPracticeService, userId, practiceId uuid.UUID, index int, section, text string) {
	t.Helper()
	_, err := svc.SubmitSection(context.Background(), userId, practiceId, &dto.SubmitSectionRequest{
		QuestionIndex: index, SectionName: section, AnswerText: text,
	})
	require.NoError(t, err)
}

func TestAnalyzeQuestion_StoresAggregate(t *testing.T) {
	analysisSvc, practiceSvc, _, userId := newAnalysisFixture(t)
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation",
		"Our payment service began timing out during a seasonal traffic peak and customers could not check out, so the whole release plan was suddenly at risk and leadership asked my team to restore reliability before the weekend sale started across every region we operate in.")

	resp, err := analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 0,
		Kinds:         []string{analysis.KindContentQuality, analysis.KindStructureCompleteness},
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{analysis.KindContentQuality, analysis.KindStructureCompleteness}, resp.SucceededKinds)
	assert.Empty(t, resp.FailedKinds)
	assert.Greater(t, resp.CompositeScore, 0.0)
	assert.Len(t, resp.SectionQualities, 4)

	stored, err := analysisSvc.GetAnalysis(context.Background(), userId, practice.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, resp.CompositeScore, stored.CompositeScore)
}

func TestAnalyzeQuestion_ReplacesPreviousAggregate(t *testing.T) {
	analysisSvc, practiceSvc, _, userId := newAnalysisFixture(t)
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "A short first answer.")

	first, err := analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 0, Kinds: []string{analysis.KindStructureCompleteness},
	})
	require.NoError(t, err)

	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Task", "My task was to stabilize the service.")
	second, err := analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 0, Kinds: []string{analysis.KindStructureCompleteness},
	})
	require.NoError(t, err)
	assert.Greater(t, second.CompositeScore, first.CompositeScore)

	// The stored copy is the latest one, not a merge.
	stored, err := analysisSvc.GetAnalysis(context.Background(), userId, practice.Id, 0)
	require.NoError(t, err)
	assert.Equal(t, second.CompositeScore, stored.CompositeScore)
	assert.WithinDuration(t, second.ComputedAt, stored.ComputedAt, time.Second)
}

func TestAnalyzeQuestion_NoAnswerYet(t *testing.T) {
	analysisSvc, practiceSvc, _, userId := newAnalysisFixture(t)
	practice := createPractice(t, practiceSvc, userId, "behavioral")

	_, err := analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 0, Kinds: []string{analysis.KindContentQuality},
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "EMPTY_ANSWER", appErr.Kind)
}

func TestAnalyzeQuestion_NoKindsRequested(t *testing.T) {
	analysisSvc, practiceSvc, _, userId := newAnalysisFixture(t)
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "Some answer text here.")

	_, err := analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 0, Kinds: nil,
	})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "NO_ANALYSIS_KINDS", appErr.Kind)
	assert.Contains(t, appErr.Details["supported_kinds"], analysis.KindPace)
}

func TestAnalyzeQuestion_UnsupportedKindDegrades(t *testing.T) {
	analysisSvc, practiceSvc, _, userId := newAnalysisFixture(t)
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "Some answer text here.")

	resp, err := analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 0, Kinds: []string{analysis.KindStructureCompleteness, "sentiment"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{analysis.KindStructureCompleteness}, resp.SucceededKinds)
	assert.Equal(t, []string{"sentiment"}, resp.FailedKinds)
}

func TestAnalyzeQuestion_PaceNeedsWordTimings(t *testing.T) {
	analysisSvc, practiceSvc, _, userId := newAnalysisFixture(t)
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "Spoken answer without timing data.")

	resp, err := analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 0, Kinds: []string{analysis.KindPace},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{analysis.KindPace}, resp.FailedKinds)

	// With client-provided word timings the dimension succeeds.
	words := make([]dto.WordTimingRequest, 0, 30)
	for i := 0; i < 30; i++ {
		start := float64(i) * 0.44
		words = append(words, dto.WordTimingRequest{Word: "word", Start: start, End: start + 0.3})
	}
	resp, err = analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 0, Kinds: []string{analysis.KindPace}, Words: words, DurationSeconds: 14,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{analysis.KindPace}, resp.SucceededKinds)
}

func TestAnalyzeQuestion_PublishesCompletionMessage(t *testing.T) {
	analysisSvc, practiceSvc, publisher, userId := newAnalysisFixture(t)
	practice := createPractice(t, practiceSvc, userId, "behavioral")

	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "First question answer.")
	_, err := analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 0, Kinds: []string{analysis.KindStructureCompleteness},
	})
	require.NoError(t, err)

	payloads := publisher.published()
	require.Len(t, payloads, 1)
	var msg dto.AnalysisCompletedMessage
	require.NoError(t, json.Unmarshal(payloads[0], &msg))
	assert.Equal(t, practice.Id, msg.PracticeId)
	assert.Equal(t, 0, msg.QuestionIndex)
	assert.False(t, msg.FullyAnalyzed, "one of two questions analyzed")

	// Analyzing the remaining question flips the flag.
	submitAnswer(t, practiceSvc, userId, practice.Id, 1, "Situation", "Second question answer.")
	_, err = analysisSvc.AnalyzeQuestion(context.Background(), userId, practice.Id, &dto.AnalyzeQuestionRequest{
		QuestionIndex: 1, Kinds: []string{analysis.KindStructureCompleteness},
	})
	require.NoError(t, err)

	payloads = publisher.published()
	require.Len(t, payloads, 2)
	require.NoError(t, json.Unmarshal(payloads[1], &msg))
	assert.True(t, msg.FullyAnalyzed)
}

func TestGetAnalysis_NotFoundBeforeFirstRun(t *testing.T) {
	analysisSvc, practiceSvc, _, userId := newAnalysisFixture(t)
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "An answer without analysis.")

	_, err := analysisSvc.GetAnalysis(context.Background(), userId, practice.Id, 0)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Kind)
}
