package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"ai-interview-be/internal/apperror"
	"ai-interview-be/pkg/analysis"
	"ai-interview-be/pkg/framework"
	"ai-interview-be/pkg/llm"
	"ai-interview-be/pkg/questionbank"
	"ai-interview-be/pkg/transcriber"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLLM struct {
	response string
	err      error
}

func (s *stubLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return s.Chat(ctx, nil, options...)
}

func newReportFixture(t *testing.T, provider llm.LLMProvider) (IReportService, IPracticeService, uuid.UUID) {
	t.Helper()
	store := newMemoryStore()
	practiceSvc := NewPracticeService(
		&memoryFactory{store: store},
		framework.NewRegistry(),
		questionbank.NewBank(),
		&fakeTranscriber{result: &transcriber.Transcription{Text: "ok"}},
		nil,
		noopLogger{},
	)
	reportSvc := NewReportService(
		&memoryFactory{store: store},
		provider,
		nil,
		noopLogger{},
	)
	return reportSvc, practiceSvc, uuid.New()
}

const assessorReply = `{
  "knowledge_scores": {"accuracy": 4, "depth": 4, "relevance": 5, "examples": 3, "terminology": 4},
  "speech_scores": {"fluency": 4, "structure": 5, "pacing": 4, "grammar": 4},
  "strengths": ["clear structure"],
  "improvements": ["add more examples"]
}`

func TestSynthesize_WithoutAnyAttemptFails(t *testing.T) {
	reportSvc, practiceSvc, userId := newReportFixture(t, nil)
	practice := createPractice(t, practiceSvc, userId, "behavioral")

	_, err := reportSvc.Synthesize(context.Background(), userId, practice.Id)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "REPORT_SYNTHESIS_FAILURE", appErr.Kind)
}

func TestSynthesize_UsesAssessorScores(t *testing.T) {
	reportSvc, practiceSvc, userId := newReportFixture(t, &stubLLM{response: assessorReply})
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "A full answer to the first question.")
	submitAnswer(t, practiceSvc, userId, practice.Id, 1, "Situation", "A full answer to the second question.")

	report, err := reportSvc.Synthesize(context.Background(), userId, practice.Id)
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(report.ScoreSummary, &summary))
	knowledge := summary["knowledgeCompetence"].(map[string]interface{})
	speech := summary["speechAndStructure"].(map[string]interface{})
	// 4+4+5+3+4 = 20 of 25 and 4+5+4+4 = 17 of 20, no completion penalty.
	assert.Equal(t, 20.0, knowledge["score"])
	assert.Equal(t, 17.0, speech["score"])
	assert.InDelta(t, (20.0+17.0)/45*100, report.OverallScore, 0.01)
}

func TestSynthesize_CompletionPenaltyAndNullFeedback(t *testing.T) {
	reportSvc, practiceSvc, userId := newReportFixture(t, &stubLLM{response: assessorReply})
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	// Only the first of two questions is attempted.
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "An answer to the first question only.")

	report, err := reportSvc.Synthesize(context.Background(), userId, practice.Id)
	require.NoError(t, err)

	var summary map[string]interface{}
	require.NoError(t, json.Unmarshal(report.ScoreSummary, &summary))
	knowledge := summary["knowledgeCompetence"].(map[string]interface{})
	// Per-question 20 of 25, halved by the 1/2 completion ratio.
	assert.Equal(t, 10.0, knowledge["score"])
	assert.Equal(t, 1.0, summary["attemptedQuestions"].(float64))
	assert.Equal(t, 2.0, summary["totalQuestions"].(float64))

	var perQuestion []struct {
		Index     int         `json:"index"`
		Attempted bool        `json:"attempted"`
		Feedback  interface{} `json:"feedback"`
	}
	require.NoError(t, json.Unmarshal(report.PerQuestionFeedback, &perQuestion))
	require.Len(t, perQuestion, 2, "unattempted questions still appear")
	assert.True(t, perQuestion[0].Attempted)
	assert.NotNil(t, perQuestion[0].Feedback)
	assert.False(t, perQuestion[1].Attempted)
	assert.Nil(t, perQuestion[1].Feedback, "unattempted questions carry null feedback")
}

func TestSynthesize_FallsBackToHeuristicWhenAssessorFails(t *testing.T) {
	reportSvc, practiceSvc, userId := newReportFixture(t, &stubLLM{err: errors.New("model offline")})
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation",
		"The release was at risk because a dependency upgrade broke the checkout flow in production for several customers.")
	submitAnswer(t, practiceSvc, userId, practice.Id, 1, "Situation", "Second answer.")

	report, err := reportSvc.Synthesize(context.Background(), userId, practice.Id)
	require.NoError(t, err)
	assert.Greater(t, report.OverallScore, 0.0)
	assert.NotEmpty(t, report.OverallFeedback)
}

func TestSynthesize_GarbageAssessorReplyFallsBack(t *testing.T) {
	reportSvc, practiceSvc, userId := newReportFixture(t, &stubLLM{response: "I cannot help with that."})
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "A reasonable answer with a handful of words in it.")
	submitAnswer(t, practiceSvc, userId, practice.Id, 1, "Situation", "Another answer.")

	report, err := reportSvc.Synthesize(context.Background(), userId, practice.Id)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.OverallScore, 0.0)
	assert.LessOrEqual(t, report.OverallScore, 100.0)
}

func TestSynthesize_ReSynthesisKeepsReportIdentity(t *testing.T) {
	reportSvc, practiceSvc, userId := newReportFixture(t, &stubLLM{response: assessorReply})
	practice := createPractice(t, practiceSvc, userId, "behavioral")
	submitAnswer(t, practiceSvc, userId, practice.Id, 0, "Situation", "First pass answer.")

	first, err := reportSvc.Synthesize(context.Background(), userId, practice.Id)
	require.NoError(t, err)

	submitAnswer(t, practiceSvc, userId, practice.Id, 1, "Situation", "Now the second question too.")
	second, err := reportSvc.Synthesize(context.Background(), userId, practice.Id)
	require.NoError(t, err)

	assert.Equal(t, first.Id, second.Id, "one report row per practice")
	assert.Greater(t, second.OverallScore, first.OverallScore, "completion penalty lifted")

	stored, err := reportSvc.Get(context.Background(), userId, practice.Id)
	require.NoError(t, err)
	assert.Equal(t, second.OverallScore, stored.OverallScore)
}

func TestGetReport_NotFoundBeforeSynthesis(t *testing.T) {
	reportSvc, practiceSvc, userId := newReportFixture(t, nil)
	practice := createPractice(t, practiceSvc, userId, "behavioral")

	_, err := reportSvc.Get(context.Background(), userId, practice.Id)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, "NOT_FOUND", appErr.Kind)
}

func TestHeuristicScores_UsesPaceAndPauseDimensions(t *testing.T) {
	pacePayload, _ := json.Marshal(analysis.PacePayload{Score: 80})
	pausePayload, _ := json.Marshal(analysis.PausePayload{Score: 4})
	agg := &analysis.Aggregate{
		CompositeScore: 60,
		Results: []analysis.Result{
			{Kind: analysis.KindPace, Status: analysis.StatusOK, Payload: pacePayload},
			{Kind: analysis.KindPause, Status: analysis.StatusOK, Payload: pausePayload},
		},
	}

	scores := heuristicScores(agg, nil)
	assert.Equal(t, 3.0, scores.Knowledge["accuracy"], "60%% composite maps to 3 of 5")
	assert.Equal(t, 4.0, scores.Speech["pacing"], "pace score overrides the base")
	assert.Equal(t, 4.0, scores.Speech["fluency"], "pause rubric overrides the base")
}
