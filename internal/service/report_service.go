package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"ai-interview-be/internal/apperror"
	"ai-interview-be/internal/dto"
	"ai-interview-be/internal/entity"
	"ai-interview-be/internal/pkg/logger"
	"ai-interview-be/internal/repository/unitofwork"
	"ai-interview-be/pkg/analysis"
	"ai-interview-be/pkg/events"
	"ai-interview-be/pkg/llm"
	pktNats "ai-interview-be/pkg/nats"

	"github.com/google/uuid"
)

// Score section maxima. Knowledge carries five 0-5 criteria, speech and
// structure four, so a perfect practice sums to 25 + 20.
const (
	knowledgeMaxScore = 25
	speechMaxScore    = 20
)

type IReportService interface {
	Synthesize(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID) (*dto.ReportResponse, error)
	Get(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID) (*dto.ReportResponse, error)
}

type reportService struct {
	uowFactory     unitofwork.RepositoryFactory
	llmProvider    llm.LLMProvider
	eventPublisher *pktNats.Publisher
	logger         logger.ILogger
}

func NewReportService(
	uowFactory unitofwork.RepositoryFactory,
	llmProvider llm.LLMProvider,
	eventPublisher *pktNats.Publisher,
	logger logger.ILogger,
) IReportService {
	return &reportService{
		uowFactory:     uowFactory,
		llmProvider:    llmProvider,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// questionScores holds the 0-5 criterion judgments for one attempted
// question.
type questionScores struct {
	Knowledge    map[string]float64 `json:"knowledge_scores"`
	Speech       map[string]float64 `json:"speech_scores"`
	Strengths    []string           `json:"strengths"`
	Improvements []string           `json:"improvements"`
}

var knowledgeCriteria = []string{"accuracy", "depth", "relevance", "examples", "terminology"}
var speechCriteria = []string{"fluency", "structure", "pacing", "grammar"}

// Synthesize builds the whole-practice report: every question appears, with
// null feedback for the unattempted ones, and the single report row is
// replaced on re-synthesis.
func (s *reportService) Synthesize(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID) (*dto.ReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	practice, err := uow.PracticeRepository().FindByIDAndUser(ctx, practiceId, userId)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}
	if practice == nil {
		return nil, apperror.NewNotFound("practice", practiceId.String())
	}

	answers, err := uow.SectionAnswerRepository().ListByPractice(ctx, practice.Id)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}

	answersByQuestion := make(map[int][]*entity.SectionAnswer)
	for _, a := range answers {
		answersByQuestion[a.QuestionIndex] = append(answersByQuestion[a.QuestionIndex], a)
	}
	if len(answersByQuestion) == 0 {
		return nil, apperror.NewReportSynthesisFailure(practice.Id.String(), "no question attempts exist")
	}

	scoresByQuestion := make(map[int]*questionScores, len(answersByQuestion))
	for _, q := range practice.Questions {
		attempt, ok := answersByQuestion[q.Index]
		if !ok {
			continue
		}
		scoresByQuestion[q.Index] = s.scoreQuestion(ctx, &q, attempt)
	}

	report := s.composeReport(practice, answersByQuestion, scoresByQuestion)
	if err := uow.ReportRepository().Upsert(ctx, report); err != nil {
		return nil, apperror.NewStorage(err)
	}
	// Re-read so a re-synthesis returns the stored row's original id.
	if stored, err := uow.ReportRepository().FindByPracticeID(ctx, practice.Id); err == nil && stored != nil {
		report = stored
	}

	s.logger.Info("report_service", "report synthesized", map[string]interface{}{
		"practice_id":   practice.Id,
		"report_id":     report.Id,
		"overall_score": report.OverallScore,
	})

	if s.eventPublisher != nil {
		evt := events.NewReportSynthesized(practice.Id.String(), userId.String(), report.Id.String(), report.OverallScore)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("report_service", "failed to publish report synthesized event", map[string]interface{}{
				"practice_id": practice.Id,
				"error":       err.Error(),
			})
		}
	}

	return toReportResponse(report), nil
}

func (s *reportService) Get(ctx context.Context, userId uuid.UUID, practiceId uuid.UUID) (*dto.ReportResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	practice, err := uow.PracticeRepository().FindByIDAndUser(ctx, practiceId, userId)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}
	if practice == nil {
		return nil, apperror.NewNotFound("practice", practiceId.String())
	}

	report, err := uow.ReportRepository().FindByPracticeID(ctx, practice.Id)
	if err != nil {
		return nil, apperror.NewStorage(err)
	}
	if report == nil {
		return nil, apperror.NewNotFound("report", practiceId.String())
	}
	return toReportResponse(report), nil
}

// scoreQuestion asks the scoring collaborator for 0-5 criterion judgments
// and falls back to a deterministic derivation from the stored aggregate
// analysis when the model is unavailable or unusable.
func (s *reportService) scoreQuestion(ctx context.Context, question *entity.PracticeQuestion, answers []*entity.SectionAnswer) *questionScores {
	agg := storedAggregate(answers)

	if s.llmProvider != nil {
		if scores := s.scoreWithLLM(ctx, question, answers); scores != nil {
			return scores
		}
	}
	return heuristicScores(agg, answers)
}

func (s *reportService) scoreWithLLM(ctx context.Context, question *entity.PracticeQuestion, answers []*entity.SectionAnswer) *questionScores {
	var sb strings.Builder
	for _, a := range answers {
		fmt.Fprintf(&sb, "[%s] %s\n", a.SectionName, a.AnswerText)
	}

	systemPrompt := `You are an expert interview assessor. Score the candidate's answer on each criterion from 0 to 5.
Knowledge criteria: accuracy, depth, relevance, examples, terminology.
Speech and structure criteria: fluency, structure, pacing, grammar.
Also list up to 3 strengths and up to 3 improvements.
Return ONLY valid JSON:
{
  "knowledge_scores": {"accuracy": 0, "depth": 0, "relevance": 0, "examples": 0, "terminology": 0},
  "speech_scores": {"fluency": 0, "structure": 0, "pacing": 0, "grammar": 0},
  "strengths": ["..."],
  "improvements": ["..."]
}`

	userPrompt := fmt.Sprintf("Question: %s\nExpected structure: %s (%s)\n\nAnswer by section:\n%s", question.Text, question.Framework, question.StructureHint, sb.String())

	raw, err := s.llmProvider.Chat(ctx, []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: userPrompt},
	}, llm.WithTemperature(0.2))
	if err != nil {
		s.logger.Warn("report_service", "scoring collaborator failed, using heuristic", map[string]interface{}{
			"question_index": question.Index,
			"error":          err.Error(),
		})
		return nil
	}

	text := strings.TrimSpace(raw)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var scores questionScores
	if err := json.Unmarshal([]byte(text), &scores); err != nil {
		return nil
	}
	if len(scores.Knowledge) == 0 || len(scores.Speech) == 0 {
		return nil
	}
	for k, v := range scores.Knowledge {
		scores.Knowledge[k] = clampScore(v, 0, 5)
	}
	for k, v := range scores.Speech {
		scores.Speech[k] = clampScore(v, 0, 5)
	}
	return &scores
}

// heuristicScores derives criterion scores from the composite score of the
// stored aggregate, and from the pace dimension when it is present.
func heuristicScores(agg *analysis.Aggregate, answers []*entity.SectionAnswer) *questionScores {
	composite := 0.0
	if agg != nil {
		composite = agg.CompositeScore
	} else {
		// No stored analysis: grade on word volume alone.
		words := 0
		for _, a := range answers {
			words += len(strings.Fields(a.AnswerText))
		}
		composite = clampScore(float64(words)/2, 0, 100)
	}

	base := composite / 100 * 5
	scores := &questionScores{
		Knowledge: map[string]float64{},
		Speech:    map[string]float64{},
	}
	for _, c := range knowledgeCriteria {
		scores.Knowledge[c] = roundScore(base)
	}
	for _, c := range speechCriteria {
		scores.Speech[c] = roundScore(base)
	}

	if agg != nil {
		if res := agg.ResultFor(analysis.KindPace); res != nil && res.Status == analysis.StatusOK {
			var pace analysis.PacePayload
			if err := json.Unmarshal(res.Payload, &pace); err == nil {
				scores.Speech["pacing"] = roundScore(pace.Score / 100 * 5)
			}
		}
		if res := agg.ResultFor(analysis.KindPause); res != nil && res.Status == analysis.StatusOK {
			var pause analysis.PausePayload
			if err := json.Unmarshal(res.Payload, &pause); err == nil && pause.Score > 0 {
				scores.Speech["fluency"] = float64(pause.Score)
			}
		}
	}
	return scores
}

// composeReport applies the completion penalty (average over attempted,
// scaled by attempted/total) and builds the score summary plus per-question
// feedback entries.
func (s *reportService) composeReport(practice *entity.Practice, answersByQuestion map[int][]*entity.SectionAnswer, scoresByQuestion map[int]*questionScores) *entity.Report {
	attempted := len(scoresByQuestion)
	total := len(practice.Questions)

	var knowledgeSum, speechSum float64
	for _, scores := range scoresByQuestion {
		for _, c := range knowledgeCriteria {
			knowledgeSum += scores.Knowledge[c]
		}
		for _, c := range speechCriteria {
			speechSum += scores.Speech[c]
		}
	}

	completionRatio := 0.0
	if total > 0 {
		completionRatio = float64(attempted) / float64(total)
	}
	knowledgeScore := math.Round(knowledgeSum / float64(attempted) * completionRatio)
	speechScore := math.Round(speechSum / float64(attempted) * completionRatio)

	knowledgePct := int(knowledgeScore / knowledgeMaxScore * 100)
	speechPct := int(speechScore / speechMaxScore * 100)
	overall := roundScore((knowledgeScore + speechScore) / (knowledgeMaxScore + speechMaxScore) * 100)

	scoreSummary, _ := json.Marshal(map[string]interface{}{
		"knowledgeCompetence": map[string]interface{}{
			"score":      knowledgeScore,
			"maxScore":   knowledgeMaxScore,
			"average":    roundScore(knowledgeScore / float64(len(knowledgeCriteria))),
			"maxAverage": 5.0,
			"percentage": knowledgePct,
		},
		"speechAndStructure": map[string]interface{}{
			"score":      speechScore,
			"maxScore":   speechMaxScore,
			"average":    roundScore(speechScore / float64(len(speechCriteria))),
			"maxAverage": 5.0,
			"percentage": speechPct,
		},
		"attemptedQuestions": attempted,
		"totalQuestions":     total,
	})

	type questionFeedback struct {
		Index     int         `json:"index"`
		Question  string      `json:"question"`
		Framework string      `json:"framework"`
		Attempted bool        `json:"attempted"`
		Feedback  interface{} `json:"feedback"`
	}
	perQuestion := make([]questionFeedback, 0, total)
	for _, q := range practice.Questions {
		entry := questionFeedback{
			Index:     q.Index,
			Question:  q.Text,
			Framework: q.Framework,
		}
		if scores, ok := scoresByQuestion[q.Index]; ok {
			entry.Attempted = true
			entry.Feedback = map[string]interface{}{
				"strengths":    nonNil(scores.Strengths),
				"improvements": nonNil(scores.Improvements),
				"sections":     len(answersByQuestion[q.Index]),
			}
		}
		// Unattempted questions keep a nil feedback field rather than being
		// dropped from the report.
		perQuestion = append(perQuestion, entry)
	}
	perQuestionJSON, _ := json.Marshal(perQuestion)

	return &entity.Report{
		Id:                  uuid.New(),
		PracticeId:          practice.Id,
		ScoreSummary:        scoreSummary,
		OverallFeedback:     overallFeedback(attempted, total, overall),
		PerQuestionFeedback: perQuestionJSON,
		OverallScore:        overall,
		CreatedAt:           time.Now(),
	}
}

func overallFeedback(attempted, total int, overall float64) string {
	if attempted < total {
		return fmt.Sprintf("You attempted %d of %d questions and scored %.1f overall. Complete every question for a full assessment.", attempted, total, overall)
	}
	switch {
	case overall >= 80:
		return fmt.Sprintf("Strong performance with an overall score of %.1f. Your answers were well structured and complete.", overall)
	case overall >= 50:
		return fmt.Sprintf("Solid attempt with an overall score of %.1f. Focus on developing each framework section more fully.", overall)
	default:
		return fmt.Sprintf("Overall score %.1f. Work through each framework section in order and support your answers with concrete examples.", overall)
	}
}

func storedAggregate(answers []*entity.SectionAnswer) *analysis.Aggregate {
	for _, a := range answers {
		if len(a.Analysis) == 0 {
			continue
		}
		var agg analysis.Aggregate
		if err := json.Unmarshal(a.Analysis, &agg); err == nil {
			return &agg
		}
	}
	return nil
}

func toReportResponse(report *entity.Report) *dto.ReportResponse {
	return &dto.ReportResponse{
		Id:                  report.Id,
		PracticeId:          report.PracticeId,
		OverallScore:        report.OverallScore,
		OverallFeedback:     report.OverallFeedback,
		ScoreSummary:        report.ScoreSummary,
		PerQuestionFeedback: report.PerQuestionFeedback,
		CreatedAt:           report.CreatedAt,
		UpdatedAt:           report.UpdatedAt,
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}

func clampScore(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func roundScore(v float64) float64 {
	return math.Round(v*100) / 100
}
