package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-interview-be/pkg/llm"
)

// ContentQualitySection is the judgment for one framework section.
type ContentQualitySection struct {
	Name                string `json:"name"`
	Present             bool   `json:"present"`
	Quality             string `json:"quality"`
	TimeEstimateSeconds int    `json:"time_estimate_seconds"`
}

// ContentQualityPayload is the structured output of the content-quality
// dimension. Source records whether the judgment came from the model or the
// deterministic fallback.
type ContentQualityPayload struct {
	FrameworkDetected    string                  `json:"framework_detected"`
	Sections             []ContentQualitySection `json:"sections"`
	CompletionPercentage int                     `json:"completion_percentage"`
	KeyInsight           string                  `json:"key_insight"`
	ProgressMessage      string                  `json:"progress_message"`
	Source               string                  `json:"source"`
}

const (
	qualitySourceLLM       = "llm"
	qualitySourceHeuristic = "heuristic"
)

// ContentQualityAnalyzer judges each submitted section as good, partial or
// missing. It asks the model first and degrades to the word-count heuristic
// when the model is unavailable or returns something unusable.
type ContentQualityAnalyzer struct {
	provider llm.LLMProvider
}

func NewContentQualityAnalyzer(provider llm.LLMProvider) *ContentQualityAnalyzer {
	return &ContentQualityAnalyzer{provider: provider}
}

func (a *ContentQualityAnalyzer) Kind() string {
	return KindContentQuality
}

func (a *ContentQualityAnalyzer) Analyze(ctx context.Context, in *Input) (interface{}, error) {
	if a.provider == nil {
		return a.heuristicPayload(in), nil
	}

	raw, err := a.provider.Chat(ctx, []llm.Message{
		{Role: "system", Content: a.systemPrompt(in)},
		{Role: "user", Content: a.userPrompt(in)},
	}, llm.WithTemperature(0.3))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return a.heuristicPayload(in), nil
	}

	payload, ok := a.parsePayload(raw, in)
	if !ok {
		return a.heuristicPayload(in), nil
	}
	return payload, nil
}

func (a *ContentQualityAnalyzer) systemPrompt(in *Input) string {
	var sb strings.Builder
	sb.WriteString("You are an expert interview coach analyzing structured answers.\n")
	fmt.Fprintf(&sb, "Analyze the answer based on the %s framework.\n\n", in.FrameworkName)
	sb.WriteString("The candidate submitted the answer section-by-section. Each section is marked with [Section Name].\n\n")
	sb.WriteString("Sections submitted so far:\n")
	for _, s := range in.Sections {
		if s.Submitted {
			fmt.Fprintf(&sb, "- %s: SUBMITTED (%ds)\n", s.Name, s.TimeSpentSeconds)
		} else {
			fmt.Fprintf(&sb, "- %s: NOT SUBMITTED\n", s.Name)
		}
	}
	sb.WriteString("\nJudge each submitted section:\n")
	sb.WriteString("- \"good\": well-developed, clear, specific, addresses the section requirements\n")
	sb.WriteString("- \"partial\": present but underdeveloped, rushed, or incomplete\n")
	sb.WriteString("- \"missing\": not submitted or not addressed\n\n")
	sb.WriteString("Provide a key insight about what the candidate did well and what could be improved.\n")
	sb.WriteString("Calculate completion percentage (0-100): 50% for how many sections were submitted, 50% for quality of submitted sections.\n\n")
	sb.WriteString("Return ONLY valid JSON matching this structure:\n")
	sb.WriteString(`{
  "framework_detected": "framework name",
  "sections": [
    {"name": "section name", "present": true, "quality": "good", "time_estimate_seconds": 0}
  ],
  "completion_percentage": 0,
  "key_insight": "detailed insight string",
  "progress_message": "encouraging message based on completion"
}`)
	return sb.String()
}

func (a *ContentQualityAnalyzer) userPrompt(in *Input) string {
	body := map[string]interface{}{
		"question":       in.QuestionText,
		"structure_hint": in.StructureHint,
		"framework":      in.FrameworkName,
		"answer":         in.AnswerText,
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return in.AnswerText
	}
	return string(encoded)
}

// parsePayload extracts the JSON object from a possibly fenced model reply
// and aligns it with the expected sections. The model never gets to declare
// an unsubmitted section anything other than missing.
func (a *ContentQualityAnalyzer) parsePayload(raw string, in *Input) (*ContentQualityPayload, bool) {
	text := strings.TrimSpace(raw)
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			text = text[start : end+1]
		}
	}

	var payload ContentQualityPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, false
	}

	byName := make(map[string]ContentQualitySection, len(payload.Sections))
	for _, s := range payload.Sections {
		byName[strings.ToLower(strings.TrimSpace(s.Name))] = s
	}

	aligned := make([]ContentQualitySection, len(in.Sections))
	for i, expected := range in.Sections {
		section := ContentQualitySection{Name: expected.Name, Quality: QualityMissing}
		if got, ok := byName[strings.ToLower(expected.Name)]; ok {
			section.Quality = normalizeQuality(got.Quality)
			section.TimeEstimateSeconds = got.TimeEstimateSeconds
		}
		if !expected.Submitted {
			section.Quality = QualityMissing
			section.Present = false
			section.TimeEstimateSeconds = 0
		} else {
			section.Present = true
			section.TimeEstimateSeconds = expected.TimeSpentSeconds
			if section.Quality == QualityMissing {
				section.Quality = QualityPartial
			}
		}
		aligned[i] = section
	}

	payload.Sections = aligned
	if payload.FrameworkDetected == "" {
		payload.FrameworkDetected = in.FrameworkName
	}
	payload.CompletionPercentage = clampPercent(payload.CompletionPercentage)
	payload.Source = qualitySourceLLM
	return &payload, true
}

func (a *ContentQualityAnalyzer) heuristicPayload(in *Input) *ContentQualityPayload {
	qualities := ClassifySections(in.Sections)
	sections := make([]ContentQualitySection, len(in.Sections))
	for i, s := range in.Sections {
		sections[i] = ContentQualitySection{
			Name:                s.Name,
			Present:             s.Submitted,
			Quality:             qualities[i].Quality,
			TimeEstimateSeconds: s.TimeSpentSeconds,
		}
	}
	completion := int(CompositeScore(in.Sections, qualities))
	return &ContentQualityPayload{
		FrameworkDetected:    in.FrameworkName,
		Sections:             sections,
		CompletionPercentage: clampPercent(completion),
		KeyInsight:           "Automatic review based on answer length per section.",
		ProgressMessage:      fmt.Sprintf("%d of %d sections submitted.", in.SubmittedCount(), len(in.Sections)),
		Source:               qualitySourceHeuristic,
	}
}

func normalizeQuality(q string) string {
	switch strings.ToLower(strings.TrimSpace(q)) {
	case QualityGood:
		return QualityGood
	case QualityPartial:
		return QualityPartial
	default:
		return QualityMissing
	}
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
