package analysis

import (
	"context"
	"strings"
)

type CompletenessSection struct {
	Name             string `json:"name"`
	Submitted        bool   `json:"submitted"`
	WordCount        int    `json:"word_count"`
	TimeSpentSeconds int    `json:"time_spent_seconds"`
}

type CompletenessPayload struct {
	FrameworkName      string                `json:"framework_name"`
	Sections           []CompletenessSection `json:"sections"`
	SubmittedSections  int                   `json:"submitted_sections"`
	TotalSections      int                   `json:"total_sections"`
	CoveragePercentage int                   `json:"coverage_percentage"`
	IsComplete         bool                  `json:"is_complete"`
	NextSection        string                `json:"next_section,omitempty"`
}

// CompletenessAnalyzer reports how much of the framework skeleton the answer
// covers. Pure bookkeeping over the section inputs, always deterministic.
type CompletenessAnalyzer struct{}

func NewCompletenessAnalyzer() *CompletenessAnalyzer {
	return &CompletenessAnalyzer{}
}

func (a *CompletenessAnalyzer) Kind() string {
	return KindStructureCompleteness
}

func (a *CompletenessAnalyzer) Analyze(_ context.Context, in *Input) (interface{}, error) {
	sections := make([]CompletenessSection, len(in.Sections))
	submitted := 0
	next := ""
	for i, s := range in.Sections {
		sections[i] = CompletenessSection{
			Name:             s.Name,
			Submitted:        s.Submitted,
			WordCount:        len(strings.Fields(s.AnswerText)),
			TimeSpentSeconds: s.TimeSpentSeconds,
		}
		if s.Submitted {
			submitted++
		} else if next == "" {
			next = s.Name
		}
	}

	coverage := 0
	if len(in.Sections) > 0 {
		coverage = submitted * 100 / len(in.Sections)
	}

	return &CompletenessPayload{
		FrameworkName:      in.FrameworkName,
		Sections:           sections,
		SubmittedSections:  submitted,
		TotalSections:      len(in.Sections),
		CoveragePercentage: coverage,
		IsComplete:         len(in.Sections) > 0 && submitted == len(in.Sections),
		NextSection:        next,
	}, nil
}
