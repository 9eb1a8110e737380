package analysis

import "strings"

// Word-count thresholds for the deterministic quality fallback. A submitted
// section needs some substance before it counts as well-developed.
const (
	goodWordThreshold    = 40
	partialWordThreshold = 1
)

// ClassifySections is the deterministic fallback classifier used whenever
// the content-quality collaborator is unavailable. Submitted text is judged
// by word count alone; never-submitted sections are always missing.
func ClassifySections(sections []SectionInput) []SectionQuality {
	qualities := make([]SectionQuality, len(sections))
	for i, s := range sections {
		quality := QualityMissing
		if s.Submitted {
			words := len(strings.Fields(s.AnswerText))
			switch {
			case words >= goodWordThreshold:
				quality = QualityGood
			case words >= partialWordThreshold:
				quality = QualityPartial
			}
		}
		qualities[i] = SectionQuality{Name: s.Name, Quality: quality}
	}
	return qualities
}
