package analysis

import (
	"context"
	"fmt"
	"sort"
)

// Pause classification labels.
const (
	pauseLabelLong      = "long"
	pauseLabelRushed    = "rushed"
	pauseLabelStrategic = "strategic"
	pauseLabelNormal    = "normal"
)

type Pause struct {
	Index      int     `json:"index"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Duration   float64 `json:"duration"`
	BeforeWord string  `json:"before_word"`
	AfterWord  string  `json:"after_word"`
	Label      string  `json:"label"`
}

type PausePayload struct {
	Overview     string             `json:"overview"`
	Details      []string           `json:"details"`
	Distribution map[string]float64 `json:"distribution"`
	TotalPauses  int                `json:"total_pauses"`
	Pauses       []Pause            `json:"pauses"`
	Score        int                `json:"score"`
}

// PauseAnalyzer classifies the silences between words as long, rushed,
// strategic or normal. Thresholds adapt to the speaker's own distribution
// when enough pauses exist; short answers fall back to WPM-scaled defaults.
type PauseAnalyzer struct{}

func NewPauseAnalyzer() *PauseAnalyzer {
	return &PauseAnalyzer{}
}

func (a *PauseAnalyzer) Kind() string {
	return KindPause
}

func (a *PauseAnalyzer) Analyze(_ context.Context, in *Input) (interface{}, error) {
	words := sanitizeWordTimings(in.Words)
	if len(words) == 0 {
		return nil, ErrNoWordTimings
	}

	pauses := extractPauses(words)
	longThr, rushedThr, strategicMin, strategicMax := pauseThresholds(pauses, words)

	var long, rushed, strategic int
	for i := range pauses {
		p := &pauses[i]
		switch {
		case p.Duration >= strategicMin && p.Duration <= strategicMax:
			p.Label = pauseLabelStrategic
			strategic++
		case p.Duration > longThr:
			p.Label = pauseLabelLong
			long++
		case p.Duration < rushedThr:
			p.Label = pauseLabelRushed
			rushed++
		default:
			p.Label = pauseLabelNormal
		}
	}

	payload := &PausePayload{
		TotalPauses:  len(pauses),
		Pauses:       pauses,
		Distribution: map[string]float64{},
	}
	if len(pauses) > 0 {
		total := float64(len(pauses))
		payload.Distribution[pauseLabelLong] = roundTo(float64(long)/total*100, 1)
		payload.Distribution[pauseLabelRushed] = roundTo(float64(rushed)/total*100, 1)
		payload.Distribution[pauseLabelStrategic] = roundTo(float64(strategic)/total*100, 1)
		payload.Distribution[pauseLabelNormal] = roundTo(float64(len(pauses)-long-rushed-strategic)/total*100, 1)
	}

	if long > 0 {
		payload.Overview = fmt.Sprintf("%d overly long pauses (> %.2fs)", long, longThr)
	}
	if rushed > 0 {
		if payload.Overview != "" {
			payload.Overview += ", "
		}
		payload.Overview += fmt.Sprintf("%d rushed transitions (< %.2fs)", rushed, rushedThr)
	}
	if strategic > 0 {
		if payload.Overview != "" {
			payload.Overview += ", "
		}
		payload.Overview += fmt.Sprintf("%d well-placed strategic pauses", strategic)
	}
	if payload.Overview == "" {
		payload.Overview = "Good pause management overall"
		payload.Details = append(payload.Details, "Pause patterns support clear communication")
	}

	payload.Details = append(payload.Details, pauseExamples(pauses)...)
	payload.Score = pauseScore(payload.Distribution)
	return payload, nil
}

func extractPauses(words []WordTiming) []Pause {
	pauses := make([]Pause, 0, len(words))
	for i := 0; i < len(words)-1; i++ {
		gap := words[i+1].Start - words[i].End
		if gap <= 0 {
			continue
		}
		pauses = append(pauses, Pause{
			Index:      i,
			Start:      words[i].End,
			End:        words[i+1].Start,
			Duration:   gap,
			BeforeWord: words[i].Word,
			AfterWord:  words[i+1].Word,
		})
	}
	return pauses
}

// pauseThresholds derives classification bounds from the observed pause
// distribution. With fewer than 8 pauses the quartile estimate is unstable,
// so thresholds fall back to WPM-scaled defaults.
func pauseThresholds(pauses []Pause, words []WordTiming) (longThr, rushedThr, strategicMin, strategicMax float64) {
	strategicMin, strategicMax = 0.15, 2.5

	if len(pauses) >= 8 {
		durations := make([]float64, len(pauses))
		for i, p := range pauses {
			durations[i] = p.Duration
		}
		sort.Float64s(durations)
		q1 := quantile(durations, 0.25)
		q3 := quantile(durations, 0.75)

		rushedThr = clampFloat(q1*0.5, 0.02, 0.12)
		longThr = q3 * 3
		if longThr < 2.0 {
			longThr = 2.0
		}
		return longThr, rushedThr, strategicMin, strategicMax
	}

	totalTime := 0.0
	if len(words) > 0 {
		totalTime = words[len(words)-1].End - words[0].Start
	}
	wpm := 120.0
	if totalTime > 0 {
		wpm = float64(len(words)) / totalTime * 60
	}
	scale := 1.0
	if wpm > 0 {
		scale = 120 / wpm
	}

	longThr = 1.0
	if scale > 1 {
		longThr = clampFloat(1.0*scale, 1.0, 3.0)
	}
	rushedThr = 0.1
	if scale < 1 {
		rushedThr = clampFloat(0.1*scale, 0.05, 0.2)
	}
	return longThr, rushedThr, strategicMin, strategicMax
}

func pauseExamples(pauses []Pause) []string {
	byLabel := map[string]int{}
	var details []string
	for _, p := range pauses {
		if byLabel[p.Label] >= 2 {
			continue
		}
		switch p.Label {
		case pauseLabelLong:
			details = append(details, fmt.Sprintf("Long pause (%.1fs) after %q at %s: consider a short linking phrase to keep the flow.", p.Duration, p.BeforeWord, formatTimestamp(p.Start)))
		case pauseLabelRushed:
			details = append(details, fmt.Sprintf("Rushed transition (%.1fs) between %q and %q at %s: add a tiny pause so listeners can follow.", p.Duration, p.BeforeWord, p.AfterWord, formatTimestamp(p.Start)))
		case pauseLabelStrategic:
			details = append(details, fmt.Sprintf("Good pause (%.1fs) before %q at %s: nice emphasis.", p.Duration, p.AfterWord, formatTimestamp(p.Start)))
		default:
			continue
		}
		byLabel[p.Label]++
	}
	return details
}

// pauseScore applies the 1-5 rubric over the label distribution: strategic
// pauses are rewarded, excessive long or rushed shares are penalized.
func pauseScore(dist map[string]float64) int {
	long := dist[pauseLabelLong]
	rushed := dist[pauseLabelRushed]
	strategic := dist[pauseLabelStrategic]

	switch {
	case long > 30 || rushed > 50:
		return 1
	case strategic >= 20 && rushed <= 10 && long <= 10:
		return 5
	case strategic >= 10 && rushed <= 20 && long <= 15:
		return 4
	case strategic >= 5 || (rushed <= 35 && long <= 20):
		return 3
	default:
		return 2
	}
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	pos := q * float64(len(sorted)-1)
	lower := int(pos)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

func clampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func formatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
