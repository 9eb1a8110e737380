package analysis

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Pace classification bounds in words per minute. The ideal delivery window
// is 105-170 WPM; the recommended average band for interviews is 120-150.
const (
	paceTooSlowBelowWPM = 105
	paceTooFastAboveWPM = 170
	paceRecommendedMin  = 120
	paceRecommendedMax  = 150

	paceWindowSeconds = 5.0
	paceStepSeconds   = 1.0
)

var ErrNoWordTimings = errors.New("word-level timestamps required")

type PaceSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
	Text  string  `json:"text"`
}

type PacePayload struct {
	AvgWPM     float64       `json:"avg_wpm"`
	TooSlowPct float64       `json:"too_slow_pct"`
	IdealPct   float64       `json:"ideal_pct"`
	TooFastPct float64       `json:"too_fast_pct"`
	Segments   []PaceSegment `json:"segments"`
	Feedback   string        `json:"feedback"`
	Score      float64       `json:"score"`
}

// PaceAnalyzer measures speaking speed from word-level timestamps. It is
// fully deterministic and needs no external collaborator.
type PaceAnalyzer struct{}

func NewPaceAnalyzer() *PaceAnalyzer {
	return &PaceAnalyzer{}
}

func (a *PaceAnalyzer) Kind() string {
	return KindPace
}

func (a *PaceAnalyzer) Analyze(_ context.Context, in *Input) (interface{}, error) {
	words := sanitizeWordTimings(in.Words)
	if len(words) == 0 {
		return nil, ErrNoWordTimings
	}

	firstStart := words[0].Start
	lastEnd := words[0].End
	for _, w := range words {
		if w.Start < firstStart {
			firstStart = w.Start
		}
		if w.End > lastEnd {
			lastEnd = w.End
		}
	}
	totalTime := lastEnd - firstStart
	if totalTime <= 0 {
		return nil, ErrNoWordTimings
	}
	avgWPM := float64(len(words)) / totalTime * 60

	// Classify 5-second sliding windows stepped by 1 second.
	var tooSlow, ideal, tooFast, totalWindows int
	var segments []PaceSegment
	segmentStart := firstStart
	currentLabel := ""
	for current := firstStart; current <= lastEnd-paceWindowSeconds; current += paceStepSeconds {
		windowEnd := current + paceWindowSeconds
		count := 0
		for _, w := range words {
			if w.Start < windowEnd && w.End > current {
				count++
			}
		}
		wpm := float64(count) / paceWindowSeconds * 60

		var label string
		switch {
		case wpm < paceTooSlowBelowWPM:
			label = "too_slow"
			tooSlow++
		case wpm <= paceTooFastAboveWPM:
			label = "ideal"
			ideal++
		default:
			label = "too_fast"
			tooFast++
		}

		if label != currentLabel {
			if currentLabel != "" {
				segments = append(segments, PaceSegment{
					Start: segmentStart,
					End:   current,
					Label: currentLabel,
					Text:  textInInterval(words, segmentStart, current),
				})
			}
			segmentStart = current
			currentLabel = label
		}
		totalWindows++
	}
	if currentLabel != "" {
		segments = append(segments, PaceSegment{
			Start: segmentStart,
			End:   lastEnd,
			Label: currentLabel,
			Text:  textInInterval(words, segmentStart, lastEnd),
		})
	}

	var tooSlowPct, idealPct, tooFastPct float64
	if totalWindows > 0 {
		tooSlowPct = float64(tooSlow) / float64(totalWindows) * 100
		idealPct = float64(ideal) / float64(totalWindows) * 100
		tooFastPct = float64(tooFast) / float64(totalWindows) * 100
	}

	payload := &PacePayload{
		AvgWPM:     roundTo(avgWPM, 1),
		TooSlowPct: roundTo(tooSlowPct, 1),
		IdealPct:   roundTo(idealPct, 1),
		TooFastPct: roundTo(tooFastPct, 1),
		Segments:   segments,
		Score:      paceScore(idealPct, avgWPM),
	}
	payload.Feedback = paceFeedback(payload)
	return payload, nil
}

// paceScore weighs pace consistency (share of time in the 105-170 WPM
// window, worth 60 points) against average speed accuracy (distance from
// the 120-150 WPM band, worth 40 points, losing 2 per WPM of deviation).
func paceScore(idealPct, avgWPM float64) float64 {
	consistency := idealPct * 0.6

	accuracy := 40.0
	if avgWPM < paceRecommendedMin {
		accuracy = math.Max(0, 40-2*(paceRecommendedMin-avgWPM))
	} else if avgWPM > paceRecommendedMax {
		accuracy = math.Max(0, 40-2*(avgWPM-paceRecommendedMax))
	}

	total := consistency + accuracy
	if total < 0 {
		total = 0
	}
	if total > 100 {
		total = 100
	}
	return roundTo(total, 1)
}

func paceFeedback(p *PacePayload) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Your average pace: %.1f WPM. Aim for %d-%d WPM in interviews.\n", p.AvgWPM, paceRecommendedMin, paceRecommendedMax)
	fmt.Fprintf(&sb, "Too slow %.1f%%, ideal %.1f%%, too fast %.1f%% of the time.", p.TooSlowPct, p.IdealPct, p.TooFastPct)
	return sb.String()
}

// sanitizeWordTimings drops entries without a usable interval and stretches
// zero-duration words by 10ms so windowed overlap checks behave.
func sanitizeWordTimings(words []WordTiming) []WordTiming {
	out := make([]WordTiming, 0, len(words))
	for _, w := range words {
		if w.End <= w.Start {
			w.End = w.Start + 0.01
		}
		out = append(out, w)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	return out
}

func textInInterval(words []WordTiming, start, end float64) string {
	parts := make([]string, 0, 8)
	for _, w := range words {
		if w.End > start && w.Start < end {
			parts = append(parts, w.Word)
		}
	}
	return strings.Join(parts, " ")
}

func roundTo(v float64, places int) float64 {
	factor := math.Pow(10, float64(places))
	return math.Round(v*factor) / factor
}
