package analysis

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// timedWords generates n words evenly spaced at the given rate.
func timedWords(n int, wpm float64) []WordTiming {
	interval := 60.0 / wpm
	words := make([]WordTiming, n)
	for i := 0; i < n; i++ {
		start := float64(i) * interval
		words[i] = WordTiming{
			Word:  fmt.Sprintf("word%d", i),
			Start: start,
			End:   start + interval*0.8,
		}
	}
	return words
}

func TestPaceAnalyzer_IdealPace(t *testing.T) {
	in := testInput()
	in.Words = timedWords(60, 135)

	payload, err := NewPaceAnalyzer().Analyze(context.Background(), in)
	require.NoError(t, err)

	pace, ok := payload.(*PacePayload)
	require.True(t, ok)
	assert.InDelta(t, 135, pace.AvgWPM, 5)
	assert.InDelta(t, 100, pace.IdealPct, 0.1)
	// Full consistency (60) plus full accuracy (40) inside the 120-150 band.
	assert.InDelta(t, 100, pace.Score, 0.1)
}

func TestPaceAnalyzer_TooFastLosesAccuracyPoints(t *testing.T) {
	in := testInput()
	in.Words = timedWords(80, 200)

	payload, err := NewPaceAnalyzer().Analyze(context.Background(), in)
	require.NoError(t, err)

	pace := payload.(*PacePayload)
	assert.Greater(t, pace.AvgWPM, 170.0)
	assert.Greater(t, pace.TooFastPct, 50.0)
	// 50 WPM over the 150 ceiling wipes out all 40 accuracy points.
	assert.Less(t, pace.Score, 65.0)
}

func TestPaceAnalyzer_NoWordsErrors(t *testing.T) {
	in := testInput()
	in.Words = nil

	_, err := NewPaceAnalyzer().Analyze(context.Background(), in)
	assert.ErrorIs(t, err, ErrNoWordTimings)
}

func TestPaceScoreBounds(t *testing.T) {
	assert.InDelta(t, 100, paceScore(100, 135), 0.001)
	assert.InDelta(t, 40, paceScore(0, 135), 0.001)
	assert.InDelta(t, 60, paceScore(100, 250), 0.001)
	assert.InDelta(t, 38, paceScore(0, 119), 0.001)
}

func TestSanitizeWordTimings(t *testing.T) {
	words := sanitizeWordTimings([]WordTiming{
		{Word: "b", Start: 1.0, End: 1.0},
		{Word: "a", Start: 0.0, End: 0.4},
	})
	require.Len(t, words, 2)
	assert.Equal(t, "a", words[0].Word)
	assert.Greater(t, words[1].End, words[1].Start)
}
