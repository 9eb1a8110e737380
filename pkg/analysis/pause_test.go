package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wordsWithGaps(gaps []float64) []WordTiming {
	words := make([]WordTiming, 0, len(gaps)+1)
	cursor := 0.0
	for i := 0; i <= len(gaps); i++ {
		words = append(words, WordTiming{Word: "w", Start: cursor, End: cursor + 0.3})
		cursor += 0.3
		if i < len(gaps) {
			cursor += gaps[i]
		}
	}
	return words
}

func TestPauseAnalyzer_ClassifiesPauses(t *testing.T) {
	// Mostly strategic gaps with one clearly long outlier.
	gaps := []float64{0.5, 0.6, 0.5, 0.4, 0.5, 0.6, 0.5, 0.4, 0.5, 4.5}
	in := testInput()
	in.Words = wordsWithGaps(gaps)

	payload, err := NewPauseAnalyzer().Analyze(context.Background(), in)
	require.NoError(t, err)

	pause, ok := payload.(*PausePayload)
	require.True(t, ok)
	assert.Equal(t, len(gaps), pause.TotalPauses)
	assert.Greater(t, pause.Distribution[pauseLabelStrategic], 80.0)
	assert.Greater(t, pause.Distribution[pauseLabelLong], 0.0)
	assert.NotEmpty(t, pause.Overview)
	assert.NotEmpty(t, pause.Details)
}

func TestPauseAnalyzer_NoGapsIsHealthy(t *testing.T) {
	in := testInput()
	in.Words = []WordTiming{
		{Word: "a", Start: 0, End: 0.5},
		{Word: "b", Start: 0.5, End: 1.0},
	}

	payload, err := NewPauseAnalyzer().Analyze(context.Background(), in)
	require.NoError(t, err)

	pause := payload.(*PausePayload)
	assert.Zero(t, pause.TotalPauses)
	assert.Equal(t, "Good pause management overall", pause.Overview)
}

func TestPauseAnalyzer_NoWordsErrors(t *testing.T) {
	in := testInput()
	in.Words = nil

	_, err := NewPauseAnalyzer().Analyze(context.Background(), in)
	assert.ErrorIs(t, err, ErrNoWordTimings)
}

func TestPauseScoreRubric(t *testing.T) {
	tests := []struct {
		name string
		dist map[string]float64
		want int
	}{
		{"excellent", map[string]float64{pauseLabelStrategic: 30, pauseLabelRushed: 5, pauseLabelLong: 5}, 5},
		{"good", map[string]float64{pauseLabelStrategic: 15, pauseLabelRushed: 15, pauseLabelLong: 10}, 4},
		{"fair", map[string]float64{pauseLabelStrategic: 6, pauseLabelRushed: 30, pauseLabelLong: 18}, 3},
		{"poor", map[string]float64{pauseLabelStrategic: 2, pauseLabelRushed: 40, pauseLabelLong: 25}, 2},
		{"very poor", map[string]float64{pauseLabelLong: 40}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pauseScore(tt.dist))
		})
	}
}

func TestQuantile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	assert.InDelta(t, 2.0, quantile(sorted, 0.25), 0.001)
	assert.InDelta(t, 3.0, quantile(sorted, 0.5), 0.001)
	assert.InDelta(t, 4.0, quantile(sorted, 0.75), 0.001)
	assert.Zero(t, quantile(nil, 0.5))
}
