package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAnalyzer struct {
	kind string
	fn   func(ctx context.Context, in *Input) (interface{}, error)
}

func (s *stubAnalyzer) Kind() string { return s.kind }

func (s *stubAnalyzer) Analyze(ctx context.Context, in *Input) (interface{}, error) {
	return s.fn(ctx, in)
}

func okAnalyzer(kind string) Analyzer {
	return &stubAnalyzer{kind: kind, fn: func(_ context.Context, _ *Input) (interface{}, error) {
		return map[string]string{"kind": kind}, nil
	}}
}

func failingAnalyzer(kind string, err error) Analyzer {
	return &stubAnalyzer{kind: kind, fn: func(_ context.Context, _ *Input) (interface{}, error) {
		return nil, err
	}}
}

func blockingAnalyzer(kind string) Analyzer {
	return &stubAnalyzer{kind: kind, fn: func(ctx context.Context, _ *Input) (interface{}, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
}

func testInput() *Input {
	return &Input{
		QuestionText:  "Tell me about a time you led a project.",
		FrameworkName: "STAR",
		Sections: []SectionInput{
			{Name: "Situation", Submitted: true, AnswerText: "Our release pipeline kept breaking during a critical launch window and the whole team was blocked on every deploy attempt for two days straight which put the entire quarter commitment at risk for everyone involved in the launch effort overall", TimeSpentSeconds: 60},
			{Name: "Task", Submitted: true, AnswerText: "I had to stabilize the pipeline.", TimeSpentSeconds: 30},
			{Name: "Action", Submitted: false},
			{Name: "Result", Submitted: false},
		},
		AnswerText: "[Situation] Our release pipeline kept breaking. [Task] I had to stabilize the pipeline.",
	}
}

func TestAggregate_AllKindsSettle(t *testing.T) {
	ag := NewAggregator(5*time.Second,
		okAnalyzer(KindContentQuality),
		okAnalyzer(KindStructureCompleteness),
		okAnalyzer(KindPace),
		okAnalyzer(KindPause),
	)

	kinds := []string{KindContentQuality, KindStructureCompleteness, KindPace, KindPause}
	agg, err := ag.Aggregate(context.Background(), testInput(), kinds)
	require.NoError(t, err)

	assert.Len(t, agg.Results, 4)
	assert.ElementsMatch(t, kinds, agg.SucceededKinds)
	assert.Empty(t, agg.FailedKinds)
	for _, res := range agg.Results {
		assert.Equal(t, StatusOK, res.Status)
	}
}

func TestAggregate_PartialFailureDoesNotAbortSiblings(t *testing.T) {
	ag := NewAggregator(5*time.Second,
		okAnalyzer(KindContentQuality),
		failingAnalyzer(KindPace, errors.New("no word timings")),
		okAnalyzer(KindPause),
	)

	agg, err := ag.Aggregate(context.Background(), testInput(), []string{KindContentQuality, KindPace, KindPause})
	require.NoError(t, err)

	require.Len(t, agg.Results, 3)
	assert.ElementsMatch(t, []string{KindContentQuality, KindPause}, agg.SucceededKinds)
	assert.Equal(t, []string{KindPace}, agg.FailedKinds)

	failed := agg.ResultFor(KindPace)
	require.NotNil(t, failed)
	assert.Equal(t, StatusFailed, failed.Status)
	assert.Contains(t, failed.Error, "no word timings")
}

func TestAggregate_TimeoutProducesNeutralPayload(t *testing.T) {
	ag := NewAggregator(50*time.Millisecond,
		okAnalyzer(KindContentQuality),
		okAnalyzer(KindStructureCompleteness),
		okAnalyzer(KindPace),
		blockingAnalyzer(KindPause),
	)

	start := time.Now()
	agg, err := ag.Aggregate(context.Background(), testInput(), []string{
		KindContentQuality, KindStructureCompleteness, KindPace, KindPause,
	})
	require.NoError(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.Len(t, agg.Results, 4)
	timedOut := agg.ResultFor(KindPause)
	require.NotNil(t, timedOut)
	assert.Equal(t, StatusTimeout, timedOut.Status)
	assert.JSONEq(t, `{}`, string(timedOut.Payload))
	assert.Contains(t, timedOut.Error, "timed out")
	assert.ElementsMatch(t, []string{KindContentQuality, KindStructureCompleteness, KindPace}, agg.SucceededKinds)
}

func TestAggregate_UnsupportedKindFailsEntryOnly(t *testing.T) {
	ag := NewAggregator(5*time.Second, okAnalyzer(KindContentQuality))

	agg, err := ag.Aggregate(context.Background(), testInput(), []string{KindContentQuality, "sentiment"})
	require.NoError(t, err)

	require.Len(t, agg.Results, 2)
	unsupported := agg.ResultFor("sentiment")
	require.NotNil(t, unsupported)
	assert.Equal(t, StatusFailed, unsupported.Status)
	assert.Contains(t, unsupported.Error, "unsupported analysis kind")
	assert.Equal(t, []string{KindContentQuality}, agg.SucceededKinds)
}

func TestAggregate_NoKindsRequested(t *testing.T) {
	ag := NewAggregator(time.Second, okAnalyzer(KindPace))

	agg, err := ag.Aggregate(context.Background(), testInput(), nil)
	assert.Nil(t, agg)
	assert.ErrorIs(t, err, ErrNoKindsRequested)
}

func TestAggregate_EmptyAnswer(t *testing.T) {
	ag := NewAggregator(time.Second, okAnalyzer(KindPace))

	in := testInput()
	in.AnswerText = "   \n\t "
	agg, err := ag.Aggregate(context.Background(), in, []string{KindPace})
	assert.Nil(t, agg)
	assert.ErrorIs(t, err, ErrEmptyAnswer)
}

func TestAggregate_PrefersContentQualityJudgment(t *testing.T) {
	judged := &ContentQualityPayload{
		Sections: []ContentQualitySection{
			{Name: "Situation", Quality: QualityGood},
			{Name: "Task", Quality: QualityGood},
			{Name: "Action", Quality: QualityMissing},
			{Name: "Result", Quality: QualityMissing},
		},
	}
	analyzer := &stubAnalyzer{kind: KindContentQuality, fn: func(_ context.Context, _ *Input) (interface{}, error) {
		return judged, nil
	}}
	ag := NewAggregator(time.Second, analyzer)

	agg, err := ag.Aggregate(context.Background(), testInput(), []string{KindContentQuality})
	require.NoError(t, err)

	require.Len(t, agg.SectionQualities, 4)
	assert.Equal(t, QualityGood, agg.SectionQualities[1].Quality)

	// coverage 2/4*50 = 25, quality (100+100+0+0)/4/100*50 = 25
	assert.InDelta(t, 50.0, agg.CompositeScore, 0.001)
}

func TestAggregate_FallsBackToHeuristicQualities(t *testing.T) {
	ag := NewAggregator(time.Second, failingAnalyzer(KindContentQuality, errors.New("model unavailable")))

	agg, err := ag.Aggregate(context.Background(), testInput(), []string{KindContentQuality})
	require.NoError(t, err)

	// Heuristic: Situation has >= 40 words (good), Task is short (partial).
	require.Len(t, agg.SectionQualities, 4)
	assert.Equal(t, QualityGood, agg.SectionQualities[0].Quality)
	assert.Equal(t, QualityPartial, agg.SectionQualities[1].Quality)
	assert.Equal(t, QualityMissing, agg.SectionQualities[2].Quality)

	// coverage 2/4*50 = 25, quality (100+50+0+0)/4/100*50 = 18.75
	assert.InDelta(t, 43.75, agg.CompositeScore, 0.001)
}

func TestCompositeScore(t *testing.T) {
	sections := []SectionInput{
		{Name: "Context", Submitted: true},
		{Name: "Theory", Submitted: true},
		{Name: "Example", Submitted: true},
		{Name: "Trade-offs", Submitted: false},
		{Name: "Decision", Submitted: false},
	}
	qualities := []SectionQuality{
		{Name: "Context", Quality: QualityGood},
		{Name: "Theory", Quality: QualityGood},
		{Name: "Example", Quality: QualityPartial},
		{Name: "Trade-offs", Quality: QualityMissing},
		{Name: "Decision", Quality: QualityMissing},
	}

	// coverage 3/5*50 = 30, quality (100+100+50)/5/100*50 = 25
	assert.InDelta(t, 55.0, CompositeScore(sections, qualities), 0.001)
}

func TestCompositeScore_EmptySections(t *testing.T) {
	assert.Zero(t, CompositeScore(nil, nil))
}

func TestClassifySections(t *testing.T) {
	long := make([]byte, 0)
	for i := 0; i < 45; i++ {
		long = append(long, []byte("word ")...)
	}
	sections := []SectionInput{
		{Name: "Situation", Submitted: true, AnswerText: string(long)},
		{Name: "Task", Submitted: true, AnswerText: "short answer"},
		{Name: "Action", Submitted: true, AnswerText: "   "},
		{Name: "Result", Submitted: false, AnswerText: "ignored because never submitted"},
	}

	qualities := ClassifySections(sections)
	require.Len(t, qualities, 4)
	assert.Equal(t, QualityGood, qualities[0].Quality)
	assert.Equal(t, QualityPartial, qualities[1].Quality)
	assert.Equal(t, QualityMissing, qualities[2].Quality)
	assert.Equal(t, QualityMissing, qualities[3].Quality)
}

func TestResultFor_Unrequested(t *testing.T) {
	agg := &Aggregate{Results: []Result{{Kind: KindPace, Status: StatusOK, Payload: json.RawMessage(`{}`)}}}
	assert.Nil(t, agg.ResultFor(KindPause))
	assert.NotNil(t, agg.ResultFor(KindPace))
}
