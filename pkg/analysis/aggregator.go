package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

var (
	ErrNoKindsRequested = errors.New("no analysis kinds requested")
	ErrEmptyAnswer      = errors.New("answer text is empty")
)

// Aggregator fans requested analysis kinds out as concurrent sub-tasks, each
// bounded by its own timeout, and joins them wait-for-all: every kind
// settles (ok, failed or timeout) before the aggregate is composed. Partial
// failure never fails the whole call.
type Aggregator struct {
	analyzers      map[string]Analyzer
	perKindTimeout time.Duration
}

func NewAggregator(perKindTimeout time.Duration, analyzers ...Analyzer) *Aggregator {
	byKind := make(map[string]Analyzer, len(analyzers))
	for _, a := range analyzers {
		byKind[a.Kind()] = a
	}
	return &Aggregator{
		analyzers:      byKind,
		perKindTimeout: perKindTimeout,
	}
}

// SupportedKinds returns the registered kinds in no particular order.
func (ag *Aggregator) SupportedKinds() []string {
	kinds := make([]string, 0, len(ag.analyzers))
	for k := range ag.analyzers {
		kinds = append(kinds, k)
	}
	return kinds
}

type settled struct {
	index  int
	result Result
}

// Aggregate runs every requested kind concurrently over the same input.
// It fails outright only for zero requested kinds or an empty answer;
// per-kind errors and timeouts degrade the aggregate, never abort siblings.
func (ag *Aggregator) Aggregate(ctx context.Context, in *Input, requestedKinds []string) (*Aggregate, error) {
	if len(requestedKinds) == 0 {
		return nil, ErrNoKindsRequested
	}
	if strings.TrimSpace(in.AnswerText) == "" {
		return nil, ErrEmptyAnswer
	}

	results := make([]Result, len(requestedKinds))
	ch := make(chan settled, len(requestedKinds))
	var wg sync.WaitGroup

	for i, kind := range requestedKinds {
		analyzer, ok := ag.analyzers[kind]
		if !ok {
			results[i] = Result{
				Kind:   kind,
				Status: StatusFailed,
				Error:  fmt.Sprintf("unsupported analysis kind %q (supported: %s)", kind, strings.Join(ag.SupportedKinds(), ", ")),
			}
			continue
		}

		wg.Add(1)
		go func(index int, a Analyzer) {
			defer wg.Done()
			ch <- settled{index: index, result: ag.runOne(ctx, a, in)}
		}(i, analyzer)
	}

	wg.Wait()
	close(ch)
	for s := range ch {
		results[s.index] = s.result
	}

	qualities := ag.sectionQualities(results, in)

	agg := &Aggregate{
		Results:          results,
		RequestedKinds:   append([]string(nil), requestedKinds...),
		SectionQualities: qualities,
		CompositeScore:   CompositeScore(in.Sections, qualities),
		ComputedAt:       time.Now().UTC(),
	}
	for _, res := range results {
		if res.Status == StatusOK {
			agg.SucceededKinds = append(agg.SucceededKinds, res.Kind)
		} else {
			agg.FailedKinds = append(agg.FailedKinds, res.Kind)
		}
	}
	return agg, nil
}

// runOne executes a single analyzer under its own deadline. The timer
// cancels only this kind's work; the analyzer observes ctx and stops
// promptly instead of leaking past the timeout.
func (ag *Aggregator) runOne(parent context.Context, a Analyzer, in *Input) Result {
	ctx, cancel := context.WithTimeout(parent, ag.perKindTimeout)
	defer cancel()

	type outcome struct {
		payload interface{}
		err     error
	}
	done := make(chan outcome, 1)
	go func() {
		payload, err := a.Analyze(ctx, in)
		done <- outcome{payload: payload, err: err}
	}()

	select {
	case <-ctx.Done():
		return Result{
			Kind:    a.Kind(),
			Status:  StatusTimeout,
			Payload: neutralPayload(),
			Error:   fmt.Sprintf("analysis timed out after %s", ag.perKindTimeout),
		}
	case out := <-done:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) {
				return Result{
					Kind:    a.Kind(),
					Status:  StatusTimeout,
					Payload: neutralPayload(),
					Error:   fmt.Sprintf("analysis timed out after %s", ag.perKindTimeout),
				}
			}
			return Result{
				Kind:   a.Kind(),
				Status: StatusFailed,
				Error:  out.err.Error(),
			}
		}
		payload, err := json.Marshal(out.payload)
		if err != nil {
			return Result{
				Kind:   a.Kind(),
				Status: StatusFailed,
				Error:  fmt.Sprintf("encode payload: %v", err),
			}
		}
		return Result{
			Kind:    a.Kind(),
			Status:  StatusOK,
			Payload: payload,
		}
	}
}

func neutralPayload() json.RawMessage {
	return json.RawMessage(`{}`)
}

// sectionQualities prefers the content-quality dimension's judgment when it
// succeeded; otherwise it falls back to the deterministic heuristic so the
// composite score is always computable.
func (ag *Aggregator) sectionQualities(results []Result, in *Input) []SectionQuality {
	for _, res := range results {
		if res.Kind != KindContentQuality || res.Status != StatusOK {
			continue
		}
		var payload ContentQualityPayload
		if err := json.Unmarshal(res.Payload, &payload); err == nil && len(payload.Sections) == len(in.Sections) {
			qualities := make([]SectionQuality, len(payload.Sections))
			for i, s := range payload.Sections {
				qualities[i] = SectionQuality{Name: s.Name, Quality: s.Quality}
			}
			return qualities
		}
	}
	return ClassifySections(in.Sections)
}

// CompositeScore reproduces the fixed weighting rule: section coverage is
// worth 50 points (submitted/total * 50) and content quality the other 50
// (good=100, partial=50, missing=0, averaged across ALL framework sections,
// then /100 * 50).
func CompositeScore(sections []SectionInput, qualities []SectionQuality) float64 {
	total := len(sections)
	if total == 0 {
		return 0
	}

	submitted := 0
	for _, s := range sections {
		if s.Submitted {
			submitted++
		}
	}
	coverage := float64(submitted) / float64(total) * 50

	qualitySum := 0.0
	for _, q := range qualities {
		switch q.Quality {
		case QualityGood:
			qualitySum += 100
		case QualityPartial:
			qualitySum += 50
		}
	}
	qualityAvg := qualitySum / float64(total)
	quality := qualityAvg / 100 * 50

	return coverage + quality
}
