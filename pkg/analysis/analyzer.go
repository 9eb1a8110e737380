package analysis

import (
	"context"
	"encoding/json"
	"time"
)

// Analysis kinds. Each kind is an isolated unit of work over the same answer
// input; kinds share no mutable state and never block one another.
const (
	KindContentQuality        = "content_quality"
	KindStructureCompleteness = "structure_completeness"
	KindPace                  = "pace"
	KindPause                 = "pause"
)

// Result statuses.
const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusTimeout = "timeout"
)

// Per-section quality classification. Sections never submitted are always
// QualityMissing; quality judgment applies to submitted text only.
const (
	QualityGood    = "good"
	QualityPartial = "partial"
	QualityMissing = "missing"
)

// SectionInput is one framework section of the answer as the aggregator sees
// it: either submitted with text and recorded time, or absent.
type SectionInput struct {
	Name             string
	Submitted        bool
	AnswerText       string
	TimeSpentSeconds int
}

// WordTiming is an optional word-level timestamp from the transcription
// collaborator, consumed by the pause analyzer.
type WordTiming struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Input is the combined answer under analysis. AnswerText joins the
// submitted sections in framework order, each marked with [Section Name].
type Input struct {
	QuestionText    string
	StructureHint   string
	FrameworkName   string
	Sections        []SectionInput
	AnswerText      string
	DurationSeconds float64
	Words           []WordTiming
}

// SubmittedCount returns how many sections carry a submitted answer.
func (in *Input) SubmittedCount() int {
	n := 0
	for _, s := range in.Sections {
		if s.Submitted {
			n++
		}
	}
	return n
}

// Analyzer is one independent analysis dimension.
type Analyzer interface {
	Kind() string
	Analyze(ctx context.Context, in *Input) (interface{}, error)
}

// SectionQuality is a per-section judgment produced by the content-quality
// dimension (or its heuristic fallback) and consumed by the composite score.
type SectionQuality struct {
	Name    string `json:"name"`
	Quality string `json:"quality"`
}

// Result is the outcome of one dimension: ok, failed or timeout. Payload is
// opaque structured data; on timeout it holds a neutral default.
type Result struct {
	Kind    string          `json:"kind"`
	Status  string          `json:"status"`
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// Aggregate is the merged report of all requested dimensions plus the
// composite score.
type Aggregate struct {
	Results          []Result         `json:"results"`
	RequestedKinds   []string         `json:"requested_kinds"`
	SucceededKinds   []string         `json:"succeeded_kinds"`
	FailedKinds      []string         `json:"failed_kinds"`
	SectionQualities []SectionQuality `json:"section_qualities"`
	CompositeScore   float64          `json:"composite_score"`
	ComputedAt       time.Time        `json:"computed_at"`
}

// ResultFor returns the entry for a kind, or nil when it was not requested.
func (a *Aggregate) ResultFor(kind string) *Result {
	for i := range a.Results {
		if a.Results[i].Kind == kind {
			return &a.Results[i]
		}
	}
	return nil
}
