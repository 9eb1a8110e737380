package events

import "time"

// Event types emitted by the practice domain.
const (
	TypeSectionSubmitted  = "SECTION_SUBMITTED"
	TypeAnalysisCompleted = "ANALYSIS_COMPLETED"
	TypeReportSynthesized = "REPORT_SYNTHESIZED"
)

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "ANALYSIS_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the common implementation used by the domain constructors.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewSectionSubmitted is emitted after a section answer is stored.
func NewSectionSubmitted(practiceID, userID string, questionIndex int, sectionName string, isComplete bool) BaseEvent {
	return BaseEvent{
		Type: TypeSectionSubmitted,
		Data: map[string]interface{}{
			"practice_id":    practiceID,
			"user_id":        userID,
			"question_index": questionIndex,
			"section_name":   sectionName,
			"is_complete":    isComplete,
		},
		OccurredAt: time.Now(),
	}
}

// NewAnalysisCompleted is emitted after the aggregator settles every
// requested kind for one question.
func NewAnalysisCompleted(practiceID, userID string, questionIndex int, succeededKinds, failedKinds []string, compositeScore float64, practiceFullyAnalyzed bool) BaseEvent {
	return BaseEvent{
		Type: TypeAnalysisCompleted,
		Data: map[string]interface{}{
			"practice_id":             practiceID,
			"user_id":                 userID,
			"question_index":          questionIndex,
			"succeeded_kinds":         succeededKinds,
			"failed_kinds":            failedKinds,
			"composite_score":         compositeScore,
			"practice_fully_analyzed": practiceFullyAnalyzed,
		},
		OccurredAt: time.Now(),
	}
}

// NewReportSynthesized is emitted after a practice report is upserted.
func NewReportSynthesized(practiceID, userID, reportID string, overallScore float64) BaseEvent {
	return BaseEvent{
		Type: TypeReportSynthesized,
		Data: map[string]interface{}{
			"practice_id":   practiceID,
			"user_id":       userID,
			"report_id":     reportID,
			"overall_score": overallScore,
		},
		OccurredAt: time.Now(),
	}
}
