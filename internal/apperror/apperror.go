package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// AppError is the error type the error middleware knows how to render.
// Code is the HTTP status; Details carries the offending field/value and,
// where applicable, the set of acceptable values.
type AppError struct {
	Code    int
	Kind    string
	Message string
	Details map[string]interface{}
}

func (e *AppError) Error() string {
	return e.Message
}

// AsAppError unwraps err into an *AppError if one is in the chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// NewInvalidSection rejects a section name outside the question's framework.
// User-recoverable: the valid set is enumerated in the details.
func NewInvalidSection(section, frameworkName string, validSections []string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    "INVALID_SECTION",
		Message: fmt.Sprintf("section %q is not part of the %s framework (valid: %s)", section, frameworkName, strings.Join(validSections, ", ")),
		Details: map[string]interface{}{
			"section_name":   section,
			"framework":      frameworkName,
			"valid_sections": validSections,
		},
	}
}

// NewQuestionIndexOutOfRange rejects a question index outside the practice's
// question list.
func NewQuestionIndexOutOfRange(index, questionCount int) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    "QUESTION_INDEX_OUT_OF_RANGE",
		Message: fmt.Sprintf("question index %d is out of range (valid: 0..%d)", index, questionCount-1),
		Details: map[string]interface{}{
			"question_index": index,
			"valid_range":    fmt.Sprintf("0..%d", questionCount-1),
		},
	}
}

// NewEmptyAnswer rejects an analysis request when no section text exists yet.
// Analysis must not silently return an empty-but-successful result.
func NewEmptyAnswer(practiceID string, questionIndex int) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    "EMPTY_ANSWER",
		Message: fmt.Sprintf("no sections submitted yet for question %d of practice %s", questionIndex, practiceID),
		Details: map[string]interface{}{
			"practice_id":    practiceID,
			"question_index": questionIndex,
		},
	}
}

// NewNoKindsRequested rejects an analysis call with an empty kind list.
func NewNoKindsRequested(supportedKinds []string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    "NO_ANALYSIS_KINDS",
		Message: "at least one analysis kind must be requested",
		Details: map[string]interface{}{
			"supported_kinds": supportedKinds,
		},
	}
}

// NewNotFound covers missing practices, questions and reports.
func NewNotFound(resource, id string) *AppError {
	return &AppError{
		Code:    http.StatusNotFound,
		Kind:    "NOT_FOUND",
		Message: fmt.Sprintf("%s %s not found", resource, id),
		Details: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewTranscriptionFailed propagates a transcription collaborator failure as a
// section-submission failure instead of silently substituting empty text.
func NewTranscriptionFailed(cause error) *AppError {
	return &AppError{
		Code:    http.StatusBadGateway,
		Kind:    "TRANSCRIPTION_FAILED",
		Message: fmt.Sprintf("audio transcription failed: %v", cause),
		Details: map[string]interface{}{
			"cause": cause.Error(),
		},
	}
}

// NewReportSynthesisFailure fires only when neither the scoring collaborator
// nor the heuristic fallback can produce a report (zero question attempts).
func NewReportSynthesisFailure(practiceID, reason string) *AppError {
	return &AppError{
		Code:    http.StatusUnprocessableEntity,
		Kind:    "REPORT_SYNTHESIS_FAILURE",
		Message: fmt.Sprintf("cannot synthesize report for practice %s: %s", practiceID, reason),
		Details: map[string]interface{}{
			"practice_id": practiceID,
			"reason":      reason,
		},
	}
}

// NewStorage wraps persistence failures. Nothing in this service can recover
// from them, so they surface as a generic storage error.
func NewStorage(cause error) *AppError {
	return &AppError{
		Code:    http.StatusInternalServerError,
		Kind:    "STORAGE_ERROR",
		Message: "storage operation failed",
		Details: map[string]interface{}{
			"cause": cause.Error(),
		},
	}
}
