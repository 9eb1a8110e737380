package transcriber

import (
	"context"
	"errors"
)

var ErrEmptyAudio = errors.New("empty audio file")

// Word is a single word with its start and end offsets in seconds.
type Word struct {
	Word  string  `json:"word"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Transcription is the normalized result of a speech-to-text call.
type Transcription struct {
	Text            string  `json:"text"`
	Language        string  `json:"language"`
	DurationSeconds float64 `json:"duration_seconds"`
	Words           []Word  `json:"words"`
	WordCount       int     `json:"word_count"`
	ModelIdentifier string  `json:"model_identifier"`
	LatencyMs       int64   `json:"latency_ms"`
}

// Transcriber converts recorded audio into text with word-level timestamps.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename, language string) (*Transcription, error)
}
