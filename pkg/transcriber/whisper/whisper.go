package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"ai-interview-be/pkg/transcriber"
)

// WhisperTranscriber calls the OpenAI transcription endpoint with
// verbose_json output and word-level timestamp granularity.
type WhisperTranscriber struct {
	BaseURL   string
	APIKey    string
	ModelName string
	Client    *http.Client
}

var _ transcriber.Transcriber = &WhisperTranscriber{}

func NewWhisperTranscriber(baseURL, apiKey, modelName string, timeout time.Duration) *WhisperTranscriber {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if modelName == "" {
		modelName = "whisper-1"
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &WhisperTranscriber{
		BaseURL:   baseURL,
		APIKey:    apiKey,
		ModelName: modelName,
		Client: &http.Client{
			Timeout: timeout,
		},
	}
}

type verboseTranscript struct {
	Task     string  `json:"task"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
	Text     string  `json:"text"`
	Words    []struct {
		Word  string  `json:"word"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
	} `json:"words"`
}

type apiErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audio []byte, filename, language string) (*transcriber.Transcription, error) {
	if len(audio) == 0 {
		return nil, transcriber.ErrEmptyAudio
	}
	if language == "" {
		language = "en"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", normalizeFilename(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	_ = writer.WriteField("model", t.ModelName)
	_ = writer.WriteField("language", language)
	_ = writer.WriteField("response_format", "verbose_json")
	_ = writer.WriteField("timestamp_granularities[]", "word")
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.BaseURL+"/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+t.APIKey)

	start := time.Now()
	resp, err := t.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transcription request failed: %w", err)
	}
	defer resp.Body.Close()

	latencyMs := time.Since(start).Milliseconds()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr apiErrorResponse
		if jsonErr := json.Unmarshal(respBody, &apiErr); jsonErr == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("whisper api error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("whisper api error (%d): %s", resp.StatusCode, string(respBody))
	}

	var transcript verboseTranscript
	if err := json.Unmarshal(respBody, &transcript); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}

	result := &transcriber.Transcription{
		Text:            transcript.Text,
		Language:        transcript.Language,
		DurationSeconds: transcript.Duration,
		WordCount:       len(strings.Fields(transcript.Text)),
		ModelIdentifier: t.ModelName,
		LatencyMs:       latencyMs,
	}
	for _, w := range transcript.Words {
		result.Words = append(result.Words, transcriber.Word{
			Word:  w.Word,
			Start: w.Start,
			End:   w.End,
		})
	}
	return result, nil
}

func normalizeFilename(filename string) string {
	if filename == "" {
		return "answer.mp3"
	}
	if filepath.Ext(filename) == "" {
		return filename + ".mp3"
	}
	return filename
}
