package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrTranscriptionFailed wraps any failure of the remote transcription service.
var ErrTranscriptionFailed = errors.New("transcription failed")

// ErrTextExtractionFailed wraps any failure of the remote OCR service.
var ErrTextExtractionFailed = errors.New("text extraction failed")

const defaultRemoteTimeout = 60 * time.Second

// RemoteTranscriber delegates transcription to an HTTP service that accepts
// the raw audio body and answers {"text": "..."}.
type RemoteTranscriber struct {
	endpoint   string
	httpClient *http.Client
}

var _ Transcriber = (*RemoteTranscriber)(nil)

func NewRemoteTranscriber(endpoint string) *RemoteTranscriber {
	return &RemoteTranscriber{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultRemoteTimeout},
	}
}

func (t *RemoteTranscriber) Transcribe(ctx context.Context, audio []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(audio))
	if err != nil {
		return "", fmt.Errorf("build transcription request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTranscriptionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrTranscriptionFailed, resp.StatusCode, string(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTranscriptionFailed, err)
	}
	if out.Text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrTranscriptionFailed)
	}

	return out.Text, nil
}

// RemoteTextReader delegates OCR to an HTTP service with the same contract as
// the transcription one: raw image body in, {"text": "..."} out.
type RemoteTextReader struct {
	endpoint   string
	httpClient *http.Client
}

var _ TextReader = (*RemoteTextReader)(nil)

func NewRemoteTextReader(endpoint string) *RemoteTextReader {
	return &RemoteTextReader{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultRemoteTimeout},
	}
}

func (t *RemoteTextReader) ReadText(ctx context.Context, image []byte, contentType string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(image))
	if err != nil {
		return "", fmt.Errorf("build text extraction request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTextExtractionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%w: status %d: %s", ErrTextExtractionFailed, resp.StatusCode, string(body))
	}

	var out struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTextExtractionFailed, err)
	}
	if out.Text == "" {
		return "", fmt.Errorf("%w: no text recognized", ErrTextExtractionFailed)
	}

	return out.Text, nil
}
