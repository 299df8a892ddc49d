// Package ingest defines the ports for turning non-text inputs into text the
// extraction pipeline can consume. The engines behind them are external
// collaborators.
package ingest

import "context"

// Transcriber converts spoken audio into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, contentType string) (string, error)
}

// TextReader extracts text from an image, e.g. a photographed receipt.
type TextReader interface {
	ReadText(ctx context.Context, image []byte, contentType string) (string, error)
}
