// Package transcriber converts video audio into text through a
// speech-to-text backend. It runs only when the platform has no captions.
package transcriber

import (
	"context"

	"ytsummarizer/models"
)

// Transcriber produces transcript text for a video whose audio must be
// transcribed. Failures are fatal for the request; retries belong to the
// transport layer.
type Transcriber interface {
	Transcribe(ctx context.Context, ref models.VideoRef) (string, error)
}
