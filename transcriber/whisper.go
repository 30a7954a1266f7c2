package transcriber

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "ytsummarizer/errors"
	"ytsummarizer/models"
)

// Whisper transcribes with a local whisper CLI, for deployments that keep
// speech-to-text on the box instead of calling a hosted engine.
type Whisper struct {
	command string
	model   string
	audio   *AudioFetcher
	logger  *logrus.Logger
}

func NewWhisper(command, model string, audio *AudioFetcher, logger *logrus.Logger) *Whisper {
	return &Whisper{
		command: command,
		model:   model,
		audio:   audio,
		logger:  logger,
	}
}

func (w *Whisper) Transcribe(ctx context.Context, ref models.VideoRef) (string, error) {
	const op = "Whisper.Transcribe"
	logger := w.logger.WithField("video_id", ref.VideoID)

	audioPath, err := w.audio.Fetch(ctx, ref.URL, ref.VideoID)
	if err != nil {
		return "", apperrors.TranscriptionFailed(op, err, "Failed to download audio")
	}
	defer os.Remove(audioPath)

	cmd := exec.CommandContext(ctx, w.command,
		"--model", w.model,
		"--output-format", "txt",
		"--no-timestamps",
		audioPath,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	logger.WithField("model", w.model).Info("Starting local transcription")
	start := time.Now()

	if err := cmd.Run(); err != nil {
		logger.WithError(err).WithField("stderr", stderr.String()).Error("Whisper command failed")
		return "", apperrors.TranscriptionFailed(op, err, "Transcription command failed")
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", apperrors.TranscriptionFailed(op, nil, "Transcription produced no text")
	}

	logger.WithFields(logrus.Fields{
		"duration": time.Since(start).String(),
		"length":   len(text),
	}).Info("Transcription complete")

	return text, nil
}
