package transcriber

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// AudioFetcher downloads a video's audio stream to a local file with an
// external downloader (yt-dlp by default). Both backends need the audio on
// disk before transcription.
type AudioFetcher struct {
	command string
	tempDir string
	logger  *logrus.Logger
}

func NewAudioFetcher(command, tempDir string, logger *logrus.Logger) (*AudioFetcher, error) {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("create temp directory: %w", err)
	}
	return &AudioFetcher{command: command, tempDir: tempDir, logger: logger}, nil
}

// Fetch downloads the audio for url and returns the file path. The caller
// removes the file when done.
func (f *AudioFetcher) Fetch(ctx context.Context, url, videoID string) (string, error) {
	outPath := filepath.Join(f.tempDir, videoID+".m4a")

	cmd := exec.CommandContext(ctx, f.command,
		"--quiet",
		"--format", "bestaudio[ext=m4a]/bestaudio",
		"--output", outPath,
		url,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	f.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"command":  f.command,
	}).Debug("Downloading audio")

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("audio download failed: %w (stderr: %s)", err, stderr.String())
	}

	if _, err := os.Stat(outPath); err != nil {
		return "", fmt.Errorf("audio file not produced: %w", err)
	}
	return outPath, nil
}
