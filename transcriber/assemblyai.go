package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "ytsummarizer/errors"
	"ytsummarizer/models"
)

const assemblyAIBaseURL = "https://api.assemblyai.com/v2"

// AssemblyAI transcribes through the AssemblyAI REST API: upload the audio
// bytes, create a transcript job, poll until it completes.
type AssemblyAI struct {
	apiKey   string
	baseURL  string
	http     *http.Client
	audio    *AudioFetcher
	logger   *logrus.Logger
	pollWait time.Duration
}

func NewAssemblyAI(apiKey string, audio *AudioFetcher, pollWait time.Duration, logger *logrus.Logger) *AssemblyAI {
	if pollWait <= 0 {
		pollWait = 3 * time.Second
	}
	return &AssemblyAI{
		apiKey:   apiKey,
		baseURL:  assemblyAIBaseURL,
		http:     &http.Client{Timeout: 5 * time.Minute},
		audio:    audio,
		logger:   logger,
		pollWait: pollWait,
	}
}

type uploadResponse struct {
	UploadURL string `json:"upload_url"`
}

type transcriptRequest struct {
	AudioURL   string `json:"audio_url"`
	Punctuate  bool   `json:"punctuate"`
	FormatText bool   `json:"format_text"`
}

type transcriptResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Text   string `json:"text"`
	Error  string `json:"error"`
}

func (a *AssemblyAI) Transcribe(ctx context.Context, ref models.VideoRef) (string, error) {
	const op = "AssemblyAI.Transcribe"
	logger := a.logger.WithField("video_id", ref.VideoID)

	audioPath, err := a.audio.Fetch(ctx, ref.URL, ref.VideoID)
	if err != nil {
		return "", apperrors.TranscriptionFailed(op, err, "Failed to download audio")
	}
	defer os.Remove(audioPath)

	uploadURL, err := a.upload(ctx, audioPath)
	if err != nil {
		return "", apperrors.TranscriptionFailed(op, err, "Failed to upload audio")
	}

	jobID, err := a.createJob(ctx, uploadURL)
	if err != nil {
		return "", apperrors.TranscriptionFailed(op, err, "Failed to create transcription job")
	}
	logger.WithField("job_id", jobID).Info("Transcription job submitted")

	start := time.Now()
	text, err := a.poll(ctx, jobID)
	if err != nil {
		return "", apperrors.TranscriptionFailed(op, err, "Transcription failed")
	}
	logger.WithField("duration", time.Since(start).String()).Info("Transcription complete")

	return strings.TrimSpace(text), nil
}

func (a *AssemblyAI) upload(ctx context.Context, audioPath string) (string, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/upload", file)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/octet-stream")

	var out uploadResponse
	if err := a.do(req, &out); err != nil {
		return "", err
	}
	if out.UploadURL == "" {
		return "", fmt.Errorf("upload returned no URL")
	}
	return out.UploadURL, nil
}

func (a *AssemblyAI) createJob(ctx context.Context, audioURL string) (string, error) {
	payload, err := json.Marshal(transcriptRequest{
		AudioURL:   audioURL,
		Punctuate:  true,
		FormatText: true,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/transcript", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.apiKey)
	req.Header.Set("Content-Type", "application/json")

	var out transcriptResponse
	if err := a.do(req, &out); err != nil {
		return "", err
	}
	if out.ID == "" {
		return "", fmt.Errorf("transcript job returned no ID")
	}
	return out.ID, nil
}

func (a *AssemblyAI) poll(ctx context.Context, jobID string) (string, error) {
	ticker := time.NewTicker(a.pollWait)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/transcript/"+jobID, nil)
		if err != nil {
			return "", err
		}
		req.Header.Set("Authorization", a.apiKey)

		var out transcriptResponse
		if err := a.do(req, &out); err != nil {
			return "", err
		}

		switch out.Status {
		case "completed":
			return out.Text, nil
		case "error":
			return "", fmt.Errorf("remote engine error: %s", out.Error)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-ticker.C:
		}
	}
}

func (a *AssemblyAI) do(req *http.Request, out any) error {
	resp, err := a.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("assemblyai returned %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}
