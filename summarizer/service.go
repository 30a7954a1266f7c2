// Package summarizer turns a transcript into a structured summary,
// splitting long transcripts into bounded chunks and merging the per-chunk
// results with a second model pass.
package summarizer

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	apperrors "ytsummarizer/errors"
	"ytsummarizer/llm"
	"ytsummarizer/models"
)

// Chunk is a bounded slice of transcript text plus its summary. It only
// lives for the duration of one summarization run.
type Chunk struct {
	Index       int
	SourceText  string
	SummaryText string
}

type Config struct {
	// ChunkLimit is the maximum chunk size in characters.
	ChunkLimit int
	// Concurrency bounds the number of chunk calls in flight at once.
	Concurrency int
}

type Service struct {
	client llm.Client
	config Config
	logger *logrus.Logger
}

func NewService(client llm.Client, config Config, logger *logrus.Logger) *Service {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	return &Service{client: client, config: config, logger: logger}
}

// summaryPayload is the JSON shape both prompts demand from the model.
type summaryPayload struct {
	Title    string           `json:"title"`
	Sections []models.Section `json:"sections"`
}

// Summarize produces a Summary for the transcript. Any chunk failure fails
// the whole request; there is no partial-summary path.
func (s *Service) Summarize(ctx context.Context, t models.Transcript) (*models.Summary, error) {
	const op = "Summarizer.Summarize"
	logger := s.logger.WithField("video_id", t.VideoID)

	text := strings.TrimSpace(t.Text)
	if text == "" {
		return nil, apperrors.EmptyTranscript(op, "Transcript is empty")
	}

	chunks := SplitChunks(text, s.config.ChunkLimit)
	logger.WithFields(logrus.Fields{
		"transcript_length": len(text),
		"chunks":            len(chunks),
	}).Info("Summarizing transcript")

	results := make([]Chunk, len(chunks))
	payloads := make([]*summaryPayload, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	for i, chunkText := range chunks {
		i, chunkText := i, chunkText
		g.Go(func() error {
			payload, err := s.summarizeChunk(gctx, chunkText)
			if err != nil {
				return err
			}
			// Results are positional: chunk order in the merge input is
			// by original index, never by completion time.
			payloads[i] = payload
			results[i] = Chunk{
				Index:       i,
				SourceText:  chunkText,
				SummaryText: renderPayload(payload),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var payload *summaryPayload
	if len(chunks) == 1 {
		// Single chunk: its own response already has the summary shape.
		payload = payloads[0]
	} else {
		var err error
		payload, err = s.mergeChunks(ctx, results)
		if err != nil {
			return nil, err
		}
	}

	return &models.Summary{
		VideoID:   t.VideoID,
		Title:     payload.Title,
		Sections:  payload.Sections,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *Service) summarizeChunk(ctx context.Context, chunkText string) (*summaryPayload, error) {
	const op = "Summarizer.summarizeChunk"

	raw, err := s.client.Complete(ctx, chunkSummarizerPrompt, "<chunk>\n\n"+chunkText+"\n\n</chunk>")
	if err != nil {
		return nil, apperrors.SummarizationFailed(op, err, "Chunk summarization call failed")
	}
	return s.parsePayload(op, raw)
}

func (s *Service) mergeChunks(ctx context.Context, chunks []Chunk) (*summaryPayload, error) {
	const op = "Summarizer.mergeChunks"

	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = c.SummaryText
	}
	input := "<summaries>\n\n" + strings.Join(parts, "\n\n") + "\n\n</summaries>"

	raw, err := s.client.Complete(ctx, summariesMergerPrompt, input)
	if err != nil {
		return nil, apperrors.SummarizationFailed(op, err, "Merge call failed")
	}
	return s.parsePayload(op, raw)
}

func (s *Service) parsePayload(op, raw string) (*summaryPayload, error) {
	var payload summaryPayload
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &payload); err != nil {
		return nil, apperrors.MalformedSummary(op, err, "Model response is not valid summary JSON")
	}
	if payload.Title == "" || len(payload.Sections) == 0 {
		return nil, apperrors.MalformedSummary(op, nil, "Model response is missing title or sections")
	}
	return &payload, nil
}

// renderPayload flattens a chunk's structured summary into the markdown
// fed to the merge pass.
func renderPayload(p *summaryPayload) string {
	var sb strings.Builder
	sb.WriteString("## ")
	sb.WriteString(p.Title)
	for _, sec := range p.Sections {
		if sec.Heading != "" && sec.Heading != p.Title {
			sb.WriteString("\n### ")
			sb.WriteString(sec.Heading)
		}
		for _, b := range sec.Bullets {
			sb.WriteString("\n- ")
			sb.WriteString(b)
		}
	}
	return sb.String()
}
