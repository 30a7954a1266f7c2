package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"ytsummarizer/errors"
	"ytsummarizer/models"
)

// fakeLLM records every call and answers with canned responses keyed by
// system prompt, distinguishing chunk calls from merge calls.
type fakeLLM struct {
	mu         sync.Mutex
	chunkCalls []string
	mergeCalls []string
	chunkResp  func(user string) (string, error)
	mergeResp  func(user string) (string, error)
}

func validChunkResponse(user string) (string, error) {
	return `{"title": "Chunk Title", "sections": [{"heading": "Points", "bullets": ["a point"]}]}`, nil
}

func validMergeResponse(user string) (string, error) {
	return `{"title": "Merged Title", "sections": [{"heading": "Theme", "bullets": ["takeaway one", "takeaway two"]}]}`, nil
}

func (f *fakeLLM) Complete(_ context.Context, system, user string) (string, error) {
	f.mu.Lock()
	isMerge := system == summariesMergerPrompt
	if isMerge {
		f.mergeCalls = append(f.mergeCalls, user)
	} else {
		f.chunkCalls = append(f.chunkCalls, user)
	}
	f.mu.Unlock()

	if isMerge {
		return f.mergeResp(user)
	}
	return f.chunkResp(user)
}

func newFakeLLM() *fakeLLM {
	return &fakeLLM{chunkResp: validChunkResponse, mergeResp: validMergeResponse}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func newTestService(client *fakeLLM, chunkLimit int) *Service {
	return NewService(client, Config{ChunkLimit: chunkLimit, Concurrency: 4}, testLogger())
}

func TestSummarizeShortTranscriptSingleCall(t *testing.T) {
	fake := newFakeLLM()
	svc := newTestService(fake, 2000)

	transcript := models.Transcript{
		VideoID: "abc123",
		Text:    strings.Repeat("short text. ", 40), // ~480 chars, below limit
		Source:  models.SourcePlatform,
	}

	summary, err := svc.Summarize(context.Background(), transcript)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if len(fake.chunkCalls) != 1 {
		t.Errorf("expected exactly 1 chunk call, got %d", len(fake.chunkCalls))
	}
	if len(fake.mergeCalls) != 0 {
		t.Errorf("expected 0 merge calls, got %d", len(fake.mergeCalls))
	}
	if summary.Title != "Chunk Title" {
		t.Errorf("single chunk summary should come from the chunk response, got title %q", summary.Title)
	}
	if summary.VideoID != "abc123" {
		t.Errorf("expected video ID abc123, got %q", summary.VideoID)
	}
}

func TestSummarizeLongTranscriptFanOutAndMerge(t *testing.T) {
	fake := newFakeLLM()
	// Tag each chunk response with the first word of its input so the
	// merge input ordering is observable.
	fake.chunkResp = func(user string) (string, error) {
		word := strings.Fields(strings.TrimPrefix(user, "<chunk>"))[0]
		return fmt.Sprintf(`{"title": "%s", "sections": [{"heading": "H", "bullets": ["b"]}]}`, word), nil
	}
	svc := newTestService(fake, 2000)

	// ~9000 chars at limit 2000 → 5 chunks, each starting with a distinct
	// marker word.
	markers := []string{"one", "two", "three", "four", "five"}
	var paras []string
	for _, m := range markers {
		paras = append(paras, m+" "+strings.TrimSpace(strings.Repeat("filler words here. ", 90)))
	}
	transcript := models.Transcript{
		VideoID: "abc123",
		Text:    strings.Join(paras, "\n\n"),
		Source:  models.SourceTranscribed,
	}

	summary, err := svc.Summarize(context.Background(), transcript)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}

	if len(fake.chunkCalls) != 5 {
		t.Fatalf("expected 5 chunk calls, got %d", len(fake.chunkCalls))
	}
	if len(fake.mergeCalls) != 1 {
		t.Fatalf("expected exactly 1 merge call, got %d", len(fake.mergeCalls))
	}
	if summary.Title != "Merged Title" {
		t.Errorf("expected merged summary, got title %q", summary.Title)
	}

	// Merge input must preserve chunk order by index regardless of
	// completion order.
	mergeInput := fake.mergeCalls[0]
	last := -1
	for _, m := range markers {
		pos := strings.Index(mergeInput, "## "+m)
		if pos < 0 {
			t.Fatalf("merge input is missing chunk marker %q", m)
		}
		if pos < last {
			t.Fatalf("merge input out of order at marker %q", m)
		}
		last = pos
	}
}

func TestSummarizeEmptyTranscript(t *testing.T) {
	fake := newFakeLLM()
	svc := newTestService(fake, 2000)

	for _, text := range []string{"", "   \n\n\t "} {
		_, err := svc.Summarize(context.Background(), models.Transcript{VideoID: "abc123", Text: text})
		if err == nil {
			t.Fatalf("expected error for empty transcript %q", text)
		}
		if !errors.Is(err, errors.KindEmptyTranscript) {
			t.Errorf("expected empty_transcript kind, got %v", errors.KindOf(err))
		}
	}
	if len(fake.chunkCalls)+len(fake.mergeCalls) != 0 {
		t.Errorf("empty transcript must not trigger remote calls, got %d", len(fake.chunkCalls)+len(fake.mergeCalls))
	}
}

func TestSummarizeChunkFailureFailsRequest(t *testing.T) {
	fake := newFakeLLM()
	fake.chunkResp = func(user string) (string, error) {
		if strings.Contains(user, "poison") {
			return "", fmt.Errorf("remote call exploded")
		}
		return validChunkResponse(user)
	}
	svc := newTestService(fake, 200)

	text := strings.TrimSpace(strings.Repeat("normal words here. ", 30)) +
		"\n\npoison paragraph of doom.\n\n" +
		strings.TrimSpace(strings.Repeat("more normal words. ", 30))

	_, err := svc.Summarize(context.Background(), models.Transcript{VideoID: "abc123", Text: text})
	if err == nil {
		t.Fatal("expected failure when a chunk call fails")
	}
	if !errors.Is(err, errors.KindSummarizationFailed) {
		t.Errorf("expected summarization_failed kind, got %v", errors.KindOf(err))
	}
	if len(fake.mergeCalls) != 0 {
		t.Errorf("merge must not run after a chunk failure, got %d merge calls", len(fake.mergeCalls))
	}
}

func TestSummarizeMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		resp string
	}{
		{"not json", "here is your summary: blah"},
		{"missing title", `{"sections": [{"heading": "H", "bullets": ["b"]}]}`},
		{"missing sections", `{"title": "T", "sections": []}`},
	}

	for _, tt := range tests {
		fake := newFakeLLM()
		fake.chunkResp = func(string) (string, error) { return tt.resp, nil }
		svc := newTestService(fake, 2000)

		_, err := svc.Summarize(context.Background(), models.Transcript{VideoID: "abc123", Text: "some short transcript."})
		if err == nil {
			t.Fatalf("%s: expected malformed response error", tt.name)
		}
		if !errors.Is(err, errors.KindMalformedSummary) {
			t.Errorf("%s: expected malformed_summary_response kind, got %v", tt.name, errors.KindOf(err))
		}
	}
}

func TestSummarizeFencedJSONAccepted(t *testing.T) {
	fake := newFakeLLM()
	fake.chunkResp = func(string) (string, error) {
		resp, _ := validChunkResponse("")
		return "```json\n" + resp + "\n```", nil
	}
	svc := newTestService(fake, 2000)

	summary, err := svc.Summarize(context.Background(), models.Transcript{VideoID: "abc123", Text: "short transcript."})
	if err != nil {
		t.Fatalf("fenced JSON should parse: %v", err)
	}
	if summary.Title != "Chunk Title" {
		t.Errorf("unexpected title %q", summary.Title)
	}
}

func TestSummaryMarkdownRendering(t *testing.T) {
	s := &models.Summary{
		VideoID: "abc123",
		Title:   "Main Title",
		Sections: []models.Section{
			{Heading: "First", Bullets: []string{"one", "two"}},
			{Heading: "Second", Bullets: []string{"three"}},
		},
	}

	md := s.Markdown()
	want := "# Main Title\n\n## First\n- one\n- two\n\n## Second\n- three\n"
	if md != want {
		t.Errorf("markdown mismatch:\ngot  %q\nwant %q", md, want)
	}

	// The rendered summary must round-trip through the API response.
	data, err := json.Marshal(models.NewSummaryResponse(s))
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	if !strings.Contains(string(data), "Main Title") {
		t.Errorf("response JSON missing title: %s", data)
	}
}
