package models

import (
	"strings"
	"time"
)

// TranscriptSource records how a transcript was obtained.
type TranscriptSource string

const (
	// SourcePlatform means the platform already had a caption track.
	SourcePlatform TranscriptSource = "platform"
	// SourceTranscribed means the audio was run through speech-to-text.
	SourceTranscribed TranscriptSource = "transcribed"
)

// VideoRef identifies a video. Identity is the canonical ID extracted from
// the URL; the URL is kept for provider calls that need it.
type VideoRef struct {
	VideoID string `json:"video_id"`
	URL     string `json:"url"`
}

// Transcript is the full text of a video, created once per video.
type Transcript struct {
	VideoID string           `json:"video_id"`
	Text    string           `json:"text"`
	Source  TranscriptSource `json:"source"`
}

// Section is one thematic block of a summary.
type Section struct {
	Heading string   `json:"heading"`
	Bullets []string `json:"bullets"`
}

// Summary is the final artifact of a pipeline run.
type Summary struct {
	VideoID   string    `json:"video_id"`
	Title     string    `json:"title"`
	Sections  []Section `json:"sections"`
	CreatedAt time.Time `json:"created_at"`
}

// Markdown renders the summary the way the web layer presents it.
func (s *Summary) Markdown() string {
	var sb strings.Builder
	sb.WriteString("# ")
	sb.WriteString(s.Title)
	for _, sec := range s.Sections {
		sb.WriteString("\n\n## ")
		sb.WriteString(sec.Heading)
		for _, b := range sec.Bullets {
			sb.WriteString("\n- ")
			sb.WriteString(b)
		}
	}
	sb.WriteString("\n")
	return sb.String()
}

// SummaryResponse is the API shape returned to clients.
type SummaryResponse struct {
	VideoID  string    `json:"video_id"`
	Title    string    `json:"title"`
	Sections []Section `json:"sections"`
	Markdown string    `json:"markdown"`
}

func NewSummaryResponse(s *Summary) *SummaryResponse {
	return &SummaryResponse{
		VideoID:  s.VideoID,
		Title:    s.Title,
		Sections: s.Sections,
		Markdown: s.Markdown(),
	}
}
