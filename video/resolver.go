// Package video resolves YouTube URLs to a canonical video identity and,
// when the platform already has captions, the transcript text.
package video

import (
	"context"

	"ytsummarizer/models"
)

// Resolution is the outcome of resolving a URL. When HasCaptions is false
// the caller must obtain the transcript through speech-to-text.
type Resolution struct {
	Ref         models.VideoRef
	Title       string
	CaptionText string
	HasCaptions bool
}

// Resolver turns a raw URL into a Resolution. Implementations return an
// InvalidURL error for URLs that do not reference a video and
// VideoUnavailable for private or deleted videos.
type Resolver interface {
	Resolve(ctx context.Context, url string) (*Resolution, error)
}
