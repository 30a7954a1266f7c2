// Package pipeline orchestrates the three-stage flow: resolve the video,
// obtain a transcript, summarize it. The cache store is consulted and
// populated at every stage boundary.
package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"ytsummarizer/cache"
	"ytsummarizer/models"
	"ytsummarizer/summarizer"
	"ytsummarizer/transcriber"
	"ytsummarizer/validation"
	"ytsummarizer/video"
)

type Config struct {
	TranscriptTTL time.Duration
	SummaryTTL    time.Duration
}

// Coordinator owns one request's Transcript and Summary from resolution to
// the final cache write. All collaborators are injected; there is no
// package-level state.
type Coordinator struct {
	store      cache.Store
	resolver   video.Resolver
	transcribe transcriber.Transcriber
	summarize  *summarizer.Service
	validator  *validation.Validator
	config     Config
	logger     *logrus.Logger

	// flight collapses concurrent requests for the same video: late
	// joiners wait for the first execution instead of re-running the
	// pipeline.
	flight singleflight.Group
}

func NewCoordinator(
	store cache.Store,
	resolver video.Resolver,
	transcribe transcriber.Transcriber,
	summarize *summarizer.Service,
	validator *validation.Validator,
	config Config,
	logger *logrus.Logger,
) *Coordinator {
	return &Coordinator{
		store:      store,
		resolver:   resolver,
		transcribe: transcribe,
		summarize:  summarize,
		validator:  validator,
		config:     config,
		logger:     logger,
	}
}

// Summarize is the single inbound operation: URL in, Summary out. A
// request either yields a complete summary or one error; there is no
// partial result.
func (c *Coordinator) Summarize(ctx context.Context, url string) (*models.Summary, error) {
	if err := c.validator.ValidateURL(url); err != nil {
		return nil, err
	}

	// Fast path: when the video ID is derivable from the URL alone, a
	// summary cache hit skips resolution entirely.
	videoID := video.ExtractID(url)
	if videoID != "" {
		if summary, ok := c.cachedSummary(ctx, videoID); ok {
			c.logger.WithField("video_id", videoID).Info("Summary cache hit")
			return summary, nil
		}
		return c.runDeduped(ctx, videoID, url)
	}

	// No cheap ID: resolve first, then the coordinator still gets one
	// cache probe before doing any real work.
	res, err := c.resolver.Resolve(ctx, url)
	if err != nil {
		return nil, err
	}
	if summary, ok := c.cachedSummary(ctx, res.Ref.VideoID); ok {
		return summary, nil
	}
	return c.runResolvedDeduped(ctx, res)
}

func (c *Coordinator) runDeduped(ctx context.Context, videoID, url string) (*models.Summary, error) {
	out, err, _ := c.flight.Do(videoID, func() (any, error) {
		res, err := c.resolver.Resolve(ctx, url)
		if err != nil {
			return nil, err
		}
		return c.run(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return out.(*models.Summary), nil
}

func (c *Coordinator) runResolvedDeduped(ctx context.Context, res *video.Resolution) (*models.Summary, error) {
	out, err, _ := c.flight.Do(res.Ref.VideoID, func() (any, error) {
		return c.run(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return out.(*models.Summary), nil
}

// run executes the pipeline for a resolved video. Caller holds the
// singleflight slot for the video ID.
func (c *Coordinator) run(ctx context.Context, res *video.Resolution) (*models.Summary, error) {
	videoID := res.Ref.VideoID
	logger := c.logger.WithField("video_id", videoID)

	// A late joiner may arrive after the first flight finished; the cache
	// answers without re-running anything.
	if summary, ok := c.cachedSummary(ctx, videoID); ok {
		return summary, nil
	}

	transcript, err := c.obtainTranscript(ctx, res)
	if err != nil {
		return nil, err
	}

	summary, err := c.summarize.Summarize(ctx, *transcript)
	if err != nil {
		return nil, err
	}

	c.writeCache(ctx, cache.SummaryKey(videoID), summary, c.config.SummaryTTL)
	logger.Info("Pipeline complete")
	return summary, nil
}

// obtainTranscript returns the transcript for a resolved video: from
// cache, from platform captions, or through speech-to-text. The result is
// written to the transcript cache whichever way it was obtained.
func (c *Coordinator) obtainTranscript(ctx context.Context, res *video.Resolution) (*models.Transcript, error) {
	videoID := res.Ref.VideoID
	logger := c.logger.WithField("video_id", videoID)

	if data, ok, err := c.store.Get(ctx, cache.TranscriptKey(videoID)); err != nil {
		// Cache trouble is never fatal: treat as a miss.
		logger.WithError(err).Warn("Transcript cache read failed, treating as miss")
	} else if ok {
		var transcript models.Transcript
		if err := json.Unmarshal(data, &transcript); err == nil {
			logger.Info("Transcript cache hit")
			return &transcript, nil
		}
		logger.WithError(err).Warn("Corrupt transcript cache entry, regenerating")
	}

	transcript := &models.Transcript{VideoID: videoID}
	if res.HasCaptions {
		transcript.Text = res.CaptionText
		transcript.Source = models.SourcePlatform
	} else {
		text, err := c.transcribe.Transcribe(ctx, res.Ref)
		if err != nil {
			return nil, err
		}
		transcript.Text = text
		transcript.Source = models.SourceTranscribed
	}

	// Idempotent: rewriting identical content on a lost race is harmless.
	c.writeCache(ctx, cache.TranscriptKey(videoID), transcript, c.config.TranscriptTTL)
	return transcript, nil
}

func (c *Coordinator) cachedSummary(ctx context.Context, videoID string) (*models.Summary, bool) {
	data, ok, err := c.store.Get(ctx, cache.SummaryKey(videoID))
	if err != nil {
		c.logger.WithError(err).Warn("Summary cache read failed, treating as miss")
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var summary models.Summary
	if err := json.Unmarshal(data, &summary); err != nil {
		c.logger.WithError(err).WithField("video_id", videoID).
			Warn("Corrupt summary cache entry, regenerating")
		return nil, false
	}
	return &summary, true
}

// writeCache stores v under key, failing open: a store outage costs a
// recomputation later, never the request.
func (c *Coordinator) writeCache(ctx context.Context, key string, v any, ttl time.Duration) {
	data, err := json.Marshal(v)
	if err != nil {
		c.logger.WithError(err).WithField("key", key).Error("Failed to encode cache value")
		return
	}
	if err := c.store.Set(ctx, key, data, ttl); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("Cache write failed")
	}
}
