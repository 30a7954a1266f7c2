package video

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	apperrors "ytsummarizer/errors"
	"ytsummarizer/models"
)

const (
	innertubePlayerURL = "https://www.youtube.com/youtubei/v1/player"
	androidVersion     = "20.10.38"
	androidUA          = "com.google.android.youtube/" + androidVersion + " (Linux; U; Android 11) gzip"
)

// InnertubeResolver resolves videos through YouTube's Innertube /player
// endpoint using the ANDROID client, which exposes caption tracks without
// a browser session.
type InnertubeResolver struct {
	http   *http.Client
	logger *logrus.Logger
	langs  []string
}

func NewInnertubeResolver(logger *logrus.Logger, langs []string) *InnertubeResolver {
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	return &InnertubeResolver{
		http:   &http.Client{Timeout: 30 * time.Second},
		logger: logger,
		langs:  langs,
	}
}

type playerRequest struct {
	VideoID        string        `json:"videoId"`
	Context        playerContext `json:"context"`
	RacyCheckOk    bool          `json:"racyCheckOk"`
	ContentCheckOk bool          `json:"contentCheckOk"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	ClientName        string `json:"clientName"`
	ClientVersion     string `json:"clientVersion"`
	AndroidSdkVersion int    `json:"androidSdkVersion,omitempty"`
	Hl                string `json:"hl,omitempty"`
	Gl                string `json:"gl,omitempty"`
}

type playerResponse struct {
	VideoDetails *struct {
		VideoID string `json:"videoId"`
		Title   string `json:"title"`
	} `json:"videoDetails"`
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type timedText struct {
	Lines []timedLine `xml:"text"`
}

type timedLine struct {
	Text string `xml:",chardata"`
}

func (r *InnertubeResolver) Resolve(ctx context.Context, rawURL string) (*Resolution, error) {
	const op = "InnertubeResolver.Resolve"

	videoID := ExtractID(rawURL)
	if videoID == "" {
		return nil, apperrors.InvalidURL(op, nil, "URL does not reference a YouTube video")
	}

	player, err := r.fetchPlayer(ctx, videoID)
	if err != nil {
		return nil, apperrors.VideoUnavailable(op, err, "Failed to look up video")
	}

	if ps := player.PlayabilityStatus; ps != nil && ps.Status != "OK" {
		r.logger.WithFields(logrus.Fields{
			"video_id": videoID,
			"status":   ps.Status,
			"reason":   ps.Reason,
		}).Info("Video not playable")
		return nil, apperrors.VideoUnavailable(op, nil, "Video is private, deleted or unavailable")
	}

	res := &Resolution{
		Ref: models.VideoRef{VideoID: videoID, URL: rawURL},
	}
	if player.VideoDetails != nil {
		res.Title = player.VideoDetails.Title
	}

	if player.Captions == nil {
		return res, nil
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	track, ok := pickTrack(tracks, r.langs)
	if !ok {
		return res, nil
	}

	text, err := r.fetchTrack(ctx, track.BaseURL)
	if err != nil {
		// Caption fetch failure is not fatal: the transcriber can still
		// produce the text.
		r.logger.WithError(err).WithField("video_id", videoID).
			Warn("Failed to fetch caption track, falling back to transcription")
		return res, nil
	}

	res.CaptionText = text
	res.HasCaptions = text != ""
	return res, nil
}

func (r *InnertubeResolver) fetchPlayer(ctx context.Context, videoID string) (*playerResponse, error) {
	payload, err := json.Marshal(playerRequest{
		VideoID: videoID,
		Context: playerContext{
			Client: playerClient{
				ClientName:        "ANDROID",
				ClientVersion:     androidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, innertubePlayerURL, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", androidUA)

	resp, err := r.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("player endpoint returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var player playerResponse
	if err := json.Unmarshal(body, &player); err != nil {
		return nil, errors.Wrap(err, "decode player response")
	}
	return &player, nil
}

// pickTrack prefers a manually created track in the preferred languages,
// then an auto-generated one, then any manual track.
func pickTrack(tracks []captionTrack, langs []string) (captionTrack, bool) {
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, true
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t, true
			}
		}
	}
	for _, t := range tracks {
		if t.Kind != "asr" {
			return t, true
		}
	}
	return captionTrack{}, false
}

func (r *InnertubeResolver) fetchTrack(ctx context.Context, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", androidUA)

	resp, err := r.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("caption track returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return ParseTimedText(body)
}

// ParseTimedText flattens a timedtext XML caption document to plain text.
func ParseTimedText(data []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", errors.Wrap(err, "decode timedtext")
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := strings.TrimSpace(html.UnescapeString(line.Text))
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
