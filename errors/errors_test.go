package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantKind Kind
		wantCode int
	}{
		{"invalid url", InvalidURL("test", nil, "bad"), KindInvalidURL, http.StatusBadRequest},
		{"video unavailable", VideoUnavailable("test", nil, "gone"), KindVideoUnavailable, http.StatusNotFound},
		{"transcription failed", TranscriptionFailed("test", nil, "failed"), KindTranscriptionFailed, http.StatusBadGateway},
		{"empty transcript", EmptyTranscript("test", "empty"), KindEmptyTranscript, http.StatusUnprocessableEntity},
		{"summarization failed", SummarizationFailed("test", nil, "failed"), KindSummarizationFailed, http.StatusBadGateway},
		{"malformed summary", MalformedSummary("test", nil, "bad json"), KindMalformedSummary, http.StatusBadGateway},
		{"internal", Internal("test", nil, "boom"), KindInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Kind != tt.wantKind {
				t.Errorf("expected kind %q, got %q", tt.wantKind, tt.err.Kind)
			}
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, tt.err.Code)
			}
		})
	}
}

func TestErrorWithCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := TranscriptionFailed("Service.Transcribe", cause, "upload failed")

	expected := "upload failed: connection refused"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	inner := VideoUnavailable("Resolver.Resolve", nil, "private video")
	wrapped := errors.Wrap(inner, "pipeline failed")

	if got := KindOf(wrapped); got != KindVideoUnavailable {
		t.Errorf("expected kind %q, got %q", KindVideoUnavailable, got)
	}
	if !Is(wrapped, KindVideoUnavailable) {
		t.Error("Is should see through wrapping")
	}
}

func TestKindOfNonAppError(t *testing.T) {
	if got := KindOf(fmt.Errorf("standard error")); got != KindInternal {
		t.Errorf("expected kind %q, got %q", KindInternal, got)
	}
}
