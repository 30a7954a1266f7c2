package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for callers that need to branch on the failure
// mode rather than the message. Every fatal pipeline error carries one.
type Kind string

const (
	KindInvalidURL          Kind = "invalid_url"
	KindVideoUnavailable    Kind = "video_unavailable"
	KindTranscriptionFailed Kind = "transcription_failed"
	KindEmptyTranscript     Kind = "empty_transcript"
	KindSummarizationFailed Kind = "summarization_failed"
	KindMalformedSummary    Kind = "malformed_summary_response"
	KindInternal            Kind = "internal"
)

type AppError struct {
	Kind    Kind   `json:"kind"`
	Code    int    `json:"-"`
	Message string `json:"error"`
	Op      string `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, code int, op string, err error, message string) *AppError {
	return &AppError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Op:      op,
		Err:     err,
	}
}

func InvalidURL(op string, err error, message string) *AppError {
	return newError(KindInvalidURL, http.StatusBadRequest, op, err, message)
}

func VideoUnavailable(op string, err error, message string) *AppError {
	return newError(KindVideoUnavailable, http.StatusNotFound, op, err, message)
}

func TranscriptionFailed(op string, err error, message string) *AppError {
	return newError(KindTranscriptionFailed, http.StatusBadGateway, op, err, message)
}

func EmptyTranscript(op string, message string) *AppError {
	return newError(KindEmptyTranscript, http.StatusUnprocessableEntity, op, nil, message)
}

func SummarizationFailed(op string, err error, message string) *AppError {
	return newError(KindSummarizationFailed, http.StatusBadGateway, op, err, message)
}

func MalformedSummary(op string, err error, message string) *AppError {
	return newError(KindMalformedSummary, http.StatusBadGateway, op, err, message)
}

func Internal(op string, err error, message string) *AppError {
	return newError(KindInternal, http.StatusInternalServerError, op, err, message)
}

// KindOf returns the Kind of err, or KindInternal when err is not an AppError.
func KindOf(err error) Kind {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
