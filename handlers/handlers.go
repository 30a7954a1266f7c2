package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	apperrors "ytsummarizer/errors"
	"ytsummarizer/models"
)

// Summarizer is the pipeline surface the HTTP layer needs.
type Summarizer interface {
	Summarize(ctx context.Context, url string) (*models.Summary, error)
}

type SummaryHandler struct {
	pipeline Summarizer
	timeout  time.Duration
}

func NewSummaryHandler(pipeline Summarizer, timeout time.Duration) *SummaryHandler {
	return &SummaryHandler{pipeline: pipeline, timeout: timeout}
}

type summarizeRequest struct {
	URL string `json:"url"`
}

func (h *SummaryHandler) Summarize(c *fiber.Ctx) error {
	var req summarizeRequest
	if err := c.BodyParser(&req); err != nil || req.URL == "" {
		// Form posts from the web page land here.
		req.URL = c.FormValue("url")
	}
	if req.URL == "" {
		return &apperrors.AppError{
			Kind:    apperrors.KindInvalidURL,
			Code:    fiber.StatusBadRequest,
			Message: "URL is required",
		}
	}

	ctx, cancel := context.WithTimeout(c.Context(), h.timeout)
	defer cancel()

	summary, err := h.pipeline.Summarize(ctx, req.URL)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    models.NewSummaryResponse(summary),
	})
}

func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ErrorHandler translates pipeline errors into JSON responses. Anything
// that is not an AppError is reported as a generic 500.
func ErrorHandler(logger *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"
		kind := apperrors.KindInternal

		var appErr *apperrors.AppError
		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
			message = e.Message
		} else if errors.As(err, &appErr) {
			code = appErr.Code
			message = appErr.Message
			kind = appErr.Kind
		}

		logger.WithFields(logrus.Fields{
			"request_id": c.Get("X-Request-ID"),
			"path":       c.Path(),
			"method":     c.Method(),
			"status":     code,
			"kind":       kind,
		}).WithError(err).Error("Request error")

		return c.Status(code).JSON(fiber.Map{
			"success":    false,
			"error":      message,
			"kind":       kind,
			"request_id": c.Get("X-Request-ID"),
		})
	}
}
