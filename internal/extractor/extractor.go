// Package extractor asks a generative model to turn a PDF into study material.
//
// The Extractor owns the prompt, the timeout and the error mapping. The model
// call itself sits behind the Generator interface so tests (and other
// providers) can replace Gemini without touching the pipeline.
package extractor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sakif/study-cards/internal/apperror"
)

// DefaultTimeout bounds a single extraction call.
const DefaultTimeout = 60 * time.Second

// Generator sends one prompt plus one inline document to a model and returns
// the model's text output.
type Generator interface {
	Generate(ctx context.Context, prompt string, doc []byte, mimeType string) (string, error)
}

// Extractor produces raw model text for a document. The output still has to
// go through sanitize.Parse.
type Extractor struct {
	gen     Generator
	timeout time.Duration
	logger  *slog.Logger
}

// NewExtractor wires a Generator. timeout <= 0 selects DefaultTimeout.
func NewExtractor(gen Generator, timeout time.Duration, logger *slog.Logger) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{gen: gen, timeout: timeout, logger: logger}
}

// Extract sends doc to the model exactly once. There is no retry.
//
// An empty document, a generator error, an expired deadline or a blank
// response all come back as apperror.ErrExtractionFailed.
func (e *Extractor) Extract(ctx context.Context, doc []byte, fileName string) (string, error) {
	if len(doc) == 0 {
		return "", apperror.ExtractionFailed("AI processing failed: document is empty", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	e.logger.Info("sending document to model",
		slog.String("file", fileName),
		slog.Int("bytes", len(doc)),
	)

	text, err := e.gen.Generate(ctx, BuildPrompt(fileName), doc, "application/pdf")
	if err != nil {
		e.logger.Error("model request failed",
			slog.String("file", fileName),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()),
		)
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", apperror.ExtractionFailed(
				fmt.Sprintf("AI processing failed: no response within %s", e.timeout),
				context.DeadlineExceeded,
			)
		}
		return "", apperror.ExtractionFailed("AI processing failed", err)
	}

	if strings.TrimSpace(text) == "" {
		return "", apperror.ExtractionFailed("AI processing failed: invalid or empty response received from model", nil)
	}

	e.logger.Debug("model response received",
		slog.String("file", fileName),
		slog.Duration("elapsed", time.Since(start)),
		slog.String("preview", preview(text, 200)),
	)

	return text, nil
}

func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
