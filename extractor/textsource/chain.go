package textsource

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrExtractionFailed is returned when every configured source failed to
// produce usable text from the image.
var ErrExtractionFailed = errors.New("text extraction failed: all sources exhausted")

// Source is one text-extraction strategy (vision API, multi-language OCR,
// single-language OCR). Implementations return the recognized raw text.
type Source interface {
	Name() string
	Extract(ctx context.Context, image []byte) (string, error)
}

// Chain tries each source in order and stops at the first success. Sources
// are never invoked in parallel; a failure or timeout in one tier falls
// through to the next.
type Chain struct {
	sources        []Source
	attemptTimeout time.Duration
}

// NewChain builds a chain over the given sources, in priority order.
// attemptTimeout bounds each individual source attempt; zero disables the
// per-attempt bound.
func NewChain(attemptTimeout time.Duration, sources ...Source) *Chain {
	return &Chain{sources: sources, attemptTimeout: attemptTimeout}
}

// Sources returns the configured source names, in order.
func (c *Chain) Sources() []string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return names
}

// Extract runs the fallback chain and returns the recognized text together
// with the name of the source that produced it.
func (c *Chain) Extract(ctx context.Context, image []byte) (text string, source string, err error) {
	if len(c.sources) == 0 {
		return "", "", ErrExtractionFailed
	}

	for _, s := range c.sources {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if c.attemptTimeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, c.attemptTimeout)
		}

		out, extractErr := s.Extract(attemptCtx, image)
		if cancel != nil {
			cancel()
		}

		if extractErr != nil {
			logrus.WithError(extractErr).Debugf("[EXTRACT] source %s failed, falling through", s.Name())
			continue
		}
		if strings.TrimSpace(out) == "" {
			logrus.Debugf("[EXTRACT] source %s returned empty text, falling through", s.Name())
			continue
		}

		logrus.Debugf("[EXTRACT] source %s produced %d chars", s.Name(), len(out))
		return out, s.Name(), nil
	}

	return "", "", ErrExtractionFailed
}
