// Package extractor orchestrates the giveaway extraction pipeline: text
// recognition over a tiered fallback chain, optional AI structuring, pattern
// parsing and normalization.
package extractor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-giveaway/config"
	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/extractor/aiparser"
	"github.com/AzielCF/az-giveaway/extractor/normalize"
	"github.com/AzielCF/az-giveaway/extractor/parser"
	"github.com/AzielCF/az-giveaway/extractor/textsource"
	"github.com/AzielCF/az-giveaway/extractor/urlextract"
)

// TextExtractor is the recognition chain contract, satisfied by
// textsource.Chain.
type TextExtractor interface {
	Extract(ctx context.Context, image []byte) (text string, source string, err error)
}

// AIParser is the optional model-backed structuring tier.
type AIParser interface {
	Enabled() bool
	Parse(ctx context.Context, text string) (*giveaway.Draft, error)
}

// Engine runs the full image-to-draft and url-to-draft pipelines.
type Engine struct {
	chain  TextExtractor
	ai     AIParser
	parser *parser.Parser
	urls   *urlextract.Extractor
	now    func() time.Time
}

// NewEngine assembles the pipeline from configuration. The vision tier is
// only registered when an API key is present; OCR tiers require an endpoint.
func NewEngine(cfg config.ExtractConfig) *Engine {
	var sources []textsource.Source
	if cfg.GeminiAPIKey != "" {
		sources = append(sources, textsource.NewGeminiVision(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	if cfg.OCREndpoint != "" {
		ocr := textsource.NewHTTPEngine(cfg.OCREndpoint)
		sources = append(sources,
			textsource.NewOCRSource("ocr-multi", ocr, cfg.OCRPrimaryLang, cfg.OCRSecondaryLang),
			textsource.NewOCRSource("ocr-primary", ocr, cfg.OCRPrimaryLang),
		)
	}

	var ai AIParser
	if cfg.OpenAIAPIKey != "" {
		ai = aiparser.New(cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}

	return &Engine{
		chain:  textsource.NewChain(cfg.AttemptTimeout, sources...),
		ai:     ai,
		parser: parser.New(time.Now),
		urls:   urlextract.New(cfg.URLFetchEnabled, time.Now),
		now:    time.Now,
	}
}

// FromImage recognizes text in the screenshot and parses it into a normalized
// draft. Returns the name of the recognition source that succeeded.
func (e *Engine) FromImage(ctx context.Context, image []byte) (*giveaway.Draft, string, error) {
	traceID := uuid.NewString()
	log := logrus.WithField("trace_id", traceID)

	text, source, err := e.chain.Extract(ctx, image)
	if err != nil {
		log.WithError(err).Warn("[EXTRACT] recognition chain exhausted")
		return nil, "", err
	}
	log.Infof("[EXTRACT] recognized %d chars via %s", len(text), source)

	return e.FromText(ctx, text), source, nil
}

// FromText structures raw text into a normalized draft. The AI tier is tried
// first when configured; any failure there degrades to pattern rules.
func (e *Engine) FromText(ctx context.Context, text string) *giveaway.Draft {
	if e.ai != nil && e.ai.Enabled() {
		if draft, err := e.ai.Parse(ctx, text); err == nil {
			return normalize.DraftAt(draft, e.now())
		} else {
			logrus.WithError(err).Warn("[EXTRACT] AI parse failed, using pattern rules")
		}
	}
	return normalize.DraftAt(e.parser.Parse(text), e.now())
}

// FromURL builds a draft from a post link.
func (e *Engine) FromURL(ctx context.Context, rawURL string) (*giveaway.Draft, error) {
	draft, err := e.urls.Extract(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return normalize.DraftAt(draft, e.now()), nil
}
