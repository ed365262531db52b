package textsource

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
)

// Engine performs optical character recognition on an image with a given set
// of language hints.
type Engine interface {
	Recognize(ctx context.Context, img []byte, langs []string) (string, error)
}

// HTTPEngine talks to a tesseract-compatible OCR HTTP service. The request
// carries the image as base64 JSON; the response returns the recognized text.
type HTTPEngine struct {
	endpoint string
	client   *http.Client
}

func NewHTTPEngine(endpoint string) *HTTPEngine {
	return &HTTPEngine{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
	}
}

type ocrRequest struct {
	Image     string `json:"image"`
	Languages string `json:"languages"`
}

type ocrResponse struct {
	Text  string `json:"text"`
	Error string `json:"error,omitempty"`
}

func (e *HTTPEngine) Recognize(ctx context.Context, img []byte, langs []string) (string, error) {
	payload, err := json.Marshal(ocrRequest{
		Image:     base64.StdEncoding.EncodeToString(img),
		Languages: strings.Join(langs, "+"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode ocr request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build ocr request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ocr request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ocr service returned status %d", resp.StatusCode)
	}

	var out ocrResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode ocr response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ocr service error: %s", out.Error)
	}
	return out.Text, nil
}

// OCRSource runs one OCR attempt with a fixed language set. Two instances are
// chained: multi-language first, then primary-only as a retry with simpler
// hints.
type OCRSource struct {
	name   string
	engine Engine
	langs  []string
}

func NewOCRSource(name string, engine Engine, langs ...string) *OCRSource {
	return &OCRSource{name: name, engine: engine, langs: langs}
}

func (o *OCRSource) Name() string { return o.name }

func (o *OCRSource) Extract(ctx context.Context, img []byte) (string, error) {
	prepared := preprocess(img)
	text, err := o.engine.Recognize(ctx, prepared, o.langs)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// preprocess grayscales and upscales small screenshots before OCR. Recognition
// on low-resolution phone screenshots improves noticeably at 2x. Decoding
// failures return the original bytes so the engine still gets a chance.
func preprocess(img []byte) []byte {
	decoded, _, err := image.Decode(bytes.NewReader(img))
	if err != nil {
		return img
	}

	gray := imaging.Grayscale(decoded)
	bounds := gray.Bounds()
	if bounds.Dx() < 1200 {
		gray = imaging.Resize(gray, bounds.Dx()*2, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, gray, imaging.PNG); err != nil {
		return img
	}
	return buf.Bytes()
}
