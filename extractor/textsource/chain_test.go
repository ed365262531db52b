package textsource

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	name   string
	text   string
	err    error
	called int
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Extract(ctx context.Context, image []byte) (string, error) {
	f.called++
	return f.text, f.err
}

func TestChainStopsAtFirstSuccess(t *testing.T) {
	first := &fakeSource{name: "vision", text: "Giveaway! Win a prize, ends 16 Sept 2025"}
	second := &fakeSource{name: "ocr-multi", text: "should not run"}

	chain := NewChain(time.Second, first, second)
	text, source, err := chain.Extract(context.Background(), []byte("img"))

	require.NoError(t, err)
	assert.Equal(t, first.text, text)
	assert.Equal(t, "vision", source)
	assert.Equal(t, 1, first.called)
	assert.Equal(t, 0, second.called)
}

func TestChainFallsThroughOnError(t *testing.T) {
	first := &fakeSource{name: "vision", err: errors.New("quota exceeded")}
	second := &fakeSource{name: "ocr-multi", err: errors.New("service down")}
	third := &fakeSource{name: "ocr-primary", text: "CONTEST ENDS 30/09/2025"}

	chain := NewChain(time.Second, first, second, third)
	text, source, err := chain.Extract(context.Background(), []byte("img"))

	require.NoError(t, err)
	assert.Equal(t, "CONTEST ENDS 30/09/2025", text)
	assert.Equal(t, "ocr-primary", source)
	assert.Equal(t, 1, first.called)
	assert.Equal(t, 1, second.called)
	assert.Equal(t, 1, third.called)
}

func TestChainSkipsEmptyText(t *testing.T) {
	first := &fakeSource{name: "vision", text: "   \n  "}
	second := &fakeSource{name: "ocr-multi", text: "recognized text"}

	chain := NewChain(0, first, second)
	text, source, err := chain.Extract(context.Background(), []byte("img"))

	require.NoError(t, err)
	assert.Equal(t, "recognized text", text)
	assert.Equal(t, "ocr-multi", source)
}

func TestChainAllSourcesExhausted(t *testing.T) {
	first := &fakeSource{name: "vision", err: errors.New("boom")}
	second := &fakeSource{name: "ocr-multi", text: ""}

	chain := NewChain(time.Second, first, second)
	_, _, err := chain.Extract(context.Background(), []byte("img"))

	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestChainNoSources(t *testing.T) {
	chain := NewChain(time.Second)
	_, _, err := chain.Extract(context.Background(), []byte("img"))
	assert.ErrorIs(t, err, ErrExtractionFailed)
}

func TestDetectImageMIME(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)
	webp := append([]byte("RIFF\x00\x00\x00\x00WEBP"), make([]byte, 16)...)

	assert.Equal(t, "image/png", detectImageMIME(png))
	assert.Equal(t, "image/webp", detectImageMIME(webp))
	assert.Equal(t, "image/jpeg", detectImageMIME([]byte{0xFF, 0xD8, 0xFF}))
}
