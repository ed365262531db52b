package urlextract

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
)

func fixedNow() time.Time {
	return time.Date(2025, time.July, 1, 12, 0, 0, 0, time.UTC)
}

func TestInvalidURLRejected(t *testing.T) {
	e := New(false, fixedNow)
	for _, input := range []string{"", "not a url", "just-words", "ht!tp://x"} {
		_, err := e.Extract(context.Background(), input)
		assert.ErrorIs(t, err, ErrInvalidURL, "input: %q", input)
	}
}

func TestDetectPlatform(t *testing.T) {
	cases := map[string]giveaway.Platform{
		"https://www.facebook.com/some/post": giveaway.PlatformFacebook,
		"https://fb.com/p/123":               giveaway.PlatformFacebook,
		"https://instagram.com/p/abc":        giveaway.PlatformInstagram,
		"https://x.com/user/status/1":        giveaway.PlatformTwitter,
		"https://www.tiktok.com/@u/video/9":  giveaway.PlatformTikTok,
		"https://youtu.be/xyz":               giveaway.PlatformYouTube,
		"https://t.me/channel/42":            giveaway.PlatformTelegram,
		"https://example.com/giveaway":       giveaway.PlatformUnknown,
	}
	for url, want := range cases {
		assert.Equal(t, want, DetectPlatform(url), "url: %s", url)
	}
}

func TestTemplateDraftSevenDayDeadline(t *testing.T) {
	e := New(false, fixedNow)
	d, err := e.Extract(context.Background(), "https://instagram.com/p/abc123")

	require.NoError(t, err)
	assert.Equal(t, giveaway.PlatformInstagram, d.Platform)
	assert.Equal(t, "Instagram Giveaway", d.Title)
	assert.Equal(t, "08/07/2025 12:00", d.Deadline)
	assert.Equal(t, "https://instagram.com/p/abc123", d.PostURL)
}

func TestOpenGraphFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head>
			<meta property="og:title" content="Grand Prize Draw" />
			<meta property="og:description" content="Enter before it closes" />
		</head><body></body></html>`)
	}))
	defer srv.Close()

	e := New(true, fixedNow)
	title, desc, ok := e.fetchOpenGraph(context.Background(), srv.URL)

	assert.True(t, ok)
	assert.Equal(t, "Grand Prize Draw", title)
	assert.Equal(t, "Enter before it closes", desc)
}

func TestFetchFailureFallsBackToTemplate(t *testing.T) {
	e := New(true, fixedNow)
	d, err := e.Extract(context.Background(), "https://unreachable.test/giveaway")

	require.NoError(t, err)
	assert.Equal(t, "Sample Giveaway Contest", d.Title)
	assert.Equal(t, giveaway.PlatformUnknown, d.Platform)
}
