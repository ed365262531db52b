// Package urlextract builds a giveaway draft from a post URL. The platform
// comes from the domain; content extraction tries the page's OpenGraph
// metadata when fetching is enabled and otherwise falls back to a per-platform
// template with a week-out deadline, since most social platforms block
// anonymous scraping anyway.
package urlextract

import (
	"context"
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/AzielCF/az-giveaway/domains/giveaway"
	"github.com/AzielCF/az-giveaway/pkg/timeutils"
)

// ErrInvalidURL is returned when the input does not look like a URL at all.
var ErrInvalidURL = errors.New("invalid url format")

var urlShapeRe = regexp.MustCompile(`^(https?://)?([\da-z.-]+)\.([a-z.]{2,6})(:\d+)?(/[\w ./?%&=#@:-]*)?$`)

type platformDomain struct {
	platform giveaway.Platform
	domains  []string
}

var platformDomains = []platformDomain{
	{giveaway.PlatformFacebook, []string{"facebook.com", "fb.com"}},
	{giveaway.PlatformInstagram, []string{"instagram.com"}},
	{giveaway.PlatformTwitter, []string{"twitter.com", "x.com"}},
	{giveaway.PlatformTikTok, []string{"tiktok.com"}},
	{giveaway.PlatformYouTube, []string{"youtube.com", "youtu.be"}},
	{giveaway.PlatformTelegram, []string{"t.me"}},
}

// Extractor resolves post URLs into drafts.
type Extractor struct {
	fetchEnabled bool
	client       *http.Client
	now          func() time.Time
}

func New(fetchEnabled bool, now func() time.Time) *Extractor {
	if now == nil {
		now = time.Now
	}
	return &Extractor{
		fetchEnabled: fetchEnabled,
		client:       &http.Client{Timeout: 15 * time.Second},
		now:          now,
	}
}

// Extract validates the URL, detects the platform and produces a draft.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*giveaway.Draft, error) {
	rawURL = strings.TrimSpace(rawURL)
	if !urlShapeRe.MatchString(rawURL) {
		return nil, ErrInvalidURL
	}

	platform := DetectPlatform(rawURL)
	draft := templateDraft(platform)
	draft.PostURL = rawURL
	draft.Deadline = timeutils.Canonical(e.now().AddDate(0, 0, 7))

	if e.fetchEnabled {
		if title, desc, ok := e.fetchOpenGraph(ctx, rawURL); ok {
			if title != "" {
				draft.Title = title
			}
			if desc != "" {
				draft.Notes = desc
			}
		}
	}
	return draft, nil
}

// DetectPlatform maps known social domains to a platform name.
func DetectPlatform(rawURL string) giveaway.Platform {
	lower := strings.ToLower(rawURL)
	for _, pd := range platformDomains {
		for _, domain := range pd.domains {
			if strings.Contains(lower, domain) {
				return pd.platform
			}
		}
	}
	return giveaway.PlatformUnknown
}

// fetchOpenGraph pulls og:title and og:description from the page, when the
// page is reachable and serves HTML. Any failure degrades to the template.
func (e *Extractor) fetchOpenGraph(ctx context.Context, rawURL string) (title, desc string, ok bool) {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "https://" + rawURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", "", false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		logrus.WithError(err).Debug("[URL] page fetch failed, using template draft")
		return "", "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", "", false
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", "", false
	}

	title, _ = doc.Find(`meta[property="og:title"]`).Attr("content")
	desc, _ = doc.Find(`meta[property="og:description"]`).Attr("content")
	return strings.TrimSpace(title), strings.TrimSpace(desc), title != "" || desc != ""
}

func templateDraft(platform giveaway.Platform) *giveaway.Draft {
	d := &giveaway.Draft{
		Title:        "Sample Giveaway Contest",
		Organizer:    "Sample Organizer",
		Platform:     platform,
		Prize:        "Sample Prize",
		Requirements: "Follow, Like, Comment, Share",
		Notes:        "Extracted from URL",
	}
	switch platform {
	case giveaway.PlatformFacebook:
		d.Title = "Facebook Giveaway Contest"
		d.Requirements = "Follow page, Like post, Comment with 3 friends tagged, Share to timeline"
	case giveaway.PlatformInstagram:
		d.Title = "Instagram Giveaway"
		d.Requirements = "Follow account, Like this post, Tag 3 friends in comments"
	case giveaway.PlatformTwitter:
		d.Title = "Twitter Giveaway"
		d.Requirements = "Follow account, Retweet this post, Like the post"
	case giveaway.PlatformTikTok:
		d.Title = "TikTok Giveaway"
		d.Requirements = "Follow account, Like this video, Comment below"
	}
	return d
}
