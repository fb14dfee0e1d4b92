// Package twitter fetches public tweet text for the identity claim flow.
// It never authenticates against the platform; it reads the tweet through
// the FxTwitter JSON API and falls back to the official oEmbed endpoint.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/net/html"
	"golang.org/x/time/rate"
)

const (
	defaultFxBase     = "https://api.fxtwitter.com"
	defaultOEmbedBase = "https://publish.twitter.com/oembed"
	defaultUserAgent  = "Mozilla/5.0 (compatible; agentdb/1.0)"
	maxBodyBytes      = 1 << 20
)

// Fetcher retrieves public tweet text. Requests are rate limited per host
// so fallback endpoints are not penalized for a throttled primary.
type Fetcher struct {
	client    *http.Client
	userAgent string

	fxBase     string
	oembedBase string

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	perHost  rate.Limit
	burst    int
}

// NewFetcher creates a fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:  defaultUserAgent,
		fxBase:     defaultFxBase,
		oembedBase: defaultOEmbedBase,
		limiters:   make(map[string]*rate.Limiter),
		perHost:    rate.Limit(1),
		burst:      3,
	}
}

// SetEndpoints overrides the upstream base URLs. Used by tests.
func (f *Fetcher) SetEndpoints(fxBase, oembedBase string) {
	f.fxBase = fxBase
	f.oembedBase = oembedBase
}

// TweetText returns the text of a public tweet, trying FxTwitter first
// and the oEmbed endpoint second.
func (f *Fetcher) TweetText(ctx context.Context, handle, tweetID string) (string, error) {
	text, fxErr := f.fromFx(ctx, handle, tweetID)
	if fxErr == nil && text != "" {
		return text, nil
	}

	text, oeErr := f.fromOEmbed(ctx, handle, tweetID)
	if oeErr == nil && text != "" {
		return text, nil
	}

	return "", fmt.Errorf("failed to fetch tweet %s/%s: fxtwitter: %v, oembed: %v", handle, tweetID, fxErr, oeErr)
}

func (f *Fetcher) fromFx(ctx context.Context, handle, tweetID string) (string, error) {
	body, err := f.get(ctx, fmt.Sprintf("%s/%s/status/%s", f.fxBase, handle, tweetID))
	if err != nil {
		return "", err
	}

	var payload struct {
		Tweet struct {
			Text string `json:"text"`
		} `json:"tweet"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to parse fxtwitter response: %w", err)
	}

	return strings.TrimSpace(payload.Tweet.Text), nil
}

func (f *Fetcher) fromOEmbed(ctx context.Context, handle, tweetID string) (string, error) {
	statusURL := fmt.Sprintf("https://twitter.com/%s/status/%s", handle, tweetID)
	body, err := f.get(ctx, f.oembedBase+"?url="+url.QueryEscape(statusURL))
	if err != nil {
		return "", err
	}

	var payload struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("failed to parse oembed response: %w", err)
	}
	if payload.HTML == "" {
		return "", fmt.Errorf("oembed response carried no html")
	}

	return ExtractText(payload.HTML), nil
}

func (f *Fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	if err := f.waitHost(ctx, rawURL); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

func (f *Fetcher) waitHost(ctx context.Context, rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}

	f.mu.Lock()
	limiter, ok := f.limiters[parsed.Host]
	if !ok {
		limiter = rate.NewLimiter(f.perHost, f.burst)
		f.limiters[parsed.Host] = limiter
	}
	f.mu.Unlock()

	return limiter.Wait(ctx)
}

// ExtractText flattens an HTML fragment to its visible text with
// whitespace collapsed.
func ExtractText(fragment string) string {
	node, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	return strings.Join(strings.Fields(sb.String()), " ")
}
