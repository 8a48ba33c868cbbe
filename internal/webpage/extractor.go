package webpage

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ExcerptMaxLen bounds the plain-text excerpt produced from a fetched page.
const ExcerptMaxLen = 4000

const defaultFetchTimeout = 10 * time.Second

// FetchError reports a failed page fetch or parse. StatusCode is zero
// unless the server answered with a non-2xx status.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Extractor fetches a URL and reduces its visible text to a bounded,
// whitespace-normalized excerpt. One attempt per call, no retries.
type Extractor struct {
	client *http.Client
}

func NewExtractor(timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	return &Extractor{
		client: &http.Client{Timeout: timeout},
	}
}

func (e *Extractor) Extract(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", "kyra-scanner/1.0")

	res, err := e.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &FetchError{URL: pageURL, StatusCode: res.StatusCode, Err: fmt.Errorf("unexpected status %d", res.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", &FetchError{URL: pageURL, Err: fmt.Errorf("parse html: %w", err)}
	}

	// Only visible text belongs in the excerpt.
	doc.Find("script, style, noscript, template, iframe").Remove()
	text := collapseWhitespace(doc.Find("body").Text())
	if text == "" {
		// Fragments without a body element still carry text nodes.
		text = collapseWhitespace(doc.Text())
	}

	if r := []rune(text); len(r) > ExcerptMaxLen {
		text = string(r[:ExcerptMaxLen])
	}
	return text, nil
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
