package upstream

import (
	"Facely/core"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

var (
	defaultURL       = "https://thispersondoesnotexist.com/"
	defaultUserAgent = "facely-bot"
	defaultTimeout   = 30 * time.Second

	// larger payloads are rejected with core.ErrTooLarge
	maxPayload int64 = 16 << 20
)

// Fetcher downloads one generated image per call from a fixed URL.
type Fetcher struct {
	options *fetcherOptions
	c       *http.Client
}

type fetcherOptions struct {
	url        string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

// Option is a function that modifies the fetcher options.
type Option func(*fetcherOptions) error

func NewFetcher(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		options: &fetcherOptions{
			url:       defaultURL,
			userAgent: defaultUserAgent,
			timeout:   defaultTimeout,
		},
	}

	var errs []error
	for _, option := range opts {
		if err := option(f.options); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	f.c = f.options.httpClient
	if f.c == nil {
		f.c = &http.Client{Timeout: f.options.timeout}
	}
	return f, nil
}

func WithURL(url string) Option {
	return func(o *fetcherOptions) error {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("unsupported image url %q", url)
		}
		o.url = url
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(o *fetcherOptions) error {
		o.userAgent = userAgent
		return nil
	}
}

// WithTimeout sets the timeout of the default http client; ignored with WithHTTPClient.
func WithTimeout(timeout time.Duration) Option {
	return func(o *fetcherOptions) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %s", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *fetcherOptions) error {
		o.httpClient = httpClient
		return nil
	}
}

// Fetch performs a single GET and returns the image bytes.
// Any failure is reported as *core.UpstreamFetchError.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.options.url, nil)
	if err != nil {
		return nil, &core.UpstreamFetchError{Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("User-Agent", f.options.userAgent)
	req.Header.Set("Accept", "image/*")

	resp, err := f.c.Do(req)
	if err != nil {
		return nil, &core.UpstreamFetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &core.UpstreamFetchError{Status: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayload+1))
	if err != nil {
		return nil, &core.UpstreamFetchError{Status: resp.StatusCode, Err: fmt.Errorf("reading body: %w", err)}
	}
	if int64(len(body)) > maxPayload {
		return nil, &core.UpstreamFetchError{Status: resp.StatusCode, Err: fmt.Errorf("%w: more than %d bytes", core.ErrTooLarge, maxPayload)}
	}
	if len(body) == 0 {
		return nil, &core.UpstreamFetchError{Status: resp.StatusCode, Err: core.ErrEmptyPayload}
	}
	if mimeType := http.DetectContentType(body); !strings.HasPrefix(mimeType, "image/") {
		return nil, &core.UpstreamFetchError{Status: resp.StatusCode, Err: fmt.Errorf("%w: %s", core.ErrNotImage, mimeType)}
	}

	return body, nil
}
