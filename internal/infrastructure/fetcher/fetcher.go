package fetcher

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"

	"BCVRates/internal/domain"
	"BCVRates/internal/ports"
)

const (
	defaultTimeout = 30 * time.Second
	maxRedirects   = 10
)

// DefaultHeaders mimic a desktop browser with a Venezuelan Spanish locale.
var DefaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Accept-Language": "es-VE,es;q=0.9,en;q=0.8",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
}

// FetchError is returned when both the verified and the insecure attempt failed.
type FetchError struct {
	URL      string
	Verified error
	Insecure error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: verified attempt: %v; insecure attempt: %v", e.URL, e.Verified, e.Insecure)
}

func (e *FetchError) Unwrap() []error {
	return []error{e.Verified, e.Insecure}
}

// Options configure the HTTP clients used by Fetcher.
type Options struct {
	Timeout time.Duration
	Headers map[string]string
	// RootCAs is the trust bundle for the verified attempt; nil means the system pool.
	RootCAs *x509.CertPool
}

// Fetcher downloads a page with strict TLS validation first and falls back
// to an unverified connection once if that fails.
type Fetcher struct {
	verified *resty.Client
	insecure *resty.Client
	logger   *slog.Logger
}

var _ ports.PageFetcher = (*Fetcher)(nil)

// New builds both clients up front; they differ only in TLS settings.
func New(opts Options, logger *slog.Logger) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Headers == nil {
		opts.Headers = DefaultHeaders
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Fetcher{
		verified: newClient(opts, &tls.Config{RootCAs: opts.RootCAs, MinVersion: tls.VersionTLS12}),
		insecure: newClient(opts, &tls.Config{InsecureSkipVerify: true}),
		logger:   logger,
	}
}

func newClient(opts Options, tlsCfg *tls.Config) *resty.Client {
	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeaders(opts.Headers)
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects))
	client.SetTLSClientConfig(tlsCfg)
	return client
}

// Fetch returns the decoded page body and the trust mode that succeeded.
func (f *Fetcher) Fetch(ctx context.Context, url string) (domain.FetchResult, error) {
	body, err := get(ctx, f.verified, url)
	if err == nil {
		return domain.FetchResult{Body: body, TrustMode: domain.TrustVerified}, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return domain.FetchResult{}, fmt.Errorf("fetch %s: %w: %w", url, ctxErr, err)
	}

	f.logger.Warn("verified request failed, retrying without certificate verification",
		"url", url, "error", err)

	body, insecureErr := get(ctx, f.insecure, url)
	if insecureErr != nil {
		return domain.FetchResult{}, &FetchError{URL: url, Verified: err, Insecure: insecureErr}
	}

	return domain.FetchResult{Body: body, TrustMode: domain.TrustInsecureFallback}, nil
}

func get(ctx context.Context, client *resty.Client, url string) (string, error) {
	res, err := client.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("request page: %w", err)
	}
	if !res.IsSuccess() {
		return "", fmt.Errorf("%s returned %s", url, res.Status())
	}

	return decode(res.Body(), res.Header().Get("Content-Type"))
}

// decode transcodes body to UTF-8. Only a charset from the Content-Type
// header or a BOM is trusted outright; otherwise valid UTF-8 is kept as is.
func decode(body []byte, contentType string) (string, error) {
	_, name, certain := charset.DetermineEncoding(body, contentType)
	if !certain && utf8.Valid(body) {
		return string(body), nil
	}

	reader, err := charset.NewReaderLabel(name, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("detect charset %s: %w", name, err)
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("decode body: %w", err)
	}

	return string(decoded), nil
}

// LoadRootCAs reads a PEM bundle; an empty path yields the system pool.
func LoadRootCAs(path string) (*x509.CertPool, error) {
	if path == "" {
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("load system roots: %w", err)
		}
		return pool, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ca bundle %s: %w", path, err)
	}

	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(raw) {
		return nil, fmt.Errorf("ca bundle %s contains no certificates", path)
	}
	return pool, nil
}
