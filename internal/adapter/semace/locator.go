// Package semace locates and downloads the latest bulletin published on the
// SEMACE beach water-quality listing page.
package semace

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/doyensec/safeurl"
	"golang.org/x/net/html"
)

const (
	// DefaultListingURL is the SEMACE bulletin listing page.
	DefaultListingURL = "https://www.semace.ce.gov.br/boletim-de-balneabilidade/"

	maxListingSize = 5 << 20
	chunkSize      = 32 << 10
)

// NewHTTPClient returns the client used for listing and document fetches.
// With guard enabled, requests to private, loopback and link-local addresses
// and to non-web ports are refused, since the document URL is taken from
// scraped HTML.
func NewHTTPClient(timeout time.Duration, guard bool) *http.Client {
	if !guard {
		return &http.Client{Timeout: timeout}
	}
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()
	return safeurl.Client(cfg).Client
}

// Locator finds the bulletin link on the listing page and downloads the document.
// It implements pipeline.Locator.
type Locator struct {
	listingURL string
	marker     string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewLocator creates a Locator. marker is matched case-insensitively against
// anchor text.
func NewLocator(listingURL, marker string, httpClient *http.Client, logger *slog.Logger) *Locator {
	return &Locator{
		listingURL: listingURL,
		marker:     marker,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Locate returns the absolute URL of the first listing link whose text
// contains the marker.
func (l *Locator) Locate(ctx context.Context) (string, error) {
	resp, err := l.get(ctx, "fetch listing", l.listingURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	base, err := url.Parse(l.listingURL)
	if err != nil {
		return "", errors.Wrap(err, "parse listing URL")
	}

	links := scanLinks(io.LimitReader(resp.Body, maxListingSize))
	l.logger.Debug("listing scanned", "links", len(links))

	needle := strings.ToLower(l.marker)
	for _, a := range links {
		if !strings.Contains(strings.ToLower(a.text), needle) {
			continue
		}
		ref, err := url.Parse(strings.TrimSpace(a.href))
		if err != nil {
			l.logger.Warn("skipping unparsable bulletin link", "href", a.href, "error", err)
			continue
		}
		return base.ResolveReference(ref).String(), nil
	}
	return "", errors.Wrapf(domain.ErrBulletinNotFound, "no link containing %q", l.marker)
}

// Download streams the document at rawURL into dest, replacing any previous
// file. The body is copied in fixed-size chunks into a temporary file in the
// same directory, which is renamed over dest once complete.
func (l *Locator) Download(ctx context.Context, rawURL, dest string) error {
	resp, err := l.get(ctx, "download bulletin", rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(dest)+".*.part")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	n, err := io.CopyBuffer(tmp, resp.Body, make([]byte, chunkSize))
	if err != nil {
		tmp.Close() //nolint:errcheck // copy error takes precedence
		return &domain.FetchError{Op: "download bulletin", URL: rawURL, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp file")
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return errors.Wrapf(err, "replace %s", dest)
	}

	l.logger.Info("bulletin downloaded", "url", rawURL, "path", dest, "bytes", n)
	return nil
}

func (l *Locator) get(ctx context.Context, op, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "%s: create request", op)
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Op: op, URL: rawURL, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close() //nolint:errcheck // status is the error
		return nil, &domain.FetchError{Op: op, URL: rawURL, Status: resp.StatusCode}
	}
	return resp, nil
}

type anchor struct {
	href string
	text string
}

// scanLinks returns every <a href> in document order with its text content.
func scanLinks(r io.Reader) []anchor {
	var links []anchor
	tokenizer := html.NewTokenizer(r)

	var cur *anchor
	var text strings.Builder
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			return links

		case html.StartTagToken:
			name, hasAttr := tokenizer.TagName()
			if string(name) != "a" {
				continue
			}
			cur = nil
			for hasAttr {
				var key, val []byte
				key, val, hasAttr = tokenizer.TagAttr()
				if string(key) == "href" {
					cur = &anchor{href: string(val)}
				}
			}
			text.Reset()

		case html.TextToken:
			if cur != nil {
				text.Write(tokenizer.Text())
				text.WriteByte(' ')
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if string(name) == "a" && cur != nil {
				cur.text = strings.Join(strings.Fields(text.String()), " ")
				links = append(links, *cur)
				cur = nil
			}
		}
	}
}
