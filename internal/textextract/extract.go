// Package textextract turns uploaded or fetched documents into plain text
// suitable for review.
package textextract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	neturl "net/url"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"scholar/internal/httpclient"
	"scholar/internal/logging"
)

// Format is the detected input format.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatPDF      Format = "pdf"
	FormatUnknown  Format = "unknown"
)

// ErrUnsupported is returned for formats that cannot be converted.
var ErrUnsupported = errors.New("unsupported document format")

// ErrInvalidURL is returned for URLs that cannot be fetched.
var ErrInvalidURL = errors.New("invalid URL")

// ErrEmpty is returned when a document yields no text.
var ErrEmpty = errors.New("no text could be extracted")

// Result is an extracted document.
type Result struct {
	Text   string `json:"text"`
	Title  string `json:"title,omitempty"`
	Format Format `json:"format"`
	Source string `json:"source,omitempty"`
}

// Chars returns the rune count of the text.
func (r Result) Chars() int { return utf8.RuneCountInString(r.Text) }

// Extractor converts documents. The zero value is not usable; use New.
type Extractor struct {
	client   *http.Client
	maxBytes int64
	logger   logging.Logger
}

// New builds an extractor. maxBytes bounds both uploads and fetched bodies.
func New(fetchTimeout time.Duration, maxBytes int64, logger logging.Logger) *Extractor {
	logger = logging.OrNop(logger)
	return &Extractor{
		client:   httpclient.New(fetchTimeout, logger),
		maxBytes: maxBytes,
		logger:   logger,
	}
}

// WithClient replaces the HTTP client used by FromURL.
func (e *Extractor) WithClient(c *http.Client) *Extractor {
	e.client = c
	return e
}

// Detect guesses the format from the content type, then the file name,
// then the leading bytes.
func Detect(name, contentType string, data []byte) Format {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch mt {
		case "text/html", "application/xhtml+xml":
			return FormatHTML
		case "text/markdown", "text/x-markdown":
			return FormatMarkdown
		case "application/pdf":
			return FormatPDF
		case "text/plain":
			return FormatText
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".md", ".markdown":
		return FormatMarkdown
	case ".pdf":
		return FormatPDF
	case ".txt", ".text", "":
	default:
		if !utf8.Valid(data) {
			return FormatUnknown
		}
	}
	head := bytes.TrimSpace(data)
	if len(head) > 512 {
		head = head[:512]
	}
	switch {
	case bytes.HasPrefix(head, []byte("%PDF-")):
		return FormatPDF
	case bytes.HasPrefix(bytes.ToLower(head), []byte("<!doctype html")), bytes.Contains(bytes.ToLower(head), []byte("<html")):
		return FormatHTML
	case !utf8.Valid(data):
		return FormatUnknown
	}
	return FormatText
}

// FromBytes extracts text from an uploaded document.
func (e *Extractor) FromBytes(name, contentType string, data []byte) (Result, error) {
	if e.maxBytes > 0 && int64(len(data)) > e.maxBytes {
		return Result{}, httpclient.ResponseTooLargeError{Limit: e.maxBytes}
	}
	format := Detect(name, contentType, data)
	res := Result{Format: format, Source: name}

	switch format {
	case FormatText, FormatMarkdown:
		res.Text = normalize(string(data))
	case FormatHTML:
		title, text, err := htmlToText(data)
		if err != nil {
			return res, fmt.Errorf("parse HTML: %w", err)
		}
		res.Title, res.Text = title, text
	default:
		return res, fmt.Errorf("%w: %s", ErrUnsupported, format)
	}

	if res.Text == "" {
		return res, ErrEmpty
	}
	return res, nil
}

// FromURL fetches an http(s) document and extracts it.
func (e *Extractor) FromURL(ctx context.Context, rawURL string) (Result, error) {
	parsed, err := neturl.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Result{}, fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return Result{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "scholar/1.0 (document fetcher)")

	resp, err := e.client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("fetch %s: %w", parsed.Host, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("fetch %s: HTTP %d", parsed.Host, resp.StatusCode)
	}
	body, err := httpclient.ReadAllWithLimit(resp.Body, e.maxBytes)
	if err != nil {
		return Result{}, err
	}
	e.logger.Debug("fetched %d bytes from %s", len(body), parsed.Host)

	res, err := e.FromBytes(parsed.Path, resp.Header.Get("Content-Type"), body)
	res.Source = resp.Request.URL.String()
	return res, err
}

func htmlToText(data []byte) (string, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", "", err
	}
	doc.Find("script, style, nav, footer, header, aside, iframe, noscript").Remove()

	title := strings.TrimSpace(doc.Find("title").First().Text())

	var b strings.Builder
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, pre, blockquote").Each(func(_ int, s *goquery.Selection) {
		if s.ParentsFiltered("li, blockquote").Length() > 0 {
			return
		}
		text := collapse(s.Text())
		if text == "" {
			return
		}
		node := goquery.NodeName(s)
		switch {
		case len(node) == 2 && node[0] == 'h':
			b.WriteString(strings.Repeat("#", int(node[1]-'0')) + " " + text + "\n\n")
		case node == "li":
			b.WriteString("- " + text + "\n")
		case node == "pre":
			b.WriteString(strings.TrimSpace(s.Text()) + "\n\n")
		default:
			b.WriteString(text + "\n\n")
		}
	})

	text := normalize(b.String())
	if text == "" {
		text = collapse(doc.Find("body").Text())
	}
	return title, text, nil
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// normalize unifies line endings and trims blank runs.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimPrefix(s, "\ufeff")
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
