package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/grimaldi89/martechito/internal/faults"
	"github.com/grimaldi89/martechito/internal/index"
)

// Loader fetches raw documents over HTTP and reduces HTML pages to their
// visible text.
type Loader struct {
	client *http.Client
}

// NewLoader creates a loader with the given request timeout.
func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Loader{client: &http.Client{Timeout: timeout}}
}

// Fetch retrieves the document at rawURL. HTML responses are reduced to
// visible text with the page title captured; anything else is stored as-is
// with a title derived from the URL path.
func (l *Loader) Fetch(ctx context.Context, rawURL string) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Document{}, fmt.Errorf("building request for %s: %w", rawURL, err)
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return Document{}, faults.Upstream("fetch document "+rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return Document{}, faults.Upstream("fetch document "+rawURL,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	contentType := resp.Header.Get("Content-Type")
	if strings.Contains(contentType, "text/html") {
		title, text, err := extractHTML(resp.Body)
		if err != nil {
			return Document{}, faults.Upstream("parse document "+rawURL, err)
		}
		if title == "" {
			title = titleFromURL(rawURL)
		}
		return Document{Content: text, Meta: index.Meta{Title: title, Source: rawURL}}, nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Document{}, faults.Upstream("fetch document "+rawURL, err)
	}
	return Document{
		Content: string(body),
		Meta:    index.Meta{Title: titleFromURL(rawURL), Source: rawURL},
	}, nil
}

// skipElements are HTML elements whose text content is never visible.
var skipElements = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
}

// extractHTML walks the HTML tree collecting visible text and the page
// title. Block-ish elements become paragraph breaks so the splitter's
// paragraph separator has something to work with.
func extractHTML(r io.Reader) (title, text string, err error) {
	root, err := html.Parse(r)
	if err != nil {
		return "", "", err
	}

	var sb strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if n.Data == "title" && title == "" {
				if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
				return
			}
			if skipElements[n.Data] {
				return
			}
		}
		if n.Type == html.TextNode {
			if trimmed := strings.TrimSpace(n.Data); trimmed != "" {
				sb.WriteString(trimmed)
				sb.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockElements[n.Data] {
			sb.WriteString("\n\n")
		}
	}
	walk(root)

	return title, strings.TrimSpace(sb.String()), nil
}

var blockElements = map[string]bool{
	"p": true, "div": true, "section": true, "article": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "table": true, "ul": true, "ol": true,
	"header": true, "footer": true, "main": true, "br": true,
}

func titleFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" || u.Path == "/" {
		return rawURL
	}
	return path.Base(u.Path)
}
