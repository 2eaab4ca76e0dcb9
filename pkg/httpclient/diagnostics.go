package httpclient

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxSnippetLen = 512

func responseSnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

// htmlTitle extracts the <title> of an HTML error page, typically served by a
// proxy or gateway in front of the API.
func htmlTitle(contentType string, body []byte) string {
	if !strings.Contains(strings.ToLower(contentType), "html") {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

func (c *Client) logUnparseable(d Descriptor, status int, contentType string, body []byte) {
	meta := map[string]any{
		"method":       d.Method,
		"url":          d.URL,
		"status":       status,
		"content_type": contentType,
		"body":         responseSnippet(body),
	}
	if title := htmlTitle(contentType, body); title != "" {
		meta["html_title"] = title
	}
	c.log.WarnObj("response body is not json", "response_meta", meta)
}
