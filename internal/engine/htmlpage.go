package engine

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// looksLikeHTML reports whether a response is an HTML page rather than data.
// Google serves its sign-in page with status 200 when a sheet is not public.
func looksLikeHTML(contentType string, body []byte) bool {
	if strings.HasPrefix(strings.ToLower(contentType), "text/html") {
		return true
	}
	head := bytes.ToLower(bytes.TrimSpace(body[:min(len(body), 512)]))
	return bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html"))
}

// htmlTitle extracts the <title> text of an HTML document, or "".
func htmlTitle(body []byte) string {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	var find func(*html.Node) string
	find = func(n *html.Node) string {
		if n.Type == html.ElementNode && n.Data == "title" && n.FirstChild != nil {
			return strings.TrimSpace(n.FirstChild.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if t := find(c); t != "" {
				return t
			}
		}
		return ""
	}
	return find(doc)
}

// htmlPageError turns an unexpected HTML page into a malformed-payload error.
func htmlPageError(body []byte) error {
	title := htmlTitle(body)
	if title == "" {
		title = "untitled page"
	}
	return fmt.Errorf("%w: got HTML page %q (is the sheet published?)", ErrMalformedPayload, title)
}
