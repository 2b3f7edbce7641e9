// Copyright 2025 The HerSafety Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
)

// Validates that response seems to be an HTML response.
func hasHTMLContentType(media string) bool {
	const expectedMedia = "text/html"

	return strings.EqualFold(
		expectedMedia,
		media[0:min(len(media), len(expectedMedia))],
	)
}

// AsReader converts an HTTP response body to an io.Reader with the correct charset.
func AsReader(resp *http.Response) (io.Reader, error) {
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	media := resp.Header.Get("Content-Type")
	if !hasHTMLContentType(media) {
		return nil, fmt.Errorf("media type is %s", media)
	}

	rr, err := charset.NewReader(resp.Body, media)
	if err != nil {
		return nil, err
	}

	return rr, nil
}

// AsNode parses an io.Reader as an HTML node.
func AsNode(r io.Reader) (*html.Node, error) {
	n, err := html.Parse(r)
	if nil != err {
		return nil, fmt.Errorf("parsing body as HTML: %w", err)
	}

	return n, nil
}

// Parse reads an HTML response into a document.
func Parse(resp *http.Response) (*html.Node, error) {
	r, err := AsReader(resp)
	if err != nil {
		return nil, err
	}

	return AsNode(r)
}

// Find returns the first element, in document order, matching fn.
func Find(n *html.Node, fn func(*html.Node) bool) *html.Node {
	if n.Type == html.ElementNode && fn(n) {
		return n
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := Find(child, fn); found != nil {
			return found
		}
	}

	return nil
}

// FindByID returns the element with the given id attribute.
func FindByID(n *html.Node, id string) *html.Node {
	return Find(n, func(e *html.Node) bool {
		v, ok := Attr(e, "id")

		return ok && v == id
	})
}

// FindByTag returns the first element with the given tag name.
func FindByTag(n *html.Node, tag string) *html.Node {
	return Find(n, func(e *html.Node) bool {
		return strings.EqualFold(e.Data, tag)
	})
}

// Attr returns the value of an attribute and whether it is present.
func Attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}

	return "", false
}

// Text concatenates the text nodes below n as they are, without trimming.
func Text(n *html.Node) string {
	sb := strings.Builder{}
	writeText(n, &sb)

	return sb.String()
}

func writeText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)

		return
	}

	for child := n.FirstChild; child != nil; child = child.NextSibling {
		writeText(child, sb)
	}
}
