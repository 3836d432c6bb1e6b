// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// PlaceholderAuthor is the author name models tend to emit when asked for
// a meta author tag.
const PlaceholderAuthor = "Your Name"

var (
	htmlFence   = regexp.MustCompile("(?i)```html")
	extraBreaks = regexp.MustCompile(`\n{3,}`)
)

// Sanitize strips the document wrapper a model wraps around article HTML:
// the doctype, <html> and </html> tags, stylesheet links and markdown code
// fences. A placeholder author meta tag is rewritten to author (when
// author is non-empty), runs of blank lines are collapsed and the result
// is trimmed. The transform is repeated until it stops changing the
// input, so Sanitize(Sanitize(x)) == Sanitize(x).
//
// Every pass that changes the document either shortens it or replaces a
// placeholder tag that later passes leave alone, so the loop terminates.
func Sanitize(doc, author string) string {
	if strings.EqualFold(strings.TrimSpace(author), PlaceholderAuthor) {
		author = ""
	}
	out := doc
	for {
		next := sanitizeOnce(out, author)
		if next == out {
			return out
		}
		out = next
	}
}

func sanitizeOnce(doc, author string) string {
	var b strings.Builder
	b.Grow(len(doc))

	z := html.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		// Raw must be copied before TagName, which lowercases in place.
		raw := string(z.Raw())

		switch tt {
		case html.DoctypeToken:
			continue
		case html.StartTagToken, html.SelfClosingTagToken, html.EndTagToken:
			tok := z.Token()
			switch {
			case tok.Data == "html":
				continue
			case tok.Data == "link" && tt != html.EndTagToken && hasToken(attr(tok, "rel"), "stylesheet"):
				continue
			case tok.Data == "meta" && tt != html.EndTagToken && author != "" && isPlaceholderAuthor(tok):
				setAttr(&tok, "content", author)
				b.WriteString(renderTag(tok, tt == html.SelfClosingTagToken))
				continue
			}
		}
		b.WriteString(raw)
	}

	out := htmlFence.ReplaceAllString(b.String(), "")
	out = strings.ReplaceAll(out, "```", "")
	out = extraBreaks.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

func isPlaceholderAuthor(tok html.Token) bool {
	return strings.EqualFold(attr(tok, "name"), "author") &&
		strings.EqualFold(strings.TrimSpace(attr(tok, "content")), PlaceholderAuthor)
}
