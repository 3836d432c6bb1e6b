// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"golang.org/x/net/html"

	"autoblog/internal/models"
)

const (
	defaultImagePath = "/default-featured-image.jpg"
	defaultLogoPath  = "/logo.png"
	jsonLDType       = "application/ld+json"
)

// links holds the absolute URLs a post's head tags should point at.
type links struct {
	post  string
	image string
	logo  string
}

func resolveLinks(post models.PostData, site models.Settings) links {
	base := strings.TrimRight(site.SiteURL, "/")
	return links{
		post:  base + "/post/" + post.Slug,
		image: absolute(base, post.FeaturedImage, defaultImagePath),
		logo:  absolute(base, site.LogoURL, defaultLogoPath),
	}
}

func absolute(base, ref, fallback string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		ref = fallback
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "//") {
		return ref
	}
	return base + "/" + strings.TrimLeft(ref, "/")
}

// FixSEO points the document's og:url, og:image, canonical link and
// JSON-LD metadata at the post's public URL, featured image and
// publisher. Only those tags and the contents of ld+json scripts are
// rewritten; every other byte of doc is preserved.
//
// The returned HTML is usable even when warnings is non-empty. Each warning
// describes a JSON-LD block that could not be parsed and was left as is.
func FixSEO(doc string, post models.PostData, site models.Settings) (out string, warnings []error) {
	l := resolveLinks(post, site)

	var b strings.Builder
	b.Grow(len(doc) + 512)

	z := html.NewTokenizer(strings.NewReader(doc))
	inLD := false
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		raw := string(z.Raw())

		switch tt {
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data == "script" && tt == html.StartTagToken {
				inLD = strings.EqualFold(strings.TrimSpace(attr(tok, "type")), jsonLDType)
				break
			}
			if rewritten, ok := rewriteHeadTag(tok, l); ok {
				b.WriteString(renderTag(rewritten, tt == html.SelfClosingTagToken))
				continue
			}
		case html.TextToken:
			if inLD {
				fixed, err := fixJSONLD(raw, post, site, l)
				if err != nil {
					warnings = append(warnings, err)
					break
				}
				b.WriteString(fixed)
				continue
			}
		case html.EndTagToken:
			inLD = false
		}
		b.WriteString(raw)
	}
	return b.String(), warnings
}

// rewriteHeadTag returns the token with its URL attribute replaced when it
// is one of the tags FixSEO owns. ok is false when nothing changed.
func rewriteHeadTag(tok html.Token, l links) (html.Token, bool) {
	switch tok.Data {
	case "meta":
		key := attr(tok, "property")
		if key == "" {
			key = attr(tok, "name")
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "og:url":
			return tok, setAttr(&tok, "content", l.post)
		case "og:image":
			return tok, setAttr(&tok, "content", l.image)
		}
	case "link":
		if hasToken(attr(tok, "rel"), "canonical") {
			return tok, setAttr(&tok, "href", l.post)
		}
	}
	return tok, false
}

func fixJSONLD(raw string, post models.PostData, site models.Settings, l links) (string, error) {
	if strings.TrimSpace(raw) == "" {
		return raw, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var data any
	if err := dec.Decode(&data); err != nil {
		return "", fmt.Errorf("parse json-ld: %w", err)
	}
	if dec.More() {
		return "", fmt.Errorf("parse json-ld: trailing data after value")
	}

	switch v := data.(type) {
	case map[string]any:
		applySchema(v, post, site, l)
	case []any:
		for _, item := range v {
			if obj, ok := item.(map[string]any); ok {
				applySchema(obj, post, site, l)
			}
		}
	default:
		return "", fmt.Errorf("parse json-ld: unexpected %T at top level", data)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return "", fmt.Errorf("encode json-ld: %w", err)
	}
	body := strings.ReplaceAll(strings.TrimRight(buf.String(), "\n"), "</", `<\/`)
	return "\n" + body + "\n", nil
}

func applySchema(obj map[string]any, post models.PostData, site models.Settings, l links) {
	obj["url"] = l.post
	obj["image"] = l.image
	if !post.CreatedAt.IsZero() {
		obj["datePublished"] = post.CreatedAt.UTC().Format(time.RFC3339)
	}
	if !post.UpdatedAt.IsZero() {
		obj["dateModified"] = post.UpdatedAt.UTC().Format(time.RFC3339)
	}
	switch page := obj["mainEntityOfPage"].(type) {
	case string:
		obj["mainEntityOfPage"] = l.post
	case map[string]any:
		page["@id"] = l.post
	}

	name := site.Publisher()
	if name == "" {
		name = models.DefaultSiteName
	}
	obj["publisher"] = map[string]any{
		"@type": "Organization",
		"name":  name,
		"logo": map[string]any{
			"@type": "ImageObject",
			"url":   l.logo,
		},
	}
}
