// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package content

import (
	"strings"

	"golang.org/x/net/html"
)

// attr returns the value of the named attribute, or "".
func attr(tok html.Token, key string) string {
	for _, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			return a.Val
		}
	}
	return ""
}

// setAttr sets an attribute in place, appending it if absent. It reports
// whether the token changed.
func setAttr(tok *html.Token, key, val string) bool {
	for i, a := range tok.Attr {
		if a.Namespace == "" && a.Key == key {
			if a.Val == val {
				return false
			}
			tok.Attr[i].Val = val
			return true
		}
	}
	tok.Attr = append(tok.Attr, html.Attribute{Key: key, Val: val})
	return true
}

// hasToken reports whether a space-separated attribute value such as rel
// contains want, ignoring case.
func hasToken(list, want string) bool {
	for _, f := range strings.Fields(list) {
		if strings.EqualFold(f, want) {
			return true
		}
	}
	return false
}

// renderTag writes a start tag with attributes in their original order.
func renderTag(tok html.Token, selfClosing bool) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(tok.Data)
	for _, a := range tok.Attr {
		b.WriteByte(' ')
		if a.Namespace != "" {
			b.WriteString(a.Namespace)
			b.WriteByte(':')
		}
		b.WriteString(a.Key)
		b.WriteString(`="`)
		b.WriteString(html.EscapeString(a.Val))
		b.WriteByte('"')
	}
	if selfClosing {
		b.WriteString(" /")
	}
	b.WriteByte('>')
	return b.String()
}
