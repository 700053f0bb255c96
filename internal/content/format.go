// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

// htmlSanitizer strips anything outside the usual user-generated
// content tags from converted article bodies.
var htmlSanitizer = bluemonday.UGCPolicy()

// mobileCSS is prepended to every published post so themes without
// responsive styling still read well on phones.
const mobileCSS = `<style>
@media (max-width: 768px) {
    .featured-image img { max-width: 100% !important; }
    h2 { font-size: 1.5em; }
    h3 { font-size: 1.3em; }
    p, li { font-size: 1.1em; line-height: 1.6; }
}
</style>
`

// BuildHTML renders the article body to sanitized HTML and wraps it in
// the publishing layout: inline mobile CSS, an optional hero image and
// an italic excerpt ahead of the content.
func BuildHTML(article *Article, imageURL string) (string, error) {
	var converted bytes.Buffer
	if err := goldmark.Convert([]byte(article.Body), &converted); err != nil {
		return "", fmt.Errorf("render article body: %w", err)
	}
	body := htmlSanitizer.Sanitize(converted.String())

	var b strings.Builder
	b.WriteString(mobileCSS)
	if imageURL != "" {
		fmt.Fprintf(&b, `<div class="featured-image"><img src="%s" alt="%s" style="width:100%%; max-width:800px; height:auto; border-radius:8px;"></div>`,
			html.EscapeString(imageURL), html.EscapeString(article.Title))
		b.WriteString("\n")
	}
	if article.MetaDescription != "" {
		fmt.Fprintf(&b, `<p class="article-excerpt" style="font-style: italic; color: #666; font-size: 1.1em;">%s</p>`,
			html.EscapeString(article.MetaDescription))
		b.WriteString("\n")
	}
	b.WriteString(body)
	return b.String(), nil
}
