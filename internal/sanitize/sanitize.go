// Package sanitize turns feed-supplied HTML fragments into plain text and
// extracts a usable article image.
//
// Two cleaning paths exist. The simple path passes the feed's own plain
// description through untouched. The rich path handles feeds that embed
// full HTML content: it removes <img> tags (tracking pixels included),
// strips markup, and additionally removes parenthetical link/caption
// clutter such as "(Foto: example.com)" that plain tag stripping would
// leave behind as readable text.
package sanitize

import (
	"html"
	"regexp"
	"strings"

	gosanitize "github.com/mrz1836/go-sanitize"
)

// imageWidth is the fixed width every extracted image URL is rewritten to.
const imageWidth = "width=320"

var (
	imgTagRe     = regexp.MustCompile(`(?i)<img[^>]*>`)
	imgSrcRe     = regexp.MustCompile(`(?i)<img\s+src="([^"]+)"`)
	widthRe      = regexp.MustCompile(`width=\d+`)
	parenRe      = regexp.MustCompile(`\([^)]*\)`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// ExtractImageURL returns the src of the first <img> tag in htmlContent
// with any width=<digits> token rewritten to width=320, or "" when no
// image is present.
func ExtractImageURL(htmlContent string) string {
	if htmlContent == "" {
		return ""
	}
	m := imgSrcRe.FindStringSubmatch(htmlContent)
	if m == nil {
		return ""
	}
	return widthRe.ReplaceAllString(m[1], imageWidth)
}

// CleanSimple is the simple path: the caller's description is already
// plain, so it is returned as-is.
func CleanSimple(description string) string {
	return description
}

// CleanRich reduces a full HTML content block to plain text.
//
// Parenthetical groups in the original markup that carry a markup or link
// signal (a tag, the substring "http", or an escaped angle bracket) are
// rendered to their plain-text form first and removed from the cleaned
// output afterwards; parenthetical groups that are ordinary prose are kept.
func CleanRich(raw string) string {
	if raw == "" {
		return ""
	}

	noImg := imgTagRe.ReplaceAllString(raw, "")

	// Collect the plain-text renderings of decorative parenthetical groups
	// from the original markup, before any stripping shifts their content.
	var decorative []string
	for _, grp := range parenRe.FindAllString(raw, -1) {
		if !strings.Contains(grp, "<") && !strings.Contains(grp, "http") && !strings.Contains(grp, "&lt;") {
			continue
		}
		plain := strings.TrimSpace(html.UnescapeString(gosanitize.HTML(grp)))
		if plain != "" {
			decorative = append(decorative, plain)
		}
	}

	text := html.UnescapeString(gosanitize.HTML(noImg))

	for _, grp := range decorative {
		text = strings.ReplaceAll(text, grp, "")
	}

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
}
