package steam

import (
	"regexp"
	"strconv"
	"strings"
)

// Extraction primitives for the storefront's search-results markup.
// The storefront has no public API: every field is pulled out of raw
// HTML with fixed patterns. The rules here are deliberately byte-level
// (single-pass entity decoding, empty-after-clean counts as absent)
// because downstream field decoders depend on them.

var (
	numericEntityRe = regexp.MustCompile(`&#(\d+);`)
	tagRe           = regexp.MustCompile(`<[^>]+>`)
)

// DecodeEntities replaces the five standard named entities and numeric
// character references. &amp; is replaced last so already-encoded
// sequences like "&amp;lt;" decode exactly once.
func DecodeEntities(s string) string {
	s = strings.ReplaceAll(s, "&lt;", "<")
	s = strings.ReplaceAll(s, "&gt;", ">")
	s = strings.ReplaceAll(s, "&quot;", `"`)
	s = strings.ReplaceAll(s, "&#39;", "'")
	s = strings.ReplaceAll(s, "&amp;", "&")
	return numericEntityRe.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.Atoi(m[2 : len(m)-1])
		if err != nil {
			return m
		}
		return string(rune(code))
	})
}

// ExtractAttr returns the value of the first name="..." occurrence in
// the block, or "" / false when the attribute is absent.
func ExtractAttr(block, name string) (string, bool) {
	re, err := regexp.Compile(regexp.QuoteMeta(name) + `="([^"]*)"`)
	if err != nil {
		return "", false
	}
	m := re.FindStringSubmatch(block)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ExtractText applies a pattern with one capture group, then decodes
// entities, strips tags and trims. A capture that is empty after
// cleaning counts as absent — several row fields (release date, review
// summary) rely on whitespace-only captures collapsing to nothing.
func ExtractText(block string, re *regexp.Regexp) (string, bool) {
	m := re.FindStringSubmatch(block)
	if m == nil || m[1] == "" {
		return "", false
	}

	text := strings.TrimSpace(tagRe.ReplaceAllString(DecodeEntities(m[1]), ""))
	if text == "" {
		return "", false
	}
	return text, true
}

var nonDigitRe = regexp.MustCompile(`[^\d]`)

// ParsePrice converts a display price like "₩ 44,800" to minor
// currency units (two implied decimal places). Empty or digit-free
// input yields nil.
func ParsePrice(text string) *int {
	numeric := nonDigitRe.ReplaceAllString(text, "")
	if numeric == "" {
		return nil
	}
	n, err := strconv.Atoi(numeric)
	if err != nil {
		return nil
	}
	n *= 100
	return &n
}
