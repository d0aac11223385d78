// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package slug turns organization names into subdomain labels.
//
// A label produced here is what the tenant resolver later reads back out of
// the Host header, so the output is restricted to a single DNS label:
// lowercase ASCII letters, digits and inner hyphens, at most 63 bytes.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLabelLength is the DNS limit for a single label.
const MaxLabelLength = 63

var (
	// nonAlphanumeric matches any sequence of characters outside the label alphabet.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multiHyphen collapses multiple consecutive hyphens into one.
	multiHyphen = regexp.MustCompile(`-{2,}`)
	// labelRegex is the accepted shape of a finished label.
	labelRegex = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)
)

// Subdomain converts an arbitrary Unicode string into a subdomain label.
//
// # Transformation Pipeline
//
// 1. Normalizes to NFD and drops combining marks (é becomes e).
// 2. Lowercases.
// 3. Replaces everything outside [a-z0-9] with hyphens and collapses runs.
// 4. Truncates to [MaxLabelLength] and trims edge hyphens.
//
// The result may be empty when the input has no usable characters.
func Subdomain(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn))
	result, _, _ := transform.String(t, s)

	result = strings.ToLower(result)

	result = strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return r
		}
		return '-'
	}, result)

	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multiHyphen.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	if len(result) > MaxLabelLength {
		result = strings.TrimRight(result[:MaxLabelLength], "-")
	}

	return result
}

// IsSubdomain reports whether s is already a valid label.
func IsSubdomain(s string) bool {
	return len(s) <= MaxLabelLength && labelRegex.MatchString(s)
}

// isMn reports whether r is a Unicode non-spacing mark (e.g., accents).
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}
