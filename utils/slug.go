package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const SlugMaxLength = 200

var (
	reSlugNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reSlugHyphens  = regexp.MustCompile(`-+`)
	reSlugValid    = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// Slugify lowercases s, strips diacritics and joins the remaining
// alphanumeric runs with single hyphens. Empty results become "item".
func Slugify(s string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = SlugMaxLength
	}
	s = strings.ToLower(strings.TrimSpace(s))

	var buf []rune
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		buf = append(buf, r)
	}
	s = string(buf)

	s = reSlugNonAlnum.ReplaceAllString(s, "-")
	s = reSlugHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	if utf8.RuneCountInString(s) > maxLen {
		s = strings.Trim(string([]rune(s)[:maxLen]), "-")
	}
	if s == "" {
		s = "item"
	}
	return s
}

// IsValidSlug reports whether s is already in slug form.
func IsValidSlug(s string) bool {
	return len(s) <= SlugMaxLength && reSlugValid.MatchString(s)
}

// UniqueSlug returns base, or base with a -2, -3, ... suffix, whichever
// exists reports as free first.
func UniqueSlug(base string, exists func(slug string) (bool, error)) (string, error) {
	slug := base
	for i := 2; i < 100; i++ {
		taken, err := exists(slug)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		suffix := fmt.Sprintf("-%d", i)
		slug = trimForSuffix(base, suffix, SlugMaxLength) + suffix
	}
	return "", fmt.Errorf("no free slug for %q", base)
}

func trimForSuffix(base, suffix string, maxLen int) string {
	keep := maxLen - len(suffix)
	if keep < 1 {
		keep = 1
	}
	rs := []rune(base)
	if len(rs) > keep {
		rs = rs[:keep]
	}
	out := strings.Trim(string(rs), "-")
	if out == "" {
		out = "x"
	}
	return out
}
