// Package slugify derives URL-safe slugs from display titles.
package slugify

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases the input, replaces every run of non-alphanumeric
// characters with a single dash and trims leading/trailing dashes. The
// result may be empty.
func Slugify(s string) string {
	s = strings.ToLower(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// ForTitle slugifies a title, falling back to a timestamped placeholder
// when the title yields nothing usable.
func ForTitle(title string) string {
	if slug := Slugify(title); slug != "" {
		return slug
	}
	return fmt.Sprintf("untitled-%d", time.Now().UnixMilli())
}
