package pipeline

import (
	"regexp"
	"strings"

	"github.com/desertthunder/threadlist/internal/threads"
	"github.com/forPelevin/gomoji"
)

// maxQueryLen is the search API's hard query-length ceiling, in characters.
// Applied once, at resolution time, never during extraction.
const maxQueryLen = 100

// automatedAuthors are system identities whose comments never contain song
// suggestions worth resolving.
var automatedAuthors = map[string]struct{}{
	"AutoModerator": {},
	"Reddit":        {},
}

var urlPattern = regexp.MustCompile(`http\S+`)

// ExtractQueries walks the comment tree in traversal order and yields one
// candidate query per surviving comment line. The sequence is lazy and
// single-use: iteration stops as soon as yield returns false.
//
// Per comment: skipped entirely when the author is absent, an automated
// identity, or the body is an image-only post. Per line: URLs and emoji are
// stripped, then empty, whitespace-only and bare "[" lines (image-link
// markdown residue) are dropped.
func ExtractQueries(t *threads.Thread, yield func(string) bool) {
	for _, comment := range t.Flatten() {
		if skipComment(comment) {
			continue
		}
		for _, line := range strings.Split(comment.Body, "\n") {
			candidate := CleanLine(line)
			if candidate == "" {
				continue
			}
			if !yield(candidate) {
				return
			}
		}
	}
}

// CollectQueries materializes the full candidate sequence. Convenience for
// callers that want a count up front.
func CollectQueries(t *threads.Thread) []string {
	var out []string
	ExtractQueries(t, func(q string) bool {
		out = append(out, q)
		return true
	})
	return out
}

func skipComment(c *threads.Comment) bool {
	if c.Author == "" {
		return true
	}
	if _, automated := automatedAuthors[c.Author]; automated {
		return true
	}
	// Removed and deleted comments leave only a tombstone body.
	if body := strings.TrimSpace(c.Body); body == "[removed]" || body == "[deleted]" {
		return true
	}
	// Image posts carry no text payload of value.
	if strings.Contains(c.Body, "![img]") || strings.Contains(c.Body, "![gif]") {
		return true
	}
	return false
}

// CleanLine strips URL-shaped substrings and pictographic characters from a
// single comment line. Returns "" when nothing usable survives: blank lines,
// whitespace-only lines, and the lone "[" left behind once an image link's
// URL is removed.
func CleanLine(line string) string {
	line = urlPattern.ReplaceAllString(line, "")
	line = stripEmoji(line)

	if line == "" || line == "[" || strings.TrimSpace(line) == "" {
		return ""
	}
	return line
}

// stripEmoji removes pictographic runes along with a single space
// immediately preceding each one, so "A 🎵 B" collapses to "A B" rather
// than leaving a doubled gap.
func stripEmoji(line string) string {
	if !gomoji.ContainsEmoji(line) {
		return line
	}

	runes := []rune(line)
	out := make([]rune, 0, len(runes))
	for _, r := range runes {
		if gomoji.ContainsEmoji(string(r)) {
			if n := len(out); n > 0 && out[n-1] == ' ' {
				out = out[:n-1]
			}
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// TruncateQuery caps a candidate query at the search API's character limit.
// Called exactly once per candidate, immediately before the search call.
func TruncateQuery(q string) string {
	runes := []rune(q)
	if len(runes) <= maxQueryLen {
		return q
	}
	return string(runes[:maxQueryLen])
}
