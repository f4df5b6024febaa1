// package threads reads a Reddit discussion thread: the submission plus its
// nested comment tree, with all "load more" pagination resolved.
//
// The concrete client lives in reddit.go; everything else in the repository
// depends only on [Source] and the types here, and sees failures only as the
// shared error kinds.
package threads

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/threadlist/internal/shared"
)

// threadURLPattern matches canonical submission URLs. Mobile share links with
// query suffixes are normalized before matching.
var (
	threadURLPattern = regexp.MustCompile(`(https?://)?(www\.)?reddit\.com/r/[\w-]+/comments/([\w-]+)/?`)
	utmSuffix        = regexp.MustCompile(`\?utm_source=.*$`)
)

// Comment is one node of the comment tree. Author is empty when the account
// was deleted.
type Comment struct {
	Author  string
	Body    string
	Replies []*Comment
}

// Thread is a submission with its comment tree. The tree may be partially
// loaded until [Source.ExpandAll] returns.
type Thread struct {
	ID       string
	Title    string
	URL      string
	Comments []*Comment

	// handle retained by the source for pagination
	ref any
}

// Flatten returns the comment tree in depth-first preorder: each comment
// followed by its replies, preserving sibling order as supplied upstream.
func (t *Thread) Flatten() []*Comment {
	var out []*Comment
	var walk func(cs []*Comment)
	walk = func(cs []*Comment) {
		for _, c := range cs {
			out = append(out, c)
			walk(c.Replies)
		}
	}
	walk(t.Comments)
	return out
}

// Source fetches discussion threads.
type Source interface {
	// FetchThread resolves a submission URL to a Thread with the first page
	// of comments. Returns shared.ErrInvalidInput for malformed URLs and
	// shared.ErrNotFound when the submission does not exist.
	FetchThread(ctx context.Context, url string) (*Thread, error)

	// ExpandAll resolves every pending "load more" stub so the Thread holds
	// the complete comment tree.
	ExpandAll(ctx context.Context, t *Thread) error
}

// ParseThreadURL validates a submission URL and extracts the post ID.
// A trailing utm_source query suffix (mobile app share links) is ignored.
func ParseThreadURL(rawURL string) (string, error) {
	cleaned := utmSuffix.ReplaceAllString(strings.TrimSpace(rawURL), "")

	m := threadURLPattern.FindStringSubmatch(cleaned)
	if m == nil {
		return "", fmt.Errorf("%w: not a reddit submission URL: %q", shared.ErrInvalidInput, rawURL)
	}
	return m[3], nil
}
