package threads

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"github.com/desertthunder/threadlist/internal/shared"
	"github.com/vartanbeno/go-reddit/v2/reddit"
)

const defaultUserAgent = "threadlist"

// RedditSource implements [Source] on the public read-only Reddit API.
type RedditSource struct {
	client *reddit.Client
}

// NewRedditSource creates a read-only Reddit client sharing the given HTTP
// connection pool. httpClient may be nil.
func NewRedditSource(httpClient *http.Client, userAgent string) (*RedditSource, error) {
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	opts := []reddit.Opt{reddit.WithUserAgent(userAgent)}
	if httpClient != nil {
		opts = append(opts, reddit.WithHTTPClient(httpClient))
	}

	client, err := reddit.NewReadonlyClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create reddit client: %w", err)
	}

	return &RedditSource{client: client}, nil
}

// FetchThread resolves a submission URL to a [Thread] with the first page of comments.
func (s *RedditSource) FetchThread(ctx context.Context, rawURL string) (*Thread, error) {
	id, err := ParseThreadURL(rawURL)
	if err != nil {
		return nil, err
	}

	pc, _, err := s.client.Post.Get(ctx, id)
	if err != nil {
		return nil, classify(err)
	}

	t := &Thread{
		ID:       id,
		Title:    pc.Post.Title,
		URL:      rawURL,
		Comments: convertComments(pc.Comments),
		ref:      pc,
	}
	return t, nil
}

// ExpandAll resolves all "load more" stubs. The comment tree is rebuilt from
// the upstream handle after each page so ordering follows the API's own
// traversal.
func (s *RedditSource) ExpandAll(ctx context.Context, t *Thread) error {
	pc, ok := t.ref.(*reddit.PostAndComments)
	if !ok {
		return fmt.Errorf("%w: thread was not fetched by this source", shared.ErrInvalidArgument)
	}

	for pc.HasMore() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := s.client.Post.LoadMoreComments(ctx, pc); err != nil {
			return classify(err)
		}
	}

	t.Comments = convertComments(pc.Comments)
	return nil
}

// convertComments maps the library's comment tree onto [Comment], dropping
// the library types at the package boundary.
func convertComments(cs []*reddit.Comment) []*Comment {
	out := make([]*Comment, 0, len(cs))
	for _, c := range cs {
		if c == nil {
			continue
		}
		author := c.Author
		// The API reports a deleted account as the literal "[deleted]";
		// normalize it to the empty author an absent account maps to.
		if author == "[deleted]" {
			author = ""
		}
		out = append(out, &Comment{
			Author:  author,
			Body:    c.Body,
			Replies: convertComments(c.Replies.Comments),
		})
	}
	return out
}

// classify translates go-reddit and transport errors into the shared failure
// kinds. Library error identities never leave this package.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var rateErr *reddit.RateLimitError
	if errors.As(err, &rateErr) {
		return fmt.Errorf("%w: reddit: %v", shared.ErrRateLimited, rateErr.Message)
	}

	var respErr *reddit.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil {
		switch code := respErr.Response.StatusCode; {
		case code == http.StatusNotFound:
			return fmt.Errorf("%w: submission does not exist", shared.ErrNotFound)
		case code == http.StatusTooManyRequests:
			return fmt.Errorf("%w: reddit: status 429", shared.ErrRateLimited)
		case code >= 500:
			return fmt.Errorf("%w: reddit: status %d", shared.ErrServerError, code)
		default:
			return fmt.Errorf("%w: reddit: status %d", shared.ErrTransient, code)
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", shared.ErrTransient, urlErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", shared.ErrTransient, netErr)
	}

	return fmt.Errorf("%w: %v", shared.ErrTransient, err)
}
