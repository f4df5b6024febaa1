package threads

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/desertthunder/threadlist/internal/shared"
	"github.com/vartanbeno/go-reddit/v2/reddit"
)

func TestNewRedditSource(t *testing.T) {
	t.Run("Defaults The User Agent", func(t *testing.T) {
		src, err := NewRedditSource(nil, "")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if src == nil {
			t.Fatal("expected a source")
		}
	})
}

func TestClassify(t *testing.T) {
	response := func(code int) *http.Response {
		return &http.Response{StatusCode: code, Request: &http.Request{}}
	}

	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "Rate Limit Error",
			err:  &reddit.RateLimitError{Message: "try again later"},
			want: shared.ErrRateLimited,
		},
		{
			name: "Not Found",
			err:  &reddit.ErrorResponse{Response: response(http.StatusNotFound)},
			want: shared.ErrNotFound,
		},
		{
			name: "Too Many Requests Status",
			err:  &reddit.ErrorResponse{Response: response(http.StatusTooManyRequests)},
			want: shared.ErrRateLimited,
		},
		{
			name: "Server Error",
			err:  &reddit.ErrorResponse{Response: response(http.StatusBadGateway)},
			want: shared.ErrServerError,
		},
		{
			name: "Other Status",
			err:  &reddit.ErrorResponse{Response: response(http.StatusForbidden)},
			want: shared.ErrTransient,
		},
		{
			name: "Unknown Error",
			err:  errors.New("connection reset by peer"),
			want: shared.ErrTransient,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := classify(tc.err)
			if !errors.Is(got, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, got)
			}
		})
	}

	t.Run("Context Cancellation Passes Through", func(t *testing.T) {
		if got := classify(context.Canceled); !errors.Is(got, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", got)
		}
		if got := classify(context.Canceled); errors.Is(got, shared.ErrTransient) {
			t.Error("cancellation must not be classified as transient")
		}
	})

	t.Run("Nil Error", func(t *testing.T) {
		if got := classify(nil); got != nil {
			t.Errorf("expected nil, got %v", got)
		}
	})
}

func TestConvertComments(t *testing.T) {
	t.Run("Normalizes Deleted Accounts To Empty Authors", func(t *testing.T) {
		got := convertComments([]*reddit.Comment{
			{Author: "[deleted]", Body: "[removed]"},
			{Author: "listener", Body: "Bohemian Rhapsody"},
		})

		if len(got) != 2 {
			t.Fatalf("expected 2 comments, got %d", len(got))
		}
		if got[0].Author != "" {
			t.Errorf("expected deleted account to map to an empty author, got %q", got[0].Author)
		}
		if got[1].Author != "listener" {
			t.Errorf("expected author to pass through, got %q", got[1].Author)
		}
	})

	t.Run("Keeps Reply Trees", func(t *testing.T) {
		got := convertComments([]*reddit.Comment{
			{
				Author: "parent",
				Body:   "top",
				Replies: reddit.Replies{
					Comments: []*reddit.Comment{{Author: "[deleted]", Body: "gone"}},
				},
			},
		})

		if len(got) != 1 || len(got[0].Replies) != 1 {
			t.Fatalf("expected the reply tree to survive, got %v", got)
		}
		if got[0].Replies[0].Author != "" {
			t.Errorf("expected nested deleted account to be normalized, got %q", got[0].Replies[0].Author)
		}
	})
}

func TestExpandAllRejectsForeignThreads(t *testing.T) {
	src, err := NewRedditSource(nil, "test")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	err = src.ExpandAll(context.Background(), &Thread{ID: "abc123"})
	if !errors.Is(err, shared.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
