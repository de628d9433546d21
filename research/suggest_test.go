package research

import (
	"context"
	"errors"
	"testing"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"shorts-pipeline/types"
)

type fakeLister struct {
	posts []*reddit.Post
	err   error
}

func (f *fakeLister) HotPosts(ctx context.Context, subreddit string, opts *reddit.ListOptions) ([]*reddit.Post, *reddit.Response, error) {
	return f.posts, nil, f.err
}

func TestSuggesterRanksAndFilters(t *testing.T) {
	lister := &fakeLister{posts: []*reddit.Post{
		{Title: "Quiet post", Score: 10, NumberOfComments: 1, SubredditName: "science", Permalink: "/r/science/a"},
		{Title: "Pinned rules", Score: 9999, Stickied: true},
		{Title: "Adults only", Score: 9999, NSFW: true},
		{Title: "  ", Score: 9999},
		{Title: "Busy post", Score: 50, NumberOfComments: 40, SubredditName: "science", Permalink: "/r/science/b"},
	}}
	s := &Suggester{posts: lister, subreddit: "science", limit: 25}

	got, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(got), got)
	}
	if got[0].Title != "Busy post" {
		t.Errorf("top suggestion = %q, want the high-engagement post", got[0].Title)
	}
	if got[0].Permalink != "https://reddit.com/r/science/b" {
		t.Errorf("permalink = %q", got[0].Permalink)
	}
}

func TestSuggesterServiceError(t *testing.T) {
	s := &Suggester{posts: &fakeLister{err: errors.New("rate limited")}, subreddit: "science"}
	_, err := s.Run(context.Background())
	var svcErr *types.ServiceError
	if !errors.As(err, &svcErr) || svcErr.Service != "reddit" {
		t.Fatalf("got %v, want reddit ServiceError", err)
	}
}
