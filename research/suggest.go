// Package research suggests video topics from trending subreddit
// posts. It is an operator aid: the pipeline itself always takes an
// explicit topic.
package research

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/vartanbeno/go-reddit/v2/reddit"

	"shorts-pipeline/config"
	"shorts-pipeline/types"
)

// Suggestion is one candidate topic with its engagement signals.
type Suggestion struct {
	Title     string `json:"title"`
	Subreddit string `json:"subreddit"`
	Score     int    `json:"score"`
	Comments  int    `json:"comments"`
	Permalink string `json:"permalink"`
}

// postLister is the slice of the Reddit client the suggester uses.
type postLister interface {
	HotPosts(ctx context.Context, subreddit string, opts *reddit.ListOptions) ([]*reddit.Post, *reddit.Response, error)
}

// Suggester pulls hot posts from one subreddit and ranks them.
type Suggester struct {
	posts     postLister
	subreddit string
	limit     int
}

// NewSuggester builds a read-only Reddit-backed Suggester.
func NewSuggester(cfg config.ResearchConfig) (*Suggester, error) {
	client, err := reddit.NewReadonlyClient()
	if err != nil {
		return nil, &types.ServiceError{Service: "reddit", Err: err}
	}
	return &Suggester{
		posts:     client.Subreddit,
		subreddit: cfg.Subreddit,
		limit:     cfg.Limit,
	}, nil
}

// Run returns suggestions ordered by engagement, best first. Stickied
// and NSFW posts are filtered out; they are moderation artifacts, not
// topics.
func (s *Suggester) Run(ctx context.Context) ([]Suggestion, error) {
	log.Printf("[suggest] Fetching hot posts from r/%s...", s.subreddit)

	posts, _, err := s.posts.HotPosts(ctx, s.subreddit, &reddit.ListOptions{Limit: s.limit})
	if err != nil {
		return nil, &types.ServiceError{Service: "reddit", Err: err}
	}

	var out []Suggestion
	for _, post := range posts {
		if post.Stickied || post.NSFW || strings.TrimSpace(post.Title) == "" {
			continue
		}
		out = append(out, Suggestion{
			Title:     strings.TrimSpace(post.Title),
			Subreddit: post.SubredditName,
			Score:     post.Score,
			Comments:  post.NumberOfComments,
			Permalink: "https://reddit.com" + post.Permalink,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return engagement(out[i]) > engagement(out[j])
	})

	log.Printf("[suggest] ✓ %d candidate topics", len(out))
	return out, nil
}

// engagement weighs comments above raw score; discussion predicts
// watch time better than upvotes.
func engagement(s Suggestion) int {
	return s.Score + 3*s.Comments
}
