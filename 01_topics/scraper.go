package topics

import (
	"context"
	"fmt"
	"strings"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

const redditUserAgent = "shorts-factory/1.0"

// PostLister is the slice of the Reddit API the seeder needs.
// *reddit.SubredditService satisfies it.
type PostLister interface {
	TopPosts(ctx context.Context, subreddit string, opts *reddit.ListPostOptions) ([]*reddit.Post, *reddit.Response, error)
}

// NewRedditLister builds a Reddit client, logged in when script-app
// credentials are present and read-only otherwise
func NewRedditLister(secrets config.Secrets) (PostLister, error) {
	var (
		client *reddit.Client
		err    error
	)
	if secrets.HasRedditLogin() {
		client, err = reddit.NewClient(reddit.Credentials{
			ID:       secrets.RedditClientID,
			Secret:   secrets.RedditClientSecret,
			Username: secrets.RedditUsername,
			Password: secrets.RedditPassword,
		}, reddit.WithUserAgent(redditUserAgent))
	} else {
		client, err = reddit.NewReadonlyClient(reddit.WithUserAgent(redditUserAgent))
	}
	if err != nil {
		return nil, fmt.Errorf("reddit client: %w", err)
	}
	return client.Subreddit, nil
}

// SeedFromReddit appends the titles of a subreddit's top posts to the source,
// once, in the order Reddit ranks them. It returns the topics it added.
func (s *Source) SeedFromReddit(ctx context.Context, lister PostLister, cfg config.RedditConfig) ([]types.Topic, error) {
	if cfg.Subreddit == "" {
		return nil, nil
	}

	posts, _, err := lister.TopPosts(ctx, cfg.Subreddit, &reddit.ListPostOptions{
		ListOptions: reddit.ListOptions{Limit: cfg.Limit},
		Time:        cfg.Time,
	})
	if err != nil {
		return nil, fmt.Errorf("reddit r/%s top posts: %w", cfg.Subreddit, err)
	}

	seen := make(map[string]bool)
	s.mu.Lock()
	for _, t := range s.pending {
		seen[strings.ToLower(string(t))] = true
	}
	s.mu.Unlock()

	var added []types.Topic
	for _, post := range posts {
		if post == nil || post.Stickied || post.NSFW {
			continue
		}
		title := strings.TrimSpace(post.Title)
		if title == "" || seen[strings.ToLower(title)] {
			continue
		}
		seen[strings.ToLower(title)] = true
		added = append(added, types.Topic(title))
	}

	s.Append(added...)
	s.logger.Info().Str("subreddit", cfg.Subreddit).Int("added", len(added)).Msg("seeded topics from reddit")
	return added, nil
}
