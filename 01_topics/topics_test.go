package topics

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"shorts-factory/config"
	"shorts-factory/types"

	"github.com/vartanbeno/go-reddit/v2/reddit"
)

func sourceWith(list ...string) *Source {
	cfg := config.Default()
	cfg.Topics.List = list
	return New(cfg)
}

func TestNextIsFIFOAndExhausts(t *testing.T) {
	for n := 0; n <= 5; n++ {
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			var list []string
			for i := 0; i < n; i++ {
				list = append(list, fmt.Sprintf("topic %d", i))
			}
			src := sourceWith(list...)

			for i := 0; i < n; i++ {
				got, err := src.Next()
				if err != nil {
					t.Fatalf("call %d: %v", i+1, err)
				}
				if want := types.Topic(list[i]); got != want {
					t.Fatalf("call %d = %q, want %q", i+1, got, want)
				}
			}
			_, err := src.Next()
			if !errors.Is(err, types.ErrExhausted) {
				t.Fatalf("call %d: err = %v, want exhausted", n+1, err)
			}
			// stays exhausted
			if _, err := src.Next(); !errors.Is(err, types.ErrExhausted) {
				t.Fatalf("second call after exhaustion: %v", err)
			}
		})
	}
}

func TestNewUsesOriginalOrder(t *testing.T) {
	src := New(config.Default())
	want := []types.Topic{"AI news", "Space facts", "Psychology tricks", "Business hacks", "History mysteries"}
	for _, w := range want {
		got, err := src.Next()
		if err != nil || got != w {
			t.Fatalf("Next = %q, %v; want %q", got, err, w)
		}
	}
	if src.Remaining() != 0 {
		t.Fatalf("remaining = %d", src.Remaining())
	}
}

func TestAppendSkipsBlank(t *testing.T) {
	src := sourceWith("one")
	src.Append("", "  ", "two")
	if src.Remaining() != 2 {
		t.Fatalf("remaining = %d, want 2", src.Remaining())
	}
}

type fakeLister struct {
	posts     []*reddit.Post
	err       error
	subreddit string
	opts      *reddit.ListPostOptions
}

func (f *fakeLister) TopPosts(_ context.Context, subreddit string, opts *reddit.ListPostOptions) ([]*reddit.Post, *reddit.Response, error) {
	f.subreddit = subreddit
	f.opts = opts
	return f.posts, nil, f.err
}

func TestSeedFromRedditAppendsAfterStaticList(t *testing.T) {
	src := sourceWith("AI news")
	lister := &fakeLister{posts: []*reddit.Post{
		{Title: "Megathread", Stickied: true},
		{Title: "Octopuses have three hearts"},
		{Title: "ai NEWS"},
		{Title: "Not for work", NSFW: true},
		{Title: "Honey never spoils"},
	}}

	added, err := src.SeedFromReddit(context.Background(), lister, config.RedditConfig{Subreddit: "todayilearned", Limit: 5, Time: "day"})
	if err != nil {
		t.Fatalf("SeedFromReddit: %v", err)
	}
	if lister.subreddit != "todayilearned" || lister.opts.Limit != 5 || lister.opts.Time != "day" {
		t.Fatalf("lister called with %q %+v", lister.subreddit, lister.opts)
	}
	if len(added) != 2 {
		t.Fatalf("added = %v", added)
	}

	want := []types.Topic{"AI news", "Octopuses have three hearts", "Honey never spoils"}
	for _, w := range want {
		got, err := src.Next()
		if err != nil || got != w {
			t.Fatalf("Next = %q, %v; want %q", got, err, w)
		}
	}
	if _, err := src.Next(); !errors.Is(err, types.ErrExhausted) {
		t.Fatalf("expected exhaustion, got %v", err)
	}
}

func TestSeedFromRedditError(t *testing.T) {
	src := sourceWith("AI news")
	_, err := src.SeedFromReddit(context.Background(), &fakeLister{err: errors.New("503")}, config.RedditConfig{Subreddit: "x", Limit: 1})
	if err == nil {
		t.Fatal("expected error")
	}
	if src.Remaining() != 1 {
		t.Fatalf("static list must be untouched, remaining = %d", src.Remaining())
	}
}

func TestSeedFromRedditDisabled(t *testing.T) {
	src := sourceWith("AI news")
	added, err := src.SeedFromReddit(context.Background(), &fakeLister{}, config.RedditConfig{})
	if err != nil || added != nil {
		t.Fatalf("disabled seeding = %v, %v", added, err)
	}
}
