// Package blog turns a content collection into the blog's RSS feed.
package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"

	"github.com/samber/lo"

	"github.com/fpenna/blog-rss/pkg/content"
	"github.com/fpenna/blog-rss/pkg/feed"
)

const (
	// DefaultCollection is the content collection holding blog posts
	DefaultCollection = "blog"
	// DefaultLinkPrefix is the path segment between the site URL and a post ID
	DefaultLinkPrefix = "blog/"
)

var (
	// ErrSiteMissing is returned when no site URL is configured
	ErrSiteMissing = errors.New("site URL is not configured")
	// ErrSiteInvalid is returned when the site URL is not an absolute http(s) URL
	ErrSiteInvalid = errors.New("site URL is invalid")
)

// Options configures feed generation
type Options struct {
	Site        string
	Title       string
	Description string
	Collection  string
	LinkPrefix  string
}

func (o Options) withDefaults() Options {
	if o.Collection == "" {
		o.Collection = DefaultCollection
	}
	if o.LinkPrefix == "" {
		o.LinkPrefix = DefaultLinkPrefix
	}
	return o
}

// NormalizeSite validates site and returns the string links are built from.
// A bare host gains a trailing slash; anything else is kept verbatim.
func NormalizeSite(site string) (string, error) {
	if site == "" {
		return "", ErrSiteMissing
	}

	u, err := url.Parse(site)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSiteInvalid, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute http(s) URL", ErrSiteInvalid, site)
	}

	if u.Path == "" && u.RawQuery == "" && u.Fragment == "" {
		return site + "/", nil
	}
	return site, nil
}

// Items keeps published posts, orders them newest first and maps them to feed items.
// Posts sharing a date keep their collection order.
func Items(posts []content.Post, site, linkPrefix string) []feed.Item {
	published := lo.Filter(posts, func(post content.Post, _ int) bool {
		return !post.Data.Draft
	})

	slices.SortStableFunc(published, func(a, b content.Post) int {
		return b.Data.Date.Compare(a.Data.Date.Time)
	})

	return lo.Map(published, func(post content.Post, _ int) feed.Item {
		return feed.Item{
			Title:       post.Data.Title,
			PubDate:     post.Data.Date.Time,
			Description: post.Data.Description,
			Link:        site + linkPrefix + post.ID + "/",
		}
	})
}

// Build loads the collection and returns the generator and items for the feed.
// The site URL is checked before the store is queried.
func Build(ctx context.Context, store content.Store, opts Options) (*feed.Generator, []feed.Item, error) {
	opts = opts.withDefaults()

	site, err := NormalizeSite(opts.Site)
	if err != nil {
		return nil, nil, err
	}

	posts, err := store.GetCollection(ctx, opts.Collection)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load collection %s: %w", opts.Collection, err)
	}

	items := Items(posts, site, opts.LinkPrefix)
	slog.Debug("Built feed items", "collection", opts.Collection, "posts", len(posts), "items", len(items))

	return feed.NewGenerator(opts.Title, opts.Description, site), items, nil
}

// Render builds the feed and serializes it as RSS
func Render(ctx context.Context, store content.Store, opts Options) ([]byte, int, error) {
	generator, items, err := Build(ctx, store, opts)
	if err != nil {
		return nil, 0, err
	}

	data, err := generator.RSS(items)
	if err != nil {
		return nil, 0, err
	}
	return data, len(items), nil
}
