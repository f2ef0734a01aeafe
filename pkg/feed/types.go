// Package feed serializes blog feed items into RSS documents.
package feed

import (
	"time"
)

// ContentType is the media type served alongside generated RSS documents
const ContentType = "application/rss+xml; charset=utf-8"

// Config holds the channel-level fields of a feed
type Config struct {
	Title       string
	Description string
	Site        string
}

// Generator handles RSS feed generation
type Generator struct {
	Config
}

// NewGenerator creates a new feed generator
func NewGenerator(title, description, site string) *Generator {
	return &Generator{
		Config: Config{
			Title:       title,
			Description: description,
			Site:        site,
		},
	}
}

// Item represents a single feed entry
type Item struct {
	Title       string
	PubDate     time.Time
	Description string
	Link        string
}

// Metadata contains metadata about a generated feed
type Metadata struct {
	Title      string
	ItemCount  int
	OldestItem time.Time
	NewestItem time.Time
}
