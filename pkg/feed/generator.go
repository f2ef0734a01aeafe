package feed

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gorilla/feeds"

	"github.com/fpenna/blog-rss/pkg/filesystem"
)

// Build converts items into a gorilla feed, preserving their order
func (g *Generator) Build(items []Item) *feeds.Feed {
	feed := &feeds.Feed{
		Title:       g.Title,
		Link:        &feeds.Link{Href: g.Site},
		Description: g.Description,
	}

	for _, item := range items {
		feed.Items = append(feed.Items, &feeds.Item{
			Title:       item.Title,
			Link:        &feeds.Link{Href: item.Link},
			Description: item.Description,
			Created:     item.PubDate,
			Id:          item.Link,
		})

		// lastBuildDate follows the newest post, not the wall clock
		if item.PubDate.After(feed.Updated) {
			feed.Updated = item.PubDate
		}
	}

	return feed
}

// RSS renders items as an RSS 2.0 document
func (g *Generator) RSS(items []Item) ([]byte, error) {
	feed := g.Build(items)

	rss, err := feed.ToRss()
	if err != nil {
		return nil, fmt.Errorf("failed to render rss feed: %w", err)
	}

	slog.Debug("Generated feed", "title", g.Title, "items", len(feed.Items))
	return []byte(rss), nil
}

// WriteRSS writes the RSS document for items to w
func (g *Generator) WriteRSS(w io.Writer, items []Item) error {
	data, err := g.RSS(items)
	if err != nil {
		return err
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write rss feed: %w", err)
	}
	return nil
}

// SaveToFile saves the RSS document for items to outputPath
func (g *Generator) SaveToFile(items []Item, outputPath string) error {
	if err := filesystem.EnsureDirectoryExists(outputPath); err != nil {
		return err
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Error("Failed to close output file", "path", outputPath, "error", closeErr)
		}
	}()

	if err := g.WriteRSS(file, items); err != nil {
		return err
	}

	slog.Info("Feed saved successfully", "path", outputPath, "items", len(items))
	return nil
}

// RenderItem renders a single item as the <item> element the full feed would contain
func (g *Generator) RenderItem(item Item) (string, error) {
	rss := (&feeds.Rss{Feed: g.Build([]Item{item})}).RssFeed()
	if len(rss.Items) == 0 {
		return "", fmt.Errorf("item was dropped during conversion")
	}

	data, err := xml.MarshalIndent(rss.Items[0], "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal rss item: %w", err)
	}
	return string(data), nil
}

// ValidateFeed validates the generated feed structure
func (g *Generator) ValidateFeed(feed *feeds.Feed) error {
	if feed == nil {
		return fmt.Errorf("feed is nil")
	}

	if feed.Title == "" {
		return fmt.Errorf("feed title is empty")
	}

	if feed.Link == nil || feed.Link.Href == "" {
		return fmt.Errorf("feed link is empty")
	}

	if feed.Description == "" {
		return fmt.Errorf("feed description is empty")
	}

	for i, item := range feed.Items {
		if err := validateFeedItem(item); err != nil {
			return fmt.Errorf("item %d validation failed: %w", i, err)
		}
	}

	return nil
}

// validateFeedItem validates individual feed items
func validateFeedItem(item *feeds.Item) error {
	if item.Title == "" {
		return fmt.Errorf("item title is empty")
	}

	if item.Link == nil || item.Link.Href == "" {
		return fmt.Errorf("item link is empty")
	}

	if item.Created.IsZero() {
		return fmt.Errorf("item publication date is empty")
	}

	return nil
}

// GetMetadata returns metadata about the generated feed
func GetMetadata(feed *feeds.Feed) *Metadata {
	if feed == nil {
		return nil
	}

	metadata := &Metadata{
		Title:     feed.Title,
		ItemCount: len(feed.Items),
	}

	if len(feed.Items) > 0 {
		oldest := feed.Items[0].Created
		newest := feed.Items[0].Created

		for _, item := range feed.Items {
			if item.Created.Before(oldest) {
				oldest = item.Created
			}
			if item.Created.After(newest) {
				newest = item.Created
			}
		}

		metadata.OldestItem = oldest
		metadata.NewestItem = newest
	}

	return metadata
}
