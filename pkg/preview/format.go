// Package preview shows generated feed items in a terminal UI before they are published.
package preview

import (
	"fmt"
	"strings"
	"time"

	"github.com/fpenna/blog-rss/pkg/feed"
)

const (
	maxTitleLength       = 70
	maxDescriptionLength = 1000
	wrapWidth            = 70
	separator            = "═══════════════════════════════════════════════════════════════════════"
)

// wrapText wraps text to width, breaking at word boundaries
func wrapText(text string, width int) string {
	if width <= 0 {
		width = wrapWidth
	}

	var lines []string
	var line strings.Builder
	for _, word := range strings.Fields(text) {
		if line.Len() > 0 && len([]rune(line.String()))+1+len([]rune(word)) > width {
			lines = append(lines, line.String())
			line.Reset()
		}
		if line.Len() > 0 {
			line.WriteByte(' ')
		}
		line.WriteString(word)
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}

	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}

// FormatCompactListItem formats an item as one list line.
// Example: " 1. 2024-06-01  Post Title"
func FormatCompactListItem(index int, item feed.Item) string {
	return fmt.Sprintf("%2d. %s  %s", index+1, item.PubDate.Format(time.DateOnly), truncate(item.Title, maxTitleLength))
}

// FormatDetailedItem formats every field of an item. now anchors the relative age.
func FormatDetailedItem(item feed.Item, now time.Time) string {
	var b strings.Builder

	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Title: %s\n", item.Title)
	fmt.Fprintf(&b, "Link: %s\n", item.Link)
	if !item.PubDate.IsZero() {
		fmt.Fprintf(&b, "Published: %s (%s)\n", item.PubDate.Format(time.RFC1123Z), formatAge(item.PubDate, now))
	}

	if description := strings.TrimSpace(item.Description); description != "" {
		fmt.Fprintf(&b, "\nDescription:\n%s\n", wrapText(truncate(description, maxDescriptionLength), wrapWidth))
	}

	b.WriteString(separator + "\n")
	return b.String()
}

// FormatXMLItem renders the <item> element the generator would publish for item
func FormatXMLItem(generator *feed.Generator, item feed.Item) string {
	xml, err := generator.RenderItem(item)
	if err != nil {
		return fmt.Sprintf("Error rendering item: %s", err)
	}
	return xml
}

// formatAge describes how long before now t was, falling back to a date for old posts
func formatAge(t, now time.Time) string {
	age := now.Sub(t)

	switch {
	case age < 0:
		return "scheduled"
	case age < time.Hour:
		return "just now"
	case age < 24*time.Hour:
		return plural(int(age.Hours()), "hour")
	case age < 30*24*time.Hour:
		return plural(int(age.Hours()/24), "day")
	default:
		return t.Format(time.DateOnly)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
