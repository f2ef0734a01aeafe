package feed

import (
	"bytes"
	"encoding/xml"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/feeds"
)

type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel struct {
		Title         string    `xml:"title"`
		Link          string    `xml:"link"`
		Description   string    `xml:"description"`
		LastBuildDate string    `xml:"lastBuildDate"`
		Items         []rssItem `xml:"item"`
	} `xml:"channel"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        string `xml:"guid"`
}

func parseRSS(t *testing.T, data []byte) rssDoc {
	t.Helper()

	var doc rssDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		t.Fatalf("generated feed is not valid XML: %v\n%s", err, data)
	}
	return doc
}

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		site        string
		expected    *Generator
	}{
		{
			name:        "basic generator",
			title:       "Test Blog",
			description: "A test blog",
			site:        "https://example.com/",
			expected: &Generator{Config: Config{
				Title:       "Test Blog",
				Description: "A test blog",
				Site:        "https://example.com/",
			}},
		},
		{
			name:        "unicode content",
			title:       "Blog — 测试",
			description: "Unicode description",
			site:        "https://example.com/测试/",
			expected: &Generator{Config: Config{
				Title:       "Blog — 测试",
				Description: "Unicode description",
				Site:        "https://example.com/测试/",
			}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := NewGenerator(tt.title, tt.description, tt.site)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("NewGenerator() = %+v, expected %+v", result, tt.expected)
			}
		})
	}
}

func TestRSS(t *testing.T) {
	g := NewGenerator("Test Blog", "Articles about testing", "https://example.com/")
	newest := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	items := []Item{
		{
			Title:       "Second post",
			PubDate:     newest,
			Description: "Newer & better",
			Link:        "https://example.com/blog/second/",
		},
		{
			Title:       "First post",
			PubDate:     older,
			Description: "The beginning",
			Link:        "https://example.com/blog/first/",
		},
	}

	data, err := g.RSS(items)
	if err != nil {
		t.Fatalf("RSS() error = %v", err)
	}

	doc := parseRSS(t, data)

	if doc.Version != "2.0" {
		t.Errorf("Expected rss version 2.0, got %q", doc.Version)
	}
	if doc.Channel.Title != "Test Blog" {
		t.Errorf("Expected channel title 'Test Blog', got %q", doc.Channel.Title)
	}
	if doc.Channel.Link != "https://example.com/" {
		t.Errorf("Expected channel link 'https://example.com/', got %q", doc.Channel.Link)
	}
	if doc.Channel.Description != "Articles about testing" {
		t.Errorf("Expected channel description, got %q", doc.Channel.Description)
	}
	if doc.Channel.LastBuildDate != newest.Format(time.RFC1123Z) {
		t.Errorf("Expected lastBuildDate %q, got %q", newest.Format(time.RFC1123Z), doc.Channel.LastBuildDate)
	}

	if len(doc.Channel.Items) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(doc.Channel.Items))
	}

	for i, want := range items {
		got := doc.Channel.Items[i]
		if got.Title != want.Title {
			t.Errorf("item %d title = %q, want %q", i, got.Title, want.Title)
		}
		if got.Link != want.Link {
			t.Errorf("item %d link = %q, want %q", i, got.Link, want.Link)
		}
		if got.GUID != want.Link {
			t.Errorf("item %d guid = %q, want %q", i, got.GUID, want.Link)
		}
		if got.Description != want.Description {
			t.Errorf("item %d description = %q, want %q", i, got.Description, want.Description)
		}
		if got.PubDate != want.PubDate.Format(time.RFC1123Z) {
			t.Errorf("item %d pubDate = %q, want %q", i, got.PubDate, want.PubDate.Format(time.RFC1123Z))
		}
	}
}

func TestRSS_NoItems(t *testing.T) {
	g := NewGenerator("Empty Blog", "Nothing yet", "https://example.com/")

	data, err := g.RSS(nil)
	if err != nil {
		t.Fatalf("RSS() error = %v", err)
	}

	doc := parseRSS(t, data)
	if doc.Channel.Title != "Empty Blog" {
		t.Errorf("Expected channel title 'Empty Blog', got %q", doc.Channel.Title)
	}
	if len(doc.Channel.Items) != 0 {
		t.Errorf("Expected no items, got %d", len(doc.Channel.Items))
	}
	if doc.Channel.LastBuildDate != "" {
		t.Errorf("Expected no lastBuildDate for empty feed, got %q", doc.Channel.LastBuildDate)
	}
}

func TestWriteRSS(t *testing.T) {
	g := NewGenerator("Test Blog", "desc", "https://example.com/")

	var buf bytes.Buffer
	err := g.WriteRSS(&buf, []Item{{
		Title:   "Only post",
		PubDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Link:    "https://example.com/blog/only/",
	}})
	if err != nil {
		t.Fatalf("WriteRSS() error = %v", err)
	}

	if !strings.HasPrefix(buf.String(), "<?xml") {
		t.Errorf("Expected output to start with XML declaration, got %q", buf.String())
	}
	if len(parseRSS(t, buf.Bytes()).Channel.Items) != 1 {
		t.Error("Expected exactly one item in written feed")
	}
}

func TestSaveToFile(t *testing.T) {
	g := NewGenerator("Test Blog", "desc", "https://example.com/")
	outputPath := filepath.Join(t.TempDir(), "public", "rss.xml")

	items := []Item{{
		Title:   "Saved post",
		PubDate: time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		Link:    "https://example.com/blog/saved/",
	}}

	if err := g.SaveToFile(items, outputPath); err != nil {
		t.Fatalf("SaveToFile() error = %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("Failed to read saved feed: %v", err)
	}

	doc := parseRSS(t, data)
	if len(doc.Channel.Items) != 1 || doc.Channel.Items[0].Title != "Saved post" {
		t.Errorf("Saved feed has unexpected items: %+v", doc.Channel.Items)
	}
}

func TestRenderItem(t *testing.T) {
	g := NewGenerator("Test Blog", "desc", "https://example.com/")

	xmlItem, err := g.RenderItem(Item{
		Title:       "Tom & Jerry",
		PubDate:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Description: "<b>bold</b>",
		Link:        "https://example.com/blog/tom-and-jerry/",
	})
	if err != nil {
		t.Fatalf("RenderItem() error = %v", err)
	}

	expectedParts := []string{
		"<item>",
		"<title>Tom &amp; Jerry</title>",
		"<link>https://example.com/blog/tom-and-jerry/</link>",
		"&lt;b&gt;bold&lt;/b&gt;",
		"</item>",
	}
	for _, part := range expectedParts {
		if !strings.Contains(xmlItem, part) {
			t.Errorf("RenderItem() output missing %q:\n%s", part, xmlItem)
		}
	}
}

func TestValidateFeed(t *testing.T) {
	g := NewGenerator("Test Blog", "desc", "https://example.com/")
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		feed    *feeds.Feed
		wantErr bool
	}{
		{
			name:    "nil feed",
			feed:    nil,
			wantErr: true,
		},
		{
			name:    "valid empty feed",
			feed:    g.Build(nil),
			wantErr: false,
		},
		{
			name:    "valid feed with item",
			feed:    g.Build([]Item{{Title: "Post", PubDate: date, Link: "https://example.com/blog/post/"}}),
			wantErr: false,
		},
		{
			name:    "missing title",
			feed:    NewGenerator("", "desc", "https://example.com/").Build(nil),
			wantErr: true,
		},
		{
			name:    "missing link",
			feed:    NewGenerator("Title", "desc", "").Build(nil),
			wantErr: true,
		},
		{
			name:    "missing description",
			feed:    NewGenerator("Title", "", "https://example.com/").Build(nil),
			wantErr: true,
		},
		{
			name:    "item without title",
			feed:    g.Build([]Item{{PubDate: date, Link: "https://example.com/blog/post/"}}),
			wantErr: true,
		},
		{
			name:    "item without date",
			feed:    g.Build([]Item{{Title: "Post", Link: "https://example.com/blog/post/"}}),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ValidateFeed(tt.feed)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFeed() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGetMetadata(t *testing.T) {
	if GetMetadata(nil) != nil {
		t.Error("GetMetadata(nil) should return nil")
	}

	g := NewGenerator("Test Blog", "desc", "https://example.com/")
	oldest := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	newest := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	metadata := GetMetadata(g.Build([]Item{
		{Title: "a", PubDate: newest, Link: "https://example.com/blog/a/"},
		{Title: "b", PubDate: oldest, Link: "https://example.com/blog/b/"},
	}))

	if metadata.ItemCount != 2 {
		t.Errorf("Expected 2 items, got %d", metadata.ItemCount)
	}
	if !metadata.OldestItem.Equal(oldest) {
		t.Errorf("Expected oldest %v, got %v", oldest, metadata.OldestItem)
	}
	if !metadata.NewestItem.Equal(newest) {
		t.Errorf("Expected newest %v, got %v", newest, metadata.NewestItem)
	}
}
