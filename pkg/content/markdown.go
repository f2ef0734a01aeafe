package content

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// markdownExtensions lists the entry file types picked up from a collection directory
var markdownExtensions = map[string]bool{
	".md":       true,
	".mdx":      true,
	".markdown": true,
}

// frontmatterFormats are tried in order when reading an entry
var frontmatterFormats = []*frontmatter.Format{
	frontmatter.NewFormat("---", "---", yaml.Unmarshal),
	frontmatter.NewFormat("+++", "+++", toml.Unmarshal),
}

// entryFrontmatter is the frontmatter layout of a collection entry
type entryFrontmatter struct {
	PostData `yaml:",inline"`
	Slug     string `yaml:"slug" toml:"slug"`
}

// MarkdownStore reads collections from <root>/<collection>/ directories of markdown files
type MarkdownStore struct {
	fsys fs.FS
	root string
}

// NewMarkdownStore creates a store rooted at dir on disk
func NewMarkdownStore(dir string) *MarkdownStore {
	return &MarkdownStore{fsys: os.DirFS(dir), root: dir}
}

// NewMarkdownStoreFS creates a store over an arbitrary filesystem
func NewMarkdownStoreFS(fsys fs.FS) *MarkdownStore {
	return &MarkdownStore{fsys: fsys, root: "."}
}

// GetCollection implements Store
func (s *MarkdownStore) GetCollection(ctx context.Context, name string) ([]Post, error) {
	if name == "" || !fs.ValidPath(name) {
		return nil, fmt.Errorf("invalid collection name %q", name)
	}

	info, err := fs.Stat(s.fsys, name)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, filepath.Join(s.root, name))
	}

	slog.Debug("Loading markdown collection", "root", s.root, "collection", name)

	var posts []Post
	err = fs.WalkDir(s.fsys, name, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		// Underscore-prefixed files and directories are excluded from the collection
		if p != name && strings.HasPrefix(d.Name(), "_") {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() || !markdownExtensions[strings.ToLower(path.Ext(p))] {
			return nil
		}

		post, err := s.readEntry(name, p)
		if err != nil {
			return err
		}
		posts = append(posts, post)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Debug("Loaded markdown collection", "collection", name, "count", len(posts))
	return posts, nil
}

// readEntry parses a single collection entry
func (s *MarkdownStore) readEntry(collection, p string) (Post, error) {
	file, err := s.fsys.Open(p)
	if err != nil {
		return Post{}, fmt.Errorf("failed to open %s: %w", p, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			slog.Warn("Failed to close entry", "path", p, "error", closeErr)
		}
	}()

	var matter entryFrontmatter
	if _, err := frontmatter.Parse(file, &matter, frontmatterFormats...); err != nil {
		return Post{}, fmt.Errorf("failed to parse frontmatter in %s: %w", p, err)
	}

	if err := matter.Validate(); err != nil {
		return Post{}, fmt.Errorf("invalid entry %s: %w", p, err)
	}

	id := matter.Slug
	if id == "" {
		id = EntryID(collection, p)
	}

	return Post{ID: id, Data: matter.PostData}, nil
}

// EntryID derives a post ID from its path: relative to the collection,
// without extension, slash separated, lowercased, spaces as dashes
func EntryID(collection, p string) string {
	rel := strings.TrimPrefix(p, collection+"/")
	rel = strings.TrimSuffix(rel, path.Ext(rel))
	if path.Base(rel) == "index" && path.Dir(rel) != "." {
		rel = path.Dir(rel)
	}
	return strings.ReplaceAll(strings.ToLower(rel), " ", "-")
}
