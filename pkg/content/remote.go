package content

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	httputil "github.com/fpenna/blog-rss/pkg/http"
)

// RemoteStore reads collections from a JSON index served over HTTP.
// The index for collection "blog" is fetched from <baseURL>/blog.json and
// holds an array of {"id": ..., "data": {...}} entries.
type RemoteStore struct {
	baseURL string
	client  *httputil.Client
}

// NewRemoteStore creates a store for the index rooted at baseURL
func NewRemoteStore(baseURL string, client *httputil.Client) *RemoteStore {
	if client == nil {
		client = httputil.NewClient(nil)
	}
	return &RemoteStore{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  client,
	}
}

// GetCollection implements Store
func (s *RemoteStore) GetCollection(ctx context.Context, name string) ([]Post, error) {
	indexURL := s.baseURL + "/" + url.PathEscape(name) + ".json"
	slog.Debug("Fetching remote collection", "url", indexURL)

	resp, err := s.client.GetWithContext(ctx, indexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch collection %s: %w", name, err)
	}

	var posts []Post
	if err := httputil.DecodeJSONResponse(resp, &posts); err != nil {
		return nil, fmt.Errorf("failed to load collection %s: %w", name, err)
	}

	for _, post := range posts {
		if post.ID == "" {
			return nil, fmt.Errorf("collection %s contains an entry without id", name)
		}
		if err := post.Data.Validate(); err != nil {
			return nil, fmt.Errorf("invalid entry %s in collection %s: %w", post.ID, name, err)
		}
	}

	slog.Debug("Loaded remote collection", "collection", name, "count", len(posts))
	return posts, nil
}
