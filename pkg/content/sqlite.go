package content

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/fpenna/blog-rss/pkg/database"
)

const postsSchema = `
	CREATE TABLE IF NOT EXISTS posts (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		published_at TEXT NOT NULL,
		draft INTEGER NOT NULL DEFAULT 0,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (collection, id)
	);

	CREATE INDEX IF NOT EXISTS idx_posts_collection ON posts(collection);
`

// SQLiteStore keeps collections in a SQLite posts table
type SQLiteStore struct {
	db *database.Database
}

// NewSQLiteStore opens the store and creates its schema
func NewSQLiteStore(ctx context.Context, db *database.Database) (*SQLiteStore, error) {
	if err := db.ExecuteSchema(ctx, postsSchema); err != nil {
		return nil, fmt.Errorf("failed to initialize posts schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// GetCollection implements Store. Rows come back in insertion order.
func (s *SQLiteStore) GetCollection(ctx context.Context, name string) ([]Post, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT id, title, description, published_at, draft
		FROM posts
		WHERE collection = ?
		ORDER BY rowid
	`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection %s: %w", name, err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			slog.Warn("Failed to close rows", "error", closeErr)
		}
	}()

	var posts []Post
	for rows.Next() {
		var (
			post        Post
			publishedAt string
		)
		if err := rows.Scan(&post.ID, &post.Data.Title, &post.Data.Description, &publishedAt, &post.Data.Draft); err != nil {
			return nil, fmt.Errorf("failed to scan post: %w", err)
		}

		t, err := time.Parse(time.RFC3339Nano, publishedAt)
		if err != nil {
			return nil, fmt.Errorf("post %s has invalid date %q: %w", post.ID, publishedAt, err)
		}
		post.Data.Date = NewDate(t)

		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", name, err)
	}

	slog.Debug("Loaded sqlite collection", "collection", name, "count", len(posts))
	return posts, nil
}

// Save upserts posts into a collection within one transaction
func (s *SQLiteStore) Save(ctx context.Context, collection string, posts []Post) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO posts (collection, id, title, description, published_at, draft, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(collection, id) DO UPDATE SET
				title = excluded.title,
				description = excluded.description,
				published_at = excluded.published_at,
				draft = excluded.draft,
				updated_at = CURRENT_TIMESTAMP
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, post := range posts {
			if err := post.Data.Validate(); err != nil {
				return fmt.Errorf("invalid post %s: %w", post.ID, err)
			}

			_, err := stmt.ExecContext(ctx,
				collection,
				post.ID,
				post.Data.Title,
				post.Data.Description,
				post.Data.Date.UTC().Format(time.RFC3339Nano),
				post.Data.Draft,
			)
			if err != nil {
				return fmt.Errorf("failed to save post %s: %w", post.ID, err)
			}
		}
		return nil
	})
}

// Delete removes a post from a collection
func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.DB().ExecContext(ctx, `DELETE FROM posts WHERE collection = ? AND id = ?`, collection, id)
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	return nil
}
