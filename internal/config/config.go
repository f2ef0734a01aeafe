// Package config loads blog-rss settings from embedded defaults, a YAML file and the environment.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fpenna/blog-rss/configs"
	"github.com/fpenna/blog-rss/internal/blog"
	"github.com/fpenna/blog-rss/pkg/content"
	"github.com/fpenna/blog-rss/pkg/database"
	"github.com/fpenna/blog-rss/pkg/filesystem"
	httputil "github.com/fpenna/blog-rss/pkg/http"
)

// DefaultPath is the config file looked up when none is given
const DefaultPath = "config.yaml"

// EnvPrefix prefixes environment overrides, e.g. BLOGRSS_SITE_URL
const EnvPrefix = "BLOGRSS"

// Content sources
const (
	SourceMarkdown = "markdown"
	SourceSQLite   = "sqlite"
	SourceRemote   = "remote"
)

// ErrUnknownSource is returned for a content.source outside markdown, sqlite and remote
var ErrUnknownSource = errors.New("unknown content source")

// Config holds the central application configuration
type Config struct {
	Site struct {
		URL         string `mapstructure:"url"`
		Title       string `mapstructure:"title"`
		Description string `mapstructure:"description"`
	} `mapstructure:"site"`

	Feed struct {
		Path       string `mapstructure:"path"`        // Route the feed is served from
		Collection string `mapstructure:"collection"`  // Content collection to publish
		LinkPrefix string `mapstructure:"link_prefix"` // Path between site URL and post ID
	} `mapstructure:"feed"`

	Content struct {
		Source   string `mapstructure:"source"`
		Dir      string `mapstructure:"dir"`
		Database string `mapstructure:"database"`
		IndexURL string `mapstructure:"index_url"`
	} `mapstructure:"content"`

	Server struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"server"`

	HTTP struct {
		Timeout    time.Duration `mapstructure:"timeout"`
		MaxRetries int           `mapstructure:"max_retries"`
	} `mapstructure:"http"`
}

// Load reads the configuration. An empty path means DefaultPath, which may be
// absent; an explicitly named file must exist. Relative paths are looked up in
// the working directory first and then next to the executable.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(configs.DefaultYAML)); err != nil {
		return nil, fmt.Errorf("error reading default config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolved, err := filesystem.ResolvePath(path)
	switch {
	case err == nil:
		v.SetConfigFile(resolved)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", resolved, err)
		}
		slog.Debug("Loaded config file", "path", resolved)
	case errors.Is(err, filesystem.ErrFileNotFound) && !explicit:
		slog.Debug("No config file found, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

// FeedOptions returns the feed pipeline options described by the config
func (c *Config) FeedOptions() blog.Options {
	return blog.Options{
		Site:        c.Site.URL,
		Title:       c.Site.Title,
		Description: c.Site.Description,
		Collection:  c.Feed.Collection,
		LinkPrefix:  c.Feed.LinkPrefix,
	}
}

// HTTPClient returns the retrying client used by the remote store
func (c *Config) HTTPClient() *httputil.Client {
	clientConfig := httputil.DefaultConfig()
	if c.HTTP.Timeout > 0 {
		clientConfig.Timeout = c.HTTP.Timeout
	}
	clientConfig.MaxRetries = c.HTTP.MaxRetries
	return httputil.NewClient(clientConfig)
}

// OpenDatabase opens the SQLite content database
func (c *Config) OpenDatabase() (*database.Database, error) {
	dbConfig := database.DefaultConfig()
	dbConfig.Path = c.Content.Database
	return database.NewDatabase(dbConfig)
}

// OpenStore builds the content store selected by content.source.
// The returned close function releases any resources the store holds.
func (c *Config) OpenStore(ctx context.Context) (content.Store, func() error, error) {
	noop := func() error { return nil }

	switch c.Content.Source {
	case SourceMarkdown, "":
		if !filesystem.DirExists(c.Content.Dir) {
			return nil, nil, fmt.Errorf("%w: %s", filesystem.ErrDirNotFound, c.Content.Dir)
		}
		return content.NewMarkdownStore(c.Content.Dir), noop, nil

	case SourceSQLite:
		db, err := c.OpenDatabase()
		if err != nil {
			return nil, nil, err
		}
		store, err := content.NewSQLiteStore(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return store, db.Close, nil

	case SourceRemote:
		if c.Content.IndexURL == "" {
			return nil, nil, fmt.Errorf("content.index_url is required for the %s source", SourceRemote)
		}
		return content.NewRemoteStore(c.Content.IndexURL, c.HTTPClient()), noop, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownSource, c.Content.Source)
	}
}
