// Package main provides the CLI entry point for blog-rss.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/fpenna/blog-rss/internal/blog"
	"github.com/fpenna/blog-rss/internal/config"
	"github.com/fpenna/blog-rss/internal/server"
	"github.com/fpenna/blog-rss/pkg/content"
	"github.com/fpenna/blog-rss/pkg/database"
	"github.com/fpenna/blog-rss/pkg/feed"
	"github.com/fpenna/blog-rss/pkg/preview"
)

// CLI structure
var CLI struct {
	Config string `help:"Configuration file path (default: config.yaml if present)"`
	Debug  bool   `help:"Enable debug logging" default:"false"`
	Site   string `help:"Site URL, overrides site.url"`

	Serve struct {
		Addr string `help:"Listen address, overrides server.addr"`
	} `cmd:"serve" help:"Serve the RSS feed over HTTP."`

	Generate struct {
		Outfile string `help:"Output file path" short:"o" default:"rss.xml"`
	} `cmd:"generate" help:"Write the RSS feed to a file."`

	Preview struct {
		Index int `help:"Output XML for specific item index (0-based) to stdout" default:"-1"`
	} `cmd:"preview" help:"Preview feed items interactively."`

	Import struct {
		Collection string `help:"Collection to import, defaults to feed.collection"`
	} `cmd:"import" help:"Copy a markdown collection into the SQLite content database."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("blog-rss"),
		kong.Description("Generate and serve the RSS feed for a blog."),
	)

	if CLI.Debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	} else {
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}

	cfg, err := config.Load(CLI.Config)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	if CLI.Site != "" {
		cfg.Site.URL = CLI.Site
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	switch ctx.Command() {
	case "serve":
		err = serve(runCtx, cfg, CLI.Serve.Addr)
	case "generate":
		err = generate(runCtx, cfg, CLI.Generate.Outfile)
	case "preview":
		err = previewFeed(runCtx, cfg, CLI.Preview.Index)
	case "import":
		err = importCollection(runCtx, cfg, CLI.Import.Collection)
	default:
		panic(ctx.Command())
	}

	if err != nil {
		slog.Error("Command failed", "command", ctx.Command(), "error", err)
		stop()
		os.Exit(1)
	}
}

func serve(ctx context.Context, cfg *config.Config, addr string) error {
	if addr == "" {
		addr = cfg.Server.Addr
	}

	store, closeStore, err := cfg.OpenStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	// Feed requests return 500 until site.url is set
	if _, err := blog.NormalizeSite(cfg.Site.URL); err != nil {
		slog.Warn("Feed requests will fail", "error", err)
	}

	app := server.New(server.Config{
		FeedPath: cfg.Feed.Path,
		Store:    store,
		Feed:     cfg.FeedOptions(),
	})
	return server.Run(ctx, app, addr)
}

// buildFeed is a helper function to load the configured store and build feed items
func buildFeed(ctx context.Context, cfg *config.Config) (*feed.Generator, []feed.Item, error) {
	store, closeStore, err := cfg.OpenStore(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer closeStore()

	return blog.Build(ctx, store, cfg.FeedOptions())
}

func generate(ctx context.Context, cfg *config.Config, outfile string) error {
	slog.Debug("Generating feed", "source", cfg.Content.Source, "outfile", outfile)

	generator, items, err := buildFeed(ctx, cfg)
	if err != nil {
		return err
	}

	built := generator.Build(items)
	if err := generator.ValidateFeed(built); err != nil {
		return fmt.Errorf("generated feed is invalid: %w", err)
	}

	if err := generator.SaveToFile(items, outfile); err != nil {
		return err
	}

	metadata := feed.GetMetadata(built)
	slog.Debug("Feed metadata",
		"title", metadata.Title,
		"items", metadata.ItemCount,
		"oldest", metadata.OldestItem,
		"newest", metadata.NewestItem,
	)
	return nil
}

func previewFeed(ctx context.Context, cfg *config.Config, index int) error {
	generator, items, err := buildFeed(ctx, cfg)
	if err != nil {
		return err
	}

	// If index is specified, output XML directly to stdout
	if index >= 0 {
		if index >= len(items) {
			return fmt.Errorf("index %d out of range, feed has %d items", index, len(items))
		}
		fmt.Println(preview.FormatXMLItem(generator, items[index]))
		return nil
	}

	return preview.Run(generator, items)
}

func importCollection(ctx context.Context, cfg *config.Config, collection string) error {
	if collection == "" {
		collection = cfg.Feed.Collection
	}

	posts, err := content.NewMarkdownStore(cfg.Content.Dir).GetCollection(ctx, collection)
	if err != nil {
		return err
	}

	db, err := cfg.OpenDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	store, err := content.NewSQLiteStore(ctx, db)
	if err != nil {
		return err
	}
	if err := store.Save(ctx, collection, posts); err != nil {
		return err
	}

	info, err := database.Info(ctx, db)
	if err != nil {
		return err
	}
	slog.Info("Imported collection",
		"collection", collection,
		"posts", len(posts),
		"database", db.Path(),
		"sqlite_version", info["sqlite_version"],
	)
	return nil
}
