// Package server exposes the blog feed over HTTP.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fpenna/blog-rss/internal/blog"
	"github.com/fpenna/blog-rss/pkg/content"
	"github.com/fpenna/blog-rss/pkg/feed"
)

// DefaultFeedPath is the route the feed is served from
const DefaultFeedPath = "/rss.xml"

const shutdownTimeout = 10 * time.Second

var (
	feedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "blogrss_feed_requests_total",
		Help: "Feed requests by result",
	}, []string{"result"})

	feedItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "blogrss_feed_items",
		Help: "Number of items in the most recently rendered feed",
	})

	feedRenderSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "blogrss_feed_render_seconds",
		Help:    "Time spent loading posts and rendering the feed",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

// Config holds what the server needs to answer feed requests
type Config struct {
	FeedPath string
	Store    content.Store
	Feed     blog.Options
}

// New returns a fiber app serving the feed, a health check and metrics
func New(cfg Config) *fiber.App {
	if cfg.FeedPath == "" {
		cfg.FeedPath = DefaultFeedPath
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		AppName:               "blog-rss",
	})

	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(accessLog)
	app.Use(compress.New())

	app.Get(cfg.FeedPath, feedHandler(cfg))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}

func accessLog(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()

	slog.Info("Request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
	)
	return err
}

func feedHandler(cfg Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		timer := prometheus.NewTimer(feedRenderSeconds)
		data, count, err := blog.Render(c.UserContext(), cfg.Store, cfg.Feed)
		timer.ObserveDuration()

		if err != nil {
			feedRequests.WithLabelValues("error").Inc()
			slog.Error("Failed to render feed", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("failed to generate feed")
		}

		feedRequests.WithLabelValues("ok").Inc()
		feedItems.Set(float64(count))

		c.Set(fiber.HeaderContentType, feed.ContentType)
		return c.Send(data)
	}
}

// Run serves app on addr until ctx is cancelled, then shuts down gracefully
func Run(ctx context.Context, app *fiber.App, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("Starting server", "addr", addr)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		slog.Info("Gracefully shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			return err
		}
		return <-errCh
	}
}
