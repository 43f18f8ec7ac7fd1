package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/LyMot/geogee/internal/config"
	"github.com/LyMot/geogee/internal/logger"
	"github.com/LyMot/geogee/internal/tiles"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ConfigFile  string   `short:"c" long:"config"      env:"CONFIG_FILE" description:"Path to configuration file" default:"config.yaml"`
	Limit       []string `short:"l" long:"limit"       env:"LIMIT_NAMES" description:"Limit processing to specific basemap names"`
	Concurrency int      `short:"p" long:"concurrency" env:"CONCURRENCY" description:"Concurrency" default:"10"`
	ZoomLimit   int      `short:"z" long:"zoom-limit"  env:"ZOOM_LIMIT"  description:"Tiles zoom limit" default:"6"`
	RateLimit   float64  `short:"r" long:"rate-limit"  env:"RATE_LIMIT"  description:"Max requests per second" default:"25"`
	Force       bool     `short:"f" long:"force"       description:"Force overwrite of existing tiles"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	client := &http.Client{
		Transport: &http.Transport{
			TLSNextProto:        make(map[string]func(string, *tls.Conn) http.RoundTripper),
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 100,
		},
		Timeout: 15 * time.Second,
	}

	if opts.Concurrency <= 0 {
		opts.Concurrency = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 25
	}

	// Filter basemaps if limit is set
	basemaps := cfg.Basemaps
	if len(opts.Limit) > 0 {
		available := make(map[string]config.Basemap, len(cfg.Basemaps))
		for _, b := range cfg.Basemaps {
			available[b.Name] = b
		}

		basemaps = make([]config.Basemap, 0, len(opts.Limit))
		seen := make(map[string]bool)

		for _, name := range opts.Limit {
			if seen[name] {
				continue
			}
			seen[name] = true

			if b, ok := available[name]; ok {
				basemaps = append(basemaps, b)
			} else {
				log.Error().
					Str("name", name).
					Msg("Basemap specified in --limit not found in configuration")
			}
		}
	}

	fetcher := &tiles.Fetcher{
		Client:      client,
		Limiter:     rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Concurrency),
		CacheDir:    cfg.CacheDir,
		Concurrency: opts.Concurrency,
		Force:       opts.Force,
	}

	log.Info().
		Int("basemaps_total", len(cfg.Basemaps)).
		Int("basemaps_queued", len(basemaps)).
		Int("zoom_limit", opts.ZoomLimit).
		Msg("Starting tile cache loader")

	ctx := context.Background()
	for _, b := range basemaps {
		zoom := b.MaxZoom
		if zoom <= 0 || zoom > opts.ZoomLimit {
			zoom = opts.ZoomLimit
		}
		fetcher.Prefetch(ctx, b.Name, b.URL, zoom)
	}

	log.Info().Msg("Tile cache loader finished successfully")
}
