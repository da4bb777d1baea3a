package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	topics "shorts-factory/01_topics"
	script "shorts-factory/02_script"
	audio "shorts-factory/03_audio"
	footage "shorts-factory/04_footage"
	render "shorts-factory/05_render"
	metadata "shorts-factory/06_metadata"
	upload "shorts-factory/07_upload"
	"shorts-factory/config"
	"shorts-factory/pipeline"
	"shorts-factory/scheduler"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the pipeline config file")
	once := flag.Bool("once", false, "run the pipeline a single time and exit")
	flag.Parse()

	// Load .env (local dev only; production sets the environment directly)
	_ = godotenv.Load()
	setupLogging()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", *configPath).Msg("failed to load config")
	}
	cfg.Secrets = config.LoadSecrets()
	if missing := cfg.Secrets.Missing(); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("secrets not set; affected stages will fail")
	}

	if err := os.MkdirAll(cfg.Paths.WorkDir, 0755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.Paths.WorkDir).Msg("failed to create work dir")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	topicSource := topics.New(cfg)
	seedTopics(ctx, cfg, topicSource)

	orchestrator := pipeline.New(cfg, pipeline.Stages{
		Topics:   topicSource,
		Script:   script.New(cfg),
		Voice:    audio.New(cfg),
		Render:   render.New(cfg, footage.New(cfg)),
		Metadata: metadata.New(cfg),
		Publish:  upload.New(cfg),
	})

	if *once {
		if res := orchestrator.Run(ctx); !res.OK() {
			os.Exit(1)
		}
		return
	}

	log.Info().
		Int("topics", topicSource.Remaining()).
		Dur("interval", cfg.Schedule.Interval).
		Msg("🚀 YouTube Automation Started!")

	if err := scheduler.New(cfg, orchestrator).Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal().Err(err).Msg("scheduler stopped")
	}
	log.Info().Msg("shutting down")
}

func setupLogging() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	level := zerolog.InfoLevel
	if v := strings.TrimSpace(os.Getenv("LOG_LEVEL")); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}
	zerolog.SetGlobalLevel(level)
}

// seedTopics appends Reddit top-post titles once at start-up. Failure leaves
// the configured list as the only source.
func seedTopics(ctx context.Context, cfg *config.Config, src *topics.Source) {
	if cfg.Topics.Reddit.Subreddit == "" {
		return
	}
	lister, err := topics.NewRedditLister(cfg.Secrets)
	if err != nil {
		log.Warn().Err(err).Msg("reddit seeding disabled")
		return
	}

	seedCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	added, err := src.SeedFromReddit(seedCtx, lister, cfg.Topics.Reddit)
	if err != nil {
		log.Warn().Err(err).Msg("reddit seeding failed; using configured topics")
		return
	}
	log.Info().Int("added", len(added)).Str("subreddit", cfg.Topics.Reddit.Subreddit).Msg("topics seeded from reddit")
}
