package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sjsage522/listingtracker/config"
	"sjsage522/listingtracker/internal/crawler"
	"sjsage522/listingtracker/internal/detail"
	"sjsage522/listingtracker/internal/extract"
	"sjsage522/listingtracker/internal/fetch"
	"sjsage522/listingtracker/internal/geo"
	"sjsage522/listingtracker/internal/reconcile"
	"sjsage522/listingtracker/logger"
	"sjsage522/listingtracker/services/cache"
	"sjsage522/listingtracker/services/mirror"
	"sjsage522/listingtracker/services/publisher"
	"sjsage522/listingtracker/services/worker"
)

func main() {
	// Load environment variables
	godotenv.Load()

	// Initialize logger first
	logger.Init()
	log := logger.Default

	// Malformed filters fail before anything touches the network
	opts, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Load and validate configuration
	cfg := config.LoadConfig()
	if opts.source != "" {
		cfg.Source = opts.source
	}
	if opts.policy != "" {
		cfg.VanishedPolicy = string(opts.policy)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	policy, _ := reconcile.ParsePolicy(cfg.VanishedPolicy)

	log.Info().
		Str("environment", cfg.Environment).
		Str("source", cfg.Source).
		Str("policy", string(policy)).
		Dur("run_interval", cfg.RunInterval).
		Msg("Starting application")

	// Set up context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Initialize services
	services, err := initializeServices(ctx, &cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize services")
	}
	defer services.Cleanup()

	w, err := buildWorker(&cfg, opts, policy, services, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}

	// Start worker in a goroutine
	workerDone := make(chan error, 1)
	go func() {
		workerDone <- w.Start(ctx)
	}()

	// Wait for shutdown signal or worker exit
	select {
	case sig := <-sigChan:
		log.Info().
			Str("signal", sig.String()).
			Msg("Received shutdown signal")
		cancel()
		err = <-workerDone
	case err = <-workerDone:
	}

	if err != nil {
		log.Error().Err(err).Msg("Worker exited with error")
		services.Cleanup()
		os.Exit(1)
	}
	log.Info().Msg("Worker exited normally")
}

// Services holds all the initialized services
type Services struct {
	Cache     cache.CacheService
	Publisher publisher.Publisher
	Mirror    mirror.Mirror
	Geo       geo.Lookup
}

// Cleanup cleans up all services
func (s *Services) Cleanup() {
	if s.Publisher != nil {
		s.Publisher.Close()
		s.Publisher = nil
	}
	if s.Mirror != nil {
		s.Mirror.Close()
		s.Mirror = nil
	}
}

// initializeServices initializes the optional backing services. Only a bad
// geo directory is fatal; brokers that cannot be reached are skipped.
func initializeServices(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Services, error) {
	services := &Services{
		Cache:     cache.New(cfg.MemcacheAddr),
		Publisher: publisher.NopPublisher{},
		Geo:       geo.NopLookup{},
	}
	if cfg.MemcacheAddr != "" {
		log.Info().Str("addr", cfg.MemcacheAddr).Msg("Using memcache for block markers")
	}

	if cfg.GeoDir != "" {
		index, err := geo.LoadDir(cfg.GeoDir, logger.ForComponent("geo"))
		if err != nil {
			return nil, err
		}
		services.Geo = index
	}

	if cfg.RedisAddr != "" {
		redisPublisher := publisher.NewRedisPublisher(
			cfg.RedisAddr,
			cfg.RedisDB,
			cfg.RedisStream,
			cfg.RedisStreamMaxLength,
		)
		if err := redisPublisher.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unreachable, events disabled")
			redisPublisher.Close()
		} else {
			services.Publisher = redisPublisher
			log.Info().Str("addr", cfg.RedisAddr).Int("db", cfg.RedisDB).Str("stream", cfg.RedisStream).Msg("Connected to Redis")
		}
	}

	if cfg.PostgresDSN != "" {
		pg, err := mirror.NewPostgresMirror(ctx, cfg.PostgresDSN, cfg.PostgresBatch, logger.ForComponent("mirror"))
		if err != nil {
			log.Warn().Err(err).Msg("Postgres unavailable, mirror disabled")
		} else {
			services.Mirror = pg
		}
	}

	return services, nil
}

// buildWorker wires fetchers, source, walker and reconciliation. Every request
// goes through the shared pacer and the block guard.
func buildWorker(cfg *config.Config, opts cliOptions, policy reconcile.Policy, services *Services, log *logger.Logger) (*worker.Worker, error) {
	ex, err := extract.NewExtractor(cfg.BaseURL, extract.DefaultLocator(), extract.NewAgentNormalizer(opts.agents))
	if err != nil {
		return nil, err
	}

	pacer := fetch.NewPacer(cfg.FetchCooldown)
	guard := fetch.NewBlockGuard(services.Cache, cfg.BlockTime, log.WithField("component", "guard"))
	static := fetch.NewStaticFetcher(nil, cfg.FetchTimeout)

	var index fetch.Fetcher = static
	if opts.dynamic {
		index = fetch.NewDynamicFetcher(fetch.DynamicOptions{ExecPath: cfg.ChromeBin})
	}
	index = guard.Fetcher(pacer.Fetcher(index))
	poster := guard.Poster(pacer.Poster(static.WithHeaders(crawler.APIHeaders)))
	pages := guard.Fetcher(pacer.Fetcher(static))

	source, err := crawler.CreateSource(crawler.SourceConfig{
		Kind:      cfg.Source,
		SearchURL: cfg.SearchURL,
		APIURL:    cfg.APIURL,
	}, index, poster, ex, log.WithField("component", "source"))
	if err != nil {
		return nil, err
	}

	walker := crawler.NewWalker(source, opts.maxPages, log.WithField("component", "walker"))
	engine := reconcile.NewEngine(
		detail.NewEnricher(pages, ex),
		geo.NewAdapter(services.Geo),
		policy,
		log.WithField("component", "reconcile"),
	)

	return worker.NewWorker(walker, engine, services.Mirror, services.Publisher, log, worker.Options{
		DataPath: opts.data,
		DataDir:  opts.dataDir,
		OutPath:  opts.out,
		Filter:   opts.filter,
		Interval: cfg.RunInterval,
	}), nil
}
