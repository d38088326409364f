package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"menu-scraper/pkg/config"
	"menu-scraper/pkg/detect"
	"menu-scraper/pkg/discover"
	"menu-scraper/pkg/fetch"
	"menu-scraper/pkg/models"
	"menu-scraper/pkg/orchestrate"
	"menu-scraper/pkg/output"
	"menu-scraper/pkg/parse"
	"menu-scraper/pkg/places"
	"menu-scraper/pkg/scrape"
	"menu-scraper/pkg/storage"
	"menu-scraper/pkg/utils"
)

const version = "1.0.0"

const exitCodeInterrupted = 130

func main() {
	app := &cli.App{
		Name:    "menu-scraper",
		Usage:   "discover and save restaurant menu pages",
		Version: version,
		Commands: []*cli.Command{
			crawlCommand(),
			resolveCommand(),
		},
	}

	// cli.Exit errors are handled (printed, coded exit) inside Run.
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func crawlCommand() *cli.Command {
	return &cli.Command{
		Name:  "crawl",
		Usage: "crawl restaurant websites from a seed list and save menu documents",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to YAML config file"},
			&cli.StringFlag{Name: "restaurants", Usage: "path to restaurants JSON seed list"},
			&cli.StringFlag{Name: "out", Usage: "output root directory"},
			&cli.IntFlag{Name: "offset", Usage: "skip the first N seeds"},
			&cli.IntFlag{Name: "limit", Usage: "process at most N seeds (0 = all)"},
			&cli.IntFlag{Name: "concurrency", Usage: "parallel site processors"},
			&cli.IntFlag{Name: "max-pages", Usage: "saved-document budget per site"},
			&cli.StringFlag{Name: "user-agent", Usage: "User-Agent header and robots identity"},
			&cli.BoolFlag{Name: "write-tree", Usage: "write structure.txt at the output root after the run"},
			&cli.StringFlag{Name: "loglevel", Usage: "log level (debug, info, warn, error)"},
			&cli.StringFlag{Name: "logformat", Usage: "log format (text, json)"},
		},
		Action: crawlAction,
	}
}

func resolveCommand() *cli.Command {
	return &cli.Command{
		Name:  "resolve",
		Usage: "resolve Google Maps place URLs from a reviews dump into a crawler seed list",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "path to YAML config file"},
			&cli.StringFlag{Name: "input", Required: true, Usage: "path to reviews JSON (restaurant_id + restaurant_url rows)"},
			&cli.StringFlag{Name: "output", Required: true, Usage: "path to write the {uuid, name, website} seed list"},
			&cli.StringFlag{Name: "api-key", Usage: "Google Places API key", EnvVars: []string{"GOOGLE_PLACES_API_KEY"}},
			&cli.StringFlag{Name: "cache-dir", Usage: "directory for the place resolution cache"},
			&cli.StringFlag{Name: "loglevel", Usage: "log level (debug, info, warn, error)"},
			&cli.StringFlag{Name: "logformat", Usage: "log format (text, json)"},
		},
		Action: resolveAction,
	}
}

// loadConfig reads the optional config file, layers flag overrides on top,
// validates, and builds the logger.
func loadConfig(c *cli.Context) (*config.AppConfig, *logrus.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}

	if c.IsSet("restaurants") {
		cfg.RestaurantsPath = c.String("restaurants")
	}
	if c.IsSet("out") {
		cfg.OutputDir = c.String("out")
	}
	if c.IsSet("offset") {
		cfg.Offset = c.Int("offset")
	}
	if c.IsSet("limit") {
		cfg.Limit = c.Int("limit")
	}
	if c.IsSet("concurrency") {
		cfg.Concurrency = c.Int("concurrency")
	}
	if c.IsSet("max-pages") {
		cfg.MaxPagesPerSite = c.Int("max-pages")
	}
	if c.IsSet("user-agent") {
		cfg.UserAgent = c.String("user-agent")
	}
	if c.IsSet("write-tree") {
		cfg.WriteTreeReport = c.Bool("write-tree")
	}
	if c.IsSet("api-key") {
		cfg.Places.APIKey = c.String("api-key")
	}
	if c.IsSet("cache-dir") {
		cfg.Places.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("loglevel") {
		cfg.LogLevel = c.String("loglevel")
	}
	if c.IsSet("logformat") {
		cfg.LogFormat = c.String("logformat")
	}

	warnings, err := cfg.Validate()
	if err != nil {
		return nil, nil, err
	}

	log := logrus.New()
	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "15:04:05.000"})
	}
	level, levelErr := logrus.ParseLevel(cfg.LogLevel)
	if levelErr != nil {
		log.Warnf("Invalid log level '%s', using 'info': %v", cfg.LogLevel, levelErr)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	for _, w := range warnings {
		log.Warn(w)
	}
	return cfg, log, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM. A second
// signal forces immediate exit.
func signalContext(log *logrus.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Warnf("Received signal: %v. Initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig = <-sigChan:
			log.Warnf("Received second signal: %v. Forcing exit.", sig)
			os.Exit(exitCodeInterrupted)
		case <-time.After(30 * time.Second):
			log.Warn("Graceful shutdown period exceeded after signal. Forcing exit.")
			os.Exit(exitCodeInterrupted)
		}
	}()

	return ctx, cancel
}

func crawlAction(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if cfg.RestaurantsPath == "" {
		return cli.Exit("no restaurant list: set restaurants_path in the config file or pass --restaurants", 1)
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	restaurants, err := parse.LoadRestaurants(cfg.RestaurantsPath, cfg.Offset, cfg.Limit)
	if err != nil {
		return cli.Exit(fmt.Sprintf("loading restaurants: %v", err), 1)
	}

	// Seeds without a website can't be crawled; they are dropped after the
	// offset/limit slice so slicing stays stable across runs.
	withWebsite := make([]models.Restaurant, 0, len(restaurants))
	for _, r := range restaurants {
		if r.HasWebsite() {
			withWebsite = append(withWebsite, r)
		}
	}
	log.Infof("Loaded %d restaurants, %d have a website and will be processed", len(restaurants), len(withWebsite))

	store, err := output.NewStore(cfg.OutputDir, log.WithField("component", "output"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("initializing output root: %v", err), 1)
	}

	httpClient := fetch.NewClient(cfg.HTTPClientSettings, log)
	fetcher := fetch.NewFetcher(httpClient, cfg, log)
	robots := fetch.NewRobotsHandler(fetcher, cfg, log.WithField("component", "robots"))

	classifier := detect.NewClassifier(nil)
	heuristics := discover.DefaultHeuristics()
	generator := discover.NewGenerator(heuristics, classifier.IsMenuLike, log.WithField("component", "discover"))

	processor := scrape.NewProcessor(
		fetcher, robots, generator, classifier, heuristics, store,
		cfg.MaxPagesPerSite, log.WithField("component", "scrape"),
	)

	progress := orchestrate.NewProgressPrinter(os.Stdout, len(withWebsite))
	orch := orchestrate.NewOrchestrator(processor, cfg.Concurrency, progress, log.WithField("component", "orchestrate"))

	results, runErr := orch.Run(ctx, withWebsite)
	if runErr != nil {
		// Interrupted: per-site metadata is already on disk, run-level
		// summaries are deliberately not written for a partial run.
		log.Warnf("Run interrupted after %d of %d restaurants", len(results), len(withWebsite))
		return cli.Exit("interrupted", exitCodeInterrupted)
	}

	paths, err := store.WriteSummaries(results)
	if err != nil {
		return cli.Exit(fmt.Sprintf("writing summaries: %v", err), 1)
	}
	log.Infof("Results saved under: %s", store.Root())
	log.Infof("Summary CSV: %s", paths.CSV)
	log.Infof("Summary JSON: %s", paths.JSON)

	if cfg.WriteTreeReport {
		reportPath := filepath.Join(store.Root(), "structure.txt")
		if treeErr := utils.WriteTreeReport(store.Root(), reportPath, log.WithField("component", "tree")); treeErr != nil {
			log.Errorf("Failed to write tree report: %v", treeErr)
		} else {
			log.Infof("Tree report: %s", reportPath)
		}
	}
	return nil
}

func resolveAction(c *cli.Context) error {
	cfg, log, err := loadConfig(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if cfg.Places.APIKey == "" {
		return cli.Exit("no Places API key: pass --api-key or set GOOGLE_PLACES_API_KEY", 1)
	}

	ctx, cancel := signalContext(log)
	defer cancel()

	reviewPlaces, err := places.LoadReviewPlaces(c.String("input"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("loading reviews: %v", err), 1)
	}
	log.Infof("Found %d unique restaurants in %s", len(reviewPlaces), c.String("input"))

	cache, err := storage.NewBadgerStore(cfg.Places.CacheDir, log.WithField("component", "storage"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("opening resolution cache: %v", err), 1)
	}
	defer cache.Close()

	httpClient := fetch.NewClient(cfg.HTTPClientSettings, log)
	fetcher := fetch.NewFetcher(httpClient, cfg, log)
	client := places.NewClient(fetcher, cfg.Places, log.WithField("component", "places"))
	resolver := places.NewResolver(client, cache, log.WithField("component", "places"))

	seeds := make([]models.Restaurant, 0, len(reviewPlaces))
	withWebsite := 0
	for i, place := range reviewPlaces {
		if ctx.Err() != nil {
			log.Warnf("Resolve interrupted after %d of %d restaurants", i, len(reviewPlaces))
			return cli.Exit("interrupted", exitCodeInterrupted)
		}

		res, resolveErr := resolver.Resolve(ctx, place.URL)
		if resolveErr != nil {
			log.Warnf("Resolution failed for %s: %v", place.ID, resolveErr)
		}
		name := res.Name
		if name == "" {
			name = place.ID
		}
		if res.Website != "" {
			withWebsite++
		}
		seeds = append(seeds, parse.NewSeed(name, res.Website))
		log.Debugf("[%d/%d] %s -> %q (%s)", i+1, len(reviewPlaces), place.ID, name, res.Website)
	}

	data, err := json.MarshalIndent(seeds, "", "  ")
	if err != nil {
		return cli.Exit(fmt.Sprintf("marshaling seed list: %v", err), 1)
	}
	if err := os.WriteFile(c.String("output"), data, 0644); err != nil {
		return cli.Exit(fmt.Sprintf("writing seed list: %v", err), 1)
	}

	log.Infof("Wrote %d seeds to %s (%d with a website, %d without)",
		len(seeds), c.String("output"), withWebsite, len(seeds)-withWebsite)
	return nil
}
