package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"
	"golang.org/x/term"

	"github.com/mizukaze554/AnimeSearch/internal/cache"
	"github.com/mizukaze554/AnimeSearch/internal/config"
	"github.com/mizukaze554/AnimeSearch/internal/jikan"
	"github.com/mizukaze554/AnimeSearch/internal/lists"
	"github.com/mizukaze554/AnimeSearch/internal/log"
	"github.com/mizukaze554/AnimeSearch/internal/search"
	"github.com/mizukaze554/AnimeSearch/internal/tracemoe"
	"github.com/mizukaze554/AnimeSearch/internal/translate"
	"github.com/mizukaze554/AnimeSearch/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	var clearCache bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.BoolVar(&clearCache, "clear-cache", false, "clear the result cache and exit")
	flag.Parse()

	if showVersion {
		fmt.Printf("animesearch %s\n", Version)
		return
	}

	if clearCache {
		if err := config.ClearCache(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Cache cleared.")
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting animesearch", "version", Version)

	// First run: persist the defaults so there is a file to edit.
	if !config.Exists() {
		if err := config.SaveConfig(cfg); err != nil {
			logger.Warn("failed to write default config", "error", err)
		}
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("animesearch must be run in a terminal")
	}

	store, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("failed to open result cache: %w", err)
	}
	defer store.Close()

	httpClient := &http.Client{Timeout: 30 * time.Second}

	metadata := jikan.NewClient(cfg.API.MetadataURL, httpClient, logger)
	images := tracemoe.NewClient(cfg.API.ImageURL, httpClient, logger)
	translator := translate.NewClient(cfg.API.TranslateURL, httpClient, logger)

	jar, err := lists.OpenJar(config.DataPath())
	if err != nil {
		return fmt.Errorf("failed to open list storage: %w", err)
	}
	history := lists.NewHistory(jar, cfg.Search.HistoryMax)
	favorites := lists.NewFavorites(jar)

	svc := search.NewService(metadata, images, translator, store, cfg.Search.PageLimit, logger)

	model := tui.NewModel(svc, history, favorites, logger)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// openStore picks the cache backend from config. Bolt is the default;
// Redis is for setups sharing one cache across machines.
func openStore(cfg *config.Config) (cache.Store, error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.Cache.RedisAddr})
		return cache.NewRedisStore(client, cfg.Cache.TTL), nil
	default:
		return cache.NewBoltStore(cfg.Cache.Dir, cfg.Cache.TTL)
	}
}
