package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/rgann/gatekeeper/config"
	"github.com/rgann/gatekeeper/game"
	"github.com/rgann/gatekeeper/llm/gateway"
	gklogger "github.com/rgann/gatekeeper/logger"
	"github.com/rgann/gatekeeper/migrations"
	"github.com/rgann/gatekeeper/store"
	"github.com/rgann/gatekeeper/ui/tui"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to config file (default: ~/.gatekeeper/config.yaml)")
		dbPath     = flag.String("db", "", "Path to the progress database. Overrides the config file")
		logFile    = flag.String("logfile", "", "Path to log file. If not set, logs to stdout/stderr")
		pretty     = flag.Bool("pretty", false, "Use pretty console output (only valid when logfile is not set)")
	)
	flag.Parse()

	if *logFile != "" && *pretty {
		fmt.Fprintf(os.Stderr, "Error: --logfile and --pretty are mutually exclusive\n")
		os.Exit(1)
	}

	if err := run(*configPath, *dbPath, *logFile, *pretty); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, dbPath, logFile string, pretty bool) error {
	if configPath == "" {
		configPath = config.GetConfigPath()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Config file may route logs to a file; the flag wins.
	if logFile == "" && !pretty {
		logFile = cfg.LogFile
	}
	logger, err := gklogger.InitWithOptions(logFile, pretty)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info().Str("config", configPath).Msg("Starting gatekeeper")

	if dbPath == "" {
		dbPath = cfg.DatabasePath
	}

	db, persister, err := openStore(dbPath, logger)
	if err != nil {
		// The game is playable without persistence; progress just will not
		// survive a restart.
		logger.Warn().Err(err).Str("path", dbPath).Msg("Progress database unavailable, continuing without persistence")
	}
	if db != nil {
		defer db.Close() //nolint:errcheck // No remedy for db close errors
	}

	gw := gateway.New(logger, gateway.Config{
		OpenAIBaseURL: cfg.OpenAI.BaseURL,
		OpenAIModel:   cfg.OpenAI.Model,
		GroqBaseURL:   cfg.Groq.BaseURL,
		GroqModel:     cfg.Groq.Model,
		GeminiBaseURL: cfg.Gemini.BaseURL,
		GeminiModel:   cfg.Gemini.Model,
	})

	var gamePersister game.Persister
	if persister != nil {
		gamePersister = persister
	}
	session := game.NewSession(gw, gamePersister, logger)

	logger.Info().
		Int("maxUnlockedLevel", session.MaxUnlockedLevel()).
		Str("provider", session.Provider()).
		Bool("credentialConfigured", session.CredentialConfigured()).
		Msg("Session restored")

	app := tui.NewApp(logger, session, persister, cfg.NotificationsEnabled())
	if err := app.Run(); err != nil {
		logger.Error().Err(err).Msg("Error running application")
		return fmt.Errorf("error running application: %w", err)
	}

	logger.Info().Msg("Application shutdown")
	return nil
}

// openStore opens the sqlite database and applies migrations. A nil store
// with an error means the caller should continue without persistence.
func openStore(path string, logger zerolog.Logger) (*sql.DB, *store.Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := migrations.Run(db, logger); err != nil {
		db.Close() //nolint:errcheck,gosec // Best-effort close on the error path
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return db, store.NewStore(db), nil
}
