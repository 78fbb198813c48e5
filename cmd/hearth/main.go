package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/hearthplan/hearth/internal/api"
	"github.com/hearthplan/hearth/internal/assistant"
	"github.com/hearthplan/hearth/internal/conversation"
	"github.com/hearthplan/hearth/internal/digest"
	"github.com/hearthplan/hearth/internal/flow"
	"github.com/hearthplan/hearth/internal/lockfile"
	"github.com/hearthplan/hearth/internal/prompts"
	"github.com/hearthplan/hearth/internal/store"
	"github.com/hearthplan/hearth/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for Hearth state data
	DefaultStateDir = "/var/lib/hearth"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "hearth.db"
)

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	// Only one instance may own a state directory.
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	st, err := buildStore(flags)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	var assistantOpts []assistant.Option
	if *flags.openaiKey != "" {
		assistantOpts = append(assistantOpts, assistant.WithAPIKey(*flags.openaiKey))
	}
	model, err := assistant.NewClient(assistantOpts...)
	if err != nil {
		slog.Error("Failed to initialize assistant client", "error", err)
		os.Exit(1)
	}

	controller := conversation.NewController()
	defer controller.Stop()
	orchestrator := flow.NewOrchestrator(controller, model, st, prompts.NewGenerator())

	sched := digest.NewScheduler()
	defer sched.Stop()
	if err := digest.NewDigest(st).Schedule(sched, *flags.digestCron); err != nil {
		slog.Error("Failed to schedule daily digest", "error", err)
		os.Exit(1)
	}

	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	apiOpts = append(apiOpts, api.WithNudgeDelay(*flags.nudgeDelay))

	slog.Info("Bootstrapping Hearth with configured modules")
	server := api.NewServer(orchestrator, controller, st, apiOpts...)
	if err := server.Run(); err != nil {
		slog.Error("Hearth failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("Hearth exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	OpenAIKey   string
	APIAddr     string
	DigestCron  string
	NudgeDelay  time.Duration
}

// Flags holds command line flag values
type Flags struct {
	stateDir   *string
	dbDSN      *string
	openaiKey  *string
	apiAddr    *string
	digestCron *string
	nudgeDelay *time.Duration
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("HEARTH_STATE_DIR"),
		OpenAIKey:   os.Getenv("OPENAI_API_KEY"),
		APIAddr:     os.Getenv("API_ADDR"),
		DigestCron:  os.Getenv("DIGEST_SCHEDULE"),
		NudgeDelay:  util.ParseDurationEnv("INTRO_NUDGE_DELAY", api.DefaultNudgeDelay),
	}

	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No HEARTH_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"HEARTH_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"DIGEST_SCHEDULE", config.DigestCron,
		"INTRO_NUDGE_DELAY", config.NudgeDelay)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:   flag.String("state-dir", config.StateDir, "state directory for Hearth data (overrides $HEARTH_STATE_DIR)"),
		dbDSN:      flag.String("db-dsn", config.DatabaseURL, "database DSN for the store (overrides $DATABASE_URL)"),
		openaiKey:  flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:    flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		digestCron: flag.String("digest-cron", config.DigestCron, "cron schedule for the daily agenda digest (overrides $DIGEST_SCHEDULE)"),
		nudgeDelay: flag.Duration("nudge-delay", config.NudgeDelay, "delay before the intro nudge message (overrides $INTRO_NUDGE_DELAY)"),
	}
	flag.Parse()

	// Follow the state directory when the DSN was left at its derived default.
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"digestCron", *flags.digestCron,
		"nudgeDelay", *flags.nudgeDelay)

	return flags
}

// buildStore constructs the configured store backend.
func buildStore(flags Flags) (store.Store, error) {
	dsn := *flags.dbDSN
	if dsn == "" {
		slog.Debug("No database DSN provided, using in-memory store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(dsn) == "postgres" {
		slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store")
		return store.NewPostgresStore(store.WithPostgresDSN(dsn))
	}
	slog.Debug("Detected SQLite DSN, configuring SQLite store", "db_path", dsn)
	return store.NewSQLiteStore(store.WithSQLiteDSN(dsn))
}
