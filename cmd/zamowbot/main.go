package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/zamowbot/zamowbot/internal/api"
	"github.com/zamowbot/zamowbot/internal/dialognav"
	"github.com/zamowbot/zamowbot/internal/disambig"
	"github.com/zamowbot/zamowbot/internal/genai"
	"github.com/zamowbot/zamowbot/internal/handlers"
	"github.com/zamowbot/zamowbot/internal/intent"
	"github.com/zamowbot/zamowbot/internal/messaging"
	"github.com/zamowbot/zamowbot/internal/phrase"
	"github.com/zamowbot/zamowbot/internal/pipeline"
	"github.com/zamowbot/zamowbot/internal/policy"
	"github.com/zamowbot/zamowbot/internal/respond"
	"github.com/zamowbot/zamowbot/internal/store"
	"github.com/zamowbot/zamowbot/internal/twiliosms"
	"github.com/zamowbot/zamowbot/internal/util"
	"github.com/zamowbot/zamowbot/internal/whatsapp"
)

// Default configuration constants.
const (
	// DefaultStateDir is the default directory for zamowbot state data.
	DefaultStateDir = "/var/lib/zamowbot"
	// DefaultDBFileName is the default SQLite database filename.
	DefaultDBFileName = "zamowbot.db"
)

// Config holds environment configuration.
type Config struct {
	StateDir   string
	MenuDSN    string
	RedisAddr  string
	OpenAIKey  string
	APIAddr    string
	Channel    string
	WhatsAppDB string
	Mode       string
	NavGuard   bool
}

// Flags holds command line flag values.
type Flags struct {
	stateDir  *string
	menuDSN   *string
	redisAddr *string
	openaiKey *string
	apiAddr   *string
	channel   *string
	waDBDSN   *string
	qrOutput  *string
	numeric   *bool
	mode      *string
	navGuard  *bool
}

func main() {
	initializeLogger()
	config := loadEnvironmentConfig()
	flags := parseCommandLineFlags(config)

	if err := os.MkdirAll(*flags.stateDir, 0755); err != nil {
		slog.Error("Failed to create state directory", "error", err, "dir", *flags.stateDir)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, flags); err != nil {
		slog.Error("zamowbot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("zamowbot exited successfully")
}

func run(ctx context.Context, flags Flags) error {
	menu, err := buildMenuRepository(flags)
	if err != nil {
		return err
	}
	sessions, err := buildSessionStore(ctx, flags)
	if err != nil {
		return err
	}

	// The language model is optional: without a key the router falls back to
	// the legacy heuristic matcher and replies stay deterministic.
	var fallback intent.FallbackClassifier = intent.NewLegacyMatcher()
	var paraphraser respond.Paraphraser
	if *flags.openaiKey != "" {
		client, err := genai.NewClient(genai.WithAPIKey(*flags.openaiKey))
		if err != nil {
			return err
		}
		fallback = intent.NewLLMTranslator(client)
		paraphraser = phrase.NewGenerator(client)
		slog.Info("Language model enabled", "fallback", fallback.Name())
	} else {
		slog.Info("No OpenAI API key, running fully deterministic", "fallback", fallback.Name())
	}

	mode := respond.ModeActive
	if *flags.mode == string(respond.ModeShadow) {
		mode = respond.ModeShadow
	}
	controller := respond.NewController(mode, policy.NewResolver(), paraphraser)

	router := intent.NewRouter(menu, fallback)
	guard := dialognav.NewGuard(*flags.navGuard)
	registry := handlers.NewRegistry(menu, disambig.NewService(menu))
	pipe := pipeline.New(sessions, router, guard, registry, controller)

	slog.Info("Bootstrapping zamowbot",
		"mode", mode, "nav_guard", *flags.navGuard, "channel", *flags.channel, "api_addr", *flags.apiAddr)

	if *flags.channel != "" && *flags.channel != "none" {
		service, err := buildMessagingService(flags)
		if err != nil {
			return err
		}
		if err := service.Start(ctx); err != nil {
			return err
		}
		defer service.Stop()
		go messaging.NewResponder(service, pipe).Run(ctx)
	}

	server := api.NewServer(pipe, sessions, menu, controller, api.WithAddr(*flags.apiAddr))
	return server.Run(ctx)
}

func buildMenuRepository(flags Flags) (store.MenuRepository, error) {
	dsn := *flags.menuDSN
	if dsn == "" {
		dsn = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("No menu DSN provided, defaulting to SQLite", "sqlite_path", dsn)
	}
	if store.DetectDSNType(dsn) == "postgres" {
		return store.NewPostgresMenuRepository(store.WithDSN(dsn))
	}
	return store.NewSQLiteMenuRepository(store.WithDSN(dsn))
}

func buildSessionStore(ctx context.Context, flags Flags) (store.SessionStore, error) {
	if *flags.redisAddr == "" {
		slog.Debug("No Redis address, using in-memory session store")
		return store.NewInMemorySessionStore(), nil
	}
	return store.NewRedisSessionStore(ctx, *flags.redisAddr, os.Getenv("REDIS_PASSWORD"), 0)
}

func buildMessagingService(flags Flags) (messaging.Service, error) {
	switch *flags.channel {
	case "whatsapp":
		waOpts := []whatsapp.Option{whatsapp.WithDBDSN(*flags.waDBDSN)}
		if *flags.qrOutput != "" {
			waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
		}
		if *flags.numeric {
			waOpts = append(waOpts, whatsapp.WithNumericCode())
		}
		client, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return nil, err
		}
		return messaging.NewWhatsAppService(client), nil
	case "sms":
		client, err := twiliosms.NewClient()
		if err != nil {
			return nil, err
		}
		return messaging.NewTwilioService(client), nil
	default:
		slog.Warn("Unknown channel, using mock messaging service", "channel", *flags.channel)
		return messaging.NewMockService(), nil
	}
}

// initializeLogger sets up structured logging.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("ZAMOWBOT_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file.
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		StateDir:   os.Getenv("ZAMOWBOT_STATE_DIR"),
		MenuDSN:    os.Getenv("DATABASE_URL"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		OpenAIKey:  os.Getenv("OPENAI_API_KEY"),
		APIAddr:    util.EnvOrDefault("API_ADDR", api.DefaultAddr),
		Channel:    util.EnvOrDefault("ZAMOWBOT_CHANNEL", "none"),
		WhatsAppDB: os.Getenv("WHATSAPP_DB_DSN"),
		Mode:       util.EnvOrDefault("ZAMOWBOT_MODE", string(respond.ModeActive)),
		NavGuard:   util.ParseBoolEnv("ZAMOWBOT_NAV_GUARD", true),
	}
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No ZAMOWBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}
	if config.WhatsAppDB == "" {
		config.WhatsAppDB = filepath.Join(config.StateDir, "whatsmeow.db")
	}

	slog.Debug("environment variables loaded",
		"ZAMOWBOT_STATE_DIR", config.StateDir,
		"DATABASE_URL_SET", config.MenuDSN != "",
		"REDIS_ADDR_SET", config.RedisAddr != "",
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"ZAMOWBOT_CHANNEL", config.Channel,
		"ZAMOWBOT_MODE", config.Mode)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults.
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:  flag.String("state-dir", config.StateDir, "state directory for zamowbot data (overrides $ZAMOWBOT_STATE_DIR)"),
		menuDSN:   flag.String("db-dsn", config.MenuDSN, "menu database DSN, SQLite path or Postgres URL (overrides $DATABASE_URL)"),
		redisAddr: flag.String("redis-addr", config.RedisAddr, "Redis address for session storage (overrides $REDIS_ADDR)"),
		openaiKey: flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)"),
		apiAddr:   flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		channel:   flag.String("channel", config.Channel, "delivery channel: whatsapp, sms, or none (overrides $ZAMOWBOT_CHANNEL)"),
		waDBDSN:   flag.String("whatsapp-db-dsn", config.WhatsAppDB, "whatsmeow database DSN (overrides $WHATSAPP_DB_DSN)"),
		qrOutput:  flag.String("qr-output", "", "path to write login QR code"),
		numeric:   flag.Bool("numeric-code", false, "use numeric login code instead of QR code"),
		mode:      flag.String("mode", config.Mode, "operating mode: active or shadow (overrides $ZAMOWBOT_MODE)"),
		navGuard:  flag.Bool("nav-guard", config.NavGuard, "enable dialog navigation guard (overrides $ZAMOWBOT_NAV_GUARD)"),
	}
	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"menuDSN_set", *flags.menuDSN != "",
		"redisAddr_set", *flags.redisAddr != "",
		"openaiKey_set", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"channel", *flags.channel,
		"mode", *flags.mode,
		"navGuard", *flags.navGuard)

	return flags
}
