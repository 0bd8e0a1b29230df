package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fashionbot/internal/advisor"
	"fashionbot/internal/bus"
	"fashionbot/internal/channel"
	"fashionbot/internal/config"
	"fashionbot/internal/domain"
	"fashionbot/internal/provider"
	"fashionbot/internal/search"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version    = "0.1.0"
	logger     *slog.Logger
	configPath string // overridable via --config flag
)

func main() {
	_ = godotenv.Load()
	advisor.SetVersion(version)

	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	root := &cobra.Command{
		Use:   "fashionbot",
		Short: "Visionary Fashion Bot: AI makeup and outfit advice over Telegram",
		Long:  "Visionary Fashion Bot answers free-form style questions with makeup and outfit recommendations, each illustrated with an image.",
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.fashionbot/config.json)")

	root.AddCommand(initCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(askCmd())
	root.AddCommand(versionCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgPath := resolveConfigPath()
			if err := os.MkdirAll(config.DefaultConfigDir(), 0o755); err != nil {
				return err
			}
			if err := config.Save(cfgPath, config.Defaults()); err != nil {
				return err
			}
			logger.Info("initialized", "config", cfgPath)
			return nil
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook server and advice pipeline",
		RunE:  runServe,
	}
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <query>",
		Short: "Run the advice pipeline once, printing the plan to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  runAsk,
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fashionbot v%s\n", version)
		},
	}
}

func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

func loadConfig() *config.Config {
	cfgPath := resolveConfigPath()
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Warn("config not found, using defaults", "path", cfgPath, "err", err)
		cfg = config.Defaults()
	}

	logger = newLogger(cfg.General.LogLevel)
	slog.SetDefault(logger)
	return cfg
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}

// buildPipeline wires the model, the image search and the templates
// around the given messenger.
func buildPipeline(cfg *config.Config, messenger domain.Messenger, msgBus domain.MessageBus) *advisor.Pipeline {
	gen := provider.NewOpenAI(provider.OpenAIConfig{
		APIKey:      cfg.OpenAI.APIKey,
		APIBase:     cfg.OpenAI.APIBase,
		Model:       cfg.OpenAI.Model,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Temperature: cfg.OpenAI.Temperature,
		Logger:      logger,
	})

	searcher := search.NewGoogle(search.GoogleConfig{
		APIKey:        cfg.Search.APIKey,
		CX:            cfg.Search.CX,
		APIBase:       cfg.Search.APIBase,
		RatePerMinute: cfg.Search.RatePerMinute,
		CacheTTL:      time.Duration(cfg.Search.CacheTTLMinutes) * time.Minute,
		Logger:        logger,
	})

	return advisor.NewPipeline(advisor.PipelineConfig{
		Generator:   gen,
		Searcher:    searcher,
		Messenger:   messenger,
		Templates:   advisor.LoadTemplates(cfg.Prompts.Dir, logger),
		Bus:         msgBus,
		Logger:      logger,
		Concurrency: cfg.General.MaxConcurrentMessages,
		CallTimeout: time.Duration(cfg.General.RequestTimeoutSeconds) * time.Second,
	})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	messenger, err := channel.NewTelegram(channel.TelegramConfig{
		Token:     cfg.Telegram.Token,
		ParseMode: cfg.Telegram.ParseMode,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	msgBus := bus.New(100, logger)
	defer msgBus.Close()

	pipeline := buildPipeline(cfg, messenger, msgBus)
	go pipeline.Run(ctx)

	server := channel.NewWebhookServer(channel.WebhookConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		Path:            cfg.Server.WebhookPath,
		SecretToken:     cfg.Server.SecretToken,
		MetricsEnabled:  cfg.Metrics.Enabled,
		MetricsEndpoint: cfg.Metrics.Endpoint,
		Bus:             msgBus,
		Logger:          logger,
	})

	logger.Info("fashionbot starting", "version", version)
	return server.Run(ctx)
}

// runAsk answers a single query on the terminal, without Telegram.
func runAsk(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline := buildPipeline(cfg, &stdoutMessenger{}, nil)
	pipeline.Handle(ctx, domain.InboundMessage{
		ChatID:     0,
		Text:       args[0],
		ReceivedAt: time.Now(),
	})
	return nil
}

// stdoutMessenger prints deliveries instead of sending them, for local
// runs without a bot token.
type stdoutMessenger struct{}

func (m *stdoutMessenger) SendText(_ context.Context, _ int64, text string) error {
	fmt.Println(text)
	return nil
}

func (m *stdoutMessenger) SendPhoto(_ context.Context, _ int64, photoURL, caption string) error {
	fmt.Printf("%s\n  %s\n", caption, photoURL)
	return nil
}
