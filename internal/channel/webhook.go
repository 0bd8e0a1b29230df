package channel

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"fashionbot/internal/domain"
	"fashionbot/internal/metrics"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

// WebhookServer accepts Telegram webhook updates over HTTP and feeds
// them onto the message bus. The handler returns as soon as the update
// is enqueued; processing happens in the pipeline.
type WebhookServer struct {
	host        string
	port        int
	path        string
	secretToken string

	metricsEnabled  bool
	metricsEndpoint string

	bus    domain.MessageBus
	logger *slog.Logger
	server *http.Server
}

type WebhookConfig struct {
	Host            string
	Port            int
	Path            string // webhook URL path (default: /webhook)
	SecretToken     string // optional X-Telegram-Bot-Api-Secret-Token value
	MetricsEnabled  bool
	MetricsEndpoint string
	Bus             domain.MessageBus
	Logger          *slog.Logger
}

func NewWebhookServer(cfg WebhookConfig) *WebhookServer {
	if cfg.Path == "" {
		cfg.Path = "/webhook"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.MetricsEndpoint == "" {
		cfg.MetricsEndpoint = "/metrics"
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &WebhookServer{
		host:            cfg.Host,
		port:            cfg.Port,
		path:            cfg.Path,
		secretToken:     cfg.SecretToken,
		metricsEnabled:  cfg.MetricsEnabled,
		metricsEndpoint: cfg.MetricsEndpoint,
		bus:             cfg.Bus,
		logger:          cfg.Logger,
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *WebhookServer) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleUpdate)
	mux.HandleFunc("/healthz", s.handleHealth)
	if s.metricsEnabled {
		mux.HandleFunc(s.metricsEndpoint, metrics.Collector.Handler())
	}

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	s.logger.Info("webhook server starting", "addr", s.server.Addr, "path", s.path)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("webhook server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("webhook server: %w", err)
	}
}

func (s *WebhookServer) handleUpdate(rw http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(rw, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if s.secretToken != "" {
		got := r.Header.Get(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.secretToken)) != 1 {
			s.logger.Warn("webhook request with bad secret token", "remote", r.RemoteAddr)
			http.Error(rw, "Forbidden", http.StatusForbidden)
			return
		}
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20)) // 1MB max
	if err != nil {
		http.Error(rw, "Bad Request", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	var update tgbotapi.Update
	if err := json.Unmarshal(body, &update); err != nil {
		s.logger.Warn("malformed webhook payload", "err", err, "remote", r.RemoteAddr)
		http.Error(rw, "Bad Request", http.StatusBadRequest)
		return
	}

	// Only chat messages feed the pipeline. Edits, callbacks and other
	// update kinds are acknowledged and dropped.
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		rw.WriteHeader(http.StatusOK)
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		rw.WriteHeader(http.StatusOK)
		return
	}

	var senderID int64
	if msg.From != nil {
		senderID = msg.From.ID
	}

	s.logger.Info("webhook message received",
		"chat_id", msg.Chat.ID,
		"sender_id", senderID,
		"text_len", len(text),
	)

	s.bus.Publish(domain.InboundMessage{
		ChatID:     msg.Chat.ID,
		SenderID:   senderID,
		Text:       text,
		ReceivedAt: time.Unix(int64(msg.Date), 0),
	})

	// 200 regardless of what happens downstream so Telegram never
	// redelivers an update we already accepted.
	rw.WriteHeader(http.StatusOK)
}

func (s *WebhookServer) handleHealth(rw http.ResponseWriter, _ *http.Request) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(http.StatusOK)
	fmt.Fprintf(rw, `{"status":"ok","uptime_seconds":%.0f}`, metrics.Collector.Uptime().Seconds())
}
