package channel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	telegramMaxMsgLen     = 4000
	telegramMaxCaptionLen = 1024
	telegramMaxRetries    = 3
)

// Telegram delivers recommendations through the Bot API. It implements
// domain.Messenger.
type Telegram struct {
	bot       *tgbotapi.BotAPI
	parseMode string
	logger    *slog.Logger
}

type TelegramConfig struct {
	Token     string
	ParseMode string
	Logger    *slog.Logger
}

// NewTelegram connects to the Bot API and verifies the token.
func NewTelegram(cfg TelegramConfig) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	cfg.Logger.Info("telegram bot connected",
		"username", bot.Self.UserName,
		"id", bot.Self.ID,
	)
	return &Telegram{
		bot:       bot,
		parseMode: cfg.ParseMode,
		logger:    cfg.Logger,
	}, nil
}

// SendText sends a plain message, chunking at the Telegram length limit.
func (t *Telegram) SendText(ctx context.Context, chatID int64, text string) error {
	for _, chunk := range splitMessage(text) {
		if err := t.sendWithRetry(ctx, func(plain bool) tgbotapi.Chattable {
			msg := tgbotapi.NewMessage(chatID, chunk)
			if !plain {
				msg.ParseMode = t.parseMode
			}
			return msg
		}); err != nil {
			return err
		}
	}
	return nil
}

// splitMessage breaks text into chunks within the Telegram message
// limit, preferring to cut at a newline. Limits are in characters, so
// cuts always land on rune boundaries.
func splitMessage(text string) []string {
	var chunks []string
	for len(text) > 0 {
		chunk := text
		if utf8.RuneCountInString(chunk) > telegramMaxMsgLen {
			head := string([]rune(chunk)[:telegramMaxMsgLen])
			cutAt := strings.LastIndex(head, "\n")
			if cutAt < len(head)/2 {
				cutAt = len(head)
			}
			chunk = text[:cutAt]
			text = text[cutAt:]
		} else {
			text = ""
		}
		chunks = append(chunks, chunk)
	}
	return chunks
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// SendPhoto sends an image by URL with a caption. Telegram fetches the
// URL itself; a caption over the limit is truncated, not rejected.
func (t *Telegram) SendPhoto(ctx context.Context, chatID int64, photoURL, caption string) error {
	caption = truncateRunes(caption, telegramMaxCaptionLen)
	return t.sendWithRetry(ctx, func(plain bool) tgbotapi.Chattable {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
		photo.Caption = caption
		if !plain {
			photo.ParseMode = t.parseMode
		}
		return photo
	})
}

// sendWithRetry handles Telegram's failure modes: 429 backs off, a parse
// error retries once without parse mode, other errors back off linearly.
func (t *Telegram) sendWithRetry(ctx context.Context, build func(plain bool) tgbotapi.Chattable) error {
	var lastErr error

	for attempt := 0; attempt <= telegramMaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		_, err := t.bot.Send(build(attempt > 0))
		if err == nil {
			return nil
		}
		lastErr = err
		errStr := err.Error()

		if strings.Contains(errStr, "Too Many Requests") || strings.Contains(errStr, "429") {
			retryAfter := time.Duration(attempt+1) * 3 * time.Second
			t.logger.Warn("telegram rate limited, backing off",
				"retry_after", retryAfter, "attempt", attempt+1,
			)
			if err := sleepCtx(ctx, retryAfter); err != nil {
				return err
			}
			continue
		}

		if attempt == 0 && t.parseMode != "" && strings.Contains(errStr, "can't parse entities") {
			t.logger.Warn("telegram parse error, retrying as plain text",
				"err", err, "parse_mode", t.parseMode,
			)
			continue
		}

		if attempt < telegramMaxRetries {
			backoff := time.Duration(attempt+1) * time.Second
			t.logger.Warn("telegram send error, retrying", "err", err, "backoff", backoff)
			if err := sleepCtx(ctx, backoff); err != nil {
				return err
			}
			continue
		}
	}

	return fmt.Errorf("telegram send failed after %d attempts: %w", telegramMaxRetries+1, lastErr)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
