package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel:              "info",
			MaxConcurrentMessages: 5,
			RequestTimeoutSeconds: 30,
		},
		Telegram: TelegramConfig{
			Token: "${TELEGRAM_API_TOKEN}",
		},
		OpenAI: OpenAIConfig{
			APIKey:      "${OPENAI_API_KEY}",
			APIBase:     "https://api.openai.com/v1",
			Model:       "gpt-4o-mini",
			MaxTokens:   200,
			Temperature: 0.2,
		},
		Search: SearchConfig{
			APIKey:          "${GOOGLE_CUSTOM_SEARCH_API_KEY}",
			CX:              "${GOOGLE_CUSTOM_SEARCH_CX}",
			APIBase:         "https://www.googleapis.com/customsearch/v1",
			RatePerMinute:   60,
			CacheTTLMinutes: 60,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			WebhookPath: "/webhook",
		},
		Metrics: MetricsConfig{
			Enabled:  false,
			Endpoint: "/metrics",
		},
	}
}
