package composer

import "time"

// Config holds the composer settings.
type Config struct {
	// HistoryLimit caps undo steps per session. Zero keeps every step.
	HistoryLimit int           `env:"COMPOSER_HISTORY_LIMIT" envDefault:"0"`
	DocumentsDir string        `env:"COMPOSER_DOCUMENTS_DIR" envDefault:"documents"`
	SessionTTL   time.Duration `env:"COMPOSER_SESSION_TTL" envDefault:"24h"`
	SweepEvery   time.Duration `env:"COMPOSER_SWEEP_INTERVAL" envDefault:"10m"`
	EventBuffer  int           `env:"COMPOSER_EVENT_BUFFER" envDefault:"16"`
}

func (c Config) withDefaults() Config {
	if c.DocumentsDir == "" {
		c.DocumentsDir = "documents"
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 16
	}
	return c
}
