package records

import "log/slog"

// config holds settings shared by the legacy reader and Store.
type config struct {
	logger      *slog.Logger
	corrections Corrections
}

// Option configures legacy loading and Store.
type Option func(*config)

// WithLogger sets the logger that receives skipped-line and duplicate
// diagnostics. If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithCorrections replaces the legacy correction table.
// The default is LegacyCorrectionsV1.
func WithCorrections(c Corrections) Option {
	return func(cfg *config) {
		cfg.corrections = c
	}
}

func newConfig(opts []Option) config {
	cfg := config{corrections: LegacyCorrectionsV1()}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return cfg
}
