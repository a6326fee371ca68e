package config

import "github.com/klauspost/compress/flate"

const (
	defaultImageRoot        = "~/portraits"
	defaultLogLevel         = "info"
	defaultLogFormat        = "auto"
	defaultAvailabilityTTL  = 60
	defaultCompressionLevel = flate.DefaultCompression
	defaultMaxEntries       = 4096
	defaultVerifyWorkers    = 4
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		ImageRoot: defaultImageRoot,
		Logging: Logging{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
		},
		Availability: Availability{
			Enabled:    true,
			TTLSeconds: defaultAvailabilityTTL,
		},
		Archive: Archive{
			CompressionLevel: defaultCompressionLevel,
			MaxEntries:       defaultMaxEntries,
			VerifyWorkers:    defaultVerifyWorkers,
		},
	}
}
