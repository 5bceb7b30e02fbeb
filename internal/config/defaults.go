package config

import "time"

// Default values for optional configuration parameters.
const (
	DefaultServerAddr            = ":8080"
	DefaultServerReadTimeout     = 15 * time.Second
	DefaultServerWriteTimeout    = 60 * time.Second
	DefaultServerShutdownTimeout = 30 * time.Second

	DefaultLogLevel = "info"
	DefaultLogJSON  = true

	DefaultDBPath = "skinside.db"

	DefaultGeminiModel       = "gemini-2.5-flash"
	DefaultGeminiTemperature = float32(0.2)
	DefaultGeminiTimeout     = 30 * time.Second

	// DefaultMinScore is the minimum match score for inclusion in final
	// results, enforced by the threshold filter and stated in the prompt.
	DefaultMinScore = 65

	DefaultMaintenanceSchedule = "0 0 3 * * *"
)
