package config

import "time"

// Settings is the service configuration, read from WTG_* environment
// variables. Nested groups add their name to the prefix, so Engine.QueueDepth
// is WTG_ENGINE_QUEUE_DEPTH.
type Settings struct {
	Server    ServerConf
	Facts     FactsConf
	Engine    EngineConf
	Build     BuildConf
	RateLimit RateLimitConf
	Log       LogConf
}

// ServerConf holds HTTP server settings.
type ServerConf struct {
	Addr            string        `envconfig:"ADDR" default:":8080" validate:"required"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `envconfig:"WRITE_TIMEOUT" default:"30s" validate:"gt=0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"15s" validate:"gt=0"`
}

// FactsConf lists the fact files to load. Entries may be glob patterns.
type FactsConf struct {
	Files []string `envconfig:"FILES" default:"facts/*.yaml"`
	Watch bool     `envconfig:"WATCH" default:"true"`
}

// EngineConf holds tunable concurrency and query limits.
type EngineConf struct {
	QueryWorkers     int           `envconfig:"QUERY_WORKERS" default:"4" validate:"min=1"`
	QueueDepth       int           `envconfig:"QUEUE_DEPTH" default:"64" validate:"min=1"`
	QueryTimeout     time.Duration `envconfig:"QUERY_TIMEOUT" default:"5s" validate:"gt=0"`
	MaxDepth         int           `envconfig:"MAX_DEPTH" default:"8" validate:"min=1,max=64"`
	MaxPaths         int           `envconfig:"MAX_PATHS" default:"10000" validate:"min=0"`
	BuildParallelism int           `envconfig:"BUILD_PARALLELISM" default:"4" validate:"min=1"`
}

// BuildConf tunes graph construction.
type BuildConf struct {
	HardwareEvents bool `envconfig:"HARDWARE_EVENTS" default:"true"`
	SuccessorDepth int  `envconfig:"SUCCESSOR_DEPTH" default:"4" validate:"min=1"`
	Diagnostics    bool `envconfig:"DIAGNOSTICS" default:"true"`
}

// RateLimitConf limits query requests per client address.
type RateLimitConf struct {
	Enabled bool    `envconfig:"ENABLED" default:"true"`
	RPS     float64 `envconfig:"RPS" default:"50" validate:"gt=0"`
	Burst   int     `envconfig:"BURST" default:"100" validate:"min=1"`
}

// LogConf selects the slog handler.
type LogConf struct {
	Level  string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `envconfig:"FORMAT" default:"text" validate:"oneof=text json"`
}
