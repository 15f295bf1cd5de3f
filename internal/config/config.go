// Package config provides centralized configuration for the service.
// Settings load from environment variables with defaults and are
// validated on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Ingest   IngestConfig
	Pipeline PipelineConfig
	Rate     RateLimitConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout per request (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of pooled connections (default: 20)
	MaxConns int `env:"DB_MAX_CONNS" default:"20"`

	// MinConns is the minimum number of open connections (default: 4)
	MinConns int `env:"DB_MIN_CONNS" default:"4"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the idle time before a connection closes (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// IngestConfig holds ingest request settings.
type IngestConfig struct {
	// MaxBodySize is the maximum allowed request body in bytes (default: 100MB)
	MaxBodySize int64 `env:"INGEST_MAX_BODY_SIZE" default:"104857600"`

	// MaxConcurrent is the maximum number of parallel ingests (default: 5)
	MaxConcurrent int `env:"INGEST_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long to wait for an ingest slot (default: 30s)
	MaxWaitTime time.Duration `env:"INGEST_MAX_WAIT_TIME" default:"30s"`

	// Timeout is the maximum duration for one ingest (default: 10m)
	Timeout time.Duration `env:"INGEST_TIMEOUT" default:"10m"`
}

// PipelineConfig holds streaming pipeline settings.
type PipelineConfig struct {
	// Encoding is the assumed source text encoding (default: utf-8)
	Encoding string `env:"PIPELINE_ENCODING" default:"utf-8"`

	// MaxBufferSize is bytes of pending text before a forced flush (default: 1MiB)
	MaxBufferSize int `env:"PIPELINE_MAX_BUFFER_SIZE" default:"1048576"`

	// FlushLineCount is the auto-flush threshold, 0 = unbounded (default: 0)
	FlushLineCount int `env:"PIPELINE_FLUSH_LINE_COUNT" default:"0"`

	// MaxLineCount caps emitted lines, 0 = unbounded (default: 0)
	MaxLineCount int `env:"PIPELINE_MAX_LINE_COUNT" default:"0"`

	// BatchSize is rows per batch handed to the sink (default: 1000)
	BatchSize int `env:"PIPELINE_BATCH_SIZE" default:"1000"`

	// SheetName is the default sheet bucket for a read (default: Sheet1)
	SheetName string `env:"PIPELINE_SHEET_NAME" default:"Sheet1"`
}

// RateLimitConfig holds per-IP rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the per-IP limit (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + strconv.Itoa(c.Port)
	}
	return c.Host + ":" + strconv.Itoa(c.Port)
}
