// Package config provides centralized configuration management for the pipeline.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Source    SourceConfig
	Secrets   SecretsConfig
	Database  DatabaseConfig
	Warehouse WarehouseConfig
	Pipeline  PipelineConfig
	Logging   LoggingConfig
}

// SourceConfig holds object store settings for the raw extracts.
type SourceConfig struct {
	// Bucket is the landing bucket for raw extracts (default: tweets-test-123)
	Bucket string `env:"SOURCE_BUCKET" envAlt:"S3_BUCKET" default:"tweets-test-123"`

	// Prefix restricts discovery to keys under this prefix (default: none)
	Prefix string `env:"SOURCE_PREFIX"`

	// RowLimit is the maximum number of data rows read per run (default: 5000)
	RowLimit int `env:"SOURCE_ROW_LIMIT" default:"5000"`

	// Region is the AWS region for S3 and Secrets Manager (default: us-east-1)
	Region string `env:"AWS_REGION" envAlt:"AWS_DEFAULT_REGION" default:"us-east-1"`

	// Endpoint overrides the S3 endpoint, e.g. for MinIO or LocalStack
	Endpoint string `env:"S3_ENDPOINT_URL" envAlt:"AWS_ENDPOINT_URL"`

	// ForcePathStyle uses path-style bucket addressing (default: false)
	ForcePathStyle bool `env:"S3_FORCE_PATH_STYLE" default:"false"`

	// AccessKey, SecretKey and SessionToken are optional static credentials.
	// When unset the default AWS credential chain is used.
	AccessKey    string `env:"S3_ACCESS_KEY_ID"`
	SecretKey    string `env:"S3_SECRET_ACCESS_KEY"`
	SessionToken string `env:"S3_SESSION_TOKEN"`

	// DNSCacheRefresh is how often cached DNS entries are refreshed.
	// Negative disables the cache (default: 5m)
	DNSCacheRefresh time.Duration `env:"S3_DNS_CACHE_REFRESH" default:"5m"`
}

// SecretsConfig selects where the warehouse credential bundle comes from.
type SecretsConfig struct {
	// Provider is one of: env, file, aws (default: env)
	Provider string `env:"SECRETS_PROVIDER" default:"env"`

	// SecretID is the Secrets Manager secret name or ARN (provider aws)
	SecretID string `env:"SECRETS_ID" envAlt:"SECRET_NAME"`

	// File is the path of a YAML or JSON credential bundle (provider file)
	File string `env:"SECRETS_FILE"`
}

// DatabaseConfig holds warehouse credentials for the env secrets provider.
type DatabaseConfig struct {
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT" default:"5439"`
	Name     string `env:"DB_NAME" envAlt:"DB_DATABASE"`
	User     string `env:"DB_USER" envAlt:"DB_USERNAME"`
	Password string `env:"DB_PASSWORD"`

	// SSLMode is passed through to the driver (default: prefer)
	SSLMode string `env:"DB_SSLMODE" default:"prefer"`

	// ConnectTimeout bounds opening the warehouse session (default: 30s)
	ConnectTimeout time.Duration `env:"DB_CONNECT_TIMEOUT" default:"30s"`
}

// WarehouseConfig describes the destination table.
type WarehouseConfig struct {
	// Table is the schema-qualified destination table (default: public.tweets_process)
	Table string `env:"WAREHOUSE_TABLE" default:"public.tweets_process"`

	// Dialect is one of: redshift, postgres (default: redshift)
	Dialect string `env:"WAREHOUSE_DIALECT" default:"redshift"`
}

// PipelineConfig holds transform and diagnostic settings.
type PipelineConfig struct {
	// TargetLanguage is the ISO 639-1 code rows are filtered to (default: en)
	TargetLanguage string `env:"TARGET_LANGUAGE" default:"en"`

	// LanguageCandidates is the comma-separated set of ISO 639-1 codes the
	// detector chooses between. The target language is always included
	// (default: en,es,fr,pt,de,it)
	LanguageCandidates string `env:"LANGUAGE_CANDIDATES" default:"en,es,fr,pt,de,it"`

	// MinConfidence discards detections below this confidence, 0-1 (default: 0)
	MinConfidence float64 `env:"LANGUAGE_MIN_CONFIDENCE" default:"0"`

	// ProbeEnabled runs the TCP reachability check before loading (default: true)
	ProbeEnabled bool `env:"PROBE_ENABLED" default:"true"`

	// ProbeTimeout bounds the reachability check (default: 10s)
	ProbeTimeout time.Duration `env:"PROBE_TIMEOUT" default:"10s"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Candidates returns the detector candidate codes, lowercased and
// deduplicated, with the target language first.
func (p PipelineConfig) Candidates() []string {
	seen := make(map[string]bool)
	var codes []string
	for _, c := range append([]string{p.TargetLanguage}, strings.Split(p.LanguageCandidates, ",")...) {
		c = strings.ToLower(strings.TrimSpace(c))
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		codes = append(codes, c)
	}
	return codes
}
