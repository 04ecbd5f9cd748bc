package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads configuration from environment variables.
// It applies defaults for unset values and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	if err := populate(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// populate walks the struct and fills every tagged field from the environment.
func populate(v reflect.Value) error {
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		target := v.Field(i)

		if !target.CanSet() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := populate(target); err != nil {
				return err
			}
			continue
		}

		name := field.Tag.Get("env")
		if name == "" {
			continue
		}

		value, ok := lookup(name, field.Tag.Get("envAlt"))
		if !ok {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", name)
			}
			value = field.Tag.Get("default")
		}
		if value == "" {
			continue
		}

		if err := assign(target, value); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", name, value, err)
		}
	}

	return nil
}

// lookup returns the first non-empty value of the primary or alternate variable.
func lookup(name, alt string) (string, bool) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v, true
	}
	if alt != "" {
		if v := strings.TrimSpace(os.Getenv(alt)); v != "" {
			return v, true
		}
	}
	return "", false
}

// assign parses value into the field according to its kind.
func assign(field reflect.Value, value string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)

	case reflect.Int, reflect.Int64:
		if field.Type() == durationType {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid duration: %w", err)
			}
			field.SetInt(int64(d))
			return nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		field.SetInt(n)

	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number: %w", err)
		}
		field.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		field.SetBool(b)

	default:
		return fmt.Errorf("unsupported field type: %s", field.Kind())
	}

	return nil
}

// Validate checks that the configuration is valid.
// Returns an error describing all validation failures.
func (c *Config) Validate() error {
	var errs []string

	// Source
	if c.Source.Bucket == "" {
		errs = append(errs, "SOURCE_BUCKET is required")
	}
	if c.Source.RowLimit <= 0 {
		errs = append(errs, fmt.Sprintf("SOURCE_ROW_LIMIT (%d) must be positive", c.Source.RowLimit))
	}
	if (c.Source.AccessKey == "") != (c.Source.SecretKey == "") {
		errs = append(errs, "S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY must be set together")
	}

	// Secrets
	switch strings.ToLower(c.Secrets.Provider) {
	case "env":
	case "file":
		if c.Secrets.File == "" {
			errs = append(errs, "SECRETS_FILE is required when SECRETS_PROVIDER=file")
		}
	case "aws":
		if c.Secrets.SecretID == "" {
			errs = append(errs, "SECRETS_ID is required when SECRETS_PROVIDER=aws")
		}
	default:
		errs = append(errs, fmt.Sprintf("SECRETS_PROVIDER (%q) must be one of: env, file, aws", c.Secrets.Provider))
	}

	// Database
	if c.Database.Port < 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("DB_PORT (%d) must be 1-65535", c.Database.Port))
	}
	if c.Database.ConnectTimeout < 0 {
		errs = append(errs, "DB_CONNECT_TIMEOUT must not be negative")
	}

	// Warehouse
	if strings.TrimSpace(c.Warehouse.Table) == "" {
		errs = append(errs, "WAREHOUSE_TABLE is required")
	}
	validDialects := map[string]bool{"redshift": true, "postgres": true}
	if !validDialects[strings.ToLower(c.Warehouse.Dialect)] {
		errs = append(errs, fmt.Sprintf("WAREHOUSE_DIALECT (%q) must be one of: redshift, postgres", c.Warehouse.Dialect))
	}

	// Pipeline
	if len(c.Pipeline.TargetLanguage) != 2 {
		errs = append(errs, fmt.Sprintf("TARGET_LANGUAGE (%q) must be a two-letter code", c.Pipeline.TargetLanguage))
	}
	for _, code := range c.Pipeline.Candidates() {
		if len(code) != 2 {
			errs = append(errs, fmt.Sprintf("LANGUAGE_CANDIDATES entry %q must be a two-letter code", code))
		}
	}
	if c.Pipeline.MinConfidence < 0 || c.Pipeline.MinConfidence > 1 {
		errs = append(errs, fmt.Sprintf("LANGUAGE_MIN_CONFIDENCE (%v) must be between 0 and 1", c.Pipeline.MinConfidence))
	}
	if c.Pipeline.ProbeEnabled && c.Pipeline.ProbeTimeout <= 0 {
		errs = append(errs, "PROBE_TIMEOUT must be positive when PROBE_ENABLED is true")
	}

	// Logging
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, fmt.Sprintf("LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// String returns a safe string representation of the config for logging.
// Passwords and access keys are masked.
func (c *Config) String() string {
	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Source: {Bucket: %q, Prefix: %q, RowLimit: %d, Region: %q, Endpoint: %q, AccessKey: %s}, ",
		c.Source.Bucket, c.Source.Prefix, c.Source.RowLimit, c.Source.Region, c.Source.Endpoint, mask(c.Source.AccessKey))
	fmt.Fprintf(&b, "Secrets: {Provider: %q, SecretID: %q, File: %q}, ",
		c.Secrets.Provider, c.Secrets.SecretID, c.Secrets.File)
	fmt.Fprintf(&b, "Database: {Host: %q, Port: %d, Name: %q, User: %q, Password: %s}, ",
		c.Database.Host, c.Database.Port, c.Database.Name, c.Database.User, mask(c.Database.Password))
	fmt.Fprintf(&b, "Warehouse: {Table: %q, Dialect: %q}, ", c.Warehouse.Table, c.Warehouse.Dialect)
	fmt.Fprintf(&b, "Pipeline: {TargetLanguage: %q, LanguageCandidates: %q, ProbeEnabled: %v, ProbeTimeout: %s}, ",
		c.Pipeline.TargetLanguage, c.Pipeline.LanguageCandidates, c.Pipeline.ProbeEnabled, c.Pipeline.ProbeTimeout)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}

func mask(s string) string {
	if s == "" {
		return "[UNSET]"
	}
	return "[MASKED]"
}
