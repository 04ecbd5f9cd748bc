// Package secrets retrieves the warehouse credential bundle.
//
// A bundle carries host, port, dbname, username and password. It can come
// from environment variables, a YAML or JSON file, or an AWS Secrets Manager
// secret; every failure wraps core.ErrConfig.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/tweetpipe/internal/core"
)

// Credentials is the warehouse credential bundle.
type Credentials struct {
	Host     string
	Port     int
	DBName   string
	Username string
	Password string
}

// Provider returns the current credential bundle.
type Provider interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (Credentials, error)

// Credentials implements Provider.
func (f ProviderFunc) Credentials(ctx context.Context) (Credentials, error) {
	return f(ctx)
}

// Validate reports every missing or invalid field.
func (c Credentials) Validate() error {
	var errs []error
	if c.Host == "" {
		errs = append(errs, errors.New("host is required"))
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.DBName == "" {
		errs = append(errs, errors.New("dbname is required"))
	}
	if c.Username == "" {
		errs = append(errs, errors.New("username is required"))
	}
	if c.Password == "" {
		errs = append(errs, errors.New("password is required"))
	}
	return errors.Join(errs...)
}

// Addr returns host:port.
func (c Credentials) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String masks the password.
func (c Credentials) String() string {
	return fmt.Sprintf("%s@%s/%s", c.Username, c.Addr(), c.DBName)
}

// bundle is the on-disk / secret-string layout.
type bundle struct {
	Host         string `yaml:"host"`
	Port         port   `yaml:"port"`
	DBName       string `yaml:"dbname"`
	DatabaseName string `yaml:"database name"`
	Database     string `yaml:"database"`
	Username     string `yaml:"username"`
	User         string `yaml:"user"`
	Password     string `yaml:"password"`
}

// port accepts a YAML/JSON number or a numeric string.
type port int

func (p *port) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("port: expected a scalar, got %v", node.Tag)
	}
	v := strings.TrimSpace(node.Value)
	if v == "" {
		*p = 0
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("port: invalid number %q", node.Value)
	}
	*p = port(n)
	return nil
}

// Decode parses a YAML or JSON credential bundle and validates it.
// "database name" and "database" are accepted for dbname, "user" for
// username.
func Decode(data []byte) (Credentials, error) {
	text := strings.TrimSpace(string(data))
	if text == "" {
		return Credentials{}, fmt.Errorf("%w: empty credential bundle", core.ErrConfig)
	}
	// JSON allows tab indentation, YAML does not. Tabs cannot occur
	// unescaped inside JSON strings, so replacing them is safe.
	if strings.HasPrefix(text, "{") {
		text = strings.ReplaceAll(text, "\t", " ")
	}

	var b bundle
	if err := yaml.Unmarshal([]byte(text), &b); err != nil {
		return Credentials{}, fmt.Errorf("%w: decode credential bundle: %w", core.ErrConfig, err)
	}

	creds := Credentials{
		Host:     strings.TrimSpace(b.Host),
		Port:     int(b.Port),
		DBName:   firstNonEmpty(b.DBName, b.DatabaseName, b.Database),
		Username: firstNonEmpty(b.Username, b.User),
		Password: b.Password,
	}
	if err := creds.Validate(); err != nil {
		return Credentials{}, fmt.Errorf("%w: credential bundle: %w", core.ErrConfig, err)
	}
	return creds, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
