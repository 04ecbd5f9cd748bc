package warehouse

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/tweetpipe/internal/core"
	"github.com/JonMunkholm/tweetpipe/internal/schema"
	"github.com/JonMunkholm/tweetpipe/internal/secrets"
)

// Conn is an open warehouse session. *pgx.Conn satisfies it.
type Conn interface {
	TxBeginner
	Close(ctx context.Context) error
}

var _ Conn = (*pgx.Conn)(nil)

// Connector opens warehouse sessions from a credential bundle.
type Connector interface {
	Connect(ctx context.Context, creds secrets.Credentials) (Conn, error)
}

// PgxConnector connects with pgx. The redshift dialect uses the simple
// query protocol.
type PgxConnector struct {
	SSLMode        string
	Dialect        schema.Dialect
	ConnectTimeout time.Duration
}

// ConnConfig builds the pgx configuration for creds.
func (c PgxConnector) ConnConfig(creds secrets.Credentials) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(DSN(creds, c.SSLMode))
	if err != nil {
		return nil, fmt.Errorf("%w: parse connection config: %w", core.ErrConfig, err)
	}
	if c.ConnectTimeout > 0 {
		cfg.ConnectTimeout = c.ConnectTimeout
	}
	if c.Dialect == schema.Redshift {
		cfg.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol
	}
	return cfg, nil
}

// Connect implements Connector.
func (c PgxConnector) Connect(ctx context.Context, creds secrets.Credentials) (Conn, error) {
	cfg, err := c.ConnConfig(creds)
	if err != nil {
		return nil, err
	}
	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: connect %s: %w", core.ErrPersistence, creds.Addr(), err)
	}
	return conn, nil
}

// DSN renders creds as a postgres:// URL with escaped user info.
func DSN(creds secrets.Credentials, sslMode string) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(creds.Username, creds.Password),
		Host:   net.JoinHostPort(creds.Host, fmt.Sprint(creds.Port)),
		Path:   "/" + creds.DBName,
	}
	if sslMode != "" {
		u.RawQuery = url.Values{"sslmode": {sslMode}}.Encode()
	}
	return u.String()
}
