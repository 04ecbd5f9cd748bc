package warehouse

import (
	"context"
	"fmt"
	"net"
	"time"
)

// DefaultProbeTimeout bounds a reachability check.
const DefaultProbeTimeout = 10 * time.Second

// ProbeFunc checks that addr accepts TCP connections.
type ProbeFunc func(ctx context.Context, addr string) error

// NewProbe returns a ProbeFunc that dials addr once within timeout and
// closes the connection immediately. It sends no data.
func NewProbe(timeout time.Duration) ProbeFunc {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return func(ctx context.Context, addr string) error {
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var d net.Dialer
		conn, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return fmt.Errorf("probe %s: %w", addr, err)
		}
		return conn.Close()
	}
}
