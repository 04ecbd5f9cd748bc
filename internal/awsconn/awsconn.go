// Package awsconn builds the AWS SDK configuration shared by the object store
// and the Secrets Manager credential provider.
package awsconn

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/rs/dnscache"
	"golang.org/x/sync/semaphore"

	"github.com/JonMunkholm/tweetpipe/internal/config"
)

const (
	// dnsLookupMaxParallel limits concurrent DNS lookups made by the SDK client.
	dnsLookupMaxParallel = 25

	// maxConnsPerHost caps HTTPS connections to a single AWS host.
	maxConnsPerHost = 64
)

// Load returns an aws.Config for cfg. Static credentials are used when both
// keys are set; otherwise the default credential chain applies. Requests are
// never retried.
func Load(ctx context.Context, cfg config.SourceConfig) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithHTTPClient(NewHTTPClient(ctx, cfg.DNSCacheRefresh)),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}

	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		provider := credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, cfg.SessionToken)
		opts = append(opts, awsconfig.WithCredentialsProvider(provider))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("load AWS config: %w", err)
	}
	return awsCfg, nil
}

// NewHTTPClient returns the SDK's buildable client with a caching DNS
// resolver. Cached entries are refreshed every refresh until ctx is done; a
// negative refresh disables the cache and keeps the SDK's default dialer.
func NewHTTPClient(ctx context.Context, refresh time.Duration) aws.HTTPClient {
	client := awshttp.NewBuildableClient().WithTransportOptions(func(tr *http.Transport) {
		tr.MaxConnsPerHost = maxConnsPerHost
	})

	if refresh < 0 {
		return client
	}

	resolver := &dnscache.Resolver{}
	if refresh > 0 {
		go func() {
			t := time.NewTicker(refresh)
			defer t.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-t.C:
					resolver.Refresh(true)
				}
			}
		}()
	}

	sem := semaphore.NewWeighted(dnsLookupMaxParallel)
	dialer := client.GetDialer()

	return client.WithTransportOptions(func(tr *http.Transport) {
		tr.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, port, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, err
			}

			if err := sem.Acquire(ctx, 1); err != nil {
				return nil, err
			}
			ips, err := resolver.LookupHost(ctx, host)
			sem.Release(1)
			if err != nil {
				return nil, err
			}
			if len(ips) == 0 {
				return nil, fmt.Errorf("no addresses for host %s", host)
			}

			// Try each address in turn; the last error wins.
			var conn net.Conn
			for _, ip := range ips {
				conn, err = dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
				if err == nil {
					return conn, nil
				}
			}
			return nil, err
		}
	})
}
