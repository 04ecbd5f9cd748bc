package pipeline

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/tweetpipe/internal/awsconn"
	"github.com/JonMunkholm/tweetpipe/internal/config"
	"github.com/JonMunkholm/tweetpipe/internal/core"
	"github.com/JonMunkholm/tweetpipe/internal/objectstore"
	"github.com/JonMunkholm/tweetpipe/internal/schema"
	"github.com/JonMunkholm/tweetpipe/internal/secrets"
	"github.com/JonMunkholm/tweetpipe/internal/warehouse"
)

// NewFromConfig builds an Orchestrator backed by S3, the configured secrets
// provider, whatlanggo and pgx. The context bounds background work such as
// DNS cache refresh.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Orchestrator, error) {
	awsCfg, err := awsconn.Load(ctx, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: aws config: %w", core.ErrConfig, err)
	}

	creds, err := secrets.New(cfg, awsCfg)
	if err != nil {
		return nil, err
	}

	dialect, err := schema.ParseDialect(cfg.Warehouse.Dialect)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, err)
	}

	connector := warehouse.PgxConnector{
		SSLMode:        cfg.Database.SSLMode,
		Dialect:        dialect,
		ConnectTimeout: cfg.Database.ConnectTimeout,
	}

	return New(
		cfg,
		creds,
		objectstore.NewS3Store(awsCfg, cfg.Source),
		core.NewWhatlangDetector(cfg.Pipeline.MinConfidence, cfg.Pipeline.Candidates()...),
		connector,
	)
}
