// Package pipeline sequences one extract-transform-load run and the
// provisioning run that recreates the destination table.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/tweetpipe/internal/config"
	"github.com/JonMunkholm/tweetpipe/internal/core"
	"github.com/JonMunkholm/tweetpipe/internal/logging"
	"github.com/JonMunkholm/tweetpipe/internal/schema"
	"github.com/JonMunkholm/tweetpipe/internal/secrets"
	"github.com/JonMunkholm/tweetpipe/internal/warehouse"
)

// Result summarises a completed run.
type Result struct {
	ObjectKey  string
	RowsRead   int
	RowsKept   int
	RowsLoaded int
	Stats      core.TransformStats
	Duration   time.Duration
}

// Orchestrator owns every collaborator of a run. It holds no connection
// between runs.
type Orchestrator struct {
	bucket         string
	rowLimit       int
	targetLanguage string
	table          pgx.Identifier
	dialect        schema.Dialect

	credentials secrets.Provider
	extractor   *core.Extractor
	transformer *core.Transformer
	connector   warehouse.Connector
	probe       warehouse.ProbeFunc
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithProbe replaces the reachability check. A nil probe disables it.
func WithProbe(probe warehouse.ProbeFunc) Option {
	return func(o *Orchestrator) {
		o.probe = probe
	}
}

// New wires an Orchestrator from cfg and explicit collaborators.
func New(
	cfg *config.Config,
	credentials secrets.Provider,
	store core.ObjectStore,
	detector core.LanguageDetector,
	connector warehouse.Connector,
	opts ...Option,
) (*Orchestrator, error) {
	table, err := schema.ParseTable(cfg.Warehouse.Table)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, err)
	}
	dialect, err := schema.ParseDialect(cfg.Warehouse.Dialect)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrConfig, err)
	}

	o := &Orchestrator{
		bucket:         cfg.Source.Bucket,
		rowLimit:       cfg.Source.RowLimit,
		targetLanguage: cfg.Pipeline.TargetLanguage,
		table:          table,
		dialect:        dialect,
		credentials:    credentials,
		extractor:      core.NewExtractor(store),
		transformer:    core.NewTransformer(detector),
		connector:      connector,
	}
	if cfg.Pipeline.ProbeEnabled {
		o.probe = warehouse.NewProbe(cfg.Pipeline.ProbeTimeout)
	}

	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// Run executes one load: credentials, discovery, read, transform, probe,
// then a single-transaction load. The warehouse connection is closed on
// every path once opened.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	log := logging.WithFields(ctx, "table", o.table.Sanitize())
	var res Result

	creds, err := o.credentials.Credentials(ctx)
	if err != nil {
		return res, fmt.Errorf("credentials: %w", err)
	}

	key, err := o.extractor.DiscoverLatestObject(ctx, o.bucket)
	if err != nil {
		return res, fmt.Errorf("discover: %w", err)
	}
	res.ObjectKey = key
	log.Info("source object selected", "bucket", o.bucket, "key", key)

	raw, err := o.extractor.ReadTable(ctx, o.bucket, key, o.rowLimit)
	if err != nil {
		return res, fmt.Errorf("extract: %w", err)
	}
	res.RowsRead = len(raw)

	clean, stats := o.transformer.FilterAndTransform(raw, o.targetLanguage)
	res.Stats = stats
	res.RowsKept = len(clean)
	log.Info("rows transformed",
		"target_language", o.targetLanguage,
		"read", stats.Total,
		"kept", stats.Kept,
		"other_language", stats.OtherLanguage,
		"undetected", stats.Undetected,
		"null_created_at", stats.NullTimestamps,
	)

	o.runProbe(ctx, creds.Addr())

	conn, err := o.connector.Connect(ctx, creds)
	if err != nil {
		return res, fmt.Errorf("connect: %w", err)
	}
	defer o.closeConn(ctx, conn)

	loaded, err := warehouse.NewLoader(conn, o.table).Load(ctx, clean)
	if err != nil {
		return res, fmt.Errorf("load: %w", err)
	}
	res.RowsLoaded = loaded
	res.Duration = time.Since(start)

	log.Info("run complete",
		"key", res.ObjectKey,
		"rows_read", res.RowsRead,
		"rows_loaded", res.RowsLoaded,
		"duration", res.Duration,
	)
	return res, nil
}

// Provision recreates the destination table. All existing rows are lost.
func (o *Orchestrator) Provision(ctx context.Context) error {
	creds, err := o.credentials.Credentials(ctx)
	if err != nil {
		return fmt.Errorf("credentials: %w", err)
	}

	o.runProbe(ctx, creds.Addr())

	conn, err := o.connector.Connect(ctx, creds)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer o.closeConn(ctx, conn)

	if err := warehouse.NewSchemaManager(conn, o.table, o.dialect).EnsureSchema(ctx); err != nil {
		return fmt.Errorf("provision: %w", err)
	}
	return nil
}

// runProbe logs the outcome of the reachability check. It never fails the
// run.
func (o *Orchestrator) runProbe(ctx context.Context, addr string) {
	if o.probe == nil {
		return
	}
	log := logging.FromContext(ctx)
	if err := o.probe(ctx, addr); err != nil {
		log.Warn("warehouse unreachable", "addr", addr, "error", err)
		return
	}
	log.Info("warehouse reachable", "addr", addr)
}

func (o *Orchestrator) closeConn(ctx context.Context, conn warehouse.Conn) {
	// The run context may already be cancelled; closing must still happen.
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := conn.Close(closeCtx); err != nil {
		logging.FromContext(ctx).Warn("close warehouse connection", "error", err)
	}
}
