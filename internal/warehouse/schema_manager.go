package warehouse

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/tweetpipe/internal/core"
	"github.com/JonMunkholm/tweetpipe/internal/logging"
	"github.com/JonMunkholm/tweetpipe/internal/schema"
)

// SchemaManager provisions the destination table.
type SchemaManager struct {
	db      TxBeginner
	table   pgx.Identifier
	dialect schema.Dialect
}

// NewSchemaManager creates a manager for table.
func NewSchemaManager(db TxBeginner, table pgx.Identifier, dialect schema.Dialect) *SchemaManager {
	return &SchemaManager{db: db, table: table, dialect: dialect}
}

// EnsureSchema drops the table if it exists and creates it empty with the
// fixed column layout. Existing data is lost. Both statements run in one
// transaction.
func (m *SchemaManager) EnsureSchema(ctx context.Context) error {
	tx, err := m.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin transaction: %w", core.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schema.DropTableSQL(m.table)); err != nil {
		return fmt.Errorf("%w: drop %s: %w", core.ErrPersistence, m.table.Sanitize(), err)
	}
	if _, err := tx.Exec(ctx, schema.CreateTableSQL(m.table, m.dialect)); err != nil {
		return fmt.Errorf("%w: create %s: %w", core.ErrPersistence, m.table.Sanitize(), err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %w", core.ErrPersistence, err)
	}

	logging.FromContext(ctx).Info("table recreated",
		"table", m.table.Sanitize(),
		"dialect", m.dialect,
		"columns", len(schema.TweetColumns),
	)
	return nil
}
