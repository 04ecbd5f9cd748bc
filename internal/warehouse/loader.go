// Package warehouse provisions the destination table and loads transformed
// rows into it over pgx.
package warehouse

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/JonMunkholm/tweetpipe/internal/core"
	"github.com/JonMunkholm/tweetpipe/internal/logging"
	"github.com/JonMunkholm/tweetpipe/internal/schema"
)

// TxBeginner starts transactions. *pgx.Conn satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Loader inserts a batch of rows in a single transaction.
type Loader struct {
	db        TxBeginner
	table     pgx.Identifier
	insertSQL string
}

// NewLoader creates a loader writing to table.
func NewLoader(db TxBeginner, table pgx.Identifier) *Loader {
	return &Loader{
		db:        db,
		table:     table,
		insertSQL: schema.InsertSQL(table),
	}
}

// Load inserts rows and commits once. An empty batch touches nothing and
// returns 0. On any failure the whole batch is rolled back, 0 is returned
// and the error wraps core.ErrPersistence.
func (l *Loader) Load(ctx context.Context, rows []core.CleanRecord) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	start := time.Now()

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin transaction: %w", core.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	for _, rec := range rows {
		if _, err := tx.Exec(ctx, l.insertSQL, NewRow(rec).Values()...); err != nil {
			return 0, fmt.Errorf("%w: insert tweet_id %d (line %d): %w", core.ErrPersistence, rec.TweetID, rec.Line, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %w", core.ErrPersistence, err)
	}

	logging.FromContext(ctx).Info("batch loaded",
		"table", l.table.Sanitize(),
		"rows", len(rows),
		"duration", time.Since(start),
	)
	return len(rows), nil
}
