// internal/database/database.go
package database

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/torxx666/skob26/engine"
)

// DB is the shared connection pool. Nil disables the round archive.
var DB *pgxpool.Pool

// execer is the subset of pgxpool.Pool used for writes.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const schema = `
CREATE TABLE IF NOT EXISTS round_results (
	id           BIGSERIAL PRIMARY KEY,
	game_id      UUID        NOT NULL,
	session_key  TEXT        NOT NULL,
	round        INT         NOT NULL,
	last_capture INT         NOT NULL,
	game_over    BOOLEAN     NOT NULL,
	scores       JSONB       NOT NULL,
	totals       JSONB       NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (game_id, round)
)`

const insertRoundResult = `
INSERT INTO round_results (game_id, session_key, round, last_capture, game_over, scores, totals)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (game_id, round) DO NOTHING`

// ConnectDB opens the pool and creates the schema. An empty url leaves DB nil.
func ConnectDB(ctx context.Context, url string) error {
	if url == "" {
		return nil
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return err
	}
	DB = pool
	return nil
}

// Close releases the shared pool, if any.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

func ensureSchema(ctx context.Context, db execer) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create round_results: %w", err)
	}
	return nil
}

// StoreRoundResult archives a finished round with the cumulative totals after it.
// Rows are never read back into a running game.
func StoreRoundResult(ctx context.Context, gameID uuid.UUID, sessionKey string, res engine.RoundResult, totals map[string]int) error {
	if DB == nil {
		return nil
	}
	return storeRoundResult(ctx, DB, gameID, sessionKey, res, totals)
}

func storeRoundResult(ctx context.Context, db execer, gameID uuid.UUID, sessionKey string, res engine.RoundResult, totals map[string]int) error {
	scores, err := json.Marshal(res.Scores)
	if err != nil {
		return fmt.Errorf("encode round scores: %w", err)
	}
	totalsJSON, err := json.Marshal(totals)
	if err != nil {
		return fmt.Errorf("encode totals: %w", err)
	}
	if _, err := db.Exec(ctx, insertRoundResult,
		gameID, sessionKey, res.Round, res.LastCapture, res.GameOver, scores, totalsJSON,
	); err != nil {
		return fmt.Errorf("insert round %d of game %s: %w", res.Round, gameID, err)
	}
	return nil
}
