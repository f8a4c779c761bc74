package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/biomasters/biomasters-server-go/internal/config"
	"github.com/biomasters/biomasters-server-go/internal/game/state"
)

// NewDB opens a connection pool and checks that the database answers.
func NewDB(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if logger != nil {
		logger.Info("database connected",
			zap.Int32("max_conns", poolCfg.MaxConns),
			zap.Int32("min_conns", poolCfg.MinConns),
		)
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS game_states (
	game_id     TEXT PRIMARY KEY,
	phase       TEXT NOT NULL,
	turn_number INTEGER NOT NULL,
	state       JSONB NOT NULL,
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore keeps one JSON snapshot per game.
type PostgresStore struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresStore wraps an open pool.
func NewPostgresStore(pool *pgxpool.Pool, logger *zap.Logger) *PostgresStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresStore{pool: pool, logger: logger}
}

// Migrate creates the snapshot table if it does not exist.
func (p *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate game_states: %w", err)
	}
	return nil
}

// Load reads the latest snapshot of a game.
func (p *PostgresStore) Load(ctx context.Context, gameID string) (*state.GameState, error) {
	var data []byte
	err := p.pool.QueryRow(ctx, `SELECT state FROM game_states WHERE game_id = $1`, gameID).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("load %s: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", gameID, err)
	}

	var s state.GameState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode %s: %w", gameID, err)
	}
	s.Prune()
	return &s, nil
}

// Save upserts the snapshot of s.
func (p *PostgresStore) Save(ctx context.Context, s *state.GameState) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode %s: %w", s.GameID, err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO game_states (game_id, phase, turn_number, state, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (game_id) DO UPDATE
		SET phase = EXCLUDED.phase,
		    turn_number = EXCLUDED.turn_number,
		    state = EXCLUDED.state,
		    updated_at = now()`,
		s.GameID, string(s.Phase), s.TurnNumber, data)
	if err != nil {
		return fmt.Errorf("save %s: %w", s.GameID, err)
	}
	p.logger.Debug("game state saved",
		zap.String("game_id", s.GameID),
		zap.Int("turn", s.TurnNumber),
		zap.Int("bytes", len(data)),
	)
	return nil
}

// Delete removes a game's snapshot.
func (p *PostgresStore) Delete(ctx context.Context, gameID string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM game_states WHERE game_id = $1`, gameID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", gameID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete %s: %w", gameID, ErrNotFound)
	}
	return nil
}

// List returns the stored game ids in sorted order.
func (p *PostgresStore) List(ctx context.Context) ([]string, error) {
	rows, err := p.pool.Query(ctx, `SELECT game_id FROM game_states ORDER BY game_id`)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	return ids, nil
}
