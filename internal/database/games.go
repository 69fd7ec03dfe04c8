package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"mines/internal/game"
)

// GameStore is the Postgres-backed game.Store. A partial unique index on
// (user_id) WHERE status = 'active' makes the one-active-game-per-user
// check-and-insert atomic; a violation surfaces as game.ErrActiveGame.
type GameStore struct {
	pool *pgxpool.Pool
}

func NewGameStore(db Service) *GameStore {
	return &GameStore{pool: db.Pool()}
}

const gameColumns = `id, user_id, bet_amount, mine_count, mine_positions, revealed_cells, multiplier, status, result_amount, created_at, ended_at`

func (s *GameStore) Create(ctx context.Context, g *game.Game) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO mines_games (`+gameColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		g.ID, g.UserID, g.BetAmount, g.MineCount,
		toInt32s(g.MinePositions), toInt32s(g.RevealedCells),
		g.Multiplier, g.Status, g.ResultAmount, g.CreatedAt, g.EndedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return game.ErrActiveGame
		}
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (s *GameStore) ActiveByUser(ctx context.Context, userID string) (*game.Game, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+gameColumns+`
		FROM mines_games
		WHERE user_id = $1 AND status = $2`,
		userID, game.StatusActive,
	)
	return scanGame(row)
}

func (s *GameStore) Active(ctx context.Context, userID, gameID string) (*game.Game, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+gameColumns+`
		FROM mines_games
		WHERE id = $1 AND user_id = $2 AND status = $3`,
		gameID, userID, game.StatusActive,
	)
	return scanGame(row)
}

func (s *GameStore) Update(ctx context.Context, g *game.Game) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE mines_games
		SET revealed_cells = $2, multiplier = $3, status = $4, result_amount = $5, ended_at = $6
		WHERE id = $1`,
		g.ID, toInt32s(g.RevealedCells), g.Multiplier, g.Status, g.ResultAmount, g.EndedAt,
	)
	if err != nil {
		return fmt.Errorf("update game: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return game.ErrNotFound
	}
	return nil
}

func scanGame(row pgx.Row) (*game.Game, error) {
	var g game.Game
	var mines, revealed []int32
	err := row.Scan(
		&g.ID, &g.UserID, &g.BetAmount, &g.MineCount,
		&mines, &revealed,
		&g.Multiplier, &g.Status, &g.ResultAmount, &g.CreatedAt, &g.EndedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, game.ErrNotFound
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}
	g.MinePositions = toInts(mines)
	g.RevealedCells = toInts(revealed)
	return &g, nil
}

func toInt32s(cells []int) []int32 {
	out := make([]int32, len(cells))
	for i, c := range cells {
		out[i] = int32(c)
	}
	return out
}

func toInts(cells []int32) []int {
	out := make([]int, len(cells))
	for i, c := range cells {
		out[i] = int(c)
	}
	return out
}
