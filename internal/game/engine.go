package game

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
)

// Engine runs the mines game: start, reveal, cashout. It holds no game
// state of its own; every action loads the row fresh from the store,
// applies one transition and persists the result.
type Engine struct {
	store Store
	hub   *Hub
	rng   Rand
}

func NewEngine(store Store, hub *Hub) *Engine {
	return &Engine{
		store: store,
		hub:   hub,
		rng:   cryptoRand{},
	}
}

type StartResult struct {
	Game GameView `json:"game"`
}

type RevealResult struct {
	Result             string
	GameOver           bool
	Won                bool
	Jackpot            bool
	Multiplier         float64
	NextMultiplier     float64
	Profit             float64
	MinePositions      []int
	RevealedCells      []int
	SafeCellsRemaining int
}

type CashoutResult struct {
	Profit        float64
	Multiplier    float64
	MinePositions []int
	RevealedCells []int
}

// Start creates a new active game for the user. If one already exists
// the conflict error carries its id so the client can resume it.
func (e *Engine) Start(ctx context.Context, userID string, bet float64, mineCount int) (*StartResult, error) {
	if bet < MIN_BET || bet > MAX_BET {
		return nil, invalidParam("Bet must be between %.0f and %.0f", MIN_BET, MAX_BET)
	}
	if mineCount < MIN_MINES || mineCount > MAX_MINES {
		return nil, invalidParam("Mine count must be between %d and %d", MIN_MINES, MAX_MINES)
	}

	if existing, err := e.store.ActiveByUser(ctx, userID); err == nil {
		return nil, conflict(existing.ID, "You already have an active game")
	} else if !errors.Is(err, ErrNotFound) {
		return nil, internal("failed to check active game", err)
	}

	g := &Game{
		ID:            uuid.NewString(),
		UserID:        userID,
		BetAmount:     bet,
		MineCount:     mineCount,
		MinePositions: drawMinePositions(e.rng, mineCount),
		RevealedCells: []int{},
		Multiplier:    1.0,
		Status:        StatusActive,
		CreatedAt:     time.Now(),
	}

	if err := e.store.Create(ctx, g); err != nil {
		if errors.Is(err, ErrActiveGame) {
			// Lost the insert race; surface the winner's game id.
			if existing, lookupErr := e.store.ActiveByUser(ctx, userID); lookupErr == nil {
				return nil, conflict(existing.ID, "You already have an active game")
			}
			return nil, conflict("", "You already have an active game")
		}
		return nil, internal("failed to create game", err)
	}

	log.Printf("[MINES] Game %s started for user %s with %d mines, bet %.2f", g.ID, userID, mineCount, bet)

	return &StartResult{Game: g.View()}, nil
}

// Reveal uncovers one cell of the user's active game.
func (e *Engine) Reveal(ctx context.Context, userID, gameID string, cell int) (*RevealResult, error) {
	if cell < 0 || cell >= GRID_SIZE {
		return nil, invalidParam("Cell index must be between 0 and %d", GRID_SIZE-1)
	}

	g, err := e.store.Active(ctx, userID, gameID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("Game not found")
		}
		return nil, internal("failed to load game", err)
	}

	if g.IsRevealed(cell) {
		return nil, invalidOp("Cell already revealed")
	}

	g.RevealedCells = append(g.RevealedCells, cell)

	if g.IsMine(cell) {
		now := time.Now()
		g.Status = StatusLost
		g.ResultAmount = 0
		g.EndedAt = &now

		if err := e.store.Update(ctx, g); err != nil {
			return nil, internal("failed to persist game", err)
		}

		log.Printf("[MINES] User %s hit a mine at cell %d in game %s", userID, cell, gameID)
		e.notifyResult(g)

		return &RevealResult{
			Result:        "mine",
			GameOver:      true,
			MinePositions: g.MinePositions,
			RevealedCells: g.RevealedCells,
		}, nil
	}

	g.Multiplier = Multiplier(len(g.RevealedCells), g.MineCount)
	profit := Profit(g.BetAmount, g.Multiplier)

	if g.SafeCellsRemaining() == 0 {
		now := time.Now()
		g.Status = StatusWon
		g.ResultAmount = profit
		g.EndedAt = &now

		if err := e.store.Update(ctx, g); err != nil {
			return nil, internal("failed to persist game", err)
		}

		log.Printf("[MINES] User %s cleared game %s for %.2f", userID, gameID, profit)
		e.notifyResult(g)

		return &RevealResult{
			Result:        "safe",
			GameOver:      true,
			Won:           true,
			Jackpot:       true,
			Multiplier:    g.Multiplier,
			Profit:        profit,
			MinePositions: g.MinePositions,
			RevealedCells: g.RevealedCells,
		}, nil
	}

	if err := e.store.Update(ctx, g); err != nil {
		return nil, internal("failed to persist game", err)
	}

	log.Printf("[MINES] User %s revealed safe cell %d in game %s, multiplier %.2f", userID, cell, gameID, g.Multiplier)

	return &RevealResult{
		Result:             "safe",
		Multiplier:         g.Multiplier,
		NextMultiplier:     Multiplier(len(g.RevealedCells)+1, g.MineCount),
		Profit:             profit,
		RevealedCells:      g.RevealedCells,
		SafeCellsRemaining: g.SafeCellsRemaining(),
	}, nil
}

// Cashout ends the user's active game and pays out at the current
// multiplier. The multiplier is recomputed from the revealed count
// rather than read back from the row.
func (e *Engine) Cashout(ctx context.Context, userID, gameID string) (*CashoutResult, error) {
	g, err := e.store.Active(ctx, userID, gameID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("Game not found")
		}
		return nil, internal("failed to load game", err)
	}

	if len(g.RevealedCells) == 0 {
		return nil, invalidOp("Must reveal at least one cell before cashing out")
	}

	now := time.Now()
	g.Multiplier = Multiplier(len(g.RevealedCells), g.MineCount)
	g.ResultAmount = Profit(g.BetAmount, g.Multiplier)
	g.Status = StatusWon
	g.EndedAt = &now

	if err := e.store.Update(ctx, g); err != nil {
		return nil, internal("failed to persist game", err)
	}

	log.Printf("[MINES] User %s cashed out game %s for %.2f at %.2fx", userID, gameID, g.ResultAmount, g.Multiplier)
	e.notifyResult(g)

	return &CashoutResult{
		Profit:        g.ResultAmount,
		Multiplier:    g.Multiplier,
		MinePositions: g.MinePositions,
		RevealedCells: g.RevealedCells,
	}, nil
}

func (e *Engine) notifyResult(g *Game) {
	if e.hub == nil {
		return
	}
	e.hub.NotifyUser(g.UserID, GameResultMessage{
		Type: "mines_result",
		Data: GameResultData{
			GameID:     g.ID,
			Won:        g.Status == StatusWon,
			Payout:     g.ResultAmount,
			Multiplier: g.Multiplier,
		},
	})
}
