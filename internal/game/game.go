package game

import (
	"time"
)

const (
	GRID_SIZE = 25 // 5x5 grid
	MIN_MINES = 3
	MAX_MINES = 24
	MIN_BET   = 10.0
	MAX_BET   = 1000.0
)

type Status string

const (
	StatusActive Status = "active"
	StatusWon    Status = "won"
	StatusLost   Status = "lost"
)

// Game is the full server-side row, mine positions included. It is never
// serialized directly; responses go through GameView or the per-action
// result types, which carry mine positions only once the game is over.
type Game struct {
	ID            string
	UserID        string
	BetAmount     float64
	MineCount     int
	MinePositions []int
	RevealedCells []int
	Multiplier    float64
	Status        Status
	ResultAmount  float64
	CreatedAt     time.Time
	EndedAt       *time.Time
}

func (g *Game) SafeCells() int {
	return GRID_SIZE - g.MineCount
}

func (g *Game) SafeCellsRemaining() int {
	return g.SafeCells() - len(g.RevealedCells)
}

func (g *Game) IsMine(cell int) bool {
	for _, pos := range g.MinePositions {
		if pos == cell {
			return true
		}
	}
	return false
}

func (g *Game) IsRevealed(cell int) bool {
	for _, revealed := range g.RevealedCells {
		if revealed == cell {
			return true
		}
	}
	return false
}

// GameView is the client-safe projection of a Game. It has no mine
// position field at all, so an active game cannot leak its layout no
// matter which handler serializes it.
type GameView struct {
	ID                 string    `json:"id"`
	Bet                float64   `json:"bet"`
	MineCount          int       `json:"mineCount"`
	Multiplier         float64   `json:"multiplier"`
	RevealedCells      []int     `json:"revealedCells"`
	Status             Status    `json:"status"`
	SafeCellsRemaining int       `json:"safeCellsRemaining"`
	MaxMultiplier      float64   `json:"maxMultiplier"`
	NextMultipliers    []float64 `json:"nextMultipliers"`
}

// View is the single conversion point from Game to its public shape.
func (g *Game) View() GameView {
	revealed := g.RevealedCells
	if revealed == nil {
		revealed = []int{}
	}
	return GameView{
		ID:                 g.ID,
		Bet:                g.BetAmount,
		MineCount:          g.MineCount,
		Multiplier:         g.Multiplier,
		RevealedCells:      revealed,
		Status:             g.Status,
		SafeCellsRemaining: g.SafeCellsRemaining(),
		MaxMultiplier:      MaxMultiplier(g.MineCount),
		NextMultipliers:    NextMultipliers(len(g.RevealedCells), g.MineCount, 5),
	}
}
