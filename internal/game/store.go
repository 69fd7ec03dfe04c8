package game

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned by lookups that match no active game.
	ErrNotFound = errors.New("game not found")
	// ErrActiveGame is returned by Create when the user already has an
	// active game. Implementations must make the check-and-insert atomic.
	ErrActiveGame = errors.New("user already has an active game")
)

// Store persists game rows. Lookups only see active games; terminal rows
// stay in the store as history but are invisible to Active/ActiveByUser,
// which is what makes a second cashout come back as not-found.
type Store interface {
	Create(ctx context.Context, g *Game) error
	ActiveByUser(ctx context.Context, userID string) (*Game, error)
	Active(ctx context.Context, userID, gameID string) (*Game, error)
	Update(ctx context.Context, g *Game) error
}
