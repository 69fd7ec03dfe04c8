package game

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory Store, used in tests and when
// running without Postgres.
type MemoryStore struct {
	mu    sync.RWMutex
	games map[string]*Game
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		games: make(map[string]*Game),
	}
}

func (s *MemoryStore) Create(ctx context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.games {
		if existing.UserID == g.UserID && existing.Status == StatusActive {
			return ErrActiveGame
		}
	}

	s.games[g.ID] = copyGame(g)
	return nil
}

func (s *MemoryStore) ActiveByUser(ctx context.Context, userID string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.games {
		if g.UserID == userID && g.Status == StatusActive {
			return copyGame(g), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) Active(ctx context.Context, userID, gameID string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[gameID]
	if !ok || g.UserID != userID || g.Status != StatusActive {
		return nil, ErrNotFound
	}
	return copyGame(g), nil
}

func (s *MemoryStore) Update(ctx context.Context, g *Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.games[g.ID]; !ok {
		return ErrNotFound
	}
	s.games[g.ID] = copyGame(g)
	return nil
}

// copyGame keeps callers from mutating stored rows; every lookup behaves
// like a fresh read.
func copyGame(g *Game) *Game {
	cp := *g
	cp.MinePositions = append([]int(nil), g.MinePositions...)
	cp.RevealedCells = append([]int(nil), g.RevealedCells...)
	if g.EndedAt != nil {
		t := *g.EndedAt
		cp.EndedAt = &t
	}
	return &cp
}
