package game

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"testing"
)

func newTestEngine(seed int64) (*Engine, *MemoryStore) {
	store := NewMemoryStore()
	engine := NewEngine(store, nil)
	engine.rng = rand.New(rand.NewSource(seed))
	return engine, store
}

func mustStart(t *testing.T, e *Engine, userID string, bet float64, mineCount int) StartResult {
	t.Helper()
	res, err := e.Start(context.Background(), userID, bet, mineCount)
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return *res
}

func storedGame(t *testing.T, s *MemoryStore, userID string) *Game {
	t.Helper()
	g, err := s.ActiveByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("no active game for %s: %v", userID, err)
	}
	return g
}

func safeCell(g *Game) int {
	for cell := 0; cell < GRID_SIZE; cell++ {
		if !g.IsMine(cell) && !g.IsRevealed(cell) {
			return cell
		}
	}
	return -1
}

func TestEngineStart(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects out-of-range bets", func(t *testing.T) {
		engine, _ := newTestEngine(1)
		for _, bet := range []float64{0, 9.99, 1000.01, -5} {
			_, err := engine.Start(ctx, "u1", bet, 5)
			if KindOf(err) != KindInvalidParameter {
				t.Errorf("Start with bet %v: kind = %v, want invalid parameter", bet, KindOf(err))
			}
		}
	})

	t.Run("rejects out-of-range mine counts", func(t *testing.T) {
		engine, _ := newTestEngine(1)
		for _, m := range []int{0, 2, 25, -1} {
			_, err := engine.Start(ctx, "u1", 100, m)
			if KindOf(err) != KindInvalidParameter {
				t.Errorf("Start with %d mines: kind = %v, want invalid parameter", m, KindOf(err))
			}
		}
	})

	t.Run("creates a fresh active game", func(t *testing.T) {
		engine, store := newTestEngine(1)
		res := mustStart(t, engine, "u1", 100, 5)

		if res.Game.ID == "" {
			t.Error("expected a game id")
		}
		if res.Game.Multiplier != 1.0 {
			t.Errorf("initial multiplier = %v, want 1.0", res.Game.Multiplier)
		}
		if len(res.Game.RevealedCells) != 0 {
			t.Errorf("expected no revealed cells, got %v", res.Game.RevealedCells)
		}
		if res.Game.Status != StatusActive {
			t.Errorf("status = %v, want active", res.Game.Status)
		}
		if res.Game.SafeCellsRemaining != GRID_SIZE-5 {
			t.Errorf("safeCellsRemaining = %d, want %d", res.Game.SafeCellsRemaining, GRID_SIZE-5)
		}
		if res.Game.MaxMultiplier != Multiplier(GRID_SIZE-5, 5) {
			t.Errorf("maxMultiplier = %v, want %v", res.Game.MaxMultiplier, Multiplier(GRID_SIZE-5, 5))
		}
		if len(res.Game.NextMultipliers) != 5 {
			t.Errorf("expected 5 multiplier previews, got %d", len(res.Game.NextMultipliers))
		}

		g := storedGame(t, store, "u1")
		if len(g.MinePositions) != 5 {
			t.Errorf("stored game has %d mines, want 5", len(g.MinePositions))
		}
	})

	t.Run("start view never carries mine positions", func(t *testing.T) {
		engine, _ := newTestEngine(1)
		res := mustStart(t, engine, "u1", 100, 5)

		data, err := json.Marshal(res)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if strings.Contains(strings.ToLower(string(data)), "mine_positions") ||
			strings.Contains(string(data), "minePositions") {
			t.Errorf("start response leaks mine positions: %s", data)
		}
	})

	t.Run("second start conflicts with resumable id", func(t *testing.T) {
		engine, _ := newTestEngine(1)
		res := mustStart(t, engine, "u1", 100, 5)

		_, err := engine.Start(ctx, "u1", 50, 3)
		if KindOf(err) != KindConflict {
			t.Fatalf("kind = %v, want conflict", KindOf(err))
		}
		if got := ConflictGameID(err); got != res.Game.ID {
			t.Errorf("conflict game id = %q, want %q", got, res.Game.ID)
		}
	})

	t.Run("different users do not conflict", func(t *testing.T) {
		engine, _ := newTestEngine(1)
		mustStart(t, engine, "u1", 100, 5)
		mustStart(t, engine, "u2", 100, 5)
	})
}

func TestEngineReveal(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects out-of-range cells", func(t *testing.T) {
		engine, _ := newTestEngine(1)
		res := mustStart(t, engine, "u1", 100, 5)
		for _, cell := range []int{-1, 25, 100} {
			_, err := engine.Reveal(ctx, "u1", res.Game.ID, cell)
			if KindOf(err) != KindInvalidParameter {
				t.Errorf("Reveal cell %d: kind = %v, want invalid parameter", cell, KindOf(err))
			}
		}
	})

	t.Run("unknown or foreign games are not found", func(t *testing.T) {
		engine, _ := newTestEngine(1)
		res := mustStart(t, engine, "u1", 100, 5)

		if _, err := engine.Reveal(ctx, "u1", "no-such-game", 0); KindOf(err) != KindNotFound {
			t.Errorf("unknown game: kind = %v, want not found", KindOf(err))
		}
		if _, err := engine.Reveal(ctx, "u2", res.Game.ID, 0); KindOf(err) != KindNotFound {
			t.Errorf("foreign game: kind = %v, want not found", KindOf(err))
		}
	})

	t.Run("safe reveal pays by the formula", func(t *testing.T) {
		engine, store := newTestEngine(3)
		res := mustStart(t, engine, "u1", 100, 5)
		cell := safeCell(storedGame(t, store, "u1"))

		out, err := engine.Reveal(ctx, "u1", res.Game.ID, cell)
		if err != nil {
			t.Fatalf("Reveal failed: %v", err)
		}

		if out.Result != "safe" || out.GameOver {
			t.Fatalf("expected continuing safe reveal, got %+v", out)
		}
		want := Multiplier(1, 5)
		if out.Multiplier != want {
			t.Errorf("multiplier = %v, want %v", out.Multiplier, want)
		}
		if fair := fairMultiplier(1, 5); out.Multiplier >= fair {
			t.Errorf("multiplier %v should sit below the fair value %v", out.Multiplier, fair)
		}
		if wantProfit := Profit(100, want); out.Profit != wantProfit {
			t.Errorf("profit = %v, want %v", out.Profit, wantProfit)
		}
		if out.NextMultiplier != Multiplier(2, 5) {
			t.Errorf("nextMultiplier = %v, want %v", out.NextMultiplier, Multiplier(2, 5))
		}
		if out.SafeCellsRemaining != GRID_SIZE-5-1 {
			t.Errorf("safeCellsRemaining = %d, want %d", out.SafeCellsRemaining, GRID_SIZE-5-1)
		}
		if out.MinePositions != nil {
			t.Errorf("active game must not expose mine positions: %v", out.MinePositions)
		}

		g := storedGame(t, store, "u1")
		if g.Multiplier != want {
			t.Errorf("stored multiplier = %v, want %v", g.Multiplier, want)
		}
		if len(g.RevealedCells) != 1 || g.RevealedCells[0] != cell {
			t.Errorf("stored revealed cells = %v, want [%d]", g.RevealedCells, cell)
		}
	})

	t.Run("stored multiplier always matches recomputation", func(t *testing.T) {
		engine, store := newTestEngine(4)
		res := mustStart(t, engine, "u1", 100, 5)

		for i := 0; i < 6; i++ {
			cell := safeCell(storedGame(t, store, "u1"))
			if _, err := engine.Reveal(ctx, "u1", res.Game.ID, cell); err != nil {
				t.Fatalf("Reveal %d failed: %v", i, err)
			}
			g := storedGame(t, store, "u1")
			if want := Multiplier(len(g.RevealedCells), g.MineCount); g.Multiplier != want {
				t.Fatalf("after %d reveals stored multiplier = %v, recomputed = %v", len(g.RevealedCells), g.Multiplier, want)
			}
		}
	})

	t.Run("double reveal is rejected without side effects", func(t *testing.T) {
		engine, store := newTestEngine(5)
		res := mustStart(t, engine, "u1", 100, 5)
		cell := safeCell(storedGame(t, store, "u1"))

		if _, err := engine.Reveal(ctx, "u1", res.Game.ID, cell); err != nil {
			t.Fatalf("first reveal failed: %v", err)
		}
		_, err := engine.Reveal(ctx, "u1", res.Game.ID, cell)
		if KindOf(err) != KindInvalidOperation {
			t.Fatalf("second reveal kind = %v, want invalid operation", KindOf(err))
		}
		if g := storedGame(t, store, "u1"); len(g.RevealedCells) != 1 {
			t.Errorf("revealed cells = %v after rejected double reveal", g.RevealedCells)
		}
	})

	t.Run("mine hit loses the game and discloses the layout", func(t *testing.T) {
		engine, store := newTestEngine(6)
		res := mustStart(t, engine, "u1", 100, 5)
		g := storedGame(t, store, "u1")
		mine := g.MinePositions[0]

		out, err := engine.Reveal(ctx, "u1", res.Game.ID, mine)
		if err != nil {
			t.Fatalf("Reveal failed: %v", err)
		}
		if out.Result != "mine" || !out.GameOver || out.Won {
			t.Fatalf("expected losing reveal, got %+v", out)
		}
		if len(out.MinePositions) != 5 {
			t.Errorf("expected full mine layout, got %v", out.MinePositions)
		}

		if _, err := store.Active(ctx, "u1", res.Game.ID); err != ErrNotFound {
			t.Error("lost game should no longer be active")
		}
		if _, err := engine.Reveal(ctx, "u1", res.Game.ID, safeCell(g)); KindOf(err) != KindNotFound {
			t.Error("reveal on a lost game should be not found")
		}

		// The slot is freed for a fresh game.
		mustStart(t, engine, "u1", 100, 5)
	})

	t.Run("clearing the last safe cell is a jackpot", func(t *testing.T) {
		engine, store := newTestEngine(7)
		res := mustStart(t, engine, "u1", 50, MAX_MINES) // one safe cell
		cell := safeCell(storedGame(t, store, "u1"))

		out, err := engine.Reveal(ctx, "u1", res.Game.ID, cell)
		if err != nil {
			t.Fatalf("Reveal failed: %v", err)
		}
		if !out.GameOver || !out.Won || !out.Jackpot {
			t.Fatalf("expected jackpot, got %+v", out)
		}
		if out.SafeCellsRemaining != 0 {
			t.Errorf("safeCellsRemaining = %d, want 0", out.SafeCellsRemaining)
		}
		if want := Multiplier(1, MAX_MINES); out.Multiplier != want {
			t.Errorf("multiplier = %v, want %v", out.Multiplier, want)
		}
		if wantProfit := Profit(50, Multiplier(1, MAX_MINES)); out.Profit != wantProfit {
			t.Errorf("profit = %v, want %v", out.Profit, wantProfit)
		}
		if len(out.MinePositions) != MAX_MINES {
			t.Errorf("expected full mine layout, got %d positions", len(out.MinePositions))
		}
	})
}

func TestEngineCashout(t *testing.T) {
	ctx := context.Background()

	t.Run("requires at least one reveal", func(t *testing.T) {
		engine, _ := newTestEngine(8)
		res := mustStart(t, engine, "u1", 100, 5)

		_, err := engine.Cashout(ctx, "u1", res.Game.ID)
		if KindOf(err) != KindInvalidOperation {
			t.Errorf("kind = %v, want invalid operation", KindOf(err))
		}
	})

	t.Run("pays the recomputed multiplier and closes the game", func(t *testing.T) {
		engine, store := newTestEngine(9)
		res := mustStart(t, engine, "u1", 100, 5)
		cell := safeCell(storedGame(t, store, "u1"))
		if _, err := engine.Reveal(ctx, "u1", res.Game.ID, cell); err != nil {
			t.Fatalf("Reveal failed: %v", err)
		}

		out, err := engine.Cashout(ctx, "u1", res.Game.ID)
		if err != nil {
			t.Fatalf("Cashout failed: %v", err)
		}

		want := Multiplier(1, 5)
		if out.Multiplier != want {
			t.Errorf("multiplier = %v, want %v", out.Multiplier, want)
		}
		if wantProfit := Profit(100, want); out.Profit != wantProfit {
			t.Errorf("profit = %v, want %v", out.Profit, wantProfit)
		}
		if len(out.MinePositions) != 5 {
			t.Errorf("expected full mine layout, got %v", out.MinePositions)
		}

		// Terminal games are invisible to further actions.
		if _, err := engine.Cashout(ctx, "u1", res.Game.ID); KindOf(err) != KindNotFound {
			t.Errorf("second cashout kind = %v, want not found", KindOf(err))
		}
	})

	t.Run("unknown or foreign games are not found", func(t *testing.T) {
		engine, _ := newTestEngine(10)
		res := mustStart(t, engine, "u1", 100, 5)

		if _, err := engine.Cashout(ctx, "u1", "no-such-game"); KindOf(err) != KindNotFound {
			t.Errorf("unknown game: kind = %v, want not found", KindOf(err))
		}
		if _, err := engine.Cashout(ctx, "u2", res.Game.ID); KindOf(err) != KindNotFound {
			t.Errorf("foreign game: kind = %v, want not found", KindOf(err))
		}
	})
}
