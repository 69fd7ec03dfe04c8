package game

import (
	"math"
	"testing"
)

func fairMultiplier(revealedCount, mineCount int) float64 {
	safeCells := GRID_SIZE - mineCount
	cumulative := 1.0
	for i := 0; i < revealedCount; i++ {
		cumulative *= float64(GRID_SIZE-i) / float64(safeCells-i)
	}
	return cumulative
}

func TestMultiplier(t *testing.T) {
	t.Run("zero reveals is identity", func(t *testing.T) {
		for m := MIN_MINES; m <= MAX_MINES; m++ {
			if got := Multiplier(0, m); got != 1.0 {
				t.Errorf("Multiplier(0, %d) = %v, want 1.0", m, got)
			}
		}
	})

	t.Run("strictly increasing in reveal count", func(t *testing.T) {
		for m := MIN_MINES; m <= MAX_MINES; m++ {
			safeCells := GRID_SIZE - m
			prev := Multiplier(0, m)
			for k := 1; k <= safeCells; k++ {
				cur := Multiplier(k, m)
				if cur <= prev {
					t.Fatalf("Multiplier(%d, %d) = %v not greater than Multiplier(%d, %d) = %v", k, m, cur, k-1, m, prev)
				}
				prev = cur
			}
		}
	})

	t.Run("higher mine count pays more", func(t *testing.T) {
		if Multiplier(5, 10) <= Multiplier(5, 3) {
			t.Error("more mines should yield a higher multiplier for the same reveals")
		}
	})

	t.Run("house edge strictly reduces payout", func(t *testing.T) {
		for m := MIN_MINES; m <= MAX_MINES; m++ {
			safeCells := GRID_SIZE - m
			for k := 1; k <= safeCells; k++ {
				if got, fair := Multiplier(k, m), fairMultiplier(k, m); got >= fair {
					t.Errorf("Multiplier(%d, %d) = %v, want below fair value %v", k, m, got, fair)
				}
			}
		}
	})

	t.Run("matches formula", func(t *testing.T) {
		for _, tc := range []struct{ k, m int }{{1, 5}, {3, 5}, {1, 24}, {10, 3}, {22, 3}} {
			want := math.Round(fairMultiplier(tc.k, tc.m)*(1-HOUSE_EDGE)*100) / 100
			if got := Multiplier(tc.k, tc.m); got != want {
				t.Errorf("Multiplier(%d, %d) = %v, want %v", tc.k, tc.m, got, want)
			}
		}
	})
}

func TestMultiplierTable(t *testing.T) {
	t.Run("covers every possible reveal count", func(t *testing.T) {
		table, err := MultiplierTable(5)
		if err != nil {
			t.Fatalf("MultiplierTable(5) returned error: %v", err)
		}
		if len(table) != GRID_SIZE-5 {
			t.Fatalf("expected %d steps, got %d", GRID_SIZE-5, len(table))
		}
		for i, step := range table {
			if step.Reveals != i+1 {
				t.Errorf("step %d has reveals %d, want %d", i, step.Reveals, i+1)
			}
			if step.Multiplier != Multiplier(step.Reveals, 5) {
				t.Errorf("step %d multiplier %v does not match Multiplier(%d, 5)", i, step.Multiplier, step.Reveals)
			}
		}
	})

	t.Run("last step equals max multiplier", func(t *testing.T) {
		for m := MIN_MINES; m <= MAX_MINES; m++ {
			table, err := MultiplierTable(m)
			if err != nil {
				t.Fatalf("MultiplierTable(%d) returned error: %v", m, err)
			}
			if last := table[len(table)-1].Multiplier; last != MaxMultiplier(m) {
				t.Errorf("table tail %v != MaxMultiplier(%d) = %v", last, m, MaxMultiplier(m))
			}
		}
	})

	t.Run("rejects out-of-range mine counts", func(t *testing.T) {
		for _, m := range []int{0, 1, 2, 25, 30, -1} {
			_, err := MultiplierTable(m)
			if err == nil {
				t.Errorf("MultiplierTable(%d) should fail", m)
			}
			if KindOf(err) != KindInvalidParameter {
				t.Errorf("MultiplierTable(%d) error kind = %v, want invalid parameter", m, KindOf(err))
			}
		}
	})
}

func TestNextMultipliers(t *testing.T) {
	t.Run("previews the next five from the start", func(t *testing.T) {
		next := NextMultipliers(0, 5, 5)
		if len(next) != 5 {
			t.Fatalf("expected 5 previews, got %d", len(next))
		}
		for i, v := range next {
			if v != Multiplier(i+1, 5) {
				t.Errorf("preview %d = %v, want Multiplier(%d, 5)", i, v, i+1)
			}
		}
	})

	t.Run("truncates near the end of the grid", func(t *testing.T) {
		// 24 mines leave a single safe cell.
		next := NextMultipliers(0, 24, 5)
		if len(next) != 1 {
			t.Fatalf("expected 1 preview, got %d", len(next))
		}
		if next[0] != MaxMultiplier(24) {
			t.Errorf("preview = %v, want %v", next[0], MaxMultiplier(24))
		}
	})

	t.Run("empty once all safe cells are revealed", func(t *testing.T) {
		next := NextMultipliers(20, 5, 5)
		if len(next) != 0 {
			t.Errorf("expected no previews, got %v", next)
		}
	})
}

func TestProfit(t *testing.T) {
	t.Run("floors to whole units", func(t *testing.T) {
		if got := Profit(100, 1.21); got != 121 {
			t.Errorf("Profit(100, 1.21) = %v, want 121", got)
		}
		if got := Profit(50, 1.33); got != 66 {
			t.Errorf("Profit(50, 1.33) = %v, want 66", got)
		}
	})
}
