package game

import (
	"fmt"
	"math"
)

const HOUSE_EDGE = 0.03 // 3%

type MultiplierStep struct {
	Reveals    int     `json:"reveals"`
	Multiplier float64 `json:"multiplier"`
}

// Multiplier computes the cumulative payout multiplier after revealedCount
// safe reveals with mineCount mines on the grid. At each step the fair
// multiplier is the reciprocal of the survival probability of that draw;
// the house edge is applied once to the product, not per step. The value
// is always recomputed from scratch so it stays a pure function of
// (revealedCount, mineCount) with no accumulated float drift.
func Multiplier(revealedCount, mineCount int) float64 {
	if revealedCount == 0 {
		return 1.0
	}

	safeCells := GRID_SIZE - mineCount
	cumulative := 1.0
	for i := 0; i < revealedCount; i++ {
		remainingTotal := float64(GRID_SIZE - i)
		remainingSafe := float64(safeCells - i)
		cumulative *= remainingTotal / remainingSafe
	}

	return round2(cumulative * (1 - HOUSE_EDGE))
}

// MaxMultiplier is the multiplier paid for clearing every safe cell.
func MaxMultiplier(mineCount int) float64 {
	return Multiplier(GRID_SIZE-mineCount, mineCount)
}

// MultiplierTable lists the multiplier for every possible reveal count.
func MultiplierTable(mineCount int) ([]MultiplierStep, error) {
	if mineCount < MIN_MINES || mineCount > MAX_MINES {
		return nil, invalidParam("Mine count must be between %d and %d", MIN_MINES, MAX_MINES)
	}

	safeCells := GRID_SIZE - mineCount
	table := make([]MultiplierStep, 0, safeCells)
	for reveals := 1; reveals <= safeCells; reveals++ {
		table = append(table, MultiplierStep{
			Reveals:    reveals,
			Multiplier: Multiplier(reveals, mineCount),
		})
	}
	return table, nil
}

// NextMultipliers previews the multipliers for the next up-to-n reveals
// after revealedCount.
func NextMultipliers(revealedCount, mineCount, n int) []float64 {
	safeCells := GRID_SIZE - mineCount
	next := []float64{}
	for k := revealedCount + 1; k <= safeCells && len(next) < n; k++ {
		next = append(next, Multiplier(k, mineCount))
	}
	return next
}

// Profit is the payout for cashing out bet at the given multiplier,
// floored to whole currency units.
func Profit(bet, multiplier float64) float64 {
	return math.Floor(bet * multiplier)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// HouseEdgeLabel renders the edge for client display, e.g. "3%".
func HouseEdgeLabel() string {
	return fmt.Sprintf("%g%%", HOUSE_EDGE*100)
}
