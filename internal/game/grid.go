package game

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
)

// Rand is the randomness source used for mine placement. Production uses
// the crypto-backed source below; tests inject a seeded math/rand.Rand.
type Rand interface {
	Intn(n int) int
}

// cryptoRand draws unbiased integers from crypto/rand. Safe for
// concurrent use, which a bare *math/rand.Rand is not.
type cryptoRand struct{}

func (cryptoRand) Intn(n int) int {
	v, err := crand.Int(crand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(fmt.Sprintf("crypto/rand failed: %v", err))
	}
	return int(v.Int64())
}

// drawMinePositions picks mineCount distinct cells uniformly at random:
// Fisher-Yates over the full index range, then take the head.
func drawMinePositions(rng Rand, mineCount int) []int {
	cells := make([]int, GRID_SIZE)
	for i := range cells {
		cells[i] = i
	}
	for i := GRID_SIZE - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		cells[i], cells[j] = cells[j], cells[i]
	}
	return cells[:mineCount:mineCount]
}
