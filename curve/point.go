package curve

import (
	"math/big"

	"github.com/Iscaraca/cryptid/internal/zeroize"
)

// AffinePoint is (X, Y) or the point at infinity. When Infinity is set the
// coordinates are ignored and may be nil.
type AffinePoint struct {
	X, Y     *big.Int
	Infinity bool
}

// Clone returns a deep copy.
func (p AffinePoint) Clone() AffinePoint {
	if p.Infinity {
		return AffinePoint{Infinity: true}
	}
	return AffinePoint{X: new(big.Int).Set(p.X), Y: new(big.Int).Set(p.Y)}
}

// Zeroize clears the coordinates in place.
func (p AffinePoint) Zeroize() {
	zeroize.BigInts(p.X, p.Y)
}

func (p AffinePoint) String() string {
	if p.Infinity {
		return "(infinity)"
	}
	return "(" + p.X.Text(16) + ", " + p.Y.Text(16) + ")"
}
