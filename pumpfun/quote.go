package pumpfun

import (
	"errors"
	"math"
)

// ErrDegenerateReserves is returned when the reserves make the curve
// denominator zero or negative, or the result is not representable.
var ErrDegenerateReserves = errors.New("pumpfun: degenerate bonding curve reserves")

// SolTokenQuote returns the token amount for a SOL-denominated amount against
// the virtual reserves. The !isBuy variant carries the program's +1/-1
// rounding offsets and must not be simplified.
func SolTokenQuote(amount, virtualSolReserves, virtualTokenReserves uint64, isBuy bool) (uint64, error) {
	a := float64(amount)
	vsol := float64(virtualSolReserves)
	vtok := float64(virtualTokenReserves)

	var out float64
	if isBuy {
		den := a + vsol
		if den <= 0 {
			return 0, ErrDegenerateReserves
		}
		out = vtok / den * a
	} else {
		den := a + vsol - 1.0
		if den <= 0 {
			return 0, ErrDegenerateReserves
		}
		out = vtok / den * (a + 1.0)
	}
	return toLamports(out)
}

// TokenSolQuote returns the SOL amount for a token-denominated amount against
// the virtual reserves.
func TokenSolQuote(amount, virtualSolReserves, virtualTokenReserves uint64, isBuy bool) (uint64, error) {
	a := float64(amount)
	vsol := float64(virtualSolReserves)
	vtok := float64(virtualTokenReserves)

	var den float64
	if isBuy {
		den = vtok - a
	} else {
		den = vtok + a
	}
	if den <= 0 {
		return 0, ErrDegenerateReserves
	}
	return toLamports(a / den * vsol)
}

// toLamports truncates toward zero, rejecting values a u64 cannot hold.
func toLamports(v float64) (uint64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v >= math.MaxUint64 {
		return 0, ErrDegenerateReserves
	}
	return uint64(v), nil
}
