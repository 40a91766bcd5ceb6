package shared

import (
	"github.com/holiman/uint256"
)

const (
	// Q128 fixed point: the integer part lives in the high 128 bits.
	Resolution = 128

	// Prices are stored in reserve base units per token base unit, scaled by 10^18.
	PriceDecimals = 18

	LamportsPerSOL = 1_000_000_000

	// Lamports seeded into a freshly created pool vault.
	InitialLamportsForPool = 10_000_000

	MaxReserveRatio     = 100
	MaxBasisPoint       = 10_000
	DefaultReserveRatio = 5_000 // bps

	MaxTokenDecimals = 18
)

type Rounding uint8

const (
	RoundingUp   Rounding = 0
	RoundingDown Rounding = 1
)

// Opposite flips the rounding mode, used when a quantity is subtracted or divided by.
func (r Rounding) Opposite() Rounding {
	if r == RoundingUp {
		return RoundingDown
	}
	return RoundingUp
}

func (r Rounding) String() string {
	if r == RoundingUp {
		return "up"
	}
	return "down"
}

type TradeDirection uint8

const (
	TradeDirectionBuy  TradeDirection = 0
	TradeDirectionSell TradeDirection = 1
)

var (
	OneQ128 = new(uint256.Int).Lsh(uint256.NewInt(1), Resolution)
	Wad     = uint256.NewInt(1_000_000_000_000_000_000)

	U64Max  = new(uint256.Int).SetUint64(^uint64(0))
	U128Max = new(uint256.Int).Sub(OneQ128, uint256.NewInt(1))
)
