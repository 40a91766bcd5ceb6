package bonding_curve

import (
	"fmt"

	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Price is an amount of reserve base units (lamports) per token base unit,
// stored as an integer scaled by 10^18.
type Price struct {
	wad uint256.Int
}

func NewPrice(wad *uint256.Int) Price {
	var p Price
	p.wad.Set(wad)
	return p
}

func NewPriceFromUint64(wad uint64) Price {
	var p Price
	p.wad.SetUint64(wad)
	return p
}

// PriceFromSOLPerToken converts a human price in SOL per whole token.
//
// Example:
//
// p, _ := PriceFromSOLPerToken(decimal.RequireFromString("0.005"), 6) // 5 lamports per base unit
func PriceFromSOLPerToken(sol decimal.Decimal, tokenDecimals uint8) (Price, error) {
	return PriceFromLamportsPerToken(sol.Shift(9), tokenDecimals)
}

// PriceFromLamportsPerToken converts a price in lamports per whole token.
func PriceFromLamportsPerToken(lamports decimal.Decimal, tokenDecimals uint8) (Price, error) {
	if tokenDecimals > bc.MaxTokenDecimals {
		return Price{}, fmt.Errorf("token decimals %d above %d", tokenDecimals, bc.MaxTokenDecimals)
	}
	if lamports.IsNegative() {
		return Price{}, fmt.Errorf("negative price %s", lamports)
	}
	scaled := lamports.Shift(bc.PriceDecimals - int32(tokenDecimals))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Price{}, fmt.Errorf("price %s has more precision than %d decimals", lamports, bc.PriceDecimals)
	}
	wad, overflow := uint256.FromBig(scaled.BigInt())
	if overflow {
		return Price{}, fmt.Errorf("price %s: %w", lamports, ErrArithmeticOverflow)
	}
	return NewPrice(wad), nil
}

func (p Price) Wad() *uint256.Int {
	return p.wad.Clone()
}

func (p Price) IsZero() bool {
	return p.wad.IsZero()
}

func (p Price) Cmp(o Price) int {
	return p.wad.Cmp(&o.wad)
}

// Decimal returns lamports per token base unit.
func (p Price) Decimal() decimal.Decimal {
	return decimal.NewFromBigInt(p.wad.ToBig(), -bc.PriceDecimals)
}

// LamportsPerToken returns lamports per whole token.
func (p Price) LamportsPerToken(tokenDecimals uint8) decimal.Decimal {
	return p.Decimal().Shift(int32(tokenDecimals))
}

// SOLPerToken returns SOL per whole token.
func (p Price) SOLPerToken(tokenDecimals uint8) decimal.Decimal {
	return p.LamportsPerToken(tokenDecimals).Shift(-9)
}

func (p Price) String() string {
	return p.Decimal().String()
}
