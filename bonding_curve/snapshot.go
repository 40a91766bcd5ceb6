package bonding_curve

import (
	"fmt"
	"time"

	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
)

const (
	LamportsPerSOL         = bc.LamportsPerSOL
	InitialLamportsForPool = bc.InitialLamportsForPool
)

// SnapshotTag identifies where and when a snapshot was read.
type SnapshotTag struct {
	Source    string // bonding curve account address or another reader id
	Slot      uint64
	FetchedAt time.Time
}

// ReserveSnapshot is a point in time read of a curve's counters.
type ReserveSnapshot struct {
	ReserveBalance    uint64 // lamports held by the curve
	ReserveTokenUnits uint64 // token base units in the curve's accounting
	TotalSupply       uint64 // token base units in circulation

	Tag SnapshotTag
}

// IsUntraded reports the state of a curve before its first trade.
func (s ReserveSnapshot) IsUntraded() bool {
	return s.ReserveBalance == 0 && s.TotalSupply == 0
}

// reservesEmpty reports a snapshot the constant ratio curve cannot price from its
// reserves, so it quotes at the initial price. Every untraded snapshot is one; so is a
// curve seeded with tokens but no lamports.
func (s ReserveSnapshot) reservesEmpty() bool {
	return s.ReserveBalance == 0 || s.ReserveTokenUnits == 0
}

// Apply returns the snapshot a trade would produce. The receiver is not changed.
func (s ReserveSnapshot) Apply(direction bc.TradeDirection, tokens, lamports uint64) (ReserveSnapshot, error) {
	next := s
	switch direction {
	case bc.TradeDirectionBuy:
		var ok bool
		if next.ReserveBalance, ok = addU64(s.ReserveBalance, lamports); !ok {
			return s, fmt.Errorf("reserve balance: %w", ErrArithmeticOverflow)
		}
		if next.ReserveTokenUnits, ok = addU64(s.ReserveTokenUnits, tokens); !ok {
			return s, fmt.Errorf("reserve token units: %w", ErrArithmeticOverflow)
		}
		if next.TotalSupply, ok = addU64(s.TotalSupply, tokens); !ok {
			return s, fmt.Errorf("total supply: %w", ErrArithmeticOverflow)
		}
	case bc.TradeDirectionSell:
		if lamports > s.ReserveBalance {
			return s, fmt.Errorf("proceeds %d above reserve balance %d: %w", lamports, s.ReserveBalance, ErrInsufficientReserve)
		}
		if tokens > s.TotalSupply {
			return s, fmt.Errorf("amount %d above supply %d: %w", tokens, s.TotalSupply, ErrInsufficientReserve)
		}
		next.ReserveBalance -= lamports
		next.TotalSupply -= tokens
		// only the constant ratio curve tracks units; the others may hold fewer than supply
		if tokens > s.ReserveTokenUnits {
			next.ReserveTokenUnits = 0
		} else {
			next.ReserveTokenUnits -= tokens
		}
	default:
		return s, ErrUnknownDirection
	}
	return next, nil
}

func addU64(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}
