package bonding_curve

import (
	"fmt"
	"strings"
	"time"

	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
)

type Direction uint8

const (
	// DirectionBuyExact buys an exact token amount.
	DirectionBuyExact Direction = 0
	// DirectionBuyForCost spends an exact lamport amount.
	DirectionBuyForCost Direction = 1
	// DirectionSellExact sells an exact token amount.
	DirectionSellExact Direction = 2
	// DirectionSellForProceeds sells enough tokens to receive an exact lamport amount.
	DirectionSellForProceeds Direction = 3
)

func (d Direction) String() string {
	switch d {
	case DirectionBuyExact:
		return "buyExact"
	case DirectionBuyForCost:
		return "buyForCost"
	case DirectionSellExact:
		return "sellExact"
	case DirectionSellForProceeds:
		return "sellForProceeds"
	default:
		return "unknown"
	}
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buyexact", "buy-exact", "buy":
		return DirectionBuyExact, nil
	case "buyforcost", "buy-for-cost":
		return DirectionBuyForCost, nil
	case "sellexact", "sell-exact", "sell":
		return DirectionSellExact, nil
	case "sellforproceeds", "sell-for-proceeds":
		return DirectionSellForProceeds, nil
	}
	return 0, fmt.Errorf("%q: %w", s, ErrUnknownDirection)
}

func (d Direction) TradeDirection() bc.TradeDirection {
	if d == DirectionSellExact || d == DirectionSellForProceeds {
		return bc.TradeDirectionSell
	}
	return bc.TradeDirectionBuy
}

// QuoteResult is a quote for one trade against one snapshot. For buys the input is
// lamports and the output tokens; for sells the reverse. The side fixed by the request
// is reported as requested.
type QuoteResult struct {
	Direction       Direction
	InputAmount     uint64
	OutputAmount    uint64
	SpotPriceBefore Price
	SpotPriceAfter  Price

	Snapshot SnapshotTag
}

// Tokens returns the token side of the trade.
func (q *QuoteResult) Tokens() uint64 {
	if q.Direction.TradeDirection() == bc.TradeDirectionBuy {
		return q.OutputAmount
	}
	return q.InputAmount
}

// Lamports returns the reserve side of the trade.
func (q *QuoteResult) Lamports() uint64 {
	if q.Direction.TradeDirection() == bc.TradeDirectionBuy {
		return q.InputAmount
	}
	return q.OutputAmount
}

// Age is how old the underlying snapshot is at now.
func (q *QuoteResult) Age(now time.Time) time.Duration {
	if q.Snapshot.FetchedAt.IsZero() {
		return 0
	}
	return now.Sub(q.Snapshot.FetchedAt)
}

// CheckFresh returns ErrStaleSnapshot when the snapshot is older than maxAge.
func (q *QuoteResult) CheckFresh(now time.Time, maxAge time.Duration) error {
	if age := q.Age(now); age > maxAge {
		return fmt.Errorf("snapshot %s is %s old, limit %s: %w", q.Snapshot.Source, age, maxAge, ErrStaleSnapshot)
	}
	return nil
}

// CheckSlot returns ErrStaleSnapshot when the snapshot lags currentSlot by more than maxLag.
func (q *QuoteResult) CheckSlot(currentSlot, maxLag uint64) error {
	if currentSlot > q.Snapshot.Slot && currentSlot-q.Snapshot.Slot > maxLag {
		return fmt.Errorf("snapshot %s at slot %d, current %d: %w", q.Snapshot.Source, q.Snapshot.Slot, currentSlot, ErrStaleSnapshot)
	}
	return nil
}

// Quote answers one quote request. It is the single entry point for callers; the
// direction selects which of the curve operations runs.
//
// Example:
//
// q, err := Quote(cfg, snapshot, DirectionBuyForCost, 1*LamportsPerSOL)
//
// fmt.Println(q.OutputAmount, q.SpotPriceAfter)
func Quote(cfg *CurveConfig, snap ReserveSnapshot, direction Direction, amount uint64) (*QuoteResult, error) {
	before, err := SpotPrice(cfg, snap)
	if err != nil {
		return nil, err
	}

	var tokens, lamports, input, output uint64
	switch direction {
	case DirectionBuyExact:
		tokens = amount
		if lamports, err = BuyCost(cfg, snap, amount); err != nil {
			return nil, err
		}
		input, output = lamports, tokens
	case DirectionBuyForCost:
		lamports = amount
		if tokens, err = BuyAmountForCost(cfg, snap, amount); err != nil {
			return nil, err
		}
		input, output = lamports, tokens
	case DirectionSellExact:
		tokens = amount
		if lamports, err = SellProceeds(cfg, snap, amount); err != nil {
			return nil, err
		}
		input, output = tokens, lamports
	case DirectionSellForProceeds:
		lamports = amount
		if tokens, err = SellAmountForProceeds(cfg, snap, amount); err != nil {
			return nil, err
		}
		input, output = tokens, lamports
	default:
		return nil, quoteError("quote", ErrUnknownDirection, "direction %d", direction)
	}

	next, err := snap.Apply(direction.TradeDirection(), tokens, lamports)
	if err != nil {
		return nil, quoteError("quote", err, "%s %d", direction, amount)
	}
	after, err := SpotPrice(cfg, next)
	if err != nil {
		return nil, err
	}

	return &QuoteResult{
		Direction:       direction,
		InputAmount:     input,
		OutputAmount:    output,
		SpotPriceBefore: before,
		SpotPriceAfter:  after,
		Snapshot:        snap.Tag,
	}, nil
}

// Quoter is implemented by Engine and by test doubles.
type Quoter interface {
	Quote(cfg *CurveConfig, snap ReserveSnapshot, direction Direction, amount uint64) (*QuoteResult, error)
}

// Engine is the stateless Quoter.
type Engine struct{}

func (Engine) Quote(cfg *CurveConfig, snap ReserveSnapshot, direction Direction, amount uint64) (*QuoteResult, error) {
	return Quote(cfg, snap, direction, amount)
}
