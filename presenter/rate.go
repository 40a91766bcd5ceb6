package presenter

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrNoRate      = errors.New("no SOL/USD rate available")
	ErrInvalidRate = errors.New("invalid SOL/USD rate")
)

// RateSource supplies the SOL/USD exchange rate.
type RateSource interface {
	SOLUSD(ctx context.Context) (decimal.Decimal, error)
}

// StaticRate is a fixed rate, for tests and offline use.
type StaticRate decimal.Decimal

func (r StaticRate) SOLUSD(context.Context) (decimal.Decimal, error) {
	rate := decimal.Decimal(r)
	if !rate.IsPositive() {
		return decimal.Zero, ErrInvalidRate
	}
	return rate, nil
}
