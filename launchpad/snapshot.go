package launchpad

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/dmitro3/fairlaunch-go/bonding_curve"
	solanago "github.com/dmitro3/fairlaunch-go/solana"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// retry runs op with exponential backoff. Errors wrapped in backoff.Permanent stop it.
func retry[T any](ctx context.Context, l *Launchpad, what string, op func() (T, error)) (T, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = l.retryDelay
	policy.MaxInterval = l.retryDelay * 10

	notify := func(err error, d time.Duration) {
		l.logger.Warn("retrying after error", zap.String("op", what), zap.Error(err), zap.Duration("backoff", d))
	}
	return backoff.Retry(ctx, op,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(l.retries),
		backoff.WithNotify(notify))
}

type curveRead struct {
	curve *solanago.BondingCurve
	slot  uint64
}

// GetBondingCurve reads the bonding curve account of mint.
//
// Example:
//
// mint := solana.MustPublicKeyFromBase58("BHyqU2m7YeMFM3PaPXd2zdk7ApVtmWVsMiVK148vxRcS")
//
// curve, slot, err := lp.GetBondingCurve(ctx, mint)
func (l *Launchpad) GetBondingCurve(ctx context.Context, mint solana.PublicKey) (*solanago.BondingCurve, uint64, error) {
	address, _, err := solanago.DeriveBondingCurvePDA(l.programID, mint)
	if err != nil {
		return nil, 0, fmt.Errorf("derive bonding curve of %s: %w", mint, err)
	}

	start := l.now()
	read, err := retry(ctx, l, "getBondingCurve", func() (curveRead, error) {
		curve, slot, err := solanago.GetBondingCurve(ctx, l.rpcClient, address, l.commitment)
		switch {
		case errors.Is(err, rpc.ErrNotFound):
			return curveRead{}, backoff.Permanent(fmt.Errorf("%s: %w", address, ErrCurveNotFound))
		case errors.Is(err, solanago.ErrDiscriminatorMismatch):
			return curveRead{}, backoff.Permanent(err)
		case err != nil:
			return curveRead{}, err
		}
		return curveRead{curve: curve, slot: slot}, nil
	})
	l.metrics.ObserveFetch(l.now().Sub(start))
	if err != nil {
		l.logger.Error("failed to read bonding curve", zap.Stringer("mint", mint), zap.Error(err))
		return nil, 0, err
	}
	if !read.curve.Token.Equals(mint) {
		return nil, 0, fmt.Errorf("%s holds %s, want %s: %w", address, read.curve.Token, mint, ErrCurveMismatch)
	}
	return read.curve, read.slot, nil
}

// FetchReserveSnapshot reads the reserve counters of mint's curve, tagged with the
// account address, the RPC context slot and the read time.
func (l *Launchpad) FetchReserveSnapshot(ctx context.Context, mint solana.PublicKey) (bonding_curve.ReserveSnapshot, error) {
	curve, slot, err := l.GetBondingCurve(ctx, mint)
	if err != nil {
		return bonding_curve.ReserveSnapshot{}, err
	}
	snap := SnapshotFromCurve(curve, slot, l.now())
	l.logger.Debug("reserve snapshot",
		zap.Stringer("mint", mint),
		zap.Uint64("slot", slot),
		zap.Uint64("reserveBalance", snap.ReserveBalance),
		zap.Uint64("totalSupply", snap.TotalSupply),
	)
	return snap, nil
}

// SnapshotFromCurve maps a decoded account to the quote engine's snapshot.
func SnapshotFromCurve(curve *solanago.BondingCurve, slot uint64, fetchedAt time.Time) bonding_curve.ReserveSnapshot {
	return bonding_curve.ReserveSnapshot{
		ReserveBalance:    curve.ReserveBalance,
		ReserveTokenUnits: curve.ReserveToken,
		TotalSupply:       curve.TotalSupply,
		Tag: bonding_curve.SnapshotTag{
			Source:    curve.Address.String(),
			Slot:      slot,
			FetchedAt: fetchedAt,
		},
	}
}

// FetchReserveSnapshots reads many curves concurrently. The result is in mints order;
// the first failure cancels the rest.
//
// Example:
//
// snaps, err := lp.FetchReserveSnapshots(ctx, []solana.PublicKey{mintA, mintB})
func (l *Launchpad) FetchReserveSnapshots(ctx context.Context, mints []solana.PublicKey) ([]bonding_curve.ReserveSnapshot, error) {
	snaps := make([]bonding_curve.ReserveSnapshot, len(mints))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, mint := range mints {
		g.Go(func() error {
			snap, err := l.FetchReserveSnapshot(gCtx, mint)
			if err != nil {
				return fmt.Errorf("mint %s: %w", mint, err)
			}
			snaps[i] = snap
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}

// TokenDecimals reads the mint account of mint.
func (l *Launchpad) TokenDecimals(ctx context.Context, mint solana.PublicKey) (uint8, error) {
	tokens, err := retry(ctx, l, "getMint", func() ([]*solanago.Token, error) {
		return solanago.GetMultipleToken(ctx, l.rpcClient, l.commitment, mint)
	})
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 || tokens[0] == nil {
		return 0, fmt.Errorf("%s: %w", mint, ErrMintNotFound)
	}
	return tokens[0].Decimals, nil
}

// ListBondingCurves lists the program's curves, all of them when creator is the zero key.
func (l *Launchpad) ListBondingCurves(ctx context.Context, creator solana.PublicKey) ([]*solanago.BondingCurve, error) {
	return retry(ctx, l, "listBondingCurves", func() ([]*solanago.BondingCurve, error) {
		return solanago.GetBondingCurves(ctx, l.rpcClient, l.programID, creator, l.commitment)
	})
}

// CurrentSlot returns the chain slot at the client's commitment, for CheckSlot.
func (l *Launchpad) CurrentSlot(ctx context.Context) (uint64, error) {
	return retry(ctx, l, "getSlot", func() (uint64, error) {
		return solanago.CurrentSlot(ctx, l.rpcClient, l.commitment)
	})
}
