package launchpad

import (
	"context"
	"errors"
	"time"

	"github.com/dmitro3/fairlaunch-go/bonding_curve"
	"github.com/dmitro3/fairlaunch-go/metrics"
	solanago "github.com/dmitro3/fairlaunch-go/solana"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"go.uber.org/zap"
)

var (
	ErrCurveNotFound = errors.New("bonding curve not found")
	ErrCurveMismatch = errors.New("bonding curve belongs to another mint")
	ErrMintNotFound  = errors.New("mint not found")
	ErrTemplateKind  = errors.New("template does not price a linear curve")
)

const (
	DefaultRetries    = 3
	DefaultRetryDelay = 200 * time.Millisecond
	DefaultWorkers    = 8
)

// SnapshotFetcher reads the reserve state a quote is computed from.
type SnapshotFetcher interface {
	FetchReserveSnapshot(ctx context.Context, mint solana.PublicKey) (bonding_curve.ReserveSnapshot, error)
}

var _ SnapshotFetcher = (*Launchpad)(nil)

// Options configure a Launchpad. Zero values fall back to the defaults above.
type Options struct {
	ProgramID  solana.PublicKey
	Commitment rpc.CommitmentType
	Retries    uint
	RetryDelay time.Duration
	Workers    int

	Logger  *zap.Logger
	Metrics *metrics.QuoteMetrics
	Quoter  bonding_curve.Quoter
	Now     func() time.Time
}

// Launchpad reads bonding curve accounts of one launchpad program and quotes trades
// against them.
type Launchpad struct {
	rpcClient  solanago.AccountReader
	programID  solana.PublicKey
	commitment rpc.CommitmentType
	retries    uint
	retryDelay time.Duration
	workers    int

	logger  *zap.Logger
	metrics *metrics.QuoteMetrics
	quoter  bonding_curve.Quoter
	now     func() time.Time
}

// NewLaunchpad creates a client. rpcClient is usually an *rpc.Client.
//
// Example:
//
// rpcClient := rpc.New(rpc.MainNetBeta_RPC)
//
// lp, _ := NewLaunchpad(rpcClient, Options{
//
//	ProgramID: solana.MustPublicKeyFromBase58("..."),
//	Logger:    zapLogger,
//
// })
func NewLaunchpad(rpcClient solanago.AccountReader, opts Options) (*Launchpad, error) {
	if rpcClient == nil {
		return nil, errors.New("rpc client is required")
	}
	if opts.ProgramID.IsZero() {
		return nil, errors.New("program id is required")
	}

	l := &Launchpad{
		rpcClient:  rpcClient,
		programID:  opts.ProgramID,
		commitment: opts.Commitment,
		retries:    opts.Retries,
		retryDelay: opts.RetryDelay,
		workers:    opts.Workers,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
		quoter:     opts.Quoter,
		now:        opts.Now,
	}
	if l.commitment == "" {
		l.commitment = rpc.CommitmentFinalized
	}
	if l.retries == 0 {
		l.retries = DefaultRetries
	}
	if l.retryDelay <= 0 {
		l.retryDelay = DefaultRetryDelay
	}
	if l.workers <= 0 {
		l.workers = DefaultWorkers
	}
	if l.logger == nil {
		l.logger = zap.NewNop()
	}
	if l.quoter == nil {
		l.quoter = bonding_curve.Engine{}
	}
	if l.now == nil {
		l.now = time.Now
	}
	l.logger = l.logger.With(zap.String("component", "launchpad"), zap.Stringer("program", l.programID))
	return l, nil
}

func (l *Launchpad) ProgramID() solana.PublicKey {
	return l.programID
}
