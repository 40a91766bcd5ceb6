package launchpad

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitro3/fairlaunch-go/bonding_curve"
	"github.com/dmitro3/fairlaunch-go/metrics"
	solanago "github.com/dmitro3/fairlaunch-go/solana"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	testProgram = solana.MustPublicKeyFromBase58("dbcij3LWUppWqq96dh6gJWwBifmcGfLSB5D4DuSMaqN")
	testMint    = solana.MustPublicKeyFromBase58("So11111111111111111111111111111111111111112")
	testCreator = solana.MustPublicKeyFromBase58("ATokenGPvbdGVxr1b2hvZbsiqW5xWH25efTNsLJA8knL")
	testNow     = time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
)

// fakeReader serves accounts from memory. failures makes the first calls fail.
type fakeReader struct {
	mu       sync.Mutex
	accounts map[solana.PublicKey]*rpc.Account
	slot     uint64
	failures int
	calls    int
}

func (f *fakeReader) fail() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("connection reset")
	}
	return nil
}

func (f *fakeReader) GetAccountInfoWithOpts(_ context.Context, account solana.PublicKey, _ *rpc.GetAccountInfoOpts) (*rpc.GetAccountInfoResult, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	acc, ok := f.accounts[account]
	if !ok {
		return nil, rpc.ErrNotFound
	}
	return &rpc.GetAccountInfoResult{RPCContext: rpc.RPCContext{Context: rpc.Context{Slot: f.slot}}, Value: acc}, nil
}

func (f *fakeReader) GetMultipleAccountsWithOpts(_ context.Context, accounts []solana.PublicKey, _ *rpc.GetMultipleAccountsOpts) (*rpc.GetMultipleAccountsResult, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	out := &rpc.GetMultipleAccountsResult{}
	for _, a := range accounts {
		out.Value = append(out.Value, f.accounts[a])
	}
	return out, nil
}

func (f *fakeReader) GetProgramAccountsWithOpts(_ context.Context, _ solana.PublicKey, _ *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	var out rpc.GetProgramAccountsResult
	for key, acc := range f.accounts {
		if _, err := new(solanago.BondingCurveLayout).Decode(acc.Data.GetBinary()); err == nil {
			out = append(out, &rpc.KeyedAccount{Pubkey: key, Account: acc})
		}
	}
	return out, nil
}

func (f *fakeReader) GetSlot(context.Context, rpc.CommitmentType) (uint64, error) {
	if err := f.fail(); err != nil {
		return 0, err
	}
	return f.slot, nil
}

func (f *fakeReader) addCurve(t *testing.T, mint solana.PublicKey, curve solanago.BondingCurve) solana.PublicKey {
	t.Helper()
	address, bump, err := solanago.DeriveBondingCurvePDA(testProgram, mint)
	require.NoError(t, err)
	curve.Token = mint
	curve.Bump = bump
	data, err := new(solanago.BondingCurveLayout).Encode(&curve)
	require.NoError(t, err)
	f.accounts[address] = &rpc.Account{Owner: testProgram, Data: rpc.DataBytesOrJSONFromBytes(data)}
	return address
}

func (f *fakeReader) addMint(t *testing.T, mint solana.PublicKey, decimals uint8) {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, binary.NewBinEncoder(buf).Encode(&token.Mint{Decimals: decimals, IsInitialized: true}))
	f.accounts[mint] = &rpc.Account{Owner: solana.TokenProgramID, Data: rpc.DataBytesOrJSONFromBytes(buf.Bytes())}
}

func newTestLaunchpad(t *testing.T, reader *fakeReader, m *metrics.QuoteMetrics) *Launchpad {
	t.Helper()
	lp, err := NewLaunchpad(reader, Options{
		ProgramID:  testProgram,
		Retries:    3,
		RetryDelay: time.Millisecond,
		Workers:    2,
		Logger:     zap.NewNop(),
		Metrics:    m,
		Now:        func() time.Time { return testNow },
	})
	require.NoError(t, err)
	return lp
}

func tradedCurve() solanago.BondingCurve {
	return solanago.BondingCurve{
		Creator:        testCreator,
		TotalSupply:    1_000_000_000,
		ReserveBalance: 5_000_000_000,
		ReserveToken:   1_000_000_000,
		ReserveRatio:   5000,
	}
}

func TestNewLaunchpad(t *testing.T) {
	_, err := NewLaunchpad(nil, Options{ProgramID: testProgram})
	assert.Error(t, err)
	_, err = NewLaunchpad(&fakeReader{}, Options{})
	assert.Error(t, err)

	lp, err := NewLaunchpad(&fakeReader{}, Options{ProgramID: testProgram})
	require.NoError(t, err)
	assert.Equal(t, testProgram, lp.ProgramID())
	assert.Equal(t, rpc.CommitmentFinalized, lp.commitment)
	assert.Equal(t, uint(DefaultRetries), lp.retries)
	assert.Equal(t, DefaultWorkers, lp.workers)
}

func TestFetchReserveSnapshot(t *testing.T) {
	reader := &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}, slot: 77, failures: 2}
	address := reader.addCurve(t, testMint, tradedCurve())
	lp := newTestLaunchpad(t, reader, nil)

	snap, err := lp.FetchReserveSnapshot(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, 3, reader.calls)
	assert.Equal(t, bonding_curve.ReserveSnapshot{
		ReserveBalance:    5_000_000_000,
		ReserveTokenUnits: 1_000_000_000,
		TotalSupply:       1_000_000_000,
		Tag:               bonding_curve.SnapshotTag{Source: address.String(), Slot: 77, FetchedAt: testNow},
	}, snap)
}

func TestFetchReserveSnapshotErrors(t *testing.T) {
	reader := &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}}
	lp := newTestLaunchpad(t, reader, nil)

	_, err := lp.FetchReserveSnapshot(context.Background(), testMint)
	assert.ErrorIs(t, err, ErrCurveNotFound)
	assert.Equal(t, 1, reader.calls, "a missing account is not retried")

	reader = &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}, failures: 10}
	reader.addCurve(t, testMint, tradedCurve())
	lp = newTestLaunchpad(t, reader, nil)
	_, err = lp.FetchReserveSnapshot(context.Background(), testMint)
	assert.Error(t, err)
	assert.Equal(t, 3, reader.calls)

	// an account stored under the mint's address but for another token
	reader = &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}}
	address := reader.addCurve(t, testMint, tradedCurve())
	other := reader.addCurve(t, testCreator, tradedCurve())
	reader.accounts[address] = reader.accounts[other]
	lp = newTestLaunchpad(t, reader, nil)
	_, err = lp.FetchReserveSnapshot(context.Background(), testMint)
	assert.ErrorIs(t, err, ErrCurveMismatch)
}

func TestFetchReserveSnapshots(t *testing.T) {
	reader := &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}, slot: 5}
	a := reader.addCurve(t, testMint, tradedCurve())
	second := tradedCurve()
	second.ReserveBalance = 1
	b := reader.addCurve(t, testCreator, second)
	lp := newTestLaunchpad(t, reader, nil)

	snaps, err := lp.FetchReserveSnapshots(context.Background(), []solana.PublicKey{testMint, testCreator})
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, a.String(), snaps[0].Tag.Source)
	assert.Equal(t, b.String(), snaps[1].Tag.Source)
	assert.Equal(t, uint64(1), snaps[1].ReserveBalance)

	_, err = lp.FetchReserveSnapshots(context.Background(), []solana.PublicKey{testMint, testProgram})
	assert.ErrorIs(t, err, ErrCurveNotFound)
}

func TestQuote(t *testing.T) {
	reader := &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}, slot: 9}
	reader.addCurve(t, testMint, tradedCurve())
	reg := prometheus.NewRegistry()
	m, err := metrics.NewQuoteMetrics(reg)
	require.NoError(t, err)
	lp := newTestLaunchpad(t, reader, m)

	cfg, err := bonding_curve.TemplateConfig("gentle-growth", 6)
	require.NoError(t, err)

	buy, snap, err := lp.BuyQuote(context.Background(), testMint, cfg, bonding_curve.LamportsPerSOL)
	require.NoError(t, err)
	want, err := bonding_curve.Quote(cfg, snap, bonding_curve.DirectionBuyForCost, bonding_curve.LamportsPerSOL)
	require.NoError(t, err)
	assert.Equal(t, want, buy)
	assert.Equal(t, uint64(9), buy.Snapshot.Slot)

	sell, _, err := lp.SellQuote(context.Background(), testMint, cfg, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), sell.InputAmount)
	assert.Greater(t, sell.OutputAmount, uint64(0))

	_, _, err = lp.SellQuote(context.Background(), testMint, cfg, 2_000_000_000)
	assert.ErrorIs(t, err, bonding_curve.ErrInsufficientReserve)

	expected := `
# HELP fairlaunch_quotes_total Quotes answered, by direction and result.
# TYPE fairlaunch_quotes_total counter
fairlaunch_quotes_total{direction="buyForCost",result="ok"} 1
fairlaunch_quotes_total{direction="sellExact",result="error"} 1
fairlaunch_quotes_total{direction="sellExact",result="ok"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "fairlaunch_quotes_total"))
}

func TestCurveConfigFromChain(t *testing.T) {
	reader := &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}}
	curve := tradedCurve()
	curve.ReserveRatio = 2500
	reader.addCurve(t, testMint, curve)
	reader.addMint(t, testMint, 9)
	lp := newTestLaunchpad(t, reader, nil)

	tmpl, err := bonding_curve.TemplateConfig("modern-growth", 9)
	require.NoError(t, err)

	cfg, err := lp.CurveConfigFromChain(context.Background(), testMint, tmpl.Params())
	require.NoError(t, err)
	assert.Equal(t, bonding_curve.CurveKindSquareLaw, cfg.Kind())
	assert.Equal(t, uint16(2500), cfg.ReserveRatioBps())
	assert.Equal(t, uint8(25), cfg.ReserveRatio())
	assert.Equal(t, uint8(9), cfg.TokenDecimals())

	decimals, err := lp.TokenDecimals(context.Background(), testMint)
	require.NoError(t, err)
	assert.Equal(t, uint8(9), decimals)

	_, err = lp.TokenDecimals(context.Background(), testCreator)
	assert.ErrorIs(t, err, ErrMintNotFound)

	flat := tradedCurve()
	flat.ReserveRatio = 0
	reader.addCurve(t, testCreator, flat)
	reader.addMint(t, testCreator, 9)
	_, err = lp.CurveConfigFromChain(context.Background(), testCreator, tmpl.Params())
	assert.ErrorIs(t, err, bonding_curve.ErrInvalidCurveConfig)
}

func TestChainCurveQuotesLikeProgram(t *testing.T) {
	reader := &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}, slot: 7}
	// freshly seeded: 0.01 SOL and 1e11 tokens in the pool, nothing sold yet
	reader.addCurve(t, testMint, solanago.BondingCurve{
		Creator:        testCreator,
		ReserveBalance: bonding_curve.InitialLamportsForPool,
		ReserveToken:   100_000_000_000,
		ReserveRatio:   5000,
	})
	reader.addMint(t, testMint, 9)
	lp := newTestLaunchpad(t, reader, nil)

	tmpl, ok := bonding_curve.LookupTemplate("gentle-growth")
	require.True(t, ok)
	cfg, err := lp.TemplateConfigFromChain(context.Background(), testMint, tmpl)
	require.NoError(t, err)

	// ((0+a)^2 - 0^2) / 2 / (5000*10000)
	for amount, cost := range map[uint64]uint64{
		1_000_000:     10_000,
		100_000_000:   100_000_000,
		1_000_000_000: 10_000_000_000,
	} {
		result, _, err := lp.Quote(context.Background(), testMint, cfg, bonding_curve.DirectionBuyExact, amount)
		require.NoError(t, err)
		assert.Equal(t, cost, result.InputAmount, "amount %d", amount)
	}
}

func TestTemplateConfigFromChain(t *testing.T) {
	reader := &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}}
	reader.addCurve(t, testMint, tradedCurve())
	reader.addMint(t, testMint, 6)
	lp := newTestLaunchpad(t, reader, nil)

	for _, name := range []string{"modern-growth", "aggressive-growth", "early-adopter"} {
		tmpl, ok := bonding_curve.LookupTemplate(name)
		require.True(t, ok)
		_, err := lp.TemplateConfigFromChain(context.Background(), testMint, tmpl)
		assert.ErrorIs(t, err, ErrTemplateKind, name)
	}
	assert.Zero(t, reader.calls)

	tmpl, _ := bonding_curve.LookupTemplate("gentle-growth")
	cfg, err := lp.TemplateConfigFromChain(context.Background(), testMint, tmpl)
	require.NoError(t, err)
	assert.Equal(t, bonding_curve.CurveKindSquareLaw, cfg.Kind())
	assert.Equal(t, uint16(5000), cfg.ReserveRatioBps())
	assert.Equal(t, uint8(6), cfg.TokenDecimals())
	assert.Equal(t, 2, reader.calls, "one mint read and one curve read")
}

func TestListBondingCurvesAndSlot(t *testing.T) {
	reader := &fakeReader{accounts: map[solana.PublicKey]*rpc.Account{}, slot: 12, failures: 1}
	reader.addCurve(t, testMint, tradedCurve())
	reader.addMint(t, testMint, 6)
	lp := newTestLaunchpad(t, reader, nil)

	curves, err := lp.ListBondingCurves(context.Background(), testCreator)
	require.NoError(t, err)
	require.Len(t, curves, 1)
	assert.Equal(t, testMint, curves[0].Token)

	slot, err := lp.CurrentSlot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12), slot)
}
