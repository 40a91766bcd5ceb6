package bonding_curve

import (
	"errors"
	stdmath "math"
	"testing"

	bc "github.com/dmitro3/fairlaunch-go/bonding_curve/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKinds = []CurveKind{CurveKindLinear, CurveKindExponential, CurveKindLogarithmic}

// tradedSnapshot buys units from an empty curve.
func tradedSnapshot(t *testing.T, cfg *CurveConfig, units uint64) ReserveSnapshot {
	t.Helper()
	cost, err := BuyCost(cfg, ReserveSnapshot{}, units)
	require.NoError(t, err)
	snap, err := ReserveSnapshot{}.Apply(bc.TradeDirectionBuy, units, cost)
	require.NoError(t, err)
	return snap
}

func TestSpotPriceFlatCurve(t *testing.T) {
	params := testParams(t, CurveKindLinear)
	params.ReserveRatio = 100
	cfg, err := NewCurveConfig(params)
	require.NoError(t, err)

	snap := ReserveSnapshot{ReserveBalance: 1_000_000_000, ReserveTokenUnits: 100_000_000_000, TotalSupply: 100_000_000_000}

	spot, err := SpotPrice(cfg, snap)
	require.NoError(t, err)
	// 0.01 lamports per base unit
	assert.Equal(t, "10000000000000000", spot.Wad().Dec())

	cost, err := BuyCost(cfg, snap, 10_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), cost)

	proceeds, err := SellProceeds(cfg, snap, 10_000_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), proceeds)
}

func TestUntradedCurveUsesInitialPrice(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := testConfig(t, kind)

			spot, err := SpotPrice(cfg, ReserveSnapshot{})
			require.NoError(t, err)
			assert.Equal(t, 0, spot.Cmp(cfg.InitialPrice()))
			assert.Equal(t, "5000000000000000000", spot.Wad().Dec())

			// one whole token at 0.005 SOL
			cost, err := BuyCost(cfg, ReserveSnapshot{}, 1_000_000)
			require.NoError(t, err)
			assert.InEpsilon(t, 5_000_000, float64(cost), 1e-3)
			assert.GreaterOrEqual(t, cost, uint64(5_000_000))
		})
	}

	cfg := testConfig(t, CurveKindLinear)
	cost, err := BuyCost(cfg, ReserveSnapshot{}, 1_000_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(5_000_000), cost)
}

func TestEmptyReservesUseInitialPrice(t *testing.T) {
	cfg := testConfig(t, CurveKindLinear)
	snaps := []ReserveSnapshot{
		{},
		{ReserveTokenUnits: 100_000_000_000},
		{ReserveTokenUnits: 100_000_000_000, TotalSupply: 5},
		{ReserveBalance: InitialLamportsForPool},
	}
	for i, snap := range snaps {
		assert.Equal(t, i < 2, snap.IsUntraded(), "snapshot %d", i)
		assert.True(t, snap.reservesEmpty(), "snapshot %d", i)

		spot, err := SpotPrice(cfg, snap)
		require.NoError(t, err)
		assert.Equal(t, 0, spot.Cmp(cfg.InitialPrice()), "snapshot %d", i)
	}

	seeded := ReserveSnapshot{ReserveBalance: InitialLamportsForPool, ReserveTokenUnits: 100_000_000_000}
	assert.False(t, seeded.IsUntraded())
	assert.False(t, seeded.reservesEmpty())
}

func TestZeroAmountIdentity(t *testing.T) {
	for _, kind := range allKinds {
		cfg := testConfig(t, kind)
		for _, snap := range []ReserveSnapshot{{}, tradedSnapshot(t, cfg, 1_000_000_000)} {
			cost, err := BuyCost(cfg, snap, 0)
			require.NoError(t, err)
			assert.Zero(t, cost)

			proceeds, err := SellProceeds(cfg, snap, 0)
			require.NoError(t, err)
			assert.Zero(t, proceeds)

			tokens, err := BuyAmountForCost(cfg, snap, 0)
			require.NoError(t, err)
			assert.Zero(t, tokens)

			tokens, err = SellAmountForProceeds(cfg, snap, 0)
			require.NoError(t, err)
			assert.Zero(t, tokens)
		}
	}
}

func TestConstantRatioHalfReserve(t *testing.T) {
	cfg := testConfig(t, CurveKindLinear)
	snap := ReserveSnapshot{ReserveBalance: 1000, ReserveTokenUnits: 100, TotalSupply: 100}

	// 1000 * (110^2 - 100^2) / 100^2
	cost, err := BuyCost(cfg, snap, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(210), cost)

	// 1000 * (100^2 - 90^2) / 100^2
	proceeds, err := SellProceeds(cfg, snap, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(190), proceeds)

	// R / (S * 0.5)
	spot, err := SpotPrice(cfg, snap)
	require.NoError(t, err)
	assert.Equal(t, "20", spot.String())
}

func TestLinearFractionalRatio(t *testing.T) {
	params := testParams(t, CurveKindLinear)
	params.ReserveRatio = 30
	cfg, err := NewCurveConfig(params)
	require.NoError(t, err)

	snap := ReserveSnapshot{ReserveBalance: 1_000_000_000, ReserveTokenUnits: 1_000_000_000, TotalSupply: 1_000_000_000}

	cost, err := BuyCost(cfg, snap, 100_000_000)
	require.NoError(t, err)
	want := 1e9 * (stdmath.Pow(1.1, 100.0/30.0) - 1)
	assert.InEpsilon(t, want, float64(cost), 1e-9)

	proceeds, err := SellProceeds(cfg, snap, 100_000_000)
	require.NoError(t, err)
	want = 1e9 * (1 - stdmath.Pow(0.9, 100.0/30.0))
	assert.InEpsilon(t, want, float64(proceeds), 1e-9)
}

func TestExponentialReachesTarget(t *testing.T) {
	cfg := testConfig(t, CurveKindExponential)

	// k = (p1 - p0) / T per base unit, the final price is reached at ln(p1/p0)/k
	k := 15.0 / 1e11
	horizon := uint64(stdmath.Log(4) / k)

	cost, err := BuyCost(cfg, ReserveSnapshot{}, horizon)
	require.NoError(t, err)
	assert.InEpsilon(t, float64(cfg.TargetRaise()), float64(cost), 1e-6)

	spot, err := SpotPrice(cfg, ReserveSnapshot{TotalSupply: horizon})
	require.NoError(t, err)
	final, _ := cfg.FinalPrice().Decimal().Float64()
	got, _ := spot.Decimal().Float64()
	assert.InEpsilon(t, final, got, 1e-6)
}

func TestLogarithmicReachesTarget(t *testing.T) {
	cfg := testConfig(t, CurveKindLogarithmic)
	horizon := cfg.logHorizon.Uint64()

	cost, err := BuyCost(cfg, ReserveSnapshot{}, horizon)
	require.NoError(t, err)
	assert.InEpsilon(t, float64(cfg.TargetRaise()), float64(cost), 1e-6)

	spot, err := SpotPrice(cfg, ReserveSnapshot{TotalSupply: horizon})
	require.NoError(t, err)
	final, _ := cfg.FinalPrice().Decimal().Float64()
	got, _ := spot.Decimal().Float64()
	assert.InEpsilon(t, final, got, 1e-6)

	// growth slows down: the second half of the horizon costs less than twice the first
	half := horizon / 2
	first, err := BuyCost(cfg, ReserveSnapshot{}, half)
	require.NoError(t, err)
	second, err := BuyCost(cfg, ReserveSnapshot{TotalSupply: half}, half)
	require.NoError(t, err)
	assert.Greater(t, second, first)
	assert.Less(t, second, 2*first)
}

func TestMonotonicity(t *testing.T) {
	amounts := []uint64{1, 10, 1_000, 1_000_000, 100_000_000, 1_000_000_000}
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := testConfig(t, kind)
			snap := tradedSnapshot(t, cfg, 2_000_000_000)

			var lastCost, lastProceeds uint64
			for _, amount := range amounts {
				cost, err := BuyCost(cfg, snap, amount)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, cost, lastCost, "buy %d", amount)
				lastCost = cost

				proceeds, err := SellProceeds(cfg, snap, amount)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, proceeds, lastProceeds, "sell %d", amount)
				lastProceeds = proceeds
			}

			before, err := SpotPrice(cfg, snap)
			require.NoError(t, err)
			next := tradedSnapshotFrom(t, cfg, snap, 1_000_000_000)
			after, err := SpotPrice(cfg, next)
			require.NoError(t, err)
			assert.Equal(t, 1, after.Cmp(before))
		})
	}
}

func tradedSnapshotFrom(t *testing.T, cfg *CurveConfig, snap ReserveSnapshot, units uint64) ReserveSnapshot {
	t.Helper()
	cost, err := BuyCost(cfg, snap, units)
	require.NoError(t, err)
	next, err := snap.Apply(bc.TradeDirectionBuy, units, cost)
	require.NoError(t, err)
	return next
}

func TestRoundTripNeverProfits(t *testing.T) {
	const n = 100_000_000
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := testConfig(t, kind)
			snap := tradedSnapshot(t, cfg, 1_000_000_000)

			cost, err := BuyCost(cfg, snap, n)
			require.NoError(t, err)
			proceeds, err := SellProceeds(cfg, snap, n)
			require.NoError(t, err)
			assert.LessOrEqual(t, proceeds, cost)

			next, err := snap.Apply(bc.TradeDirectionBuy, n, cost)
			require.NoError(t, err)
			back, err := SellProceeds(cfg, next, n)
			require.NoError(t, err)
			assert.LessOrEqual(t, back, cost)
		})
	}
}

func TestReserveConservation(t *testing.T) {
	for _, kind := range allKinds {
		cfg := testConfig(t, kind)
		snap := tradedSnapshot(t, cfg, 3_000_000_000)
		snap = tradedSnapshotFrom(t, cfg, snap, 500_000_000)

		proceeds, err := SellProceeds(cfg, snap, snap.TotalSupply)
		require.NoError(t, err, kind.String())
		assert.LessOrEqual(t, proceeds, snap.ReserveBalance, kind.String())
	}
}

func TestInverseOperations(t *testing.T) {
	budgets := []uint64{1, 7, 1_000_000, LamportsPerSOL, 25 * LamportsPerSOL}
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := testConfig(t, kind)
			for _, snap := range []ReserveSnapshot{{}, tradedSnapshot(t, cfg, 1_000_000_000)} {
				for _, budget := range budgets {
					tokens, err := BuyAmountForCost(cfg, snap, budget)
					require.NoError(t, err)

					cost, err := BuyCost(cfg, snap, tokens)
					require.NoError(t, err)
					assert.LessOrEqual(t, cost, budget)

					more, err := BuyCost(cfg, snap, tokens+1)
					require.NoError(t, err)
					assert.Greater(t, more, budget)
				}

				for _, tokens := range []uint64{1, 1_000, 1_000_000, 500_000_000} {
					cost, err := BuyCost(cfg, snap, tokens)
					require.NoError(t, err)
					got, err := BuyAmountForCost(cfg, snap, cost)
					require.NoError(t, err)
					assert.Equal(t, tokens, got)
				}
			}
		})
	}
}

func TestSellAmountForProceeds(t *testing.T) {
	for _, kind := range allKinds {
		t.Run(kind.String(), func(t *testing.T) {
			cfg := testConfig(t, kind)
			snap := tradedSnapshot(t, cfg, 2_000_000_000)

			for _, want := range []uint64{1, 1_000, 1_000_000, snap.ReserveBalance / 2} {
				tokens, err := SellAmountForProceeds(cfg, snap, want)
				require.NoError(t, err)

				proceeds, err := SellProceeds(cfg, snap, tokens)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, proceeds, want)

				if tokens > 0 {
					less, err := SellProceeds(cfg, snap, tokens-1)
					require.NoError(t, err)
					assert.Less(t, less, want)
				}
			}

			for _, tokens := range []uint64{1_000, 1_000_000, 500_000_000} {
				proceeds, err := SellProceeds(cfg, snap, tokens)
				require.NoError(t, err)
				if proceeds == 0 {
					continue
				}
				got, err := SellAmountForProceeds(cfg, snap, proceeds)
				require.NoError(t, err)
				assert.LessOrEqual(t, got, tokens)
			}
		})
	}
}

func TestInsufficientReserve(t *testing.T) {
	for _, kind := range allKinds {
		cfg := testConfig(t, kind)
		snap := tradedSnapshot(t, cfg, 1_000_000_000)

		_, err := SellProceeds(cfg, snap, snap.TotalSupply+1)
		assert.ErrorIs(t, err, ErrInsufficientReserve, kind.String())

		_, err = SellAmountForProceeds(cfg, snap, snap.ReserveBalance+1)
		assert.ErrorIs(t, err, ErrInsufficientReserve, kind.String())
	}

	// the curve claims more than the account holds
	cfg := testConfig(t, CurveKindExponential)
	snap := ReserveSnapshot{ReserveBalance: 1, TotalSupply: 1_000_000_000}
	_, err := SellProceeds(cfg, snap, 1_000_000_000)
	assert.ErrorIs(t, err, ErrInsufficientReserve)

	var qe *QuoteError
	require.True(t, errors.As(err, &qe))
	assert.Equal(t, "sellProceeds", qe.Op)
}

func TestArithmeticOverflow(t *testing.T) {
	params := testParams(t, CurveKindLinear)
	params.ReserveRatio = 1
	cfg, err := NewCurveConfig(params)
	require.NoError(t, err)

	// (1 + 10^12)^100 does not fit
	snap := ReserveSnapshot{ReserveBalance: 1_000_000_000, ReserveTokenUnits: 1_000_000, TotalSupply: 1_000_000}
	_, err = BuyCost(cfg, snap, 1_000_000_000_000_000_000)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	// the cost fits in 256 bits but not in a lamport amount
	cfg = testConfig(t, CurveKindLinear)
	snap = ReserveSnapshot{ReserveBalance: 1_000_000_000_000_000_000, ReserveTokenUnits: 1, TotalSupply: 1}
	_, err = BuyCost(cfg, snap, 1_000_000_000)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	// the supply counter itself would wrap
	cfg = testConfig(t, CurveKindExponential)
	_, err = BuyCost(cfg, ReserveSnapshot{TotalSupply: ^uint64(0)}, 1)
	assert.ErrorIs(t, err, ErrArithmeticOverflow)

	// an unbounded budget stops at the largest representable purchase
	tokens, err := BuyAmountForCost(testConfig(t, CurveKindExponential), ReserveSnapshot{}, ^uint64(0))
	require.NoError(t, err)
	assert.Greater(t, tokens, uint64(0))
}

func TestNilConfig(t *testing.T) {
	_, err := SpotPrice(nil, ReserveSnapshot{})
	assert.ErrorIs(t, err, ErrInvalidCurveConfig)
	_, err = BuyCost(nil, ReserveSnapshot{}, 1)
	assert.ErrorIs(t, err, ErrInvalidCurveConfig)
	_, err = SellProceeds(nil, ReserveSnapshot{}, 1)
	assert.ErrorIs(t, err, ErrInvalidCurveConfig)
	_, err = BuyAmountForCost(nil, ReserveSnapshot{}, 1)
	assert.ErrorIs(t, err, ErrInvalidCurveConfig)
	_, err = SellAmountForProceeds(nil, ReserveSnapshot{}, 1)
	assert.ErrorIs(t, err, ErrInvalidCurveConfig)
}
