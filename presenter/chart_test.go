package presenter

import (
	"testing"

	"github.com/dmitro3/fairlaunch-go/bonding_curve"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chart(t *testing.T, template string, points int) []ChartPoint {
	t.Helper()
	cfg, err := bonding_curve.TemplateConfig(template, 6)
	require.NoError(t, err)
	series, err := ChartSeries(cfg, points)
	require.NoError(t, err)
	return series
}

func pointStrings(series []ChartPoint) ([]string, []string) {
	raised := lo.Map(series, func(p ChartPoint, _ int) string { return p.Raised.String() })
	prices := lo.Map(series, func(p ChartPoint, _ int) string { return p.Price.String() })
	return raised, prices
}

func TestChartSeriesLinear(t *testing.T) {
	raised, prices := pointStrings(chart(t, "gentle-growth", 4))
	assert.Equal(t, []string{"0", "25", "50", "75", "100"}, raised)
	assert.Equal(t, []string{"0.005", "0.00875", "0.0125", "0.01625", "0.02"}, prices)
}

func TestChartSeriesExponential(t *testing.T) {
	raised, prices := pointStrings(chart(t, "modern-growth", 2))
	assert.Equal(t, []string{"0", "50", "100"}, raised)
	assert.Equal(t, []string{"0.005", "0.01", "0.02"}, prices)
}

func TestChartSeriesLogarithmic(t *testing.T) {
	_, prices := pointStrings(chart(t, "early-adopter", 2))
	assert.Equal(t, []string{"0.005", "0.013774", "0.02"}, prices)
}

func TestChartSeriesSquareLaw(t *testing.T) {
	params, err := bonding_curve.Templates()[0].Params(6)
	require.NoError(t, err)
	params.Kind = bonding_curve.CurveKindSquareLaw
	cfg, err := bonding_curve.NewCurveConfig(params)
	require.NoError(t, err)

	series, err := ChartSeries(cfg, 4)
	require.NoError(t, err)
	_, prices := pointStrings(series)
	assert.Equal(t, []string{"0.005", "0.0125", "0.015607", "0.01799", "0.02"}, prices)
}

func TestChartSeriesShape(t *testing.T) {
	for _, tmpl := range bonding_curve.TemplateNames() {
		series := chart(t, tmpl, 0)
		require.Len(t, series, DefaultChartPoints+1, tmpl)
		for i := 1; i < len(series); i++ {
			assert.True(t, series[i].Price.GreaterThanOrEqual(series[i-1].Price), "%s: point %d", tmpl, i)
			assert.True(t, series[i].Raised.GreaterThan(series[i-1].Raised), "%s: point %d", tmpl, i)
		}
	}

	_, err := ChartSeries(nil, 10)
	assert.ErrorIs(t, err, bonding_curve.ErrInvalidCurveConfig)
}
