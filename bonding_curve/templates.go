package bonding_curve

import (
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// Template is a preset curve offered to token creators.
type Template struct {
	Name        string
	Label       string
	Description string
	Kind        CurveKind

	InitialPriceSOL string
	FinalPriceSOL   string
	TargetRaiseSOL  uint64
	ReserveRatio    uint8
}

var templates = []Template{
	{
		Name:            "gentle-growth",
		Label:           "Gentle Growth",
		Description:     "Gradual price increase, good for community tokens",
		Kind:            CurveKindLinear,
		InitialPriceSOL: "0.005",
		FinalPriceSOL:   "0.02",
		TargetRaiseSOL:  100,
		ReserveRatio:    50,
	},
	{
		Name:            "modern-growth",
		Label:           "Modern Growth",
		Description:     "Balanced price increase, suitable for most projects",
		Kind:            CurveKindExponential,
		InitialPriceSOL: "0.005",
		FinalPriceSOL:   "0.02",
		TargetRaiseSOL:  100,
		ReserveRatio:    50,
	},
	{
		Name:            "aggressive-growth",
		Label:           "Aggressive Growth",
		Description:     "Rapid price increase, rewards early adopters significantly",
		Kind:            CurveKindExponential,
		InitialPriceSOL: "0.005",
		FinalPriceSOL:   "0.02",
		TargetRaiseSOL:  40,
		ReserveRatio:    50,
	},
	{
		Name:            "early-adopter",
		Label:           "Early Adopter Incentives",
		Description:     "Rapid initial growth that slows over time",
		Kind:            CurveKindLogarithmic,
		InitialPriceSOL: "0.005",
		FinalPriceSOL:   "0.02",
		TargetRaiseSOL:  100,
		ReserveRatio:    50,
	},
}

// Templates lists the preset curves.
func Templates() []Template {
	return append([]Template(nil), templates...)
}

func TemplateNames() []string {
	return lo.Map(templates, func(t Template, _ int) string { return t.Name })
}

// Params builds curve parameters for a token with the given decimals.
func (t Template) Params(tokenDecimals uint8) (CurveParams, error) {
	initial, err := PriceFromSOLPerToken(decimal.RequireFromString(t.InitialPriceSOL), tokenDecimals)
	if err != nil {
		return CurveParams{}, err
	}
	final, err := PriceFromSOLPerToken(decimal.RequireFromString(t.FinalPriceSOL), tokenDecimals)
	if err != nil {
		return CurveParams{}, err
	}
	return CurveParams{
		Kind:          t.Kind,
		InitialPrice:  initial,
		FinalPrice:    final,
		TargetRaise:   t.TargetRaiseSOL * LamportsPerSOL,
		ReserveRatio:  t.ReserveRatio,
		TokenDecimals: tokenDecimals,
	}, nil
}

func LookupTemplate(name string) (Template, bool) {
	return lo.Find(templates, func(t Template) bool { return t.Name == name })
}

// TemplateConfig looks a template up by name and validates it for tokenDecimals.
func TemplateConfig(name string, tokenDecimals uint8) (*CurveConfig, error) {
	t, ok := LookupTemplate(name)
	if !ok {
		return nil, fmt.Errorf("unknown template %q, have %v", name, TemplateNames())
	}
	params, err := t.Params(tokenDecimals)
	if err != nil {
		return nil, err
	}
	return NewCurveConfig(params)
}
