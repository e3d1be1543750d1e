package engine

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/siliconsage/build-engine/internal/models"
	"github.com/siliconsage/build-engine/internal/normalizer"
)

// ReferenceSystems are the pre-built platforms a custom build is priced against.
var ReferenceSystems = []models.ReferenceSystem{
	{Name: "PlayStation 5", PriceUSD: 499, FPS1080p: 60},
	{Name: "Xbox Series X", PriceUSD: 499, FPS1080p: 60},
	{Name: "Steam Deck OLED", PriceUSD: 549, FPS1080p: 40},
	{Name: "Budget Gaming Laptop", PriceUSD: 799, FPS1080p: 60},
	{Name: "Mid-Range Gaming Laptop", PriceUSD: 1299, FPS1080p: 100},
}

var (
	hundred              = decimal.NewFromInt(100)
	betterValueMargin    = decimal.NewFromInt(10)
	similarValueMargin   = decimal.NewFromInt(-10)
	alternativeThreshold = decimal.RequireFromString("0.12")
)

// CompareEcosystem compares the build's FPS per dollar against each reference system.
// A zero price yields a zero value score.
func CompareEcosystem(buildPrice, buildFPS1080p float64) (models.EcosystemComparison, error) {
	if !finite(buildPrice) || buildPrice < 0 {
		return models.EcosystemComparison{}, &normalizer.FieldError{Field: "build_price", Value: buildPrice, Reason: "must be a non-negative number"}
	}
	if !finite(buildFPS1080p) || buildFPS1080p < 0 {
		return models.EcosystemComparison{}, &normalizer.FieldError{Field: "build_fps_1080p", Value: buildFPS1080p, Reason: "must be a non-negative number"}
	}

	price := decimal.NewFromFloat(buildPrice)
	fps := decimal.NewFromFloat(buildFPS1080p)
	value := decimal.Zero
	if price.IsPositive() {
		value = fps.Div(price)
	}

	comparisons := make([]models.SystemComparison, 0, len(ReferenceSystems))
	bestIdx := -1
	var bestDiff decimal.Decimal
	for i, system := range ReferenceSystems {
		sysPrice := decimal.NewFromInt(system.PriceUSD)
		sysFPS := decimal.NewFromInt(system.FPS1080p)

		// (value - sysValue) / sysValue * 100
		diff := hundred.Neg()
		if price.IsPositive() {
			diff = fps.Mul(sysPrice).Mul(hundred).Div(price.Mul(sysFPS)).Sub(hundred)
		}
		if bestIdx < 0 || diff.LessThan(bestDiff) {
			bestIdx, bestDiff = i, diff
		}

		comparisons = append(comparisons, models.SystemComparison{
			System:            system.Name,
			Price:             float64(system.PriceUSD),
			FPS1080p:          float64(system.FPS1080p),
			YourValueVsSystem: toFloat(diff.Round(1)),
			Recommendation:    valueRecommendation(diff, system.Name),
		})
	}

	result := models.EcosystemComparison{
		YourBuild: models.BuildValue{
			Price:      buildPrice,
			FPS1080p:   buildFPS1080p,
			ValueScore: toFloat(value.Mul(hundred).Round(2)),
		},
		Comparisons: comparisons,
	}
	if value.LessThan(alternativeThreshold) && bestIdx >= 0 {
		name := ReferenceSystems[bestIdx].Name
		result.BestValueAlternative = &name
	}
	return result, nil
}

func valueRecommendation(diff decimal.Decimal, system string) string {
	switch {
	case diff.GreaterThan(betterValueMargin):
		return "Your build is better value"
	case diff.GreaterThan(similarValueMargin):
		return "Similar value"
	default:
		return fmt.Sprintf("Consider %s instead", system)
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	if math.IsInf(f, 0) {
		return 0
	}
	return f
}
