package engine

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/siliconsage/build-engine/internal/models"
	"github.com/siliconsage/build-engine/internal/normalizer"
)

// ReferenceParts is the catalog parts are ranked against. Tiers are curated, not derived.
var ReferenceParts = []models.ReferencePart{
	{Name: "Intel Core i3-12100F", Category: models.CategoryCPU, PriceUSD: 109, Benchmark: 9500, Tier: models.TierBudget},
	{Name: "AMD Ryzen 5 5600", Category: models.CategoryCPU, PriceUSD: 149, Benchmark: 15000, Tier: models.TierBudget},
	{Name: "Intel Core i5-12400F", Category: models.CategoryCPU, PriceUSD: 179, Benchmark: 17500, Tier: models.TierMidrange},
	{Name: "AMD Ryzen 5 7600X", Category: models.CategoryCPU, PriceUSD: 249, Benchmark: 22000, Tier: models.TierMidrange},
	{Name: "Intel Core i7-13700K", Category: models.CategoryCPU, PriceUSD: 409, Benchmark: 35000, Tier: models.TierHighEnd},
	{Name: "AMD Ryzen 7 7800X3D", Category: models.CategoryCPU, PriceUSD: 449, Benchmark: 34000, Tier: models.TierHighEnd},
	{Name: "Intel Core i9-14900K", Category: models.CategoryCPU, PriceUSD: 589, Benchmark: 45000, Tier: models.TierEnthusiast},
	{Name: "AMD Ryzen 9 7950X3D", Category: models.CategoryCPU, PriceUSD: 699, Benchmark: 48000, Tier: models.TierEnthusiast},

	{Name: "Intel Arc A580", Category: models.CategoryGPU, PriceUSD: 179, Benchmark: 8500, Tier: models.TierBudget},
	{Name: "AMD RX 6650 XT", Category: models.CategoryGPU, PriceUSD: 239, Benchmark: 11000, Tier: models.TierBudget},
	{Name: "NVIDIA RTX 4060", Category: models.CategoryGPU, PriceUSD: 299, Benchmark: 13000, Tier: models.TierMidrange},
	{Name: "AMD RX 7700 XT", Category: models.CategoryGPU, PriceUSD: 449, Benchmark: 18000, Tier: models.TierMidrange},
	{Name: "NVIDIA RTX 4070 Super", Category: models.CategoryGPU, PriceUSD: 599, Benchmark: 22000, Tier: models.TierHighEnd},
	{Name: "AMD RX 7900 XT", Category: models.CategoryGPU, PriceUSD: 699, Benchmark: 24000, Tier: models.TierHighEnd},
	{Name: "NVIDIA RTX 4080 Super", Category: models.CategoryGPU, PriceUSD: 999, Benchmark: 28000, Tier: models.TierEnthusiast},
	{Name: "NVIDIA RTX 4090", Category: models.CategoryGPU, PriceUSD: 1599, Benchmark: 36000, Tier: models.TierEnthusiast},

	{Name: "Corsair Vengeance 16GB DDR4-3200", Category: models.CategoryRAM, PriceUSD: 45, Benchmark: 3200, Tier: models.TierBudget},
	{Name: "G.Skill Ripjaws 32GB DDR4-3600", Category: models.CategoryRAM, PriceUSD: 79, Benchmark: 3600, Tier: models.TierMidrange},
	{Name: "Kingston Fury 32GB DDR5-5600", Category: models.CategoryRAM, PriceUSD: 119, Benchmark: 5600, Tier: models.TierHighEnd},
	{Name: "G.Skill Trident Z5 64GB DDR5-6400", Category: models.CategoryRAM, PriceUSD: 249, Benchmark: 6400, Tier: models.TierEnthusiast},
}

// Tiers from cheapest to most premium.
var valueTiers = []models.ValueTier{models.TierBudget, models.TierMidrange, models.TierHighEnd, models.TierEnthusiast}

// Benchmark centres for categories with no reference parts in a tier.
var defaultTierCentres = map[models.ValueTier]float64{
	models.TierBudget:     5500,
	models.TierMidrange:   13000,
	models.TierHighEnd:    24000,
	models.TierEnthusiast: 39000,
}

const (
	maxSimilarParts = 5
	neutralScore    = 50.0
)

var fifty = decimal.NewFromInt(50)

// ClassifyValueTier places a part in the tier whose benchmark centre is nearest, then scores its
// benchmark per dollar against the reference parts of that tier: 50 is tier average, clamped to
// [0, 100]. Parts without a price or without reference peers score 50.
func ClassifyValueTier(part models.PartSpec) (models.ValueTierResult, error) {
	if part.Category == "" {
		return models.ValueTierResult{}, &normalizer.FieldError{Field: "category", Reason: "is required"}
	}
	if !finite(part.BenchmarkScore) || part.BenchmarkScore <= 0 {
		return models.ValueTierResult{}, &normalizer.FieldError{Field: "benchmark_score", Value: part.BenchmarkScore, Reason: "must be a positive number"}
	}
	if !finite(part.Price) || part.Price < 0 {
		return models.ValueTierResult{}, &normalizer.FieldError{Field: "price", Value: part.Price, Reason: "must be a non-negative number"}
	}

	category := models.PartCategory(strings.ToLower(string(part.Category)))
	tier := nearestTier(category, part.BenchmarkScore)

	peers := make([]models.ReferencePart, 0, 2)
	for _, ref := range ReferenceParts {
		if ref.Category == category && ref.Tier == tier {
			peers = append(peers, ref)
		}
	}

	similar := make([]string, 0, maxSimilarParts)
	for _, ref := range peers {
		if len(similar) == maxSimilarParts {
			break
		}
		if strings.EqualFold(ref.Name, part.Name) {
			continue
		}
		similar = append(similar, ref.Name)
	}

	return models.ValueTierResult{
		Tier:         tier,
		ValueScore:   valueScore(part, peers),
		SimilarParts: similar,
	}, nil
}

// nearestTier picks the tier with the closest benchmark centre; ties go to the cheaper tier.
func nearestTier(category models.PartCategory, benchmark float64) models.ValueTier {
	centres := tierCentres(category)
	best := valueTiers[0]
	bestDist := math.Inf(1)
	for _, tier := range valueTiers {
		if dist := math.Abs(benchmark - centres[tier]); dist < bestDist {
			best, bestDist = tier, dist
		}
	}
	return best
}

// tierCentres averages the reference benchmarks per tier within category.
func tierCentres(category models.PartCategory) map[models.ValueTier]float64 {
	sums := make(map[models.ValueTier]float64, len(valueTiers))
	counts := make(map[models.ValueTier]int, len(valueTiers))
	for _, ref := range ReferenceParts {
		if ref.Category == category {
			sums[ref.Tier] += float64(ref.Benchmark)
			counts[ref.Tier]++
		}
	}
	centres := make(map[models.ValueTier]float64, len(valueTiers))
	for _, tier := range valueTiers {
		if counts[tier] == 0 {
			centres[tier] = defaultTierCentres[tier]
			continue
		}
		centres[tier] = sums[tier] / float64(counts[tier])
	}
	return centres
}

func valueScore(part models.PartSpec, peers []models.ReferencePart) float64 {
	if len(peers) == 0 {
		return neutralScore
	}
	value := decimal.Zero
	if part.Price > 0 {
		value = decimal.NewFromFloat(part.BenchmarkScore).Div(decimal.NewFromFloat(part.Price))
	}

	total := decimal.Zero
	for _, ref := range peers {
		total = total.Add(decimal.NewFromInt(ref.Benchmark).Div(decimal.NewFromInt(ref.PriceUSD)))
	}
	avg := total.Div(decimal.NewFromInt(int64(len(peers))))
	if !avg.IsPositive() {
		return neutralScore
	}

	score := value.Div(avg).Mul(fifty).Add(fifty)
	score = decimal.Min(decimal.Max(score, decimal.Zero), hundred)
	return toFloat(score.Round(1))
}
