package normalizer

import (
	"strings"

	"github.com/siliconsage/build-engine/internal/models"
)

var categoryAliases = map[string]models.PartCategory{
	"cpu":        models.CategoryCPU,
	"processor":  models.CategoryCPU,
	"gpu":        models.CategoryGPU,
	"video_card": models.CategoryGPU,
	"videocard":  models.CategoryGPU,
	"ram":        models.CategoryRAM,
	"memory":     models.CategoryRAM,
}

// NormalizePart reads a single catalog part for value ranking. Category and a positive benchmark
// are required; a missing price is left at zero. Unrecognised categories pass through lowercased.
func (n *Normalizer) NormalizePart(raw map[string]any) (models.PartSpec, error) {
	if raw == nil {
		raw = map[string]any{}
	}

	category := strings.ToLower(text(raw, "category", "type"))
	if category == "" {
		return models.PartSpec{}, &FieldError{Field: "category", Reason: "is required"}
	}
	if alias, ok := categoryAliases[category]; ok {
		category = string(alias)
	}

	benchmark, ok, err := number(raw, "", "benchmark_score", "benchmarkScore", "benchmark")
	if err != nil {
		return models.PartSpec{}, err
	}
	if !ok {
		return models.PartSpec{}, &FieldError{Field: "benchmark_score", Reason: "is required"}
	}

	price, _, err := number(raw, "", "price", "price_usd", "priceUsd")
	if err != nil {
		return models.PartSpec{}, err
	}

	return models.PartSpec{
		Name:           text(raw, "name"),
		Price:          price,
		BenchmarkScore: benchmark,
		Category:       models.PartCategory(category),
	}, nil
}
