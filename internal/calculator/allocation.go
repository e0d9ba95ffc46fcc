package calculator

import (
	"math"

	"github.com/mmynk/mandato360/internal/models"
)

// overflowEpsilon absorbs float noise when comparing the distributed total
// against the pool size.
const overflowEpsilon = 1e-9

// Share is the computed allocation for one contributor.
type Share struct {
	Contributor   models.Contributor `json:"contributor"`
	EconomicValue float64            `json:"economicValue"`
	SharePercent  float64            `json:"sharePercent"`
}

// CategoryUsage compares the aggregate share of one category with its cap.
type CategoryUsage struct {
	Category   models.CategoryCap `json:"category"`
	TotalShare float64            `json:"totalShare"`

	// OverCap is advisory: allocations are never clamped to the cap.
	OverCap bool `json:"overCap"`
}

// Simulation bundles every figure of the Slice Pie simulator for one input.
type Simulation struct {
	Pool               models.Pool     `json:"pool"`
	TotalEconomicValue float64         `json:"totalEconomicValue"`
	Shares             []Share         `json:"shares"`
	Categories         []CategoryUsage `json:"categories"`
	TotalDistributed   float64         `json:"totalDistributed"`
	RemainingPool      float64         `json:"remainingPool"`
	Overflow           bool            `json:"overflow"`
}

// EconomicValue normalizes a contribution to a monetary-equivalent number.
// Locked contributors are worth 0. Hours and deliveries are
// quantity × valueUnit × weight; capital is the quantity itself.
// Negative or zero inputs propagate unchanged; a product that overflows to
// ±Inf (or a NaN input) counts as 0.
func EconomicValue(c models.Contributor) float64 {
	if c.IsLocked {
		return 0
	}
	var v float64
	switch c.Type {
	case models.ContributionHours, models.ContributionDelivery:
		v = c.Quantity * c.ValueUnit * c.Weight
	case models.ContributionCapital:
		v = c.Quantity
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0
	}
	return v
}

// ComputeShares splits the pool proportionally to economic value.
// Based on the algorithm: share = value / total_value × pool_size.
// When the total is not positive every share is 0. Input order is kept.
func ComputeShares(contributors []models.Contributor, poolSizePercent float64) []Share {
	shares := make([]Share, len(contributors))

	var total float64
	for i, c := range contributors {
		shares[i] = Share{Contributor: c, EconomicValue: EconomicValue(c)}
		total += shares[i].EconomicValue
	}

	if total <= 0 || math.IsInf(total, 0) {
		return shares
	}

	for i := range shares {
		shares[i].SharePercent = shares[i].EconomicValue / total * poolSizePercent
	}
	return shares
}

// ComputeCategoryUsage sums share percentages per category, in category order.
// Contributors whose category is unknown are not counted anywhere.
func ComputeCategoryUsage(shares []Share, categories []models.CategoryCap) []CategoryUsage {
	byCategory := make(map[string]float64, len(categories))
	for _, s := range shares {
		byCategory[s.Contributor.Category] += s.SharePercent
	}

	usage := make([]CategoryUsage, len(categories))
	for i, cat := range categories {
		total := byCategory[cat.ID]
		usage[i] = CategoryUsage{
			Category:   cat,
			TotalShare: total,
			OverCap:    total > cat.MaxPercent+overflowEpsilon,
		}
	}
	return usage
}

// TotalDistributed is the sum of all share percentages.
func TotalDistributed(shares []Share) float64 {
	var total float64
	for _, s := range shares {
		total += s.SharePercent
	}
	return total
}

// DetectOverflow reports whether the shares exceed the pool. The
// normalization in ComputeShares makes this unreachable for shares computed
// against the same pool size; it trips when the pool shrinks afterwards.
func DetectOverflow(shares []Share, poolSizePercent float64) bool {
	return TotalDistributed(shares) > poolSizePercent+overflowEpsilon
}

// RemainingPool is the unallocated part of the pool, never negative.
func RemainingPool(shares []Share, poolSizePercent float64) float64 {
	return math.Max(0, poolSizePercent-TotalDistributed(shares))
}

// Simulate runs the whole allocation for one snapshot of the inputs.
func Simulate(pool models.Pool, contributors []models.Contributor, categories []models.CategoryCap) Simulation {
	shares := ComputeShares(contributors, pool.SizePercent)

	var totalValue float64
	for _, s := range shares {
		totalValue += s.EconomicValue
	}
	if math.IsInf(totalValue, 0) {
		totalValue = 0
	}

	return Simulation{
		Pool:               pool,
		TotalEconomicValue: totalValue,
		Shares:             shares,
		Categories:         ComputeCategoryUsage(shares, categories),
		TotalDistributed:   TotalDistributed(shares),
		RemainingPool:      RemainingPool(shares, pool.SizePercent),
		Overflow:           DetectOverflow(shares, pool.SizePercent),
	}
}
