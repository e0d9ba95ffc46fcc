package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/mandato360/internal/models"
)

const (
	// DefaultCAC is the customer acquisition cost assumed by the roadmap.
	DefaultCAC = 150.0

	// valuationMultiple and valuationBase give valuation = ARR × 4 + 1.2M.
	valuationMultiple = 4.0
	valuationBase     = 1_200_000.0

	conservativeFactor = 0.8
	aggressiveFactor   = 1.35
)

// ErrInvalidStartMonth is returned when the start month is not 0..11.
var ErrInvalidStartMonth = errors.New("start month must be between 0 and 11")

// MonthNames are the pt-BR abbreviations used on the projection chart.
var MonthNames = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// RoadmapKPIs are the headline numbers of the revenue roadmap.
type RoadmapKPIs struct {
	MRR                 float64 `json:"mrr"`
	ARR                 float64 `json:"arr"`
	TotalImplementation float64 `json:"totalImplementation"`
	TotalClients        int     `json:"totalClients"`
	AnnualRevenue       float64 `json:"annualRevenue"`
	WeightedTicket      float64 `json:"weightedTicket"`
	CAC                 float64 `json:"cac"`
	LTV                 float64 `json:"ltv"`
	LTVToCAC            float64 `json:"ltvToCac"`
	Valuation           float64 `json:"valuation"`

	// GoalProgress is annual revenue as a percentage of the annual goal.
	// It is not capped at 100.
	GoalProgress float64 `json:"goalProgress"`
}

// MonthPoint is one month of the cumulative first-year projection.
type MonthPoint struct {
	Month        string  `json:"month"`
	Conservative float64 `json:"conservador"`
	Realistic    float64 `json:"realista"`
	Aggressive   float64 `json:"agressivo"`
	Goal         float64 `json:"goal"`
}

// YearTarget is one point of the long-term revenue plan.
type YearTarget struct {
	Year   int     `json:"year"`
	Value  float64 `json:"value"`
	Target float64 `json:"target"`
}

// ComputeKPIs derives the roadmap headline numbers. Subscriptions run from
// startMonth (0 = January) to December; implantation fees are charged once.
func ComputeKPIs(levels []models.Level, startMonth int, churnRate, annualGoal float64) (RoadmapKPIs, error) {
	if startMonth < 0 || startMonth > 11 {
		return RoadmapKPIs{}, fmt.Errorf("%w: %d", ErrInvalidStartMonth, startMonth)
	}

	var k RoadmapKPIs
	monthsActive := float64(12 - startMonth)
	for _, lvl := range levels {
		clients := float64(lvl.Clients)
		k.MRR += lvl.Ticket * clients
		k.TotalImplementation += lvl.Implantation * clients
		k.TotalClients += lvl.Clients
		k.AnnualRevenue += lvl.Ticket*clients*monthsActive + lvl.Implantation*clients
	}

	if k.TotalClients > 0 {
		k.WeightedTicket = k.MRR / float64(k.TotalClients)
	}
	k.ARR = k.MRR * 12
	k.CAC = DefaultCAC
	if churnRate > 0 {
		k.LTV = k.WeightedTicket / (churnRate / 100)
	}
	k.LTVToCAC = k.LTV / k.CAC
	k.Valuation = k.ARR*valuationMultiple + valuationBase
	if annualGoal > 0 {
		k.GoalProgress = k.AnnualRevenue / annualGoal * 100
	}
	return k, nil
}

// ProjectMonthly builds the cumulative revenue curve of the first year in
// three scenarios. Implantation revenue lands in the start month.
func ProjectMonthly(levels []models.Level, startMonth int, annualGoal float64) ([]MonthPoint, error) {
	if startMonth < 0 || startMonth > 11 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStartMonth, startMonth)
	}

	var mrr, implementation float64
	for _, lvl := range levels {
		mrr += lvl.Ticket * float64(lvl.Clients)
		implementation += lvl.Implantation * float64(lvl.Clients)
	}

	points := make([]MonthPoint, 0, len(MonthNames))
	var cumulative float64
	for i, name := range MonthNames {
		if i >= startMonth {
			cumulative += mrr
			if i == startMonth {
				cumulative += implementation
			}
		}
		points = append(points, MonthPoint{
			Month:        name,
			Conservative: math.Round(cumulative * conservativeFactor),
			Realistic:    math.Round(cumulative),
			Aggressive:   math.Round(cumulative * aggressiveFactor),
			Goal:         annualGoal,
		})
	}
	return points, nil
}

// LongTermPlan puts the computed first-year revenue in front of the fixed
// targets of the following years.
func LongTermPlan(firstYear int, annualRevenue, annualGoal float64, targets []YearTarget) []YearTarget {
	plan := make([]YearTarget, 0, len(targets)+1)
	plan = append(plan, YearTarget{Year: firstYear, Value: annualRevenue, Target: annualGoal})
	for _, t := range targets {
		if t.Year == firstYear {
			continue
		}
		plan = append(plan, t)
	}
	return plan
}
