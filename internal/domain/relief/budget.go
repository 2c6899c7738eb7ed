package relief

import (
	"math"
	"sort"
)

type BudgetShare struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Percent  float64 `json:"percent"`
}

// BudgetBreakdown is the derived view of a budget allocation. Available is
// false when there is nothing to divide by; Shares is then empty.
type BudgetBreakdown struct {
	Shares    []BudgetShare `json:"shares"`
	Total     float64       `json:"total"`
	Available bool          `json:"available"`
}

// Breakdown converts category amounts into percentages rounded to two
// decimals. Rounding uses the largest remainder so the shares add up to
// exactly 100.
func Breakdown(allocation map[string]float64) BudgetBreakdown {
	shares := make([]BudgetShare, 0, len(allocation))
	total := 0.0
	for category, amount := range allocation {
		if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
			continue
		}
		shares = append(shares, BudgetShare{Category: category, Amount: amount})
		total += amount
	}
	if total <= 0 {
		return BudgetBreakdown{Shares: []BudgetShare{}}
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Amount != shares[j].Amount {
			return shares[i].Amount > shares[j].Amount
		}
		return shares[i].Category < shares[j].Category
	})

	const scale = 10000
	units := make([]int, len(shares))
	remainders := make([]float64, len(shares))
	assigned := 0
	for i, share := range shares {
		exact := share.Amount / total * scale
		units[i] = int(math.Floor(exact))
		remainders[i] = exact - float64(units[i])
		assigned += units[i]
	}

	order := make([]int, len(shares))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]] > remainders[order[b]]
	})
	for i := 0; assigned < scale && i < len(order); i++ {
		units[order[i]]++
		assigned++
	}

	for i := range shares {
		shares[i].Percent = float64(units[i]) / 100
	}
	return BudgetBreakdown{Shares: shares, Total: total, Available: true}
}

// Ratio is a bounded completion figure, e.g. funds raised against a goal.
type Ratio struct {
	Percent   float64 `json:"percent"`
	Available bool    `json:"available"`
}

// Progress reports current/target as a percentage clamped to [0, 100].
// A non-positive target has no meaningful ratio.
func Progress(current, target float64) Ratio {
	if target <= 0 || math.IsNaN(target) || math.IsNaN(current) {
		return Ratio{}
	}
	percent := current / target * 100
	percent = math.Max(0, math.Min(100, percent))
	return Ratio{Percent: math.Round(percent*100) / 100, Available: true}
}

// Fill reports how many of the needed volunteer slots are taken.
func (i VolunteerImpact) Fill() Ratio {
	return Progress(float64(i.SignedUp), float64(i.Needed))
}
