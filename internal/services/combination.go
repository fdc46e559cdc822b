package services

import "delivery-dispatch-service/internal/domain"

// MaxCombinationSize bounds the subset search. Larger feasible subsets are
// never considered.
const MaxCombinationSize = 3

// Combination is the order subset chosen for one partner.
type Combination struct {
	Orders        []*domain.Order
	TotalPackages int
	// Seconds.
	EstimatedTime float64
}

// BestCombination searches subsets of candidates of size 1..3 in input order
// and returns the largest one that fits the partner's capacity and passes
// CheckConstraints. Among equally large subsets the first enumerated wins.
// An empty Combination means nothing fits.
func BestCombination(partner *domain.Partner, candidates []*domain.Order) Combination {
	best := Combination{Orders: []*domain.Order{}}

	maxSize := min(MaxCombinationSize, len(candidates))
	for size := 1; size <= maxSize; size++ {
		for _, combo := range Combinations(candidates, size) {
			total := domain.TotalPackages(combo)
			if total > partner.MaxPackages {
				continue
			}

			report := CheckConstraints(partner, combo, CheckOptions{})
			if report.Valid && len(combo) > len(best.Orders) {
				best = Combination{
					Orders:        combo,
					TotalPackages: total,
					EstimatedTime: report.EstimatedTime,
				}
			}
		}
	}

	return best
}

// Combinations enumerates k-subsets of items preserving input order, e.g.
// [a b c] choose 2 yields [a b] [a c] [b c].
func Combinations[T any](items []T, k int) [][]T {
	if k <= 0 || k > len(items) {
		return nil
	}

	out := make([][]T, 0)
	buf := make([]T, 0, k)

	var rec func(start int)
	rec = func(start int) {
		if len(buf) == k {
			out = append(out, append([]T(nil), buf...))
			return
		}
		for i := start; i <= len(items)-(k-len(buf)); i++ {
			buf = append(buf, items[i])
			rec(i + 1)
			buf = buf[:len(buf)-1]
		}
	}
	rec(0)

	return out
}
