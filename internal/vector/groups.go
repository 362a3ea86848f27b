package vector

import (
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	dferrors "github.com/paveg/colframe/internal/errors"
)

// GenerateGroups randomly assigns n items to len(ratio) groups. Ratios are
// normalized by their sum and group g receives floor(ratio[g]*n) items; the
// items left over by rounding stay in group 0.
func GenerateGroups(n int, ratio []float64, r *rand.Rand) ([]int, error) {
	const op = "GenerateGroups"
	if n < 0 {
		return nil, dferrors.NewInvalidInputError(op, fmt.Sprintf("size must be non-negative, got %d", n))
	}
	sum, err := ratioSum(op, ratio)
	if err != nil {
		return nil, err
	}

	groups := make([]int, n)
	perm := r.Perm(n)
	done := 0
	for g, w := range ratio {
		count := min(int(w/sum*float64(n)), n-done)
		for _, idx := range perm[done : done+count] {
			groups[idx] = g
		}
		done += count
	}
	return groups, nil
}

// GenerateManyGroups produces count group assignments of n items. Groups
// from fixedRatio (numbered after the volatile ones) keep the same items in
// every assignment; items of the volatile groups are reshuffled among
// volatileRatio for each one.
func GenerateManyGroups(count, n int, volatileRatio, fixedRatio []float64, r *rand.Rand) ([][]int, error) {
	const op = "GenerateManyGroups"
	if count < 0 {
		return nil, dferrors.NewInvalidInputError(op, fmt.Sprintf("count must be non-negative, got %d", count))
	}
	initial, err := GenerateGroups(n, slices.Concat(volatileRatio, fixedRatio), r)
	if err != nil {
		return nil, err
	}

	var volatile []int
	for i, g := range initial {
		if g < len(volatileRatio) {
			volatile = append(volatile, i)
		}
	}

	all := make([][]int, 0, count)
	for range count {
		groups := slices.Clone(initial)
		if len(volatile) > 0 {
			replacement, err := GenerateGroups(len(volatile), volatileRatio, r)
			if err != nil {
				return nil, err
			}
			for k, idx := range volatile {
				groups[idx] = replacement[k]
			}
		}
		all = append(all, groups)
	}
	return all, nil
}

func ratioSum(op string, ratio []float64) (float64, error) {
	if len(ratio) == 0 {
		return 0, dferrors.NewInvalidInputError(op, "ratio must not be empty")
	}
	var sum float64
	for i, w := range ratio {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return 0, dferrors.NewInvalidInputError(op, fmt.Sprintf("ratio %d must be a finite non-negative number, got %g", i, w))
		}
		sum += w
	}
	if sum == 0 {
		return 0, dferrors.NewInvalidInputError(op, "ratio must not sum to zero")
	}
	return sum, nil
}
