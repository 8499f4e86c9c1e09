package allocator

import (
	"fmt"
	"math"
	"slices"
)

type greedyAllocator struct{}

// New returns a stateless Allocator backed by the two-pointer greedy pairing.
func New() Allocator {
	return greedyAllocator{}
}

func (greedyAllocator) MinPlatforms(weights []float64, limit float64) (int, error) {
	return MinPlatforms(weights, limit)
}

func (greedyAllocator) Allocate(weights []float64, limit float64) (Plan[float64], error) {
	return Allocate(weights, limit)
}

// MinPlatforms returns the minimum number of platforms needed to carry every
// weight when a platform holds at most two items whose sum must not exceed limit.
// An item heavier than limit still travels, alone, on its own platform.
func MinPlatforms[W Weight](weights []W, limit W) (int, error) {
	if err := Validate(weights, limit); err != nil {
		return 0, err
	}

	sorted := slices.Clone(weights)
	slices.Sort(sorted)

	left, right, platforms := 0, len(sorted)-1, 0
	for left <= right {
		if fits(sorted[left], sorted[right], limit) {
			left++
		}
		right--
		platforms++
	}
	return platforms, nil
}

// Allocate runs the same pairing as MinPlatforms and records which items
// share each platform. Platforms are listed in the order they are filled,
// heaviest remaining item first.
func Allocate[W Weight](weights []W, limit W) (Plan[W], error) {
	if err := Validate(weights, limit); err != nil {
		return Plan[W]{}, err
	}

	sorted := slices.Clone(weights)
	slices.Sort(sorted)

	plan := Plan[W]{
		Limit:     limit,
		Platforms: make([]Platform[W], 0, (len(sorted)+1)/2),
	}
	left, right := 0, len(sorted)-1
	for left <= right {
		heavy := sorted[right]
		platform := Platform[W]{Items: []W{heavy}, Load: heavy}
		if fits(sorted[left], heavy, limit) {
			// left == right is the last item, already on the platform.
			if left != right {
				platform.Items = append(platform.Items, sorted[left])
				platform.Load += sorted[left]
			}
			left++
		}
		right--
		plan.Platforms = append(plan.Platforms, platform)
	}
	return plan, nil
}

// Validate rejects inputs the pairing is not defined for: negative or
// non-finite weights and limits.
func Validate[W Weight](weights []W, limit W) error {
	if !finite(limit) {
		return fmt.Errorf("limit %v: %w", limit, ErrNotFinite)
	}
	if limit < 0 {
		return fmt.Errorf("limit %v: %w", limit, ErrNegativeLimit)
	}
	for i, w := range weights {
		if !finite(w) {
			return fmt.Errorf("weight[%d] = %v: %w", i, w, ErrNotFinite)
		}
		if w < 0 {
			return fmt.Errorf("weight[%d] = %v: %w", i, w, ErrNegativeWeight)
		}
	}
	return nil
}

// fits reports whether light and heavy may share a platform. Floats use the
// plain sum; integers subtract instead so large weights cannot overflow.
func fits[W Weight](light, heavy, limit W) bool {
	if isFloat[W]() {
		return light+heavy <= limit
	}
	return light <= limit-heavy
}

// isFloat reports whether W keeps the fraction of 1/2.
func isFloat[W Weight]() bool {
	var half W = 1
	half /= 2
	return half != 0
}

// CountOverweight returns how many weights exceed limit. Each of them needs
// a platform of its own.
func CountOverweight[W Weight](weights []W, limit W) int {
	n := 0
	for _, w := range weights {
		if exceeds(w, limit) {
			n++
		}
	}
	return n
}

func exceeds[W Weight](w, limit W) bool {
	return w > limit
}

func finite[W Weight](v W) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
