package allocator

// Weight covers the numeric types an item weight may be expressed in.
type Weight interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 | ~float32 | ~float64
}

// Platform is a single transport unit. Items holds one or two weights,
// heaviest first, and Load is their sum.
type Platform[W Weight] struct {
	Items []W `json:"items"`
	Load  W   `json:"load"`
}

// Plan describes a full assignment of items to platforms.
type Plan[W Weight] struct {
	Limit     W             `json:"limit"`
	Platforms []Platform[W] `json:"platforms"`
}

// Count returns the number of platforms used by the plan.
func (p Plan[W]) Count() int {
	return len(p.Platforms)
}

// Overweight returns how many platforms carry a single item heavier than the limit.
func (p Plan[W]) Overweight() int {
	n := 0
	for _, platform := range p.Platforms {
		if len(platform.Items) == 1 && exceeds(platform.Items[0], p.Limit) {
			n++
		}
	}
	return n
}

// Allocator describes the behaviour host programs need from the platform allocator.
type Allocator interface {
	MinPlatforms(weights []float64, limit float64) (int, error)
	Allocate(weights []float64, limit float64) (Plan[float64], error)
}
