package hull

import "math"

const (
	// DefaultMaxNumVertices is the default vertex budget of a hull.
	DefaultMaxNumVertices = 4096
	// DefaultNormalEpsilon is the default welding tolerance in normalized
	// [-0.5, 0.5] units.
	DefaultNormalEpsilon = 0.001

	minGridSize = 16
	maxGridSize = 64
)

// Options configures hull construction.
type Options struct {
	// MaxNumVertices bounds the number of hull vertices. Values below 4 are
	// raised to 4.
	MaxNumVertices int
	// NormalEpsilon is the welding tolerance relative to the point cloud's
	// bounding box.
	NormalEpsilon float64
}

// DefaultOptions returns the default hull options.
func DefaultOptions() Options {
	return Options{
		MaxNumVertices: DefaultMaxNumVertices,
		NormalEpsilon:  DefaultNormalEpsilon,
	}
}

// withDefaults fills zero or invalid fields with defaults.
func (o Options) withDefaults() Options {
	if o.MaxNumVertices <= 0 {
		o.MaxNumVertices = DefaultMaxNumVertices
	}
	if o.MaxNumVertices < 4 {
		o.MaxNumVertices = 4
	}
	if !(o.NormalEpsilon > 0) || math.IsInf(o.NormalEpsilon, 0) {
		o.NormalEpsilon = DefaultNormalEpsilon
	}
	return o
}

// GridSize returns the side of the direction grid used to thin a point cloud
// before building a hull with the given vertex budget.
func GridSize(maxNumVertices int) int {
	g := int(math.Ceil(4 * math.Sqrt(float64(max(maxNumVertices, 1)))))
	return min(max(g, minGridSize), maxGridSize)
}
