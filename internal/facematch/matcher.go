package facematch

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Matcher finds the closest labeled descriptor set for a query descriptor.
type Matcher struct {
	labeled   []LabeledDescriptors
	threshold float64
	dim       int
}

// NewMatcher builds a matcher with DefaultDistanceThreshold.
func NewMatcher(labeled []LabeledDescriptors) (*Matcher, error) {
	return NewMatcherWithThreshold(labeled, DefaultDistanceThreshold)
}

// NewMatcherWithThreshold builds a matcher with a custom distance threshold.
func NewMatcherWithThreshold(labeled []LabeledDescriptors, threshold float64) (*Matcher, error) {
	if len(labeled) == 0 {
		return nil, errors.New("at least one labeled descriptor set is required")
	}
	if threshold <= 0 || math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return nil, fmt.Errorf("distance threshold must be positive, got %v", threshold)
	}

	dim := 0
	for _, l := range labeled {
		if l.Label == "" {
			return nil, errors.New("labeled descriptor set without a label")
		}
		if len(l.Descriptors) == 0 {
			return nil, fmt.Errorf("label %q has no descriptors", l.Label)
		}
		for _, d := range l.Descriptors {
			if dim == 0 {
				dim = len(d)
			}
			if len(d) == 0 || len(d) != dim {
				return nil, fmt.Errorf("label %q: descriptor has %d dimensions, expected %d", l.Label, len(d), dim)
			}
			if i := nonFinite(d); i >= 0 {
				return nil, fmt.Errorf("label %q: descriptor value %d is not a finite number", l.Label, i)
			}
		}
	}

	return &Matcher{labeled: labeled, threshold: threshold, dim: dim}, nil
}

// Threshold returns the configured distance threshold.
func (m *Matcher) Threshold() float64 {
	return m.threshold
}

// Dimensions returns the descriptor length every query must have.
func (m *Matcher) Dimensions() int {
	return m.dim
}

// Labels returns the labels known to the matcher, in input order.
func (m *Matcher) Labels() []string {
	labels := make([]string, len(m.labeled))
	for i, l := range m.labeled {
		labels[i] = l.Label
	}
	return labels
}

// CheckDescriptor returns an error unless d has Dimensions() finite values.
// FindBestMatch on such a descriptor always yields UnknownLabel at +Inf.
func (m *Matcher) CheckDescriptor(d []float32) error {
	if len(d) != m.dim {
		return fmt.Errorf("descriptor must have %d values, got %d", m.dim, len(d))
	}
	if i := nonFinite(d); i >= 0 {
		return fmt.Errorf("descriptor value %d is not a finite number", i)
	}
	return nil
}

// FindBestMatch returns the label whose descriptors have the smallest mean
// distance to d. If that distance is not below the threshold the label is
// UnknownLabel; the distance is reported either way.
func (m *Matcher) FindBestMatch(d []float32) Match {
	best := Match{Label: UnknownLabel, Distance: math.Inf(1)}
	for _, l := range m.labeled {
		dist := meanDistance(d, l.Descriptors)
		if dist < best.Distance {
			best = Match{Label: l.Label, Distance: dist}
		}
	}

	if best.Distance >= m.threshold {
		best.Label = UnknownLabel
	}
	return best
}

func meanDistance(query []float32, refs [][]float32) float64 {
	var sum float64
	for _, r := range refs {
		sum += EuclideanDistance(query, r)
	}
	return sum / float64(len(refs))
}

// EuclideanDistance returns the L2 distance between a and b,
// or +Inf when their lengths differ.
func EuclideanDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	return floats.Distance(toFloat64(a), toFloat64(b), 2)
}

// nonFinite returns the index of the first NaN or infinite value, or -1.
func nonFinite(v []float32) int {
	for i, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return i
		}
	}
	return -1
}

func toFloat64(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}
