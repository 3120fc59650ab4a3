// Package facematch matches face descriptors against labeled reference sets.
// It is shared between the CLI and the web handlers.
package facematch

// DefaultDistanceThreshold is the largest euclidean distance still treated as a match.
const DefaultDistanceThreshold = 0.6

// UnknownLabel is returned when no labeled set is close enough.
const UnknownLabel = "unknown"

// LabeledDescriptors holds the reference descriptors of one person.
type LabeledDescriptors struct {
	Label       string      `yaml:"label" json:"label"`
	Descriptors [][]float32 `yaml:"descriptors" json:"descriptors"`
}

// Match is the result of a nearest-label lookup.
type Match struct {
	Label    string  `json:"label"`
	Distance float64 `json:"distance"`
}

// Matched reports whether the lookup found a known label.
func (m Match) Matched() bool {
	return m.Label != UnknownLabel
}
