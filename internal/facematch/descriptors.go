package facematch

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ParseDescriptor converts a stored descriptor value into a vector.
// It accepts decoded JSON arrays, JSON text (string or []byte) and numeric
// slices. A nil value yields a nil descriptor.
func ParseDescriptor(v any) ([]float32, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case []float32:
		return val, nil
	case []float64:
		out := make([]float32, len(val))
		for i, x := range val {
			out[i] = float32(x)
		}
		return out, nil
	case []any:
		out := make([]float32, len(val))
		for i, x := range val {
			switch n := x.(type) {
			case float64:
				out[i] = float32(n)
			case json.Number:
				f, err := n.Float64()
				if err != nil {
					return nil, fmt.Errorf("descriptor element %d: %w", i, err)
				}
				out[i] = float32(f)
			case int:
				out[i] = float32(n)
			default:
				return nil, fmt.Errorf("descriptor element %d has type %T, expected number", i, x)
			}
		}
		return out, nil
	case string:
		return parseDescriptorJSON([]byte(val))
	case []byte:
		return parseDescriptorJSON(val)
	default:
		return nil, fmt.Errorf("unsupported descriptor type %T", v)
	}
}

func parseDescriptorJSON(data []byte) ([]float32, error) {
	var out []float32
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decoding descriptor: %w", err)
	}
	return out, nil
}

// LabeledFromRows groups table rows into labeled descriptor sets.
// Rows with a null descriptor are skipped; labels are grouped by NormalizeLabel
// and keep the spelling of their first row.
func LabeledFromRows(rows []map[string]any, labelCol, descriptorCol string) ([]LabeledDescriptors, error) {
	var sets []LabeledDescriptors
	for i, row := range rows {
		label, _ := row[labelCol].(string)
		if label == "" {
			continue
		}

		desc, err := ParseDescriptor(row[descriptorCol])
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", i, label, err)
		}
		if len(desc) == 0 {
			continue
		}

		sets = appendToLabel(sets, label, desc)
	}
	return sets, nil
}

// LoadLabeledDescriptors reads labeled descriptor sets from YAML:
//
//	- label: Jan Novák
//	  descriptors:
//	    - [0.01, -0.12, ...]
func LoadLabeledDescriptors(r io.Reader) ([]LabeledDescriptors, error) {
	var raw []LabeledDescriptors
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("descriptor file is empty")
		}
		return nil, fmt.Errorf("decoding descriptor file: %w", err)
	}

	var sets []LabeledDescriptors
	for _, l := range raw {
		for _, d := range l.Descriptors {
			sets = appendToLabel(sets, l.Label, d)
		}
	}
	return sets, nil
}

func appendToLabel(sets []LabeledDescriptors, label string, desc []float32) []LabeledDescriptors {
	for i := range sets {
		if SameLabel(sets[i].Label, label) {
			sets[i].Descriptors = append(sets[i].Descriptors, desc)
			return sets
		}
	}
	return append(sets, LabeledDescriptors{Label: label, Descriptors: [][]float32{desc}})
}
