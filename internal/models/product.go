// Package models defines the data structures exchanged between the pipeline, the HTTP API, and the CLI.
package models

// ProductRecord is one entry parsed from the inference reply, in reply order.
type ProductRecord struct {
	Name     string
	RawIndex float64
}

// ScoredProduct is a ProductRecord attached to its link, with the deviation
// from the group median once more than one product is known.
type ScoredProduct struct {
	URL      string  `json:"url"`
	Name     string  `json:"product_name"`
	RawIndex float64 `json:"sustainability_index"`
	// Percentage is nil when it was not computed (zero or one product).
	Percentage *float64 `json:"percentage,omitempty"`
}

// HasPercentage reports whether a deviation was computed for p.
func (p ScoredProduct) HasPercentage() bool {
	return p.Percentage != nil
}

// CloneProducts returns a deep copy of products so callers cannot mutate shared state.
func CloneProducts(products []ScoredProduct) []ScoredProduct {
	out := make([]ScoredProduct, len(products))
	for i, p := range products {
		out[i] = p
		if p.Percentage != nil {
			v := *p.Percentage
			out[i].Percentage = &v
		}
	}
	return out
}
