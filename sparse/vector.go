// Package sparse provides sparse vectors and a sparse row matrix that
// satisfies gonum's mat.Matrix.
package sparse

// Vector represents a sparse float64 vector.
type Vector struct {
	Indices []int     `json:"indices"`
	Values  []float64 `json:"values"`
	Dim     int       `json:"dim"`
}

// NewVector creates a sparse vector with given dimension.
func NewVector(dim int) Vector {
	return Vector{Dim: dim}
}

// Set adds or updates a value at the given index.
func (sv *Vector) Set(idx int, val float64) {
	for i, existingIdx := range sv.Indices {
		if existingIdx == idx {
			sv.Values[i] = val
			return
		}
	}
	sv.Indices = append(sv.Indices, idx)
	sv.Values = append(sv.Values, val)
}

// At returns the value at idx, zero when unset.
func (sv Vector) At(idx int) float64 {
	for i, existingIdx := range sv.Indices {
		if existingIdx == idx {
			return sv.Values[i]
		}
	}
	return 0
}

// Dot computes the dot product with a dense vector.
func (sv Vector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range sv.Indices {
		if idx < len(dense) {
			sum += sv.Values[i] * dense[idx]
		}
	}
	return sum
}

// Nnz returns the number of non-zero entries.
func (sv Vector) Nnz() int {
	return len(sv.Indices)
}
