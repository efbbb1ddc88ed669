package sparse

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a sparse matrix stored as rows of sparse vectors.
type Matrix struct {
	rows []Vector
	cols int
}

var _ mat.Matrix = (*Matrix)(nil)

// NewMatrix builds a matrix from rows that all share the same dimension.
func NewMatrix(rows []Vector) (*Matrix, error) {
	m := &Matrix{rows: rows}
	if len(rows) > 0 {
		m.cols = rows[0].Dim
	}
	for i, r := range rows {
		if r.Dim != m.cols {
			return nil, fmt.Errorf("sparse: row %d has dimension %d, want %d", i, r.Dim, m.cols)
		}
		for _, idx := range r.Indices {
			if idx < 0 || idx >= m.cols {
				return nil, fmt.Errorf("sparse: row %d index %d out of range", i, idx)
			}
		}
	}
	return m, nil
}

// FromDense copies the non-zero entries of a.
func FromDense(a mat.Matrix) *Matrix {
	r, c := a.Dims()
	m := &Matrix{rows: make([]Vector, r), cols: c}
	for i := range r {
		m.rows[i] = NewVector(c)
		for j := range c {
			if v := a.At(i, j); v != 0 {
				m.rows[i].Set(j, v)
			}
		}
	}
	return m
}

// Dims returns the number of rows and columns.
func (m *Matrix) Dims() (int, int) {
	return len(m.rows), m.cols
}

// At returns the element at row i, column j.
func (m *Matrix) At(i, j int) float64 {
	if i < 0 || i >= len(m.rows) || j < 0 || j >= m.cols {
		panic(mat.ErrIndexOutOfRange)
	}
	return m.rows[i].At(j)
}

// T returns the implicit transpose.
func (m *Matrix) T() mat.Matrix {
	return mat.Transpose{Matrix: m}
}

// Row returns row i.
func (m *Matrix) Row(i int) Vector {
	return m.rows[i]
}

// MulVec returns m·x.
func (m *Matrix) MulVec(x []float64) []float64 {
	out := make([]float64, len(m.rows))
	for i, r := range m.rows {
		out[i] = r.Dot(x)
	}
	return out
}

// MulTransVec returns mᵀ·y.
func (m *Matrix) MulTransVec(y []float64) []float64 {
	out := make([]float64, m.cols)
	for i, r := range m.rows {
		for k, idx := range r.Indices {
			out[idx] += r.Values[k] * y[i]
		}
	}
	return out
}

// Nnz returns the number of stored entries.
func (m *Matrix) Nnz() int {
	total := 0
	for _, r := range m.rows {
		total += r.Nnz()
	}
	return total
}

// Abs returns a copy with every value replaced by its absolute value.
func (m *Matrix) Abs() *Matrix {
	out := &Matrix{rows: make([]Vector, len(m.rows)), cols: m.cols}
	for i, r := range m.rows {
		v := Vector{
			Indices: append([]int(nil), r.Indices...),
			Values:  make([]float64, len(r.Values)),
			Dim:     r.Dim,
		}
		for k, val := range r.Values {
			v.Values[k] = math.Abs(val)
		}
		out.rows[i] = v
	}
	return out
}
