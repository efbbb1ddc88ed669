// Package labels holds the label matrix produced by running label functions
// over a set of candidates.
package labels

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Vote values a label function may emit.
const (
	Negative = -1
	Abstain  = 0
	Positive = 1
)

// ErrInvalidLabelValue is returned when a cell holds a value outside {-1, 0, 1}.
var ErrInvalidLabelValue = errors.New("invalid label value")

// ValueError names the offending cell of a label matrix.
type ValueError struct {
	Row   int
	Col   int
	Value int
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid label function output in cell (%d, %d): %d; valid values are 1, 0 and -1",
		e.Row, e.Col, e.Value)
}

func (e *ValueError) Unwrap() error { return ErrInvalidLabelValue }

// Matrix is an m x n label matrix: row i is a candidate, column j a label
// function. Values are stored row-major and never modified after New.
type Matrix struct {
	rows int
	cols int
	data []int
}

// New builds a matrix from rows of votes. All rows must have the same length.
// Cell values are not checked here; see Validate.
func New(rows [][]int) (*Matrix, error) {
	m := &Matrix{rows: len(rows)}
	if len(rows) > 0 {
		m.cols = len(rows[0])
	}
	m.data = make([]int, 0, m.rows*m.cols)
	for i, r := range rows {
		if len(r) != m.cols {
			return nil, fmt.Errorf("row %d has %d columns, want %d", i, len(r), m.cols)
		}
		m.data = append(m.data, r...)
	}
	return m, nil
}

// Dims returns the number of candidates and label functions.
func (m *Matrix) Dims() (int, int) {
	return m.rows, m.cols
}

// At returns the vote of label function j on candidate i.
func (m *Matrix) At(i, j int) int {
	return m.data[i*m.cols+j]
}

// Row returns a copy of candidate i's votes.
func (m *Matrix) Row(i int) []int {
	out := make([]int, m.cols)
	copy(out, m.data[i*m.cols:(i+1)*m.cols])
	return out
}

// Validate reports the first cell outside {-1, 0, 1}, scanning row-major.
func (m *Matrix) Validate() error {
	for idx, v := range m.data {
		if v < Negative || v > Positive {
			return &ValueError{Row: idx / m.cols, Col: idx % m.cols, Value: v}
		}
	}
	return nil
}

// Dense returns the votes as a gonum dense matrix, for use as a feature
// matrix by linear learners.
func (m *Matrix) Dense() *mat.Dense {
	if m.rows == 0 || m.cols == 0 {
		return &mat.Dense{}
	}
	vals := make([]float64, len(m.data))
	for i, v := range m.data {
		vals[i] = float64(v)
	}
	return mat.NewDense(m.rows, m.cols, vals)
}
