package noiseaware

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"

	"github.com/happyhackingspace/weaklabel/sparse"
)

// operator multiplies a feature matrix and its transpose with dense vectors.
type operator interface {
	mulVec(x []float64) []float64
	mulTransVec(y []float64) []float64
}

type sparseOp struct {
	m *sparse.Matrix
}

func (s sparseOp) mulVec(x []float64) []float64      { return s.m.MulVec(x) }
func (s sparseOp) mulTransVec(y []float64) []float64 { return s.m.MulTransVec(y) }

type denseOp struct {
	m mat.Matrix
}

func (d denseOp) mulVec(x []float64) []float64 {
	r, _ := d.m.Dims()
	out := make([]float64, r)
	mat.NewVecDense(r, out).MulVec(d.m, mat.NewVecDense(len(x), x))
	return out
}

func (d denseOp) mulTransVec(y []float64) []float64 {
	_, c := d.m.Dims()
	out := make([]float64, c)
	mat.NewVecDense(c, out).MulVec(d.m.T(), mat.NewVecDense(len(y), y))
	return out
}

func newOperator(X mat.Matrix) operator {
	if s, ok := X.(*sparse.Matrix); ok {
		return sparseOp{s}
	}
	return denseOp{X}
}

// newOperators returns operators for X and for its element-wise absolute value.
func newOperators(X mat.Matrix) (op, absOp operator) {
	if s, ok := X.(*sparse.Matrix); ok {
		return sparseOp{s}, sparseOp{s.Abs()}
	}
	r, c := X.Dims()
	abs := mat.NewDense(r, c, nil)
	abs.Apply(func(_, _ int, v float64) float64 { return math.Abs(v) }, X)
	return denseOp{X}, denseOp{abs}
}

// exactData returns, per row, the expected probability t that the row's
// label is positive under weights w, and f = 1 - t. Evidence above 0.5 or
// below -0.5 pins t to 1 or 0.
func exactData(op operator, w, evidence []float64) (t, f []float64) {
	t = op.mulVec(w)
	for i := range t {
		t[i] = oddsToProb(t[i])
	}
	for i, e := range evidence {
		switch {
		case e > 0.5:
			t[i] = 1
		case e < -0.5:
			t[i] = 0
		}
	}
	f = make([]float64, len(t))
	for i := range t {
		f[i] = 1 - t[i]
	}
	return t, f
}

// sampleData draws n rows uniformly with replacement and samples each row's
// label from its current probability, counting positive outcomes into t and
// negative outcomes into f.
func sampleData(op operator, w []float64, rows, n int, rng *rand.Rand) (t, f []float64) {
	p := op.mulVec(w)
	t = make([]float64, rows)
	f = make([]float64, rows)
	for range n {
		r := rng.IntN(rows)
		if rng.Float64() < oddsToProb(p[r]) {
			t[r]++
		} else {
			f[r]++
		}
	}
	return t, f
}

// transformSampleStats converts per-row label statistics into the fraction of
// each feature's predictions that were correct, and the number of
// predictions per feature.
func transformSampleStats(op, absOp operator, t, f []float64) (pCorrect, nPred []float64) {
	tf := make([]float64, len(t))
	for i := range t {
		tf[i] = t[i] + f[i]
	}
	nPred = absOp.mulTransVec(tf)
	xt := op.mulTransVec(t)
	xf := op.mulTransVec(f)

	pCorrect = make([]float64, len(nPred))
	for j := range nPred {
		m := (xt[j] - xf[j]) / (nPred[j] + 1e-8)
		pCorrect[j] = (m + 1) / 2
	}
	return pCorrect, nPred
}

func oddsToProb(l float64) float64 {
	return 1 / (1 + math.Exp(-l))
}

func logOdds(p float64) float64 {
	return math.Log(p / (1 - p))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
