package gibbs

import "github.com/happyhackingspace/weaklabel/factorgraph"

// Evaluate returns the value of factor function fn over the variable values
// vals, given in edge order. Class variables take 0 (negative) or 1
// (positive); label variables take the factorgraph Value* constants.
func Evaluate(fn factorgraph.Function, vals []int) float64 {
	switch fn {
	case factorgraph.ClassPrior:
		return classSign(vals[0])

	case factorgraph.LFAccuracy:
		y, lf := vals[0], vals[1]
		if lf == factorgraph.ValueAbstain {
			return 0
		}
		if (y == 1) == (lf == factorgraph.ValuePositive) {
			return 1
		}
		return -1

	case factorgraph.LFPrior:
		switch vals[0] {
		case factorgraph.ValuePositive:
			return 1
		case factorgraph.ValueNegative:
			return -1
		}
		return 0

	case factorgraph.LFPropensity:
		if vals[0] == factorgraph.ValueAbstain {
			return 0
		}
		return 1

	case factorgraph.LFClassPropensity:
		if vals[1] == factorgraph.ValueAbstain {
			return 0
		}
		return classSign(vals[0])

	case factorgraph.DepSimilar:
		if vals[0] == vals[1] {
			return 1
		}
		return 0

	case factorgraph.DepFixing:
		y, a, b := vals[0], vals[1], vals[2]
		switch {
		case a == factorgraph.ValueNegative && b == factorgraph.ValuePositive:
			return classSign(y)
		case a == factorgraph.ValuePositive && b == factorgraph.ValueNegative:
			return -classSign(y)
		}
		return 0

	case factorgraph.DepReinforcing:
		y, a, b := vals[0], vals[1], vals[2]
		switch {
		case a == factorgraph.ValuePositive && b == factorgraph.ValuePositive:
			return classSign(y)
		case a == factorgraph.ValueNegative && b == factorgraph.ValueNegative:
			return -classSign(y)
		}
		return 0

	case factorgraph.DepExclusive:
		if vals[0] != factorgraph.ValueAbstain && vals[1] != factorgraph.ValueAbstain {
			return -1
		}
		return 0
	}
	return 0
}

func classSign(y int) float64 {
	if y == 1 {
		return 1
	}
	return -1
}
