package labels

// Summary describes how one label function behaves over the candidates.
type Summary struct {
	Coverage  float64 `json:"coverage"`  // fraction of candidates it votes on
	Overlaps  float64 `json:"overlaps"`  // fraction where another LF also votes
	Conflicts float64 `json:"conflicts"` // fraction where another LF votes differently
	Positive  int     `json:"positive"`
	Negative  int     `json:"negative"`
}

// Summarize computes a Summary per label function.
func Summarize(m *Matrix) []Summary {
	rows, cols := m.Dims()
	out := make([]Summary, cols)
	if rows == 0 {
		return out
	}

	for i := range rows {
		pos, neg := 0, 0
		for j := range cols {
			switch m.At(i, j) {
			case Positive:
				pos++
			case Negative:
				neg++
			}
		}
		for j := range cols {
			v := m.At(i, j)
			if v == Abstain {
				continue
			}
			s := &out[j]
			s.Coverage++
			if pos+neg > 1 {
				s.Overlaps++
			}
			if (v == Positive && neg > 0) || (v == Negative && pos > 0) {
				s.Conflicts++
			}
			if v == Positive {
				s.Positive++
			} else if v == Negative {
				s.Negative++
			}
		}
	}

	n := float64(rows)
	for j := range out {
		out[j].Coverage /= n
		out[j].Overlaps /= n
		out[j].Conflicts /= n
	}
	return out
}
