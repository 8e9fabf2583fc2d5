package search

import "math"

// Weights holds the multiplier for each position label, indexed by Weight.
type Weights [4]float64

// DefaultWeights are {D, C, B, A} = {0.1, 0.2, 0.4, 1.0}.
var DefaultWeights = Weights{0.1, 0.2, 0.4, 1.0}

const (
	// Sum of 1/i^2 over all i, used to scale the per-lexeme score.
	harmonicScale = 1.64493406685
	minRank       = 1e-20
)

// Rank scores v against q with the semantics of ts_rank(weights, v, q) and
// normalization 0.
func Rank(v Vector, q Query, w Weights) float64 {
	operands := q.Operands()
	if len(operands) == 0 {
		return 0
	}
	var res float64
	switch q.Root() {
	case OpAnd, OpPhrase:
		res = rankAnd(v, operands, w)
	default:
		res = rankOr(v, operands, w)
	}
	if res < 0 {
		res = minRank
	}
	return res
}

func rankOr(v Vector, operands []string, w Weights) float64 {
	var res float64
	for _, lex := range operands {
		positions, ok := v[lex]
		if !ok || len(positions) == 0 {
			continue
		}
		var resj float64
		wjm := -1.0
		jm := 0
		for j, p := range positions {
			weight := w[p.Weight&3]
			denom := float64((j + 1) * (j + 1))
			resj += weight / denom
			if weight > wjm {
				wjm = weight
				jm = j
			}
		}
		res += (wjm + resj - wjm/float64((jm+1)*(jm+1))) / harmonicScale
	}
	return res / float64(len(operands))
}

func rankAnd(v Vector, operands []string, w Weights) float64 {
	if len(operands) < 2 {
		return rankOr(v, operands, w)
	}
	res := -1.0
	for i := range operands {
		pi, ok := v[operands[i]]
		if !ok {
			continue
		}
		for k := 0; k < i; k++ {
			pk, ok := v[operands[k]]
			if !ok {
				continue
			}
			for _, a := range pi {
				for _, b := range pk {
					dist := a.Pos - b.Pos
					if dist < 0 {
						dist = -dist
					}
					if dist == 0 {
						continue
					}
					curw := math.Sqrt(w[a.Weight&3] * w[b.Weight&3] * wordDistance(dist))
					if res < 0 {
						res = curw
					} else {
						res = 1.0 - (1.0-res)*(1.0-curw)
					}
				}
			}
		}
	}
	return res
}

func wordDistance(d int) float64 {
	if d > 100 {
		return 1e-30
	}
	return 1.0 / (1.005 + 0.05*math.Exp(float64(d)/1.5-2))
}
