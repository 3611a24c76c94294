package summarizer

import (
	"errors"
	"math"
	"sort"
)

const (
	damping       = 0.85
	epsilon       = 1e-4
	maxIterations = 100

	// keeps rows without edges from dividing by zero
	zeroDivisionPrevention = 1e-7
)

// ErrDegenerate is returned when no sentence carries a rankable term.
var ErrDegenerate = errors.New("no rankable terms")

// rankSentences scores each sentence by centrality in the similarity graph
// built from its term list.
func rankSentences(terms [][]string) ([]float64, error) {
	n := len(terms)
	if n == 0 {
		return nil, ErrDegenerate
	}

	counts := make([]map[string]int, n)
	rankable := false
	for i, t := range terms {
		counts[i] = make(map[string]int, len(t))
		for _, w := range t {
			counts[i][w]++
		}
		if len(t) > 0 {
			rankable = true
		}
	}
	if !rankable {
		return nil, ErrDegenerate
	}

	weights := make([][]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			w := similarity(terms[i], terms[j], counts[j])
			weights[i][j] = w
			weights[j][i] = w
		}
	}

	teleport := (1 - damping) / float64(n)
	for i := range weights {
		var sum float64
		for _, w := range weights[i] {
			sum += w
		}
		sum += zeroDivisionPrevention
		for j := range weights[i] {
			weights[i][j] = damping*weights[i][j]/sum + teleport
		}
	}

	scores := powerIterate(weights)
	for _, s := range scores {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, errors.New("ranking did not produce finite scores")
		}
	}
	return scores, nil
}

// similarity counts occurrences of a's terms in b, normalized by the log
// lengths of both sentences.
func similarity(a, b []string, countsB map[string]int) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	shared := 0
	for _, w := range a {
		shared += countsB[w]
	}
	if shared == 0 {
		return 0
	}
	norm := math.Log(float64(len(a))) + math.Log(float64(len(b)))
	if math.Abs(norm) < 1e-12 {
		// both sentences hold a single term
		return float64(shared)
	}
	return float64(shared) / norm
}

// powerIterate returns the stationary vector of the transition matrix m
// (rows are sources), stopping when successive vectors differ by less than
// epsilon or after maxIterations.
func powerIterate(m [][]float64) []float64 {
	n := len(m)
	p := make([]float64, n)
	for i := range p {
		p[i] = 1 / float64(n)
	}

	next := make([]float64, n)
	for iter := 0; iter < maxIterations; iter++ {
		for j := 0; j < n; j++ {
			var v float64
			for i := 0; i < n; i++ {
				v += m[i][j] * p[i]
			}
			next[j] = v
		}

		var delta float64
		for i := range p {
			d := next[i] - p[i]
			delta += d * d
		}
		p, next = next, p
		if math.Sqrt(delta) < epsilon {
			break
		}
	}
	return p
}

// topIndices returns the indices of the k highest scores in ascending
// position order. Equal scores favor the earlier sentence.
func topIndices(scores []float64, k int) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})
	if k > len(order) {
		k = len(order)
	}
	picked := append([]int(nil), order[:k]...)
	sort.Ints(picked)
	return picked
}
