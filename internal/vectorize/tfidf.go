package vectorize

import (
	"math"
)

// DefaultN is the n-gram length used for skill strings.
const DefaultN = 3

// Vector is a sparse TF-IDF vector keyed by n-gram.
type Vector map[string]float64

// NGrams normalizes s and returns every contiguous n-character window.
func NGrams(s string, n int) []string {
	norm := Normalize(s)
	if n <= 0 || len(norm) < n {
		return nil
	}
	grams := make([]string, 0, len(norm)-n+1)
	for i := 0; i+n <= len(norm); i++ {
		grams = append(grams, norm[i:i+n])
	}
	return grams
}

// FitTransform builds one vocabulary over all docs and returns one
// L2-normalized TF-IDF vector per doc, in input order. Term frequency is the
// raw n-gram count and idf is the smoothed ln((1+n)/(1+df)) + 1. Documents
// without any n-gram get an empty vector.
func FitTransform(docs []string) []Vector {
	counts := make([]map[string]int, len(docs))
	df := make(map[string]int)
	for i, doc := range docs {
		c := make(map[string]int)
		for _, g := range NGrams(doc, DefaultN) {
			c[g]++
		}
		for g := range c {
			df[g]++
		}
		counts[i] = c
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(df))
	for g, d := range df {
		idf[g] = math.Log((1+n)/(1+float64(d))) + 1
	}

	vectors := make([]Vector, len(docs))
	for i, c := range counts {
		v := make(Vector, len(c))
		var sumSq float64
		for g, tf := range c {
			w := float64(tf) * idf[g]
			v[g] = w
			sumSq += w * w
		}
		if sumSq > 0 {
			norm := math.Sqrt(sumSq)
			for g := range v {
				v[g] /= norm
			}
		}
		vectors[i] = v
	}
	return vectors
}

// Cosine returns the cosine similarity of a and b, or 0 when either is empty.
func Cosine(a, b Vector) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot, na, nb float64
	for g, w := range a {
		dot += w * b[g]
	}
	for _, w := range a {
		na += w * w
	}
	for _, w := range b {
		nb += w * w
	}
	if na == 0 || nb == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(na) * math.Sqrt(nb))
	return math.Max(0, math.Min(1, sim))
}
