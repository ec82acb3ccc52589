package scoring

import "math"

// cosine returns the cosine similarity of two vectors, in [-1, 1].
// Mismatched lengths and zero vectors yield 0, so a zero-vector
// embedding fallback contributes nothing to a score.
func cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
