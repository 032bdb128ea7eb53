package vectorindex

import "math"

// CosineSimilarity returns the cosine of the angle between a and b: their
// dot product divided by the product of their L2 norms. A zero-norm vector
// (a failed embedding) yields 0 rather than a division error, so degraded
// chunks rank last instead of breaking the query.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// isZero reports whether v is empty or has zero norm.
func isZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
