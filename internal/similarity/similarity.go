// Package similarity provides the vector math used to score skill matches.
package similarity

import "math"

// Cosine computes the cosine similarity between two vectors.
// It returns 0 for nil inputs, mismatched lengths, or zero-magnitude
// vectors so that malformed data degrades to "no match" instead of
// crashing scoring. The result is mathematically in [-1, 1]; callers
// clamp at the threshold-comparison step, not here.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Normalize returns a unit-length copy of v. Zero vectors are returned
// unchanged.
func Normalize(v []float64) []float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}

	if sum == 0 {
		return v
	}

	norm := math.Sqrt(sum)
	result := make([]float64, len(v))
	for i, val := range v {
		result[i] = val / norm
	}

	return result
}
