package embedding

import "math"

// Cosine returns the cosine similarity between a and b in [-1, 1].
// Degenerate input (nil slices, mismatched lengths, zero-norm vectors)
// yields 0 rather than an error so scoring code never has to branch.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// NormalizeL2 returns a unit-norm copy of v. A zero vector is returned
// unchanged (no direction to preserve, and dividing by zero helps nobody).
func NormalizeL2(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}

	norm := math.Sqrt(sum)
	if norm == 0 {
		return v
	}

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

// Mean returns the unweighted component-wise mean of the given vectors.
// Vectors whose length differs from dim are skipped; returns nil when no
// vector survives the filter.
func Mean(vectors [][]float32, dim int) []float32 {
	sum := make([]float64, dim)
	count := 0
	for _, v := range vectors {
		if len(v) != dim {
			continue
		}
		for i, x := range v {
			sum[i] += float64(x)
		}
		count++
	}
	if count == 0 {
		return nil
	}

	out := make([]float32, dim)
	for i := range sum {
		out[i] = float32(sum[i] / float64(count))
	}
	return out
}
