package scoring

import "math"

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 when the vectors differ in length or are empty, and 0 (not
// NaN) when either vector has zero magnitude.
func CosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += a[i] * b[i]
		magA += a[i] * a[i]
		magB += b[i] * b[i]
	}

	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// Normalize returns a copy of v scaled to unit Euclidean norm.
// A zero-magnitude vector is returned unchanged rather than producing
// NaN components.
func Normalize(v []float64) []float64 {
	result := append([]float64(nil), v...)

	var sum float64
	for _, val := range v {
		sum += val * val
	}
	if sum == 0 {
		return result
	}

	magnitude := math.Sqrt(sum)
	for i := range result {
		result[i] /= magnitude
	}
	return result
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float64) float64 {
	var sum float64
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}
