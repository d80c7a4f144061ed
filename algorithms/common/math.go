package common

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Basic numeric helpers shared by the analysis stages, on top of gonum

// Mean calculates the arithmetic mean of a slice using gonum
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return stat.Mean(data, nil)
}

// StableMean averages data relative to its first element, so a slice of
// identical values yields exactly that value
func StableMean(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	ref := data[0]
	if math.IsInf(ref, 0) || math.IsNaN(ref) {
		return Mean(data)
	}

	sum := 0.0
	for _, v := range data {
		sum += v - ref
	}
	return ref + sum/float64(len(data))
}

// RMS calculates root mean square
func RMS(data []float64) float64 {
	if len(data) == 0 {
		return 0.0
	}
	return floats.Norm(data, 2) / math.Sqrt(float64(len(data)))
}

// CenteredBytes maps unsigned samples around midpoint onto [-1, 1)
func CenteredBytes(samples []uint8, midpoint float64) []float64 {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = float64(s)/midpoint - 1.0
	}
	return out
}

// CosineSimilarity returns dot(a, b) / ((|a|+eps)(|b|+eps)). Slices must have
// equal length.
func CosineSimilarity(a, b []float64, eps float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0.0
	}
	return floats.Dot(a, b) / ((floats.Norm(a, 2) + eps) * (floats.Norm(b, 2) + eps))
}

// Clamp constrains value to [min, max]
func Clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// IsPositiveFinite reports whether v is usable as a frequency or rate
func IsPositiveFinite(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
