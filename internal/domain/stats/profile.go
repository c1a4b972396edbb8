// Package stats reduces salary samples to descriptive statistics.
package stats

import (
	"errors"
	"math"
	"sort"
)

// Quartile positions. Quartiles use nearest-rank indexing into the sorted
// sample without interpolation.
const (
	q1Position = 0.25
	q3Position = 0.75
)

// ErrEmptySample is returned when a profile is requested for no values.
var ErrEmptySample = errors.New("empty sample")

// Profile summarizes a numeric sample.
type Profile struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"`
	Q1     float64 `json:"q1"`
	Q3     float64 `json:"q3"`
	IQR    float64 `json:"iqr"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Compute builds a Profile from values. The input slice is left untouched.
// Standard deviation is the population value.
func Compute(values []float64) (Profile, error) {
	n := len(values)
	if n == 0 {
		return Profile{}, ErrEmptySample
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, v := range sorted {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range sorted {
		d := v - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(n))

	var median float64
	if n%2 == 0 {
		median = (sorted[n/2-1] + sorted[n/2]) / 2
	} else {
		median = sorted[n/2]
	}

	q1 := sorted[int(math.Floor(float64(n)*q1Position))]
	q3 := sorted[int(math.Floor(float64(n)*q3Position))]

	return Profile{
		Mean:   mean,
		Median: median,
		StdDev: std,
		Q1:     q1,
		Q3:     q3,
		IQR:    q3 - q1,
		Min:    sorted[0],
		Max:    sorted[n-1],
		Count:  n,
	}, nil
}
