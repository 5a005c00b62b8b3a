package study

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Statistical helpers shared by the loaders. All of them skip missing values;
// they return Missing when nothing is observed.

// Mean is the arithmetic mean of the non-missing elements of x.
func Mean(x []float64) float64 {
	obs := dropMissing(x)
	if len(obs) == 0 {
		return Missing
	}

	return stat.Mean(obs, nil)
}

// Median is the 50th percentile of the non-missing elements of x, averaging
// the two middle values on an even count.
func Median(x []float64) float64 {
	obs := dropMissing(x)
	if len(obs) == 0 {
		return Missing
	}

	sort.Float64s(obs)

	mid := len(obs) / 2
	if len(obs)%2 == 1 {
		return obs[mid]
	}

	return (obs[mid-1] + obs[mid]) / 2
}

// MeanStd returns the mean and sample standard deviation of the non-missing
// elements of x, with the count of observations. With fewer than 2
// observations the standard deviation is 0.
func MeanStd(x []float64) (mu, sigma float64, n int) {
	obs := dropMissing(x)
	if len(obs) == 0 {
		return Missing, Missing, 0
	}

	if len(obs) == 1 {
		return obs[0], 0, 1
	}

	mu, sigma = stat.MeanStdDev(obs, nil)

	return mu, sigma, len(obs)
}

func dropMissing(x []float64) []float64 {
	var obs []float64
	for _, v := range x {
		if !IsMissing(v) {
			obs = append(obs, v)
		}
	}

	return obs
}

// GroupMeans averages vals per key, skipping missing values. Keys whose
// values are all missing get no entry.
func GroupMeans(keys []string, vals []float64) map[string]float64 {
	sums := make(map[string]float64)
	ns := make(map[string]int)

	for ind, k := range keys {
		if IsMissing(vals[ind]) {
			continue
		}

		sums[k] += vals[ind]
		ns[k]++
	}

	out := make(map[string]float64, len(sums))
	for k, s := range sums {
		out[k] = s / float64(ns[k])
	}

	return out
}

// GroupProportions computes, per key, the share of rows on which hit is true.
func GroupProportions(keys []string, hit []bool) map[string]float64 {
	hits := make(map[string]int)
	ns := make(map[string]int)

	for ind, k := range keys {
		ns[k]++
		if hit[ind] {
			hits[k]++
		}
	}

	out := make(map[string]float64, len(ns))
	for k, n := range ns {
		out[k] = float64(hits[k]) / float64(n)
	}

	return out
}

// Log10OrMissing is the base-10 log, with non-positive inputs mapped to
// Missing rather than -Inf or NaN surprises downstream.
func Log10OrMissing(x float64) float64 {
	if IsMissing(x) || x <= 0 {
		return Missing
	}

	return math.Log10(x)
}
