// Package stats implements the pure numeric functions the analyzer is built
// on. Every function is total: degenerate inputs (empty slices, zero
// variance) yield 0 or an empty result rather than NaN, Inf, or a panic.
package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Median returns the middle value of a sorted copy of values. For an even
// count it averages the two central values. Returns 0 for an empty slice.
func Median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Variance returns the sample variance (n-1 denominator), or 0 for fewer
// than two values.
func Variance(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	return ss / float64(n-1)
}

// StdDev returns the sample standard deviation.
func StdDev(values []float64) float64 {
	return math.Sqrt(Variance(values))
}

// Percentile returns the p-th percentile (0-100) of values using linear
// interpolation between the two nearest ranks of a sorted copy.
// Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi > n-1 {
		hi = n - 1
	}
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// ZScore returns the signed distance of value from mean in units of stdDev.
// A zero stdDev yields 0: a constant baseline admits no deviation.
func ZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

// MovingAverage returns a simple moving average with one output per valid
// window position. When there are fewer values than the window, it returns a
// single-element slice holding the overall mean.
func MovingAverage(values []float64, window int) []float64 {
	if len(values) == 0 {
		return nil
	}
	if window <= 0 || len(values) < window {
		return []float64{Mean(values)}
	}

	out := make([]float64, 0, len(values)-window+1)
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out = append(out, sum/float64(window))
		}
	}
	return out
}

// EWMA returns the exponentially weighted moving average series. The first
// output equals the first input (seed); each subsequent output is
// alpha*v + (1-alpha)*prev.
func EWMA(values []float64, alpha float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	out := make([]float64, len(values))
	out[0] = values[0]
	for i := 1; i < len(values); i++ {
		out[i] = alpha*values[i] + (1-alpha)*out[i-1]
	}
	return out
}

// Trend directions. Rising values mean worse performance in this domain
// (latency, CLS), so a positive slope is "degrading".
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendDegrading = "degrading"
)

// stableSlopeEpsilon is the mean-normalized slope magnitude below which a
// series is considered flat.
const stableSlopeEpsilon = 0.005

// TrendResult is the output of LinearTrend.
type TrendResult struct {
	Slope      float64 // Raw OLS slope of value against sample index
	Normalized float64 // Slope divided by the series mean
	Direction  string  // "improving", "stable", "degrading"
}

// LinearTrend fits an ordinary least-squares line of value against index and
// classifies the direction from the mean-normalized slope.
func LinearTrend(values []float64) TrendResult {
	n := len(values)
	if n < 2 {
		return TrendResult{Direction: TrendStable}
	}

	meanX := float64(n-1) / 2
	meanY := Mean(values)

	var ssXY, ssXX float64
	for i, v := range values {
		dx := float64(i) - meanX
		ssXY += dx * (v - meanY)
		ssXX += dx * dx
	}
	if ssXX == 0 {
		return TrendResult{Direction: TrendStable}
	}

	slope := ssXY / ssXX
	normalized := slope
	if meanY != 0 {
		normalized = slope / meanY
	}

	direction := TrendStable
	if math.Abs(normalized) >= stableSlopeEpsilon {
		if slope > 0 {
			direction = TrendDegrading
		} else {
			direction = TrendImproving
		}
	}

	return TrendResult{Slope: slope, Normalized: normalized, Direction: direction}
}
