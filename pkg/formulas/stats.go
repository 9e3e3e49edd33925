// Package formulas holds the numeric building blocks behind the risk engine.
// Sample statistics use Bessel's correction (n-1) throughout.
package formulas

import (
	"math"
	"sort"

	"github.com/markcheno/go-talib"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return stat.Mean(data, nil)
}

// Variance calculates the sample variance (n-1 denominator).
// Fewer than two observations yield 0; any non-finite value yields NaN.
func Variance(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	if !AllFinite(data) {
		return math.NaN()
	}
	v := stat.Variance(data, nil)
	if v < 0 {
		return 0
	}
	return v
}

// AllFinite reports whether no value is NaN or infinite
func AllFinite(data []float64) bool {
	for _, v := range data {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// StdDev calculates the sample standard deviation
func StdDev(data []float64) float64 {
	return math.Sqrt(Variance(data))
}

// Min returns the smallest value, or 0 for an empty slice
func Min(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	return floats.Min(data)
}

// Sum returns the total of the values
func Sum(data []float64) float64 {
	return floats.Sum(data)
}

// SimpleReturns converts a price series to simple percentage returns.
// Returns[k] = (Price[i] - Price[i-1]) / Price[i-1], emitted only for adjacent
// pairs where both prices are finite and strictly positive.
func SimpleReturns(prices []float64) []float64 {
	if len(prices) < 2 {
		return []float64{}
	}

	rocp := talib.Rocp(prices, 1)
	returns := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if !isFinite(prices[i-1]) || !isFinite(prices[i]) || prices[i-1] <= 0 || prices[i] <= 0 {
			continue
		}
		if !isFinite(rocp[i]) {
			continue
		}
		returns = append(returns, rocp[i])
	}
	return returns
}

// CrossSectionalVolatility approximates volatility from the dispersion of
// price levels when no usable return series exists:
// sqrt(variance(values) / mean(values)). Non-positive means yield 0.
func CrossSectionalVolatility(values []float64) float64 {
	mean := Mean(values)
	if mean <= 0 {
		return 0
	}
	return math.Sqrt(Variance(values) / mean)
}

// ZScore returns the one-sided standard normal quantile for a confidence level
// (0.95 -> ~1.6449). Levels outside (0, 1) yield 0.
func ZScore(confidence float64) float64 {
	if confidence <= 0 || confidence >= 1 {
		return 0
	}
	return distuv.UnitNormal.Quantile(confidence)
}

// ParametricVaR is the one-sided normal VaR expressed as a positive loss fraction.
// A NaN volatility stays NaN.
func ParametricVaR(volatility, z float64) float64 {
	v := z * volatility
	if v < 0 {
		return 0
	}
	return v
}

// ScaleToHorizon applies the square-root-of-time rule.
func ScaleToHorizon(oneDay float64, days int) float64 {
	if days <= 1 {
		return oneDay
	}
	return oneDay * math.Sqrt(float64(days))
}

// HistoricalVaR is the empirical (1-confidence) quantile of the returns,
// reported as a positive loss. A quantile above zero means no loss: 0.
func HistoricalVaR(returns []float64, confidence float64) float64 {
	if len(returns) == 0 || confidence <= 0 || confidence >= 1 {
		return 0
	}

	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	q := stat.Quantile(1-confidence, stat.Empirical, sorted, nil)
	if q >= 0 {
		return 0
	}
	return -q
}
