package formulas

import (
	"github.com/markcheno/go-talib"
)

// ATR calculates the average true range over the given period from OHLC series.
// Input slices must be the same length and ordered oldest first. Returns the
// latest ATR value, or 0 when there is not enough data for the period.
func ATR(high, low, close []float64, period int) float64 {
	if period <= 0 {
		return 0
	}
	if len(high) <= period || len(high) != len(low) || len(high) != len(close) {
		return 0
	}

	series := talib.Atr(high, low, close, period)
	if len(series) == 0 {
		return 0
	}
	return series[len(series)-1]
}

// ATRSeries returns the full average true range series for charting.
// Leading values (before the period warms up) are zero, matching talib output.
func ATRSeries(high, low, close []float64, period int) []float64 {
	if period <= 0 || len(high) <= period || len(high) != len(low) || len(high) != len(close) {
		return []float64{}
	}
	return talib.Atr(high, low, close, period)
}
