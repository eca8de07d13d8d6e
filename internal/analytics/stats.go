package analytics

import "math"

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev returns the population standard deviation, or 0 when fewer than
// two values are supplied.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var sumSquares float64
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}

// Correlation returns the Pearson correlation coefficient of two
// equal-length vectors, clamped to [-1, 1]. A zero denominator (either
// vector flat) returns exactly 0, never NaN: seasonality calls this in a
// loop and must tolerate flat sub-sequences.
func Correlation(x, y []float64) float64 {
	n := len(x)
	if n == 0 || len(y) != n {
		return 0
	}
	meanX := Mean(x)
	meanY := Mean(y)

	var numerator float64
	var denomX float64
	var denomY float64
	for i := 0; i < n; i++ {
		dx := x[i] - meanX
		dy := y[i] - meanY
		numerator += dx * dy
		denomX += dx * dx
		denomY += dy * dy
	}

	denom := math.Sqrt(denomX * denomY)
	if denom == 0 {
		return 0
	}

	corr := numerator / denom
	if corr > 1 {
		return 1
	}
	if corr < -1 {
		return -1
	}
	return corr
}

// LogReturns converts a price series into log returns, skipping pairs
// with a non-positive side. Used for cross-series correlation, where raw
// prices on different scales would dominate the coefficient.
func LogReturns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] <= 0 || values[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(values[i]/values[i-1]))
	}
	return returns
}

// Regression holds an ordinary least-squares fit of y against the
// sequential index 0..n-1.
type Regression struct {
	Slope     float64
	Intercept float64
	RSquared  float64
}

// LinearRegression fits y = intercept + slope*i over the integer index.
// A degenerate fit (fewer than two points, or zero variance in x, which
// cannot happen for a sequential index of length >= 2) yields slope 0 and
// intercept equal to the mean. A flat series has zero total variance; its
// RSquared is defined as 0.
func LinearRegression(y []float64) Regression {
	n := len(y)
	if n < 2 {
		return Regression{Intercept: Mean(y)}
	}

	var sumX, sumY, sumXX, sumXY float64
	for i, v := range y {
		x := float64(i)
		sumX += x
		sumY += v
		sumXX += x * x
		sumXY += x * v
	}

	fn := float64(n)
	denom := fn*sumXX - sumX*sumX
	if denom == 0 {
		return Regression{Intercept: Mean(y)}
	}

	slope := (fn*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / fn

	meanY := sumY / fn
	var ssRes, ssTot float64
	for i, v := range y {
		fit := intercept + slope*float64(i)
		ssRes += (v - fit) * (v - fit)
		ssTot += (v - meanY) * (v - meanY)
	}

	rSquared := 0.0
	if ssTot > 0 {
		rSquared = 1 - ssRes/ssTot
		if rSquared < 0 {
			rSquared = 0
		}
		if rSquared > 1 {
			rSquared = 1
		}
	}

	return Regression{Slope: slope, Intercept: intercept, RSquared: rSquared}
}
