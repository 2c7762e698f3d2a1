package forecast

import "math"

// linearFit holds an ordinary least squares fit of value on year.
type linearFit struct {
	Slope     float64
	Intercept float64
}

// fitLine fits y = slope*x + intercept by least squares. ok is false
// when fewer than two points are given or all x are identical.
func fitLine(xs, ys []float64) (linearFit, bool) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return linearFit{}, false
	}

	var sumX, sumY float64
	for i := 0; i < n; i++ {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var sxx, sxy float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (ys[i] - meanY)
	}
	if sxx == 0 {
		return linearFit{}, false
	}

	slope := sxy / sxx
	return linearFit{
		Slope:     slope,
		Intercept: meanY - slope*meanX,
	}, true
}

func (f linearFit) at(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// residualSE computes the residual standard error of the fit over the
// given points, using n-2 degrees of freedom. With two points the fit
// is exact and the spread is zero.
func residualSE(f linearFit, xs, ys []float64) float64 {
	n := len(xs)
	if n <= 2 {
		return 0
	}
	var ss float64
	for i := 0; i < n; i++ {
		r := ys[i] - f.at(xs[i])
		ss += r * r
	}
	return math.Sqrt(ss / float64(n-2))
}

// evaluate computes R², RMSE, and MAE of the fit over a holdout set.
// When the observed values have zero variance, R² is 1 for a perfect
// fit and 0 otherwise.
func evaluate(f linearFit, xs, ys []float64) (r2, rmse, mae float64) {
	n := len(xs)
	if n == 0 {
		return 0, 0, 0
	}

	var sumY float64
	for _, y := range ys {
		sumY += y
	}
	meanY := sumY / float64(n)

	var ssRes, ssTot, absSum float64
	for i := 0; i < n; i++ {
		r := ys[i] - f.at(xs[i])
		ssRes += r * r
		absSum += math.Abs(r)
		d := ys[i] - meanY
		ssTot += d * d
	}

	if ssTot == 0 {
		if ssRes == 0 {
			r2 = 1
		}
	} else {
		r2 = 1 - ssRes/ssTot
	}
	rmse = math.Sqrt(ssRes / float64(n))
	mae = absSum / float64(n)
	return r2, rmse, mae
}

// zQuantile returns the standard normal quantile for probability p,
// e.g. p = 0.975 → ≈1.96.
func zQuantile(p float64) float64 {
	return math.Sqrt2 * math.Erfinv(2*p-1)
}
