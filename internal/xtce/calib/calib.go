// Package calib implements §4.3's PolynomialCalibrator: forward evaluation
// of raw -> engineering values, and inverse root-finding for engineering ->
// raw when encoding.
package calib

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
	"github.com/spacedatanetwork/sdn-server/internal/xtce/xerr"
)

// realRootEpsilon is the imaginary-part threshold below which a companion-
// matrix eigenvalue is treated as real, per spec §4.3 step 1.
const realRootEpsilon = 1e-9

// Eval evaluates Σ cᵢ·xⁱ for the given polynomial at x.
func Eval(c *model.Calibrator, x float64) (float64, error) {
	if c.Kind != model.CalibratorPolynomial {
		return 0, fmt.Errorf("calib: unsupported calibrator kind %d", c.Kind)
	}
	var sum float64
	for _, t := range c.Terms {
		sum += t.Coefficient * math.Pow(x, float64(t.Exponent))
	}
	return sum, nil
}

// Inverse solves p(x) = y for x, returning the root selected per §4.3:
//  1. real (|Im| < realRootEpsilon),
//  2. within rng if rng is non-nil,
//  3. otherwise the candidate minimizing |p(x)-y|,
//
// with ties among in-range candidates broken by proximity to the midpoint
// of rng when rng bounds both sides, and otherwise by the smallest |p(x)-y|.
// When no real root exists it returns a *xerr.CalibrationError.
func Inverse(c *model.Calibrator, y float64, rng *model.ValidRange) (float64, error) {
	if c.Kind != model.CalibratorPolynomial {
		return 0, fmt.Errorf("calib: unsupported calibrator kind %d", c.Kind)
	}

	coeffs, err := denseCoefficients(c)
	if err != nil {
		return 0, err
	}
	// Shift the constant term by -y so we solve p(x) - y = 0.
	coeffs[0] -= y

	// Trim leading (high-order) zero coefficients so the companion matrix
	// has a well-defined degree.
	degree := len(coeffs) - 1
	for degree > 0 && coeffs[degree] == 0 {
		degree--
	}
	if degree == 0 {
		// Constant (possibly zero) polynomial: either no root or every x is
		// a root. Neither is usable as a unique inverse.
		return 0, fmt.Errorf("calib: cannot invert a degree-0 polynomial")
	}

	roots := companionRoots(coeffs[:degree+1])

	var candidates []float64
	for _, r := range roots {
		if math.Abs(imag(r)) < realRootEpsilon {
			candidates = append(candidates, real(r))
		}
	}
	if len(candidates) == 0 {
		return 0, &xerr.CalibrationError{Target: y, Err: fmt.Errorf("calib: no real root found")}
	}

	inRange := func(x float64) bool {
		if rng == nil {
			return true
		}
		if rng.HasMin && x < rng.Min {
			return false
		}
		if rng.HasMax && x > rng.Max {
			return false
		}
		return true
	}

	var inRangeCandidates []float64
	for _, x := range candidates {
		if inRange(x) {
			inRangeCandidates = append(inRangeCandidates, x)
		}
	}

	pool := inRangeCandidates
	if len(pool) == 0 {
		pool = candidates
	}

	if len(pool) == 1 {
		return pool[0], nil
	}

	// Multiple survivors: prefer closest to the midpoint of the declared
	// range; absent a range, or when no root lies in it, minimize |p(x)-y|.
	if len(inRangeCandidates) > 0 && rng != nil && rng.HasMin && rng.HasMax {
		mid := (rng.Min + rng.Max) / 2
		best := pool[0]
		bestDist := math.Abs(best - mid)
		for _, x := range pool[1:] {
			d := math.Abs(x - mid)
			if d < bestDist {
				best, bestDist = x, d
			}
		}
		return best, nil
	}

	best := pool[0]
	bestErr, _ := Eval(c, best)
	bestErr = math.Abs(bestErr - y)
	for _, x := range pool[1:] {
		v, _ := Eval(c, x)
		e := math.Abs(v - y)
		if e < bestErr {
			best, bestErr = x, e
		}
	}
	return best, nil
}

// denseCoefficients expands a sparse term list into a dense coefficient
// slice indexed by exponent, coeffs[i] being the coefficient of x^i.
func denseCoefficients(c *model.Calibrator) ([]float64, error) {
	maxExp := 0
	for _, t := range c.Terms {
		if t.Exponent < 0 {
			return nil, fmt.Errorf("calib: negative exponent %d not supported", t.Exponent)
		}
		if t.Exponent > maxExp {
			maxExp = t.Exponent
		}
	}
	dense := make([]float64, maxExp+1)
	for _, t := range c.Terms {
		dense[t.Exponent] += t.Coefficient
	}
	return dense, nil
}

// companionRoots returns the roots of the polynomial with dense coefficients
// coeffs (coeffs[i] is the coefficient of x^i, coeffs[len-1] != 0) as the
// eigenvalues of its companion matrix.
func companionRoots(coeffs []float64) []complex128 {
	n := len(coeffs) - 1
	if n == 1 {
		// Linear: a0 + a1*x = 0.
		return []complex128{complex(-coeffs[0]/coeffs[1], 0)}
	}

	lead := coeffs[n]
	companion := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		companion.Set(0, i, -coeffs[n-1-i]/lead)
	}
	for i := 1; i < n; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if ok := eig.Factorize(companion, mat.EigenNone); !ok {
		return nil
	}
	values := eig.Values(nil)
	// mat.Eigen.Values returns roots of the companion matrix in an
	// arbitrary order corresponding to leading coefficients of
	// coeffs[n]*x^n + ... ; our companion construction above places the
	// monic-normalized coefficients on the first row, standard form.
	roots := make([]complex128, len(values))
	for i, v := range values {
		roots[i] = complex128(v)
	}
	return roots
}
