package calib

import (
	"math"
	"testing"

	"github.com/spacedatanetwork/sdn-server/internal/xtce/model"
)

func linear() *model.Calibrator {
	return &model.Calibrator{
		Kind: model.CalibratorPolynomial,
		Terms: []model.PolyTerm{
			{Coefficient: 1, Exponent: 0},
			{Coefficient: 2, Exponent: 1},
		},
	}
}

func TestEvalLinear(t *testing.T) {
	got, err := Eval(linear(), 2)
	if err != nil {
		t.Fatalf("Eval: %v", err)
	}
	if got != 5 {
		t.Errorf("Eval(2) = %v, want 5", got)
	}
}

func TestInverseLinear(t *testing.T) {
	got, err := Inverse(linear(), 5, nil)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	if math.Abs(got-2) > 1e-6 {
		t.Errorf("Inverse(5) = %v, want 2", got)
	}
}

func TestInverseQuadraticPrefersInRangeRoot(t *testing.T) {
	// y = x^2 - 4 has roots x = ±2; only +2 lies in [0, 10].
	c := &model.Calibrator{
		Kind: model.CalibratorPolynomial,
		Terms: []model.PolyTerm{
			{Coefficient: -4, Exponent: 0},
			{Coefficient: 1, Exponent: 2},
		},
	}
	rng := &model.ValidRange{HasMin: true, Min: 0, HasMax: true, Max: 10}
	got, err := Inverse(c, 0, rng)
	if err != nil {
		t.Fatalf("Inverse: %v", err)
	}
	if math.Abs(got-2) > 1e-6 {
		t.Errorf("Inverse = %v, want 2", got)
	}
}

func TestInverseNoRealRoot(t *testing.T) {
	// y = x^2 + 1 has no real root for target 0.
	c := &model.Calibrator{
		Kind: model.CalibratorPolynomial,
		Terms: []model.PolyTerm{
			{Coefficient: 1, Exponent: 0},
			{Coefficient: 1, Exponent: 2},
		},
	}
	if _, err := Inverse(c, 0, nil); err == nil {
		t.Errorf("expected error, no real root exists for target 0")
	}
}
