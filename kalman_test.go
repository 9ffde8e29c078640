package azb

import (
	"testing"

	"github.com/gonum/floats"
)

func TestNavFilterPredict(t *testing.T) {
	kf := NewNavFilter([]float64{0, 0, 0}, []float64{100, 0, 0}, 0.1, 10, nil)
	kf.Predict(1)
	if !vectorsEqual(kf.Position(), []float64{100, 0, 0}) {
		t.Fatalf("predicted position %v", kf.Position())
	}
	if !vectorsEqual(kf.Velocity(), []float64{100, 0, 0}) {
		t.Fatal("prediction must not alter the velocity")
	}
}

func TestNavFilterUpdate(t *testing.T) {
	kf := NewNavFilter([]float64{0, 0, 0}, []float64{100, 0, 0}, 0.1, 10, nil)
	kf.Predict(1)
	kf.Update([]float64{105, 0, 0})
	x := kf.Position()[0]
	// The covariance dwarfs R, so the estimate moves nearly onto the fix, but a
	// consistent filter never overshoots it.
	if x <= 100 || x >= 105 {
		t.Fatalf("estimate %f not between prediction and measurement", x)
	}
}

func TestNavFilterConsistentFix(t *testing.T) {
	// A fix equal to the prediction has zero innovation and must leave the state
	// untouched.
	kf := NewNavFilter([]float64{10, -20, 30}, []float64{1, 2, 3}, 0.1, 10, nil)
	kf.Predict(1)
	r, v := kf.Position(), kf.Velocity()
	kf.Update(kf.Position())
	if !vectorsEqual(kf.Position(), r) || !vectorsEqual(kf.Velocity(), v) {
		t.Fatal("zero innovation must not move the estimate")
	}
}

func TestNavFilterConvergence(t *testing.T) {
	// Repeated exact fixes of a stationary target shrink the position covariance.
	kf := NewNavFilter([]float64{500, 0, 0}, []float64{0, 0, 0}, 0.1, 10, nil)
	for i := 0; i < 50; i++ {
		kf.Predict(1)
		kf.Update([]float64{0, 0, 0})
	}
	if !floats.EqualWithinAbs(kf.Position()[0], 0, 1) {
		t.Fatalf("estimate did not converge: %v", kf.Position())
	}
	if kf.Covariance().At(0, 0) >= 1000 {
		t.Fatalf("covariance did not shrink: %f", kf.Covariance().At(0, 0))
	}
}

func TestNavFilterStateVector(t *testing.T) {
	kf := NewNavFilter([]float64{1, 2, 3}, []float64{4, 5, 6}, 0.1, 10, nil)
	x := kf.StateVector()
	if x.Len() != 6 {
		t.Fatalf("state length %d", x.Len())
	}
	for i, want := range []float64{1, 2, 3, 4, 5, 6} {
		if x.At(i, 0) != want {
			t.Fatalf("x[%d] = %f", i, x.At(i, 0))
		}
	}
}
