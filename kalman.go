package azb

import (
	"github.com/ChristopherRabotin/gokalman"
	kitlog "github.com/go-kit/kit/log"
	"github.com/gonum/matrix/mat64"
)

// NavFilter is the onboard navigation Kalman filter. Its state is
// [x y z vx vy vz]ᵀ and it only ever sees noisy position fixes, never the true
// state, so the estimate deliberately diverges from the propagated truth.
//
// The covariance is not re-symmetrized after updates; the drift is acceptable
// over a mission horizon of a few days.
type NavFilter struct {
	x      *mat64.Vector // estimated state
	P      *mat64.Dense  // covariance
	Q      *mat64.Dense  // process noise
	R      *mat64.Dense  // measurement noise (position only)
	logger kitlog.Logger
}

// NewNavFilter returns a filter initialized on the given position and velocity,
// with diagonal process and measurement noise. The initial covariance is large
// (1000·I): we only trust the first fixes, not the injection state.
func NewNavFilter(r, v []float64, processNoise, measurementNoise float64, logger kitlog.Logger) *NavFilter {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	x := mat64.NewVector(6, []float64{r[0], r[1], r[2], v[0], v[1], v[2]})
	P := gokalman.DenseIdentity(6)
	P.Scale(1000, P)
	Q := gokalman.DenseIdentity(6)
	Q.Scale(processNoise, Q)
	R := gokalman.DenseIdentity(3)
	R.Scale(measurementNoise, R)
	return &NavFilter{x, P, Q, R, kitlog.With(logger, "subsys", "nav")}
}

// transition returns the constant-velocity transition matrix F for the given dt.
func transition(dt float64) *mat64.Dense {
	F := gokalman.DenseIdentity(6)
	F.Set(0, 3, dt)
	F.Set(1, 4, dt)
	F.Set(2, 5, dt)
	return F
}

// Predict propagates the estimate by dt: x ← F·x and P ← F·P·Fᵀ + Q·dt.
func (kf *NavFilter) Predict(dt float64) {
	F := transition(dt)
	var x mat64.Vector
	x.MulVec(F, kf.x)
	kf.x = &x

	var FP, P, Qdt mat64.Dense
	FP.Mul(F, kf.P)
	P.Mul(&FP, F.T())
	Qdt.Scale(dt, kf.Q)
	P.Add(&P, &Qdt)
	kf.P = &P
}

// observation is the position-only observation matrix H.
func observation() *mat64.Dense {
	H := mat64.NewDense(3, 6, nil)
	H.Set(0, 0, 1)
	H.Set(1, 1, 1)
	H.Set(2, 2, 1)
	return H
}

// Update corrects the estimate from a position fix in meters. If the innovation
// covariance is singular the update is skipped and the prediction kept.
func (kf *NavFilter) Update(measurement []float64) {
	H := observation()
	z := mat64.NewVector(3, []float64{measurement[0], measurement[1], measurement[2]})

	// Innovation y = z - H·x.
	var Hx, y mat64.Vector
	Hx.MulVec(H, kf.x)
	y.SubVec(z, &Hx)

	// Innovation covariance S = H·P·Hᵀ + R.
	var PHt, S, Sinv mat64.Dense
	PHt.Mul(kf.P, H.T())
	S.Mul(H, &PHt)
	S.Add(&S, kf.R)
	if err := Sinv.Inverse(&S); err != nil {
		kf.logger.Log("level", "warning", "update", "skipped", "err", "singular innovation covariance")
		return
	}

	// Gain K = P·Hᵀ·S⁻¹.
	var K mat64.Dense
	K.Mul(&PHt, &Sinv)

	var Ky mat64.Vector
	Ky.MulVec(&K, &y)
	var x mat64.Vector
	x.AddVec(kf.x, &Ky)
	kf.x = &x

	// P ← (I - K·H)·P.
	var KH, P mat64.Dense
	KH.Mul(&K, H)
	IKH := gokalman.DenseIdentity(6)
	IKH.Sub(IKH, &KH)
	P.Mul(IKH, kf.P)
	kf.P = &P
}

// Position returns the estimated position in meters.
func (kf *NavFilter) Position() []float64 {
	return []float64{kf.x.At(0, 0), kf.x.At(1, 0), kf.x.At(2, 0)}
}

// Velocity returns the estimated velocity in m/s.
func (kf *NavFilter) Velocity() []float64 {
	return []float64{kf.x.At(3, 0), kf.x.At(4, 0), kf.x.At(5, 0)}
}

// StateVector returns the raw 6x1 estimated state.
func (kf *NavFilter) StateVector() *mat64.Vector {
	return kf.x
}

// Covariance returns the current covariance matrix.
func (kf *NavFilter) Covariance() mat64.Matrix {
	return kf.P
}
