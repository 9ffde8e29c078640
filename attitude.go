package azb

import (
	"math"

	"github.com/gonum/floats"
)

/*-----*/
/* Quaternions */
/*-----*/

// Quaternion is a rotation quaternion with scalar part W and vector part X, Y, Z.
// All constructors and Mul keep the unit norm.
type Quaternion struct {
	W, X, Y, Z float64
}

// IdentityQuaternion is the no-rotation quaternion.
func IdentityQuaternion() Quaternion {
	return Quaternion{1, 0, 0, 0}
}

// Norm returns the norm of this quaternion.
func (q Quaternion) Norm() float64 {
	return math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
}

// Normalized returns this quaternion scaled to unit norm.
func (q Quaternion) Normalized() Quaternion {
	n := q.Norm()
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return IdentityQuaternion()
	}
	return Quaternion{q.W / n, q.X / n, q.Y / n, q.Z / n}
}

// Inverse returns the inverse rotation. For a unit quaternion this is the conjugate.
func (q Quaternion) Inverse() Quaternion {
	return Quaternion{q.W, -q.X, -q.Y, -q.Z}
}

// Mul returns the Hamilton product q ⊗ o, renormalized.
func (q Quaternion) Mul(o Quaternion) Quaternion {
	return Quaternion{
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}.Normalized()
}

// Rotate applies this rotation to the given 3x1 vector.
func (q Quaternion) Rotate(v []float64) []float64 {
	p := Quaternion{0, v[0], v[1], v[2]}
	// No normalization here: p is not a rotation.
	r := quatRaw(quatRaw(q, p), q.Inverse())
	return []float64{r.X, r.Y, r.Z}
}

// quatRaw is the Hamilton product without renormalization.
func quatRaw(q, o Quaternion) Quaternion {
	return Quaternion{
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
	}
}

// NewQuaternionFromScaledAxis is the exponential map: it returns the rotation of
// |v| radians about unit(v).
func NewQuaternionFromScaledAxis(v []float64) Quaternion {
	θ := norm(v)
	if floats.EqualWithinAbs(θ, 0, 1e-12) {
		return IdentityQuaternion()
	}
	sθ2, cθ2 := math.Sincos(θ / 2)
	u := unit(v)
	return Quaternion{cθ2, sθ2 * u[0], sθ2 * u[1], sθ2 * u[2]}
}

// RotationBetween returns the rotation mapping unit(a) onto unit(b).
func RotationBetween(a, b []float64) Quaternion {
	ua, ub := unit(a), unit(b)
	d := dot(ua, ub)
	if floats.EqualWithinAbs(d, -1, 1e-10) {
		// Antipodal: rotate π about any axis orthogonal to a.
		axis := cross(ua, []float64{1, 0, 0})
		if floats.EqualWithinAbs(norm(axis), 0, 1e-10) {
			axis = cross(ua, []float64{0, 1, 0})
		}
		u := unit(axis)
		return Quaternion{0, u[0], u[1], u[2]}
	}
	axis := cross(ua, ub)
	return Quaternion{1 + d, axis[0], axis[1], axis[2]}.Normalized()
}

// RotationVector returns the axis·angle representation of this rotation, using the
// short way around.
func (q Quaternion) RotationVector() []float64 {
	if q.W < 0 {
		q = Quaternion{-q.W, -q.X, -q.Y, -q.Z}
	}
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if floats.EqualWithinAbs(n, 0, 1e-12) {
		return []float64{0, 0, 0}
	}
	θ := 2 * math.Atan2(n, q.W)
	return []float64{θ * q.X / n, θ * q.Y / n, θ * q.Z / n}
}

/*-----*/
/* PD attitude control */
/*-----*/

// forwardAxis is the body axis aligned with the thrust vector.
var forwardAxis = []float64{0, 0, 1}

// AttitudeController holds the vehicle orientation and runs a PD law to slew the
// forward axis onto a commanded direction. Inertia is a scalar approximation.
type AttitudeController struct {
	Orientation Quaternion // current orientation
	Target      Quaternion // commanded orientation
	Ω           []float64  // body angular velocity in rad/s
	Kp, Kd      float64
}

// NewAttitudeController returns a controller at rest with the given gains.
func NewAttitudeController(kp, kd float64) *AttitudeController {
	return &AttitudeController{IdentityQuaternion(), IdentityQuaternion(), []float64{0, 0, 0}, kp, kd}
}

// PointTowards sets the target orientation so the forward axis maps onto the given
// direction. Directions below 1e-6 in norm are ignored and the previous target kept.
func (c *AttitudeController) PointTowards(direction []float64) {
	if norm(direction) <= 1e-6 {
		return
	}
	c.Target = RotationBetween(forwardAxis, unit(direction))
}

// Torque returns the PD control torque τ = Kp·θ_err - Kd·Ω from the error
// quaternion target ⊗ current⁻¹.
func (c *AttitudeController) Torque() []float64 {
	qErr := c.Target.Mul(c.Orientation.Inverse())
	θ := qErr.RotationVector()
	return sub(scale(c.Kp, θ), scale(c.Kd, c.Ω))
}

// Update integrates the rotational state by dt under the given torque (N·m) and
// scalar moment of inertia (kg·m²), with first-order quaternion kinematics.
func (c *AttitudeController) Update(torque []float64, inertia, dt float64) {
	α := scale(1/inertia, torque)
	c.Ω = add(c.Ω, scale(dt, α))
	c.Orientation = NewQuaternionFromScaledAxis(scale(dt, c.Ω)).Mul(c.Orientation)
}
