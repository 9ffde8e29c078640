package azb

import "fmt"

// KinematicState is the true kinematic state of the vehicle: position and velocity
// in the inertial frame (m, m/s), wet mass (kg) and elapsed time (s). It is owned
// by the mission loop and mutated in place by an Integrator each tick.
type KinematicState struct {
	R, V []float64
	Mass float64
	Time float64
}

// NewKinematicState returns a state at T0.
func NewKinematicState(r, v []float64, mass float64) KinematicState {
	return KinematicState{r, v, mass, 0}
}

// Integrator advances a KinematicState by dt under gravity from the provided
// bodies and the given thrust vector (N). Implementations must be deterministic
// for a given input; dt must be strictly positive.
type Integrator interface {
	Step(s *KinematicState, thrust []float64, bodies []Body, dt float64)
}

// MassFlow returns the propellant mass flow in kg/s for a thrust magnitude (N)
// and specific impulse (s) via ṁ = T / (Isp·g0).
func MassFlow(thrustMag, isp float64) float64 {
	if isp <= 0 {
		return 0
	}
	return thrustMag / (isp * G0)
}

// thrustAccel returns the acceleration from the thrust vector on the given mass.
func thrustAccel(thrust []float64, mass float64) []float64 {
	if mass <= 0 {
		return []float64{0, 0, 0}
	}
	return scale(1/mass, thrust)
}

// Euler is a first-order stepper: the updated velocity feeds the position update,
// which also carries a half-step acceleration term.
type Euler struct {
	Isp     float64 // specific impulse in s
	DryMass float64 // mass floor in kg
}

// Step implements the Integrator interface.
func (in Euler) Step(s *KinematicState, thrust []float64, bodies []Body, dt float64) {
	if dt <= 0 {
		panic(fmt.Errorf("non-positive step size %f", dt))
	}
	a := add(GravityAccel(s.R, bodies...), thrustAccel(thrust, s.Mass))
	s.V = add(s.V, scale(dt, a))
	s.R = add(s.R, add(scale(dt, s.V), scale(0.5*dt*dt, a)))
	s.Mass -= MassFlow(norm(thrust), in.Isp) * dt
	if s.Mass < in.DryMass {
		s.Mass = in.DryMass
	}
	s.Time += dt
}

// RK4 is a fourth-order Runge-Kutta stepper. The commanded thrust vector is held
// fixed across the step; its acceleration uses the stage-depleted mass.
type RK4 struct {
	Isp     float64
	DryMass float64
}

// Step implements the Integrator interface.
func (in RK4) Step(s *KinematicState, thrust []float64, bodies []Body, dt float64) {
	if dt <= 0 {
		panic(fmt.Errorf("non-positive step size %f", dt))
	}
	ṁ := MassFlow(norm(thrust), in.Isp)

	// k1
	a1 := add(GravityAccel(s.R, bodies...), thrustAccel(thrust, s.Mass))
	v1 := s.V
	// k2
	r2 := add(s.R, scale(dt/2, v1))
	v2 := add(s.V, scale(dt/2, a1))
	a2 := add(GravityAccel(r2, bodies...), thrustAccel(thrust, s.Mass-ṁ*dt/2))
	// k3
	r3 := add(s.R, scale(dt/2, v2))
	v3 := add(s.V, scale(dt/2, a2))
	a3 := add(GravityAccel(r3, bodies...), thrustAccel(thrust, s.Mass-ṁ*dt/2))
	// k4
	r4 := add(s.R, scale(dt, v3))
	v4 := add(s.V, scale(dt, a3))
	a4 := add(GravityAccel(r4, bodies...), thrustAccel(thrust, s.Mass-ṁ*dt))

	// Combine with weights 1, 2, 2, 1.
	s.R = add(s.R, scale(dt/6, add(add(v1, scale(2, v2)), add(scale(2, v3), v4))))
	s.V = add(s.V, scale(dt/6, add(add(a1, scale(2, a2)), add(scale(2, a3), a4))))
	s.Mass -= ṁ * dt
	if s.Mass < in.DryMass {
		s.Mass = in.DryMass
	}
	s.Time += dt
}
