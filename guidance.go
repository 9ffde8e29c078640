package azb

import (
	kitlog "github.com/go-kit/kit/log"
)

// MissionPhase defines an enum of guidance phases. Phases only ever move forward;
// Landed is terminal.
type MissionPhase uint8

const (
	// Ascent is the climb out of the atmosphere. Unused by the reference profile,
	// which starts from a parking orbit.
	Ascent MissionPhase = iota + 1
	// TransLunarInjection is the prograde departure burn and the coast to the Moon.
	TransLunarInjection
	// LunarOrbitInsertion is the retrograde capture burn.
	LunarOrbitInsertion
	// Descent is the staged braking down to the surface.
	Descent
	// Landed is terminal.
	Landed
)

// Phase transition thresholds.
const (
	leoAltitude     = 185e3  // m above Earth
	leoSpeed        = 7700.0 // m/s
	loiDistance     = 66000e3
	lunarOrbitAlt   = 200e3
	lunarOrbitSpeed = 1700.0
	touchdownAlt    = 10.0
	touchdownSpeed  = 3.0
	tliCutoffSpeed  = 10800.0
	loiCutoffSpeed  = 800.0
)

func (p MissionPhase) String() string {
	switch p {
	case Ascent:
		return "Ascent"
	case TransLunarInjection:
		return "TLI"
	case LunarOrbitInsertion:
		return "LOI"
	case Descent:
		return "Descent"
	case Landed:
		return "Landed"
	}
	panic("cannot stringify unknown mission phase")
}

// thrustLaw computes the commanded thrust vector (N) for the current phase from
// the velocity vector and the altitude above the Moon. Laws with a burn cutoff
// carry their own completion latch, so a fresh law value at each phase transition
// scopes the latch to that phase.
type thrustLaw interface {
	Thrust(v []float64, moonAlt float64) []float64
}

// coastLaw does not thrust. Used for Ascent and Landed.
type coastLaw struct{}

// Thrust implements the thrustLaw interface.
func (cl coastLaw) Thrust(v []float64, moonAlt float64) []float64 {
	return []float64{0, 0, 0}
}

// tliBurn thrusts full prograde until the departure speed is reached, then
// latches and coasts for the remainder of the phase.
type tliBurn struct {
	max    float64
	done   bool
	logger kitlog.Logger
}

// Thrust implements the thrustLaw interface.
func (cl *tliBurn) Thrust(v []float64, moonAlt float64) []float64 {
	speed := norm(v)
	if !cl.done && speed < tliCutoffSpeed {
		return scale(cl.max, unit(v))
	}
	if !cl.done {
		// Sticky: the cutoff holds even if the speed later drops again.
		cl.done = true
		cl.logger.Log("level", "notice", "burn", "TLI", "status", "complete", "speed(m/s)", speed)
	}
	return []float64{0, 0, 0}
}

// loiBurn brakes at half thrust retrograde until capture speed, then latches.
type loiBurn struct {
	max    float64
	done   bool
	logger kitlog.Logger
}

// Thrust implements the thrustLaw interface.
func (cl *loiBurn) Thrust(v []float64, moonAlt float64) []float64 {
	speed := norm(v)
	if !cl.done && speed > loiCutoffSpeed {
		return scale(-0.5*cl.max, unit(v))
	}
	if !cl.done && speed <= loiCutoffSpeed {
		cl.done = true
		cl.logger.Log("level", "notice", "burn", "LOI", "status", "complete", "speed(m/s)", speed)
	}
	return []float64{0, 0, 0}
}

// descentBrake enforces a staged braking profile: a target speed per altitude band
// and an 80% retrograde burn whenever the vehicle is faster than the band allows.
type descentBrake struct {
	max float64
}

// targetSpeed returns the allowed speed for the given altitude above the Moon.
func (cl descentBrake) targetSpeed(moonAlt float64) float64 {
	switch {
	case moonAlt > 50e3:
		return 300
	case moonAlt > 5e3:
		return 100
	case moonAlt > 500:
		return 30
	default:
		return 5
	}
}

// Thrust implements the thrustLaw interface.
func (cl descentBrake) Thrust(v []float64, moonAlt float64) []float64 {
	if norm(v) > cl.targetSpeed(moonAlt) {
		return scale(-0.8*cl.max, unit(v))
	}
	return []float64{0, 0, 0}
}

// GuidanceComputer runs the mission phase machine and produces the commanded
// thrust vector. All commands are colinear with the current velocity (prograde or
// retrograde), which is sufficient for this near-radial two-body profile.
type GuidanceComputer struct {
	Target    []float64 // landing site in m
	MaxThrust float64   // N
	phase     MissionPhase
	law       thrustLaw
	logger    kitlog.Logger
}

// NewGuidanceComputer returns a computer for a vehicle already in its parking
// orbit, i.e. starting at TransLunarInjection.
func NewGuidanceComputer(target []float64, maxThrust float64, logger kitlog.Logger) *GuidanceComputer {
	return NewGuidanceComputerFromPhase(target, maxThrust, TransLunarInjection, logger)
}

// NewGuidanceComputerFromPhase is the same as NewGuidanceComputer with an explicit
// initial phase.
func NewGuidanceComputerFromPhase(target []float64, maxThrust float64, phase MissionPhase, logger kitlog.Logger) *GuidanceComputer {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	logger = kitlog.With(logger, "subsys", "guidance")
	g := &GuidanceComputer{Target: target, MaxThrust: maxThrust, logger: logger}
	g.install(phase)
	return g
}

// Phase returns the current mission phase.
func (g *GuidanceComputer) Phase() MissionPhase {
	return g.phase
}

// install moves to the given phase and arms that phase's thrust law.
func (g *GuidanceComputer) install(phase MissionPhase) {
	g.phase = phase
	switch phase {
	case TransLunarInjection:
		g.law = &tliBurn{max: g.MaxThrust, logger: g.logger}
	case LunarOrbitInsertion:
		g.law = &loiBurn{max: g.MaxThrust, logger: g.logger}
	case Descent:
		g.law = descentBrake{max: g.MaxThrust}
	default:
		g.law = coastLaw{}
	}
}

// Thrust evaluates the phase transition guard and then the phase thrust law for
// the given true position and velocity. Earth and Moon provide the distances the
// guards key on.
func (g *GuidanceComputer) Thrust(r, v []float64, earth, moon Body) []float64 {
	speed := norm(v)
	earthAlt := earth.Altitude(r)
	moonDist := norm(sub(moon.R, r))
	moonAlt := moonDist - moon.Radius

	switch g.phase {
	case Ascent:
		if earthAlt > leoAltitude && speed >= leoSpeed {
			g.install(TransLunarInjection)
			g.logger.Log("level", "notice", "phase", g.phase, "alt(km)", earthAlt/1e3, "speed(m/s)", speed)
		}
	case TransLunarInjection:
		if moonDist < loiDistance {
			g.install(LunarOrbitInsertion)
			g.logger.Log("level", "notice", "phase", g.phase, "moonDist(km)", moonDist/1e3, "speed(m/s)", speed)
		}
	case LunarOrbitInsertion:
		if moonAlt < lunarOrbitAlt && speed < lunarOrbitSpeed {
			g.install(Descent)
			g.logger.Log("level", "notice", "phase", g.phase, "alt(km)", moonAlt/1e3, "speed(m/s)", speed)
		}
	case Descent:
		if moonAlt < touchdownAlt && speed < touchdownSpeed {
			g.install(Landed)
			g.logger.Log("level", "notice", "phase", g.phase, "alt(m)", moonAlt, "speed(m/s)", speed)
		}
	case Landed:
		// Terminal.
	}

	return g.law.Thrust(v, moonAlt)
}
