package azb

import (
	"fmt"
	"strings"
	"time"

	"math"

	"github.com/soniakeys/meeus/julian"
	"github.com/soniakeys/meeus/moonposition"
)

const (
	// G is the universal gravitational constant in m³/(kg·s²).
	G = 6.67430e-11
	// G0 is the standard gravity in m/s², used for propellant flow.
	G0 = 9.80665
	// EarthMoonDistance is the mean Earth-Moon distance in meters.
	EarthMoonDistance = 384400e3
)

// Body defines an attracting celestial body. All units are SI meters and kilograms,
// positions in the Earth-centered inertial frame of the simulation.
type Body struct {
	Name   string
	Radius float64   // mean radius in m
	Mass   float64   // mass in kg
	R      []float64 // position in m
}

// GM returns μ of this body in m³/s².
func (b Body) GM() float64 {
	return G * b.Mass
}

// Altitude returns the altitude of the given point above this body's surface.
func (b Body) Altitude(point []float64) float64 {
	return norm(sub(point, b.R)) - b.Radius
}

func (b Body) String() string {
	return b.Name + " body"
}

// At returns a copy of this body placed at the provided position.
func (b Body) At(r []float64) Body {
	return Body{b.Name, b.Radius, b.Mass, r}
}

// BodyFromString returns the body from its name.
func BodyFromString(name string) (Body, error) {
	switch strings.ToLower(name) {
	case "earth":
		return Earth, nil
	case "moon":
		return Moon, nil
	default:
		return Body{}, fmt.Errorf("undefined body '%s'", name)
	}
}

/* Definitions */

// Earth is home, at the origin of the simulation frame.
var Earth = Body{"Earth", 6.371e6, 5.972e24, []float64{0, 0, 0}}

// Moon is the destination, placed on the +X axis at mean distance.
var Moon = Body{"Moon", 1.737e6, 7.342e22, []float64{EarthMoonDistance, 0, 0}}

// MoonAt returns the Moon placed from the geocentric ephemeris at the given epoch,
// in ecliptic Cartesian meters. Use this instead of the canonical +X placement when
// a scenario pins a real launch date.
func MoonAt(epoch time.Time) Body {
	λ, β, Δ := moonposition.Position(julian.TimeToJD(epoch.UTC()))
	sβ, cβ := math.Sincos(β.Rad())
	sλ, cλ := math.Sincos(λ.Rad())
	Δ *= 1e3 // meeus returns km
	return Moon.At([]float64{Δ * cβ * cλ, Δ * cβ * sλ, Δ * sβ})
}

// GravityAccel returns the gravitational acceleration in m/s² at the given point
// from all provided bodies. Bodies closer than one meter contribute nothing, which
// guards the 1/d² singularity.
func GravityAccel(point []float64, bodies ...Body) []float64 {
	a := []float64{0, 0, 0}
	for _, body := range bodies {
		rel := sub(body.R, point)
		d := norm(rel)
		if d < 1 {
			continue
		}
		a = add(a, scale(body.GM()/(d*d*d), rel))
	}
	return a
}
