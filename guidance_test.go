package azb

import (
	"testing"

	"github.com/gonum/floats"
)

func TestMissionPhaseString(t *testing.T) {
	for phase, want := range map[MissionPhase]string{
		Ascent: "Ascent", TransLunarInjection: "TLI", LunarOrbitInsertion: "LOI",
		Descent: "Descent", Landed: "Landed",
	} {
		if phase.String() != want {
			t.Fatalf("%d stringifies as %s", phase, phase)
		}
	}
}

// TestMissionProfile walks the full reference profile through the phase machine
// and checks the guards, the thrust laws and the burn latches at each leg.
func TestMissionProfile(t *testing.T) {
	g := NewGuidanceComputerFromPhase(nil, 500e3, Ascent, nil)
	seen := []MissionPhase{g.Phase()}
	tick := func(r, v []float64) []float64 {
		thrust := g.Thrust(r, v, Earth, Moon)
		seen = append(seen, g.Phase())
		return thrust
	}

	// Below the LEO gate: hold Ascent, no thrust.
	lowOrbit := []float64{0, -(Earth.Radius + 100e3), 0}
	if thrust := tick(lowOrbit, []float64{7700, 0, 0}); norm(thrust) != 0 {
		t.Fatal("ascent must coast")
	}
	if g.Phase() != Ascent {
		t.Fatal("must hold Ascent below the LEO gate")
	}

	// Altitude and speed gates met: TLI, burning full prograde.
	parking := []float64{0, -(Earth.Radius + 200e3), 0}
	thrust := tick(parking, []float64{7700, 0, 0})
	if g.Phase() != TransLunarInjection {
		t.Fatal("must enter TLI from the parking orbit")
	}
	if !vectorsEqual(thrust, []float64{500e3, 0, 0}) {
		t.Fatalf("TLI must burn full prograde, got %v", thrust)
	}

	// Departure speed reached: the burn latches off.
	if thrust = tick(parking, []float64{10900, 0, 0}); norm(thrust) != 0 {
		t.Fatal("TLI must cut off at departure speed")
	}
	// Sticky even though gravity pulls the speed back under the cutoff.
	if thrust = tick(parking, []float64{9000, 0, 0}); norm(thrust) != 0 {
		t.Fatal("the TLI cutoff must latch")
	}

	// Inside the lunar approach gate: LOI, braking at half thrust retrograde.
	approach := sub(Moon.R, []float64{60000e3, 0, 0})
	thrust = tick(approach, []float64{2000, 0, 0})
	if g.Phase() != LunarOrbitInsertion {
		t.Fatal("must enter LOI inside the approach gate")
	}
	if !vectorsEqual(thrust, []float64{-250e3, 0, 0}) {
		t.Fatalf("LOI must brake at half thrust retrograde, got %v", thrust)
	}

	// Capture speed reached: latch, and stay latched.
	if thrust = tick(approach, []float64{700, 0, 0}); norm(thrust) != 0 {
		t.Fatal("LOI must cut off at capture speed")
	}
	if thrust = tick(approach, []float64{900, 0, 0}); norm(thrust) != 0 {
		t.Fatal("the LOI cutoff must latch")
	}

	// Low and slow over the Moon: Descent, staged braking at 80%.
	lowLunar := sub(Moon.R, []float64{Moon.Radius + 100e3, 0, 0})
	thrust = tick(lowLunar, []float64{1500, 0, 0})
	if g.Phase() != Descent {
		t.Fatal("must enter Descent from low lunar orbit")
	}
	if !vectorsEqual(thrust, []float64{-400e3, 0, 0}) {
		t.Fatalf("descent must brake at 80%% retrograde, got %v", thrust)
	}

	// Within the band allowance: coast.
	if thrust = tick(lowLunar, []float64{250, 0, 0}); norm(thrust) != 0 {
		t.Fatal("descent must coast below the band target")
	}

	// Touchdown gate: Landed, terminal.
	surface := sub(Moon.R, []float64{Moon.Radius + 5, 0, 0})
	if thrust = tick(surface, []float64{2, 0, 0}); norm(thrust) != 0 {
		t.Fatal("a landed vehicle must not thrust")
	}
	if g.Phase() != Landed {
		t.Fatal("must land at the touchdown gate")
	}
	// Landed is terminal.
	tick(parking, []float64{7700, 0, 0})
	if g.Phase() != Landed {
		t.Fatal("Landed must be terminal")
	}

	// Phases only ever move forward.
	for i := 1; i < len(seen); i++ {
		if seen[i] < seen[i-1] {
			t.Fatalf("phase regressed from %s to %s", seen[i-1], seen[i])
		}
	}
}

func TestDescentBands(t *testing.T) {
	law := descentBrake{max: 500e3}
	for alt, want := range map[float64]float64{
		60e3: 300, 10e3: 100, 1e3: 30, 100: 5, 0: 5,
	} {
		if got := law.targetSpeed(alt); got != want {
			t.Fatalf("band target at %f m = %f, want %f", alt, got, want)
		}
	}
	// Faster than the band: brake at 80% of max, retrograde.
	thrust := law.Thrust([]float64{0, 400, 0}, 60e3)
	if !vectorsEqual(thrust, []float64{0, -400e3, 0}) {
		t.Fatalf("brake thrust fail: %v", thrust)
	}
	if !floats.EqualWithinAbs(norm(thrust), 0.8*500e3, 1e-9) {
		t.Fatal("brake magnitude fail")
	}
}

func TestGuidanceDefaultsToTLI(t *testing.T) {
	g := NewGuidanceComputer(nil, 500e3, nil)
	if g.Phase() != TransLunarInjection {
		t.Fatal("the reference profile starts at TLI")
	}
}
