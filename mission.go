package azb

import (
	"math"
	"math/rand"
	"sync"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// Event codes downlinked on mission outcomes.
const (
	evtLanded    uint16 = 2001
	evtCollision uint16 = 2002
	evtFuelOut   uint16 = 2003
	evtAbort     uint16 = 2004
	evtTimeout   uint16 = 2005
)

// Outcome defines an enum of terminal mission outcomes.
type Outcome uint8

const (
	// OutcomeNone means the mission is still running.
	OutcomeNone Outcome = iota
	// OutcomeLanded is the only successful outcome.
	OutcomeLanded
	// OutcomeCollision means the vehicle hit the Earth.
	OutcomeCollision
	// OutcomeFuelExhausted means the propellant ran out.
	OutcomeFuelExhausted
	// OutcomeAborted means FDIR declared the system critical.
	OutcomeAborted
	// OutcomeTimeout means the time budget ran out.
	OutcomeTimeout
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNone:
		return "in flight"
	case OutcomeLanded:
		return "landed"
	case OutcomeCollision:
		return "earth collision"
	case OutcomeFuelExhausted:
		return "fuel exhausted"
	case OutcomeAborted:
		return "FDIR abort"
	case OutcomeTimeout:
		return "time exceeded"
	}
	panic("cannot stringify unknown outcome")
}

// SimConfig holds the run parameters. All times in seconds, SI units throughout.
type SimConfig struct {
	Step              float64 // integration step
	MaxTime           float64 // time budget
	Isp               float64 // specific impulse in s
	MaxThrust         float64 // N
	InitialMass       float64 // wet mass in kg
	DryMass           float64 // kg
	OrbitAltitude     float64 // parking orbit altitude in m
	SensorSigma       float64 // 1-σ position sensor noise in m
	ProcessNoise      float64 // estimator Q diagonal
	MeasurementNoise  float64 // estimator R diagonal
	Kp, Kd            float64 // attitude PD gains
	Inertia           float64 // scalar moment of inertia in kg·m²
	TelemetryInterval float64 // s between nav/status frames
	Seed              int64   // sensor noise seed; 0 seeds from the wall clock
	Export            ExportConfig
}

// DefaultSimConfig is a five-day reference mission from a 400 km parking orbit.
func DefaultSimConfig() SimConfig {
	return SimConfig{
		Step:              1,
		MaxTime:           5 * 24 * 3600,
		Isp:               450,
		MaxThrust:         500e3,
		InitialMass:       250e3,
		DryMass:           15e3,
		OrbitAltitude:     400e3,
		SensorSigma:       100,
		ProcessNoise:      0.1,
		MeasurementNoise:  10,
		Kp:                2,
		Kd:                1,
		Inertia:           12e3,
		TelemetryInterval: 60,
	}
}

// FuelPercent returns the remaining fuel fraction for a given current mass. A
// configuration without fuel capacity reads as empty.
func (c SimConfig) FuelPercent(mass float64) float64 {
	if c.InitialMass <= c.DryMass {
		return 0
	}
	return (mass - c.DryMass) / (c.InitialMass - c.DryMass) * 100
}

// SimResult is the summary of a completed run.
type SimResult struct {
	Success     bool
	Outcome     Outcome
	Final       KinematicState
	MissionTime float64 // s
	FuelUsed    float64 // kg
	Phase       MissionPhase
	Telemetry   *TelemetryStore
}

// Mission owns the single evolving instance of each flight component and drives
// them in lockstep, one deterministic call sequence per tick.
type Mission struct {
	Config    SimConfig
	State     KinematicState
	Earth     Body
	Moon      Body
	Guidance  *GuidanceComputer
	Nav       *NavFilter
	Attitude  *AttitudeController
	FDIR      *FDIR
	Telemetry *TelemetryStore

	sensor        PositionSensor
	integ         Integrator
	outcome       Outcome
	iteration     uint64
	lastTelemetry float64
	logger        kitlog.Logger
	histChan      chan<- TickRecord
	wg            sync.WaitGroup
}

// NewMission assembles a mission from the given configuration. The vehicle starts
// in a circular parking orbit at (0, -r, 0) with its velocity on +X, pointing at
// the Moon on the +X axis, and guidance starts in TransLunarInjection.
func NewMission(cfg SimConfig, logger kitlog.Logger) *Mission {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	orbitRadius := Earth.Radius + cfg.OrbitAltitude
	initPos := []float64{0, -orbitRadius, 0}
	initVel := []float64{math.Sqrt(Earth.GM() / orbitRadius), 0, 0}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	landingSite := sub(Moon.R, []float64{Moon.Radius, 0, 0})

	m := &Mission{
		Config:    cfg,
		State:     NewKinematicState(initPos, initVel, cfg.InitialMass),
		Earth:     Earth,
		Moon:      Moon,
		Guidance:  NewGuidanceComputer(landingSite, cfg.MaxThrust, logger),
		Nav:       NewNavFilter(initPos, initVel, cfg.ProcessNoise, cfg.MeasurementNoise, logger),
		Attitude:  NewAttitudeController(cfg.Kp, cfg.Kd),
		FDIR:      NewFDIR(logger),
		Telemetry: NewTelemetryStore(),
		sensor:    NewPositionSensor(cfg.SensorSigma, rand.New(rand.NewSource(seed))),
		integ:     RK4{Isp: cfg.Isp, DryMass: cfg.DryMass},
		logger:    kitlog.With(logger, "subsys", "mission"),
	}

	if !cfg.Export.IsUseless() {
		histChan := make(chan TickRecord, 1000)
		m.histChan = histChan
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			StreamStates(cfg.Export, histChan)
		}()
	}
	return m
}

// LogStatus logs the high level state of the vehicle.
func (m *Mission) LogStatus() {
	m.logger.Log("level", "info", "t(s)", m.State.Time, "phase", m.Guidance.Phase(),
		"altEarth(km)", m.Earth.Altitude(m.State.R)/1e3,
		"distMoon(km)", norm(sub(m.Moon.R, m.State.R))/1e3,
		"speed(m/s)", norm(m.State.V),
		"fuel(%)", m.Config.FuelPercent(m.State.Mass))
}

// Tick performs one simulation step: FDIR cycle, terminal guards, guidance,
// integration, estimation, telemetry. It returns false once the mission reached
// a terminal outcome.
func (m *Mission) Tick() bool {
	cfg := m.Config

	m.FDIR.RunCycle()
	if !m.FDIR.Operational() {
		return m.finish(OutcomeAborted, evtAbort)
	}
	if m.Earth.Altitude(m.State.R) < -100 {
		return m.finish(OutcomeCollision, evtCollision)
	}

	// Guidance: phase guard, then the commanded thrust.
	thrust := m.Guidance.Thrust(m.State.R, m.State.V, m.Earth, m.Moon)

	// Slew the vehicle onto the commanded thrust direction.
	m.Attitude.PointTowards(thrust)
	m.Attitude.Update(m.Attitude.Torque(), cfg.Inertia, cfg.Step)

	// True state propagation.
	m.integ.Step(&m.State, thrust, []Body{m.Earth, m.Moon}, cfg.Step)

	// The estimator only ever sees the noisy fix.
	m.Nav.Predict(cfg.Step)
	m.Nav.Update(m.sensor.Measure(m.State.R))

	if m.State.Time-m.lastTelemetry >= cfg.TelemetryInterval {
		m.logTelemetry()
		m.lastTelemetry = m.State.Time
	}
	if m.histChan != nil {
		m.histChan <- TickRecord{m.State, m.Guidance.Phase()}
	}
	if m.iteration%1000 == 0 {
		m.LogStatus()
	}
	m.iteration++

	m.FDIR.ReportNominal()

	if m.Guidance.Phase() == Landed {
		return m.finish(OutcomeLanded, evtLanded)
	}
	if m.State.Mass <= cfg.DryMass {
		return m.finish(OutcomeFuelExhausted, evtFuelOut)
	}
	if m.State.Time >= cfg.MaxTime {
		return m.finish(OutcomeTimeout, evtTimeout)
	}
	return true
}

// finish records the outcome. Always returns false.
func (m *Mission) finish(o Outcome, evt uint16) bool {
	m.outcome = o
	m.Telemetry.LogEvent(SubsysGNC, evt, o.String())
	level := "notice"
	if o != OutcomeLanded {
		level = "critical"
	}
	m.logger.Log("level", level, "outcome", o, "t(s)", m.State.Time)
	return false
}

// Run drives ticks until a terminal outcome and returns the result.
func (m *Mission) Run() SimResult {
	m.logger.Log("level", "notice", "status", "start",
		"orbitAlt(km)", m.Earth.Altitude(m.State.R)/1e3,
		"speed(m/s)", norm(m.State.V),
		"mass(kg)", m.State.Mass, "maxThrust(kN)", m.Config.MaxThrust/1e3)

	for m.Tick() {
	}

	if m.histChan != nil {
		close(m.histChan)
		m.wg.Wait() // Don't return until the export file is written.
	}
	m.LogStatus()

	return SimResult{
		Success:     m.outcome == OutcomeLanded,
		Outcome:     m.outcome,
		Final:       m.State,
		MissionTime: m.State.Time,
		FuelUsed:    m.Config.InitialMass - m.State.Mass,
		Phase:       m.Guidance.Phase(),
		Telemetry:   m.Telemetry,
	}
}

// logTelemetry downlinks one navigation and one status frame.
func (m *Mission) logTelemetry() {
	m.Telemetry.LogNavigation(m.State.R, m.State.V)
	health := uint8(0)
	if m.FDIR.Operational() {
		health = 100
	}
	m.Telemetry.LogStatus(m.Guidance.Phase(), m.Config.FuelPercent(m.State.Mass), health)
}
