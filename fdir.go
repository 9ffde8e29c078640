package azb

import (
	"math"
	"time"

	kitlog "github.com/go-kit/kit/log"
)

// SystemStatus defines an enum of subsystem health states.
type SystemStatus uint8

const (
	// StatusNominal means all channels agree.
	StatusNominal SystemStatus = iota + 1
	// StatusWarning means a channel disagrees or has dropped out.
	StatusWarning
	// StatusFault means a single channel is left.
	StatusFault
	// StatusCritical means the subsystem is lost.
	StatusCritical
)

func (s SystemStatus) String() string {
	switch s {
	case StatusNominal:
		return "nominal"
	case StatusWarning:
		return "warning"
	case StatusFault:
		return "fault"
	case StatusCritical:
		return "critical"
	}
	panic("cannot stringify unknown system status")
}

// TripleChannel is a triple-modular-redundant value with majority voting.
// On a 2-way or no-consensus 3-way split the vote prefers the lowest channel
// index, which is asymmetric and can mask a persistently diverging first channel;
// consumers must not read more into the vote than the value itself.
type TripleChannel[T comparable] struct {
	Name   string
	values [3]*T
	status SystemStatus
}

// NewTripleChannel returns a named TMR channel with no values set.
func NewTripleChannel[T comparable](name string) *TripleChannel[T] {
	return &TripleChannel[T]{Name: name, status: StatusNominal}
}

// Set stores a value on one of the three channels. Out of range channels are ignored.
func (c *TripleChannel[T]) Set(channel int, value T) {
	if channel < 0 || channel > 2 {
		return
	}
	c.values[channel] = &value
}

// Drop marks a channel as failed.
func (c *TripleChannel[T]) Drop(channel int) {
	if channel < 0 || channel > 2 {
		return
	}
	c.values[channel] = nil
}

// Vote returns the majority value, and whether any value was available.
func (c *TripleChannel[T]) Vote() (T, bool) {
	valid := make([]T, 0, 3)
	for _, v := range c.values {
		if v != nil {
			valid = append(valid, *v)
		}
	}
	switch len(valid) {
	case 0:
		var zero T
		return zero, false
	case 1, 2:
		// Take-first on a 2-way disagreement.
		return valid[0], true
	default:
		if valid[0] == valid[1] || valid[0] == valid[2] {
			return valid[0], true
		}
		if valid[1] == valid[2] {
			return valid[1], true
		}
		return valid[0], true // No consensus.
	}
}

// CheckHealth re-derives and returns the channel status from validity and agreement.
func (c *TripleChannel[T]) CheckHealth() SystemStatus {
	valid := make([]T, 0, 3)
	for _, v := range c.values {
		if v != nil {
			valid = append(valid, *v)
		}
	}
	agree := true
	for i := 1; i < len(valid); i++ {
		if valid[i] != valid[i-1] {
			agree = false
			break
		}
	}
	switch {
	case len(valid) == 3 && agree:
		c.status = StatusNominal
	case len(valid) == 3 || len(valid) == 2:
		c.status = StatusWarning
	case len(valid) == 1:
		c.status = StatusFault
	default:
		c.status = StatusCritical
	}
	return c.status
}

// Status returns the last derived status.
func (c *TripleChannel[T]) Status() SystemStatus {
	return c.status
}

// Watchdog flags when it has not been kicked within its timeout.
type Watchdog struct {
	Name      string
	Timeout   time.Duration
	lastKick  time.Time
	triggered bool
}

// NewWatchdog returns an armed watchdog.
func NewWatchdog(name string, timeout time.Duration) *Watchdog {
	return &Watchdog{Name: name, Timeout: timeout, lastKick: time.Now()}
}

// Kick resets the watchdog.
func (w *Watchdog) Kick() {
	w.lastKick = time.Now()
	w.triggered = false
}

// Check returns whether the watchdog has expired.
func (w *Watchdog) Check() bool {
	if time.Since(w.lastKick) > w.Timeout {
		w.triggered = true
	}
	return w.triggered
}

// FDIR is the fault detection, isolation and recovery manager. The mission loop
// only consumes its Operational flag.
type FDIR struct {
	watchdog      *Watchdog
	status        SystemStatus
	faults        uint
	recoveries    uint
	maxRecoveries uint
	logger        kitlog.Logger
}

// NewFDIR returns a manager with a 5 s main-loop watchdog and three recovery
// attempts before declaring the system critical.
func NewFDIR(logger kitlog.Logger) *FDIR {
	if logger == nil {
		logger = kitlog.NewNopLogger()
	}
	return &FDIR{
		watchdog:      NewWatchdog("MainLoop", 5*time.Second),
		status:        StatusNominal,
		maxRecoveries: 3,
		logger:        kitlog.With(logger, "subsys", "fdir"),
	}
}

// RunCycle checks the watchdog and escalates on timeout.
func (f *FDIR) RunCycle() {
	if f.watchdog.Check() {
		f.HandleFault("watchdog timeout")
	}
}

// HandleFault records a fault and attempts a recovery, or goes critical once the
// recovery budget is spent.
func (f *FDIR) HandleFault(reason string) {
	f.faults++
	f.logger.Log("level", "warning", "fault", reason, "count", f.faults)
	if f.recoveries < f.maxRecoveries {
		f.recoveries++
		f.logger.Log("level", "info", "recovery", f.recoveries, "of", f.maxRecoveries)
		f.watchdog.Kick()
		f.status = StatusWarning
		return
	}
	f.status = StatusCritical
	f.logger.Log("level", "critical", "status", f.status, "reason", "max recovery attempts exceeded")
}

// ReportNominal kicks the watchdog and clears a warning state.
func (f *FDIR) ReportNominal() {
	f.watchdog.Kick()
	if f.status == StatusWarning {
		f.status = StatusNominal
		f.logger.Log("level", "info", "status", f.status, "event", "recovered")
	}
}

// Operational returns whether the system may keep flying.
func (f *FDIR) Operational() bool {
	return f.status != StatusCritical
}

// FaultCount returns the number of faults seen so far.
func (f *FDIR) FaultCount() uint {
	return f.faults
}

// MTBF returns the mean time between failures in hours for a given hourly failure
// rate λ.
func MTBF(failureRate float64) float64 {
	if failureRate <= 0 {
		return math.Inf(1)
	}
	return 1 / failureRate
}
