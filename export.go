package azb

import (
	"encoding/csv"
	"fmt"
	"os"

	kitlog "github.com/go-kit/kit/log"
)

// ExportConfig configures trajectory export. An empty config disables it.
type ExportConfig struct {
	Filename string
	AsCSV    bool
}

// IsUseless returns whether this configuration would export nothing.
func (c ExportConfig) IsUseless() bool {
	return c.Filename == "" || !c.AsCSV
}

// TickRecord is one exported row of the true trajectory.
type TickRecord struct {
	State KinematicState
	Phase MissionPhase
}

// StreamStates consumes the propagation history and writes it as CSV. It returns
// when the channel closes, so run it in its own goroutine and close the channel
// to flush.
func StreamStates(conf ExportConfig, states <-chan TickRecord) {
	logger := kitlog.With(kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stderr)), "subsys", "export")
	f, err := os.Create(conf.Filename)
	if err != nil {
		logger.Log("level", "critical", "err", err)
		// Still drain the channel so the producer never blocks.
		for range states {
		}
		return
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	w.Write([]string{"time(s)", "x(m)", "y(m)", "z(m)", "vx(m/s)", "vy(m/s)", "vz(m/s)", "mass(kg)", "phase"})
	for rec := range states {
		s := rec.State
		w.Write([]string{
			fmt.Sprintf("%.3f", s.Time),
			fmt.Sprintf("%.3f", s.R[0]), fmt.Sprintf("%.3f", s.R[1]), fmt.Sprintf("%.3f", s.R[2]),
			fmt.Sprintf("%.6f", s.V[0]), fmt.Sprintf("%.6f", s.V[1]), fmt.Sprintf("%.6f", s.V[2]),
			fmt.Sprintf("%.3f", s.Mass),
			rec.Phase.String(),
		})
	}
}
