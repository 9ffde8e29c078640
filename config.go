package azb

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadScenario reads a TOML scenario file from the current directory and returns
// the run configuration. Unset keys keep their defaults.
func LoadScenario(name string) (SimConfig, error) {
	cfg := DefaultSimConfig()
	name = strings.Replace(name, ".toml", "", 1)
	v := viper.New()
	v.SetConfigName(name)
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("./%s.toml: %s", name, err)
	}

	set := func(key string, dst *float64) {
		if v.IsSet(key) {
			*dst = v.GetFloat64(key)
		}
	}
	set("mission.step", &cfg.Step)
	set("mission.max_time", &cfg.MaxTime)
	set("mission.telemetry_interval", &cfg.TelemetryInterval)
	set("spacecraft.isp", &cfg.Isp)
	set("spacecraft.thrust", &cfg.MaxThrust)
	set("spacecraft.wet", &cfg.InitialMass)
	set("spacecraft.dry", &cfg.DryMass)
	set("spacecraft.inertia", &cfg.Inertia)
	set("orbit.altitude", &cfg.OrbitAltitude)
	set("estimator.sensor_sigma", &cfg.SensorSigma)
	set("estimator.process_noise", &cfg.ProcessNoise)
	set("estimator.measurement_noise", &cfg.MeasurementNoise)
	set("attitude.kp", &cfg.Kp)
	set("attitude.kd", &cfg.Kd)
	if v.IsSet("estimator.seed") {
		cfg.Seed = v.GetInt64("estimator.seed")
	}
	if v.IsSet("export.filename") {
		cfg.Export = ExportConfig{Filename: v.GetString("export.filename"), AsCSV: true}
	}

	if cfg.Step <= 0 {
		return cfg, fmt.Errorf("mission.step must be positive, got %f", cfg.Step)
	}
	if cfg.DryMass >= cfg.InitialMass {
		return cfg, fmt.Errorf("spacecraft.dry (%f) must be below spacecraft.wet (%f)", cfg.DryMass, cfg.InitialMass)
	}
	return cfg, nil
}
