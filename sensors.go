package azb

import (
	"math/rand"

	"github.com/gonum/matrix/mat64"
	"github.com/gonum/stat/distmv"
)

// PositionSensor injects zero-mean Gaussian noise on true positions, standing in
// for the navigation sensor suite. The noise source is explicit so estimator runs
// are reproducible under a fixed seed.
type PositionSensor struct {
	σ     float64
	noise *distmv.Normal
}

// NewPositionSensor returns a sensor with the given 1-σ error in meters per axis.
func NewPositionSensor(σ float64, seed *rand.Rand) PositionSensor {
	cov := mat64.NewSymDense(3, []float64{
		σ * σ, 0, 0,
		0, σ * σ, 0,
		0, 0, σ * σ,
	})
	noise, ok := distmv.NewNormal([]float64{0, 0, 0}, cov, seed)
	if !ok {
		panic("NOK in Gaussian")
	}
	return PositionSensor{σ, noise}
}

// Measure returns a noisy fix of the given true position.
func (s PositionSensor) Measure(r []float64) []float64 {
	draw := s.noise.Rand(nil)
	return add(r, draw)
}

// Sigma returns the per-axis standard deviation in meters.
func (s PositionSensor) Sigma() float64 {
	return s.σ
}
