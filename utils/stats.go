package utils

import (
	"time"

	"gonum.org/v1/gonum/stat"
)

// Stats for performance monitoring of a run
type Stats struct {
	GenerationsPerSecond float64
	AveragePopulation    float64
	PopulationStdDev     float64
	TotalGenerations     int
	StartTime            time.Time
	Elapsed              time.Duration
	Populations          []float64
}

func NewStats() *Stats {
	return &Stats{StartTime: time.Now()}
}

// Update records one computed generation
func (s *Stats) Update(generation int, population int, duration time.Duration) {
	s.TotalGenerations = generation
	s.Elapsed += duration
	if s.Elapsed > 0 {
		s.GenerationsPerSecond = float64(generation) / s.Elapsed.Seconds()
	}

	s.Populations = append(s.Populations, float64(population))
	s.AveragePopulation, s.PopulationStdDev = stat.MeanStdDev(s.Populations, nil)
}
