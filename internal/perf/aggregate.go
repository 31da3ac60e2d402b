package perf

import (
	"time"

	"github.com/montanaflynn/stats"
)

// Aggregate summarizes a set of metric samples.
type Aggregate struct {
	Samples        int           `json:"samples"`
	AverageStartup time.Duration `json:"averageStartupTime"`
	P95Startup     time.Duration `json:"p95StartupTime"`
	AverageRender  time.Duration `json:"averageRenderTime"`
	AverageMemory  float64       `json:"averageMemoryUsage"`
	PeakMemory     float64       `json:"peakMemoryUsage"`
	AverageBattery float64       `json:"averageBatteryDrain"`
	MemoryLeaks    int           `json:"memoryLeaks"`
}

// Summarize computes means, the 95th percentile startup time and the
// highest peak memory over samples. An empty input yields a zero Aggregate.
func Summarize(samples []Metrics) Aggregate {
	agg := Aggregate{Samples: len(samples)}
	if len(samples) == 0 {
		return agg
	}

	var startup, render, memory, peak, battery stats.Float64Data
	for _, m := range samples {
		startup = append(startup, float64(m.StartupTime))
		render = append(render, float64(m.RenderTime))
		memory = append(memory, m.Memory.Average)
		peak = append(peak, m.Memory.Peak)
		battery = append(battery, m.Battery.DrainRate)
		if m.Memory.Leaks {
			agg.MemoryLeaks++
		}
	}

	if v, err := stats.Mean(startup); err == nil {
		agg.AverageStartup = time.Duration(v)
	}
	if v, err := stats.Percentile(startup, 95); err == nil {
		agg.P95Startup = time.Duration(v)
	}
	if v, err := stats.Mean(render); err == nil {
		agg.AverageRender = time.Duration(v)
	}
	if v, err := stats.Mean(memory); err == nil {
		agg.AverageMemory = v
	}
	if v, err := stats.Max(peak); err == nil {
		agg.PeakMemory = v
	}
	if v, err := stats.Mean(battery); err == nil {
		agg.AverageBattery = v
	}
	return agg
}
