package perf

import "time"

// MemoryUsage is a simulated memory profile in megabytes.
type MemoryUsage struct {
	Initial float64 `json:"initialMemory"`
	Peak    float64 `json:"peakMemory"`
	Average float64 `json:"averageMemory"`
	Leaks   bool    `json:"memoryLeaks"`
}

// BatteryUsage is a simulated energy profile.
type BatteryUsage struct {
	DrainRate       float64 `json:"drainRate"`
	CPUUsage        float64 `json:"cpuUsage"`
	BackgroundUsage float64 `json:"backgroundUsage"`
}

// NetworkUsage is a simulated traffic profile.
type NetworkUsage struct {
	Requests            int           `json:"requestCount"`
	BytesTransferred    int64         `json:"bytesTransferred"`
	AverageResponseTime time.Duration `json:"averageResponseTime"`
	FailedRequests      int           `json:"failedRequests"`
}

// Metrics is one full measurement run.
type Metrics struct {
	StartupTime     time.Duration `json:"startupTime"`
	RenderTime      time.Duration `json:"renderTime"`
	InteractionTime time.Duration `json:"interactionTime"`
	Memory          MemoryUsage   `json:"memoryUsage"`
	Battery         BatteryUsage  `json:"batteryUsage"`
	Network         NetworkUsage  `json:"networkUsage"`
	Timestamp       time.Time     `json:"timestamp"`
}

// Baseline is the stored reference snapshot for a named test.
type Baseline struct {
	StartupTime  time.Duration `json:"startupTime"`
	MemoryUsage  float64       `json:"memoryUsage"`
	BatteryUsage float64       `json:"batteryUsage"`
	RenderTime   time.Duration `json:"renderTime"`
	RecordedAt   time.Time     `json:"recordedAt"`
}

// BaselineFromMetrics extracts the fields kept in a Baseline. Memory is the
// average usage and battery the drain rate.
func BaselineFromMetrics(m Metrics) Baseline {
	return Baseline{
		StartupTime:  m.StartupTime,
		MemoryUsage:  m.Memory.Average,
		BatteryUsage: m.Battery.DrainRate,
		RenderTime:   m.RenderTime,
		RecordedAt:   m.Timestamp,
	}
}

// Severity ranks a regression.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// AlertSeverity ranks a threshold alert.
type AlertSeverity string

const (
	AlertWarning  AlertSeverity = "warning"
	AlertCritical AlertSeverity = "critical"
)

// Metric names used in regressions and alerts.
const (
	MetricStartupTime = "startupTime"
	MetricMemoryUsage = "memoryUsage"
	MetricBattery     = "batteryUsage"
)

// Regression is a metric that got worse than its baseline.
type Regression struct {
	Metric        string   `json:"metric"`
	Baseline      float64  `json:"baseline"`
	Current       float64  `json:"current"`
	PercentChange float64  `json:"percentChange"`
	Severity      Severity `json:"severity"`
}

// Improvement is a metric that got better than its baseline.
type Improvement struct {
	Metric        string  `json:"metric"`
	Baseline      float64 `json:"baseline"`
	Current       float64 `json:"current"`
	PercentChange float64 `json:"percentChange"`
}

// RegressionReport is the outcome of comparing metrics with a baseline.
type RegressionReport struct {
	HasRegressions bool          `json:"hasRegressions"`
	Regressions    []Regression  `json:"regressions"`
	Improvements   []Improvement `json:"improvements"`
}

// Alert is raised when a metric crosses an absolute threshold.
type Alert struct {
	Metric    string        `json:"metric"`
	Value     float64       `json:"value"`
	Threshold float64       `json:"threshold"`
	Severity  AlertSeverity `json:"severity"`
}

// Report is the result of RunComprehensiveTest.
type Report struct {
	TestName   string            `json:"testName"`
	Timestamp  time.Time         `json:"timestamp"`
	Metrics    Metrics           `json:"metrics"`
	Baseline   *Baseline         `json:"baseline,omitempty"`
	Comparison *RegressionReport `json:"comparison,omitempty"`
	Alerts     []Alert           `json:"alerts"`
	Summary    string            `json:"summary"`
}

// LoadResult aggregates a SimulateHighLoad run.
type LoadResult struct {
	Users               int           `json:"users"`
	AverageResponseTime time.Duration `json:"averageResponseTime"`
	ErrorRate           float64       `json:"errorRate"`
	Throughput          float64       `json:"throughput"`
	MemoryPressure      float64       `json:"memoryPressure"`
}
