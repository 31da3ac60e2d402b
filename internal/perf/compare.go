package perf

import "time"

func percentChange(current, baseline float64) float64 {
	return (current - baseline) / baseline * 100
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func tier(change, high, medium float64) Severity {
	switch {
	case change > high:
		return SeverityHigh
	case change > medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// CompareWithBaseline classifies metrics against baseline. Baseline fields
// that are zero are not compared.
//
// Startup is a regression above +10% (medium above 15%, high above 25%) and
// an improvement below -5%. Memory is a regression above +15% (20%, 30%).
// Battery drain is a regression above +20% (30%, 40%).
func CompareWithBaseline(m Metrics, baseline Baseline) RegressionReport {
	report := RegressionReport{
		Regressions:  []Regression{},
		Improvements: []Improvement{},
	}

	if baseline.StartupTime > 0 {
		base, cur := millis(baseline.StartupTime), millis(m.StartupTime)
		change := percentChange(cur, base)
		switch {
		case change > 10:
			report.Regressions = append(report.Regressions, Regression{
				Metric: MetricStartupTime, Baseline: base, Current: cur,
				PercentChange: change, Severity: tier(change, 25, 15),
			})
		case change < -5:
			report.Improvements = append(report.Improvements, Improvement{
				Metric: MetricStartupTime, Baseline: base, Current: cur, PercentChange: change,
			})
		}
	}

	if baseline.MemoryUsage > 0 {
		change := percentChange(m.Memory.Average, baseline.MemoryUsage)
		if change > 15 {
			report.Regressions = append(report.Regressions, Regression{
				Metric: MetricMemoryUsage, Baseline: baseline.MemoryUsage, Current: m.Memory.Average,
				PercentChange: change, Severity: tier(change, 30, 20),
			})
		}
	}

	if baseline.BatteryUsage > 0 {
		change := percentChange(m.Battery.DrainRate, baseline.BatteryUsage)
		if change > 20 {
			report.Regressions = append(report.Regressions, Regression{
				Metric: MetricBattery, Baseline: baseline.BatteryUsage, Current: m.Battery.DrainRate,
				PercentChange: change, Severity: tier(change, 40, 30),
			})
		}
	}

	report.HasRegressions = len(report.Regressions) > 0
	return report
}

type threshold struct {
	metric   string
	value    func(Metrics) float64
	warning  float64
	critical float64
}

var alertThresholds = []threshold{
	{MetricStartupTime, func(m Metrics) float64 { return millis(m.StartupTime) }, 5000, 8000},
	{MetricMemoryUsage, func(m Metrics) float64 { return m.Memory.Peak }, 200, 300},
	{MetricBattery, func(m Metrics) float64 { return m.Battery.DrainRate }, 8, 12},
}

// CheckPerformanceThresholds returns at most one alert per metric: critical
// above the critical threshold, warning above the warning threshold.
func CheckPerformanceThresholds(m Metrics) []Alert {
	alerts := []Alert{}
	for _, th := range alertThresholds {
		v := th.value(m)
		switch {
		case v > th.critical:
			alerts = append(alerts, Alert{Metric: th.metric, Value: v, Threshold: th.critical, Severity: AlertCritical})
		case v > th.warning:
			alerts = append(alerts, Alert{Metric: th.metric, Value: v, Threshold: th.warning, Severity: AlertWarning})
		}
	}
	return alerts
}
