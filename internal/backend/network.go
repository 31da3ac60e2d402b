package backend

import (
	"fmt"
	"time"
)

// NetworkCondition controls the latency and failure rates applied to every
// operation.
type NetworkCondition struct {
	Name        string        `json:"name"`
	Latency     time.Duration `json:"latency"`
	ErrorRate   float64       `json:"errorRate"`
	TimeoutRate float64       `json:"timeoutRate"`
}

// Validate checks that rates are probabilities and latency is not negative.
func (c NetworkCondition) Validate() error {
	if c.Latency < 0 {
		return fmt.Errorf("%w: latency %s is negative", ErrInvalidCondition, c.Latency)
	}
	if c.ErrorRate < 0 || c.ErrorRate > 1 {
		return fmt.Errorf("%w: error rate %v outside [0,1]", ErrInvalidCondition, c.ErrorRate)
	}
	if c.TimeoutRate < 0 || c.TimeoutRate > 1 {
		return fmt.Errorf("%w: timeout rate %v outside [0,1]", ErrInvalidCondition, c.TimeoutRate)
	}
	return nil
}

// Preset network conditions.
var (
	DefaultNetwork  = NetworkCondition{Name: "default"}
	FastNetwork     = NetworkCondition{Name: "fast", Latency: 50 * time.Millisecond}
	SlowNetwork     = NetworkCondition{Name: "slow", Latency: 2 * time.Second, ErrorRate: 0.05, TimeoutRate: 0.1}
	UnstableNetwork = NetworkCondition{Name: "unstable", Latency: 500 * time.Millisecond, ErrorRate: 0.3, TimeoutRate: 0.2}
)

// NetworkPresets maps preset names to conditions.
var NetworkPresets = map[string]NetworkCondition{
	DefaultNetwork.Name:  DefaultNetwork,
	FastNetwork.Name:     FastNetwork,
	SlowNetwork.Name:     SlowNetwork,
	UnstableNetwork.Name: UnstableNetwork,
}
