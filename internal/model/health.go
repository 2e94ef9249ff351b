package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

const (
	LabelHealthy   = "Healthy"
	LabelUnhealthy = "Unhealthy"
)

// Well-known dependency names registered by default.
const (
	DependencyDatabase    = "Database"
	DependencyRedis       = "Redis"
	DependencyPingService = "Ping Service"
)

// CheckOutcome is the settled result of one dependency check.
type CheckOutcome struct {
	Label   string
	Healthy bool
}

func Healthy() CheckOutcome {
	return CheckOutcome{Label: LabelHealthy, Healthy: true}
}

func Unhealthy() CheckOutcome {
	return CheckOutcome{Label: LabelUnhealthy, Healthy: false}
}

// Failed turns a check error into an unhealthy outcome carrying its text.
func Failed(err error) CheckOutcome {
	return CheckOutcome{Label: err.Error(), Healthy: false}
}

// OutcomeOf converts the raw result of a check into an outcome.
func OutcomeOf(healthy bool, err error) CheckOutcome {
	switch {
	case err != nil:
		return Failed(err)
	case healthy:
		return Healthy()
	default:
		return Unhealthy()
	}
}

// MarshalJSON encodes the outcome as a [label, healthy] pair.
func (o CheckOutcome) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{o.Label, o.Healthy})
}

func (o *CheckOutcome) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("check outcome: expected 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &o.Label); err != nil {
		return fmt.Errorf("check outcome label: %w", err)
	}
	if err := json.Unmarshal(pair[1], &o.Healthy); err != nil {
		return fmt.Errorf("check outcome flag: %w", err)
	}
	return nil
}

// HealthReport maps dependency names to outcomes. Entries keep the order in
// which they were added, which the aggregator makes the registration order.
type HealthReport struct {
	names    []string
	outcomes map[string]CheckOutcome
}

func NewHealthReport(capacity int) *HealthReport {
	return &HealthReport{
		names:    make([]string, 0, capacity),
		outcomes: make(map[string]CheckOutcome, capacity),
	}
}

// Set records the outcome for name. A repeated name overwrites in place.
func (r *HealthReport) Set(name string, outcome CheckOutcome) {
	if _, exists := r.outcomes[name]; !exists {
		r.names = append(r.names, name)
	}
	r.outcomes[name] = outcome
}

func (r *HealthReport) Get(name string) (CheckOutcome, bool) {
	outcome, ok := r.outcomes[name]
	return outcome, ok
}

func (r *HealthReport) Names() []string {
	names := make([]string, len(r.names))
	copy(names, r.names)
	return names
}

func (r *HealthReport) Len() int {
	return len(r.names)
}

// Healthy reports whether every entry is healthy. An empty report is healthy.
func (r *HealthReport) Healthy() bool {
	for _, outcome := range r.outcomes {
		if !outcome.Healthy {
			return false
		}
	}
	return true
}

func (r *HealthReport) UnhealthyCount() int {
	count := 0
	for _, outcome := range r.outcomes {
		if !outcome.Healthy {
			count++
		}
	}
	return count
}

// Map returns a copy of the report as a plain map.
func (r *HealthReport) Map() map[string]CheckOutcome {
	m := make(map[string]CheckOutcome, len(r.outcomes))
	for name, outcome := range r.outcomes {
		m[name] = outcome
	}
	return m
}

func (r *HealthReport) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(r.outcomes[name])
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
