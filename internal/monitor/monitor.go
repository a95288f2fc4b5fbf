// Package monitor samples process memory and system CPU usage and evaluates
// them against configured ceilings to simulate constrained-device conditions.
//
// The budget check is advisory: readings race with other concurrent callers'
// resource consumption, so it approximates admission control rather than
// enforcing it.
package monitor

import (
	"time"

	"pqgate/internal/constants"
	"pqgate/internal/models"
)

// Monitor evaluates resource readings against a fixed budget. It keeps no
// state between calls beyond the budget itself; every reading is independent,
// with no smoothing or averaging.
type Monitor struct {
	budget models.BudgetConfig
}

// New creates a monitor with the given budget. Zero values are replaced with
// defaults so a partially filled config still yields a usable monitor.
func New(budget models.BudgetConfig) *Monitor {
	if budget.MaxMemoryMB <= 0 {
		budget.MaxMemoryMB = constants.DefaultMaxMemoryMB
	}
	if budget.MaxCPUPercent <= 0 || budget.MaxCPUPercent > 100 {
		budget.MaxCPUPercent = constants.DefaultMaxCPUPercent
	}
	if budget.CPUSampleMs <= 0 {
		budget.CPUSampleMs = constants.DefaultCPUSampleMs
	}
	return &Monitor{budget: budget}
}

// Budget returns the configured ceilings.
func (m *Monitor) Budget() models.BudgetConfig {
	return m.budget
}

// Sample reads current resident memory and CPU utilization. The CPU reading
// spans the configured sampling window; an instantaneous read would always be
// zero and is deliberately not offered.
func (m *Monitor) Sample() models.ResourceUsage {
	interval := time.Duration(m.budget.CPUSampleMs) * time.Millisecond
	return models.ResourceUsage{
		MemoryMB:   residentMemoryMB(),
		CPUPercent: cpuPercent(interval),
	}
}

// WithinBudget reports whether the current reading stays under both ceilings
// and returns the reading so callers can attach it to errors. A violation is
// never fatal; it is only a return value.
func (m *Monitor) WithinBudget() (bool, models.ResourceUsage) {
	usage := m.Sample()
	if usage.MemoryMB > float64(m.budget.MaxMemoryMB) {
		return false, usage
	}
	if usage.CPUPercent > m.budget.MaxCPUPercent {
		return false, usage
	}
	return true, usage
}
