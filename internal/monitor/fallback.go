package monitor

import "runtime"

// fallbackMemoryMB approximates resident memory from the Go runtime when
// /proc is unavailable.
func fallbackMemoryMB() float64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return float64(ms.Sys) / 1024 / 1024
}
