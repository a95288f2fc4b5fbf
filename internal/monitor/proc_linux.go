//go:build linux

package monitor

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// residentMemoryMB reads VmRSS from /proc/self/status.
func residentMemoryMB() float64 {
	data, err := os.ReadFile("/proc/self/status")
	if err != nil {
		return fallbackMemoryMB()
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "VmRSS:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			break
		}
		kb, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			break
		}
		return kb / 1024 // /proc reports in kB
	}
	return fallbackMemoryMB()
}

// cpuPercent measures system-wide CPU utilization across the sampling window
// by differencing two /proc/stat readings.
func cpuPercent(interval time.Duration) float64 {
	busy1, total1, ok := readCPUStat()
	if !ok {
		return 0
	}
	time.Sleep(interval)
	busy2, total2, ok := readCPUStat()
	if !ok || total2 <= total1 {
		return 0
	}

	pct := float64(busy2-busy1) / float64(total2-total1) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// readCPUStat parses the aggregate cpu line of /proc/stat. Busy time is
// everything except idle and iowait.
func readCPUStat() (busy, total uint64, ok bool) {
	data, err := os.ReadFile("/proc/stat")
	if err != nil {
		return 0, 0, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		if !strings.HasPrefix(line, "cpu ") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			return 0, 0, false
		}
		var values []uint64
		for _, f := range fields[1:] {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				return 0, 0, false
			}
			values = append(values, v)
		}
		for _, v := range values {
			total += v
		}
		idle := values[3]
		if len(values) > 4 {
			idle += values[4] // iowait
		}
		return total - idle, total, true
	}
	return 0, 0, false
}
