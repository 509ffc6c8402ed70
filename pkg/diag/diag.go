// Package diag reports host resource usage for the status endpoint.
package diag

import (
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Report is a point-in-time snapshot of host resources.
type Report struct {
	CPUPercent    float64 `json:"cpuPercent"`
	MemoryPercent float64 `json:"memoryPercent"`
	MemoryUsedMB  uint64  `json:"memoryUsedMb"`
	DiskPercent   float64 `json:"diskPercent"`
	UptimeSeconds uint64  `json:"uptimeSeconds"`
}

// Collect gathers the report. Individual probe failures leave their
// fields zero rather than failing the whole report.
func Collect() Report {
	var r Report

	// Non-blocking sample: percentage since the previous call.
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		r.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		r.MemoryPercent = vm.UsedPercent
		r.MemoryUsedMB = vm.Used / 1024 / 1024
	}
	if du, err := disk.Usage("/"); err == nil {
		r.DiskPercent = du.UsedPercent
	}
	if up, err := host.Uptime(); err == nil {
		r.UptimeSeconds = up
	}
	return r
}

// Prime warms the CPU sampler so the first Collect returns a real
// percentage instead of zero.
func Prime() {
	cpu.Percent(0, false)
}
