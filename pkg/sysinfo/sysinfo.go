// Package sysinfo collects host and process metrics for /utils stats and the
// dashboard status endpoint.
package sysinfo

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is a point-in-time view of the host and the bot process.
type Snapshot struct {
	OS            string  `json:"os"`
	Kernel        string  `json:"kernel"`
	GoVersion     string  `json:"goVersion"`
	CPUs          int     `json:"cpus"`
	CPUPercent    float64 `json:"cpuPercent"`
	MemUsedMB     uint64  `json:"memUsedMB"`
	MemTotalMB    uint64  `json:"memTotalMB"`
	MemPercent    float64 `json:"memPercent"`
	HeapMB        float64 `json:"heapMB"`
	Goroutines    int     `json:"goroutines"`
	HostUptimeSec uint64  `json:"hostUptimeSec"`
}

// Collect reads the current metrics. Host metrics that cannot be read are
// left zero; the process metrics always come from the runtime.
func Collect() Snapshot {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	s := Snapshot{
		GoVersion:  strings.TrimPrefix(runtime.Version(), "go"),
		CPUs:       runtime.NumCPU(),
		HeapMB:     float64(ms.Alloc) / 1024 / 1024,
		Goroutines: runtime.NumGoroutine(),
	}

	if n, err := cpu.Counts(true); err == nil && n > 0 {
		s.CPUs = n
	}
	if pct, err := cpu.Percent(0, false); err == nil && len(pct) > 0 {
		s.CPUPercent = pct[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		s.MemUsedMB = vm.Used / 1024 / 1024
		s.MemTotalMB = vm.Total / 1024 / 1024
		s.MemPercent = vm.UsedPercent
	}
	if info, err := host.Info(); err == nil {
		s.OS = strings.TrimSpace(info.Platform + " " + info.PlatformVersion)
		s.Kernel = info.KernelVersion
		s.HostUptimeSec = info.Uptime
	}
	if s.OS == "" {
		s.OS = runtime.GOOS
	}
	return s
}

// Memory renders "12.3% (512 MB / 4096 MB)".
func (s Snapshot) Memory() string {
	return fmt.Sprintf("%.1f%% (%d MB / %d MB)", s.MemPercent, s.MemUsedMB, s.MemTotalMB)
}

// FormatDuration renders a duration as "1d 2h 3m 4s", dropping leading zero units.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
