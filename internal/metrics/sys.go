package metrics

import (
	"fmt"
	"os"
	"runtime"
)

// SysHealth represents real-time process metrics, shown by the bot's
// /metrics command alongside the daily provider-call rollup.
type SysHealth struct {
	AllocMB      uint64
	TotalAllocMB uint64
	SysMB        uint64
	NumGC        uint32
	Goroutines   int
	DBSize       string
}

// GetSysHealth collects real-time health data. dbPath points at the metrics
// database file.
func GetSysHealth(dbPath string) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return SysHealth{
		AllocMB:      m.Alloc / 1024 / 1024,
		TotalAllocMB: m.TotalAlloc / 1024 / 1024,
		SysMB:        m.Sys / 1024 / 1024,
		NumGC:        m.NumGC,
		Goroutines:   runtime.NumGoroutine(),
		DBSize:       fileSize(dbPath),
	}
}

func fileSize(path string) string {
	info, err := os.Stat(path)
	if err != nil {
		return "0 B"
	}
	size := info.Size()

	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
