// internal/model/stats.go
package model

import "time"

// MemoryInfo holds a synthetic memory reading
type MemoryInfo struct {
	Total   uint64
	Used    uint64
	Free    uint64
	Percent float64
}

// DiskInfo holds a synthetic disk reading
type DiskInfo struct {
	Total   uint64
	Used    uint64
	Free    uint64
	Percent float64
}

// NetworkStats holds cumulative byte counters
type NetworkStats struct {
	RxTotal uint64 // Total bytes received
	TxTotal uint64 // Total bytes transmitted
}

// Sample is one background tick of the resource monitor
type Sample struct {
	Timestamp     time.Time
	CPUPercent    float64
	MemoryPercent float64
	DiskPercent   float64
}
