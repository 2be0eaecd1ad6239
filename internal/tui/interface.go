package tui

import (
	"github.com/rusenback/minios/internal/model"
	"github.com/rusenback/minios/internal/monitor"
)

// ResourceMonitor is the part of the monitor the dashboard reads.
// Keeping it an interface lets tests feed fixed readings.
type ResourceMonitor interface {
	CurrentCPU() float64
	CurrentMemory() model.MemoryInfo
	CurrentDisk() model.DiskInfo
	CurrentTemperature() float64
	NetworkStats() model.NetworkStats
	History(metric monitor.Metric) []float64
	Uptime() model.Uptime
}

var _ ResourceMonitor = (*monitor.Monitor)(nil)
