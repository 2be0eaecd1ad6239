package model

import "time"

// ProcessState is the lifecycle state of a simulated process
type ProcessState int

const (
	StateRunning ProcessState = iota
	StateSuspended
)

func (s ProcessState) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Process represents a simulated process in the process table
type Process struct {
	PID       int
	Name      string
	Priority  int
	State     ProcessState
	CreatedAt time.Time
	CPUTime   float64 // Seconds, fixed at creation
	MemoryKB  int
	Owner     string
	Threads   int
}
