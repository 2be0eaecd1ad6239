// internal/process/table.go
package process

import (
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/rusenback/minios/internal/model"
)

const (
	DefaultPriority = 5
	DefaultOwner    = "root"

	minMemoryKB = 1024
	maxMemoryKB = 10240
	maxCPUTime  = 100.0
)

// SortKey selects the ordering of List
type SortKey string

const (
	SortByPID     SortKey = "pid"
	SortByCPUTime SortKey = "cpu_time"
	SortByMemory  SortKey = "memory"
	SortByName    SortKey = "name"
)

// ParseSortKey maps user input to a SortKey.
// Unknown input falls back to SortByPID and ok is false.
func ParseSortKey(s string) (key SortKey, ok bool) {
	switch s {
	case "pid":
		return SortByPID, true
	case "cpu", "cpu_time":
		return SortByCPUTime, true
	case "mem", "memory":
		return SortByMemory, true
	case "name":
		return SortByName, true
	default:
		return SortByPID, false
	}
}

// Table owns the set of live simulated processes
type Table struct {
	mu      sync.RWMutex
	procs   map[int]*model.Process
	nextPID int
	rng     *rand.Rand
	now     func() time.Time
}

// Option configures a Table
type Option func(*Table)

// WithRand sets the random source for synthetic cpu/memory values
func WithRand(r *rand.Rand) Option {
	return func(t *Table) { t.rng = r }
}

// WithClock sets the clock used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(t *Table) { t.now = now }
}

// NewTable creates an empty process table. PIDs start at 1.
func NewTable(opts ...Option) *Table {
	t := &Table{
		procs:   make(map[int]*model.Process),
		nextPID: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.rng == nil {
		seed := uint64(time.Now().UnixNano())
		t.rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	return t
}

// CreateProcess inserts a new running process and returns its PID
func (t *Table) CreateProcess(name string, priority int, owner string) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	pid := t.nextPID
	t.nextPID++

	t.procs[pid] = &model.Process{
		PID:       pid,
		Name:      name,
		Priority:  priority,
		State:     model.StateRunning,
		CreatedAt: t.now(),
		CPUTime:   t.rng.Float64() * maxCPUTime,
		MemoryKB:  minMemoryKB + t.rng.IntN(maxMemoryKB-minMemoryKB+1),
		Owner:     owner,
		Threads:   1,
	}
	return pid
}

// Spawn creates a process with the default priority and owner
func (t *Table) Spawn(name string) int {
	return t.CreateProcess(name, DefaultPriority, DefaultOwner)
}

// Kill removes the process. Returns false if pid does not exist.
func (t *Table) Kill(pid int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.procs[pid]; !ok {
		return false
	}
	delete(t.procs, pid)
	return true
}

// Suspend marks the process suspended. Suspending twice is allowed.
func (t *Table) Suspend(pid int) bool {
	return t.setState(pid, model.StateSuspended)
}

// Resume marks the process running
func (t *Table) Resume(pid int) bool {
	return t.setState(pid, model.StateRunning)
}

func (t *Table) setState(pid int, state model.ProcessState) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.procs[pid]
	if !ok {
		return false
	}
	p.State = state
	return true
}

// Get returns a copy of a single process
func (t *Table) Get(pid int) (model.Process, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.procs[pid]
	if !ok {
		return model.Process{}, false
	}
	return *p, true
}

// List returns a snapshot sorted ascending by key, ties broken by PID
func (t *Table) List(key SortKey) []model.Process {
	t.mu.RLock()
	result := make([]model.Process, 0, len(t.procs))
	for _, p := range t.procs {
		result = append(result, *p)
	}
	t.mu.RUnlock()

	less := lessFunc(key)
	sort.Slice(result, func(i, j int) bool {
		if less(&result[i], &result[j]) {
			return true
		}
		if less(&result[j], &result[i]) {
			return false
		}
		return result[i].PID < result[j].PID
	})
	return result
}

func lessFunc(key SortKey) func(a, b *model.Process) bool {
	switch key {
	case SortByCPUTime:
		return func(a, b *model.Process) bool { return a.CPUTime < b.CPUTime }
	case SortByMemory:
		return func(a, b *model.Process) bool { return a.MemoryKB < b.MemoryKB }
	case SortByName:
		return func(a, b *model.Process) bool { return a.Name < b.Name }
	default:
		return func(a, b *model.Process) bool { return a.PID < b.PID }
	}
}

// Count returns the number of live processes
func (t *Table) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.procs)
}
