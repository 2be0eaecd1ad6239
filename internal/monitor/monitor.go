// internal/monitor/monitor.go
package monitor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rusenback/minios/internal/model"
)

var (
	ErrAlreadyStarted = errors.New("monitor already started")
	ErrNotStarted     = errors.New("monitor not running")
	ErrStopTimeout    = errors.New("monitor did not stop in time")
)

// Metric selects one of the history buffers
type Metric int

const (
	MetricCPU Metric = iota
	MetricMemory
	MetricDisk
)

func (m Metric) String() string {
	switch m {
	case MetricCPU:
		return "cpu"
	case MetricMemory:
		return "memory"
	case MetricDisk:
		return "disk"
	default:
		return "unknown"
	}
}

type lifecycle int

const (
	idle lifecycle = iota
	running
	stopped
)

// Monitor keeps a continuously advancing view of synthetic system load.
//
// Current* methods take a fresh sample on every call. History is only fed by
// the background loop, so the two may disagree for the same instant.
type Monitor struct {
	sampler     Sampler
	interval    time.Duration
	stopTimeout time.Duration
	now         func() time.Time
	onSample    func(model.Sample)

	startedAt time.Time
	cpu       *History
	memory    *History
	disk      *History

	netMu   sync.Mutex
	network model.NetworkStats

	// Lifecycle
	mu     sync.Mutex
	state  lifecycle
	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Monitor
type Option func(*Monitor)

// WithInterval sets the background sampling cadence
func WithInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithStopTimeout bounds how long Stop waits for the loop to exit
func WithStopTimeout(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.stopTimeout = d
		}
	}
}

// WithHistorySize sets the capacity of every history buffer
func WithHistorySize(n int) Option {
	return func(m *Monitor) {
		if n > 0 {
			m.cpu = NewHistory(n)
			m.memory = NewHistory(n)
			m.disk = NewHistory(n)
		}
	}
}

// WithClock replaces time.Now for uptime and sample timestamps
func WithClock(now func() time.Time) Option {
	return func(m *Monitor) { m.now = now }
}

// WithSampleHook registers fn to receive every background sample.
// fn runs on the sampling goroutine and must not block.
func WithSampleHook(fn func(model.Sample)) Option {
	return func(m *Monitor) { m.onSample = fn }
}

// New creates a monitor. Sampling does not begin until Start.
func New(sampler Sampler, opts ...Option) *Monitor {
	m := &Monitor{
		sampler:     sampler,
		interval:    time.Second,
		stopTimeout: time.Second,
		now:         time.Now,
		cpu:         NewHistory(DefaultHistorySize),
		memory:      NewHistory(DefaultHistorySize),
		disk:        NewHistory(DefaultHistorySize),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.startedAt = m.now()
	return m
}

// Start launches the background sampling loop. It may be called once.
func (m *Monitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != idle {
		return ErrAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.done = make(chan struct{})
	m.state = running

	go m.loop(ctx, m.done)
	return nil
}

// Stop cancels the loop and waits up to the stop timeout for it to exit.
// On timeout the loop is abandoned and ErrStopTimeout is returned.
func (m *Monitor) Stop() error {
	m.mu.Lock()
	if m.state != running {
		m.mu.Unlock()
		return ErrNotStarted
	}
	m.state = stopped
	cancel, done := m.cancel, m.done
	m.mu.Unlock()

	cancel()

	timer := time.NewTimer(m.stopTimeout)
	defer timer.Stop()

	select {
	case <-done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Running reports whether the background loop has been started and not stopped
func (m *Monitor) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state == running
}

// loop samples immediately and then once per interval
func (m *Monitor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		m.collect()

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) collect() {
	sample := model.Sample{
		Timestamp:     m.now(),
		CPUPercent:    m.sampler.CPU(),
		MemoryPercent: m.sampler.Memory().Percent,
		DiskPercent:   m.sampler.Disk().Percent,
	}

	m.cpu.Append(sample.CPUPercent)
	m.memory.Append(sample.MemoryPercent)
	m.disk.Append(sample.DiskPercent)

	if m.onSample != nil {
		m.onSample(sample)
	}
}

func (m *Monitor) CurrentCPU() float64 {
	return m.sampler.CPU()
}

func (m *Monitor) CurrentMemory() model.MemoryInfo {
	return m.sampler.Memory()
}

func (m *Monitor) CurrentDisk() model.DiskInfo {
	return m.sampler.Disk()
}

func (m *Monitor) CurrentTemperature() float64 {
	return m.sampler.Temperature()
}

// NetworkStats advances the cumulative counters and returns the new totals
func (m *Monitor) NetworkStats() model.NetworkStats {
	rx, tx := m.sampler.NetworkDelta()

	m.netMu.Lock()
	defer m.netMu.Unlock()

	m.network.RxTotal += rx
	m.network.TxTotal += tx
	return m.network
}

// History returns the buffered percentages for metric, oldest first
func (m *Monitor) History(metric Metric) []float64 {
	switch metric {
	case MetricCPU:
		return m.cpu.Snapshot()
	case MetricMemory:
		return m.memory.Snapshot()
	case MetricDisk:
		return m.disk.Snapshot()
	default:
		return nil
	}
}

// Uptime returns the time elapsed since New
func (m *Monitor) Uptime() model.Uptime {
	return model.NewUptime(m.now().Sub(m.startedAt))
}
