// internal/monitor/sampler.go
package monitor

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/rusenback/minios/internal/model"
)

const (
	memoryTotal   = 256 * 1024 * 1024       // 256 MB
	diskTotal     = 10 * 1024 * 1024 * 1024 // 10 GB
	minMemoryUsed = 50_000_000
	maxMemoryUsed = 150_000_000
	minDiskUsed   = 2_000_000_000
	maxDiskUsed   = 8_000_000_000
)

// Sampler produces synthetic readings
type Sampler interface {
	CPU() float64
	Memory() model.MemoryInfo
	Disk() model.DiskInfo
	Temperature() float64
	// NetworkDelta returns the bytes received and sent since the last call
	NetworkDelta() (rx, tx uint64)
}

// RandomSampler draws readings from plausible fixed ranges.
// It is safe for concurrent use.
type RandomSampler struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomSampler creates a sampler. A zero seed picks a time based one.
func NewRandomSampler(seed uint64) *RandomSampler {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return &RandomSampler{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// between returns a uniform integer in [lo, hi]
func (s *RandomSampler) between(lo, hi uint64) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Uint64N(hi-lo+1)
}

func (s *RandomSampler) CPU() float64 {
	return float64(s.between(10, 85))
}

func (s *RandomSampler) Temperature() float64 {
	return float64(s.between(35, 70))
}

func (s *RandomSampler) Memory() model.MemoryInfo {
	used := s.between(minMemoryUsed, maxMemoryUsed)
	return model.MemoryInfo{
		Total:   memoryTotal,
		Used:    used,
		Free:    memoryTotal - used,
		Percent: float64(used) / float64(memoryTotal) * 100,
	}
}

func (s *RandomSampler) Disk() model.DiskInfo {
	used := s.between(minDiskUsed, maxDiskUsed)
	return model.DiskInfo{
		Total:   diskTotal,
		Used:    used,
		Free:    diskTotal - used,
		Percent: float64(used) / float64(diskTotal) * 100,
	}
}

func (s *RandomSampler) NetworkDelta() (rx, tx uint64) {
	return s.between(100, 1000), s.between(50, 500)
}
