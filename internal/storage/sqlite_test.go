package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rusenback/minios/internal/model"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(Config{FlushInterval: time.Hour, Retention: time.Hour})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func entry(session string, ts time.Time, cpu, mem, disk float64) *StatsEntry {
	return &StatsEntry{
		SessionID: session,
		Sample: model.Sample{
			Timestamp:     ts,
			CPUPercent:    cpu,
			MemoryPercent: mem,
			DiskPercent:   disk,
		},
	}
}

func TestStorage_WriteFlushQuery(t *testing.T) {
	s := newTestStorage(t)
	base := time.Now().Truncate(time.Minute)

	require.True(t, s.Write(entry("a", base, 10, 20, 30)))
	require.True(t, s.Write(entry("a", base.Add(time.Second), 40, 50, 60)))
	require.True(t, s.Write(entry("b", base, 99, 99, 99)))
	s.Flush()

	points, err := s.Query("a", Range5Min)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, base.Unix(), points[0].Timestamp.Unix())
	assert.Equal(t, 10.0, points[0].CPUPercent)
	assert.Equal(t, 60.0, points[1].DiskPercent)

	n, err := s.Count("b")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStorage_AggregatedQuery(t *testing.T) {
	s := newTestStorage(t)
	base := time.Now().Truncate(time.Minute)

	s.Write(entry("a", base, 10, 20, 30))
	s.Write(entry("a", base.Add(time.Second), 30, 40, 50))
	s.Write(entry("a", base.Add(2*time.Second), 50, 60, 70))
	s.Flush()

	points, err := s.Query("a", Range1Hour)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.InDelta(t, 30.0, points[0].CPUPercent, 0.001)
	assert.InDelta(t, 40.0, points[0].MemoryPercent, 0.001)
	assert.InDelta(t, 50.0, points[0].DiskPercent, 0.001)
}

func TestStorage_QueryExcludesOutOfRange(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now()

	s.Write(entry("a", now.Add(-10*time.Minute), 1, 1, 1))
	s.Write(entry("a", now, 2, 2, 2))
	s.Flush()

	points, err := s.Query("a", Range5Min)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 2.0, points[0].CPUPercent)

	points, err = s.Query("a", Range15Min)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestStorage_BatchDelete(t *testing.T) {
	s := newTestStorage(t)
	now := time.Now()

	for i := 0; i < 5; i++ {
		s.Write(entry("a", now.Add(-2*time.Hour), 1, 1, 1))
	}
	s.Write(entry("a", now, 2, 2, 2))
	s.Flush()

	deleted := s.batchDelete(now.Add(-time.Hour).Unix())
	assert.Equal(t, int64(5), deleted)

	n, err := s.Count("a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStorage_WriteDropsWhenQueueFull(t *testing.T) {
	s := &Storage{writeChan: make(chan *StatsEntry, 1)}

	assert.True(t, s.Write(entry("a", time.Now(), 1, 1, 1)))
	assert.False(t, s.Write(entry("a", time.Now(), 2, 2, 2)))
}

func TestStorage_FlushAfterClose(t *testing.T) {
	s, err := NewStorage(Config{FlushInterval: time.Hour})
	require.NoError(t, err)

	s.Write(entry("a", time.Now(), 1, 1, 1))
	require.NoError(t, s.Close())

	// Flush after close must not block
	s.Flush()
}

func TestParseTimeRange(t *testing.T) {
	for _, r := range []TimeRange{Range5Min, Range15Min, Range1Hour, Range6Hour} {
		got, ok := ParseTimeRange(r.String())
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}

	got, ok := ParseTimeRange("1w")
	assert.False(t, ok)
	assert.Equal(t, Range5Min, got)
}
