package storage

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/labstack/gommon/log"
	_ "modernc.org/sqlite"

	"github.com/rusenback/minios/internal/model"
)

// TimeRange represents different time window options
type TimeRange int

const (
	Range5Min TimeRange = iota
	Range15Min
	Range1Hour
	Range6Hour
)

func (t TimeRange) String() string {
	switch t {
	case Range5Min:
		return "5m"
	case Range15Min:
		return "15m"
	case Range1Hour:
		return "1h"
	case Range6Hour:
		return "6h"
	default:
		return "unknown"
	}
}

// ParseTimeRange maps "5m", "15m", "1h" or "6h" to a TimeRange
func ParseTimeRange(s string) (TimeRange, bool) {
	for _, r := range []TimeRange{Range5Min, Range15Min, Range1Hour, Range6Hour} {
		if r.String() == s {
			return r, true
		}
	}
	return Range5Min, false
}

// Duration returns the time duration for the range
func (t TimeRange) Duration() time.Duration {
	switch t {
	case Range5Min:
		return 5 * time.Minute
	case Range15Min:
		return 15 * time.Minute
	case Range1Hour:
		return time.Hour
	case Range6Hour:
		return 6 * time.Hour
	default:
		return 5 * time.Minute
	}
}

// bucketSeconds returns the aggregation bucket, 0 for full resolution
func (t TimeRange) bucketSeconds() int64 {
	switch t {
	case Range15Min:
		return 10
	case Range1Hour:
		return 30
	case Range6Hour:
		return 300
	default:
		return 0
	}
}

// DataPoint represents a single data point in time
type DataPoint struct {
	Timestamp     time.Time
	CPUPercent    float64
	MemoryPercent float64
	DiskPercent   float64
}

// StatsEntry represents a monitor sample to be written
type StatsEntry struct {
	SessionID string
	model.Sample
}

// Config tunes the archive
type Config struct {
	BatchSize     int
	FlushInterval time.Duration
	Retention     time.Duration
	QueueSize     int
	Logger        *log.Logger
}

// DefaultConfig returns the archive defaults
func DefaultConfig() Config {
	return Config{
		BatchSize:     50,
		FlushInterval: 5 * time.Second,
		Retention:     6 * time.Hour,
		QueueSize:     1000,
	}
}

// Storage archives monitor samples for the lifetime of a session.
// The database lives in memory and is gone once Close returns.
type Storage struct {
	db        *sql.DB
	cfg       Config
	logger    *log.Logger
	writeChan chan *StatsEntry
	flushChan chan chan struct{}
	closeChan chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewStorage creates a new in-memory archive and starts its background loops
func NewStorage(cfg Config) (*Storage, error) {
	def := DefaultConfig()
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.Retention <= 0 {
		cfg.Retention = def.Retention
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New("storage")
	}

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// Every pooled connection would get its own private memory database
	db.SetMaxOpenConns(1)

	if err := createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	s := &Storage{
		db:        db,
		cfg:       cfg,
		logger:    logger,
		writeChan: make(chan *StatsEntry, cfg.QueueSize),
		flushChan: make(chan chan struct{}),
		closeChan: make(chan struct{}),
	}

	s.wg.Add(2)
	go s.writer()
	go s.cleanup()

	return s, nil
}

// createTables creates the database schema
func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		cpu_percent REAL,
		memory_percent REAL,
		disk_percent REAL
	);

	CREATE INDEX IF NOT EXISTS idx_session_time
	ON samples(session_id, timestamp);
	`

	_, err := db.Exec(schema)
	return err
}

// Write queues an entry. When the queue is full the entry is dropped.
func (s *Storage) Write(entry *StatsEntry) bool {
	select {
	case s.writeChan <- entry:
		return true
	default:
		return false
	}
}

// Flush writes every queued entry before returning
func (s *Storage) Flush() {
	ack := make(chan struct{})
	select {
	case s.flushChan <- ack:
		<-ack
	case <-s.closeChan:
	}
}

// writer runs in background and batch writes to database
func (s *Storage) writer() {
	defer s.wg.Done()

	buffer := make([]*StatsEntry, 0, s.cfg.BatchSize)
	ticker := time.NewTicker(s.cfg.FlushInterval)
	defer ticker.Stop()

	drain := func() {
		for {
			select {
			case entry := <-s.writeChan:
				buffer = append(buffer, entry)
			default:
				return
			}
		}
	}

	for {
		select {
		case entry := <-s.writeChan:
			buffer = append(buffer, entry)
			if len(buffer) >= s.cfg.BatchSize {
				s.batchWrite(buffer)
				buffer = buffer[:0]
			}

		case <-ticker.C:
			if len(buffer) > 0 {
				s.batchWrite(buffer)
				buffer = buffer[:0]
			}

		case ack := <-s.flushChan:
			drain()
			if len(buffer) > 0 {
				s.batchWrite(buffer)
				buffer = buffer[:0]
			}
			close(ack)

		case <-s.closeChan:
			drain()
			if len(buffer) > 0 {
				s.batchWrite(buffer)
			}
			return
		}
	}
}

// batchWrite writes a batch of entries in one transaction
func (s *Storage) batchWrite(entries []*StatsEntry) {
	tx, err := s.db.Begin()
	if err != nil {
		s.logger.Warnf("archive: begin: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO samples
		(session_id, timestamp, cpu_percent, memory_percent, disk_percent)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		s.logger.Warnf("archive: prepare: %v", err)
		return
	}
	defer stmt.Close()

	for _, entry := range entries {
		_, err := stmt.Exec(
			entry.SessionID,
			entry.Timestamp.Unix(),
			entry.CPUPercent,
			entry.MemoryPercent,
			entry.DiskPercent,
		)
		if err != nil {
			s.logger.Debugf("archive: insert: %v", err)
			continue
		}
	}

	if err := tx.Commit(); err != nil {
		s.logger.Warnf("archive: commit: %v", err)
		return
	}
	s.logger.Debugf("archive: wrote %d samples", len(entries))
}

// Query retrieves data points for a session and time range
func (s *Storage) Query(sessionID string, timeRange TimeRange) ([]DataPoint, error) {
	cutoff := time.Now().Add(-timeRange.Duration()).Unix()

	bucket := timeRange.bucketSeconds()
	if bucket == 0 {
		rows, err := s.db.Query(`
			SELECT timestamp, cpu_percent, memory_percent, disk_percent
			FROM samples
			WHERE session_id = ? AND timestamp > ?
			ORDER BY timestamp ASC, id ASC
		`, sessionID, cutoff)
		if err != nil {
			return nil, fmt.Errorf("query samples: %w", err)
		}
		defer rows.Close()

		return scanRows(rows)
	}

	rows, err := s.db.Query(`
		SELECT
			(timestamp / ?) * ? AS bucket,
			AVG(cpu_percent),
			AVG(memory_percent),
			AVG(disk_percent)
		FROM samples
		WHERE session_id = ? AND timestamp > ?
		GROUP BY bucket
		ORDER BY bucket ASC
	`, bucket, bucket, sessionID, cutoff)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	return scanRows(rows)
}

// Count returns the number of archived samples for a session
func (s *Storage) Count(sessionID string) (int, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM samples WHERE session_id = ?", sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count samples: %w", err)
	}
	return n, nil
}

// scanRows scans database rows into DataPoints
func scanRows(rows *sql.Rows) ([]DataPoint, error) {
	var points []DataPoint

	for rows.Next() {
		var timestamp int64
		var cpu, mem, disk float64

		if err := rows.Scan(&timestamp, &cpu, &mem, &disk); err != nil {
			continue
		}

		points = append(points, DataPoint{
			Timestamp:     time.Unix(timestamp, 0),
			CPUPercent:    cpu,
			MemoryPercent: mem,
			DiskPercent:   disk,
		})
	}

	return points, rows.Err()
}

// cleanup removes samples older than the retention window
func (s *Storage) cleanup() {
	defer s.wg.Done()

	interval := s.cfg.Retention / 6
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cutoff := time.Now().Add(-s.cfg.Retention).Unix()
			s.batchDelete(cutoff)

		case <-s.closeChan:
			return
		}
	}
}

// batchDelete removes old records in batches to keep transactions short
func (s *Storage) batchDelete(cutoffTimestamp int64) int64 {
	const batchSize = 1000
	var total int64
	for {
		result, err := s.db.Exec(`
			DELETE FROM samples WHERE id IN (
				SELECT id FROM samples WHERE timestamp < ? LIMIT ?
			)`,
			cutoffTimestamp,
			batchSize,
		)
		if err != nil {
			s.logger.Warnf("archive: cleanup: %v", err)
			return total
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil || rowsAffected == 0 {
			return total
		}
		total += rowsAffected
	}
}

// Close flushes pending entries, stops the background loops and drops the database
func (s *Storage) Close() error {
	s.closeOnce.Do(func() {
		close(s.closeChan)
	})
	s.wg.Wait()
	return s.db.Close()
}
