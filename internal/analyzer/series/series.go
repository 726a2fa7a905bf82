// Package series implements the in-memory bounded sample store backing the
// analyzer. Series are keyed by a structured (name, url) pair rather than a
// concatenated string, so neither component can collide with a separator.
package series

import (
	"hash/fnv"
	"sync"

	"github.com/vitalscope/vitalscope/pkg/vitals"
)

// shardCount spreads series across independent locks so appends to different
// keys do not contend. Must be a power of two.
const shardCount = 32

// Key identifies one series: a metric name plus optional URL context.
type Key struct {
	Name string
	URL  string
}

// KeyFor derives the series key for a data point.
func KeyFor(p vitals.MetricDataPoint) Key {
	return Key{Name: p.Name, URL: p.URL}
}

// String renders the key for logs and alert labels.
func (k Key) String() string {
	if k.URL == "" {
		return k.Name
	}
	return k.Name + " (" + k.URL + ")"
}

// entry holds one series. Its own mutex makes appends atomic with
// truncation and lets readers take a consistent snapshot.
type entry struct {
	mu     sync.Mutex
	points []vitals.MetricDataPoint
}

type shard struct {
	mu     sync.RWMutex
	series map[Key]*entry
}

// Store is a sharded, bounded, append-ordered sample store. Points are kept
// in arrival order, not timestamp order; analysis sorts its own snapshot.
type Store struct {
	capacity int
	shards   [shardCount]*shard
}

// DefaultCapacity bounds a series when the caller supplies no limit
// (window size 30 x 10).
const DefaultCapacity = 300

// NewStore creates a store that caps every series at capacity points.
// Non-positive capacities are clamped to DefaultCapacity.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Store{capacity: capacity}
	for i := range s.shards {
		s.shards[i] = &shard{series: make(map[Key]*entry)}
	}
	return s
}

// Capacity returns the per-series point limit.
func (s *Store) Capacity() int {
	return s.capacity
}

func (s *Store) shardFor(k Key) *shard {
	h := fnv.New32a()
	h.Write([]byte(k.Name))
	h.Write([]byte{0})
	h.Write([]byte(k.URL))
	return s.shards[h.Sum32()&(shardCount-1)]
}

func (s *Store) getOrCreate(k Key) *entry {
	sh := s.shardFor(k)
	sh.mu.RLock()
	e, ok := sh.series[k]
	sh.mu.RUnlock()
	if ok {
		return e
	}

	sh.mu.Lock()
	defer sh.mu.Unlock()
	// Double-check after acquiring write lock
	if e, ok = sh.series[k]; ok {
		return e
	}
	e = &entry{}
	sh.series[k] = e
	return e
}

// Add appends one point to its series, creating the series on first sight.
// When the series exceeds the capacity, only the most recent capacity points
// are kept. Truncation happens only on write.
func (s *Store) Add(p vitals.MetricDataPoint) {
	e := s.getOrCreate(KeyFor(p))
	e.mu.Lock()
	e.points = append(e.points, p)
	if len(e.points) > s.capacity {
		keep := e.points[len(e.points)-s.capacity:]
		trimmed := make([]vitals.MetricDataPoint, s.capacity)
		copy(trimmed, keep)
		e.points = trimmed
	}
	e.mu.Unlock()
}

// AddBatch appends points one by one.
func (s *Store) AddBatch(points []vitals.MetricDataPoint) {
	for i := range points {
		s.Add(points[i])
	}
}

// Snapshot returns a defensive copy of a series, in append order.
// Returns nil for an unknown key.
func (s *Store) Snapshot(k Key) []vitals.MetricDataPoint {
	sh := s.shardFor(k)
	sh.mu.RLock()
	e, ok := sh.series[k]
	sh.mu.RUnlock()
	if !ok {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make([]vitals.MetricDataPoint, len(e.points))
	copy(cp, e.points)
	return cp
}

// Keys returns all series keys. The snapshot is per-shard consistent; a
// sweep iterating the result may observe appends made after the call.
func (s *Store) Keys() []Key {
	var keys []Key
	for _, sh := range s.shards {
		sh.mu.RLock()
		for k := range sh.series {
			keys = append(keys, k)
		}
		sh.mu.RUnlock()
	}
	return keys
}

// Clear removes one series. Unknown keys are a no-op.
func (s *Store) Clear(k Key) {
	sh := s.shardFor(k)
	sh.mu.Lock()
	delete(sh.series, k)
	sh.mu.Unlock()
}

// ClearAll removes every series.
func (s *Store) ClearAll() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.series = make(map[Key]*entry)
		sh.mu.Unlock()
	}
}

// SeriesCount returns the number of tracked series.
func (s *Store) SeriesCount() int {
	count := 0
	for _, sh := range s.shards {
		sh.mu.RLock()
		count += len(sh.series)
		sh.mu.RUnlock()
	}
	return count
}

// DataPointCount returns the number of stored points for one series.
func (s *Store) DataPointCount(k Key) int {
	sh := s.shardFor(k)
	sh.mu.RLock()
	e, ok := sh.series[k]
	sh.mu.RUnlock()
	if !ok {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.points)
}
