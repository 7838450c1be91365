// Package cache implements the persistent cache store for normalized provider
// payloads. Entries live on disk as one JSON file per (cache type, symbol),
// are written atomically, expire lazily on read, and are fronted by a bounded
// in-memory LRU layer.
package cache

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// NegativeMarker is the payload key stored when every provider failed.
const NegativeMarker = "__negative_cache__"

var negativePayload = json.RawMessage(`{"` + NegativeMarker + `":true}`)

// Metadata describes a persisted entry.
type Metadata struct {
	Symbol    string    `json:"symbol"`
	CacheType string    `json:"cache_type"`
	CachedAt  time.Time `json:"cached_at"`
	ExpiresAt time.Time `json:"expires_at"`
	TTLHours  int       `json:"ttl_hours"`
}

// Entry is the persisted unit. Entries are immutable once built.
type Entry struct {
	Metadata Metadata        `json:"metadata"`
	Data     json.RawMessage `json:"data"`
}

// Fresh reports whether the entry has not yet expired at now.
func (e *Entry) Fresh(now time.Time) bool {
	return now.Before(e.Metadata.ExpiresAt)
}

// Negative reports whether the entry is the all-providers-failed marker.
func (e *Entry) Negative() bool {
	if len(e.Data) == 0 || e.Data[0] != '{' || !bytes.Contains(e.Data, []byte(NegativeMarker)) {
		return false
	}
	var marker map[string]any
	if err := json.Unmarshal(e.Data, &marker); err != nil {
		return false
	}
	v, ok := marker[NegativeMarker].(bool)
	return ok && v
}

// Config holds store settings.
type Config struct {
	Enabled          bool
	Dir              string
	MaxMemoryEntries int
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the wall clock used for TTLs and freshness.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Stats is a snapshot of cache usage.
type Stats struct {
	Enabled        bool           `json:"enabled"`
	Dir            string         `json:"dir"`
	MemoryEntries  int            `json:"memory_entries"`
	MemoryCapacity int            `json:"memory_capacity"`
	DiskEntries    int            `json:"disk_entries"`
	ByType         map[string]int `json:"by_type"`
	Hits           int64          `json:"hits"`
	Misses         int64          `json:"misses"`
	Writes         int64          `json:"writes"`
	Expired        int64          `json:"expired"`
	Errors         int64          `json:"errors"`
}

// Store is the disk cache. A single mutex guards every operation, including
// LRU eviction. I/O failures are logged and absorbed: reads become misses and
// writes become no-ops.
type Store struct {
	fs       afero.Fs
	dir      string
	enabled  bool
	capacity int
	now      func() time.Time
	log      zerolog.Logger

	mu  sync.Mutex
	mem *lru.Cache[string, *Entry]

	hits, misses, writes, expired, errors int64
}

// NewStore creates a store rooted at cfg.Dir on fs.
func NewStore(fs afero.Fs, cfg Config, log zerolog.Logger, opts ...Option) (*Store, error) {
	capacity := cfg.MaxMemoryEntries
	if capacity <= 0 {
		capacity = 512
	}
	mem, err := lru.New[string, *Entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}

	s := &Store{
		fs:       fs,
		dir:      filepath.Clean(cfg.Dir),
		enabled:  cfg.Enabled,
		capacity: capacity,
		now:      time.Now,
		log:      log.With().Str("component", "cache").Logger(),
		mem:      mem,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.enabled {
		if err := s.fs.MkdirAll(s.dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache dir %s: %w", s.dir, err)
		}
	}
	return s, nil
}

// Enabled reports whether the store reads and writes at all.
func (s *Store) Enabled() bool {
	return s.enabled
}

// Get returns a fresh entry or false. Expired entries are deleted as a side
// effect of the miss.
func (s *Store) Get(cacheType, symbol string) (*Entry, bool) {
	if !s.enabled {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := memKey(cacheType, symbol)
	now := s.now()

	if e, ok := s.mem.Get(key); ok {
		if e.Fresh(now) {
			s.hits++
			return e, true
		}
		s.evictLocked(cacheType, symbol)
		s.misses++
		return nil, false
	}

	e, err := s.readLocked(s.path(cacheType, symbol))
	if err != nil {
		if !os.IsNotExist(err) {
			s.errors++
			s.log.Debug().Err(err).Str("cache_type", cacheType).Str("symbol", symbol).Msg("Cache read failed")
		}
		s.misses++
		return nil, false
	}
	if !e.Fresh(now) {
		s.evictLocked(cacheType, symbol)
		s.misses++
		return nil, false
	}

	s.mem.Add(key, e)
	s.hits++
	return e, true
}

// Set persists payload with the given TTL, overwriting any existing entry.
// Payload is JSON-encoded unless it already is a json.RawMessage.
// Returns false if the write failed.
func (s *Store) Set(cacheType, symbol string, payload any, ttlHours int) bool {
	if !s.enabled {
		return false
	}

	var raw json.RawMessage
	switch p := payload.(type) {
	case json.RawMessage:
		raw = p
	default:
		b, err := json.Marshal(payload)
		if err != nil {
			s.log.Warn().Err(err).Str("cache_type", cacheType).Str("symbol", symbol).Msg("Cache encode failed")
			s.mu.Lock()
			s.errors++
			s.mu.Unlock()
			return false
		}
		raw = b
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := &Entry{
		Metadata: Metadata{
			Symbol:    symbol,
			CacheType: cacheType,
			CachedAt:  now,
			ExpiresAt: now.Add(time.Duration(ttlHours) * time.Hour),
			TTLHours:  ttlHours,
		},
		Data: raw,
	}

	if err := s.writeLocked(cacheType, symbol, e); err != nil {
		s.errors++
		s.log.Warn().Err(err).Str("cache_type", cacheType).Str("symbol", symbol).Msg("Cache write failed")
		return false
	}
	s.mem.Add(memKey(cacheType, symbol), e)
	s.writes++
	return true
}

// SetNegative records that every provider failed for the key.
func (s *Store) SetNegative(cacheType, symbol string, ttlHours int) bool {
	return s.Set(cacheType, symbol, negativePayload, ttlHours)
}

// Warm loads every fresh persisted entry into the memory layer, deleting
// expired ones. Returns the number loaded.
func (s *Store) Warm() int {
	if !s.enabled {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	loaded := 0
	s.walkLocked(func(cacheType, symbol, path string) {
		e, err := s.readLocked(path)
		if err != nil {
			s.errors++
			s.log.Debug().Err(err).Str("path", path).Msg("Skipping unreadable cache entry")
			return
		}
		if !e.Fresh(now) {
			s.evictLocked(cacheType, symbol)
			return
		}
		s.mem.Add(memKey(cacheType, symbol), e)
		loaded++
	})

	s.log.Info().Int("loaded", loaded).Msg("Cache warmed")
	return loaded
}

// ClearAll removes every entry. Returns the number of files removed.
func (s *Store) ClearAll() int {
	return s.clear(func(string, string) bool { return true })
}

// ClearCategory removes every entry of a category, including its
// quarterly variant.
func (s *Store) ClearCategory(category string) int {
	return s.clear(func(cacheType, _ string) bool {
		return cacheType == category || cacheType == category+"_quarterly"
	})
}

// ClearSymbol removes every entry for a symbol across all cache types.
func (s *Store) ClearSymbol(symbol string) int {
	return s.clear(func(_, sym string) bool { return sym == symbol })
}

func (s *Store) clear(match func(cacheType, symbol string) bool) int {
	if !s.enabled {
		return 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	s.walkLocked(func(cacheType, symbol, path string) {
		if !match(cacheType, symbol) {
			return
		}
		if err := s.fs.Remove(path); err != nil {
			s.errors++
			s.log.Warn().Err(err).Str("path", path).Msg("Cache delete failed")
			return
		}
		removed++
	})

	for _, key := range s.mem.Keys() {
		cacheType, symbol, _ := strings.Cut(key, "/")
		if match(cacheType, symbol) {
			s.mem.Remove(key)
		}
	}

	s.log.Info().Int("removed", removed).Msg("Cache cleared")
	return removed
}

// Stats returns usage counters and per-type disk entry counts.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Stats{
		Enabled:        s.enabled,
		Dir:            s.dir,
		MemoryEntries:  s.mem.Len(),
		MemoryCapacity: s.capacity,
		ByType:         make(map[string]int),
		Hits:           s.hits,
		Misses:         s.misses,
		Writes:         s.writes,
		Expired:        s.expired,
		Errors:         s.errors,
	}
	if s.enabled {
		s.walkLocked(func(cacheType, _, _ string) {
			st.ByType[cacheType]++
			st.DiskEntries++
		})
	}
	return st
}

// Close drops the memory layer. Disk entries are already durable.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mem.Purge()
	return nil
}

// --- internals (callers hold mu) ---

func memKey(cacheType, symbol string) string {
	return cacheType + "/" + symbol
}

func (s *Store) path(cacheType, symbol string) string {
	return filepath.Join(s.dir, cacheType, symbol+".json")
}

func (s *Store) readLocked(path string) (*Entry, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, err
	}
	var e Entry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if e.Metadata.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("decode %s: missing expires_at", path)
	}
	return &e, nil
}

// writeLocked writes to a temp file in the target directory and renames it
// over the destination so readers never see a partial entry.
func (s *Store) writeLocked(cacheType, symbol string, e *Entry) error {
	dir := filepath.Join(s.dir, cacheType)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(e, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	tmp, err := afero.TempFile(s.fs, dir, symbol+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := s.fs.Rename(tmpName, s.path(cacheType, symbol)); err != nil {
		_ = s.fs.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

func (s *Store) evictLocked(cacheType, symbol string) {
	s.mem.Remove(memKey(cacheType, symbol))
	if err := s.fs.Remove(s.path(cacheType, symbol)); err != nil && !os.IsNotExist(err) {
		s.errors++
		s.log.Debug().Err(err).Str("cache_type", cacheType).Str("symbol", symbol).Msg("Cache evict failed")
		return
	}
	s.expired++
}

// walkLocked visits every persisted entry file as (cacheType, symbol, path),
// in sorted order. Temp files and stray files are ignored.
func (s *Store) walkLocked(fn func(cacheType, symbol, path string)) {
	types, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.errors++
			s.log.Debug().Err(err).Str("dir", s.dir).Msg("Cache dir unreadable")
		}
		return
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Name() < types[j].Name() })

	for _, t := range types {
		if !t.IsDir() {
			continue
		}
		typeDir := filepath.Join(s.dir, t.Name())
		files, err := afero.ReadDir(s.fs, typeDir)
		if err != nil {
			s.errors++
			continue
		}
		for _, f := range files {
			name := f.Name()
			if f.IsDir() || !strings.HasSuffix(name, ".json") || strings.HasSuffix(name, ".tmp") {
				continue
			}
			fn(t.Name(), strings.TrimSuffix(name, ".json"), filepath.Join(typeDir, name))
		}
	}
}
