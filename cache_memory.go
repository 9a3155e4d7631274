package taskq

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"
)

type memEntry struct {
	val []byte
	exp time.Time // zero: no expiry
}

// MemoryStore is an in-process CacheStore for tests and single-node local
// mode. Expired entries are dropped lazily on access.
type MemoryStore struct {
	mu  sync.Mutex
	m   map[string]memEntry
	now func() time.Time
}

// NewMemoryStore creates an empty store using the wall clock.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{m: make(map[string]memEntry), now: time.Now}
}

// NewMemoryStoreClock creates an empty store that reads time from now.
func NewMemoryStoreClock(now func() time.Time) *MemoryStore {
	return &MemoryStore{m: make(map[string]memEntry), now: now}
}

// live returns the entry for key if present and unexpired. Caller holds mu.
func (s *MemoryStore) live(key string) (memEntry, bool) {
	e, ok := s.m[key]
	if !ok {
		return memEntry{}, false
	}
	if !e.exp.IsZero() && !s.now().Before(e.exp) {
		delete(s.m, key)
		return memEntry{}, false
	}
	return e, true
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.live(key)
	if !ok {
		return nil, ErrCacheMiss
	}
	out := make([]byte, len(e.val))
	copy(out, e.val)
	return out, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, val []byte, ttl time.Duration) error {
	cp := make([]byte, len(val))
	copy(cp, val)
	e := memEntry{val: cp}
	if ttl > 0 {
		e.exp = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.m[key] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	for _, k := range keys {
		delete(s.m, k)
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	e, ok := s.live(key)
	if ok {
		v, err := strconv.ParseInt(string(e.val), 10, 64)
		if err != nil {
			return 0, err
		}
		n = v
	}
	n++
	e.val = []byte(strconv.FormatInt(n, 10))
	s.m[key] = e
	return n, nil
}

// DeletePrefix removes every key starting with prefix.
func (s *MemoryStore) DeletePrefix(_ context.Context, prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.m {
		if strings.HasPrefix(k, prefix) {
			delete(s.m, k)
			n++
		}
	}
	return n, nil
}

// Len returns the number of live entries.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for k := range s.m {
		if _, ok := s.live(k); ok {
			n++
		}
	}
	return n
}
