package taskq

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service is the scheduling and caching core in front of a task store.
// It is safe for concurrent use; nothing but the injected stores is shared
// between calls.
type Service struct {
	store TaskStore
	cache *Cache
	enc   Encoder
	log   Logger
	now   func() time.Time
}

// NewService creates a Service reading tasks from store and caching list
// pages in cache.
func NewService(store TaskStore, cache CacheStore, opts ...Option) *Service {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.log == nil {
		cfg.log = noopLogger{}
	}
	if cfg.encoder == nil {
		cfg.encoder = &JSONEncoder{Strict: true}
	}
	if cfg.now == nil {
		cfg.now = time.Now
	}
	return &Service{
		store: store,
		cache: NewCache(cache, cfg.ttl, cfg.log, cfg.singleFlight),
		enc:   cfg.encoder,
		log:   cfg.log,
		now:   cfg.now,
	}
}

// Cache exposes the underlying cache layer.
func (s *Service) Cache() *Cache { return s.cache }

// ListWithCache returns one page of ownerID's tasks matching f, ordered by
// priority class then newest first. Pages are served from the cache when
// possible and computed from the task store otherwise. Zero page or pageSize
// select the defaults; invalid values fail with ErrInvalidQuery before any
// store is touched.
func (s *Service) ListWithCache(ctx context.Context, ownerID string, f Filter, page, pageSize int) (*ListResult, error) {
	q, err := NewQuery(ownerID, f, page, pageSize)
	if err != nil {
		return nil, err
	}

	key, err := s.cache.ListKey(ctx, q)
	if err != nil {
		// Without the namespace version no key is known to be current.
		s.log.Warnf("cache version read failed, bypassing cache: owner=%s err=%v", ownerID, err)
		return s.listFresh(ctx, q)
	}

	raw, err := s.cache.ReadThrough(ctx, key, func(ctx context.Context) ([]byte, error) {
		return s.computePage(ctx, q)
	}, 0)
	if err != nil {
		return nil, err
	}

	var out ListResult
	if err := s.enc.Decode(raw, &out); err != nil {
		s.log.Warnf("cache entry undecodable, recomputing: key=%s err=%v", key, err)
		if derr := s.cache.store.Delete(ctx, key); derr != nil {
			s.log.Warnf("cache delete failed: key=%s err=%v", key, derr)
		}
		return s.listFresh(ctx, q)
	}
	return &out, nil
}

func (s *Service) listFresh(ctx context.Context, q Query) (*ListResult, error) {
	tasks, err := s.store.FindTasks(ctx, q.OwnerID, q.Filter)
	if err != nil {
		return nil, storeErr("find", q.OwnerID, err)
	}
	res := paginate(tasks, q.Page, q.PageSize)
	return &res, nil
}

func (s *Service) computePage(ctx context.Context, q Query) ([]byte, error) {
	res, err := s.listFresh(ctx, q)
	if err != nil {
		return nil, err
	}
	s.log.Debugf("cache miss computed: owner=%s page=%d total=%d", q.OwnerID, q.Page, res.TotalTasks)
	return s.enc.Encode(res)
}

// paginate orders tasks by priority class, then newest first, then ID, and
// cuts out the requested page.
func paginate(tasks []Task, page, size int) ListResult {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(a, b Task) int {
		if d := b.Priority.Rank() - a.Priority.Rank(); d != 0 {
			return d
		}
		if a.CreatedAt != b.CreatedAt {
			if b.CreatedAt > a.CreatedAt {
				return 1
			}
			return -1
		}
		return strings.Compare(a.ID, b.ID)
	})

	total := len(sorted)
	res := ListResult{
		Tasks:       []Task{},
		TotalPages:  (total + size - 1) / size,
		CurrentPage: page,
		TotalTasks:  total,
	}
	// compare pages before multiplying; page*size may overflow
	if page > res.TotalPages {
		return res
	}
	start := (page - 1) * size
	end := min(start+size, total)
	res.Tasks = sorted[start:end]
	return res
}

// OnMutation must be called after any create, update or delete touching
// ownerID's tasks. It invalidates every cached list page of the owner.
func (s *Service) OnMutation(ctx context.Context, ownerID string) error {
	return s.cache.Invalidate(ctx, ownerID)
}

// Scheduled returns ownerID's pending tasks in scheduling order. It always
// reads the task store directly.
func (s *Service) Scheduled(ctx context.Context, ownerID string) ([]Task, error) {
	tasks, err := s.store.FindTasks(ctx, ownerID, Filter{Status: StatusPending})
	if err != nil {
		return nil, storeErr("find", ownerID, err)
	}
	return Schedule(tasks, s.now()), nil
}

func (s *Service) writer() (TaskWriter, error) {
	w, ok := s.store.(TaskWriter)
	if !ok {
		return nil, ErrReadOnlyStore
	}
	return w, nil
}

// afterWrite invalidates the owner's cache. A failed invalidation does not
// undo the committed write; it is logged and left to the TTL.
func (s *Service) afterWrite(ctx context.Context, ownerID string) {
	if err := s.OnMutation(ctx, ownerID); err != nil {
		s.log.Errorf("invalidate after write failed: owner=%s err=%v", ownerID, err)
	}
}

// GetTask returns one task of ownerID. It is not cached.
func (s *Service) GetTask(ctx context.Context, ownerID, id string) (Task, error) {
	w, err := s.writer()
	if err != nil {
		return Task{}, err
	}
	t, err := w.GetTask(ctx, ownerID, id)
	if err != nil {
		return Task{}, storeErr("get", ownerID, err)
	}
	return t, nil
}

// CreateTask stores t and invalidates the owner's cache. Missing fields get
// defaults: a random ID, PriorityMedium, StatusPending and the current time.
func (s *Service) CreateTask(ctx context.Context, t *Task) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	if err := normalize(t); err != nil {
		return err
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	now := s.now().UnixMilli()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	if err := w.CreateTask(ctx, t); err != nil {
		return storeErr("create", t.OwnerID, err)
	}
	s.afterWrite(ctx, t.OwnerID)
	return nil
}

// UpdateTask replaces an existing task of t.OwnerID and invalidates the owner's cache.
func (s *Service) UpdateTask(ctx context.Context, t *Task) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	if err := normalize(t); err != nil {
		return err
	}
	t.UpdatedAt = s.now().UnixMilli()
	if err := w.UpdateTask(ctx, t); err != nil {
		return storeErr("update", t.OwnerID, err)
	}
	s.afterWrite(ctx, t.OwnerID)
	return nil
}

// DeleteTask removes a task of ownerID and invalidates the owner's cache.
func (s *Service) DeleteTask(ctx context.Context, ownerID, id string) error {
	w, err := s.writer()
	if err != nil {
		return err
	}
	if err := w.DeleteTask(ctx, ownerID, id); err != nil {
		return storeErr("delete", ownerID, err)
	}
	s.afterWrite(ctx, ownerID)
	return nil
}

func normalize(t *Task) error {
	if t.OwnerID == "" {
		return ErrInvalidTask
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if _, err := ParsePriority(string(t.Priority)); err != nil {
		return err
	}
	if _, err := ParseStatus(string(t.Status)); err != nil {
		return err
	}
	return nil
}
