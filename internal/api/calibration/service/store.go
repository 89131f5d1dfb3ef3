package calibrationService

import (
	"PoseAlign/internal/entity"
	"PoseAlign/pkg/perspective"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

const lockStripes = 64

// holderEntry is the in-memory side of one calibration. Owner and video
// source never change after creation; the correspondence is swapped whole.
type holderEntry struct {
	id          string
	userID      string
	videoSource entity.VideoSource
	createdAt   time.Time
	updatedAt   atomic.Int64
	loadedAt    atomic.Int64
	holder      *perspective.Holder
}

func (e *holderEntry) calibration() entity.Calibration {
	corr := e.holder.Load()

	cal := entity.Calibration{
		ID:          e.id,
		UserID:      e.userID,
		VideoSource: e.videoSource,
		CreatedAt:   e.createdAt,
		UpdatedAt:   time.Unix(0, e.updatedAt.Load()),
	}
	if corr != nil {
		cal.Method = corr.Method
		cal.Source = corr.Source
		cal.Destination = corr.Destination
		cal.Projected = corr.Projected
	}

	return cal
}

func (e *holderEntry) fresh(now time.Time, ttl time.Duration) bool {
	return now.Sub(time.Unix(0, e.loadedAt.Load())) < ttl
}

func (e *holderEntry) install(cal entity.Calibration, now time.Time) *perspective.Correspondence {
	previous := e.holder.Swap(cal.Correspondence())
	e.updatedAt.Store(cal.UpdatedAt.UnixNano())
	e.loadedAt.Store(now.UnixNano())
	return previous
}

// holderStore keeps the live correspondences. Entries older than ttl are
// treated as missing so the caller re-reads them, and are swept out at most
// once per ttl.
type holderStore struct {
	entries   sync.Map
	locks     [lockStripes]sync.Mutex
	ttl       time.Duration
	lastSweep atomic.Int64
}

func newHolderStore(ttl time.Duration) *holderStore {
	return &holderStore{ttl: ttl}
}

// load returns the entry for id if it is still fresh.
func (s *holderStore) load(id string, now time.Time) (*holderEntry, bool) {
	v, ok := s.entries.Load(id)
	if !ok {
		return nil, false
	}

	entry := v.(*holderEntry)
	if !entry.fresh(now, s.ttl) {
		return nil, false
	}
	return entry, true
}

// put registers cal. A fresh existing entry wins so concurrent readers share
// one holder; a stale one is refreshed in place.
func (s *holderStore) put(cal entity.Calibration, now time.Time) *holderEntry {
	entry := &holderEntry{
		id:          cal.ID,
		userID:      cal.UserID,
		videoSource: cal.VideoSource,
		createdAt:   cal.CreatedAt,
		holder:      perspective.NewHolder(cal.Correspondence()),
	}
	entry.updatedAt.Store(cal.UpdatedAt.UnixNano())
	entry.loadedAt.Store(now.UnixNano())

	actual, loaded := s.entries.LoadOrStore(cal.ID, entry)
	existing := actual.(*holderEntry)
	if loaded && !existing.fresh(now, s.ttl) {
		existing.install(cal, now)
	}

	s.sweep(now)
	return existing
}

// swap installs a freshly solved correspondence for a calibration that is
// still registered. It reports false when the entry is gone, which means the
// calibration was deleted and must not be brought back.
func (s *holderStore) swap(cal entity.Calibration, now time.Time) (*perspective.Correspondence, bool) {
	v, ok := s.entries.Load(cal.ID)
	if !ok {
		return nil, false
	}

	return v.(*holderEntry).install(cal, now), true
}

func (s *holderStore) delete(id string) {
	s.entries.Delete(id)
}

func (s *holderStore) contains(id string) bool {
	_, ok := s.entries.Load(id)
	return ok
}

// lock serializes writers of one calibration id.
func (s *holderStore) lock(id string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))

	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *holderStore) sweep(now time.Time) {
	last := s.lastSweep.Load()
	if now.Sub(time.Unix(0, last)) < s.ttl {
		return
	}
	if !s.lastSweep.CompareAndSwap(last, now.UnixNano()) {
		return
	}

	s.entries.Range(func(key, value any) bool {
		if !value.(*holderEntry).fresh(now, s.ttl) {
			s.entries.CompareAndDelete(key, value)
		}
		return true
	})
}
