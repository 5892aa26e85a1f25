package audiocache

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// MemoryStore keeps blobs in process. Get rejects entries older than the TTL
// by the store clock; the cache janitor purges them once per TTL.
type MemoryStore struct {
	ttl   time.Duration
	blobs *cache.Cache
	clock func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, blobs: cache.New(ttl, ttl), clock: time.Now}
}

func (s *MemoryStore) WithClock(clock func() time.Time) *MemoryStore {
	s.clock = clock
	return s
}

func (s *MemoryStore) Put(ctx context.Context, data []byte, mediaType string) (string, error) {
	id := newID()
	s.blobs.Set(id, Blob{
		Data:      append([]byte(nil), data...),
		MediaType: mediaType,
		CreatedAt: s.clock().UTC(),
	}, cache.DefaultExpiration)
	putsTotal.WithLabelValues("memory").Inc()
	return id, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Blob, error) {
	v, ok := s.blobs.Get(id)
	if !ok {
		observeLookup("memory", ErrNotFound)
		return Blob{}, ErrNotFound
	}
	b := v.(Blob)
	if s.expired(b) {
		s.blobs.Delete(id)
		observeLookup("memory", ErrNotFound)
		return Blob{}, ErrNotFound
	}
	observeLookup("memory", nil)
	return b, nil
}

// Len reports the number of live entries and drops the rest.
func (s *MemoryStore) Len() int {
	s.blobs.DeleteExpired()
	n := 0
	for id, item := range s.blobs.Items() {
		if s.expired(item.Object.(Blob)) {
			s.blobs.Delete(id)
			continue
		}
		n++
	}
	return n
}

func (s *MemoryStore) expired(b Blob) bool {
	return s.clock().Sub(b.CreatedAt) > s.ttl
}
