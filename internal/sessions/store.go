// Package sessions keeps dashboard sessions in process memory.
package sessions

import (
	"time"

	"github.com/Krchnk/gw-crypto-dashboard/internal/dashboard"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// Store maps session ids to sessions with a sliding idle TTL. Sessions are
// stored by value, so callers work on their own copy and Save it back.
type Store struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{
		cache: cache.New(ttl, ttl/2),
		ttl:   ttl,
	}
}

// New creates and stores a fresh unauthenticated session.
func (s *Store) New() dashboard.Session {
	sess := dashboard.NewSession(uuid.NewString())
	s.Save(sess)
	return sess
}

func (s *Store) Get(id string) (dashboard.Session, bool) {
	if id == "" {
		return dashboard.Session{}, false
	}
	v, found := s.cache.Get(id)
	if !found {
		return dashboard.Session{}, false
	}
	return v.(dashboard.Session), true
}

func (s *Store) Save(sess dashboard.Session) {
	s.cache.Set(sess.ID, sess, s.ttl)
}

// Update writes sess back only if its id is still live. It reports false
// when the id was rotated, deleted or expired while the caller held a copy.
func (s *Store) Update(sess dashboard.Session) bool {
	return s.cache.Replace(sess.ID, sess, s.ttl) == nil
}

// Rotate moves sess to a fresh id and drops the old one. Copies still held
// under the old id can no longer be written back with Update.
func (s *Store) Rotate(sess dashboard.Session) dashboard.Session {
	old := sess.ID
	sess.ID = uuid.NewString()
	s.Save(sess)
	s.Delete(old)
	return sess
}

func (s *Store) Delete(id string) {
	s.cache.Delete(id)
}

func (s *Store) Len() int {
	return s.cache.ItemCount()
}
