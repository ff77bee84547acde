// Package directory serves the user roster from a TTL cache so policy
// checks do not hit the database on every request.
package directory

import (
	"sync"
	"time"

	"github.com/clubware/taskhub/internal/models"
	"github.com/clubware/taskhub/internal/repository"
)

// Directory caches the full user roster for up to a TTL and refreshes
// it lazily on the next read after expiry.
type Directory struct {
	repo repository.UserRepository
	ttl  time.Duration
	now  func() time.Time

	mu        sync.RWMutex
	snapshot  []models.User
	byID      map[uint64]models.User
	fetchedAt time.Time
}

// New creates a Directory backed by repo. A zero or negative ttl
// disables caching and every read goes to the repository.
func New(repo repository.UserRepository, ttl time.Duration) *Directory {
	return &Directory{
		repo: repo,
		ttl:  ttl,
		now:  time.Now,
	}
}

// Snapshot returns the cached roster, refreshing it first if stale.
// The returned slice is a copy and safe to filter in place.
func (d *Directory) Snapshot() ([]models.User, error) {
	d.mu.RLock()
	if d.fresh() {
		users := append([]models.User(nil), d.snapshot...)
		d.mu.RUnlock()
		return users, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	// Another reader may have refreshed while we waited for the lock.
	if !d.fresh() {
		if err := d.refresh(); err != nil {
			return nil, err
		}
	}

	return append([]models.User(nil), d.snapshot...), nil
}

// ByID looks up a single user in the cached roster. The second return
// value is false when no such user exists.
func (d *Directory) ByID(id uint64) (models.User, bool, error) {
	d.mu.RLock()
	if d.fresh() {
		user, ok := d.byID[id]
		d.mu.RUnlock()
		return user, ok, nil
	}
	d.mu.RUnlock()

	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.fresh() {
		if err := d.refresh(); err != nil {
			return models.User{}, false, err
		}
	}

	user, ok := d.byID[id]
	return user, ok, nil
}

// Invalidate drops the cached snapshot so the next read refetches.
// Call it after any write to the users table.
func (d *Directory) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fetchedAt = time.Time{}
}

// fresh reports whether the snapshot is present and within its TTL.
// Callers must hold at least a read lock.
func (d *Directory) fresh() bool {
	if d.fetchedAt.IsZero() || d.ttl <= 0 {
		return false
	}
	return d.now().Sub(d.fetchedAt) < d.ttl
}

// refresh refetches the roster. Callers must hold the write lock.
func (d *Directory) refresh() error {
	users, err := d.repo.ListAll()
	if err != nil {
		return err
	}

	byID := make(map[uint64]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	d.snapshot = users
	d.byID = byID
	d.fetchedAt = d.now()
	return nil
}
