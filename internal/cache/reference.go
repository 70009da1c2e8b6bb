package cache

import (
	"sync"

	"github.com/mfukui/lockgate/internal/models"
)

// Reference is the startup snapshot of the user table and the per-IP
// failure counters. Users are read-only after load; accounts are
// pre-provisioned, so new rows appearing later are a tolerated staleness
// window. The IP map may be refreshed after a live double-check, so reads
// can under-report a ban but never invent one.
//
// Account-lock counters are deliberately not cached: they change on every
// attempt and staleness there would be unsafe.
type Reference struct {
	usersByID    map[int64]*models.User
	usersByLogin map[string]*models.User

	mu         sync.RWMutex
	ipFailures map[string]int
}

// NewReference builds the snapshot from full-table scans done at startup.
func NewReference(users []*models.User, ipCounters []*models.IPFailureCount) *Reference {
	ref := &Reference{
		usersByID:    make(map[int64]*models.User, len(users)),
		usersByLogin: make(map[string]*models.User, len(users)),
		ipFailures:   make(map[string]int, len(ipCounters)),
	}

	for _, u := range users {
		ref.usersByID[u.ID] = u
		ref.usersByLogin[u.Login] = u
	}
	for _, c := range ipCounters {
		ref.ipFailures[c.IP] = c.Failures
	}

	return ref
}

// UserByID returns the cached user, or nil when unknown.
func (r *Reference) UserByID(id int64) *models.User {
	return r.usersByID[id]
}

// UserByLogin returns the cached user, or nil when unknown.
func (r *Reference) UserByLogin(login string) *models.User {
	return r.usersByLogin[login]
}

// IPFailures returns the cached failure count for an address. A missing
// entry counts as zero failures.
func (r *Reference) IPFailures(ip string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ipFailures[ip]
}

// SetIPFailures stores a freshly queried counter value after a live
// double-check.
func (r *Reference) SetIPFailures(ip string, failures int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ipFailures[ip] = failures
}

// UserCount reports the number of cached accounts, for startup logging.
func (r *Reference) UserCount() int {
	return len(r.usersByID)
}
