package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/mfukui/lockgate/internal/models"
)

var errStoreDown = errors.New("store unavailable")

// fakeBanRepo is an in-memory BanRepository with real counter semantics, so
// scenario tests exercise the same reset/increment contract as the SQL
// upserts.
type fakeBanRepo struct {
	mu           sync.Mutex
	userFailures map[int64]int
	ipFailures   map[string]int
	logins       map[int64]string // user id -> login, for LockedUsers
	failReads    bool
	failWrites   bool
}

func newFakeBanRepo() *fakeBanRepo {
	return &fakeBanRepo{
		userFailures: make(map[int64]int),
		ipFailures:   make(map[string]int),
		logins:       make(map[int64]string),
	}
}

func (f *fakeBanRepo) ApplyUserOutcome(ctx context.Context, userID int64, succeeded bool) error {
	if f.failWrites {
		return errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if succeeded {
		f.userFailures[userID] = 0
	} else {
		f.userFailures[userID]++
	}
	return nil
}

func (f *fakeBanRepo) ApplyIPOutcome(ctx context.Context, ip string, succeeded bool) error {
	if f.failWrites {
		return errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if succeeded {
		f.ipFailures[ip] = 0
	} else {
		f.ipFailures[ip]++
	}
	return nil
}

func (f *fakeBanRepo) GetUserFailures(ctx context.Context, userID int64) (int, error) {
	if f.failReads {
		return 0, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.userFailures[userID], nil
}

func (f *fakeBanRepo) GetIPFailures(ctx context.Context, ip string) (int, error) {
	if f.failReads {
		return 0, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ipFailures[ip], nil
}

func (f *fakeBanRepo) BannedIPs(ctx context.Context, threshold int) ([]string, error) {
	if f.failReads {
		return nil, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ips := make([]string, 0)
	for ip, failures := range f.ipFailures {
		if failures >= threshold {
			ips = append(ips, ip)
		}
	}
	sort.Strings(ips)
	return ips, nil
}

func (f *fakeBanRepo) LockedUsers(ctx context.Context, threshold int) ([]string, error) {
	if f.failReads {
		return nil, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]int64, 0)
	for id, failures := range f.userFailures {
		if failures >= threshold {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	users := make([]string, 0, len(ids))
	for _, id := range ids {
		users = append(users, f.logins[id])
	}
	return users, nil
}

// fakeAttemptRepo is an in-memory append-only ledger. It also implements
// the ledger-derived report queries over its rows so agreement tests can
// compare both read models without a database.
type fakeAttemptRepo struct {
	mu         sync.Mutex
	rows       []*models.LoginAttempt
	failWrites bool
}

func newFakeAttemptRepo() *fakeAttemptRepo {
	return &fakeAttemptRepo{}
}

func (f *fakeAttemptRepo) Record(ctx context.Context, attempt *models.LoginAttempt) error {
	if f.failWrites {
		return errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	row := *attempt
	row.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, &row)
	return nil
}

func (f *fakeAttemptRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *fakeAttemptRepo) BannedIPsFromLedger(ctx context.Context, threshold int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keyed := make(map[string][]*models.LoginAttempt)
	for _, row := range f.rows {
		keyed[row.IP] = append(keyed[row.IP], row)
	}

	banned := make([]string, 0)
	for ip, rows := range keyed {
		if trailingFailures(rows) >= threshold {
			banned = append(banned, ip)
		}
	}
	sort.Strings(banned)
	return banned, nil
}

func (f *fakeAttemptRepo) LockedUsersFromLedger(ctx context.Context, threshold int) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	keyed := make(map[int64][]*models.LoginAttempt)
	for _, row := range f.rows {
		if row.UserID != nil {
			keyed[*row.UserID] = append(keyed[*row.UserID], row)
		}
	}

	ids := make([]int64, 0)
	for id, rows := range keyed {
		if trailingFailures(rows) >= threshold {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	logins := make([]string, 0, len(ids))
	for _, id := range ids {
		login := ""
		for _, row := range keyed[id] {
			login = row.Login
		}
		logins = append(logins, login)
	}
	return logins, nil
}

// trailingFailures counts attempts strictly after the last success; with no
// success ever, every attempt counts.
func trailingFailures(rows []*models.LoginAttempt) int {
	count := 0
	for _, row := range rows {
		if row.Succeeded {
			count = 0
		} else {
			count++
		}
	}
	return count
}

// fakeLastLoginRepo is an in-memory LastLoginRepository.
type fakeLastLoginRepo struct {
	mu      sync.Mutex
	records map[int64]*models.LastLogin
	fail    bool
}

func newFakeLastLoginRepo() *fakeLastLoginRepo {
	return &fakeLastLoginRepo{records: make(map[int64]*models.LastLogin)}
}

func (f *fakeLastLoginRepo) Replace(ctx context.Context, userID int64, at time.Time, ip string) (*models.LastLogin, error) {
	if f.fail {
		return nil, errStoreDown
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	previous := f.records[userID]
	f.records[userID] = &models.LastLogin{UserID: userID, CreatedAt: at, IP: ip}
	return previous, nil
}
