package cache

import (
	"testing"

	"github.com/mfukui/lockgate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReference_UserLookups(t *testing.T) {
	users := []*models.User{
		{ID: 1, Login: "alice", PasswordHash: "h1", Salt: "s1"},
		{ID: 2, Login: "bob", PasswordHash: "h2", Salt: "s2"},
	}

	ref := NewReference(users, nil)

	require.NotNil(t, ref.UserByLogin("alice"))
	assert.Equal(t, int64(1), ref.UserByLogin("alice").ID)
	assert.Equal(t, "bob", ref.UserByID(2).Login)
	assert.Nil(t, ref.UserByLogin("nouser"))
	assert.Nil(t, ref.UserByID(99))
	assert.Equal(t, 2, ref.UserCount())
}

func TestReference_IPFailures(t *testing.T) {
	counters := []*models.IPFailureCount{
		{IP: "1.2.3.4", Failures: 7},
	}

	ref := NewReference(nil, counters)

	assert.Equal(t, 7, ref.IPFailures("1.2.3.4"))
	assert.Equal(t, 0, ref.IPFailures("9.9.9.9"), "missing entry counts as zero")

	ref.SetIPFailures("9.9.9.9", 10)
	assert.Equal(t, 10, ref.IPFailures("9.9.9.9"))
}
