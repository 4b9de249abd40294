package pages

import (
	"context"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/careerpilot/internal/testhelpers"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStateStore(t *testing.T, states StateStore) {
	t.Helper()
	ctx := context.Background()
	owner := uuid.New()

	got, err := states.Get(ctx, owner, "careers")
	require.NoError(t, err)
	assert.Nil(t, got)

	st := newState("careers")
	st.Epoch = 3
	st.Phase = PhaseReady
	st.Filters["job_outlook"] = "growing"
	st.Slots[SlotCareers] = []Entry{{"id": "a", "title": "Data Analyst"}}
	require.NoError(t, states.Put(ctx, owner, st))

	// Mutating the caller's copy must not leak into the store.
	st.Slots[SlotCareers][0]["title"] = "changed"

	got, err = states.Get(ctx, owner, "careers")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(3), got.Epoch)
	assert.Equal(t, "growing", got.Filters["job_outlook"])
	assert.Equal(t, "Data Analyst", got.Slots[SlotCareers][0]["title"])

	other, err := states.Get(ctx, uuid.New(), "careers")
	require.NoError(t, err)
	assert.Nil(t, other)

	require.NoError(t, states.DeleteOwner(ctx, owner, []string{"careers", "learning"}))
	got, err = states.Get(ctx, owner, "careers")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStates(t *testing.T) {
	testStateStore(t, NewMemoryStates())
}

func TestRedisStates(t *testing.T) {
	addr := testhelpers.RedisAddr(t)
	client, err := ConnectRedis(context.Background(), addr, "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	states := NewRedisStates(client, time.Minute)
	testStateStore(t, states)

	owner := uuid.New()
	require.NoError(t, states.Put(context.Background(), owner, newState("learning")))
	ttl, err := client.TTL(context.Background(), stateKey(owner, "learning")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)
}
