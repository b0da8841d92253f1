package eventstore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBuildID = "build-123"

func newMemoryStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func rawEvent(buildID string, at time.Time, payload string, meta map[string]string) Event {
	r := &record{buildID: buildID, kind: "TestEvent", at: at, metadata: meta}
	if payload != "" {
		r.payload = []byte(payload)
	}
	return r
}

func TestSQLiteStore_AppendAndForBuild(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()

	require.NoError(t, store.Append(ctx, rawEvent(testBuildID, time.Time{}, `{"test":"data"}`, map[string]string{"key": "value"})))
	require.NoError(t, store.Append(ctx, rawEvent("other", time.Time{}, "", nil)))

	events, err := store.ForBuild(ctx, testBuildID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.NotZero(t, e.ID())
	assert.Equal(t, testBuildID, e.BuildID())
	assert.Equal(t, "TestEvent", e.Type())
	assert.JSONEq(t, `{"test":"data"}`, string(e.Payload()))
	assert.Equal(t, "value", e.Metadata()["key"])
	assert.WithinDuration(t, time.Now(), e.Timestamp(), time.Minute, "zero timestamps are stamped on append")

	other, err := store.ForBuild(ctx, "other")
	require.NoError(t, err)
	require.Len(t, other, 1)
	assert.JSONEq(t, `{}`, string(other[0].Payload()))
	assert.Nil(t, other[0].Metadata())
}

func TestSQLiteStore_Since(t *testing.T) {
	store := newMemoryStore(t)
	ctx := t.Context()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i := range 3 {
		require.NoError(t, store.Append(ctx, rawEvent(testBuildID, base.Add(time.Duration(i)*time.Hour), `{}`, nil)))
	}

	events, err := store.Since(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Less(t, events[0].ID(), events[2].ID())
	assert.True(t, events[1].Timestamp().Equal(base.Add(time.Hour)))

	events, err = store.Since(ctx, base.Add(90*time.Minute))
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.True(t, events[0].Timestamp().Equal(base.Add(2*time.Hour)))
}

func TestSQLiteStore_PersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "history.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), must(NewBuildStarted(testBuildID, BuildStartedMeta{Trigger: "cli"}))))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	events, err := reopened.ForBuild(t.Context(), testBuildID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, TypeBuildStarted, events[0].Type())
	assert.Contains(t, events[0].Metadata(), MetaVersion)
}

func TestSQLiteStore_ClosedStoreFails(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(t.Context(), rawEvent(testBuildID, time.Time{}, "", nil))
	assert.ErrorIs(t, err, ErrAppend)

	_, err = store.Since(t.Context(), time.Time{})
	assert.ErrorIs(t, err, ErrQuery)
}
