package eventstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendAll(t *testing.T, s Store, events ...Event) {
	t.Helper()
	for _, e := range events {
		require.NoError(t, s.Append(context.Background(), e))
	}
}

func must[E Event](e E, err error) Event {
	if err != nil {
		panic(err)
	}
	return e
}

func TestProjection_Rebuild(t *testing.T) {
	store := newMemoryStore(t)

	appendAll(t, store,
		must(NewBuildStarted("b1", BuildStartedMeta{Trigger: "cli"})),
		must(NewBuildCompleted("b1", BuildCounts{Rendered: 10})),
	)
	time.Sleep(5 * time.Millisecond)
	appendAll(t, store,
		must(NewBuildStarted("b2", BuildStartedMeta{Trigger: "watch", Force: true})),
		must(NewBuildCompleted("b2", BuildCounts{Rendered: 1, Reused: 8, Failed: 1})),
	)
	time.Sleep(5 * time.Millisecond)
	appendAll(t, store,
		must(NewBuildStarted("b3", BuildStartedMeta{Trigger: "cli"})),
		must(NewBuildFailed("b3", "load", "no summary")),
	)
	appendAll(t, store, must(NewBuildStarted("b4", BuildStartedMeta{})))

	p := NewBuildHistoryProjection(store, 10)
	require.NoError(t, p.Rebuild(t.Context()))

	history := p.GetHistory(0)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"b3", "b2", "b1"}, []string{history[0].BuildID, history[1].BuildID, history[2].BuildID})

	assert.Equal(t, StatusFailed, history[0].Status)
	assert.Equal(t, "load", history[0].ErrorStage)
	assert.Equal(t, "no summary", history[0].ErrorMessage)

	assert.Equal(t, StatusWarning, history[1].Status)
	assert.True(t, history[1].Force)
	assert.Equal(t, "watch", history[1].Trigger)
	assert.Equal(t, 8, history[1].Reused)

	assert.Equal(t, StatusCompleted, history[2].Status)
	assert.NotEmpty(t, history[2].Version)
	assert.Equal(t, 10, history[2].Rendered)
	require.NotNil(t, history[2].CompletedAt)

	active, ok := p.GetActiveBuild()
	require.True(t, ok)
	assert.Equal(t, "b4", active.BuildID)

	assert.Len(t, p.GetHistory(2), 2)
}

func TestProjection_ApplyAndTrim(t *testing.T) {
	p := NewBuildHistoryProjection(newMemoryStore(t), 2)

	for _, id := range []string{"a", "b", "c"} {
		p.Apply(must(NewBuildStarted(id, BuildStartedMeta{})))
		p.Apply(must(NewBuildCompleted(id, BuildCounts{})))
	}

	history := p.GetHistory(0)
	require.Len(t, history, 2)
	assert.Equal(t, "c", history[0].BuildID)
	assert.Equal(t, "b", history[1].BuildID)

	_, ok := p.GetBuild("a")
	assert.False(t, ok, "builds that fall out of the history are forgotten")
	got, ok := p.GetBuild("c")
	require.True(t, ok)
	assert.Equal(t, StatusCompleted, got.Status)

	_, ok = p.GetActiveBuild()
	assert.False(t, ok)
}
