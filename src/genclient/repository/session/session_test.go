package session

import (
	"context"
	"testing"

	"github.com/genlang/gen-lsp-client/src/genclient/entity"
	"github.com/genlang/gen-lsp-client/src/genclient/factory"
	"github.com/genlang/gen-lsp-client/src/genclient/mapper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tally "github.com/uber-go/tally"
)

func newRepository() (Repository, tally.TestScope) {
	scope := tally.NewTestScope("", nil)
	return New(scope), scope
}

func TestSetAndGet(t *testing.T) {
	r, _ := newRepository()
	ctx := context.Background()

	session := factory.Session(entity.SessionRunning)
	require.NoError(t, r.Set(ctx, session))

	got, err := r.Get(ctx, session.UUID)
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestGetMissing(t *testing.T) {
	r, _ := newRepository()

	_, err := r.Get(context.Background(), factory.UUID())
	assert.Error(t, err)
}

func TestSetNil(t *testing.T) {
	r, _ := newRepository()
	assert.Error(t, r.Set(context.Background(), nil))
}

func TestGetFromContext(t *testing.T) {
	r, _ := newRepository()
	ctx := context.Background()

	session := factory.Session(entity.SessionRunning)
	require.NoError(t, r.Set(ctx, session))

	t.Run("uuid in context", func(t *testing.T) {
		got, err := r.GetFromContext(mapper.ContextWithSessionUUID(ctx, session.UUID))
		require.NoError(t, err)
		assert.Equal(t, session.UUID, got.UUID)
	})

	t.Run("no uuid in context", func(t *testing.T) {
		_, err := r.GetFromContext(ctx)
		assert.Error(t, err)
	})
}

func TestGetAll(t *testing.T) {
	r, _ := newRepository()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, r.Set(ctx, factory.Session(entity.SessionRunning)))
	}

	all, err := r.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDelete(t *testing.T) {
	r, _ := newRepository()
	ctx := context.Background()

	session := factory.Session(entity.SessionRunning)
	require.NoError(t, r.Set(ctx, session))
	require.NoError(t, r.Delete(ctx, session.UUID))

	_, err := r.Get(ctx, session.UUID)
	assert.Error(t, err)

	// Deleting an absent id is a no-op.
	assert.NoError(t, r.Delete(ctx, session.UUID))
}

func TestSessionCountAndGauge(t *testing.T) {
	r, scope := newRepository()
	ctx := context.Background()

	count, err := r.SessionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	first := factory.Session(entity.SessionRunning)
	second := factory.Session(entity.SessionRunning)
	require.NoError(t, r.Set(ctx, first))
	require.NoError(t, r.Set(ctx, second))

	count, err = r.SessionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	gauges := scope.Snapshot().Gauges()
	require.Contains(t, gauges, "active_sessions+")
	assert.Equal(t, float64(2), gauges["active_sessions+"].Value())

	require.NoError(t, r.Delete(ctx, first.UUID))
	gauges = scope.Snapshot().Gauges()
	assert.Equal(t, float64(1), gauges["active_sessions+"].Value())
}
