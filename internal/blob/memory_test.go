package blob

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_PutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "a.csv", []byte("x,y\n1,2\n")))

	data, err := store.Get(ctx, "a.csv")
	require.NoError(t, err)
	assert.Equal(t, []byte("x,y\n1,2\n"), data)
}

func TestMemoryStore_GetMissingIsNotFound(t *testing.T) {
	store := NewMemoryStore()

	_, err := store.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestMemoryStore_ListSortedWithSizes(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "b", []byte("22")))
	require.NoError(t, store.Put(ctx, "a", []byte("1")))

	infos, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "a", infos[0].Key)
	assert.Equal(t, int64(1), infos[0].Size)
	assert.Equal(t, "b", infos[1].Key)
	assert.Equal(t, int64(2), infos[1].Size)
	assert.False(t, infos[0].LastModified.IsZero())
}

func TestMemoryStore_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "a", []byte("1")))
	require.NoError(t, store.Delete(ctx, "a"))
	require.NoError(t, store.Delete(ctx, "a"))

	_, err := store.Get(ctx, "a")
	assert.True(t, errors.Is(err, ErrNotFound))
}
