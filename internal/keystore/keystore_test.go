package keystore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_PutGetOverwrite(t *testing.T) {
	ctx := context.Background()
	ks := NewMemory()

	require.NoError(t, ks.Put(ctx, "a", []byte("one")))
	require.NoError(t, ks.Put(ctx, "a", []byte("two")))

	got, err := ks.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("two"), got)
	assert.Equal(t, 1, ks.Len())
}

func TestMemory_GetMissing(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemory_DeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	ks := NewMemory()
	require.NoError(t, ks.Put(ctx, "a", []byte("x")))

	require.NoError(t, ks.Delete(ctx, "a"))
	require.NoError(t, ks.Delete(ctx, "a"))
	require.NoError(t, ks.Delete(ctx, "never-existed"))

	_, err := ks.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemory_CopiesData(t *testing.T) {
	ctx := context.Background()
	ks := NewMemory()
	data := []byte("secret")
	require.NoError(t, ks.Put(ctx, "a", data))

	data[0] = 'X'
	got, err := ks.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("secret"), got)

	got[0] = 'Y'
	again, _ := ks.Get(ctx, "a")
	assert.Equal(t, []byte("secret"), again)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ks := NewMemory()

	assert.ErrorIs(t, ks.Put(ctx, "a", nil), context.Canceled)
	_, err := ks.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, ks.Delete(ctx, "a"), context.Canceled)
}

func TestRecordKeyID(t *testing.T) {
	assert.Equal(t, "zksync/record/r-1", RecordKeyID("r-1"))
	assert.NotEqual(t, RecordKeyID("a"), RecordKeyID("b"))
}
