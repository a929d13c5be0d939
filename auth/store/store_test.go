package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ReadOnce(t *testing.T) {
	ctx := context.Background()
	stores := map[string]Store{
		"memory": NewMemoryStore(),
		"file":   NewFileStore(fmt.Sprintf("mem://localhost/agentauth/%v", uuid.New().String())),
	}
	for name, aStore := range stores {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, aStore.Put(ctx, "xyz42", []byte(`{"userId":"u1"}`)))

			data, ok, err := aStore.Get(ctx, "xyz42")
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, `{"userId":"u1"}`, string(data))

			// read-once: the entry is gone after a successful read
			_, ok, err = aStore.Get(ctx, "xyz42")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestStore_Overwrite(t *testing.T) {
	ctx := context.Background()
	aStore := NewMemoryStore()
	require.NoError(t, aStore.Put(ctx, "s1", []byte("first")))
	require.NoError(t, aStore.Put(ctx, "s1", []byte("second")))

	data, ok, err := aStore.Get(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", string(data))
}

func TestStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	for _, aStore := range []Store{NewMemoryStore(), NewFileStore("mem://localhost/agentauth/missing")} {
		_, ok, err := aStore.Get(ctx, "unknown")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}
