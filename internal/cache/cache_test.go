package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	v, err := m.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, m.Set(ctx, "songs:a", []byte("x"), time.Minute))
	require.NoError(t, m.Set(ctx, "songs:b", []byte("y"), 0))
	require.NoError(t, m.Set(ctx, "other", []byte("z"), time.Minute))

	v, _ = m.Get(ctx, "songs:a")
	assert.Equal(t, []byte("x"), v)

	require.NoError(t, m.DeletePrefix(ctx, "songs:"))
	v, _ = m.Get(ctx, "songs:a")
	assert.Nil(t, v)
	v, _ = m.Get(ctx, "songs:b")
	assert.Nil(t, v)
	v, _ = m.Get(ctx, "other")
	assert.Equal(t, []byte("z"), v)

	require.NoError(t, m.Delete(ctx, "other"))
	v, _ = m.Get(ctx, "other")
	assert.Nil(t, v)
}

func TestMemory_Expiry(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(time.Minute)

	require.NoError(t, m.Set(ctx, "k", []byte("v"), 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)
	v, _ := m.Get(ctx, "k")
	assert.Nil(t, v)
}

func TestClient_NilIsSafe(t *testing.T) {
	var c *Client
	ctx := context.Background()

	v, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.DeletePrefix(ctx, "k"))
}

func TestClient_UnreachableRedisReadsAsMiss(t *testing.T) {
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	v, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, v)
	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Second))
}
