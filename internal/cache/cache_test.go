package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

type groupDTO struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb := Connect(mr.Addr())
	require.NotNil(t, rdb)
	_ = rdb.Close()

	rdb = Connect("redis://" + mr.Addr() + "/0")
	require.NotNil(t, rdb)
	_ = rdb.Close()

	assert.Nil(t, Connect("redis://%zz"))
	assert.Nil(t, Connect(""))
}

func TestAside_FetchesOnceThenServesFromRedis(t *testing.T) {
	_, rdb := newTestRedis(t)
	ctx := context.Background()
	calls := 0
	fetch := func(dest *groupDTO) func() error {
		return func() error {
			calls++
			*dest = groupDTO{Slug: "cats", Title: "Cats"}
			return nil
		}
	}

	var first groupDTO
	require.NoError(t, Aside(ctx, rdb, GroupBySlugKey("cats"), &first, GroupsTTL, fetch(&first)))
	var second groupDTO
	require.NoError(t, Aside(ctx, rdb, GroupBySlugKey("cats"), &second, GroupsTTL, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, "Cats", second.Title)

	require.NoError(t, Invalidate(ctx, rdb, GroupBySlugKey("cats")))
	var third groupDTO
	require.NoError(t, Aside(ctx, rdb, GroupBySlugKey("cats"), &third, GroupsTTL, fetch(&third)))
	assert.Equal(t, 2, calls)
}

func TestAside_NilClientAlwaysFetches(t *testing.T) {
	var dest groupDTO
	err := Aside(context.Background(), nil, GroupsAllKey(), &dest, GroupsTTL, func() error {
		return errors.New("db down")
	})
	assert.EqualError(t, err, "db down")
}

func TestPageStore_SetGetClear(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewPageStore(rdb)

	require.NoError(t, store.Set("/?page=1|0", []byte("page one"), 20*time.Second))
	require.NoError(t, store.Set("/?page=2|0", []byte("page two"), 20*time.Second))
	require.NoError(t, mr.Set("blacklist:abc", "1"))

	got, err := store.Get("/?page=1|0")
	require.NoError(t, err)
	assert.Equal(t, "page one", string(got))

	missing, err := store.Get("/nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, store.Reset())
	got, err = store.Get("/?page=1|0")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.True(t, mr.Exists("blacklist:abc"), "clear must only touch page keys")
}

func TestPageStore_Expires(t *testing.T) {
	mr, rdb := newTestRedis(t)
	store := NewPageStore(rdb)

	require.NoError(t, store.Set("/", []byte("index"), 20*time.Second))
	mr.FastForward(21 * time.Second)

	got, err := store.Get("/")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPageStore_NilClient(t *testing.T) {
	store := NewPageStore(nil)
	require.NoError(t, store.Set("/", []byte("x"), time.Second))
	got, err := store.Get("/")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, store.Delete("/"))
	assert.NoError(t, store.Clear(context.Background()))
	assert.NoError(t, store.Close())
}
