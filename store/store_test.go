package store

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yaoapp/kun/any"
)

func TestMemory(t *testing.T) {
	kv := newStore(t, "memory", nil)
	testBasic(t, kv)
}

func TestLRU(t *testing.T) {
	kv := newStore(t, "lru", Option{"size": 20480})
	testBasic(t, kv)
}

func TestBadger(t *testing.T) {
	kv := newStore(t, "badger", Option{"path": filepath.Join(t.TempDir(), "badger")})
	testBasic(t, kv)
}

func TestBuntDB(t *testing.T) {
	kv := newStore(t, "buntdb", Option{"path": filepath.Join(t.TempDir(), "vars.db")})
	testBasic(t, kv)
}

func TestBuntDBMemory(t *testing.T) {
	kv := newStore(t, "buntdb", nil)
	testBasic(t, kv)
}

func TestRedis(t *testing.T) {
	host := os.Getenv("BLOCKS_TEST_REDIS_HOST")
	if host == "" {
		t.Skip("BLOCKS_TEST_REDIS_HOST is not set")
	}
	kv := newStore(t, "redis", Option{"host": host, "prefix": "blocks-test:"})
	testBasic(t, kv)
}

func TestMongo(t *testing.T) {
	uri := os.Getenv("BLOCKS_TEST_MONGO_URI")
	if uri == "" {
		t.Skip("BLOCKS_TEST_MONGO_URI is not set")
	}
	kv := newStore(t, "mongo", Option{"uri": uri, "collection": "blocks_test"})
	testBasic(t, kv)
}

func TestCached(t *testing.T) {
	backend := newStore(t, "memory", nil)
	cached, err := NewCached(backend, 16)
	require.NoError(t, err)
	testBasic(t, cached)

	backend.Set("direct", "x", 0)
	value, ok := cached.Get("direct")
	assert.True(t, ok)
	assert.Equal(t, "x", value)

	cached.Del("direct")
	assert.False(t, backend.Has("direct"))
}

func TestUnsupported(t *testing.T) {
	_, err := New("cassandra", nil)
	assert.Error(t, err)

	_, err = New("badger", nil)
	assert.Error(t, err)
}

func testBasic(t *testing.T, kv Store) {
	kv.Clear()
	require.NoError(t, kv.Set("key1", "bar", 0))
	require.NoError(t, kv.Set("key2", 1024, 0))
	require.NoError(t, kv.Set("key3", 0.618, 0))

	value, ok := kv.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "bar", value)

	value, ok = kv.Get("key2")
	assert.True(t, ok)
	assert.Equal(t, 1024, any.Of(value).CInt())

	kv.Set("key1", "foo", 0)
	value, ok = kv.Get("key1")
	assert.True(t, ok)
	assert.Equal(t, "foo", value)
	assert.True(t, kv.Has("key1"))

	kv.Del("key1")
	_, ok = kv.Get("key1")
	assert.False(t, ok)
	assert.False(t, kv.Has("key1"))
	assert.Equal(t, 2, kv.Len())

	keys := kv.Keys()
	sort.Strings(keys)
	assert.Equal(t, []string{"key2", "key3"}, keys)

	kv.Clear()
	assert.Equal(t, 0, kv.Len())
}

func newStore(t *testing.T, driver string, option Option) Store {
	kv, err := New(driver, option)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { kv.Close() })
	return kv
}
