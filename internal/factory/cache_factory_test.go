package factory

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/attrition-predictor/internal/adapters/cache"
	"github.com/mikey/attrition-predictor/internal/config"
)

func newConfig(values map[string]interface{}) *config.Config {
	v := config.NewEmptyViper()
	for k, val := range values {
		v.Set(k, val)
	}
	return config.NewFromViper(v)
}

func TestCreateResultStore(t *testing.T) {
	f := NewCacheFactory(newConfig(nil), zap.NewNop())
	store, err := f.CreateResultStore()
	require.NoError(t, err)
	mem, ok := store.(*cache.MemoryCache)
	require.True(t, ok)
	mem.Stop()

	f = NewCacheFactory(newConfig(map[string]interface{}{
		"cache.type":        "sqlite",
		"cache.sqlite_path": filepath.Join(t.TempDir(), "nested", "predictions.db"),
	}), zap.NewNop())
	store, err = f.CreateResultStore()
	require.NoError(t, err)
	sqlite, ok := store.(*cache.SQLiteCache)
	require.True(t, ok)
	sqlite.Stop()
}

func TestCreateResultStoreDisabled(t *testing.T) {
	f := NewCacheFactory(newConfig(map[string]interface{}{"cache.enabled": false}), zap.NewNop())
	store, err := f.CreateResultStore()
	require.NoError(t, err)
	assert.Nil(t, store)
	assert.False(t, f.IsCacheEnabled())
}

func TestCreateResultStoreErrors(t *testing.T) {
	f := NewCacheFactory(newConfig(map[string]interface{}{"cache.type": "memcached"}), zap.NewNop())
	_, err := f.CreateResultStore()
	assert.Error(t, err)

	f = NewCacheFactory(newConfig(map[string]interface{}{"cache.ttl": "soon"}), zap.NewNop())
	_, err = f.CreateResultStore()
	assert.Error(t, err)
	_, err = f.GetCacheTTL()
	assert.Error(t, err)

	f = NewCacheFactory(newConfig(map[string]interface{}{"cache.ttl": "0s"}), zap.NewNop())
	_, err = f.CreateResultStore()
	assert.Error(t, err)
}
