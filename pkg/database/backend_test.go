package database

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/PancyGuardGo/pkg/config"
)

// setupTestRedis creates a miniredis instance for testing
func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return client, mr
}

// exerciseBackend checks the contract every backend shares.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	data, err := b.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, data, "absent snapshot should load as nil")

	require.NoError(t, b.Save(ctx, []byte(`{"1":{}}`)))
	data, err = b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{"1":{}}`, string(data))

	require.NoError(t, b.Save(ctx, []byte(`{}`)))
	data, err = b.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(data))

	assert.NoError(t, b.Ping(ctx))
}

func TestFileBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "guild-configs.json")
	b := NewFileBackend(path)
	defer b.Close()

	assert.Equal(t, "file", b.Name())
	exerciseBackend(t, b)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files should not be left behind")
}

func TestFileBackendSaveHonoursContext(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "cfg.json"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, b.Save(ctx, []byte(`{}`)))
}

func TestBoltBackend(t *testing.T) {
	b, err := OpenBolt(filepath.Join(t.TempDir(), "data.db"))
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, "bolt", b.Name())
	exerciseBackend(t, b)
}

func TestBoltBackendSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.db")

	b, err := OpenBolt(path)
	require.NoError(t, err)
	require.NoError(t, b.Save(context.Background(), []byte(`{"42":{}}`)))
	require.NoError(t, b.Close())

	b, err = OpenBolt(path)
	require.NoError(t, err)
	defer b.Close()

	data, err := b.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, `{"42":{}}`, string(data))
}

func TestRedisBackend(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()

	b := NewRedisBackend(client, "test:configs")
	defer b.Close()

	assert.Equal(t, "redis", b.Name())
	exerciseBackend(t, b)

	stored, err := mr.Get("test:configs")
	require.NoError(t, err)
	assert.Equal(t, `{}`, stored)
}

func TestRedisBackendUnavailable(t *testing.T) {
	client, mr := setupTestRedis(t)
	b := NewRedisBackend(client, "")
	defer b.Close()

	mr.Close()

	_, err := b.Load(context.Background())
	assert.Error(t, err)
	assert.Error(t, b.Save(context.Background(), []byte(`{}`)))
}

func TestOpenRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	b, err := OpenRedis(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, "pancyguard:guild-configs", b.key)
}

func TestMongoBackend(t *testing.T) {
	url := os.Getenv("MONGODB_TEST_URL")
	if url == "" {
		t.Skip("MONGODB_TEST_URL not set")
	}

	b, err := ConnectMongo(context.Background(), url, "pancyguard_test")
	require.NoError(t, err)
	defer b.Close()

	_, err = b.col.DeleteMany(context.Background(), map[string]any{})
	require.NoError(t, err)
	exerciseBackend(t, b)
}

func TestFromConfig(t *testing.T) {
	dir := t.TempDir()

	b, err := FromConfig(context.Background(), &config.Config{
		StoreBackend: config.BackendFile,
		DataPath:     filepath.Join(dir, "cfg.json"),
	})
	require.NoError(t, err)
	assert.Equal(t, "file", b.Name())

	b, err = FromConfig(context.Background(), &config.Config{
		StoreBackend: config.BackendBolt,
		BoltPath:     filepath.Join(dir, "cfg.db"),
	})
	require.NoError(t, err)
	assert.Equal(t, "bolt", b.Name())
	b.Close()

	_, err = FromConfig(context.Background(), &config.Config{StoreBackend: "sqlite"})
	assert.Error(t, err)
}

func TestStatus(t *testing.T) {
	b := NewFileBackend(filepath.Join(t.TempDir(), "cfg.json"))

	label, _, ok := Status(context.Background(), b)
	assert.True(t, ok)
	assert.Equal(t, "🟢 | En linea", label)
}
