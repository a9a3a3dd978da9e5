package mqtt

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/guildconfig"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

type published struct {
	topic   string
	payload interface{}
}

type fakeTransport struct {
	mu        sync.Mutex
	handlers  map[string]RequestHandler
	subs      map[string]func(string, []byte)
	published []published
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{handlers: map[string]RequestHandler{}, subs: map[string]func(string, []byte){}}
}

func (f *fakeTransport) On(topic string, cb RequestHandler) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[topic] = cb
}

func (f *fakeTransport) Publish(topic string, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, published{topic, payload})
	return nil
}

func (f *fakeTransport) Subscribe(topic string, handler func(string, []byte)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.subs[topic] = handler
	return nil
}

func (f *fakeTransport) topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.published {
		out = append(out, p.topic)
	}
	return out
}

func (f *fakeTransport) request(t *testing.T, topic string, payload map[string]interface{}) (interface{}, error) {
	t.Helper()
	f.mu.Lock()
	cb, ok := f.handlers[topic]
	f.mu.Unlock()
	require.True(t, ok, "no handler for %s", topic)
	return cb(payload)
}

func startBridge(t *testing.T) (*Bridge, *fakeTransport, *guildconfig.Store) {
	t.Helper()
	store, err := guildconfig.Open(context.Background(), database.NewFileBackend(filepath.Join(t.TempDir(), "guilds.json")))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	tr := newFakeTransport()
	b := NewBridge(tr, store)
	require.NoError(t, b.Start())
	t.Cleanup(b.Stop)
	return b, tr, store
}

func TestBridgeConfigGet(t *testing.T) {
	_, tr, _ := startBridge(t)

	data, err := tr.request(t, TopicConfigGet, map[string]interface{}{"guildId": "g1"})
	require.NoError(t, err)
	cfg, ok := data.(*models.GuildConfig)
	require.True(t, ok)
	assert.Equal(t, models.DefaultGuildConfig().Moderation, cfg.Moderation)

	_, err = tr.request(t, TopicConfigGet, map[string]interface{}{})
	assert.ErrorIs(t, err, guildconfig.ErrInvalidPatch)
}

func TestBridgeConfigPatch(t *testing.T) {
	_, tr, store := startBridge(t)

	_, err := tr.request(t, TopicConfigPatch, map[string]interface{}{
		"guildId": "g1",
		"section": "moderation",
		"fields":  map[string]interface{}{"maxWarnings": float64(4)},
		"_topic":  TopicConfigPatch,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, store.Peek("g1").Moderation.MaxWarnings)

	_, err = tr.request(t, TopicConfigPatch, map[string]interface{}{
		"guildId": "g1",
		"section": "nope",
		"fields":  map[string]interface{}{"x": 1},
	})
	assert.ErrorIs(t, err, guildconfig.ErrUnknownSection)
}

func TestBridgeConfigDelete(t *testing.T) {
	_, tr, store := startBridge(t)
	_, err := store.Get(context.Background(), "g1")
	require.NoError(t, err)

	_, err = tr.request(t, TopicConfigDelete, map[string]interface{}{"guildId": "g1"})
	require.NoError(t, err)
	assert.False(t, store.Exists("g1"))
}

func TestBridgePublishesChanges(t *testing.T) {
	_, tr, store := startBridge(t)

	_, err := store.Patch(context.Background(), "g1", map[string]interface{}{"logChannel": "logs"})
	require.NoError(t, err)

	require.Eventually(t, func() bool { return len(tr.topics()) == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{ConfigTopic("g1"), ConfigTopic("g1")}, tr.topics())
}

func TestBridgeSetTopic(t *testing.T) {
	_, tr, store := startBridge(t)
	handler := tr.subs[setPattern]
	require.NotNil(t, handler)

	handler("pancy/guild/g7/config/set", []byte(`{"section":"features","fields":{"automod":true}}`))
	assert.True(t, store.Peek("g7").Features.Automod)

	handler("pancy/guild/g8/config/set", []byte(`not json`))
	handler("pancy/guild/g8/config/set", []byte(`{"section":"features","fields":{}}`))
	assert.False(t, store.Exists("g8"))
}
