package web

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/guildconfig"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

type fakeBot struct {
	ready  bool
	guilds []*discordgo.Guild
	sent   []string
}

func (b *fakeBot) IsReady() bool               { return b.ready }
func (b *fakeBot) Self() *discordgo.User       { return &discordgo.User{ID: "bot", Username: "PancyGuard"} }
func (b *fakeBot) Guilds() []*discordgo.Guild  { return b.guilds }
func (b *fakeBot) Uptime() time.Duration       { return time.Minute }

func (b *fakeBot) Guild(guildID string) (*discordgo.Guild, error) {
	for _, g := range b.guilds {
		if g.ID == guildID {
			return g, nil
		}
	}
	return nil, errors.NotFound("guild " + guildID)
}

func (b *fakeBot) SendMessage(guildID, channelID, content string) error {
	if channelID != "general" {
		return errors.NotFound("channel " + channelID)
	}
	b.sent = append(b.sent, content)
	return nil
}

type testAPI struct {
	server *Server
	store  *guildconfig.Store
	bot    *fakeBot
	tokens *TokenManager
	token  string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := guildconfig.Open(context.Background(), database.NewFileBackend(filepath.Join(t.TempDir(), "guilds.json")))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	bot := &fakeBot{ready: true, guilds: []*discordgo.Guild{
		{ID: "g1", Name: "Uno", MemberCount: 10, Channels: []*discordgo.Channel{{ID: "general", Name: "general", Type: discordgo.ChannelTypeGuildText}}},
		{ID: "g2", Name: "Dos", MemberCount: 20},
	}}
	tokens := NewTokenManager("secret", time.Hour)
	token, err := tokens.GenerateToken("tester")
	require.NoError(t, err)

	s := NewServer(Options{})
	SetupAPIRoutes(s, &API{Store: store, Bot: bot, Tokens: tokens})
	return &testAPI{server: s, store: store, bot: bot, tokens: tokens, token: token}
}

func (a *testAPI) do(method, path string, body any) *httptest.ResponseRecorder {
	return a.doWithToken(a.token, method, path, body)
}

func (a *testAPI) doWithToken(token, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else {
			_ = json.NewEncoder(&buf).Encode(body)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.server.Engine().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPublicEndpoints(t *testing.T) {
	a := newTestAPI(t)

	w := a.doWithToken("", http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = a.doWithToken("", http.MethodGet, "/api/bot/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	status := decode[map[string]any](t, w)
	bot := status["bot"].(map[string]any)
	assert.Equal(t, true, bot["online"])
	assert.EqualValues(t, 2, bot["guilds"])
	db := status["database"].(map[string]any)
	assert.Equal(t, "file", db["backend"])
	assert.Equal(t, true, db["isOnline"])
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	a := newTestAPI(t)

	assert.Equal(t, http.StatusUnauthorized, a.doWithToken("", http.MethodGet, "/api/bot/guilds", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, a.doWithToken("garbage", http.MethodGet, "/api/bot/guilds", nil).Code)
	assert.Equal(t, http.StatusOK, a.do(http.MethodGet, "/api/bot/guilds", nil).Code)
}

func TestDisabledDashboard(t *testing.T) {
	s := NewServer(Options{})
	SetupAPIRoutes(s, &API{})

	req := httptest.NewRequest(http.MethodGet, "/api/bot/guilds", nil)
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestScopedToken(t *testing.T) {
	a := newTestAPI(t)
	token, err := a.tokens.GenerateToken("mod", "g1")
	require.NoError(t, err)

	w := a.doWithToken(token, http.MethodGet, "/api/bot/guilds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]map[string]any](t, w), 1)

	assert.Equal(t, http.StatusOK, a.doWithToken(token, http.MethodGet, "/api/bot/guild/g1/config", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.doWithToken(token, http.MethodGet, "/api/bot/guild/g2/config", nil).Code)
	assert.Equal(t, http.StatusForbidden, a.doWithToken(token, http.MethodPost, "/api/bot/config",
		guildconfig.PatchRequest{GuildID: "g2", Fields: map[string]any{"logChannel": "x"}}).Code)
}

func TestGuildDetails(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodGet, "/api/bot/guild/g1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, "Uno", body["name"])
	assert.Len(t, body["channels"], 1)
	assert.False(t, a.store.Exists("g1"), "reading guild details must not create a document")

	assert.Equal(t, http.StatusNotFound, a.do(http.MethodGet, "/api/bot/guild/nope", nil).Code)

	a.bot.ready = false
	assert.Equal(t, http.StatusServiceUnavailable, a.do(http.MethodGet, "/api/bot/guild/g1", nil).Code)
}

func TestConfigLifecycle(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodGet, "/api/bot/guild/g1/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.DefaultGuildConfig(), ptr(decode[models.GuildConfig](t, w)))

	w = a.do(http.MethodPost, "/api/bot/guild/g1/config", map[string]any{"logChannel": "logs"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = a.do(http.MethodPost, "/api/bot/guild/g1/config/moderation", map[string]any{"maxWarnings": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	cfg := a.store.Peek("g1")
	assert.Equal(t, "logs", cfg.LogChannel)
	assert.Equal(t, 5, cfg.Moderation.MaxWarnings)
	assert.True(t, cfg.Moderation.BanEnabled, "sibling keys survive a section patch")

	w = a.do(http.MethodPost, "/api/bot/config", guildconfig.PatchRequest{GuildID: "g1", Section: "features", Fields: map[string]any{"leveling": true}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, a.store.Peek("g1").Features.Leveling)

	w = a.do(http.MethodDelete, "/api/bot/guild/g1/config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, a.store.Exists("g1"))
}

func ptr[T any](v T) *T { return &v }

func TestConfigRejections(t *testing.T) {
	a := newTestAPI(t)

	tests := []struct {
		name string
		path string
		body any
	}{
		{"unknown field", "/api/bot/guild/g1/config", map[string]any{"nope": 1}},
		{"unknown section", "/api/bot/guild/g1/config/logChannel", map[string]any{"x": 1}},
		{"invalid value", "/api/bot/guild/g1/config/moderation", map[string]any{"maxWarnings": 0}},
		{"wrong type", "/api/bot/guild/g1/config/moderation", map[string]any{"banEnabled": "yes"}},
		{"malformed body", "/api/bot/guild/g1/config", "{not json"},
		{"generic without guild", "/api/bot/config", guildconfig.PatchRequest{Fields: map[string]any{"logChannel": "x"}}},
		{"generic without fields", "/api/bot/config", guildconfig.PatchRequest{GuildID: "g1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := a.do(http.MethodPost, tt.path, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Equal(t, "", a.store.Peek("g1").LogChannel)
}

func TestWarningsEndpoints(t *testing.T) {
	a := newTestAPI(t)
	ctx := context.Background()
	now := time.Now()

	_, _, err := a.store.AddWarning(ctx, "g1", "u1", models.NewWarning("spam", "mod", now))
	require.NoError(t, err)
	_, _, err = a.store.AddWarning(ctx, "g1", "u1", models.NewWarning("flood", "mod", now))
	require.NoError(t, err)

	w := a.do(http.MethodGet, "/api/bot/guild/g1/warnings/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Warnings []models.Warning     `json:"warnings"`
		Summary  models.WarningSummary `json:"summary"`
	}](t, w)
	assert.Len(t, body.Warnings, 2)
	assert.Equal(t, 2, body.Summary.Total)
	assert.Equal(t, "flood", body.Summary.Recent[0].Reason)

	w = a.do(http.MethodDelete, "/api/bot/guild/g1/warnings/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 2, decode[map[string]any](t, w)["removed"])

	w = a.do(http.MethodGet, "/api/bot/guild/g1/warnings/u1", nil)
	assert.Contains(t, w.Body.String(), `"warnings":[]`)
}

func TestLeaderboardEndpoint(t *testing.T) {
	a := newTestAPI(t)
	_, err := a.store.Update(context.Background(), "g1", func(c *models.GuildConfig) error {
		c.Leveling.Users["a"] = models.LevelingUser{XP: 500, Level: 2}
		c.Leveling.Users["b"] = models.LevelingUser{XP: 900, Level: 3}
		c.Leveling.Users["c"] = models.LevelingUser{XP: 100, Level: 1}
		return nil
	})
	require.NoError(t, err)

	w := a.do(http.MethodGet, "/api/bot/guild/g1/leaderboard?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	entries := decode[[]map[string]any](t, w)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0]["userId"])

	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/bot/guild/g1/leaderboard?limit=0", nil).Code)
	assert.Equal(t, http.StatusBadRequest, a.do(http.MethodGet, "/api/bot/guild/g1/leaderboard?limit=abc", nil).Code)
}

func TestMessageEndpoint(t *testing.T) {
	a := newTestAPI(t)

	w := a.do(http.MethodPost, "/api/bot/guild/g1/message", map[string]string{"channelId": "general", "message": "hola"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, []string{"hola"}, a.bot.sent)

	w = a.do(http.MethodPost, "/api/bot/guild/g1/message", map[string]string{"channelId": "other", "message": "hola"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(http.MethodPost, "/api/bot/guild/g1/message", map[string]string{"channelId": "general", "message": "  "})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusServiceUnavailable, statusCode(errors.Storage("save", errors.New("disk"))))
	assert.Equal(t, http.StatusBadGateway, statusCode(errors.Platform("send", errors.New("403"))))
	assert.Equal(t, http.StatusForbidden, statusCode(errors.PermissionDenied("x")))
	assert.Equal(t, http.StatusInternalServerError, statusCode(errors.New("other")))
}

func TestEventsStream(t *testing.T) {
	a := newTestAPI(t)
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	a.store.Subscribe(hub.Publish)

	s := NewServer(Options{})
	SetupAPIRoutes(s, &API{Store: a.store, Bot: a.bot, Tokens: a.tokens, Hub: hub})
	srv := httptest.NewServer(s.Engine())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/bot/guild/g1/events?token=" + a.token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients("g1") == 1 }, 2*time.Second, 10*time.Millisecond)

	_, err = a.store.Patch(context.Background(), "g2", map[string]any{"logChannel": "ignored"})
	require.NoError(t, err)
	_, err = a.store.Patch(context.Background(), "g1", map[string]any{"logChannel": "logs"})
	require.NoError(t, err)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var kinds []guildconfig.ChangeKind
	for len(kinds) < 2 {
		_, data, err := conn.ReadMessage()
		require.NoError(t, err)
		var change guildconfig.Change
		require.NoError(t, json.Unmarshal(data, &change))
		assert.Equal(t, "g1", change.GuildID)
		kinds = append(kinds, change.Kind)
	}
	assert.Equal(t, []guildconfig.ChangeKind{guildconfig.ChangeCreated, guildconfig.ChangePatched}, kinds)

	conn.Close()
	require.Eventually(t, func() bool { return hub.Clients("g1") == 0 }, 2*time.Second, 10*time.Millisecond)
}
