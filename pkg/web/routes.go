package web

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/PancyStudios/PancyGuardGo/pkg/config"
	"github.com/PancyStudios/PancyGuardGo/pkg/database"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/guildconfig"
	"github.com/PancyStudios/PancyGuardGo/pkg/leveling"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
	"github.com/PancyStudios/PancyGuardGo/pkg/sysinfo"
)

const maxBody = 1 << 20

// API exposes the guild config store to the dashboard.
type API struct {
	Store  *guildconfig.Store
	Bot    Bot
	Hub    *Hub
	Tokens *TokenManager
}

// SetupAPIRoutes sets up the API routes
func SetupAPIRoutes(s *Server, a *API) {
	api := s.Group("/api")
	api.GET("/health", healthHandler)
	api.GET("/bot/status", a.statusHandler)

	bot := api.Group("/bot", RequireToken(a.Tokens))
	bot.GET("/guilds", a.guildsHandler)
	bot.POST("/config", a.genericPatchHandler)

	guild := bot.Group("/guild/:guildId", requireGuild())
	guild.GET("", a.guildHandler)
	guild.GET("/config", a.getConfigHandler)
	guild.POST("/config", a.patchConfigHandler)
	guild.POST("/config/:section", a.patchSectionHandler)
	guild.DELETE("/config", a.deleteConfigHandler)
	guild.GET("/warnings/:userId", a.warningsHandler)
	guild.DELETE("/warnings/:userId", a.clearWarningsHandler)
	guild.GET("/leaderboard", a.leaderboardHandler)
	guild.POST("/message", a.messageHandler)
	guild.GET("/events", a.eventsHandler)
}

// statusCode maps the error taxonomy onto HTTP.
func statusCode(err error) int {
	switch {
	case errors.Is(err, guildconfig.ErrInvalidPatch), errors.Is(err, guildconfig.ErrUnknownSection), errors.Is(err, models.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, errors.ErrStorage):
		return http.StatusServiceUnavailable
	case errors.Is(err, errors.ErrPlatformRejected):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	code := statusCode(err)
	if code >= http.StatusInternalServerError {
		errors.Handle(err, "WebServer")
	}
	c.AbortWithStatusJSON(code, gin.H{"error": err.Error()})
}

// bindJSON decodes the body with go-json.
func bindJSON(c *gin.Context, v any) error {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%w: %v", guildconfig.ErrInvalidPatch, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", guildconfig.ErrInvalidPatch, err)
	}
	return nil
}

// healthHandler returns a simple health check response
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "PancyGuard Go is running",
	})
}

// statusHandler returns the bot, store and host status
func (a *API) statusHandler(c *gin.Context) {
	resp := gin.H{
		"status":  "ok",
		"version": config.Version,
		"system":  sysinfo.Collect(),
	}

	bot := gin.H{"online": false}
	if a.Bot != nil {
		bot["online"] = a.Bot.IsReady()
		bot["guilds"] = len(a.Bot.Guilds())
		bot["uptime"] = sysinfo.FormatDuration(a.Bot.Uptime())
		if u := a.Bot.Self(); u != nil {
			bot["id"] = u.ID
			bot["username"] = u.Username
		}
	}
	resp["bot"] = bot

	if a.Store != nil {
		label, latency, ok := database.Status(c.Request.Context(), a.Store.Backend())
		resp["database"] = gin.H{
			"backend":   a.Store.Backend().Name(),
			"status":    label,
			"isOnline":  ok,
			"latencyMs": latency.Milliseconds(),
			"guilds":    a.Store.Len(),
		}
	}
	c.JSON(http.StatusOK, resp)
}

func guildSummary(g *discordgo.Guild, botID string) gin.H {
	return gin.H{
		"id":          g.ID,
		"name":        g.Name,
		"memberCount": g.MemberCount,
		"icon":        g.IconURL("256"),
		"owner":       g.OwnerID == botID,
	}
}

func (a *API) botReady(c *gin.Context) bool {
	if a.Bot == nil || !a.Bot.IsReady() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "El bot no está disponible en este momento."})
		return false
	}
	return true
}

func (a *API) botID() string {
	if u := a.Bot.Self(); u != nil {
		return u.ID
	}
	return ""
}

func (a *API) guildsHandler(c *gin.Context) {
	if !a.botReady(c) {
		return
	}
	claims := claimsOf(c)
	out := []gin.H{}
	for _, g := range a.Bot.Guilds() {
		if claims.CanManage(g.ID) {
			out = append(out, guildSummary(g, a.botID()))
		}
	}
	c.JSON(http.StatusOK, out)
}

func (a *API) guildHandler(c *gin.Context) {
	if !a.botReady(c) {
		return
	}
	g, err := a.Bot.Guild(c.Param("guildId"))
	if err != nil {
		writeError(c, err)
		return
	}

	resp := guildSummary(g, a.botID())
	channels := []gin.H{}
	for _, ch := range g.Channels {
		if ch.Type == discordgo.ChannelTypeGuildText || ch.Type == discordgo.ChannelTypeGuildNews {
			channels = append(channels, gin.H{"id": ch.ID, "name": ch.Name, "type": ch.Type})
		}
	}
	roles := []gin.H{}
	for _, r := range g.Roles {
		roles = append(roles, gin.H{"id": r.ID, "name": r.Name, "color": fmt.Sprintf("#%06X", r.Color), "position": r.Position})
	}
	resp["channels"] = channels
	resp["roles"] = roles
	resp["config"] = a.Store.Peek(g.ID)
	c.JSON(http.StatusOK, resp)
}

func (a *API) getConfigHandler(c *gin.Context) {
	cfg, err := a.Store.Get(c.Request.Context(), c.Param("guildId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cfg)
}

func (a *API) patchConfigHandler(c *gin.Context) {
	var fields map[string]any
	if err := bindJSON(c, &fields); err != nil {
		writeError(c, err)
		return
	}
	a.applyPatch(c, guildconfig.PatchRequest{GuildID: c.Param("guildId"), Fields: fields})
}

func (a *API) patchSectionHandler(c *gin.Context) {
	var fields map[string]any
	if err := bindJSON(c, &fields); err != nil {
		writeError(c, err)
		return
	}
	a.applyPatch(c, guildconfig.PatchRequest{GuildID: c.Param("guildId"), Section: c.Param("section"), Fields: fields})
}

func (a *API) genericPatchHandler(c *gin.Context) {
	var req guildconfig.PatchRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	if !claimsOf(c).CanManage(req.GuildID) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Sin acceso a este servidor"})
		return
	}
	a.applyPatch(c, req)
}

func (a *API) applyPatch(c *gin.Context, req guildconfig.PatchRequest) {
	cfg, err := a.Store.Apply(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	target := "config"
	if req.Section != "" {
		target = req.Section
	}
	logger.Info(fmt.Sprintf("Panel actualizó %s de %s (%s)", target, req.GuildID, claimsOf(c).Subject), "WebServer")
	c.JSON(http.StatusOK, gin.H{"success": true, "config": cfg})
}

func (a *API) deleteConfigHandler(c *gin.Context) {
	guildID := c.Param("guildId")
	if err := a.Store.Delete(c.Request.Context(), guildID); err != nil {
		writeError(c, err)
		return
	}
	logger.Warn(fmt.Sprintf("Panel eliminó la configuración de %s (%s)", guildID, claimsOf(c).Subject), "WebServer")
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) warningsHandler(c *gin.Context) {
	list, err := a.Store.Warnings(c.Request.Context(), c.Param("guildId"), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	if list == nil {
		list = []models.Warning{}
	}
	c.JSON(http.StatusOK, gin.H{
		"warnings": list,
		"summary":  models.SummarizeWarnings(list, time.Now(), 10),
	})
}

func (a *API) clearWarningsHandler(c *gin.Context) {
	removed, err := a.Store.ClearWarnings(c.Request.Context(), c.Param("guildId"), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "removed": removed})
}

func (a *API) leaderboardHandler(c *gin.Context) {
	limit := leveling.DefaultLeaderboardSize
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit debe estar entre 1 y 100"})
			return
		}
		limit = n
	}

	entries, err := a.Store.Leaderboard(c.Request.Context(), c.Param("guildId"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if entries == nil {
		entries = []leveling.Entry{}
	}
	c.JSON(http.StatusOK, entries)
}

func (a *API) messageHandler(c *gin.Context) {
	var req struct {
		ChannelID string `json:"channelId"`
		Message   string `json:"message"`
	}
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.ChannelID == "" || req.Message == "" || len(req.Message) > 2000 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "channelId y message (máx. 2000) son obligatorios"})
		return
	}
	if !a.botReady(c) {
		return
	}
	if err := a.Bot.SendMessage(c.Param("guildId"), req.ChannelID, req.Message); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (a *API) eventsHandler(c *gin.Context) {
	if a.Hub == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Eventos no disponibles"})
		return
	}
	a.Hub.ServeWS(c, c.Param("guildId"))
}
