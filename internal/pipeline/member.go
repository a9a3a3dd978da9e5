package pipeline

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/effects"
	"github.com/PancyStudios/PancyGuardGo/pkg/models"
)

// MemberEvent is a member joining or leaving a guild.
type MemberEvent struct {
	GuildID     string
	GuildName   string
	MemberCount int

	UserID    string
	Username  string
	Tag       string
	AvatarURL string
	RoleIDs   []string
	// JoinedAt is only known on leave.
	JoinedAt time.Time
}

// HandleMemberJoin sends the welcome message, assigns the auto-role and sends the welcome DM.
func (p *Pipeline) HandleMemberJoin(ctx context.Context, ev MemberEvent) error {
	cfg, err := p.store.Get(ctx, ev.GuildID)
	if err != nil {
		return err
	}
	return p.exec.Execute(ctx, ev.GuildID, WelcomeEffects(ev, cfg, p.now()))
}

// HandleMemberLeave sends the goodbye message.
func (p *Pipeline) HandleMemberLeave(ctx context.Context, ev MemberEvent) error {
	cfg, err := p.store.Get(ctx, ev.GuildID)
	if err != nil {
		return err
	}
	return p.exec.Execute(ctx, ev.GuildID, GoodbyeEffects(ev, cfg, p.now()))
}

// WelcomeEffects builds the join effects. Nothing happens without a welcome channel.
func WelcomeEffects(ev MemberEvent, cfg *models.GuildConfig, now time.Time) []effects.Effect {
	w := cfg.Welcome
	if !cfg.Features.Welcome || !w.Enabled || w.ChannelID == "" {
		return nil
	}

	text := orDefault(w.Message, models.DefaultGuildConfig().Welcome.Message)
	text = strings.NewReplacer(
		"{user}", "<@"+ev.UserID+">",
		"{username}", ev.Username,
		"{tag}", ev.Tag,
		"{server}", ev.GuildName,
		"{membercount}", strconv.Itoa(ev.MemberCount),
	).Replace(text)

	var list []effects.Effect
	if w.EmbedEnabled {
		created := "Desconocida"
		if ts, err := discordgo.SnowflakeTimestamp(ev.UserID); err == nil {
			created = fmt.Sprintf("<t:%d:R>", ts.Unix())
		}
		embed := memberEmbed(ev, text, orDefault(w.EmbedTitle, "👋 Welcome!"), parseColor(w.EmbedColor, 0x00FF00), w.EmbedImage, now)
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Miembros", Value: strconv.Itoa(ev.MemberCount), Inline: true},
			{Name: "Cuenta creada", Value: created, Inline: true},
		}
		list = append(list, effects.SendEmbed(w.ChannelID, embed))
	} else {
		list = append(list, effects.SendMessage(w.ChannelID, text))
	}

	if w.AutoRole != "" && !slices.Contains(ev.RoleIDs, w.AutoRole) {
		list = append(list, effects.GrantRole(ev.UserID, w.AutoRole, "Auto-rol de bienvenida"))
		if cfg.Moderation.LogActions && cfg.LogChannel != "" {
			list = append(list, effects.AuditLog(cfg.LogChannel, fmt.Sprintf(
				"🎯 **Auto-rol asignado:** <@&%s> a %s (%s) al unirse", w.AutoRole, ev.Tag, ev.UserID,
			)).Then())
		}
	}

	if w.DMEnabled && w.DMMessage != "" {
		dm := strings.NewReplacer("{user}", ev.Username, "{server}", ev.GuildName).Replace(w.DMMessage)
		list = append(list, effects.NotifyUser(ev.UserID, dm))
	}
	return list
}

// GoodbyeEffects builds the leave effects.
func GoodbyeEffects(ev MemberEvent, cfg *models.GuildConfig, now time.Time) []effects.Effect {
	g := cfg.Goodbye
	if !cfg.Features.Goodbye || !g.Enabled || g.ChannelID == "" {
		return nil
	}

	text := orDefault(g.Message, models.DefaultGuildConfig().Goodbye.Message)
	text = strings.NewReplacer(
		"{user}", ev.Tag,
		"{username}", ev.Username,
		"{tag}", ev.Tag,
		"{server}", ev.GuildName,
		"{membercount}", strconv.Itoa(ev.MemberCount),
	).Replace(text)

	if !g.EmbedEnabled {
		return []effects.Effect{effects.SendMessage(g.ChannelID, text)}
	}

	joined := "Desconocido"
	if !ev.JoinedAt.IsZero() {
		joined = fmt.Sprintf("<t:%d:R>", ev.JoinedAt.Unix())
	}
	embed := memberEmbed(ev, text, orDefault(g.EmbedTitle, "👋 Goodbye!"), parseColor(g.EmbedColor, 0xFF0000), g.EmbedImage, now)
	embed.Fields = []*discordgo.MessageEmbedField{
		{Name: "Miembros", Value: strconv.Itoa(ev.MemberCount), Inline: true},
		{Name: "Se unió", Value: joined, Inline: true},
	}
	return []effects.Effect{effects.SendEmbed(g.ChannelID, embed)}
}

func memberEmbed(ev MemberEvent, text, title string, color int, image string, now time.Time) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: text,
		Color:       color,
		Footer:      &discordgo.MessageEmbedFooter{Text: "ID: " + ev.UserID},
		Timestamp:   now.Format(time.RFC3339),
	}
	if ev.AvatarURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: ev.AvatarURL}
	}
	if image != "" {
		embed.Image = &discordgo.MessageEmbedImage{URL: image}
	}
	return embed
}

// parseColor reads "#RRGGBB" or "RRGGBB", falling back to def.
func parseColor(s string, def int) int {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return def
	}
	n, err := strconv.ParseInt(s, 16, 32)
	if err != nil {
		return def
	}
	return int(n)
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
