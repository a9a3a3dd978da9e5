package discord

import (
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

// EventHandler manages event loading and registration
type EventHandler struct {
	client *ExtendedClient
	events []string
	mu     sync.RWMutex
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(client *ExtendedClient) *EventHandler {
	return &EventHandler{
		client: client,
		events: make([]string, 0),
	}
}

// LoadEvents logs the registered events. Handlers are added programmatically
// through the On* helpers before Start.
func (eh *EventHandler) LoadEvents() error {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	logger.System("Eventos cargados: "+strings.Join(eh.events, ", "), "EventHandler")
	return nil
}

// Registered returns the names of the registered events in order.
func (eh *EventHandler) Registered() []string {
	eh.mu.RLock()
	defer eh.mu.RUnlock()
	return append([]string(nil), eh.events...)
}

// RegisterEvent adds an event handler to the Discord session
func (eh *EventHandler) RegisterEvent(name string, handler interface{}) {
	eh.client.Session.AddHandler(handler)
	eh.mu.Lock()
	eh.events = append(eh.events, name)
	eh.mu.Unlock()
	logger.Debug("Evento '"+name+"' registrado", "EventHandler")
}

// Event handler types for the Discord events the bot consumes

type ReadyHandler func(s *discordgo.Session, r *discordgo.Ready)

type GuildCreateHandler func(s *discordgo.Session, g *discordgo.GuildCreate)

type GuildDeleteHandler func(s *discordgo.Session, g *discordgo.GuildDelete)

type MessageCreateHandler func(s *discordgo.Session, m *discordgo.MessageCreate)

type GuildMemberAddHandler func(s *discordgo.Session, m *discordgo.GuildMemberAdd)

type GuildMemberRemoveHandler func(s *discordgo.Session, m *discordgo.GuildMemberRemove)

type DisconnectHandler func(s *discordgo.Session, d *discordgo.Disconnect)

type ResumedHandler func(s *discordgo.Session, r *discordgo.Resumed)

// Every helper below recovers panics so one bad event never kills the gateway goroutine.

// OnReady registers a ready event handler
func (eh *EventHandler) OnReady(handler ReadyHandler) {
	eh.RegisterEvent("Ready", func(s *discordgo.Session, r *discordgo.Ready) {
		defer errors.RecoverMiddleware()()
		handler(s, r)
	})
}

// OnGuildCreate registers a guild create event handler
func (eh *EventHandler) OnGuildCreate(handler GuildCreateHandler) {
	eh.RegisterEvent("GuildCreate", func(s *discordgo.Session, g *discordgo.GuildCreate) {
		defer errors.RecoverMiddleware()()
		handler(s, g)
	})
}

// OnGuildDelete registers a guild delete event handler
func (eh *EventHandler) OnGuildDelete(handler GuildDeleteHandler) {
	eh.RegisterEvent("GuildDelete", func(s *discordgo.Session, g *discordgo.GuildDelete) {
		defer errors.RecoverMiddleware()()
		handler(s, g)
	})
}

// OnMessageCreate registers a message create event handler
func (eh *EventHandler) OnMessageCreate(handler MessageCreateHandler) {
	eh.RegisterEvent("MessageCreate", func(s *discordgo.Session, m *discordgo.MessageCreate) {
		defer errors.RecoverMiddleware()()
		handler(s, m)
	})
}

// OnGuildMemberAdd registers a guild member add event handler
func (eh *EventHandler) OnGuildMemberAdd(handler GuildMemberAddHandler) {
	eh.RegisterEvent("GuildMemberAdd", func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		defer errors.RecoverMiddleware()()
		handler(s, m)
	})
}

// OnGuildMemberRemove registers a guild member remove event handler
func (eh *EventHandler) OnGuildMemberRemove(handler GuildMemberRemoveHandler) {
	eh.RegisterEvent("GuildMemberRemove", func(s *discordgo.Session, m *discordgo.GuildMemberRemove) {
		defer errors.RecoverMiddleware()()
		handler(s, m)
	})
}

// OnDisconnect registers a disconnect event handler
func (eh *EventHandler) OnDisconnect(handler DisconnectHandler) {
	eh.RegisterEvent("Disconnect", func(s *discordgo.Session, d *discordgo.Disconnect) {
		defer errors.RecoverMiddleware()()
		handler(s, d)
	})
}

// OnResumed registers a resumed event handler
func (eh *EventHandler) OnResumed(handler ResumedHandler) {
	eh.RegisterEvent("Resumed", func(s *discordgo.Session, r *discordgo.Resumed) {
		defer errors.RecoverMiddleware()()
		handler(s, r)
	})
}
