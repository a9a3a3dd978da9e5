// Package events provides a registry for organizing bot events.
// Events are organized by category (ready, guild, member, message, shard).
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyGuardGo/internal/pipeline"
	"github.com/PancyStudios/PancyGuardGo/pkg/discord"
	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

// eventTimeout bounds the store and platform work done for one event.
const eventTimeout = 15 * time.Second

// Options tunes the event handlers.
type Options struct {
	// PurgeOnGuildLeave deletes a guild's document when the bot is removed from it.
	PurgeOnGuildLeave bool
}

// RegisterAll registers all events with the Discord client
func RegisterAll(client *discord.ExtendedClient, pipe *pipeline.Pipeline, opts Options) {
	logger.System("📋 Registrando eventos del bot...", "Events")

	// Ready event (bot startup)
	RegisterReadyEvent(client)

	// Guild events (server join/leave)
	RegisterGuildEvents(client, opts)

	// Member events: welcome, auto-role, goodbye
	RegisterMemberEvents(client, pipe)

	// Message events: automod and leveling
	RegisterMessageEvents(client, pipe)

	// Gateway connection state
	RegisterShardEvents(client)

	logger.Success("✅ Todos los eventos registrados correctamente", "Events")
}

func eventContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), eventTimeout)
}

// report logs a handler failure. Effect failures were already logged by the
// executor, so only storage problems reach the error handler.
func report(err error, what, prefix string) {
	if err == nil {
		return
	}
	if errors.Is(err, errors.ErrStorage) {
		errors.Handle(fmt.Errorf("%s: %w", what, err), prefix)
		return
	}
	logger.Debug(fmt.Sprintf("%s: %v", what, err), prefix)
}
