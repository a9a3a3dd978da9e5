package mqtt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/guildconfig"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

// Request topics served by the bridge, relative to pancy/request/.
const (
	TopicConfigGet    = "config.get"
	TopicConfigPatch  = "config.patch"
	TopicConfigDelete = "config.delete"
)

// setPattern receives fire-and-forget patches: pancy/guild/<id>/config/set.
const setPattern = "pancy/guild/+/config/set"

// ConfigTopic is where the changes of guildID are published.
func ConfigTopic(guildID string) string {
	return "pancy/guild/" + guildID + "/config"
}

// Transport is the part of *MqttCommunicator the bridge uses.
type Transport interface {
	On(requestTopic string, callback RequestHandler)
	Publish(topic string, payload interface{}) error
	Subscribe(topic string, handler func(topic string, payload []byte)) error
}

var _ Transport = (*MqttCommunicator)(nil)

// Bridge exposes the guild config store over MQTT and publishes its changes.
type Bridge struct {
	transport Transport
	store     *guildconfig.Store
	timeout   time.Duration

	events chan guildconfig.Change
	done   chan struct{}
	unsub  func()
}

// NewBridge creates a Bridge. Start wires it.
func NewBridge(transport Transport, store *guildconfig.Store) *Bridge {
	return &Bridge{
		transport: transport,
		store:     store,
		timeout:   10 * time.Second,
		events:    make(chan guildconfig.Change, 64),
		done:      make(chan struct{}),
	}
}

// Start registers the request handlers and begins publishing changes.
func (b *Bridge) Start() error {
	b.transport.On(TopicConfigGet, b.handleGet)
	b.transport.On(TopicConfigPatch, b.handlePatch)
	b.transport.On(TopicConfigDelete, b.handleDelete)

	if err := b.transport.Subscribe(setPattern, b.handleSet); err != nil {
		return fmt.Errorf("subscribing %s: %w", setPattern, err)
	}

	b.unsub = b.store.Subscribe(b.enqueue)
	errors.Go(b.publishLoop)

	logger.Info("Puente MQTT de configuración activo", "MQTT")
	return nil
}

// Stop stops publishing changes.
func (b *Bridge) Stop() {
	if b.unsub != nil {
		b.unsub()
		b.unsub = nil
		close(b.done)
	}
}

// enqueue runs under the guild lock, so it never blocks.
func (b *Bridge) enqueue(c guildconfig.Change) {
	select {
	case b.events <- c:
	default:
		logger.Warn(fmt.Sprintf("Cola MQTT llena, cambio de %s descartado", c.GuildID), "MQTT")
	}
}

func (b *Bridge) publishLoop() {
	for {
		select {
		case <-b.done:
			return
		case c := <-b.events:
			if err := b.transport.Publish(ConfigTopic(c.GuildID), c); err != nil {
				logger.Warn(fmt.Sprintf("No se pudo publicar el cambio de %s: %v", c.GuildID, err), "MQTT")
			}
		}
	}
}

func (b *Bridge) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), b.timeout)
}

func guildIDOf(payload map[string]interface{}) (string, error) {
	id, _ := payload["guildId"].(string)
	if id == "" {
		return "", fmt.Errorf("%w: guildId is required", guildconfig.ErrInvalidPatch)
	}
	return id, nil
}

func (b *Bridge) handleGet(payload map[string]interface{}) (interface{}, error) {
	guildID, err := guildIDOf(payload)
	if err != nil {
		return nil, err
	}
	ctx, cancel := b.context()
	defer cancel()
	return b.store.Get(ctx, guildID)
}

// decodePatch converts a request payload into a PatchRequest.
func decodePatch(payload map[string]interface{}) (guildconfig.PatchRequest, error) {
	var req guildconfig.PatchRequest
	delete(payload, "_topic")
	data, err := json.Marshal(payload)
	if err != nil {
		return req, fmt.Errorf("%w: %v", guildconfig.ErrInvalidPatch, err)
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, fmt.Errorf("%w: %v", guildconfig.ErrInvalidPatch, err)
	}
	return req, nil
}

func (b *Bridge) handlePatch(payload map[string]interface{}) (interface{}, error) {
	req, err := decodePatch(payload)
	if err != nil {
		return nil, err
	}
	ctx, cancel := b.context()
	defer cancel()

	cfg, err := b.store.Apply(ctx, req)
	if err != nil {
		return nil, err
	}
	logger.Info(fmt.Sprintf("MQTT actualizó la configuración de %s", req.GuildID), "MQTT")
	return cfg, nil
}

func (b *Bridge) handleDelete(payload map[string]interface{}) (interface{}, error) {
	guildID, err := guildIDOf(payload)
	if err != nil {
		return nil, err
	}
	ctx, cancel := b.context()
	defer cancel()

	if err := b.store.Delete(ctx, guildID); err != nil {
		return nil, err
	}
	return map[string]bool{"success": true}, nil
}

// handleSet applies a patch published to pancy/guild/<id>/config/set.
func (b *Bridge) handleSet(topic string, raw []byte) {
	if !topicMatch(setPattern, topic) {
		return
	}
	guildID := strings.Split(topic, "/")[2]

	var req guildconfig.PatchRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		logger.Warn(fmt.Sprintf("Payload inválido en %s: %v", topic, err), "MQTT")
		return
	}
	req.GuildID = guildID

	ctx, cancel := b.context()
	defer cancel()
	_, err := b.store.Apply(ctx, req)
	switch {
	case err == nil:
	case errors.Is(err, guildconfig.ErrInvalidPatch), errors.Is(err, guildconfig.ErrUnknownSection):
		logger.Warn(fmt.Sprintf("Patch rechazado en %s: %v", topic, err), "MQTT")
	default:
		errors.Handle(fmt.Errorf("%s: %w", topic, err), "MQTT")
	}
}
