// Package mqtt connects the bot to an MQTT broker and serves requests on
// pancy/request/<name>, answering on pancy/response/<name>/<correlationId>.
package mqtt

import (
	"fmt"
	"strings"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/PancyStudios/PancyGuardGo/pkg/errors"
	"github.com/PancyStudios/PancyGuardGo/pkg/logger"
)

const (
	requestPrefix  = "pancy/request/"
	responsePrefix = "pancy/response/"

	connectWait    = 5 * time.Second
	disconnectWait = 250 // ms
)

// MqttRequest is the envelope published by a requester.
type MqttRequest struct {
	CorrelationID string      `json:"correlationId"`
	Payload       interface{} `json:"payload,omitempty"`
}

// MqttResponse is published back to the requester's response topic.
type MqttResponse struct {
	CorrelationID string      `json:"correlationId"`
	Data          interface{} `json:"data"`
	Error         string      `json:"error,omitempty"`
}

// RequestHandler answers one request. The payload carries the request topic under "_topic".
type RequestHandler func(payload map[string]interface{}) (interface{}, error)

// MqttCommunicator is the broker connection used by the config bridge.
type MqttCommunicator struct {
	client paho.Client
}

var (
	communicator *MqttCommunicator
	once         sync.Once
)

// Init connects the global communicator once.
func Init(host, port, username, password, clientID string) *MqttCommunicator {
	once.Do(func() {
		communicator = NewMqttCommunicator(host, port, username, password, clientID)
	})
	return communicator
}

// NewMqttCommunicator connects to tcp://host:port. The connection keeps
// retrying in the background when the broker is down.
func NewMqttCommunicator(host, port, username, password, clientID string) *MqttCommunicator {
	// Several instances may share clientID; the broker needs unique ones.
	sessionID := clientID + "_" + uuid.NewString()

	opts := paho.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%s", host, port)).
		SetClientID(sessionID).
		SetUsername(username).
		SetPassword(password).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(connectWait).
		SetOnConnectHandler(func(paho.Client) {
			logger.Success(fmt.Sprintf("Conectado al broker MQTT como %s", clientID), "MQTT")
		}).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.Error(fmt.Sprintf("Conexión MQTT perdida: %v", err), "MQTT")
		})

	mc := &MqttCommunicator{client: paho.NewClient(opts)}

	// With ConnectRetry the token only completes once connected.
	token := mc.client.Connect()
	switch {
	case !token.WaitTimeout(connectWait):
		logger.Warn("El broker MQTT no responde, reintentando en segundo plano", "MQTT")
	case token.Error() != nil:
		logger.Error(fmt.Sprintf("Error de conexión MQTT: %v", token.Error()), "MQTT")
	}
	return mc
}

// Destroy closes the connection.
func (mc *MqttCommunicator) Destroy() {
	if !mc.client.IsConnected() {
		logger.Warn("El cliente MQTT no estaba conectado, no se necesita cerrar.", "MQTT")
		return
	}
	mc.client.Disconnect(disconnectWait)
	logger.System("Conexión MQTT cerrada exitosamente.", "MQTT")
}

// Publish encodes payload as JSON and publishes it with QoS 0.
func (mc *MqttCommunicator) Publish(topic string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding payload for %s: %w", topic, err)
	}
	return wait(mc.client.Publish(topic, 0, false, data))
}

// On serves requests published to pancy/request/<requestTopic>.
func (mc *MqttCommunicator) On(requestTopic string, callback RequestHandler) {
	topic := requestPrefix + requestTopic
	err := wait(mc.client.Subscribe(topic, 0, func(_ paho.Client, msg paho.Message) {
		defer errors.RecoverMiddleware()()

		responseTopic, response, ok := handleRequest(msg.Topic(), msg.Payload(), callback)
		if !ok {
			return
		}
		if err := mc.Publish(responseTopic, response); err != nil {
			logger.Error(fmt.Sprintf("Error publicando respuesta en %s: %v", responseTopic, err), "MQTT")
		}
	}))
	if err != nil {
		logger.Error(fmt.Sprintf("Error suscribiendo a %s: %v", topic, err), "MQTT")
	}
}

// Subscribe delivers raw messages matching topic to handler.
func (mc *MqttCommunicator) Subscribe(topic string, handler func(topic string, payload []byte)) error {
	return wait(mc.client.Subscribe(topic, 0, func(_ paho.Client, msg paho.Message) {
		defer errors.RecoverMiddleware()()
		handler(msg.Topic(), msg.Payload())
	}))
}

func wait(token paho.Token) error {
	token.Wait()
	return token.Error()
}

// handleRequest decodes a request, runs callback and builds the response.
// ok is false when the payload is not a request.
func handleRequest(receivedTopic string, raw []byte, callback RequestHandler) (string, MqttResponse, bool) {
	var req MqttRequest
	if err := json.Unmarshal(raw, &req); err != nil || req.CorrelationID == "" {
		logger.Error(fmt.Sprintf("Petición MQTT inválida en %s: %v", receivedTopic, err), "MQTT")
		return "", MqttResponse{}, false
	}

	name := strings.TrimPrefix(receivedTopic, requestPrefix)
	payload, _ := req.Payload.(map[string]interface{})
	if payload == nil {
		payload = make(map[string]interface{})
	}
	payload["_topic"] = name

	resp := MqttResponse{CorrelationID: req.CorrelationID}
	if data, err := callback(payload); err != nil {
		resp.Error = err.Error()
	} else {
		resp.Data = data
	}
	return responsePrefix + name + "/" + req.CorrelationID, resp, true
}

// topicMatch reports whether topic matches pattern. '+' matches one level and a
// trailing '#' matches any remaining levels, including none.
func topicMatch(pattern, topic string) bool {
	want := strings.Split(pattern, "/")
	got := strings.Split(topic, "/")
	for i, level := range want {
		if level == "#" {
			return true
		}
		if i >= len(got) || (level != "+" && level != got[i]) {
			return false
		}
	}
	return len(want) == len(got)
}
