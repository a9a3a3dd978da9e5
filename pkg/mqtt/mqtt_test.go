package mqtt

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicMatch(t *testing.T) {
	tests := []struct {
		pattern string
		topic   string
		want    bool
	}{
		{"pancy/guild/+/config", "pancy/guild/123/config", true},
		{"pancy/guild/+/config", "pancy/guild/123/config/set", false},
		{"pancy/guild/+/config", "pancy/guild/config", false},
		{"pancy/#", "pancy/guild/123/config", true},
		{"pancy/#", "pancy", true},
		{"pancy/request/config.get", "pancy/request/config.get", true},
		{"pancy/request/config.get", "pancy/request/config.patch", false},
		{"+/+", "a/b", true},
		{"+/+", "a/b/c", false},
	}
	for _, tt := range tests {
		t.Run(tt.pattern+"|"+tt.topic, func(t *testing.T) {
			assert.Equal(t, tt.want, topicMatch(tt.pattern, tt.topic))
		})
	}
}

func TestHandleRequest(t *testing.T) {
	raw := []byte(`{"correlationId":"abc","payload":{"guildId":"g1"}}`)

	var got map[string]interface{}
	topic, resp, ok := handleRequest("pancy/request/config.get", raw, func(p map[string]interface{}) (interface{}, error) {
		got = p
		return "done", nil
	})

	require.True(t, ok)
	assert.Equal(t, "pancy/response/config.get/abc", topic)
	assert.Equal(t, "abc", resp.CorrelationID)
	assert.Equal(t, "done", resp.Data)
	assert.Empty(t, resp.Error)
	assert.Equal(t, "g1", got["guildId"])
	assert.Equal(t, "config.get", got["_topic"])
}

func TestHandleRequestError(t *testing.T) {
	raw := []byte(`{"correlationId":"abc"}`)

	_, resp, ok := handleRequest("pancy/request/x", raw, func(p map[string]interface{}) (interface{}, error) {
		return nil, assert.AnError
	})
	require.True(t, ok)
	assert.Equal(t, assert.AnError.Error(), resp.Error)

	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"data":null`)
}

func TestHandleRequestRejectsGarbage(t *testing.T) {
	called := false
	cb := func(p map[string]interface{}) (interface{}, error) { called = true; return nil, nil }

	_, _, ok := handleRequest("pancy/request/x", []byte("not json"), cb)
	assert.False(t, ok)
	_, _, ok = handleRequest("pancy/request/x", []byte(`{"payload":{}}`), cb)
	assert.False(t, ok)
	assert.False(t, called)
}

func TestCommunicatorServesBridge(t *testing.T) {
	var transport Transport = (*MqttCommunicator)(nil)
	assert.NotNil(t, transport)
}

func TestHandleRequestWithoutPayload(t *testing.T) {
	raw := []byte(`{"correlationId":"abc","payload":"plain"}`)

	var got map[string]interface{}
	topic, _, ok := handleRequest("pancy/request/config.delete", raw, func(p map[string]interface{}) (interface{}, error) {
		got = p
		return nil, nil
	})
	require.True(t, ok)
	assert.Equal(t, "pancy/response/config.delete/abc", topic)
	assert.Equal(t, map[string]interface{}{"_topic": "config.delete"}, got)
}
