package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkeye/Nexus/internal/core"
)

type offerMsg struct {
	Offer core.Opaque `json:"offer"`
	From  string      `json:"from"`
}

func TestEncodeDecodeJSONKeepsOpaqueBytes(t *testing.T) {
	codec := core.JSONCodec{}
	blob := core.Opaque(`{"type":"offer","sdp":"v=0\r\n"}`)

	frame, err := core.Encode(codec, "offer", offerMsg{Offer: blob, From: "a"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"offer","data":{"offer":{"type":"offer","sdp":"v=0\r\n"},"from":"a"}}`, string(frame))

	env, err := core.Decode(codec, frame)
	require.NoError(t, err)
	assert.Equal(t, "offer", env.Event)

	var got offerMsg
	require.NoError(t, codec.Unmarshal(env.Data, &got))
	assert.JSONEq(t, string(blob), string(got.Offer))
	assert.Equal(t, "a", got.From)
}

func TestEncodeWithoutPayloadOmitsData(t *testing.T) {
	frame, err := core.Encode(core.JSONCodec{}, "pong", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"pong"}`, string(frame))
}

func TestMsgpackCodecRoundTrip(t *testing.T) {
	codec := core.MsgpackCodec{}
	inner, err := codec.Marshal(map[string]any{"sdp": "v=0"})
	require.NoError(t, err)

	frame, err := core.Encode(codec, "answer", offerMsg{Offer: inner, From: "b"})
	require.NoError(t, err)

	env, err := core.Decode(codec, frame)
	require.NoError(t, err)
	assert.Equal(t, "answer", env.Event)

	var got offerMsg
	require.NoError(t, codec.Unmarshal(env.Data, &got))
	assert.Equal(t, "b", got.From)
	assert.Equal(t, []byte(inner), []byte(got.Offer))

	var sdp map[string]any
	require.NoError(t, codec.Unmarshal(got.Offer, &sdp))
	assert.Equal(t, "v=0", sdp["sdp"])
}

func TestNewCodec(t *testing.T) {
	c, err := core.NewCodec("")
	require.NoError(t, err)
	assert.Equal(t, core.FormatJSON, c.Name())
	assert.False(t, c.Binary())

	c, err = core.NewCodec("msgpack")
	require.NoError(t, err)
	assert.True(t, c.Binary())

	_, err = core.NewCodec("xml")
	assert.Error(t, err)
}

func TestDecodeRejectsGarbage(t *testing.T) {
	_, err := core.Decode(core.JSONCodec{}, core.Frame("not json"))
	assert.Error(t, err)
}
