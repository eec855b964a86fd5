package core

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// Codec is the wire format used by every connection of a server process.
// A single format per process keeps Opaque payloads valid for every peer.
type Codec interface {
	Name() string
	// Binary reports whether frames go out as binary websocket messages.
	Binary() bool
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

func NewCodec(format string) (Codec, error) {
	switch format {
	case "", FormatJSON:
		return JSONCodec{}, nil
	case FormatMsgpack:
		return MsgpackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown wire format %q", format)
	}
}

type JSONCodec struct{}

func (JSONCodec) Name() string                       { return FormatJSON }
func (JSONCodec) Binary() bool                       { return false }
func (JSONCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (JSONCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// MsgpackCodec reuses the json struct tags so payload types need one tag set.
type MsgpackCodec struct{}

func (MsgpackCodec) Name() string { return FormatMsgpack }
func (MsgpackCodec) Binary() bool { return true }

func (MsgpackCodec) Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (MsgpackCodec) Unmarshal(data []byte, v any) error {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	return dec.Decode(v)
}

// Encode wraps payload into an envelope. A nil payload yields an envelope without data.
func Encode(c Codec, event string, payload any) (Frame, error) {
	env := Envelope{Event: event}
	switch p := payload.(type) {
	case nil:
	case Opaque:
		env.Data = p
	default:
		data, err := c.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", event, err)
		}
		env.Data = data
	}
	b, err := c.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("encode %s envelope: %w", event, err)
	}
	return b, nil
}

func Decode(c Codec, f Frame) (Envelope, error) {
	var env Envelope
	if err := c.Unmarshal(f, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	return env, nil
}
