package core

import "github.com/vmihailenco/msgpack/v5"

// Envelope is the framing shared by every inbound and outbound message.
type Envelope struct {
	Event string `json:"event"`
	Data  Opaque `json:"data,omitempty"`
}

// Opaque holds an already encoded value in the active wire format.
// The server routes it without looking inside.
type Opaque []byte

func (o Opaque) MarshalJSON() ([]byte, error) {
	if len(o) == 0 {
		return []byte("null"), nil
	}
	return o, nil
}

func (o *Opaque) UnmarshalJSON(b []byte) error {
	*o = append((*o)[:0], b...)
	return nil
}

func (o Opaque) EncodeMsgpack(enc *msgpack.Encoder) error {
	return msgpack.RawMessage(o).EncodeMsgpack(enc)
}

func (o *Opaque) DecodeMsgpack(dec *msgpack.Decoder) error {
	var raw msgpack.RawMessage
	if err := raw.DecodeMsgpack(dec); err != nil {
		return err
	}
	*o = Opaque(raw)
	return nil
}
