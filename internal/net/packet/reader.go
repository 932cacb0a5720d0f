package packet

import (
	"encoding/json"
	"fmt"
)

// Reader gives a handler access to one inbound message payload.
type Reader struct {
	typ  string
	data json.RawMessage
}

func NewReader(typ string, data json.RawMessage) *Reader {
	return &Reader{typ: typ, data: data}
}

func (r *Reader) Type() string { return r.typ }

// Empty reports whether the message carried no payload.
func (r *Reader) Empty() bool {
	return len(r.data) == 0 || string(r.data) == "null"
}

// Decode unmarshals the payload into v. An empty payload leaves v as is.
func (r *Reader) Decode(v any) error {
	if r.Empty() {
		return nil
	}
	if err := json.Unmarshal(r.data, v); err != nil {
		return fmt.Errorf("decode %s: %w", r.typ, err)
	}
	return nil
}
