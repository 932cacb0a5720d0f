package net

import (
	"encoding/json"
	"fmt"
)

// Message is the websocket envelope in both directions.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Inbound message types.
const (
	MsgClaim      = "claim"      // take control of the tracked player
	MsgPosition   = "position"   // PositionData
	MsgCulling    = "culling"    // CullingData
	MsgRegenerate = "regenerate" // RegenerateData
	MsgAutopilot  = "autopilot"  // AutopilotData
)

// Outbound message types.
const (
	MsgWelcome          = "welcome"
	MsgDungeonGenerated = "dungeon_generated"
	MsgRoomChanged      = "room_changed"
	MsgRoomVisibility   = "room_visibility"
	MsgError            = "error"
)

type PositionData struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// CullingData sets culling; a missing Enabled toggles it.
type CullingData struct {
	Enabled *bool `json:"enabled,omitempty"`
}

// RegenerateData requests a new dungeon; a zero seed keeps the current one
// and a negative seed randomises.
type RegenerateData struct {
	Seed int64 `json:"seed,omitempty"`
}

type AutopilotData struct {
	Enabled bool `json:"enabled"`
}

type WelcomeData struct {
	Session    uint64 `json:"session"`
	Controller bool   `json:"controller"`
}

type RoomInfo struct {
	Name    string     `json:"name"`
	Index   int        `json:"index"`
	Branch  bool       `json:"branch"`
	Visible bool       `json:"visible"`
	Min     [3]float64 `json:"min"`
	Max     [3]float64 `json:"max"`
}

type DungeonGeneratedData struct {
	Flow  string     `json:"flow"`
	Seed  int64      `json:"seed"`
	Rooms []RoomInfo `json:"rooms"`
}

// RoomChangedData names rooms by registry index; -1 means none.
type RoomChangedData struct {
	From     int    `json:"from"`
	To       int    `json:"to"`
	FromName string `json:"from_name,omitempty"`
	ToName   string `json:"to_name,omitempty"`
}

type RoomVisibilityData struct {
	Room    int    `json:"room"`
	Name    string `json:"name"`
	Visible bool   `json:"visible"`
}

type ErrorData struct {
	Message string `json:"message"`
}

// NewMessage wraps a payload in an envelope.
func NewMessage(typ string, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: typ}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s: %w", typ, err)
	}
	return Message{Type: typ, Data: raw}, nil
}
