// Package proto defines the wire envelope and typed payloads exchanged with
// clients. The codec is pure: it never touches match state and holds no
// connection handles, so both the network layer and the simulation can use it
// freely.
package proto

import (
	"encoding/json"
	"fmt"
	"time"
)

// Message type identifiers, client to server unless noted.
const (
	TypePlayerConnect    = "player_connect"
	TypePlayerDisconnect = "player_disconnect"
	TypeFindMatch        = "find_match"
	TypeMatchFound       = "match_found" // server to client
	TypeMatchStart       = "match_start" // server to client
	TypeMatchEnd         = "match_end"   // server to client
	TypePlayerInput      = "player_input"
	TypeGameStateUpdate  = "game_state_update" // server to client
	TypeWeaponGenerate   = "weapon_generate"
	TypeWeaponGenerated  = "weapon_generated" // server to client
	TypeWeaponUse        = "weapon_use"
	TypeMasterPrompt     = "master_prompt"
	TypePhysicsChanged   = "physics_changed" // server to client
	TypeReject           = "reject"          // server to client
	TypeQueueTimeout     = "queue_timeout"   // server to client
)

// Envelope wraps every message in both directions. Data stays raw until the
// receiver knows which payload struct to decode it into.
type Envelope struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp int64           `json:"timestamp"`
	PlayerID  string          `json:"player_id,omitempty"`
}

// Decode parses a raw frame into an envelope. A frame without a type is
// malformed; the caller logs and drops it without disconnecting.
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("proto: malformed envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("proto: envelope missing type")
	}
	return env, nil
}

// DecodeAs unmarshals the envelope data into the requested payload type.
func DecodeAs[T any](env Envelope) (T, error) {
	var payload T
	if len(env.Data) == 0 {
		return payload, fmt.Errorf("proto: %s envelope missing data", env.Type)
	}
	if err := json.Unmarshal(env.Data, &payload); err != nil {
		return payload, fmt.Errorf("proto: malformed %s payload: %w", env.Type, err)
	}
	return payload, nil
}

// Encode renders an envelope around the given payload, stamping the current
// server time.
func Encode(msgType string, payload any, now time.Time) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("proto: encode %s payload: %w", msgType, err)
		}
		data = encoded
	}
	return json.Marshal(Envelope{Type: msgType, Data: data, Timestamp: now.UnixMilli()})
}
