package proto

import (
	"strings"
	"testing"
	"time"
)

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"not json", "{{{"},
		{"empty object", "{}"},
		{"missing type", `{"data":{"prompt":"x"},"timestamp":1}`},
		{"wrong type shape", `{"type":7}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Decode([]byte(tc.raw)); err == nil {
				t.Fatalf("Decode(%q) accepted a malformed frame", tc.raw)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	frame, err := Encode(TypeWeaponGenerate, WeaponGenerate{Prompt: "ice spear", MatchID: "m1"}, now)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if env.Type != TypeWeaponGenerate {
		t.Fatalf("type = %q", env.Type)
	}
	if env.Timestamp != now.UnixMilli() {
		t.Fatalf("timestamp = %d, want %d", env.Timestamp, now.UnixMilli())
	}

	payload, err := DecodeAs[WeaponGenerate](env)
	if err != nil {
		t.Fatalf("DecodeAs: %v", err)
	}
	if payload.Prompt != "ice spear" || payload.MatchID != "m1" {
		t.Fatalf("payload = %+v", payload)
	}
}

func TestDecodeAsReportsMissingAndMalformedData(t *testing.T) {
	env, err := Decode([]byte(`{"type":"player_input","timestamp":1}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := DecodeAs[PlayerInput](env); err == nil || !strings.Contains(err.Error(), "missing data") {
		t.Fatalf("missing data not reported: %v", err)
	}

	env, err = Decode([]byte(`{"type":"player_input","timestamp":1,"data":{"input":"nope"}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if _, err := DecodeAs[PlayerInput](env); err == nil {
		t.Fatalf("malformed payload accepted")
	}
}

func TestEncodeOmitsNilPayload(t *testing.T) {
	frame, err := Encode(TypeFindMatch, nil, time.UnixMilli(42))
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	env, err := Decode(frame)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(env.Data) != 0 {
		t.Fatalf("nil payload produced data: %s", env.Data)
	}
}
