package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"rift-arena/server/internal/game"
)

func TestDisabledAlwaysFails(t *testing.T) {
	var gen Disabled
	if _, err := gen.GenerateWeapon(context.Background(), "sword", game.PromptContext{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
	if _, err := gen.GenerateModification(context.Background(), "low gravity", game.PromptContext{}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestGenerateWeaponPostsPromptAndContext(t *testing.T) {
	var got generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/generate/weapon" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(weaponResponse{
			Category:   "melee",
			Damage:     60,
			Speed:      30,
			Range:      45,
			Ammo:       20,
			CooldownMs: 1500,
		})
	}))
	defer srv.Close()

	client := NewHTTP(srv.URL, zap.NewNop().Sugar())
	candidate, err := client.GenerateWeapon(context.Background(), "a heavy axe", game.PromptContext{MatchID: "m1", PlayerID: "p1"})
	if err != nil {
		t.Fatalf("GenerateWeapon: %v", err)
	}
	if got.Prompt != "a heavy axe" || got.MatchID != "m1" || got.PlayerID != "p1" {
		t.Fatalf("request = %+v", got)
	}
	if candidate.Category != "melee" || candidate.Damage != 60 {
		t.Fatalf("candidate = %+v", candidate)
	}
}

func TestGenerateModificationSurfacesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := NewHTTP(srv.URL, zap.NewNop().Sugar())
	if _, err := client.GenerateModification(context.Background(), "chaos", game.PromptContext{}); err == nil {
		t.Fatalf("5xx response accepted")
	}
}

func TestGenerateWeaponHonoursContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewHTTP(srv.URL, zap.NewNop().Sugar())
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := client.GenerateWeapon(ctx, "slow", game.PromptContext{}); err == nil {
		t.Fatalf("deadline ignored")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("call outlived its deadline by %v", elapsed)
	}
}
