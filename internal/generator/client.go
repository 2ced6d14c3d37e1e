// Package generator talks to the external text-to-content service that turns
// player prompts into weapon and physics-modification candidates. The server
// only ever treats its output as untrusted proposals; validation and
// clamping happen in the game package.
package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"rift-arena/server/internal/game"
)

// ErrNotConfigured is returned by Disabled so the gateway's fallback path
// takes over.
var ErrNotConfigured = errors.New("generator: no service configured")

// Disabled is the client used when no generator URL is configured. Every
// call fails fast, which downstream resolves to deterministic fallbacks.
type Disabled struct{}

func (Disabled) GenerateWeapon(context.Context, string, game.PromptContext) (game.WeaponCandidate, error) {
	return game.WeaponCandidate{}, ErrNotConfigured
}

func (Disabled) GenerateModification(context.Context, string, game.PromptContext) (game.ModificationCandidate, error) {
	return game.ModificationCandidate{}, ErrNotConfigured
}

// HTTPClient calls the collaborator over JSON HTTP. The context carries the
// generation budget; a slow service is indistinguishable from a failed one.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.SugaredLogger
}

// NewHTTP builds a client for the given base URL.
func NewHTTP(baseURL string, logger *zap.SugaredLogger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		client:  &http.Client{},
		logger:  logger,
	}
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	MatchID  string `json:"match_id"`
	PlayerID string `json:"player_id"`
}

type weaponResponse struct {
	Category         string             `json:"category"`
	Damage           float64            `json:"damage"`
	Speed            float64            `json:"speed"`
	Range            float64            `json:"range"`
	Ammo             float64            `json:"ammo"`
	CooldownMs       float64            `json:"cooldownMs"`
	SpecialEffect    string             `json:"specialEffect"`
	EffectParameters map[string]float64 `json:"effectParameters"`
}

type modificationResponse struct {
	Type       string             `json:"type"`
	Parameters map[string]float64 `json:"parameters"`
	DurationMs int64              `json:"durationMs"`
}

// GenerateWeapon asks the service for a weapon candidate.
func (c *HTTPClient) GenerateWeapon(ctx context.Context, prompt string, pctx game.PromptContext) (game.WeaponCandidate, error) {
	var resp weaponResponse
	if err := c.post(ctx, "/generate/weapon", prompt, pctx, &resp); err != nil {
		return game.WeaponCandidate{}, err
	}
	return game.WeaponCandidate{
		Category:         resp.Category,
		Damage:           resp.Damage,
		Speed:            resp.Speed,
		Range:            resp.Range,
		Ammo:             resp.Ammo,
		CooldownMs:       resp.CooldownMs,
		SpecialEffect:    resp.SpecialEffect,
		EffectParameters: resp.EffectParameters,
	}, nil
}

// GenerateModification asks the service for a physics-modification
// candidate.
func (c *HTTPClient) GenerateModification(ctx context.Context, prompt string, pctx game.PromptContext) (game.ModificationCandidate, error) {
	var resp modificationResponse
	if err := c.post(ctx, "/generate/modification", prompt, pctx, &resp); err != nil {
		return game.ModificationCandidate{}, err
	}
	return game.ModificationCandidate{
		Type:       resp.Type,
		Parameters: resp.Parameters,
		DurationMs: resp.DurationMs,
	}, nil
}

func (c *HTTPClient) post(ctx context.Context, path, prompt string, pctx game.PromptContext, out any) error {
	body, err := json.Marshal(generateRequest{Prompt: prompt, MatchID: pctx.MatchID, PlayerID: pctx.PlayerID})
	if err != nil {
		return fmt.Errorf("generator: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("generator: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("generator: unexpected status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("generator: malformed response: %w", err)
	}
	return nil
}
