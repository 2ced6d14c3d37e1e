package game

import "time"

// Special-effect kinds form a closed registry. Generator output is free text;
// anything the registry does not recognise degrades to a cosmetic no-op
// rather than being interpreted.
const (
	EffectCosmetic  = "cosmetic"
	EffectBurn      = "burn"
	EffectSlow      = "slow"
	EffectKnockback = "knockback"
	EffectHeal      = "heal"
)

// effectSpec declares the typed parameters an effect accepts and their legal
// ranges. Unknown parameters from the generator are dropped.
type effectSpec struct {
	params map[string][2]float64 // name -> {min, max}
	def    map[string]float64    // defaults for missing parameters
}

var effectRegistry = map[string]effectSpec{
	EffectBurn: {
		params: map[string][2]float64{"dps": {1, 15}, "durationMs": {500, 8000}},
		def:    map[string]float64{"dps": 4, "durationMs": 2000},
	},
	EffectSlow: {
		params: map[string][2]float64{"factor": {0.2, 0.9}, "durationMs": {500, 6000}},
		def:    map[string]float64{"factor": 0.6, "durationMs": 2000},
	},
	EffectKnockback: {
		params: map[string][2]float64{"force": {50, 400}},
		def:    map[string]float64{"force": 150},
	},
	EffectHeal: {
		params: map[string][2]float64{"amount": {5, 40}},
		def:    map[string]float64{"amount": 15},
	},
}

// resolveEffect maps a free-form effect string onto the registry. The
// returned parameter map only ever contains declared keys, clamped into their
// ranges.
func resolveEffect(name string, raw map[string]float64) (string, map[string]float64) {
	if name == "" {
		return "", nil
	}
	spec, ok := effectRegistry[name]
	if !ok {
		return EffectCosmetic, nil
	}
	params := make(map[string]float64, len(spec.params))
	for key, bounds := range spec.params {
		value, present := raw[key]
		if !present {
			value = spec.def[key]
		}
		params[key] = clampFloat(value, bounds[0], bounds[1])
	}
	return name, params
}

// condition is a timed status applied to a player by a weapon effect.
type condition struct {
	kind      string
	sourceID  string // owner of the weapon that applied it, for kill credit
	expiresAt time.Time
	magnitude float64 // dps for burn, movement factor for slow
}

// applyOnHitEffect translates a weapon's resolved effect into target state.
// Damage itself is handled by the caller; this only adds the rider.
func applyOnHitEffect(target *playerState, w Weapon, now time.Time) {
	params := w.Properties.EffectParameters
	switch w.Properties.SpecialEffect {
	case EffectBurn:
		target.conditions = append(target.conditions, condition{
			kind:      EffectBurn,
			sourceID:  w.OwnerID,
			expiresAt: now.Add(time.Duration(params["durationMs"]) * time.Millisecond),
			magnitude: params["dps"],
		})
	case EffectSlow:
		target.conditions = append(target.conditions, condition{
			kind:      EffectSlow,
			sourceID:  w.OwnerID,
			expiresAt: now.Add(time.Duration(params["durationMs"]) * time.Millisecond),
			magnitude: params["factor"],
		})
	default:
		// knockback is applied at impact by the caller; cosmetic does nothing.
	}
}

// movementFactor folds active slow conditions into a single multiplier.
func (p *playerState) movementFactor(now time.Time) float64 {
	factor := 1.0
	for _, c := range p.conditions {
		if c.kind == EffectSlow && now.Before(c.expiresAt) {
			factor *= c.magnitude
		}
	}
	return factor
}

// pruneConditions drops expired conditions in place.
func (p *playerState) pruneConditions(now time.Time) {
	kept := p.conditions[:0]
	for _, c := range p.conditions {
		if now.Before(c.expiresAt) {
			kept = append(kept, c)
		}
	}
	p.conditions = kept
}
