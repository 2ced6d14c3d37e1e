package game

import (
	"hash/fnv"
	"math"
)

// WeaponCategory partitions generated weapons into the behaviours the
// simulation knows how to execute.
type WeaponCategory string

const (
	CategoryProjectile WeaponCategory = "projectile"
	CategoryMelee      WeaponCategory = "melee"
	CategoryAreaEffect WeaponCategory = "area_effect"
	CategoryUtility    WeaponCategory = "utility"
	CategoryMagic      WeaponCategory = "magic"
)

var weaponCategories = []WeaponCategory{
	CategoryProjectile, CategoryMelee, CategoryAreaEffect, CategoryUtility, CategoryMagic,
}

// Legal property ranges. Candidates from the generator are clamped into these
// no matter what it proposed.
const (
	weaponDamageMin   = 10.0
	weaponDamageMax   = 100.0
	weaponSpeedMin    = 10.0
	weaponSpeedMax    = 100.0
	weaponRangeMin    = 20.0
	weaponRangeMax    = 200.0
	weaponAmmoMin     = 1
	weaponAmmoMax     = 30
	weaponCooldownMin = 1000
	weaponCooldownMax = 5000
)

// Balance-score weights. The score is a pure function of the clamped
// properties so the same weapon always rates the same.
const (
	balanceDamageWeight   = 0.35
	balanceSpeedWeight    = 0.20
	balanceRangeWeight    = 0.15
	balanceAmmoWeight     = 0.10
	balanceCooldownWeight = 0.20
	balanceEffectBonus    = 10.0
)

// WeaponProperties are the gameplay numbers of a weapon, always within the
// declared legal ranges once attached.
type WeaponProperties struct {
	Damage           float64
	Speed            float64
	Range            float64
	Ammo             int
	CooldownMs       int
	SpecialEffect    string
	EffectParameters map[string]float64
}

// Weapon is an attached, immutable weapon; only Ammo decrements after attach.
type Weapon struct {
	ID           string
	Category     WeaponCategory
	Properties   WeaponProperties
	BalanceScore float64
	OwnerID      string
}

// WeaponCandidate is a generator proposal. Nothing in it is trusted: numbers
// may be out of range, the category unknown, the effect string arbitrary.
type WeaponCandidate struct {
	Category         string
	Damage           float64
	Speed            float64
	Range            float64
	Ammo             float64
	CooldownMs       float64
	SpecialEffect    string
	EffectParameters map[string]float64
}

// clampCandidate forces every numeric property into its legal range and
// resolves the category and effect against the closed registries.
func clampCandidate(c WeaponCandidate) (WeaponCategory, WeaponProperties) {
	category := WeaponCategory(c.Category)
	known := false
	for _, cat := range weaponCategories {
		if cat == category {
			known = true
			break
		}
	}
	if !known {
		category = CategoryProjectile
	}

	props := WeaponProperties{
		Damage:     clampFloat(c.Damage, weaponDamageMin, weaponDamageMax),
		Speed:      clampFloat(c.Speed, weaponSpeedMin, weaponSpeedMax),
		Range:      clampFloat(c.Range, weaponRangeMin, weaponRangeMax),
		Ammo:       clampInt(int(math.Round(c.Ammo)), weaponAmmoMin, weaponAmmoMax),
		CooldownMs: clampInt(int(math.Round(c.CooldownMs)), weaponCooldownMin, weaponCooldownMax),
	}
	props.SpecialEffect, props.EffectParameters = resolveEffect(c.SpecialEffect, c.EffectParameters)
	return category, props
}

// balanceScore rates a weapon's power on a 0-100 scale using the constant
// weight table above. Cooldown contributes inverted: faster weapons score
// higher.
func balanceScore(props WeaponProperties) float64 {
	normalize := func(v, lo, hi float64) float64 { return (v - lo) / (hi - lo) }

	score := 0.0
	score += balanceDamageWeight * normalize(props.Damage, weaponDamageMin, weaponDamageMax)
	score += balanceSpeedWeight * normalize(props.Speed, weaponSpeedMin, weaponSpeedMax)
	score += balanceRangeWeight * normalize(props.Range, weaponRangeMin, weaponRangeMax)
	score += balanceAmmoWeight * normalize(float64(props.Ammo), weaponAmmoMin, weaponAmmoMax)
	score += balanceCooldownWeight * (1 - normalize(float64(props.CooldownMs), weaponCooldownMin, weaponCooldownMax))

	score *= 100
	if props.SpecialEffect != "" && props.SpecialEffect != EffectCosmetic {
		score += balanceEffectBonus
	}
	return clampFloat(score, 0, 100)
}

// fallbackTemplates guarantee a usable weapon per category when the external
// generator fails or times out.
var fallbackTemplates = map[WeaponCategory]WeaponCandidate{
	CategoryProjectile: {Category: string(CategoryProjectile), Damage: 35, Speed: 70, Range: 160, Ammo: 12, CooldownMs: 1500},
	CategoryMelee:      {Category: string(CategoryMelee), Damage: 55, Speed: 40, Range: 40, Ammo: 30, CooldownMs: 1200},
	CategoryAreaEffect: {Category: string(CategoryAreaEffect), Damage: 30, Speed: 30, Range: 120, Ammo: 6, CooldownMs: 3000},
	CategoryUtility:    {Category: string(CategoryUtility), Damage: 10, Speed: 50, Range: 60, Ammo: 8, CooldownMs: 2500, SpecialEffect: EffectHeal, EffectParameters: map[string]float64{"amount": 20}},
	CategoryMagic:      {Category: string(CategoryMagic), Damage: 40, Speed: 60, Range: 180, Ammo: 10, CooldownMs: 2000, SpecialEffect: EffectBurn, EffectParameters: map[string]float64{"dps": 5, "durationMs": 3000}},
}

// fallbackCandidate derives a template weapon from the prompt. The category
// pick hashes the prompt so the same request always falls back to the same
// weapon.
func fallbackCandidate(prompt string) WeaponCandidate {
	h := fnv.New32a()
	_, _ = h.Write([]byte(prompt))
	category := weaponCategories[int(h.Sum32())%len(weaponCategories)]
	return fallbackTemplates[category]
}

// starterCandidate arms freshly spawned players so the fire button works
// before any generation completes.
func starterCandidate() WeaponCandidate {
	return fallbackTemplates[CategoryProjectile]
}
