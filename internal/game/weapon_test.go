package game

import "testing"

func TestClampCandidateForcesLegalRanges(t *testing.T) {
	category, props := clampCandidate(WeaponCandidate{
		Category:   string(CategoryProjectile),
		Damage:     9999,
		Speed:      -5,
		Range:      1,
		Ammo:       500,
		CooldownMs: 0,
	})
	if category != CategoryProjectile {
		t.Fatalf("category = %v", category)
	}
	if props.Damage != weaponDamageMax {
		t.Fatalf("damage = %v, want %v", props.Damage, weaponDamageMax)
	}
	if props.Speed != weaponSpeedMin {
		t.Fatalf("speed = %v, want %v", props.Speed, weaponSpeedMin)
	}
	if props.Range != weaponRangeMin {
		t.Fatalf("range = %v, want %v", props.Range, weaponRangeMin)
	}
	if props.Ammo != weaponAmmoMax {
		t.Fatalf("ammo = %v, want %v", props.Ammo, weaponAmmoMax)
	}
	if props.CooldownMs != weaponCooldownMin {
		t.Fatalf("cooldownMs = %v, want %v", props.CooldownMs, weaponCooldownMin)
	}
}

func TestClampCandidateUnknownCategoryDefaultsToProjectile(t *testing.T) {
	category, _ := clampCandidate(WeaponCandidate{Category: "orbital_laser", Damage: 50, Speed: 50, Range: 100, Ammo: 10, CooldownMs: 2000})
	if category != CategoryProjectile {
		t.Fatalf("category = %v, want projectile", category)
	}
}

func TestClampCandidateUnknownEffectBecomesCosmetic(t *testing.T) {
	_, props := clampCandidate(WeaponCandidate{
		Category:      string(CategoryMelee),
		Damage:        50, Speed: 50, Range: 50, Ammo: 10, CooldownMs: 2000,
		SpecialEffect: "instant_death",
	})
	if props.SpecialEffect != EffectCosmetic {
		t.Fatalf("effect = %q, want cosmetic", props.SpecialEffect)
	}
	if len(props.EffectParameters) != 0 {
		t.Fatalf("cosmetic effect carries parameters: %v", props.EffectParameters)
	}
}

func TestBalanceScoreDeterministicAndBounded(t *testing.T) {
	props := WeaponProperties{Damage: 60, Speed: 40, Range: 120, Ammo: 12, CooldownMs: 2000}
	first := balanceScore(props)
	for i := 0; i < 10; i++ {
		if got := balanceScore(props); got != first {
			t.Fatalf("score changed between calls: %v vs %v", got, first)
		}
	}
	if first < 0 || first > 100 {
		t.Fatalf("score %v outside [0, 100]", first)
	}

	weakest := WeaponProperties{Damage: weaponDamageMin, Speed: weaponSpeedMin, Range: weaponRangeMin, Ammo: weaponAmmoMin, CooldownMs: weaponCooldownMax}
	strongest := WeaponProperties{Damage: weaponDamageMax, Speed: weaponSpeedMax, Range: weaponRangeMax, Ammo: weaponAmmoMax, CooldownMs: weaponCooldownMin, SpecialEffect: EffectBurn}
	if balanceScore(weakest) != 0 {
		t.Fatalf("weakest weapon score = %v, want 0", balanceScore(weakest))
	}
	if balanceScore(strongest) != 100 {
		t.Fatalf("strongest weapon score = %v, want 100", balanceScore(strongest))
	}
}

func TestFallbackCandidateIsDeterministicAndLegal(t *testing.T) {
	first := fallbackCandidate("flaming chainsaw")
	second := fallbackCandidate("flaming chainsaw")
	if first.Category != second.Category {
		t.Fatalf("same prompt produced different categories: %v vs %v", first.Category, second.Category)
	}

	for prompt := range map[string]struct{}{"a": {}, "big hammer": {}, "": {}, "💥": {}} {
		category, props := clampCandidate(fallbackCandidate(prompt))
		if _, ok := fallbackTemplates[category]; !ok {
			t.Fatalf("prompt %q fell back to unknown category %v", prompt, category)
		}
		if props.Damage < weaponDamageMin || props.Damage > weaponDamageMax {
			t.Fatalf("fallback damage %v out of range", props.Damage)
		}
	}
}

func TestResolveEffectClampsAndDefaults(t *testing.T) {
	name, params := resolveEffect(EffectBurn, map[string]float64{"dps": 1000, "ignored": 7})
	if name != EffectBurn {
		t.Fatalf("name = %q", name)
	}
	if params["dps"] != 15 {
		t.Fatalf("dps = %v, want clamped 15", params["dps"])
	}
	if params["durationMs"] != 2000 {
		t.Fatalf("durationMs = %v, want default 2000", params["durationMs"])
	}
	if _, ok := params["ignored"]; ok {
		t.Fatalf("undeclared parameter survived")
	}

	if name, params := resolveEffect("", nil); name != "" || params != nil {
		t.Fatalf("empty effect resolved to %q %v", name, params)
	}
}
