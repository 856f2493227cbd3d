package stats

import (
	"math"

	"github.com/tflegends/legends/internal/game"
)

// EffectiveStats is a card's attack/health/defense after the rarity tier
// and bonus multipliers are applied. It is derived on every render and
// never stored.
type EffectiveStats struct {
	Attack  int
	Health  int
	Defense int
	// Modified is true when any multiplier changed the base stats. The
	// renderer uses it to highlight upgraded cards.
	Modified bool
}

// Tier multipliers. A card carries at most one tier.
const (
	enhancedMultiplier = 1.25
	maxedMultiplier    = 1.5
)

// Resolve derives a card's effective stats. Multipliers apply in two
// stages with half-up rounding after each: first the rarity tier, then
// the bonus multiplier on the already-rounded values. Collapsing both
// stages into one product rounds differently, so the staging is part of
// the contract.
func Resolve(card *game.Card) EffectiveStats {
	out := EffectiveStats{
		Attack:  card.Attack,
		Health:  card.Health,
		Defense: card.Defense,
	}

	switch card.Tier() {
	case game.TierEnhanced:
		out.scale(enhancedMultiplier)
	case game.TierMaxed:
		out.scale(maxedMultiplier)
	}

	if card.Bonus > 1 {
		out.scale(card.Bonus)
	}
	return out
}

func (s *EffectiveStats) scale(m float64) {
	s.Attack = roundHalfUp(float64(s.Attack) * m)
	s.Health = roundHalfUp(float64(s.Health) * m)
	s.Defense = roundHalfUp(float64(s.Defense) * m)
	s.Modified = true
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
