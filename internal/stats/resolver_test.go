package stats

import (
	"testing"

	"github.com/tflegends/legends/internal/game"
)

func TestResolve_BaseCardUnchanged(t *testing.T) {
	c := &game.Card{Attack: 10, Health: 20, Defense: 5}

	got := Resolve(c)

	if got.Attack != 10 || got.Health != 20 || got.Defense != 5 {
		t.Fatalf("base card stats changed: %+v", got)
	}
	if got.Modified {
		t.Fatalf("base card must not be marked modified")
	}
}

func TestResolve_EnhancedRoundsHalfUp(t *testing.T) {
	c := &game.Card{Attack: 10, Health: 10, Defense: 10, Rarity: "MTM"}

	got := Resolve(c)

	// 10 * 1.25 = 12.5 rounds up to 13
	if got.Attack != 13 || got.Health != 13 || got.Defense != 13 {
		t.Fatalf("expected 13/13/13, got %+v", got)
	}
	if !got.Modified {
		t.Fatalf("enhanced card must be marked modified")
	}
}

func TestResolve_MaxedTier(t *testing.T) {
	c := &game.Card{Attack: 10, Health: 10, Defense: 10, Rarity: "MAX"}

	got := Resolve(c)

	if got.Attack != 15 || got.Health != 15 || got.Defense != 15 {
		t.Fatalf("expected 15/15/15, got %+v", got)
	}
}

func TestResolve_TierThenBonusStaging(t *testing.T) {
	c := &game.Card{Attack: 10, Health: 10, Defense: 10, Rarity: "MAX", Bonus: 2}

	got := Resolve(c)

	// Tier first (15/15/15), then bonus on the rounded values.
	if got.Attack != 30 || got.Health != 30 || got.Defense != 30 {
		t.Fatalf("expected 30/30/30, got %+v", got)
	}
}

func TestResolve_StageOrderMatters(t *testing.T) {
	// 9 * 1.25 = 11.25 -> 11, then 11 * 1.5 = 16.5 -> 17.
	// A single combined multiplier (9 * 1.875 = 16.875 -> 17) happens to
	// agree here, so use a case where it does not: 7.
	// 7 * 1.25 = 8.75 -> 9, 9 * 1.5 = 13.5 -> 14; combined 7*1.875 = 13.125 -> 13.
	c := &game.Card{Attack: 7, Health: 7, Defense: 7, Rarity: "MTM", Bonus: 1.5}

	got := Resolve(c)

	if got.Attack != 14 {
		t.Fatalf("expected staged rounding to yield 14, got %d", got.Attack)
	}
}

func TestResolve_BonusOfOneIsIgnored(t *testing.T) {
	c := &game.Card{Attack: 8, Health: 8, Defense: 8, Bonus: 1}

	got := Resolve(c)

	if got.Modified {
		t.Fatalf("bonus of 1 must not mark the card modified")
	}
	if got.Attack != 8 {
		t.Fatalf("bonus of 1 must not change stats, got %d", got.Attack)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	c := &game.Card{Attack: 11, Health: 9, Defense: 6, Rarity: "MTM", Bonus: 1.3}

	first := Resolve(c)
	for i := 0; i < 5; i++ {
		if got := Resolve(c); got != first {
			t.Fatalf("resolve is not deterministic: %+v vs %+v", got, first)
		}
	}
}
