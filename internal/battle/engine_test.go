package battle

import (
	"testing"

	"github.com/tflegends/legends/internal/stats"
)

func TestResolveExchange_BothFielded(t *testing.T) {
	actor := &stats.EffectiveStats{Attack: 10, Defense: 5}
	opponent := &stats.EffectiveStats{Attack: 7, Defense: 3}

	ex := resolveExchange(actor, opponent)

	if ex.OpponentDamage != 7 {
		t.Fatalf("expected opponent to take max(0,10-3)=7, got %d", ex.OpponentDamage)
	}
	if ex.ActorDamage != 2 {
		t.Fatalf("expected actor to take max(0,7-5)=2, got %d", ex.ActorDamage)
	}
}

func TestResolveExchange_DefenseFloorsAtZero(t *testing.T) {
	actor := &stats.EffectiveStats{Attack: 3, Defense: 20}
	opponent := &stats.EffectiveStats{Attack: 5, Defense: 9}

	ex := resolveExchange(actor, opponent)

	if ex.OpponentDamage != 0 {
		t.Fatalf("damage must floor at zero, got %d", ex.OpponentDamage)
	}
	if ex.ActorDamage != 0 {
		t.Fatalf("damage must floor at zero, got %d", ex.ActorDamage)
	}
}

func TestResolveExchange_ActorHasNoCard(t *testing.T) {
	opponent := &stats.EffectiveStats{Attack: 12, Defense: 4}

	ex := resolveExchange(nil, opponent)

	// An empty board takes the raw attack unmitigated.
	if ex.ActorDamage != 12 {
		t.Fatalf("expected raw attack 12, got %d", ex.ActorDamage)
	}
	if ex.OpponentDamage != 0 {
		t.Fatalf("empty board deals nothing, got %d", ex.OpponentDamage)
	}
}

func TestResolveExchange_OpponentHasNoCard(t *testing.T) {
	actor := &stats.EffectiveStats{Attack: 12, Defense: 4}

	ex := resolveExchange(actor, nil)

	// No direct-attack rule exists for the attacker-only case.
	if ex.ActorDamage != 0 || ex.OpponentDamage != 0 {
		t.Fatalf("expected no damage, got %+v", ex)
	}
}

func TestResolveExchange_NeitherFielded(t *testing.T) {
	ex := resolveExchange(nil, nil)
	if ex.ActorDamage != 0 || ex.OpponentDamage != 0 {
		t.Fatalf("expected no damage, got %+v", ex)
	}
}
