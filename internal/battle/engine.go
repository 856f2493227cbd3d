package battle

import (
	"fmt"

	"github.com/tflegends/legends/internal/stats"
)

// Exchange is the outcome of one end-turn combat resolution. Damage is
// expressed as positive numbers taken by each side.
type Exchange struct {
	ActorDamage    int
	OpponentDamage int
}

// resolveExchange computes the simultaneous exchange between the acting
// side's fielded card and the opponent's. Defense soaks incoming attack
// and damage floors at zero. A side with no fielded card takes the
// opposing card's raw attack unmitigated; a fielded card facing an empty
// board deals nothing (there is no direct-attack rule for that case).
func resolveExchange(actor, opponent *stats.EffectiveStats) Exchange {
	var ex Exchange
	switch {
	case actor != nil && opponent != nil:
		ex.OpponentDamage = maxInt(0, actor.Attack-opponent.Defense)
		ex.ActorDamage = maxInt(0, opponent.Attack-actor.Defense)
	case actor == nil && opponent != nil:
		ex.ActorDamage = opponent.Attack
	}
	return ex
}

// describeExchange renders the single log line stored on the record
// after an end-turn resolution.
func describeExchange(actorName, opponentName string, ex Exchange, actorHealth, opponentHealth int) string {
	if ex.ActorDamage == 0 && ex.OpponentDamage == 0 {
		return fmt.Sprintf("%s ends the turn: no damage dealt", actorName)
	}
	return fmt.Sprintf("%s ends the turn: %s takes %d damage (%d left), %s takes %d damage (%d left)",
		actorName, opponentName, ex.OpponentDamage, opponentHealth, actorName, ex.ActorDamage, actorHealth)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
