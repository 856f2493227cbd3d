package battle

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/tflegends/legends/internal/constants"
	"github.com/tflegends/legends/internal/game"
	"github.com/tflegends/legends/internal/logging"
	"github.com/tflegends/legends/internal/sheetstore"
	"github.com/tflegends/legends/internal/stats"
)

var (
	// ErrNotYourTurn rejects a play or end-turn from the side that does
	// not hold the turn. No network call is made.
	ErrNotYourTurn = errors.New("not your turn")
	// ErrInsufficientCards rejects a battle start when a side owns
	// fewer than a full hand of cards. No record is created.
	ErrInsufficientCards = errors.New("not enough cards to start a battle")
	// ErrNotInBattle means the acting player is not a participant.
	ErrNotInBattle = errors.New("player is not part of this battle")
	// ErrCardNotInHand rejects playing a card that is not among the
	// side's remaining cards.
	ErrCardNotInHand = errors.New("card is not in hand")
	// ErrBattleOver rejects mutations on a completed battle.
	ErrBattleOver = errors.New("battle is already completed")
)

// RecordStore is the battles-table contract the machine runs against.
type RecordStore interface {
	List(ctx context.Context) ([]game.Battle, error)
	Create(ctx context.Context, b *game.Battle) (*game.Battle, error)
	Patch(ctx context.Context, fields sheetstore.Fields) error
}

// CardSource resolves a card id to its catalog entry.
type CardSource interface {
	Lookup(id string) *game.Card
}

// Machine owns the battle lifecycle: deal, card play, end-turn combat
// resolution, win detection and settlement. Both clients run their own
// machine against the same shared record; every mutation gates on the
// locally-polled turn holder and carries the record revision so the
// store rejects a write computed against a stale view.
type Machine struct {
	battles RecordStore
	cards   CardSource
}

func NewMachine(battles RecordStore, cards CardSource) *Machine {
	return &Machine{battles: battles, cards: cards}
}

// Start deals both hands and creates the shared record. The challenger
// holds the first turn. The stored record (with its server-assigned id)
// is returned as the caller's local view.
func (m *Machine) Start(ctx context.Context, challenger, opponent *game.User) (*game.Battle, error) {
	challengerHand, err := deal(challenger.CardIDs())
	if err != nil {
		return nil, err
	}
	opponentHand, err := deal(opponent.CardIDs())
	if err != nil {
		return nil, err
	}

	b := &game.Battle{
		Player1:     challenger.ID,
		Player2:     opponent.ID,
		Player1Name: challenger.Username,
		Player2Name: opponent.Username,
		P1Hand:      game.JoinIDs(challengerHand),
		P1Remaining: game.JoinIDs(challengerHand),
		P1Health:    game.StartingHealth,
		P2Hand:      game.JoinIDs(opponentHand),
		P2Remaining: game.JoinIDs(opponentHand),
		P2Health:    game.StartingHealth,
		Turn:        challenger.ID,
		Log:         challenger.Username + " challenged " + opponent.Username,
		Status:      game.StatusActive,
		StartedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	created, err := m.battles.Create(ctx, b)
	if err != nil {
		return nil, err
	}
	logging.Info("battle created", logging.Fields{
		constants.LogFieldBattleID: created.ID,
		constants.LogFieldUserID:   challenger.ID,
		constants.LogFieldTurn:     created.Turn,
	})
	return created, nil
}

// deal shuffles a copy of the owned multiset and takes a full hand.
func deal(owned []string) ([]string, error) {
	if len(owned) < game.HandSize {
		return nil, ErrInsufficientCards
	}
	shuffled := make([]string, len(owned))
	copy(shuffled, owned)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:game.HandSize], nil
}

// PlayCard puts cardID in play for the acting side. A previously
// fielded card rotates back into the remaining hand, never discarded,
// so it can be replayed later in the same battle. Only the acting
// side's columns plus the log are patched.
func (m *Machine) PlayCard(ctx context.Context, b *game.Battle, playerID, cardID string) error {
	if b.Status != game.StatusActive {
		return ErrBattleOver
	}
	if b.Turn != playerID {
		return ErrNotYourTurn
	}
	side, ok := b.Side(playerID)
	if !ok {
		return ErrNotInBattle
	}

	remaining := side.Remaining()
	idx := indexOf(remaining, cardID)
	if idx < 0 {
		return ErrCardNotInHand
	}
	remaining = append(remaining[:idx], remaining[idx+1:]...)
	if prev := side.FieldCard(); prev != "" {
		remaining = append(remaining, prev)
	}

	logLine := playLogLine(side.DisplayName(), m.cardName(cardID))

	fields := sheetstore.Fields{
		"id":       b.ID,
		"log":      logLine,
		"revision": b.Revision,
	}
	if playerID == b.Player1 {
		fields["p1_remaining"] = game.JoinIDs(remaining)
		fields["p1_field"] = cardID
	} else {
		fields["p2_remaining"] = game.JoinIDs(remaining)
		fields["p2_field"] = cardID
	}
	if err := m.battles.Patch(ctx, fields); err != nil {
		return err
	}

	side.SetRemaining(remaining)
	side.SetFieldCard(cardID)
	b.Log = logLine
	b.Revision++
	return nil
}

// EndTurn resolves combat between the fielded cards, applies the health
// deltas and flips the turn. Only the two health columns, the turn and
// the log are patched.
func (m *Machine) EndTurn(ctx context.Context, b *game.Battle, playerID string) error {
	if b.Status != game.StatusActive {
		return ErrBattleOver
	}
	if b.Turn != playerID {
		return ErrNotYourTurn
	}
	actor, ok := b.Side(playerID)
	if !ok {
		return ErrNotInBattle
	}
	opponent, _ := b.Side(b.Opponent(playerID))

	ex := resolveExchange(m.fieldStats(actor), m.fieldStats(opponent))
	actorHealth := actor.Health() - ex.ActorDamage
	opponentHealth := opponent.Health() - ex.OpponentDamage
	nextTurn := opponent.Player()
	logLine := describeExchange(actor.DisplayName(), opponent.DisplayName(), ex, actorHealth, opponentHealth)

	fields := sheetstore.Fields{
		"id":       b.ID,
		"turn":     nextTurn,
		"log":      logLine,
		"revision": b.Revision,
	}
	if playerID == b.Player1 {
		fields["p1_health"] = actorHealth
		fields["p2_health"] = opponentHealth
	} else {
		fields["p2_health"] = actorHealth
		fields["p1_health"] = opponentHealth
	}
	if err := m.battles.Patch(ctx, fields); err != nil {
		return err
	}

	actor.SetHealth(actorHealth)
	opponent.SetHealth(opponentHealth)
	b.Turn = nextTurn
	b.Log = logLine
	b.Revision++
	return nil
}

// fieldStats resolves the effective stats of a side's fielded card, or
// nil when the side has no card in play (or the id is unknown to the
// catalog).
func (m *Machine) fieldStats(s *game.Side) *stats.EffectiveStats {
	id := s.FieldCard()
	if id == "" {
		return nil
	}
	card := m.cards.Lookup(id)
	if card == nil {
		return nil
	}
	es := stats.Resolve(card)
	return &es
}

// CheckWin evaluates the win condition from one side's point of view.
// It is pure and runs after every poll tick. The returned winner is a
// player id, constants.WinnerDraw, or "" while the battle continues.
func CheckWin(b *game.Battle, viewingSide string) (winner string, over bool) {
	viewer, ok := b.Side(viewingSide)
	if !ok {
		return "", false
	}
	opponent, _ := b.Side(b.Opponent(viewingSide))
	switch {
	case viewer.Health() <= 0 && opponent.Health() <= 0:
		return constants.WinnerDraw, true
	case opponent.Health() <= 0:
		return viewingSide, true
	case viewer.Health() <= 0:
		return opponent.Player(), true
	}
	return "", false
}

// Settle marks the battle completed with its winner. Reward settlement
// and poll teardown are the caller's responsibility.
func (m *Machine) Settle(ctx context.Context, b *game.Battle, winner string) error {
	endedAt := time.Now().UTC().Format(time.RFC3339)
	fields := sheetstore.Fields{
		"id":       b.ID,
		"status":   game.StatusCompleted,
		"winner":   winner,
		"ended_at": endedAt,
		"revision": b.Revision,
	}
	if err := m.battles.Patch(ctx, fields); err != nil {
		return err
	}
	b.Status = game.StatusCompleted
	b.Winner = winner
	b.EndedAt = endedAt
	b.Revision++
	logging.Info("battle settled", logging.Fields{
		constants.LogFieldBattleID: b.ID,
		constants.LogFieldWinner:   winner,
	})
	return nil
}

func (m *Machine) cardName(id string) string {
	if card := m.cards.Lookup(id); card != nil {
		return card.Name
	}
	return id
}

func playLogLine(displayName, cardName string) string {
	return displayName + " plays " + cardName
}

func indexOf(ids []string, id string) int {
	for i := range ids {
		if ids[i] == id {
			return i
		}
	}
	return -1
}
