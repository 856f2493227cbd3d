package game

import (
	"strings"

	"github.com/tflegends/legends/internal/constants"
)

// Card is a catalog entry. The catalog is loaded once from the cards
// table at startup and never mutated afterwards; the field tags mirror
// the spreadsheet columns.
type Card struct {
	ID      string `json:"id" gorm:"primaryKey"`
	Name    string `json:"name"`
	Faction string `json:"faction"`
	Attack  int    `json:"attack"`
	Health  int    `json:"health"`
	Defense int    `json:"defense"`
	// Rarity holds the tier column value: empty for a base card,
	// "MTM" for an enhanced card or "MAX" for a maxed one.
	Rarity string `json:"rarity"`
	// Bonus is an optional stat multiplier (>= 1). Zero means none.
	Bonus    float64 `json:"bonus"`
	ImageURL string  `json:"url" gorm:"column:url"`
}

// RarityTier is a card's single (non-stackable) tier modifier.
type RarityTier string

const (
	TierNone     RarityTier = ""
	TierEnhanced RarityTier = constants.WireTierEnhanced
	TierMaxed    RarityTier = constants.WireTierMaxed
)

// Tier maps the rarity column to a known tier. Unknown values are
// treated as no tier so a malformed sheet row never breaks rendering.
func (c *Card) Tier() RarityTier {
	switch strings.TrimSpace(c.Rarity) {
	case constants.WireTierEnhanced:
		return TierEnhanced
	case constants.WireTierMaxed:
		return TierMaxed
	}
	return TierNone
}

// User mirrors a row of the users table. Cards is a comma-joined,
// ordered id list where duplicates are meaningful (multiple copies of
// the same card).
type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Username string `json:"username"`
	Password string `json:"password"`
	Cards    string `json:"cards"`
	Coins    int    `json:"coins"`
	Online   string `json:"online"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// CardIDs returns the owned card ids as a slice. The result preserves
// order and duplicates.
func (u *User) CardIDs() []string {
	return SplitIDs(u.Cards)
}

// SetCardIDs replaces the owned card list.
func (u *User) SetCardIDs(ids []string) {
	u.Cards = JoinIDs(ids)
}

// AddCardID appends one copy of a card to the owned list.
func (u *User) AddCardID(id string) {
	u.SetCardIDs(append(u.CardIDs(), id))
}

func (u *User) IsOnline() bool {
	return u.Online == constants.WireTrue
}

func (u *User) SetOnline(online bool) {
	u.Online = FormatBool(online)
}

// Battle status column values.
const (
	StatusActive    = "active"
	StatusCompleted = "completed"
)

// StartingHealth is each side's health at battle start.
const StartingHealth = 100

// HandSize is the number of cards dealt to each side.
const HandSize = 4

// Battle mirrors a row of the battles table: the shared record both
// clients poll and patch. Log holds only the latest event line and is
// overwritten on every mutation. Revision is an optimistic-concurrency
// counter: a patch must carry the revision it was computed against and
// the store rejects it once the stored revision has advanced.
type Battle struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Player1     string `json:"player1"`
	Player2     string `json:"player2"`
	Player1Name string `json:"player1_name" gorm:"column:player1_name"`
	Player2Name string `json:"player2_name" gorm:"column:player2_name"`
	P1Hand      string `json:"p1_hand" gorm:"column:p1_hand"`
	P1Remaining string `json:"p1_remaining" gorm:"column:p1_remaining"`
	P1Field     string `json:"p1_field" gorm:"column:p1_field"`
	P1Health    int    `json:"p1_health" gorm:"column:p1_health"`
	P2Hand      string `json:"p2_hand" gorm:"column:p2_hand"`
	P2Remaining string `json:"p2_remaining" gorm:"column:p2_remaining"`
	P2Field     string `json:"p2_field" gorm:"column:p2_field"`
	P2Health    int    `json:"p2_health" gorm:"column:p2_health"`
	Turn        string `json:"turn"`
	Log         string `json:"log"`
	Status      string `json:"status"`
	Winner      string `json:"winner"`
	Revision    int    `json:"revision"`
	StartedAt   string `json:"started_at"`
	EndedAt     string `json:"ended_at"`
}

// HasPlayer reports whether the given user participates in the battle.
func (b *Battle) HasPlayer(playerID string) bool {
	return playerID == b.Player1 || playerID == b.Player2
}

// Opponent returns the other side's player id.
func (b *Battle) Opponent(playerID string) string {
	if playerID == b.Player1 {
		return b.Player2
	}
	return b.Player1
}

// Side returns a mutable view over one side's columns. The second
// return value is false when the player is not part of the battle.
func (b *Battle) Side(playerID string) (*Side, bool) {
	switch playerID {
	case b.Player1:
		return &Side{battle: b, isP1: true}, true
	case b.Player2:
		return &Side{battle: b, isP1: false}, true
	}
	return nil, false
}

// Side is a view over the per-side battle columns (hand, remaining,
// field card, health) so callers never branch on player1/player2.
type Side struct {
	battle *Battle
	isP1   bool
}

// Player returns the side's user id.
func (s *Side) Player() string {
	if s.isP1 {
		return s.battle.Player1
	}
	return s.battle.Player2
}

// DisplayName returns the side's username, falling back to the user id
// for records written before names were stored.
func (s *Side) DisplayName() string {
	name := s.battle.Player1Name
	if !s.isP1 {
		name = s.battle.Player2Name
	}
	if name == "" {
		return s.Player()
	}
	return name
}

// Hand returns the ids dealt at battle start (fixed for the whole battle).
func (s *Side) Hand() []string {
	if s.isP1 {
		return SplitIDs(s.battle.P1Hand)
	}
	return SplitIDs(s.battle.P2Hand)
}

// Remaining returns the ids still in hand.
func (s *Side) Remaining() []string {
	if s.isP1 {
		return SplitIDs(s.battle.P1Remaining)
	}
	return SplitIDs(s.battle.P2Remaining)
}

func (s *Side) SetRemaining(ids []string) {
	if s.isP1 {
		s.battle.P1Remaining = JoinIDs(ids)
	} else {
		s.battle.P2Remaining = JoinIDs(ids)
	}
}

// FieldCard returns the id of the card in play, or "" when none.
func (s *Side) FieldCard() string {
	if s.isP1 {
		return s.battle.P1Field
	}
	return s.battle.P2Field
}

func (s *Side) SetFieldCard(id string) {
	if s.isP1 {
		s.battle.P1Field = id
	} else {
		s.battle.P2Field = id
	}
}

func (s *Side) Health() int {
	if s.isP1 {
		return s.battle.P1Health
	}
	return s.battle.P2Health
}

func (s *Side) SetHealth(h int) {
	if s.isP1 {
		s.battle.P1Health = h
	} else {
		s.battle.P2Health = h
	}
}

// SplitIDs parses a comma-joined id list. An empty cell yields nil.
func SplitIDs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, constants.WireListSeparator)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// JoinIDs renders an id list into its comma-joined cell value.
func JoinIDs(ids []string) string {
	return strings.Join(ids, constants.WireListSeparator)
}

// FormatBool renders a boolean into its sheet cell value.
func FormatBool(v bool) string {
	if v {
		return constants.WireTrue
	}
	return constants.WireFalse
}
