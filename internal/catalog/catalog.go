package catalog

import (
	"context"
	"errors"
	"math/rand"

	"github.com/tflegends/legends/internal/game"
)

// ErrEmptyCatalog means the cards table held no rows at load time.
var ErrEmptyCatalog = errors.New("card catalog is empty")

// Lister fetches the full cards table.
type Lister interface {
	List(ctx context.Context) ([]game.Card, error)
}

// Catalog is the static card reference data, fetched once at startup
// and indexed by id. It is never mutated afterwards.
type Catalog struct {
	cards []game.Card
	byID  map[string]*game.Card
}

// Load fetches the card list from the store and builds the index.
func Load(ctx context.Context, store Lister) (*Catalog, error) {
	cards, err := store.List(ctx)
	if err != nil {
		return nil, err
	}
	return New(cards)
}

// New builds a catalog from an already-fetched card list.
func New(cards []game.Card) (*Catalog, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{cards: cards, byID: make(map[string]*game.Card, len(cards))}
	for i := range c.cards {
		c.byID[c.cards[i].ID] = &c.cards[i]
	}
	return c, nil
}

// Lookup returns the catalog entry for id, or nil when unknown. Unknown
// ids happen when a user row references a card removed from the sheet;
// callers skip them.
func (c *Catalog) Lookup(id string) *game.Card {
	return c.byID[id]
}

// All returns every catalog entry.
func (c *Catalog) All() []game.Card {
	return c.cards
}

// Len returns the catalog size.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// RandomIDs draws n distinct random card ids, used for the signup
// starter deal. When the catalog holds fewer than n cards every id is
// returned.
func (c *Catalog) RandomIDs(n int) []string {
	perm := rand.Perm(len(c.cards))
	if n > len(perm) {
		n = len(perm)
	}
	ids := make([]string, 0, n)
	for _, i := range perm[:n] {
		ids = append(ids, c.cards[i].ID)
	}
	return ids
}

// RandomOne picks a uniformly random catalog card, used for store
// purchases. Repeated picks of the same card are allowed: duplicates in
// a collection are multiple copies.
func (c *Catalog) RandomOne() *game.Card {
	return &c.cards[rand.Intn(len(c.cards))]
}
