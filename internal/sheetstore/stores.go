package sheetstore

import (
	"context"

	"github.com/tflegends/legends/internal/constants"
	"github.com/tflegends/legends/internal/game"
)

// Fields is a partial row for a Patch call. It must include the record
// id; every other entry is merged field-by-field into the stored row.
type Fields map[string]interface{}

// UserStore wraps the users table.
type UserStore struct {
	c *Client
}

func NewUserStore(c *Client) *UserStore {
	return &UserStore{c: c}
}

func (s *UserStore) List(ctx context.Context) ([]game.User, error) {
	var users []game.User
	if err := s.c.List(ctx, constants.TableUsers, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindByID fetches the full user list and filters locally; the store
// offers no server-side lookup.
func (s *UserStore) FindByID(ctx context.Context, id string) (*game.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *UserStore) FindByUsername(ctx context.Context, username string) (*game.User, error) {
	users, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].Username == username {
			return &users[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

func (s *UserStore) Create(ctx context.Context, u *game.User) error {
	return s.c.Create(ctx, constants.TableUsers, []*game.User{u}, nil)
}

// Update writes the full user row.
func (s *UserStore) Update(ctx context.Context, u *game.User) error {
	return s.c.Patch(ctx, constants.TableUsers, []*game.User{u})
}

// Patch merges only the given fields into the user row.
func (s *UserStore) Patch(ctx context.Context, fields Fields) error {
	return s.c.Patch(ctx, constants.TableUsers, []Fields{fields})
}

// BattleStore wraps the battles table.
type BattleStore struct {
	c *Client
}

func NewBattleStore(c *Client) *BattleStore {
	return &BattleStore{c: c}
}

func (s *BattleStore) List(ctx context.Context) ([]game.Battle, error) {
	var battles []game.Battle
	if err := s.c.List(ctx, constants.TableBattles, &battles); err != nil {
		return nil, err
	}
	return battles, nil
}

func (s *BattleStore) FindByID(ctx context.Context, id string) (*game.Battle, error) {
	battles, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range battles {
		if battles[i].ID == id {
			return &battles[i], nil
		}
	}
	return nil, ErrRecordNotFound
}

// Create inserts the battle and returns the stored record, including any
// server-assigned fields, as the caller's new local view.
func (s *BattleStore) Create(ctx context.Context, b *game.Battle) (*game.Battle, error) {
	var created []game.Battle
	if err := s.c.Create(ctx, constants.TableBattles, []*game.Battle{b}, &created); err != nil {
		return nil, err
	}
	if len(created) == 0 {
		// Store did not echo the record; keep the submitted one.
		return b, nil
	}
	return &created[0], nil
}

// Patch merges only the given fields into the battle row. The fields
// must carry the revision the mutation was computed against; the store
// answers ErrStaleRecord when another client got there first.
func (s *BattleStore) Patch(ctx context.Context, fields Fields) error {
	return s.c.Patch(ctx, constants.TableBattles, []Fields{fields})
}

// CardStore wraps the read-only cards table.
type CardStore struct {
	c *Client
}

func NewCardStore(c *Client) *CardStore {
	return &CardStore{c: c}
}

func (s *CardStore) List(ctx context.Context) ([]game.Card, error) {
	var cards []game.Card
	if err := s.c.List(ctx, constants.TableCards, &cards); err != nil {
		return nil, err
	}
	return cards, nil
}
