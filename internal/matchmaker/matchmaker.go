package matchmaker

import (
	"context"
	"errors"
	"math/rand"

	"github.com/tflegends/legends/internal/game"
)

// ErrNoOpponents means no other user is currently online. It is a
// normal outcome reported to the player, not a failure.
var ErrNoOpponents = errors.New("no opponents available")

// UserLister fetches the full users table. The list is always fetched
// fresh so presence flags are current.
type UserLister interface {
	List(ctx context.Context) ([]game.User, error)
}

// FindOpponent picks a uniformly random online user other than the
// current one.
func FindOpponent(ctx context.Context, users UserLister, currentUserID string) (*game.User, error) {
	list, err := users.List(ctx)
	if err != nil {
		return nil, err
	}
	eligible := make([]*game.User, 0, len(list))
	for i := range list {
		if list[i].ID != currentUserID && list[i].IsOnline() {
			eligible = append(eligible, &list[i])
		}
	}
	if len(eligible) == 0 {
		return nil, ErrNoOpponents
	}
	return eligible[rand.Intn(len(eligible))], nil
}
