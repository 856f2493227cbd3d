package rewards

import (
	"context"

	"github.com/tflegends/legends/internal/constants"
	"github.com/tflegends/legends/internal/game"
	"github.com/tflegends/legends/internal/logging"
	"github.com/tflegends/legends/internal/sheetstore"
)

// Config holds the reward amounts. The consolation amount on a loss has
// varied historically, so it is configured rather than hard-coded.
type Config struct {
	WinCoins         int
	ConsolationCoins int
}

// DefaultConfig matches the current live values.
func DefaultConfig() Config {
	return Config{WinCoins: 20, ConsolationCoins: 0}
}

// UserStore is the users-table contract settlement runs against.
type UserStore interface {
	Patch(ctx context.Context, fields sheetstore.Fields) error
	FindByID(ctx context.Context, id string) (*game.User, error)
}

// Settle records a battle outcome on the user's row and re-fetches it
// so the local view matches whatever the store holds after the patch.
// Drawn battles never reach here: with no unambiguous winner or loser
// there is nothing to settle.
func Settle(ctx context.Context, users UserStore, user *game.User, won bool, cfg Config) (*game.User, error) {
	fields := sheetstore.Fields{"id": user.ID}
	if won {
		fields["wins"] = user.Wins + 1
		fields["coins"] = user.Coins + cfg.WinCoins
	} else {
		fields["losses"] = user.Losses + 1
		if cfg.ConsolationCoins > 0 {
			fields["coins"] = user.Coins + cfg.ConsolationCoins
		}
	}
	if err := users.Patch(ctx, fields); err != nil {
		return nil, err
	}

	updated, err := users.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	logging.Info("rewards settled", logging.Fields{
		constants.LogFieldUserID: user.ID,
		"won":                    won,
		"coins":                  updated.Coins,
	})
	return updated, nil
}
