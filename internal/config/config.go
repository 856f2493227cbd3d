package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/tflegends/legends/internal/game"
)

type cardEntry struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Faction string  `json:"faction"`
	Attack  int     `json:"attack"`
	Health  int     `json:"health"`
	Defense int     `json:"defense"`
	Rarity  string  `json:"rarity"`
	Bonus   float64 `json:"bonus"`
	URL     string  `json:"url"`
}

type rawConfig struct {
	APIBaseURL           string `json:"api_base_url"`
	BattlePollSeconds    int    `json:"battle_poll_seconds"`
	DashboardPollSeconds int    `json:"dashboard_poll_seconds"`
	CardCost             int    `json:"card_cost"`
	WinCoins             int    `json:"win_coins"`
	ConsolationCoins     int    `json:"consolation_coins"`
	Server               *struct {
		Address string `json:"address"`
		DBPath  string `json:"db_path"`
	} `json:"server"`
	// Optional card catalog used to seed the bundled record store.
	CardList []cardEntry `json:"card_list"`
}

// Loaded contains the parsed configuration for both the client and the
// bundled record store.
type Loaded struct {
	// APIBaseURL is the record store base URL, one path segment per
	// table (e.g. https://host/api).
	APIBaseURL string
	// BattlePollInterval is the cadence of the battle record poll while
	// a battle is active.
	BattlePollInterval time.Duration
	// DashboardPollInterval is the cadence of the user record poll
	// while a dashboard session is open.
	DashboardPollInterval time.Duration
	// CardCost is the store price of one random card.
	CardCost int
	// WinCoins and ConsolationCoins are the settlement amounts.
	WinCoins         int
	ConsolationCoins int
	// ServerAddress and DBPath configure the bundled record store.
	ServerAddress string
	DBPath        string
	// SeedCards seed the store's cards table on first run.
	SeedCards []game.Card
}

// Load reads the configuration file at path and applies defaults.
func Load(path string) (*Loaded, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var rc rawConfig
	if err := json.Unmarshal(b, &rc); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	out := &Loaded{
		APIBaseURL:            strings.TrimRight(strings.TrimSpace(rc.APIBaseURL), "/"),
		BattlePollInterval:    3 * time.Second,
		DashboardPollInterval: 5 * time.Second,
		CardCost:              50,
		WinCoins:              20,
		ConsolationCoins:      rc.ConsolationCoins,
		ServerAddress:         ":8080",
		DBPath:                "./data/legends.db",
	}
	if rc.BattlePollSeconds > 0 {
		out.BattlePollInterval = time.Duration(rc.BattlePollSeconds) * time.Second
	}
	if rc.DashboardPollSeconds > 0 {
		out.DashboardPollInterval = time.Duration(rc.DashboardPollSeconds) * time.Second
	}
	if rc.CardCost > 0 {
		out.CardCost = rc.CardCost
	}
	if rc.WinCoins > 0 {
		out.WinCoins = rc.WinCoins
	}
	if rc.Server != nil {
		if rc.Server.Address != "" {
			out.ServerAddress = rc.Server.Address
		}
		if rc.Server.DBPath != "" {
			out.DBPath = rc.Server.DBPath
		}
	}

	seen := make(map[string]struct{}, len(rc.CardList))
	for _, e := range rc.CardList {
		if e.ID == "" || e.Name == "" {
			return nil, fmt.Errorf("config file %s: card entry missing 'id' or 'name'", path)
		}
		if _, dup := seen[e.ID]; dup {
			return nil, fmt.Errorf("config file %s: duplicate card id '%s'", path, e.ID)
		}
		seen[e.ID] = struct{}{}
		out.SeedCards = append(out.SeedCards, game.Card{
			ID:       e.ID,
			Name:     e.Name,
			Faction:  e.Faction,
			Attack:   e.Attack,
			Health:   e.Health,
			Defense:  e.Defense,
			Rarity:   e.Rarity,
			Bonus:    e.Bonus,
			ImageURL: e.URL,
		})
	}
	return out, nil
}
