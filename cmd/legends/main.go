package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/tflegends/legends/internal/battle"
	"github.com/tflegends/legends/internal/catalog"
	"github.com/tflegends/legends/internal/config"
	"github.com/tflegends/legends/internal/constants"
	"github.com/tflegends/legends/internal/game"
	"github.com/tflegends/legends/internal/logging"
	"github.com/tflegends/legends/internal/rewards"
	"github.com/tflegends/legends/internal/session"
	"github.com/tflegends/legends/internal/sheetstore"
	"github.com/tflegends/legends/internal/stats"
)

func main() {
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./legends_config.json"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Fatal("Missing or invalid legends configuration", err, logging.Fields{"config_path": configPath})
	}
	baseURL := cfg.APIBaseURL
	if v := os.Getenv(constants.EnvAPIBase); v != "" {
		baseURL = v
	}
	if baseURL == "" {
		logging.Fatal("Record store base URL not configured", nil, logging.Fields{"hint": "set api_base_url in the config or " + constants.EnvAPIBase})
	}

	ctx := context.Background()
	client := sheetstore.NewClient(baseURL)
	users := sheetstore.NewUserStore(client)
	battles := sheetstore.NewBattleStore(client)
	cards := sheetstore.NewCardStore(client)

	cat, err := catalog.Load(ctx, cards)
	if err != nil {
		logging.Fatal("Failed to load card catalog", err, nil)
	}

	machine := battle.NewMachine(battles, cat)
	poller := battle.NewPoller(battles, cfg.BattlePollInterval)
	sess := session.New(users, battles, cat, machine, poller, session.Options{
		CardCost:          cfg.CardCost,
		Rewards:           rewards.Config{WinCoins: cfg.WinCoins, ConsolationCoins: cfg.ConsolationCoins},
		DashboardInterval: cfg.DashboardPollInterval,
	})

	notices := make(chan string, 8)
	sess.Notices = notices
	go func() {
		for msg := range notices {
			fmt.Println("\n*", msg)
			fmt.Print("> ")
		}
	}()

	fmt.Println("tflegends - type 'help' for commands")
	runShell(ctx, sess, cat)

	if err := sess.Logout(ctx); err != nil {
		logging.Error("logout failed", err, nil)
	}
}

func runShell(ctx context.Context, sess *session.Session, cat *catalog.Catalog) {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Print("> ")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		args := strings.Fields(line)
		if len(args) == 0 {
			fmt.Print("> ")
			continue
		}
		switch args[0] {
		case "help":
			printHelp()
		case "signup":
			if len(args) != 3 {
				fmt.Println("usage: signup <username> <password>")
				break
			}
			if _, err := sess.Signup(ctx, args[1], args[2]); err != nil {
				fmt.Println("signup failed:", err)
				break
			}
			fmt.Println("account created, you can now log in")
		case "login":
			if len(args) != 3 {
				fmt.Println("usage: login <username> <password>")
				break
			}
			u, err := sess.Login(ctx, args[1], args[2])
			if err != nil {
				fmt.Println("login failed:", err)
				break
			}
			sess.StartDashboard(ctx)
			fmt.Printf("welcome %s (%d coins, %dW/%dL)\n", u.Username, u.Coins, u.Wins, u.Losses)
		case "collection":
			printCollection(sess, cat)
		case "buy":
			card, err := sess.BuyCard(ctx)
			if err != nil {
				fmt.Println("purchase failed:", err)
				break
			}
			fmt.Printf("you got a new card: %s!\n", card.Name)
		case "battle":
			b, err := sess.StartBattle(ctx)
			if err != nil {
				fmt.Println("could not start a battle:", err)
				break
			}
			fmt.Printf("battle %s against %s - it is your move\n", b.ID, b.Player2Name)
		case "play":
			if len(args) != 2 {
				fmt.Println("usage: play <cardID>")
				break
			}
			if err := sess.PlayCard(ctx, args[1]); err != nil {
				fmt.Println("play rejected:", err)
				break
			}
			printBattle(sess, cat)
		case "end":
			if err := sess.EndTurn(ctx); err != nil {
				fmt.Println("end turn rejected:", err)
				break
			}
			printBattle(sess, cat)
		case "status":
			printBattle(sess, cat)
		case "logout":
			if err := sess.Logout(ctx); err != nil {
				fmt.Println("logout failed:", err)
			}
		case "quit", "exit":
			return
		default:
			fmt.Println("unknown command, type 'help'")
		}
		fmt.Print("> ")
	}
}

func printHelp() {
	fmt.Println(`commands:
  signup <username> <password>  create an account with a starter hand
  login <username> <password>   log in and go online
  collection                    show your cards
  buy                           buy a random card from the store
  battle                        challenge a random online player
  play <cardID>                 put a card from your hand in play
  end                           end your turn and resolve combat
  status                        show the current battle
  logout                        go offline
  quit                          leave`)
}

func printCollection(sess *session.Session, cat *catalog.Catalog) {
	u := sess.CurrentUser()
	if u == nil {
		fmt.Println("log in first")
		return
	}
	fmt.Printf("%s - %d coins\n", u.Username, u.Coins)
	for _, id := range u.CardIDs() {
		card := cat.Lookup(id)
		if card == nil {
			continue
		}
		printCard(card)
	}
}

func printCard(card *game.Card) {
	es := stats.Resolve(card)
	marker := ""
	if es.Modified {
		marker = " *"
	}
	fmt.Printf("  [%s] %s (%s) atk:%d hp:%d def:%d%s\n",
		card.ID, card.Name, card.Faction, es.Attack, es.Health, es.Defense, marker)
}

func printBattle(sess *session.Session, cat *catalog.Catalog) {
	u := sess.CurrentUser()
	b := sess.CurrentBattle()
	if u == nil || b == nil {
		fmt.Println("no battle in progress")
		return
	}
	mine, ok := b.Side(u.ID)
	if !ok {
		fmt.Println("no battle in progress")
		return
	}
	theirs, _ := b.Side(b.Opponent(u.ID))

	fmt.Printf("battle %s [%s]\n", b.ID, b.Status)
	fmt.Printf("  you: %d hp, field: %s\n", mine.Health(), fieldName(cat, mine.FieldCard()))
	fmt.Printf("  opponent: %d hp, field: %s\n", theirs.Health(), fieldName(cat, theirs.FieldCard()))
	if b.Turn == u.ID {
		fmt.Println("  it is your turn; your hand:")
		for _, id := range mine.Remaining() {
			if card := cat.Lookup(id); card != nil {
				printCard(card)
			}
		}
	} else {
		fmt.Println("  waiting for the opponent")
	}
	if b.Log != "" {
		fmt.Println("  log:", b.Log)
	}
	if b.Winner != "" {
		fmt.Println("  winner:", b.Winner)
	}
}

func fieldName(cat *catalog.Catalog, id string) string {
	if id == "" {
		return "(none)"
	}
	if card := cat.Lookup(id); card != nil {
		return card.Name
	}
	return id
}
