package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tflegends/legends/internal/battle"
	"github.com/tflegends/legends/internal/catalog"
	"github.com/tflegends/legends/internal/constants"
	"github.com/tflegends/legends/internal/game"
	"github.com/tflegends/legends/internal/logging"
	"github.com/tflegends/legends/internal/matchmaker"
	"github.com/tflegends/legends/internal/rewards"
	"github.com/tflegends/legends/internal/sheetstore"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrNotLoggedIn        = errors.New("no user is logged in")
	ErrNotEnoughCoins     = errors.New("not enough coins")
	ErrNoBattle           = errors.New("no battle in progress")
	ErrBattleInProgress   = errors.New("a battle is already in progress")
)

// settleTimeout bounds the store calls made from a poll callback.
const settleTimeout = 30 * time.Second

// UserStore is the users-table contract the session runs against.
type UserStore interface {
	List(ctx context.Context) ([]game.User, error)
	FindByID(ctx context.Context, id string) (*game.User, error)
	FindByUsername(ctx context.Context, username string) (*game.User, error)
	Create(ctx context.Context, u *game.User) error
	Update(ctx context.Context, u *game.User) error
	Patch(ctx context.Context, fields sheetstore.Fields) error
}

// BattleLister scans the battles table for records naming this user.
type BattleLister interface {
	List(ctx context.Context) ([]game.Battle, error)
}

// Options carries the economy knobs and poll cadences.
type Options struct {
	CardCost          int
	Rewards           rewards.Config
	DashboardInterval time.Duration
}

// Session owns the per-client mutable state: the logged-in user, the
// current battle view and the active poll loops. Operations receive it
// explicitly; there are no package-level globals.
type Session struct {
	users   UserStore
	battles BattleLister
	catalog *catalog.Catalog
	machine *battle.Machine
	poller  *battle.Poller
	opts    Options

	mu              sync.Mutex
	user            *game.User
	battle          *game.Battle
	settled         bool
	cancelBattle    context.CancelFunc
	cancelDashboard context.CancelFunc

	// Notices receives user-facing messages from poll callbacks
	// (battle updates, settlement results). Optional; nil drops them.
	Notices chan<- string
}

func New(users UserStore, battles BattleLister, cat *catalog.Catalog, machine *battle.Machine, poller *battle.Poller, opts Options) *Session {
	return &Session{users: users, battles: battles, catalog: cat, machine: machine, poller: poller, opts: opts}
}

// Login finds the user by username/password in the full user list and
// marks it online. The store offers no auth primitive; credential
// lookup is a client-side filter like every other query.
func (s *Session) Login(ctx context.Context, username, password string) (*game.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	var found *game.User
	for i := range users {
		if users[i].Username == username && users[i].Password == password {
			found = &users[i]
			break
		}
	}
	if found == nil {
		return nil, ErrInvalidCredentials
	}
	if err := s.users.Patch(ctx, sheetstore.Fields{"id": found.ID, "online": game.FormatBool(true)}); err != nil {
		return nil, err
	}
	found.SetOnline(true)

	s.mu.Lock()
	s.user = found
	s.mu.Unlock()
	logging.Info("user logged in", logging.Fields{constants.LogFieldUserID: found.ID})
	return found, nil
}

// Signup creates a new user with a generated id and a starter hand of
// random cards. The caller logs in afterwards.
func (s *Session) Signup(ctx context.Context, username, password string) (*game.User, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	if _, err := s.users.FindByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, sheetstore.ErrRecordNotFound) {
		return nil, err
	}

	u := &game.User{
		ID:       uuid.NewString(),
		Username: username,
		Password: password,
		Cards:    game.JoinIDs(s.catalog.RandomIDs(game.HandSize)),
		Online:   game.FormatBool(true),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	logging.Info("user created", logging.Fields{constants.LogFieldUserID: u.ID})
	return u, nil
}

// Logout marks the user offline and stops every poll loop.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	user := s.user
	s.user = nil
	s.battle = nil
	s.stopPollsLocked()
	s.mu.Unlock()

	if user == nil {
		return nil
	}
	return s.users.Patch(ctx, sheetstore.Fields{"id": user.ID, "online": game.FormatBool(false)})
}

func (s *Session) stopPollsLocked() {
	if s.cancelBattle != nil {
		s.cancelBattle()
		s.cancelBattle = nil
	}
	if s.cancelDashboard != nil {
		s.cancelDashboard()
		s.cancelDashboard = nil
	}
}

// CurrentUser returns the logged-in user's local view, or nil.
func (s *Session) CurrentUser() *game.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// CurrentBattle returns the local battle view, or nil.
func (s *Session) CurrentBattle() *game.Battle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.battle
}

// BuyCard spends coins on one uniformly random catalog card. The full
// user row is written back, then the local view takes the new values.
func (s *Session) BuyCard(ctx context.Context) (*game.Card, error) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	if user.Coins < s.opts.CardCost {
		return nil, ErrNotEnoughCoins
	}

	card := s.catalog.RandomOne()
	updated := *user
	updated.Coins -= s.opts.CardCost
	updated.AddCardID(card.ID)
	if err := s.users.Update(ctx, &updated); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = &updated
	s.mu.Unlock()
	return card, nil
}

// RefreshUser replaces the local user view with the freshly listed row.
// Called on every dashboard poll tick; a missing row is silently stale.
func (s *Session) RefreshUser(ctx context.Context) error {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		return ErrNotLoggedIn
	}
	fresh, err := s.users.FindByID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, sheetstore.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.user = fresh
	s.mu.Unlock()
	return nil
}

// StartDashboard begins the user-record poll loop. The returned cancel
// also runs on Logout.
func (s *Session) StartDashboard(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancelDashboard != nil {
		s.cancelDashboard()
	}
	s.cancelDashboard = cancel
	s.mu.Unlock()

	go func() {
		ticker := time.NewTicker(s.opts.DashboardInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.RefreshUser(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logging.Error("dashboard poll tick failed", err, nil)
				}
				if err := s.CheckIncoming(ctx); err != nil && !errors.Is(err, context.Canceled) {
					logging.Error("incoming battle scan failed", err, nil)
				}
			}
		}
	}()
}

// StartBattle matches an opponent, creates the shared record and starts
// the battle poll loop.
func (s *Session) StartBattle(ctx context.Context) (*game.Battle, error) {
	s.mu.Lock()
	user := s.user
	inBattle := s.battle != nil && s.battle.Status == game.StatusActive
	s.mu.Unlock()
	if user == nil {
		return nil, ErrNotLoggedIn
	}
	if inBattle {
		return nil, ErrBattleInProgress
	}

	opponent, err := matchmaker.FindOpponent(ctx, s.users, user.ID)
	if err != nil {
		return nil, err
	}
	b, err := s.machine.Start(ctx, user, opponent)
	if err != nil {
		return nil, err
	}
	s.adoptBattle(b)
	return b, nil
}

// CheckIncoming scans the battle list for an active record that names
// the logged-in user. The challenged side learns about a new battle
// this way: the challenger inserts the record, and the scan (run on
// every dashboard tick) adopts it as the local view and starts the
// battle poller so both clients converge on the same record.
func (s *Session) CheckIncoming(ctx context.Context) error {
	s.mu.Lock()
	user := s.user
	current := s.battle
	s.mu.Unlock()
	if user == nil {
		return ErrNotLoggedIn
	}
	if current != nil && current.Status == game.StatusActive {
		return nil
	}

	battles, err := s.battles.List(ctx)
	if err != nil {
		return err
	}
	for i := range battles {
		b := battles[i]
		if b.Status != game.StatusActive || !b.HasPlayer(user.ID) {
			continue
		}
		if current != nil && current.ID == b.ID {
			continue
		}
		s.adoptBattle(&b)
		if side, ok := b.Side(b.Opponent(user.ID)); ok {
			s.notify(side.DisplayName() + " has challenged you to a battle!")
		}
		logging.Info("incoming battle adopted", logging.Fields{
			constants.LogFieldBattleID: b.ID,
			constants.LogFieldUserID:   user.ID,
		})
		return nil
	}
	return nil
}

// adoptBattle installs b as the local view and (re)starts the battle
// poll loop for it.
func (s *Session) adoptBattle(b *game.Battle) {
	watchCtx, cancel := context.WithCancel(context.Background())
	s.mu.Lock()
	if s.cancelBattle != nil {
		s.cancelBattle()
	}
	s.battle = b
	s.settled = false
	s.cancelBattle = cancel
	s.mu.Unlock()
	s.poller.Watch(watchCtx, b.ID, s)
}

// PlayCard plays a card from the current battle's hand.
func (s *Session) PlayCard(ctx context.Context, cardID string) error {
	s.mu.Lock()
	user, b := s.user, s.battle
	s.mu.Unlock()
	if user == nil {
		return ErrNotLoggedIn
	}
	if b == nil {
		return ErrNoBattle
	}
	return s.machine.PlayCard(ctx, b, user.ID, cardID)
}

// EndTurn resolves combat for the current battle.
func (s *Session) EndTurn(ctx context.Context) error {
	s.mu.Lock()
	user, b := s.user, s.battle
	s.mu.Unlock()
	if user == nil {
		return ErrNotLoggedIn
	}
	if b == nil {
		return ErrNoBattle
	}
	return s.machine.EndTurn(ctx, b, user.ID)
}

// BattleUpdated implements battle.Observer: the last-fetched record
// replaces the local view wholesale, then the win condition runs. The
// first client to observe a lethal threshold settles the shared record;
// each client settles its own rewards exactly once.
func (s *Session) BattleUpdated(b *game.Battle) {
	s.mu.Lock()
	if s.battle == nil || s.battle.ID != b.ID {
		s.mu.Unlock()
		return
	}
	s.battle = b
	user := s.user
	alreadySettled := s.settled
	s.mu.Unlock()
	if user == nil {
		return
	}

	winner := b.Winner
	over := b.Status == game.StatusCompleted
	if !over {
		winner, over = battle.CheckWin(b, user.ID)
	}
	if !over || alreadySettled {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), settleTimeout)
	defer cancel()

	if b.Status == game.StatusActive {
		if err := s.machine.Settle(ctx, b, winner); err != nil {
			// Another client may have settled first; the next poll
			// tick delivers the completed record.
			if !errors.Is(err, sheetstore.ErrStaleRecord) {
				logging.Error("battle settlement failed", err, logging.Fields{constants.LogFieldBattleID: b.ID})
			}
			return
		}
	}

	s.mu.Lock()
	s.settled = true
	if s.cancelBattle != nil {
		s.cancelBattle()
		s.cancelBattle = nil
	}
	s.mu.Unlock()

	// A drawn battle settles no rewards: neither side is unambiguously
	// winner or loser.
	if winner == constants.WinnerDraw {
		s.notify("The battle ended in a draw.")
		return
	}
	won := winner == user.ID
	updated, err := rewards.Settle(ctx, s.users, user, won, s.opts.Rewards)
	if err != nil {
		logging.Error("reward settlement failed", err, logging.Fields{constants.LogFieldUserID: user.ID})
		return
	}
	s.mu.Lock()
	s.user = updated
	s.mu.Unlock()
	if won {
		s.notify("You won the battle!")
	} else {
		s.notify("You lost the battle.")
	}
}

func (s *Session) notify(msg string) {
	if s.Notices == nil {
		return
	}
	select {
	case s.Notices <- msg:
	default:
	}
}
