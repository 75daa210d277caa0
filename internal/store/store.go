package store

import (
	"context"

	"github.com/robklaiss/truco/internal/game"
)

// Event announces a committed change to a game document. Rev is a
// monotonically increasing commit counter; consumers re-read the document
// rather than trusting event payloads.
type Event struct {
	GameID string `json:"gameId"`
	Rev    int64  `json:"rev"`
}

// Tx is the snapshot handed to an Update closure: the game document plus
// the private hands the caller asked to load, all safe to mutate. Nothing
// is written back unless the closure marks it saved.
type Tx struct {
	Game *game.Game

	hands     map[string]*game.PrivateHand
	saveGame  bool
	saveHands map[string]bool
}

// Hand returns the loaded private hand for uid, nil when none exists yet.
func (tx *Tx) Hand(uid string) *game.PrivateHand {
	return tx.hands[uid]
}

// SaveGame stages the game document for commit.
func (tx *Tx) SaveGame() { tx.saveGame = true }

// SaveHand stages uid's private hand for commit. The closure may first
// replace the hand via PutHand when dealing.
func (tx *Tx) SaveHand(uid string) {
	if tx.saveHands == nil {
		tx.saveHands = map[string]bool{}
	}
	tx.saveHands[uid] = true
}

// PutHand installs a freshly dealt hand into the snapshot and stages it.
func (tx *Tx) PutHand(h *game.PrivateHand) {
	if tx.hands == nil {
		tx.hands = map[string]*game.PrivateHand{}
	}
	tx.hands[h.UID] = h
	tx.SaveHand(h.UID)
}

// Store keeps the shared game documents and private hands. All mutation
// goes through Update, whose closure sees a consistent snapshot and whose
// staged writes commit only if nothing it read changed underneath
// (optimistic concurrency, bounded retries, ErrConflict when exhausted).
type Store interface {
	// CreateGame installs a new game and its initial private hands.
	// Fails with ErrGameExists when the id is taken.
	CreateGame(ctx context.Context, g *game.Game, hands ...*game.PrivateHand) error

	// Game reads the current game document. ErrGameNotFound when absent.
	Game(ctx context.Context, gameID string) (*game.Game, error)

	// Hand reads uid's current private hand. ErrHandNotDealt when absent.
	Hand(ctx context.Context, gameID, uid string) (*game.PrivateHand, error)

	// Update runs fn against a snapshot of the game and the given private
	// hands, then commits whatever fn staged. A retriable conflict re-runs
	// fn on a fresh snapshot; fn must therefore be free of side effects
	// beyond the snapshot.
	Update(ctx context.Context, gameID string, handUIDs []string, fn func(tx *Tx) error) error

	// Watch streams commit events for one game until cancel is called or
	// ctx ends.
	Watch(ctx context.Context, gameID string) (<-chan Event, func(), error)
}

// updateRetries bounds optimistic-commit attempts before surfacing
// ErrConflict to the caller.
const updateRetries = 5
