package store

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/robklaiss/truco/internal/game"
	apperr "github.com/robklaiss/truco/pkg/errors"
)

// Memory is the in-process backend used by tests and single-node runs. It
// runs the same snapshot, mutate, compare-and-swap protocol as the Redis
// backend: the closure executes outside the lock, and a commit only lands
// when the revision is unchanged since the snapshot.
type Memory struct {
	mu      sync.Mutex
	games   map[string]*memEntry
	watch   map[string]map[int]chan Event
	watchID int
}

type memEntry struct {
	rev   int64
	game  []byte
	hands map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{
		games: map[string]*memEntry{},
		watch: map[string]map[int]chan Event{},
	}
}

func (m *Memory) CreateGame(ctx context.Context, g *game.Game, hands ...*game.PrivateHand) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.games[g.ID]; ok {
		return apperr.ErrGameExists
	}
	entry := &memEntry{rev: 1, game: raw, hands: map[string][]byte{}}
	for _, h := range hands {
		hraw, err := json.Marshal(h)
		if err != nil {
			return err
		}
		entry.hands[h.UID] = hraw
	}
	m.games[g.ID] = entry
	m.notifyLocked(g.ID, entry.rev)
	return nil
}

func (m *Memory) Game(ctx context.Context, gameID string) (*game.Game, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return nil, apperr.ErrGameNotFound
	}
	var g game.Game
	if err := json.Unmarshal(entry.game, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

func (m *Memory) Hand(ctx context.Context, gameID, uid string) (*game.PrivateHand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.games[gameID]
	if !ok {
		return nil, apperr.ErrGameNotFound
	}
	raw, ok := entry.hands[uid]
	if !ok {
		return nil, apperr.ErrHandNotDealt
	}
	var h game.PrivateHand
	if err := json.Unmarshal(raw, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

func (m *Memory) Update(ctx context.Context, gameID string, handUIDs []string, fn func(tx *Tx) error) error {
	for i := 0; i < updateRetries; i++ {
		committed, err := m.tryUpdate(gameID, handUIDs, fn)
		if err != nil {
			return err
		}
		if committed {
			return nil
		}
	}
	return apperr.ErrConflict
}

// tryUpdate runs one optimistic attempt. A false return with a nil error
// means another writer committed between snapshot and commit.
func (m *Memory) tryUpdate(gameID string, handUIDs []string, fn func(tx *Tx) error) (bool, error) {
	m.mu.Lock()
	entry, ok := m.games[gameID]
	if !ok {
		m.mu.Unlock()
		return false, apperr.ErrGameNotFound
	}
	snapRev := entry.rev
	gameRaw := entry.game
	handRaws := make(map[string][]byte, len(handUIDs))
	for _, uid := range handUIDs {
		if raw, ok := entry.hands[uid]; ok {
			handRaws[uid] = raw
		}
	}
	m.mu.Unlock()

	tx := &Tx{hands: map[string]*game.PrivateHand{}}
	g := &game.Game{}
	if err := json.Unmarshal(gameRaw, g); err != nil {
		return false, err
	}
	tx.Game = g
	for uid, raw := range handRaws {
		var h game.PrivateHand
		if err := json.Unmarshal(raw, &h); err != nil {
			return false, err
		}
		tx.hands[uid] = &h
	}

	if err := fn(tx); err != nil {
		return false, err
	}
	if !tx.saveGame && len(tx.saveHands) == 0 {
		return true, nil
	}

	var stagedGame []byte
	if tx.saveGame {
		raw, err := json.Marshal(tx.Game)
		if err != nil {
			return false, err
		}
		stagedGame = raw
	}
	stagedHands := map[string][]byte{}
	for uid := range tx.saveHands {
		h := tx.hands[uid]
		if h == nil {
			continue
		}
		raw, err := json.Marshal(h)
		if err != nil {
			return false, err
		}
		stagedHands[uid] = raw
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.rev != snapRev {
		return false, nil
	}
	if stagedGame != nil {
		entry.game = stagedGame
	}
	for uid, raw := range stagedHands {
		entry.hands[uid] = raw
	}
	entry.rev++
	m.notifyLocked(gameID, entry.rev)
	return true, nil
}

func (m *Memory) Watch(ctx context.Context, gameID string) (<-chan Event, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.watch[gameID] == nil {
		m.watch[gameID] = map[int]chan Event{}
	}
	m.watchID++
	id := m.watchID
	ch := make(chan Event, 16)
	m.watch[gameID][id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if subs := m.watch[gameID]; subs != nil {
				delete(subs, id)
			}
			close(ch)
		})
	}
	if ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return ch, cancel, nil
}

// notifyLocked fans a commit event out to watchers without blocking the
// committer; slow consumers drop events and resync from the document.
func (m *Memory) notifyLocked(gameID string, rev int64) {
	for _, ch := range m.watch[gameID] {
		select {
		case ch <- Event{GameID: gameID, Rev: rev}:
		default:
		}
	}
}
