package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robklaiss/truco/internal/game"
	"github.com/robklaiss/truco/internal/store"
	appErr "github.com/robklaiss/truco/pkg/errors"
)

func seedGame(t *testing.T, m *store.Memory, id string) *game.Game {
	t.Helper()
	g, err := game.NewGame(id, game.Player{UID: "u1", Nickname: "Ana"}, game.ModePoints, 30, 0, []string{"a", "b", "c", "d", "e", "f"})
	if err != nil {
		t.Fatalf("new game failed: %v", err)
	}
	hand := &game.PrivateHand{UID: "u1", HandNo: 1, Hand: []string{"a", "b", "c"}}
	if err := m.CreateGame(context.Background(), g, hand); err != nil {
		t.Fatalf("create game failed: %v", err)
	}
	return g
}

func TestCreateGameRejectsDuplicates(t *testing.T) {
	m := store.NewMemory()
	g := seedGame(t, m, "GAME01")

	err := m.CreateGame(context.Background(), g)
	if !errors.Is(err, appErr.ErrGameExists) {
		t.Fatalf("expected ErrGameExists, got %v", err)
	}
}

func TestGameAndHandReads(t *testing.T) {
	m := store.NewMemory()
	seedGame(t, m, "GAME01")
	ctx := context.Background()

	g, err := m.Game(ctx, "GAME01")
	if err != nil {
		t.Fatalf("read game failed: %v", err)
	}
	if g.ID != "GAME01" || len(g.Players) != 1 {
		t.Fatalf("unexpected game: %+v", g)
	}

	h, err := m.Hand(ctx, "GAME01", "u1")
	if err != nil {
		t.Fatalf("read hand failed: %v", err)
	}
	if h.HandNo != 1 || len(h.Hand) != 3 {
		t.Fatalf("unexpected hand: %+v", h)
	}

	if _, err := m.Game(ctx, "NOPE"); !errors.Is(err, appErr.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
	if _, err := m.Hand(ctx, "GAME01", "u2"); !errors.Is(err, appErr.ErrHandNotDealt) {
		t.Fatalf("expected ErrHandNotDealt, got %v", err)
	}
}

func TestUpdateCommitsOnlyStagedWrites(t *testing.T) {
	m := store.NewMemory()
	seedGame(t, m, "GAME01")
	ctx := context.Background()

	// Unstaged mutation must not persist.
	err := m.Update(ctx, "GAME01", []string{"u1"}, func(tx *store.Tx) error {
		tx.Game.Status = game.StatusFinished
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	g, _ := m.Game(ctx, "GAME01")
	if g.Status != game.StatusWaiting {
		t.Fatalf("unstaged write leaked: status=%s", g.Status)
	}

	// Staged mutation persists game and hand together.
	err = m.Update(ctx, "GAME01", []string{"u1"}, func(tx *store.Tx) error {
		tx.Game.Status = game.StatusPlaying
		h := tx.Hand("u1")
		h.Hand = h.Hand[1:]
		tx.SaveGame()
		tx.SaveHand("u1")
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	g, _ = m.Game(ctx, "GAME01")
	if g.Status != game.StatusPlaying {
		t.Fatalf("staged game write lost: status=%s", g.Status)
	}
	h, _ := m.Hand(ctx, "GAME01", "u1")
	if len(h.Hand) != 2 {
		t.Fatalf("staged hand write lost: %v", h.Hand)
	}
}

func TestUpdateErrorAbortsCommit(t *testing.T) {
	m := store.NewMemory()
	seedGame(t, m, "GAME01")
	ctx := context.Background()

	wantErr := errors.New("boom")
	err := m.Update(ctx, "GAME01", nil, func(tx *store.Tx) error {
		tx.Game.Status = game.StatusFinished
		tx.SaveGame()
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected closure error, got %v", err)
	}
	g, _ := m.Game(ctx, "GAME01")
	if g.Status != game.StatusWaiting {
		t.Fatalf("aborted write leaked: status=%s", g.Status)
	}
}

func TestPutHandDealsNewHand(t *testing.T) {
	m := store.NewMemory()
	seedGame(t, m, "GAME01")
	ctx := context.Background()

	err := m.Update(ctx, "GAME01", []string{"u2"}, func(tx *store.Tx) error {
		if tx.Hand("u2") != nil {
			t.Fatalf("expected no hand for u2 yet")
		}
		tx.PutHand(&game.PrivateHand{UID: "u2", HandNo: 1, Hand: []string{"d", "e", "f"}})
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	h, err := m.Hand(ctx, "GAME01", "u2")
	if err != nil {
		t.Fatalf("read hand failed: %v", err)
	}
	if len(h.Hand) != 3 || h.Hand[0] != "d" {
		t.Fatalf("unexpected hand: %+v", h)
	}
}

func TestUpdateRetriesOnConflictingCommit(t *testing.T) {
	m := store.NewMemory()
	seedGame(t, m, "GAME01")
	ctx := context.Background()

	attempts := 0
	err := m.Update(ctx, "GAME01", nil, func(tx *store.Tx) error {
		attempts++
		if attempts == 1 {
			// A competing writer lands between this snapshot and its commit.
			conflict := m.Update(ctx, "GAME01", nil, func(inner *store.Tx) error {
				inner.Game.Status = game.StatusPlaying
				inner.SaveGame()
				return nil
			})
			if conflict != nil {
				t.Fatalf("competing update failed: %v", conflict)
			}
		}
		tx.Game.HandNo = 2
		tx.SaveGame()
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected one retry after the conflict, got %d attempts", attempts)
	}

	g, _ := m.Game(ctx, "GAME01")
	if g.HandNo != 2 || g.Status != game.StatusPlaying {
		t.Fatalf("retry lost a write: handNo=%d status=%s", g.HandNo, g.Status)
	}
}

func TestUpdateGivesUpAfterRepeatedConflicts(t *testing.T) {
	m := store.NewMemory()
	seedGame(t, m, "GAME01")
	ctx := context.Background()

	attempts := 0
	err := m.Update(ctx, "GAME01", nil, func(tx *store.Tx) error {
		attempts++
		conflict := m.Update(ctx, "GAME01", nil, func(inner *store.Tx) error {
			inner.Game.HandNo++
			inner.SaveGame()
			return nil
		})
		if conflict != nil {
			t.Fatalf("competing update failed: %v", conflict)
		}
		tx.Game.Status = game.StatusFinished
		tx.SaveGame()
		return nil
	})
	if !errors.Is(err, appErr.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if attempts != 5 {
		t.Fatalf("expected the full retry budget, got %d attempts", attempts)
	}

	g, _ := m.Game(ctx, "GAME01")
	if g.Status == game.StatusFinished {
		t.Fatalf("conflicted write must not land")
	}
}

func TestWatchDeliversCommitEvents(t *testing.T) {
	m := store.NewMemory()
	seedGame(t, m, "GAME01")
	ctx := context.Background()

	events, cancel, err := m.Watch(ctx, "GAME01")
	if err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	defer cancel()

	err = m.Update(ctx, "GAME01", nil, func(tx *store.Tx) error {
		tx.Game.Status = game.StatusPlaying
		tx.SaveGame()
		return nil
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	select {
	case ev := <-events:
		if ev.GameID != "GAME01" || ev.Rev != 2 {
			t.Fatalf("unexpected event: %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("no event delivered")
	}

	// No-op updates produce no events.
	if err := m.Update(ctx, "GAME01", nil, func(tx *store.Tx) error { return nil }); err != nil {
		t.Fatalf("noop update failed: %v", err)
	}
	select {
	case ev := <-events:
		t.Fatalf("unexpected event for noop update: %+v", ev)
	case <-time.After(50 * time.Millisecond):
	}
}
