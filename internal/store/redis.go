package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/robklaiss/truco/internal/game"
	apperr "github.com/robklaiss/truco/pkg/errors"
	"github.com/robklaiss/truco/pkg/logger"
)

// Redis keeps game documents as JSON envelopes under truco:game:{id} and
// private hands under truco:hand:{id}:{uid}. Update runs under WATCH so a
// concurrent commit to any read key aborts the MULTI and triggers a retry
// on a fresh snapshot. Commits are announced on truco:events:{id}.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func gameKey(gameID string) string { return "truco:game:" + gameID }

func handKey(gameID, uid string) string { return "truco:hand:" + gameID + ":" + uid }

func eventsChannel(gameID string) string { return "truco:events:" + gameID }

type gameDoc struct {
	Rev  int64      `json:"rev"`
	Game *game.Game `json:"game"`
}

type handDoc struct {
	Rev  int64             `json:"rev"`
	Hand *game.PrivateHand `json:"hand"`
}

func (s *Redis) CreateGame(ctx context.Context, g *game.Game, hands ...*game.PrivateHand) error {
	raw, err := json.Marshal(gameDoc{Rev: 1, Game: g})
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, gameKey(g.ID), raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrGameExists
	}

	for _, h := range hands {
		hraw, err := json.Marshal(handDoc{Rev: 1, Hand: h})
		if err != nil {
			return err
		}
		if err := s.rdb.Set(ctx, handKey(g.ID, h.UID), hraw, 0).Err(); err != nil {
			return err
		}
	}
	s.publish(ctx, g.ID, 1)
	return nil
}

func (s *Redis) Game(ctx context.Context, gameID string) (*game.Game, error) {
	doc, err := s.readGame(ctx, s.rdb, gameID)
	if err != nil {
		return nil, err
	}
	return doc.Game, nil
}

func (s *Redis) Hand(ctx context.Context, gameID, uid string) (*game.PrivateHand, error) {
	raw, err := s.rdb.Get(ctx, handKey(gameID, uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.ErrHandNotDealt
	}
	if err != nil {
		return nil, err
	}
	var doc handDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc.Hand, nil
}

func (s *Redis) Update(ctx context.Context, gameID string, handUIDs []string, fn func(tx *Tx) error) error {
	keys := make([]string, 0, 1+len(handUIDs))
	keys = append(keys, gameKey(gameID))
	for _, uid := range handUIDs {
		keys = append(keys, handKey(gameID, uid))
	}

	var committedRev int64
	attempt := func(rtx *redis.Tx) error {
		gdoc, err := s.readGame(ctx, rtx, gameID)
		if err != nil {
			return err
		}

		tx := &Tx{Game: gdoc.Game, hands: map[string]*game.PrivateHand{}}
		hdocs := map[string]handDoc{}
		for _, uid := range handUIDs {
			raw, err := rtx.Get(ctx, handKey(gameID, uid)).Bytes()
			if errors.Is(err, redis.Nil) {
				continue
			}
			if err != nil {
				return err
			}
			var doc handDoc
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}
			hdocs[uid] = doc
			tx.hands[uid] = doc.Hand
		}

		if err := fn(tx); err != nil {
			return err
		}
		if !tx.saveGame && len(tx.saveHands) == 0 {
			committedRev = 0
			return nil
		}

		nextRev := gdoc.Rev + 1
		graw, err := json.Marshal(gameDoc{Rev: nextRev, Game: tx.Game})
		if err != nil {
			return err
		}
		staged := map[string][]byte{}
		for uid := range tx.saveHands {
			h := tx.hands[uid]
			if h == nil {
				continue
			}
			hraw, err := json.Marshal(handDoc{Rev: hdocs[uid].Rev + 1, Hand: h})
			if err != nil {
				return err
			}
			staged[handKey(gameID, uid)] = hraw
		}

		_, err = rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, gameKey(gameID), graw, 0)
			for key, raw := range staged {
				pipe.Set(ctx, key, raw, 0)
			}
			return nil
		})
		if err != nil {
			return err
		}
		committedRev = nextRev
		return nil
	}

	for i := 0; i < updateRetries; i++ {
		err := s.rdb.Watch(ctx, attempt, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return err
		}
		if committedRev > 0 {
			s.publish(ctx, gameID, committedRev)
		}
		return nil
	}
	return apperr.ErrConflict
}

func (s *Redis) Watch(ctx context.Context, gameID string) (<-chan Event, func(), error) {
	sub := s.rdb.Subscribe(ctx, eventsChannel(gameID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}

	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range sub.Channel() {
			rev, err := strconv.ParseInt(msg.Payload, 10, 64)
			if err != nil {
				continue
			}
			select {
			case out <- Event{GameID: gameID, Rev: rev}:
			case <-ctx.Done():
				return
			}
		}
	}()
	cancel := func() { _ = sub.Close() }
	return out, cancel, nil
}

// publish announces a committed revision. The write is durable once EXEC
// lands, so a dropped announcement never fails the operation; watchers
// catch up on the next event or state read.
func (s *Redis) publish(ctx context.Context, gameID string, rev int64) {
	err := s.rdb.Publish(ctx, eventsChannel(gameID), strconv.FormatInt(rev, 10)).Err()
	if err != nil {
		logger.Log.Warn("commit event publish failed",
			zap.String("gameId", gameID),
			zap.Int64("rev", rev),
			zap.Error(err))
	}
}

func (s *Redis) readGame(ctx context.Context, c redis.Cmdable, gameID string) (*gameDoc, error) {
	raw, err := c.Get(ctx, gameKey(gameID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperr.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	var doc gameDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
