package bot

import (
	"context"
	"errors"
	mrand "math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/robklaiss/truco/internal/game"
	"github.com/robklaiss/truco/internal/service/truco"
	"github.com/robklaiss/truco/internal/store"
	appErr "github.com/robklaiss/truco/pkg/errors"
	"github.com/robklaiss/truco/pkg/logger"
)

// Service drives the house bot. It watches each tracked match's change
// feed and reacts through the same transactional operations human clients
// use, so every bot move is arbitrated by the store exactly like a
// player's.
type Service struct {
	store  store.Store
	engine *game.Engine
	play   *truco.Service

	mu sync.Mutex
	// tracked lives in process memory only; bot matches open at restart
	// stay quiet until re-tracked.
	// TODO: persist tracked ids in a redis set and re-scan on Start.
	tracked map[string]bool
	ctx     context.Context
	cancel  context.CancelFunc
}

func NewService(st store.Store, engine *game.Engine, play *truco.Service) *Service {
	return &Service{
		store:   st,
		engine:  engine,
		play:    play,
		tracked: map[string]bool{},
	}
}

// Start arms the service; matches tracked before Start are picked up
// immediately.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx, s.cancel = context.WithCancel(ctx)
	for gameID := range s.tracked {
		go s.run(s.ctx, gameID)
	}
	return nil
}

func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
}

// TrackGame registers a match the bot plays in. Idempotent.
func (s *Service) TrackGame(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.tracked[gameID] {
		return
	}
	s.tracked[gameID] = true
	if s.ctx != nil {
		go s.run(s.ctx, gameID)
	}
}

func (s *Service) untrack(gameID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tracked, gameID)
}

// thinkDelay keeps the bot from answering within the same client frame.
func thinkDelay() time.Duration {
	return time.Duration(400+mrand.Intn(700)) * time.Millisecond
}

func (s *Service) run(ctx context.Context, gameID string) {
	defer s.untrack(gameID)

	events, cancel, err := s.store.Watch(ctx, gameID)
	if err != nil {
		logger.Log.Warn("bot watch failed",
			zap.String("gameId", gameID),
			zap.Error(err))
		return
	}
	defer cancel()

	// Initial kick covers moves committed before the watch was armed.
	if done := s.step(ctx, gameID); done {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
			if done := s.step(ctx, gameID); done {
				return
			}
		}
	}
}

// step reads the current state and performs at most one bot action.
// Returns true when the match no longer needs the bot.
func (s *Service) step(ctx context.Context, gameID string) bool {
	g, err := s.store.Game(ctx, gameID)
	if err != nil {
		return errors.Is(err, appErr.ErrGameNotFound)
	}
	if !g.IsBotGame() {
		return true
	}
	if g.MatchWinnerUID != "" {
		return true
	}

	act := s.decide(g)
	if act == nil {
		return false
	}

	select {
	case <-ctx.Done():
		return true
	case <-time.After(thinkDelay()):
	}

	if err := act(ctx); err != nil {
		// Conflicts and stale preconditions just mean someone moved first;
		// the next event re-evaluates.
		logger.Log.Debug("bot action skipped",
			zap.String("gameId", gameID),
			zap.Error(err))
	}
	return false
}

type action func(ctx context.Context) error

func (s *Service) decide(g *game.Game) action {
	if g.Status != game.StatusPlaying {
		return nil
	}
	if g.BotHandNo != g.HandNo {
		return nil
	}

	if cp := g.CallPending; cp != nil {
		if cp.ToUID != game.BotUID {
			return nil
		}
		return s.decideResponse(g, cp)
	}

	if g.Envido.State == game.EnvidoWaitingDeclare {
		if _, declared := g.Envido.DeclaredByUID[game.BotUID]; !declared {
			return func(ctx context.Context) error {
				_, err := s.play.DeclareEnvido(ctx, g.ID, game.BotUID)
				return err
			}
		}
		return nil
	}

	if g.TurnUID != game.BotUID {
		return nil
	}
	if open := s.maybeOpenCall(g); open != nil {
		return open
	}
	return s.chooseCard(g)
}

// decideResponse answers a pending call using the bot's actual cards.
func (s *Service) decideResponse(g *game.Game, cp *game.PendingCall) action {
	switch cp.Kind {
	case game.CallEnvido:
		score := s.botEnvidoScore(g)
		switch {
		case score >= 32 && cp.Offer != game.OfferFaltaEnvido:
			return s.callAction(g, game.CallEnvido, game.OfferFaltaEnvido)
		case score >= 29 && cp.Offer == game.OfferEnvido:
			return s.callAction(g, game.CallEnvido, game.OfferRealEnvido)
		case score >= 25:
			return s.respondAction(g, true)
		default:
			return s.respondAction(g, false)
		}
	case game.CallTruco:
		maxPow := s.maxBotPower(g)
		switch {
		case cp.OfferedValue == 2 && maxPow >= 11:
			return s.callAction(g, game.CallTruco, game.OfferRetruco)
		case cp.OfferedValue == 3 && maxPow >= 13:
			return s.callAction(g, game.CallTruco, game.OfferVale4)
		}
		accept := false
		switch cp.OfferedValue {
		case 2:
			accept = maxPow >= 8
		case 3:
			accept = maxPow >= 10
		case 4:
			accept = maxPow >= 12
		}
		return s.respondAction(g, accept)
	}
	return nil
}

// maybeOpenCall occasionally opens an envido or truco on strength, with
// probabilities tuned to feel like an opponent rather than an oracle.
func (s *Service) maybeOpenCall(g *game.Game) action {
	if !g.IsPointsMode() {
		return nil
	}

	if !g.FirstCardPlayed && !g.EnvidoPlayed && g.Envido.State == game.EnvidoNone {
		score := s.botEnvidoScore(g)
		switch {
		case score >= 32 && mrand.Float64() < 0.25:
			return s.callAction(g, game.CallEnvido, game.OfferFaltaEnvido)
		case score >= 30 && mrand.Float64() < 0.35:
			return s.callAction(g, game.CallEnvido, game.OfferRealEnvido)
		case score >= 27 && mrand.Float64() < 0.55:
			return s.callAction(g, game.CallEnvido, game.OfferEnvido)
		}
	}

	maxPow := s.maxBotPower(g)
	canRaise := g.TrucoLastRaiseUID != game.BotUID
	switch {
	case g.TrucoValue == 1 && canRaise && maxPow >= 9 && mrand.Float64() < 0.35:
		return s.callAction(g, game.CallTruco, game.OfferTruco)
	case g.TrucoValue == 2 && canRaise && maxPow >= 11 && mrand.Float64() < 0.25:
		return s.callAction(g, game.CallTruco, game.OfferRetruco)
	case g.TrucoValue == 3 && canRaise && maxPow >= 13 && mrand.Float64() < 0.18:
		return s.callAction(g, game.CallTruco, game.OfferVale4)
	}
	return nil
}

// chooseCard plays the weakest card that still beats the opponent's card
// on the table, falling back to the weakest card overall.
func (s *Service) chooseCard(g *game.Game) action {
	if len(g.BotHand) == 0 {
		return nil
	}
	catalog := s.engine.Catalog()

	oppCard := ""
	if opp := g.OtherUID(game.BotUID); opp != "" {
		oppCard = g.TrickPlays[opp]
	}

	pick := ""
	if oppCard != "" {
		oppPow := catalog.Power(oppCard)
		best := 0
		for _, id := range g.BotHand {
			if p := catalog.Power(id); p > oppPow && (pick == "" || p < best) {
				pick, best = id, p
			}
		}
	}
	if pick == "" {
		best := 0
		for _, id := range g.BotHand {
			if p := catalog.Power(id); pick == "" || p < best {
				pick, best = id, p
			}
		}
	}

	cardID := pick
	return func(ctx context.Context) error {
		_, err := s.play.Play(ctx, g.ID, game.BotUID, cardID)
		return err
	}
}

func (s *Service) callAction(g *game.Game, kind game.CallKind, offer game.CallOffer) action {
	return func(ctx context.Context) error {
		_, err := s.play.Call(ctx, g.ID, game.BotUID, kind, offer)
		return err
	}
}

func (s *Service) respondAction(g *game.Game, accept bool) action {
	return func(ctx context.Context) error {
		_, err := s.play.Respond(ctx, g.ID, game.BotUID, accept)
		return err
	}
}

func (s *Service) botEnvidoScore(g *game.Game) int {
	if len(g.BotHand) != game.HandSize {
		return 0
	}
	score, err := s.engine.Catalog().EnvidoValue(g.BotHand)
	if err != nil {
		return 0
	}
	return score
}

func (s *Service) maxBotPower(g *game.Game) int {
	max := 0
	for _, id := range g.BotHand {
		if p := s.engine.Catalog().Power(id); p > max {
			max = p
		}
	}
	return max
}
