package truco

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/robklaiss/truco/internal/game"
	"github.com/robklaiss/truco/internal/store"
	appErr "github.com/robklaiss/truco/pkg/errors"
	"github.com/robklaiss/truco/pkg/logger"
	"github.com/robklaiss/truco/pkg/utils/random"
)

const (
	gameCodeLength     = 6
	createCodeAttempts = 5
)

// Reporter receives finished-match results. Satisfied by the leaderboard
// service; nil disables reporting.
type Reporter interface {
	ReportMatch(ctx context.Context, res ReportedMatch) error
}

// ReportedMatch mirrors leaderboard.MatchResult without importing it, so
// the dependency points outward.
type ReportedMatch struct {
	MatchID      string
	Mode         game.MatchMode
	WinnerUID    string
	LoserUID     string
	TargetPoints int
	HandCount    int
	Players      []game.Player
	PointsByUID  map[string]int
}

// Notifier learns about matches a bot participates in. Satisfied by the
// bot service; nil disables bot play.
type Notifier interface {
	TrackGame(gameID string)
}

type Service struct {
	store  store.Store
	engine *game.Engine

	defaultTargetPoints int
	defaultTargetWins   int

	reporter Reporter
	bot      Notifier
}

func NewService(st store.Store, engine *game.Engine, defaultTargetPoints, defaultTargetWins int) *Service {
	return &Service{
		store:               st,
		engine:              engine,
		defaultTargetPoints: defaultTargetPoints,
		defaultTargetWins:   defaultTargetWins,
	}
}

// SetReporter wires finished-match reporting. Called once at container
// build time.
func (s *Service) SetReporter(r Reporter) { s.reporter = r }

// SetBotNotifier wires bot-match tracking. Called once at container build
// time.
func (s *Service) SetBotNotifier(n Notifier) { s.bot = n }

// StateView is what a participant sees: the deck-redacted shared document
// plus their own private hand when dealt.
type StateView struct {
	Game *game.Game        `json:"game"`
	Hand *game.PrivateHand `json:"hand,omitempty"`
}

type CreateMatchRequest struct {
	Mode         string
	TargetPoints int
	TargetWins   int
}

// CreateMatch opens a new match with the caller seated as mano. The match
// id doubles as the join code the creator shares.
func (s *Service) CreateMatch(ctx context.Context, uid, nickname string, req CreateMatchRequest) (*StateView, error) {
	mode := game.MatchMode(strings.ToLower(strings.TrimSpace(req.Mode)))
	if mode == "" {
		mode = game.ModePoints
	}
	targetPoints := req.TargetPoints
	if targetPoints == 0 {
		targetPoints = s.defaultTargetPoints
	}
	targetWins := req.TargetWins
	if targetWins == 0 {
		targetWins = s.defaultTargetWins
	}

	deck := s.engine.Catalog().ShuffledDeck()
	creator := game.Player{UID: uid, Nickname: nickname}

	for i := 0; i < createCodeAttempts; i++ {
		id := random.Code(gameCodeLength)
		g, err := game.NewGame(id, creator, mode, targetPoints, targetWins, deck)
		if err != nil {
			return nil, err
		}
		err = s.store.CreateGame(ctx, g)
		if errors.Is(err, appErr.ErrGameExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		logger.Log.Info("match created",
			zap.String("gameId", g.ID),
			zap.String("uid", uid),
			zap.String("mode", string(mode)))
		return &StateView{Game: g.Redacted()}, nil
	}
	return nil, appErr.ErrGameExists
}

// CreateBotMatch opens a points-mode match against the bot, dealt and
// already playing.
func (s *Service) CreateBotMatch(ctx context.Context, uid, nickname string, targetPoints int) (*StateView, error) {
	if s.bot == nil {
		return nil, appErr.ErrCallsDisabled
	}
	if targetPoints == 0 {
		targetPoints = s.defaultTargetPoints
	}
	deck := s.engine.Catalog().ShuffledDeck()
	creator := game.Player{UID: uid, Nickname: nickname}

	for i := 0; i < createCodeAttempts; i++ {
		id := random.Code(gameCodeLength)
		g, hand, err := game.NewBotGame(id, creator, targetPoints, deck)
		if err != nil {
			return nil, err
		}
		err = s.store.CreateGame(ctx, g, hand)
		if errors.Is(err, appErr.ErrGameExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.bot.TrackGame(g.ID)
		logger.Log.Info("bot match created",
			zap.String("gameId", g.ID),
			zap.String("uid", uid))
		return &StateView{Game: g.Redacted(), Hand: hand}, nil
	}
	return nil, appErr.ErrGameExists
}

// Join seats the caller into a waiting match and deals their hand if the
// match starts.
func (s *Service) Join(ctx context.Context, gameID, uid, nickname string) (*StateView, error) {
	view := &StateView{}
	err := s.store.Update(ctx, gameID, []string{uid}, func(tx *store.Tx) error {
		g := tx.Game
		if _, err := s.engine.Join(g, uid, nickname); err != nil {
			return err
		}
		if err := s.ensureHand(tx, uid); err != nil {
			return err
		}
		tx.SaveGame()
		view.Game = g.Redacted()
		view.Hand = tx.Hand(uid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// GetState returns the caller's view, lazily dealing their hand for the
// current hand number. Dealing on read keeps hand documents consistent
// with a shared document that may have advanced underneath the client.
func (s *Service) GetState(ctx context.Context, gameID, uid string) (*StateView, error) {
	view := &StateView{}
	err := s.store.Update(ctx, gameID, []string{uid}, func(tx *store.Tx) error {
		g := tx.Game
		if !g.HasPlayer(uid) {
			return appErr.ErrNotParticipant
		}
		if err := s.ensureHand(tx, uid); err != nil {
			return err
		}
		view.Game = g.Redacted()
		view.Hand = tx.Hand(uid)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

// Play puts the caller's card on the table.
func (s *Service) Play(ctx context.Context, gameID, uid, cardID string) (*StateView, error) {
	return s.mutate(ctx, gameID, uid, func(tx *store.Tx) error {
		if err := s.ensureHand(tx, uid); err != nil {
			return err
		}
		if err := s.engine.EnsureBotHand(tx.Game); err != nil {
			return err
		}
		if err := s.engine.PlayCard(tx.Game, tx.Hand(uid), uid, cardID); err != nil {
			return err
		}
		tx.SaveGame()
		if uid != game.BotUID {
			tx.SaveHand(uid)
		}
		return nil
	})
}

// Call opens or raises a truco or envido call.
func (s *Service) Call(ctx context.Context, gameID, uid string, kind game.CallKind, offer game.CallOffer) (*StateView, error) {
	return s.mutate(ctx, gameID, uid, func(tx *store.Tx) error {
		if err := s.engine.OpenOrRaise(tx.Game, uid, kind, offer); err != nil {
			return err
		}
		tx.SaveGame()
		return nil
	})
}

// Respond accepts or declines the pending call.
func (s *Service) Respond(ctx context.Context, gameID, uid string, accept bool) (*StateView, error) {
	return s.mutate(ctx, gameID, uid, func(tx *store.Tx) error {
		if err := s.engine.Respond(tx.Game, uid, accept); err != nil {
			return err
		}
		tx.SaveGame()
		return nil
	})
}

// DeclareEnvido computes the caller's envido score from their full dealt
// hand and submits it. Clients never pick their own number.
func (s *Service) DeclareEnvido(ctx context.Context, gameID, uid string) (*StateView, error) {
	return s.mutate(ctx, gameID, uid, func(tx *store.Tx) error {
		g := tx.Game
		if err := s.ensureHand(tx, uid); err != nil {
			return err
		}
		cards, err := s.declarableHand(tx, uid)
		if err != nil {
			return err
		}
		score, err := s.engine.Catalog().EnvidoValue(cards)
		if err != nil {
			return err
		}
		if err := s.engine.DeclareEnvido(g, uid, score); err != nil {
			return err
		}
		tx.SaveGame()
		return nil
	})
}

// NextHand advances a finished hand, reshuffling the previous deck. In
// hands mode it also records the hand winner and may finalize the match.
func (s *Service) NextHand(ctx context.Context, gameID, uid string) (*StateView, error) {
	return s.mutate(ctx, gameID, uid, func(tx *store.Tx) error {
		g := tx.Game
		if !g.HasPlayer(uid) {
			return appErr.ErrNotParticipant
		}
		if err := s.engine.AdvanceHand(g, game.Shuffle(g.Deck)); err != nil {
			return err
		}
		// Redeal the caller eagerly; the opponent redeals on their next read.
		if g.Status == game.StatusPlaying && uid != game.BotUID {
			if err := s.ensureHand(tx, uid); err != nil {
				return err
			}
		}
		tx.SaveGame()
		return nil
	})
}

// mutate runs one transactional step as uid and handles the aftermath
// (redacted view, finished-match reporting).
func (s *Service) mutate(ctx context.Context, gameID, uid string, fn func(tx *store.Tx) error) (*StateView, error) {
	view := &StateView{}
	err := s.store.Update(ctx, gameID, []string{uid}, func(tx *store.Tx) error {
		if !tx.Game.HasPlayer(uid) {
			return appErr.ErrNotParticipant
		}
		if err := fn(tx); err != nil {
			return err
		}
		view.Game = tx.Game.Redacted()
		if uid != game.BotUID {
			view.Hand = tx.Hand(uid)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.reportIfFinished(ctx, view.Game)
	return view, nil
}

// ensureHand deals uid's private hand for the current hand number when
// missing or stale. Idempotent; the bot's hand lives in the shared doc.
func (s *Service) ensureHand(tx *store.Tx, uid string) error {
	g := tx.Game
	if uid == game.BotUID || g.Status != game.StatusPlaying || !g.HasPlayer(uid) {
		return nil
	}
	if h := tx.Hand(uid); h != nil && h.HandNo == g.HandNo {
		return nil
	}
	hand, err := s.engine.DealFor(g, uid)
	if err != nil {
		return err
	}
	tx.PutHand(hand)
	return nil
}

// declarableHand returns the caller's full three dealt cards. Envido closes
// once a card hits the table, so a short hand means the declaration window
// was missed.
func (s *Service) declarableHand(tx *store.Tx, uid string) ([]string, error) {
	if uid == game.BotUID {
		g := tx.Game
		if g.BotHandNo != g.HandNo || len(g.BotHand) != game.HandSize {
			return nil, appErr.ErrInvalidHand
		}
		return g.BotHand, nil
	}
	h := tx.Hand(uid)
	if h == nil || len(h.Hand) != game.HandSize {
		return nil, appErr.ErrInvalidHand
	}
	return h.Hand, nil
}

func (s *Service) reportIfFinished(ctx context.Context, g *game.Game) {
	if s.reporter == nil || g == nil || g.MatchWinnerUID == "" {
		return
	}
	res := ReportedMatch{
		MatchID:      g.ID,
		Mode:         g.MatchMode,
		WinnerUID:    g.MatchWinnerUID,
		LoserUID:     g.OtherUID(g.MatchWinnerUID),
		TargetPoints: g.TargetPoints,
		HandCount:    g.HandNo,
		Players:      g.Players,
		PointsByUID:  g.PointsByUID,
	}
	if err := s.reporter.ReportMatch(ctx, res); err != nil {
		logger.Log.Warn("match report failed",
			zap.String("gameId", g.ID),
			zap.Error(err))
	}
}
