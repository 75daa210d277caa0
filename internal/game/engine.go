package game

import (
	"time"

	apperr "github.com/robklaiss/truco/pkg/errors"
)

// Engine applies the Truco rules to game snapshots. Every method validates
// all preconditions against the snapshot it is given, then mutates it into
// the complete next state; it performs no I/O. The store layer decides
// whether that next state actually commits (§ shared-state transaction
// protocol), so a method either fully transforms the snapshot or returns an
// error leaving it untouched in any way that matters to a commit.
type Engine struct {
	catalog *Catalog
}

func NewEngine(catalog *Catalog) *Engine {
	return &Engine{catalog: catalog}
}

func (e *Engine) Catalog() *Catalog { return e.catalog }

// NewGame builds a fresh waiting match. The creator is seat 0 and mano of
// hand one.
func NewGame(id string, creator Player, mode MatchMode, targetPoints, targetWins int, deck []string) (*Game, error) {
	if mode != ModeHands && mode != ModePoints {
		return nil, apperr.ErrInvalidMatchParams
	}
	if mode == ModePoints && targetPoints <= 0 {
		return nil, apperr.ErrInvalidMatchParams
	}
	if mode == ModeHands && targetWins <= 0 {
		return nil, apperr.ErrInvalidMatchParams
	}

	now := time.Now().Unix()
	g := &Game{
		ID:              id,
		Status:          StatusWaiting,
		Players:         []Player{creator},
		Deck:            deck,
		HandNo:          1,
		HandUID:         creator.UID,
		TurnUID:         creator.UID,
		TrucoValue:      1,
		Envido:          Envido{State: EnvidoNone},
		TrickNo:         1,
		TrickPlays:      map[string]string{},
		TrickWinners:    []string{},
		TrickHistory:    []TrickRecord{},
		Table:           []TablePlay{},
		HandWinners:     []string{},
		MatchMode:       mode,
		MatchTargetWins: targetWins,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if mode == ModePoints {
		g.TargetPoints = targetPoints
		g.PointsByUID = map[string]int{creator.UID: 0}
	}
	return g, nil
}

// NewBotGame builds a points-mode match against the bot, already playing,
// with both hands dealt. The human's private hand is returned for storage.
func NewBotGame(id string, creator Player, targetPoints int, deck []string) (*Game, *PrivateHand, error) {
	g, err := NewGame(id, creator, ModePoints, targetPoints, 0, deck)
	if err != nil {
		return nil, nil, err
	}
	g.Players = append(g.Players, Player{UID: BotUID, Nickname: BotNickname})
	g.PointsByUID[BotUID] = 0
	g.Status = StatusPlaying
	g.BotHand = HandForSeat(deck, 1)
	g.BotHandNo = 1

	hand := &PrivateHand{
		UID:       creator.UID,
		HandNo:    1,
		Hand:      HandForSeat(deck, 0),
		CreatedAt: g.CreatedAt,
	}
	return g, hand, nil
}

// Join seats uid into a waiting match, starting it once both seats are
// taken. Returns whether this join transitioned the match to playing.
func (e *Engine) Join(g *Game, uid, nickname string) (started bool, err error) {
	if g.MatchWinnerUID != "" {
		return false, apperr.ErrMatchFinished
	}
	if !g.HasPlayer(uid) {
		if len(g.Players) >= 2 {
			return false, apperr.ErrGameFull
		}
		g.Players = append(g.Players, Player{UID: uid, Nickname: nickname})
		if g.IsPointsMode() {
			if g.PointsByUID == nil {
				g.PointsByUID = map[string]int{}
			}
			if _, ok := g.PointsByUID[uid]; !ok {
				g.PointsByUID[uid] = 0
			}
		}
	}

	if len(g.Players) == 2 && g.Status == StatusWaiting {
		g.Status = StatusPlaying
		g.HandUID = g.Players[0].UID
		g.TurnUID = g.Players[0].UID
		g.resetHandState()
		g.touch()
		return true, nil
	}
	g.touch()
	return false, nil
}

// DealFor slices uid's three cards for the current hand off the shared deck.
func (e *Engine) DealFor(g *Game, uid string) (*PrivateHand, error) {
	seat := g.SeatOf(uid)
	if seat < 0 {
		return nil, apperr.ErrNotParticipant
	}
	cards := HandForSeat(g.Deck, seat)
	if cards == nil {
		return nil, apperr.ErrHandNotDealt
	}
	return &PrivateHand{
		UID:       uid,
		HandNo:    g.HandNo,
		Hand:      cards,
		CreatedAt: time.Now().Unix(),
	}, nil
}

// EnsureBotHand mirrors the bot's cards into the shared document for the
// current hand number. Idempotent per hand.
func (e *Engine) EnsureBotHand(g *Game) error {
	if !g.IsBotGame() || g.Status != StatusPlaying {
		return nil
	}
	if g.BotHandNo == g.HandNo && len(g.BotHand) > 0 {
		return nil
	}
	seat := g.SeatOf(BotUID)
	cards := HandForSeat(g.Deck, seat)
	if cards == nil {
		return apperr.ErrHandNotDealt
	}
	g.BotHand = cards
	g.BotHandNo = g.HandNo
	g.touch()
	return nil
}

// PlayCard places uid's card on the table, resolving the trick when both
// players have played and the hand when the trick decides it. For the bot
// the mirrored shared hand is used; pass a nil private hand.
func (e *Engine) PlayCard(g *Game, hand *PrivateHand, uid, cardID string) error {
	if g.Status != StatusPlaying {
		return apperr.ErrGameNotPlaying
	}
	if g.MatchWinnerUID != "" {
		return apperr.ErrMatchFinished
	}
	if g.CallPending != nil {
		return apperr.ErrCallPending
	}
	if g.Envido.State == EnvidoWaitingDeclare {
		return apperr.ErrCallPending
	}
	if g.TurnUID != uid {
		return apperr.ErrNotYourTurn
	}
	if _, err := e.catalog.Lookup(cardID); err != nil {
		return err
	}

	cards, err := e.handCards(g, hand, uid)
	if err != nil {
		return err
	}
	idx := indexOf(cards, cardID)
	if idx < 0 {
		return apperr.ErrCardNotInHand
	}
	if g.TrickPlays == nil {
		g.TrickPlays = map[string]string{}
	}
	if _, played := g.TrickPlays[uid]; played {
		return apperr.ErrAlreadyPlayed
	}

	// Commit the placement.
	cards = append(cards[:idx], cards[idx+1:]...)
	if uid == BotUID {
		g.BotHand = cards
		g.BotHandNo = g.HandNo
	} else {
		hand.Hand = cards
	}
	g.Table = append(g.Table, TablePlay{UID: uid, CardID: cardID, TrickNo: g.TrickNo})
	g.TrickPlays[uid] = cardID
	g.FirstCardPlayed = true

	if next := g.OtherUID(uid); next != "" {
		g.TurnUID = next
	}

	if len(g.TrickPlays) >= 2 {
		e.resolveTrick(g)
	}
	g.touch()
	return nil
}

func (e *Engine) handCards(g *Game, hand *PrivateHand, uid string) ([]string, error) {
	if uid == BotUID {
		if g.BotHandNo != g.HandNo {
			return nil, apperr.ErrHandNotDealt
		}
		return append([]string(nil), g.BotHand...), nil
	}
	if hand == nil || hand.UID != uid {
		return nil, apperr.ErrHandNotDealt
	}
	if hand.HandNo != g.HandNo {
		return nil, apperr.ErrHandNotDealt
	}
	return append([]string(nil), hand.Hand...), nil
}

// resolveTrick scores a complete trick. The trick's opener is the first
// entry of the table log; equal powers are a parda (empty winner) and keep
// the lead with the opener.
func (e *Engine) resolveTrick(g *Game) {
	opener := g.Table[0].UID
	responder := g.OtherUID(opener)

	winner := ""
	switch cmp := comparePower(e.catalog, g.TrickPlays[opener], g.TrickPlays[responder]); cmp {
	case Greater:
		winner = opener
	case Less:
		winner = responder
	}

	plays := make(map[string]string, len(g.TrickPlays))
	for k, v := range g.TrickPlays {
		plays[k] = v
	}
	g.TrickWinners = append(g.TrickWinners, winner)
	g.TrickHistory = append(g.TrickHistory, TrickRecord{TrickNo: g.TrickNo, Plays: plays, WinnerUID: winner})

	g.TrickNo++
	g.TrickPlays = map[string]string{}
	g.Table = []TablePlay{}
	if winner != "" {
		g.TurnUID = winner
	} else {
		g.TurnUID = opener
	}

	if handDone(g.TrickWinners, g.TrickNo) {
		g.Status = StatusFinished
		g.TurnUID = ""
		g.FinishedWinnerUID = ResolveHandWinner(g.HandUID, g.TrickWinners)
		if g.IsPointsMode() && g.FinishedWinnerUID != "" {
			e.applyPoints(g, g.FinishedWinnerUID, g.TrucoValue)
		}
	}
}

func comparePower(c *Catalog, a, b string) Comparison {
	pa, pb := c.Power(a), c.Power(b)
	switch {
	case pa > pb:
		return Greater
	case pa < pb:
		return Less
	default:
		return Equal
	}
}

// handDone applies the decisive prefixes of the parda cascade: two wins by
// one player, a won trick followed by a parda (or the reverse), or all
// three tricks played.
func handDone(winners []string, nextTrickNo int) bool {
	if nextTrickNo > 3 {
		return true
	}
	counts := map[string]int{}
	for _, w := range winners {
		if w == "" {
			continue
		}
		counts[w]++
		if counts[w] >= 2 {
			return true
		}
	}
	if len(winners) == 2 {
		t1, t2 := winners[0], winners[1]
		if (t1 != "" && t2 == "") || (t1 == "" && t2 != "") {
			return true
		}
	}
	return false
}

// OpenOrRaise opens a new call or counter-raises the pending one. Calls are
// a points-mode feature and are mutually exclusive with card play.
func (e *Engine) OpenOrRaise(g *Game, uid string, kind CallKind, offer CallOffer) error {
	if g.MatchWinnerUID != "" {
		return apperr.ErrMatchFinished
	}
	if !g.IsPointsMode() {
		return apperr.ErrCallsDisabled
	}
	if g.Status != StatusPlaying {
		return apperr.ErrGameNotPlaying
	}
	other := g.OtherUID(uid)
	if other == "" {
		return apperr.ErrMissingOpponent
	}
	if !g.HasPlayer(uid) {
		return apperr.ErrNotParticipant
	}

	switch kind {
	case CallEnvido:
		return e.openOrRaiseEnvido(g, uid, other, offer)
	case CallTruco:
		return e.openOrRaiseTruco(g, uid, other, offer)
	default:
		return apperr.ErrInvalidRaise
	}
}

func (e *Engine) openOrRaiseEnvido(g *Game, uid, other string, offer CallOffer) error {
	switch offer {
	case OfferEnvido, OfferRealEnvido, OfferFaltaEnvido:
	default:
		return apperr.ErrInvalidRaise
	}
	if g.FirstCardPlayed {
		return apperr.ErrEnvidoClosed
	}
	if g.EnvidoPlayed || g.Envido.State != EnvidoNone {
		return apperr.ErrEnvidoPlayed
	}

	if cp := g.CallPending; cp != nil {
		if cp.Kind != CallEnvido {
			return apperr.ErrCallPending
		}
		if cp.ToUID != uid {
			return apperr.ErrNotYourCall
		}
		if !envidoRaiseAllowed(cp.Offer, offer) {
			return apperr.ErrInvalidRaise
		}
		offered := cp.OfferedValue + EnvidoBaseValue(offer)
		if offer == OfferFaltaEnvido {
			offered = e.faltaEnvidoValue(g)
		}
		g.CallPending = &PendingCall{
			Kind:         CallEnvido,
			Offer:        offer,
			FromUID:      uid,
			ToUID:        cp.FromUID,
			OfferedValue: offered,
			DeclineValue: cp.OfferedValue,
			TS:           time.Now().UnixMilli(),
		}
		g.touch()
		return nil
	}

	offered := EnvidoBaseValue(offer)
	if offer == OfferFaltaEnvido {
		offered = e.faltaEnvidoValue(g)
	}
	g.CallPending = &PendingCall{
		Kind:         CallEnvido,
		Offer:        offer,
		FromUID:      uid,
		ToUID:        other,
		OfferedValue: offered,
		DeclineValue: 1,
		TS:           time.Now().UnixMilli(),
	}
	g.touch()
	return nil
}

// envidoRaiseAllowed enforces the envido -> real_envido -> falta_envido
// ladder for counter-offers.
func envidoRaiseAllowed(current, next CallOffer) bool {
	switch current {
	case OfferEnvido:
		return next == OfferRealEnvido || next == OfferFaltaEnvido
	case OfferRealEnvido:
		return next == OfferFaltaEnvido
	default:
		return false
	}
}

// faltaEnvidoValue offers whatever the current leader still needs to win.
func (e *Engine) faltaEnvidoValue(g *Game) int {
	maxPts := 0
	for _, p := range g.Players {
		if pts := g.PointsByUID[p.UID]; pts > maxPts {
			maxPts = pts
		}
	}
	v := g.TargetPoints - maxPts
	if v < 1 {
		v = 1
	}
	return v
}

func (e *Engine) openOrRaiseTruco(g *Game, uid, other string, offer CallOffer) error {
	next := TrucoOfferValue(offer)
	if next == 0 {
		return apperr.ErrInvalidRaise
	}

	if cp := g.CallPending; cp != nil {
		if cp.Kind != CallTruco {
			return apperr.ErrCallPending
		}
		if cp.ToUID != uid {
			return apperr.ErrNotYourCall
		}
		if next != cp.OfferedValue+1 {
			return apperr.ErrInvalidRaise
		}
		// Raising over a pending offer implicitly accepts it first.
		g.TrucoValue = cp.OfferedValue
		g.CallPending = &PendingCall{
			Kind:         CallTruco,
			Offer:        offer,
			FromUID:      uid,
			ToUID:        cp.FromUID,
			OfferedValue: next,
			DeclineValue: cp.OfferedValue,
			TS:           time.Now().UnixMilli(),
		}
		g.TrucoLastRaiseUID = uid
		g.touch()
		return nil
	}

	if next != g.TrucoValue+1 {
		return apperr.ErrInvalidRaise
	}
	if g.TrucoLastRaiseUID == uid {
		return apperr.ErrRaiseNotYours
	}
	g.CallPending = &PendingCall{
		Kind:         CallTruco,
		Offer:        offer,
		FromUID:      uid,
		ToUID:        other,
		OfferedValue: next,
		DeclineValue: g.TrucoValue,
		TS:           time.Now().UnixMilli(),
	}
	g.TrucoLastRaiseUID = uid
	g.touch()
	return nil
}

// Respond accepts or declines the pending call. Declining a truco ends the
// hand in the caller's favor; declining an envido pays the decline stake.
// Accepting an envido opens the declaration window instead of scoring.
func (e *Engine) Respond(g *Game, uid string, accept bool) error {
	cp := g.CallPending
	if cp == nil {
		return apperr.ErrNoCallPending
	}
	if cp.ToUID != uid {
		return apperr.ErrNotYourCall
	}

	if !accept {
		decline := cp.DeclineValue
		if decline < 1 {
			decline = 1
		}
		switch cp.Kind {
		case CallEnvido:
			g.CallPending = nil
			g.Envido = Envido{State: EnvidoNone}
			g.EnvidoPlayed = true
			e.applyPoints(g, cp.FromUID, decline)
		case CallTruco:
			g.CallPending = nil
			g.Status = StatusFinished
			g.TurnUID = ""
			g.FinishedWinnerUID = cp.FromUID
			e.applyPoints(g, cp.FromUID, decline)
		}
		g.touch()
		return nil
	}

	switch cp.Kind {
	case CallTruco:
		g.CallPending = nil
		g.TrucoValue = cp.OfferedValue
		g.TrucoLastRaiseUID = cp.FromUID
	case CallEnvido:
		g.CallPending = nil
		g.Envido = Envido{
			State:         EnvidoWaitingDeclare,
			Stake:         cp.OfferedValue,
			DeclaredByUID: map[string]int{},
		}
	}
	g.touch()
	return nil
}

// DeclareEnvido records uid's computed score. The submission that completes
// the pair performs the payout: higher score wins the stake, ties go to the
// mano.
func (e *Engine) DeclareEnvido(g *Game, uid string, score int) error {
	if g.Envido.State != EnvidoWaitingDeclare {
		return apperr.ErrEnvidoNotOpen
	}
	if len(g.Players) != 2 {
		return apperr.ErrMissingOpponent
	}
	if !g.HasPlayer(uid) {
		return apperr.ErrNotParticipant
	}
	if g.Envido.DeclaredByUID == nil {
		g.Envido.DeclaredByUID = map[string]int{}
	}
	if _, done := g.Envido.DeclaredByUID[uid]; done {
		return apperr.ErrAlreadyDeclared
	}
	g.Envido.DeclaredByUID[uid] = score

	u0, u1 := g.Players[0].UID, g.Players[1].UID
	s0, ok0 := g.Envido.DeclaredByUID[u0]
	s1, ok1 := g.Envido.DeclaredByUID[u1]
	if !ok0 || !ok1 {
		g.touch()
		return nil
	}

	winner := g.HandUID
	if s0 > s1 {
		winner = u0
	} else if s1 > s0 {
		winner = u1
	}
	stake := g.Envido.Stake
	g.Envido = Envido{
		State: EnvidoNone,
		LastResult: &EnvidoResult{
			Stake:       stake,
			WinnerUID:   winner,
			ScoresByUID: map[string]int{u0: s0, u1: s1},
		},
	}
	g.EnvidoPlayed = true
	e.applyPoints(g, winner, stake)
	g.touch()
	return nil
}

// AdvanceHand moves a finished hand to the next one, or finalizes the match
// when the target is reached. newDeck is the reshuffled deck for the redeal.
func (e *Engine) AdvanceHand(g *Game, newDeck []string) error {
	if g.MatchWinnerUID != "" {
		return apperr.ErrMatchFinished
	}
	if g.Status != StatusFinished {
		return apperr.ErrHandNotFinished
	}
	if len(g.Players) != 2 {
		return apperr.ErrMissingOpponent
	}

	nextHandNo := g.HandNo + 1
	firstUID := g.Players[nextHandNo%2].UID

	if g.MatchMode == ModeHands {
		winner := g.FinishedWinnerUID
		if winner == "" {
			return apperr.ErrHandNotFinished
		}
		// Idempotent under replays: only the expected slot appends.
		if len(g.HandWinners) == g.HandNo-1 {
			g.HandWinners = append(g.HandWinners, winner)
		}
		wins := map[string]int{}
		for _, w := range g.HandWinners {
			if w != "" {
				wins[w]++
			}
		}
		for uid, n := range wins {
			if n >= g.MatchTargetWins {
				g.MatchWinnerUID = uid
				g.touch()
				return nil
			}
		}
	}

	g.Status = StatusPlaying
	g.Deck = newDeck
	g.HandNo = nextHandNo
	g.HandUID = firstUID
	g.TurnUID = firstUID
	g.resetHandState()
	if g.IsBotGame() {
		seat := g.SeatOf(BotUID)
		g.BotHand = HandForSeat(newDeck, seat)
		g.BotHandNo = nextHandNo
	}
	g.touch()
	return nil
}

func (g *Game) resetHandState() {
	g.FirstCardPlayed = false
	g.EnvidoPlayed = false
	g.TrucoValue = 1
	g.TrucoLastRaiseUID = ""
	g.CallPending = nil
	g.Envido = Envido{State: EnvidoNone}
	g.TrickNo = 1
	g.TrickPlays = map[string]string{}
	g.TrickWinners = []string{}
	g.TrickHistory = []TrickRecord{}
	g.Table = []TablePlay{}
	g.FinishedWinnerUID = ""
}

func (e *Engine) applyPoints(g *Game, uid string, delta int) {
	if !g.IsPointsMode() || delta <= 0 {
		return
	}
	if g.PointsByUID == nil {
		g.PointsByUID = map[string]int{}
	}
	g.PointsByUID[uid] += delta
	if g.TargetPoints > 0 && g.PointsByUID[uid] >= g.TargetPoints {
		g.MatchWinnerUID = uid
	}
}

func indexOf(list []string, v string) int {
	for i, s := range list {
		if s == v {
			return i
		}
	}
	return -1
}
