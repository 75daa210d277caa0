package game_test

import (
	"errors"
	"testing"

	"github.com/robklaiss/truco/internal/game"
	appErr "github.com/robklaiss/truco/pkg/errors"
)

const (
	p1 = "uid-ana"
	p2 = "uid-beto"
)

// testDeck deals p1 (seat 0) the first three ids and p2 (seat 1) the next
// three, mirroring how the shared deck is sliced.
func testDeck(p1Hand, p2Hand []string) []string {
	deck := append([]string{}, p1Hand...)
	deck = append(deck, p2Hand...)
	// Pad with arbitrary distinct cards so redeals have material.
	for _, id := range []string{
		"bastos_10", "bastos_11", "bastos_12", "copas_10", "copas_11", "copas_12",
	} {
		if !contains(deck, id) {
			deck = append(deck, id)
		}
	}
	return deck
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func newEngine(t *testing.T) *game.Engine {
	t.Helper()
	return game.NewEngine(newCatalog(t))
}

// startedGame returns a playing points-mode match with both hands dealt.
func startedGame(t *testing.T, e *game.Engine, p1Hand, p2Hand []string) (*game.Game, *game.PrivateHand, *game.PrivateHand) {
	t.Helper()

	g, err := game.NewGame("GAME01", game.Player{UID: p1, Nickname: "Ana"}, game.ModePoints, 30, 0, testDeck(p1Hand, p2Hand))
	if err != nil {
		t.Fatalf("new game failed: %v", err)
	}
	started, err := e.Join(g, p2, "Beto")
	if err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if !started {
		t.Fatalf("expected join to start the match")
	}
	if g.Status != game.StatusPlaying || g.TurnUID != p1 || g.HandUID != p1 {
		t.Fatalf("unexpected start state: status=%s turn=%s mano=%s", g.Status, g.TurnUID, g.HandUID)
	}

	h1, err := e.DealFor(g, p1)
	if err != nil {
		t.Fatalf("deal p1 failed: %v", err)
	}
	h2, err := e.DealFor(g, p2)
	if err != nil {
		t.Fatalf("deal p2 failed: %v", err)
	}
	return g, h1, h2
}

func TestJoinRules(t *testing.T) {
	e := newEngine(t)
	g, _ := mustNewGame(t, game.ModePoints)

	if _, err := e.Join(g, "uid-intruso", "Carlos"); err == nil {
		// Two seats only once both are taken.
		t.Fatalf("expected join on full game to fail")
	} else if !errors.Is(err, appErr.ErrGameFull) {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}

	// Re-joining is idempotent.
	started, err := e.Join(g, p2, "Beto")
	if err != nil {
		t.Fatalf("rejoin failed: %v", err)
	}
	if started {
		t.Fatalf("rejoin must not restart the match")
	}
}

func mustNewGame(t *testing.T, mode game.MatchMode) (*game.Game, *game.Engine) {
	t.Helper()
	e := newEngine(t)
	g, _, _ := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)
	if mode == game.ModeHands {
		g.MatchMode = game.ModeHands
		g.MatchTargetWins = 2
		g.TargetPoints = 0
		g.PointsByUID = nil
	}
	return g, e
}

func TestPlayCardPreconditions(t *testing.T) {
	e := newEngine(t)
	g, h1, h2 := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)

	if err := e.PlayCard(g, h2, p2, "oros_04"); !errors.Is(err, appErr.ErrNotYourTurn) {
		t.Fatalf("expected ErrNotYourTurn, got %v", err)
	}
	if err := e.PlayCard(g, h1, p1, "oros_04"); !errors.Is(err, appErr.ErrCardNotInHand) {
		t.Fatalf("expected ErrCardNotInHand, got %v", err)
	}
	if err := e.PlayCard(g, h1, p1, "espadas_99"); !errors.Is(err, appErr.ErrUnknownCard) {
		t.Fatalf("expected ErrUnknownCard, got %v", err)
	}

	stale := &game.PrivateHand{UID: p1, HandNo: g.HandNo + 1, Hand: h1.Hand}
	if err := e.PlayCard(g, stale, p1, "espadas_01"); !errors.Is(err, appErr.ErrHandNotDealt) {
		t.Fatalf("expected ErrHandNotDealt for stale hand, got %v", err)
	}

	if err := e.OpenOrRaise(g, p1, game.CallTruco, game.OfferTruco); err != nil {
		t.Fatalf("open truco failed: %v", err)
	}
	if err := e.PlayCard(g, h1, p1, "espadas_01"); !errors.Is(err, appErr.ErrCallPending) {
		t.Fatalf("expected ErrCallPending, got %v", err)
	}
}

func TestHandPlayedToTwoTricks(t *testing.T) {
	e := newEngine(t)
	g, h1, h2 := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)

	if err := e.PlayCard(g, h1, p1, "espadas_01"); err != nil {
		t.Fatalf("p1 play failed: %v", err)
	}
	if g.TurnUID != p2 || !g.FirstCardPlayed {
		t.Fatalf("expected turn to pass to p2, got %s", g.TurnUID)
	}
	if err := e.PlayCard(g, h2, p2, "oros_04"); err != nil {
		t.Fatalf("p2 play failed: %v", err)
	}

	if len(g.TrickWinners) != 1 || g.TrickWinners[0] != p1 {
		t.Fatalf("expected p1 to win trick 1, got %v", g.TrickWinners)
	}
	if g.TrickNo != 2 || g.TurnUID != p1 {
		t.Fatalf("expected p1 to lead trick 2, trickNo=%d turn=%s", g.TrickNo, g.TurnUID)
	}
	if len(g.Table) != 0 || len(g.TrickPlays) != 0 {
		t.Fatalf("expected table cleared between tricks")
	}
	if len(g.TrickHistory) != 1 || g.TrickHistory[0].WinnerUID != p1 {
		t.Fatalf("unexpected trick history: %+v", g.TrickHistory)
	}

	if err := e.PlayCard(g, h1, p1, "bastos_01"); err != nil {
		t.Fatalf("p1 play failed: %v", err)
	}
	if err := e.PlayCard(g, h2, p2, "oros_05"); err != nil {
		t.Fatalf("p2 play failed: %v", err)
	}

	if g.Status != game.StatusFinished {
		t.Fatalf("expected hand finished after two won tricks, status=%s", g.Status)
	}
	if g.FinishedWinnerUID != p1 || g.TurnUID != "" {
		t.Fatalf("expected p1 to win the hand, winner=%s turn=%q", g.FinishedWinnerUID, g.TurnUID)
	}
	if g.PointsByUID[p1] != 1 {
		t.Fatalf("expected 1 point at truco value 1, got %d", g.PointsByUID[p1])
	}
	if err := e.PlayCard(g, h1, p1, "espadas_07"); !errors.Is(err, appErr.ErrGameNotPlaying) {
		t.Fatalf("expected ErrGameNotPlaying after hand end, got %v", err)
	}
}

func TestPardaKeepsLeadAndEndsEarly(t *testing.T) {
	e := newEngine(t)
	g, h1, h2 := startedGame(t, e,
		[]string{"copas_10", "copas_04", "copas_05"},
		[]string{"oros_10", "oros_07", "espadas_04"},
	)

	if err := e.PlayCard(g, h1, p1, "copas_10"); err != nil {
		t.Fatalf("p1 play failed: %v", err)
	}
	if err := e.PlayCard(g, h2, p2, "oros_10"); err != nil {
		t.Fatalf("p2 play failed: %v", err)
	}

	if g.TrickWinners[0] != "" {
		t.Fatalf("expected parda, got winner %q", g.TrickWinners[0])
	}
	if g.TurnUID != p1 {
		t.Fatalf("expected trick opener to keep the lead after parda, turn=%s", g.TurnUID)
	}

	if err := e.PlayCard(g, h1, p1, "copas_04"); err != nil {
		t.Fatalf("p1 play failed: %v", err)
	}
	if err := e.PlayCard(g, h2, p2, "oros_07"); err != nil {
		t.Fatalf("p2 play failed: %v", err)
	}

	// Parda then a won trick decides the hand without a third trick.
	if g.Status != game.StatusFinished || g.FinishedWinnerUID != p2 {
		t.Fatalf("expected p2 to win after parda, status=%s winner=%s", g.Status, g.FinishedWinnerUID)
	}
}

func TestWinThenPardaEndsHand(t *testing.T) {
	e := newEngine(t)
	g, h1, h2 := startedGame(t, e,
		[]string{"espadas_01", "copas_04", "copas_05"},
		[]string{"oros_06", "espadas_04", "oros_01"},
	)

	if err := e.PlayCard(g, h1, p1, "espadas_01"); err != nil {
		t.Fatalf("p1 play failed: %v", err)
	}
	if err := e.PlayCard(g, h2, p2, "oros_06"); err != nil {
		t.Fatalf("p2 play failed: %v", err)
	}
	if err := e.PlayCard(g, h1, p1, "copas_04"); err != nil {
		t.Fatalf("p1 play failed: %v", err)
	}
	if err := e.PlayCard(g, h2, p2, "espadas_04"); err != nil {
		t.Fatalf("p2 play failed: %v", err)
	}

	if g.Status != game.StatusFinished || g.FinishedWinnerUID != p1 {
		t.Fatalf("expected p1 to win via win then parda, winner=%s", g.FinishedWinnerUID)
	}
}

func TestTrucoEscalation(t *testing.T) {
	e := newEngine(t)
	g, _, _ := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)

	if err := e.OpenOrRaise(g, p1, game.CallTruco, game.OfferRetruco); !errors.Is(err, appErr.ErrInvalidRaise) {
		t.Fatalf("expected ErrInvalidRaise opening at retruco, got %v", err)
	}
	if err := e.OpenOrRaise(g, p1, game.CallTruco, game.OfferTruco); err != nil {
		t.Fatalf("open truco failed: %v", err)
	}
	if err := e.OpenOrRaise(g, p1, game.CallTruco, game.OfferRetruco); !errors.Is(err, appErr.ErrNotYourCall) {
		t.Fatalf("expected ErrNotYourCall raising own offer, got %v", err)
	}

	// Counter-raise implicitly accepts the pending truco.
	if err := e.OpenOrRaise(g, p2, game.CallTruco, game.OfferRetruco); err != nil {
		t.Fatalf("retruco failed: %v", err)
	}
	if g.TrucoValue != 2 {
		t.Fatalf("expected truco value 2 committed, got %d", g.TrucoValue)
	}
	cp := g.CallPending
	if cp == nil || cp.OfferedValue != 3 || cp.FromUID != p2 || cp.DeclineValue != 2 {
		t.Fatalf("unexpected pending call: %+v", cp)
	}

	if err := e.Respond(g, p1, true); err != nil {
		t.Fatalf("accept retruco failed: %v", err)
	}
	if g.TrucoValue != 3 || g.CallPending != nil || g.TrucoLastRaiseUID != p2 {
		t.Fatalf("unexpected state after accept: value=%d lastRaise=%s", g.TrucoValue, g.TrucoLastRaiseUID)
	}

	// The last raiser cannot raise again.
	if err := e.OpenOrRaise(g, p2, game.CallTruco, game.OfferVale4); !errors.Is(err, appErr.ErrRaiseNotYours) {
		t.Fatalf("expected ErrRaiseNotYours, got %v", err)
	}
	if err := e.OpenOrRaise(g, p1, game.CallTruco, game.OfferVale4); err != nil {
		t.Fatalf("vale4 failed: %v", err)
	}
}

func TestTrucoDeclineEndsHand(t *testing.T) {
	e := newEngine(t)
	g, _, _ := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)

	if err := e.OpenOrRaise(g, p1, game.CallTruco, game.OfferTruco); err != nil {
		t.Fatalf("open truco failed: %v", err)
	}
	if err := e.Respond(g, p1, false); !errors.Is(err, appErr.ErrNotYourCall) {
		t.Fatalf("expected ErrNotYourCall, got %v", err)
	}
	if err := e.Respond(g, p2, false); err != nil {
		t.Fatalf("decline failed: %v", err)
	}

	if g.Status != game.StatusFinished || g.FinishedWinnerUID != p1 {
		t.Fatalf("expected caller to win on decline, winner=%s", g.FinishedWinnerUID)
	}
	if g.PointsByUID[p1] != 1 {
		t.Fatalf("expected decline to pay the pre-offer value 1, got %d", g.PointsByUID[p1])
	}
	if err := e.Respond(g, p2, true); !errors.Is(err, appErr.ErrNoCallPending) {
		t.Fatalf("expected ErrNoCallPending, got %v", err)
	}
}

func TestEnvidoFlow(t *testing.T) {
	e := newEngine(t)
	g, _, _ := startedGame(t, e,
		[]string{"oros_05", "oros_06", "copas_12"}, // envido 31
		[]string{"espadas_07", "copas_04", "oros_10"}, // envido 7
	)

	if err := e.OpenOrRaise(g, p2, game.CallEnvido, game.OfferEnvido); err != nil {
		t.Fatalf("open envido failed: %v", err)
	}
	cp := g.CallPending
	if cp == nil || cp.OfferedValue != 2 || cp.DeclineValue != 1 {
		t.Fatalf("unexpected envido call: %+v", cp)
	}

	// Ladder: envido can only go to real or falta.
	if err := e.OpenOrRaise(g, p1, game.CallEnvido, game.OfferEnvido); !errors.Is(err, appErr.ErrInvalidRaise) {
		t.Fatalf("expected ErrInvalidRaise, got %v", err)
	}
	if err := e.OpenOrRaise(g, p1, game.CallEnvido, game.OfferRealEnvido); err != nil {
		t.Fatalf("real envido raise failed: %v", err)
	}
	if g.CallPending.OfferedValue != 5 || g.CallPending.DeclineValue != 2 {
		t.Fatalf("unexpected raised call: %+v", g.CallPending)
	}

	if err := e.Respond(g, p2, true); err != nil {
		t.Fatalf("accept envido failed: %v", err)
	}
	if g.Envido.State != game.EnvidoWaitingDeclare || g.Envido.Stake != 5 {
		t.Fatalf("unexpected envido state: %+v", g.Envido)
	}

	if err := e.DeclareEnvido(g, p1, 31); err != nil {
		t.Fatalf("p1 declare failed: %v", err)
	}
	if err := e.DeclareEnvido(g, p1, 31); !errors.Is(err, appErr.ErrAlreadyDeclared) {
		t.Fatalf("expected ErrAlreadyDeclared, got %v", err)
	}
	if err := e.DeclareEnvido(g, p2, 7); err != nil {
		t.Fatalf("p2 declare failed: %v", err)
	}

	if g.Envido.State != game.EnvidoNone || !g.EnvidoPlayed {
		t.Fatalf("expected envido resolved, state=%s played=%v", g.Envido.State, g.EnvidoPlayed)
	}
	lr := g.Envido.LastResult
	if lr == nil || lr.WinnerUID != p1 || lr.Stake != 5 {
		t.Fatalf("unexpected envido result: %+v", lr)
	}
	if g.PointsByUID[p1] != 5 {
		t.Fatalf("expected p1 to score 5, got %d", g.PointsByUID[p1])
	}

	// Once per hand.
	if err := e.OpenOrRaise(g, p2, game.CallEnvido, game.OfferEnvido); !errors.Is(err, appErr.ErrEnvidoPlayed) {
		t.Fatalf("expected ErrEnvidoPlayed, got %v", err)
	}
}

func TestEnvidoTieGoesToMano(t *testing.T) {
	e := newEngine(t)
	g, _, _ := startedGame(t, e,
		[]string{"oros_05", "oros_06", "copas_12"},
		[]string{"copas_05", "copas_06", "oros_12"},
	)

	if err := e.OpenOrRaise(g, p1, game.CallEnvido, game.OfferEnvido); err != nil {
		t.Fatalf("open envido failed: %v", err)
	}
	if err := e.Respond(g, p2, true); err != nil {
		t.Fatalf("accept failed: %v", err)
	}
	if err := e.DeclareEnvido(g, p2, 31); err != nil {
		t.Fatalf("p2 declare failed: %v", err)
	}
	if err := e.DeclareEnvido(g, p1, 31); err != nil {
		t.Fatalf("p1 declare failed: %v", err)
	}
	if g.Envido.LastResult.WinnerUID != p1 {
		t.Fatalf("expected tie to favor the mano, got %s", g.Envido.LastResult.WinnerUID)
	}
}

func TestEnvidoClosedAfterFirstCard(t *testing.T) {
	e := newEngine(t)
	g, h1, _ := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)

	if err := e.PlayCard(g, h1, p1, "espadas_07"); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if err := e.OpenOrRaise(g, p2, game.CallEnvido, game.OfferEnvido); !errors.Is(err, appErr.ErrEnvidoClosed) {
		t.Fatalf("expected ErrEnvidoClosed, got %v", err)
	}
}

func TestEnvidoDeclineScoresCaller(t *testing.T) {
	e := newEngine(t)
	g, _, _ := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)

	if err := e.OpenOrRaise(g, p1, game.CallEnvido, game.OfferEnvido); err != nil {
		t.Fatalf("open envido failed: %v", err)
	}
	if err := e.Respond(g, p2, false); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if g.PointsByUID[p1] != 1 {
		t.Fatalf("expected decline to pay 1, got %d", g.PointsByUID[p1])
	}
	if !g.EnvidoPlayed || g.Status != game.StatusPlaying {
		t.Fatalf("expected hand to continue with envido closed")
	}
}

func TestFaltaEnvidoValue(t *testing.T) {
	e := newEngine(t)
	g, _, _ := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)
	g.PointsByUID[p2] = 22

	if err := e.OpenOrRaise(g, p1, game.CallEnvido, game.OfferFaltaEnvido); err != nil {
		t.Fatalf("falta envido failed: %v", err)
	}
	if g.CallPending.OfferedValue != 8 {
		t.Fatalf("expected falta to offer 30-22=8, got %d", g.CallPending.OfferedValue)
	}
}

func TestCallsDisabledInHandsMode(t *testing.T) {
	g, e := mustNewGame(t, game.ModeHands)
	if err := e.OpenOrRaise(g, p1, game.CallTruco, game.OfferTruco); !errors.Is(err, appErr.ErrCallsDisabled) {
		t.Fatalf("expected ErrCallsDisabled, got %v", err)
	}
}

func TestAdvanceHandPointsMode(t *testing.T) {
	e := newEngine(t)
	g, h1, h2 := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)

	if err := e.AdvanceHand(g, game.Shuffle(g.Deck)); !errors.Is(err, appErr.ErrHandNotFinished) {
		t.Fatalf("expected ErrHandNotFinished, got %v", err)
	}

	playOut(t, e, g, h1, h2)

	if err := e.AdvanceHand(g, game.Shuffle(g.Deck)); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if g.HandNo != 2 || g.Status != game.StatusPlaying {
		t.Fatalf("expected hand 2 playing, handNo=%d status=%s", g.HandNo, g.Status)
	}
	if g.HandUID != g.Players[0].UID {
		t.Fatalf("expected seat rotation to give hand 2 to seat 0, got %s", g.HandUID)
	}
	if g.TrickNo != 1 || g.TrucoValue != 1 || g.EnvidoPlayed || g.FinishedWinnerUID != "" {
		t.Fatalf("per-hand state not reset: %+v", g)
	}
	if len(g.HandWinners) != 0 {
		t.Fatalf("points mode must not track hand winners, got %v", g.HandWinners)
	}
}

func TestAdvanceHandHandsModeToMatchWin(t *testing.T) {
	e := newEngine(t)
	g, h1, h2 := startedGame(t, e,
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)
	g.MatchMode = game.ModeHands
	g.MatchTargetWins = 2
	g.TargetPoints = 0
	g.PointsByUID = nil

	playOut(t, e, g, h1, h2)
	// Redeal the same layout so p1 takes hand 2 as well.
	nextDeck := testDeck(
		[]string{"espadas_01", "bastos_01", "espadas_07"},
		[]string{"oros_04", "oros_05", "oros_06"},
	)
	if err := e.AdvanceHand(g, nextDeck); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if len(g.HandWinners) != 1 || g.HandWinners[0] != p1 {
		t.Fatalf("expected hand winner recorded, got %v", g.HandWinners)
	}
	if g.MatchWinnerUID != "" {
		t.Fatalf("one win must not finish a best-of-three, got %s", g.MatchWinnerUID)
	}

	// p1 wins hand 2 as well: same cards, p2 leads.
	h1, err := e.DealFor(g, p1)
	if err != nil {
		t.Fatalf("redeal p1 failed: %v", err)
	}
	h2, err = e.DealFor(g, p2)
	if err != nil {
		t.Fatalf("redeal p2 failed: %v", err)
	}
	playOutAny(t, e, g, map[string]*game.PrivateHand{p1: h1, p2: h2})

	if err := e.AdvanceHand(g, game.Shuffle(g.Deck)); err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	if len(g.HandWinners) != 2 {
		t.Fatalf("expected two hand winners, got %v", g.HandWinners)
	}
	if g.MatchWinnerUID == "" {
		t.Fatalf("expected a match winner after target wins")
	}
	if err := e.AdvanceHand(g, game.Shuffle(g.Deck)); !errors.Is(err, appErr.ErrMatchFinished) {
		t.Fatalf("expected ErrMatchFinished, got %v", err)
	}
}

// playOut runs the hand to completion with p1 leading and both following
// the turn order.
func playOut(t *testing.T, e *game.Engine, g *game.Game, h1, h2 *game.PrivateHand) {
	t.Helper()
	playOutAny(t, e, g, map[string]*game.PrivateHand{p1: h1, p2: h2})
}

func playOutAny(t *testing.T, e *game.Engine, g *game.Game, hands map[string]*game.PrivateHand) {
	t.Helper()
	for i := 0; i < 6 && g.Status == game.StatusPlaying; i++ {
		uid := g.TurnUID
		h := hands[uid]
		if h == nil || len(h.Hand) == 0 {
			t.Fatalf("no playable card for %s", uid)
		}
		if err := e.PlayCard(g, h, uid, h.Hand[0]); err != nil {
			t.Fatalf("play %s failed: %v", uid, err)
		}
	}
	if g.Status != game.StatusFinished {
		t.Fatalf("hand did not finish, status=%s", g.Status)
	}
}

func TestMatchWinnerOnTargetPoints(t *testing.T) {
	e := newEngine(t)
	g, _, _ := startedGame(t, e,
		[]string{"oros_05", "oros_06", "copas_12"},
		[]string{"espadas_07", "copas_04", "oros_10"},
	)
	g.PointsByUID[p1] = 29

	if err := e.OpenOrRaise(g, p1, game.CallEnvido, game.OfferEnvido); err != nil {
		t.Fatalf("open envido failed: %v", err)
	}
	if err := e.Respond(g, p2, false); err != nil {
		t.Fatalf("decline failed: %v", err)
	}
	if g.MatchWinnerUID != p1 {
		t.Fatalf("expected target points to finish the match, got %q", g.MatchWinnerUID)
	}
}
