package game

import "time"

// HandSize is the 2-player 3-card deal.
const HandSize = 3

// BotUID is the synthetic participant a bot match plays against.
const BotUID = "BOT"

// BotNickname is the bot's display name.
const BotNickname = "Bot"

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
)

type MatchMode string

const (
	// ModeHands races to MatchTargetWins won hands.
	ModeHands MatchMode = "hands"
	// ModePoints races to TargetPoints accumulated points; the only mode
	// where truco/envido calls are available.
	ModePoints MatchMode = "points"
)

type CallKind string

const (
	CallTruco  CallKind = "truco"
	CallEnvido CallKind = "envido"
)

type CallOffer string

const (
	OfferTruco       CallOffer = "truco"
	OfferRetruco     CallOffer = "retruco"
	OfferVale4       CallOffer = "vale4"
	OfferEnvido      CallOffer = "envido"
	OfferRealEnvido  CallOffer = "real_envido"
	OfferFaltaEnvido CallOffer = "falta_envido"
)

// TrucoOfferValue maps a truco-family offer to the stake it proposes.
func TrucoOfferValue(offer CallOffer) int {
	switch offer {
	case OfferTruco:
		return 2
	case OfferRetruco:
		return 3
	case OfferVale4:
		return 4
	default:
		return 0
	}
}

// EnvidoBaseValue is the increment an envido-family offer adds to the stake.
// Falta envido has no fixed base: it offers the points the leader still
// needs, computed against the live score.
func EnvidoBaseValue(offer CallOffer) int {
	switch offer {
	case OfferEnvido:
		return 2
	case OfferRealEnvido:
		return 3
	default:
		return 0
	}
}

type EnvidoState string

const (
	EnvidoNone           EnvidoState = "none"
	EnvidoWaitingDeclare EnvidoState = "waiting_declare"
)

type Player struct {
	UID      string `json:"uid"`
	Nickname string `json:"nickname"`
}

// PendingCall is the single outstanding offer. OfferedValue is what
// accepting commits; DeclineValue is what the caller pockets on a refusal.
type PendingCall struct {
	Kind         CallKind  `json:"kind"`
	Offer        CallOffer `json:"offer"`
	FromUID      string    `json:"fromUid"`
	ToUID        string    `json:"toUid"`
	OfferedValue int       `json:"offeredValue"`
	DeclineValue int       `json:"declineValue"`
	TS           int64     `json:"ts"`
}

// EnvidoResult is the resolved side-bet, kept for display.
type EnvidoResult struct {
	Stake       int            `json:"stake"`
	WinnerUID   string         `json:"winnerUid"`
	ScoresByUID map[string]int `json:"scoresByUid"`
}

// Envido tracks the declaration sub-state once an envido offer is accepted.
type Envido struct {
	State         EnvidoState    `json:"state"`
	Stake         int            `json:"stake,omitempty"`
	DeclaredByUID map[string]int `json:"declaredByUid,omitempty"`
	LastResult    *EnvidoResult  `json:"lastResult,omitempty"`
}

// TablePlay is one entry of the literal card-placement log, reset per trick.
type TablePlay struct {
	UID     string `json:"uid"`
	CardID  string `json:"cardId"`
	TrickNo int    `json:"trickNo"`
}

// TrickRecord is a completed trick. WinnerUID is empty for a parda.
type TrickRecord struct {
	TrickNo   int               `json:"trickNo"`
	Plays     map[string]string `json:"plays"`
	WinnerUID string            `json:"winnerUid"`
}

// Game is the shared, transactionally-updated match document. Any
// participant (bot included) may attempt to mutate it; the store's
// conditional commit arbitrates races.
type Game struct {
	ID      string   `json:"id"`
	Status  Status   `json:"status"`
	Players []Player `json:"players"`

	Deck []string `json:"deck"`

	HandNo          int    `json:"handNo"`
	HandUID         string `json:"handUid"` // mano: leads the hand, wins envido ties
	TurnUID         string `json:"turnUid"` // empty once the hand concludes
	FirstCardPlayed bool   `json:"firstCardPlayed"`

	TrucoValue        int          `json:"trucoValue"`
	TrucoLastRaiseUID string       `json:"trucoLastRaiseUid"`
	CallPending       *PendingCall `json:"callPending"`
	Envido            Envido       `json:"envido"`
	// EnvidoPlayed latches once per hand on decline or resolution, closing
	// the envido window for the rest of the hand.
	EnvidoPlayed bool `json:"envidoPlayed"`

	TrickNo           int               `json:"trickNo"`
	TrickPlays        map[string]string `json:"trickPlays"`
	TrickWinners      []string          `json:"trickWinners"` // "" marks a parda
	TrickHistory      []TrickRecord     `json:"trickHistory"`
	Table             []TablePlay       `json:"table"`
	FinishedWinnerUID string            `json:"finishedWinnerUid"`

	MatchMode       MatchMode      `json:"matchMode"`
	MatchTargetWins int            `json:"matchTargetWins"`
	HandWinners     []string       `json:"handWinners"`
	TargetPoints    int            `json:"targetPoints,omitempty"`
	PointsByUID     map[string]int `json:"pointsByUid,omitempty"`
	MatchWinnerUID  string         `json:"matchWinnerUid"`

	// The bot has no private channel, so its hand is mirrored here.
	BotHand   []string `json:"botHand,omitempty"`
	BotHandNo int      `json:"botHandNo,omitempty"`

	CreatedAt int64 `json:"createdAt"`
	UpdatedAt int64 `json:"updatedAt"`
}

// PrivateHand is one player's hidden cards for one hand number. Dealt cards
// are removed as they hit the table.
type PrivateHand struct {
	UID       string   `json:"uid"`
	HandNo    int      `json:"handNo"`
	Hand      []string `json:"hand"`
	CreatedAt int64    `json:"createdAt"`
}

func (g *Game) Player(uid string) *Player {
	for i := range g.Players {
		if g.Players[i].UID == uid {
			return &g.Players[i]
		}
	}
	return nil
}

func (g *Game) HasPlayer(uid string) bool { return g.Player(uid) != nil }

// OtherUID returns the opponent of uid, empty when absent.
func (g *Game) OtherUID(uid string) string {
	for _, p := range g.Players {
		if p.UID != "" && p.UID != uid {
			return p.UID
		}
	}
	return ""
}

// SeatOf returns the player's index in the ordered participant list, -1 if
// absent. Seat order decides deal slices and mano alternation.
func (g *Game) SeatOf(uid string) int {
	for i, p := range g.Players {
		if p.UID == uid {
			return i
		}
	}
	return -1
}

func (g *Game) IsBotGame() bool { return g.HasPlayer(BotUID) }

func (g *Game) IsPointsMode() bool { return g.MatchMode == ModePoints }

// Redacted strips the deck before the document leaves the server; clients
// receive their cards through the private hand channel instead.
func (g *Game) Redacted() *Game {
	out := *g
	out.Deck = nil
	return &out
}

func (g *Game) touch() { g.UpdatedAt = time.Now().Unix() }
