package errors

import "errors"

// Structural / load-time failures.
var (
	ErrMissingCatalog = errors.New("missing or empty card catalog")
	ErrInvalidCatalog = errors.New("malformed card catalog")
)

// Entity lookups.
var (
	ErrGameNotFound   = errors.New("game not found")
	ErrGameExists     = errors.New("game code already in use")
	ErrUnknownCard    = errors.New("unknown card")
	ErrNotParticipant = errors.New("not a participant of this game")
	ErrUserNotFound   = errors.New("user not found")
)

// Game-rule preconditions. Always detected before any write.
var (
	ErrGameFull           = errors.New("game is full")
	ErrGameNotPlaying     = errors.New("hand is not in play")
	ErrMatchFinished      = errors.New("match already finished")
	ErrHandNotFinished    = errors.New("hand has not finished yet")
	ErrNotYourTurn        = errors.New("not your turn")
	ErrCardNotInHand      = errors.New("card is not in your hand")
	ErrAlreadyPlayed      = errors.New("already played in this trick")
	ErrCallPending        = errors.New("a call is pending")
	ErrNoCallPending      = errors.New("no call pending")
	ErrNotYourCall        = errors.New("it is not you who must respond")
	ErrEnvidoClosed       = errors.New("envido must be called before the first card")
	ErrEnvidoPlayed       = errors.New("envido was already played this hand")
	ErrEnvidoNotOpen      = errors.New("no envido declaration in progress")
	ErrAlreadyDeclared    = errors.New("envido score already declared")
	ErrInvalidRaise       = errors.New("that call cannot be made now")
	ErrRaiseNotYours      = errors.New("opponent must raise next")
	ErrCallsDisabled      = errors.New("calls are only available in points mode")
	ErrMissingOpponent    = errors.New("waiting for a second player")
	ErrInvalidHand        = errors.New("hand must have exactly three cards")
	ErrHandNotDealt       = errors.New("hand not dealt yet")
	ErrInvalidMatchParams = errors.New("invalid match parameters")
)

// Concurrency.
var (
	// ErrConflict means the document changed between snapshot and commit.
	// Not a rule violation: discard the attempt and re-derive intent.
	ErrConflict = errors.New("concurrent update, retry from fresh state")
)

// Identity.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
)
