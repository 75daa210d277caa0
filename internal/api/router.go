package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/robklaiss/truco/internal/game"
	"github.com/robklaiss/truco/internal/middleware"
	"github.com/robklaiss/truco/internal/service"
	"github.com/robklaiss/truco/internal/service/truco"
	usersvc "github.com/robklaiss/truco/internal/service/user"
	"github.com/robklaiss/truco/internal/ws"
	appErr "github.com/robklaiss/truco/pkg/errors"
	"github.com/robklaiss/truco/pkg/response"
)

type Handler struct {
	services *service.Container
}

func RegisterRoutes(r *gin.Engine, services *service.Container) {
	handler := &Handler{services: services}
	wsHandler := ws.NewHandler(services.Truco, services.Store)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{"message": "pong"})
	})

	v1 := r.Group("/truco/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/guest", handler.GuestLogin)
			authGroup.POST("/refresh", middleware.AuthRequired(), handler.RefreshToken)
		}

		userGroup := v1.Group("/user")
		userGroup.Use(middleware.AuthRequired())
		{
			userGroup.GET("/profile", handler.GetProfile)
			userGroup.PUT("/profile", handler.UpdateProfile)
		}

		v1.GET("/leaderboard", handler.Leaderboard)
		v1.GET("/leaderboard/me", middleware.AuthRequired(), handler.LeaderboardMe)

		games := v1.Group("/games")
		games.Use(middleware.AuthRequired())
		{
			games.POST("", handler.CreateMatch)
			games.POST("/bot", handler.CreateBotMatch)
			games.GET("/:id", handler.GetState)
			games.POST("/:id/join", handler.JoinMatch)
			games.POST("/:id/play", handler.PlayCard)
			games.POST("/:id/call", handler.Call)
			games.POST("/:id/respond", handler.Respond)
			games.POST("/:id/declare-envido", handler.DeclareEnvido)
			games.POST("/:id/next-hand", handler.NextHand)
		}
	}

	r.GET("/ws/game/:gameId", wsHandler.HandleGameWS)
}

type guestLoginBody struct {
	Nickname string `json:"nickname"`
}

type updateProfileBody struct {
	Nickname *string `json:"nickname"`
}

type createMatchBody struct {
	Mode         string `json:"mode" binding:"omitempty,oneof=hands points"`
	TargetPoints int    `json:"targetPoints" binding:"omitempty,min=1,max=99"`
	TargetWins   int    `json:"targetWins" binding:"omitempty,min=1,max=9"`
}

type createBotMatchBody struct {
	TargetPoints int `json:"targetPoints" binding:"omitempty,min=1,max=99"`
}

type playCardBody struct {
	CardID string `json:"cardId" binding:"required"`
}

type callBody struct {
	Kind  string `json:"kind" binding:"required,oneof=truco envido"`
	Offer string `json:"offer" binding:"required,oneof=truco retruco vale4 envido real_envido falta_envido"`
}

type respondBody struct {
	Accept *bool `json:"accept" binding:"required"`
}

func (h *Handler) GuestLogin(c *gin.Context) {
	var body guestLoginBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.services.Auth.GuestLogin(c.Request.Context(), body.Nickname)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, resp)
}

func (h *Handler) RefreshToken(c *gin.Context) {
	uid := middleware.UserID(c)
	resp, err := h.services.Auth.Refresh(c.Request.Context(), uid)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, resp)
}

func (h *Handler) GetProfile(c *gin.Context) {
	uid := middleware.UserID(c)
	profile, err := h.services.User.GetProfile(c.Request.Context(), uid)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, appErr.ErrUserNotFound) {
			status = http.StatusNotFound
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	uid := middleware.UserID(c)
	var body updateProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.services.User.UpdateProfile(c.Request.Context(), uid, usersvc.UpdateProfileRequest{
		Nickname: body.Nickname,
	})
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, appErr.ErrUserNotFound):
			status = http.StatusNotFound
		case errors.Is(err, appErr.ErrInvalidMatchParams):
			status = http.StatusBadRequest
		}
		response.Error(c, status, err.Error())
		return
	}
	response.Success(c, updated)
}

func (h *Handler) Leaderboard(c *gin.Context) {
	limit := 0
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.services.Leaderboard.Top(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"entries": entries})
}

func (h *Handler) LeaderboardMe(c *gin.Context) {
	uid := middleware.UserID(c)
	entry, err := h.services.Leaderboard.Entry(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, err.Error())
		return
	}
	response.Success(c, gin.H{"entry": entry})
}

func (h *Handler) CreateMatch(c *gin.Context) {
	var body createMatchBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	uid := middleware.UserID(c)
	nickname := h.services.User.Nickname(c.Request.Context(), uid)

	view, err := h.services.Truco.CreateMatch(c.Request.Context(), uid, nickname, truco.CreateMatchRequest{
		Mode:         body.Mode,
		TargetPoints: body.TargetPoints,
		TargetWins:   body.TargetWins,
	})
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) CreateBotMatch(c *gin.Context) {
	var body createBotMatchBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	uid := middleware.UserID(c)
	nickname := h.services.User.Nickname(c.Request.Context(), uid)

	view, err := h.services.Truco.CreateBotMatch(c.Request.Context(), uid, nickname, body.TargetPoints)
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) JoinMatch(c *gin.Context) {
	gameID := gameIDParam(c)
	if gameID == "" {
		return
	}
	uid := middleware.UserID(c)
	nickname := h.services.User.Nickname(c.Request.Context(), uid)

	view, err := h.services.Truco.Join(c.Request.Context(), gameID, uid, nickname)
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) GetState(c *gin.Context) {
	gameID := gameIDParam(c)
	if gameID == "" {
		return
	}
	view, err := h.services.Truco.GetState(c.Request.Context(), gameID, middleware.UserID(c))
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) PlayCard(c *gin.Context) {
	gameID := gameIDParam(c)
	if gameID == "" {
		return
	}
	var body playCardBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.services.Truco.Play(c.Request.Context(), gameID, middleware.UserID(c), body.CardID)
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) Call(c *gin.Context) {
	gameID := gameIDParam(c)
	if gameID == "" {
		return
	}
	var body callBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.services.Truco.Call(c.Request.Context(), gameID, middleware.UserID(c),
		game.CallKind(body.Kind), game.CallOffer(body.Offer))
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) Respond(c *gin.Context) {
	gameID := gameIDParam(c)
	if gameID == "" {
		return
	}
	var body respondBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.services.Truco.Respond(c.Request.Context(), gameID, middleware.UserID(c), *body.Accept)
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) DeclareEnvido(c *gin.Context) {
	gameID := gameIDParam(c)
	if gameID == "" {
		return
	}
	view, err := h.services.Truco.DeclareEnvido(c.Request.Context(), gameID, middleware.UserID(c))
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) NextHand(c *gin.Context) {
	gameID := gameIDParam(c)
	if gameID == "" {
		return
	}
	view, err := h.services.Truco.NextHand(c.Request.Context(), gameID, middleware.UserID(c))
	if err != nil {
		h.handleGameError(c, err)
		return
	}
	response.Success(c, view)
}

func (h *Handler) handleGameError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, appErr.ErrGameNotFound), errors.Is(err, appErr.ErrUserNotFound):
		response.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, appErr.ErrNotParticipant),
		errors.Is(err, appErr.ErrNotYourTurn),
		errors.Is(err, appErr.ErrNotYourCall),
		errors.Is(err, appErr.ErrRaiseNotYours):
		response.Error(c, http.StatusForbidden, err.Error())
	case errors.Is(err, appErr.ErrGameExists),
		errors.Is(err, appErr.ErrGameFull),
		errors.Is(err, appErr.ErrConflict),
		errors.Is(err, appErr.ErrAlreadyPlayed),
		errors.Is(err, appErr.ErrAlreadyDeclared),
		errors.Is(err, appErr.ErrCallPending),
		errors.Is(err, appErr.ErrMatchFinished),
		errors.Is(err, appErr.ErrGameNotPlaying),
		errors.Is(err, appErr.ErrHandNotFinished):
		response.Error(c, http.StatusConflict, err.Error())
	case errors.Is(err, appErr.ErrUnknownCard),
		errors.Is(err, appErr.ErrCardNotInHand),
		errors.Is(err, appErr.ErrNoCallPending),
		errors.Is(err, appErr.ErrEnvidoClosed),
		errors.Is(err, appErr.ErrEnvidoPlayed),
		errors.Is(err, appErr.ErrEnvidoNotOpen),
		errors.Is(err, appErr.ErrInvalidRaise),
		errors.Is(err, appErr.ErrCallsDisabled),
		errors.Is(err, appErr.ErrMissingOpponent),
		errors.Is(err, appErr.ErrInvalidHand),
		errors.Is(err, appErr.ErrHandNotDealt),
		errors.Is(err, appErr.ErrInvalidMatchParams):
		response.Error(c, http.StatusBadRequest, err.Error())
	default:
		response.Error(c, http.StatusInternalServerError, err.Error())
	}
}

func gameIDParam(c *gin.Context) string {
	gameID := strings.TrimSpace(c.Param("id"))
	if gameID == "" {
		response.Error(c, http.StatusBadRequest, "invalid game id")
	}
	return gameID
}
