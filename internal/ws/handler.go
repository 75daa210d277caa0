package ws

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/robklaiss/truco/internal/service/truco"
	"github.com/robklaiss/truco/internal/store"
	pkgAuth "github.com/robklaiss/truco/pkg/auth"
	appErr "github.com/robklaiss/truco/pkg/errors"
	"github.com/robklaiss/truco/pkg/logger"
)

// Handler streams game state to connected participants. Clients act over
// the REST API; the socket is a one-way feed that pushes a fresh redacted
// view after every committed change.
type Handler struct {
	trucoSvc *truco.Service
	st       store.Store
}

func NewHandler(trucoSvc *truco.Service, st store.Store) *Handler {
	return &Handler{trucoSvc: trucoSvc, st: st}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// OutgoingMessage is one frame pushed to the client.
type OutgoingMessage struct {
	Type string      `json:"type"`
	Rev  int64       `json:"rev,omitempty"`
	Data interface{} `json:"data"`
}

func (h *Handler) HandleGameWS(c *gin.Context) {
	gameID := strings.TrimSpace(c.Param("gameId"))
	if gameID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	token, err := getTokenFromRequest(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	claims, err := pkgAuth.ParseToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}
	uid := claims.UID

	// Validates existence and membership, and deals the hand if pending.
	view, err := h.trucoSvc.GetState(c.Request.Context(), gameID, uid)
	if err != nil {
		switch {
		case errors.Is(err, appErr.ErrGameNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		case errors.Is(err, appErr.ErrNotParticipant):
			c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load game"})
		}
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Log.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	logger.Log.Info("New WebSocket connection",
		zap.String("gameID", gameID),
		zap.String("uid", uid),
	)

	client := newClient(conn, uid, gameID, h.trucoSvc, h.st)
	client.run(view)
}

func getTokenFromRequest(c *gin.Context) (string, error) {
	token := strings.TrimSpace(c.Query("token"))
	if token != "" {
		return token, nil
	}
	authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
	if authHeader != "" {
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = strings.TrimSpace(parts[1])
			if token != "" {
				return token, nil
			}
		}
	}
	return "", errors.New("missing token")
}

type client struct {
	conn      *websocket.Conn
	uid       string
	gameID    string
	trucoSvc  *truco.Service
	st        store.Store
	done      chan struct{}
	pingEvery time.Duration
}

func newClient(conn *websocket.Conn, uid, gameID string, trucoSvc *truco.Service, st store.Store) *client {
	conn.SetReadLimit(1 << 20)
	conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})
	return &client{
		conn:      conn,
		uid:       uid,
		gameID:    gameID,
		trucoSvc:  trucoSvc,
		st:        st,
		done:      make(chan struct{}),
		pingEvery: 25 * time.Second,
	}
}

func (c *client) run(initial *truco.StateView) {
	go c.writePump(initial)
	c.readPump()
}

// readPump drains and discards client frames; it exists to notice the
// disconnect and to answer pings.
func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.conn.Close()
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			logger.Log.Info("WS read error", zap.Error(err), zap.String("uid", c.uid), zap.String("gameID", c.gameID))
			return
		}
	}
}

func (c *client) writePump(initial *truco.StateView) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	events, cancelWatch, err := c.st.Watch(ctx, c.gameID)
	if err != nil {
		logger.Log.Warn("WS watch failed", zap.Error(err), zap.String("gameID", c.gameID))
		c.conn.Close()
		return
	}

	ticker := time.NewTicker(c.pingEvery)
	defer func() {
		ticker.Stop()
		cancelWatch()
		c.conn.Close()
	}()

	if err := c.conn.WriteJSON(OutgoingMessage{Type: "state", Data: initial}); err != nil {
		return
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			view, err := c.trucoSvc.GetState(ctx, c.gameID, c.uid)
			if err != nil {
				logger.Log.Info("WS state load failed", zap.Error(err), zap.String("gameID", c.gameID))
				return
			}
			if err := c.conn.WriteJSON(OutgoingMessage{Type: "state", Rev: ev.Rev, Data: view}); err != nil {
				logger.Log.Info("WS write error", zap.Error(err), zap.String("uid", c.uid), zap.String("gameID", c.gameID))
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}
