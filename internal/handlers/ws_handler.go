package handlers

import (
	"net/http"

	"github.com/Temirlan472/Learning_Tracker/internal/realtime"
	jwtutil "github.com/Temirlan472/Learning_Tracker/pkg/jwt"
	"github.com/Temirlan472/Learning_Tracker/pkg/logger"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WSHandler upgrades clients onto the realtime hub. A connection is
// anonymous until the client sends a user:login frame; it leaves the
// presence registry when the socket closes.
type WSHandler struct {
	Hub       *realtime.Hub
	JWTSecret string
}

func NewWSHandler(hub *realtime.Hub, jwtSecret string) *WSHandler {
	return &WSHandler{Hub: hub, JWTSecret: jwtSecret}
}

type clientFrame struct {
	Event  string `json:"event"`
	UserID string `json:"userId"`
}

// GET /ws?token=...
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	// The token is optional at upgrade time: identity arrives with the
	// user:login frame. When a token is supplied it pins the identity the
	// connection may claim.
	var tokenUserID string
	if token := r.URL.Query().Get("token"); token != "" {
		claims, err := jwtutil.ValidateToken(token, h.JWTSecret)
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		tokenUserID = claims.UserID
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Log.WithError(err).Error("WebSocket upgrade failed")
		return
	}

	connID := h.Hub.Connect(conn)
	logger.Log.WithField("conn_id", connID).Info("WebSocket connected")

	defer func() {
		h.Hub.Disconnect(connID)
		conn.Close()
		logger.Log.WithField("conn_id", connID).Info("WebSocket disconnected")
	}()

	for {
		var frame clientFrame
		if err := conn.ReadJSON(&frame); err != nil {
			break // client went away
		}

		if frame.Event == "user:login" && frame.UserID != "" {
			if tokenUserID != "" && frame.UserID != tokenUserID {
				logger.Log.WithFields(map[string]interface{}{
					"claimed": frame.UserID,
					"token":   tokenUserID,
				}).Warn("Login frame does not match token identity")
				continue
			}
			h.Hub.Register(frame.UserID, connID)
		}
	}
}
