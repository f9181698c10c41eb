package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/knockout-arena/brackets"
	"github.com/Dosada05/knockout-arena/middleware"
	"github.com/Dosada05/knockout-arena/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketHandler struct {
	hub               *brackets.Hub
	tournamentService services.TournamentService
	wagerService      services.WagerService
	chatService       services.ChatService
	jwtSecret         []byte
	logger            *slog.Logger
}

func NewWebSocketHandler(
	hub *brackets.Hub,
	tournamentService services.TournamentService,
	wagerService services.WagerService,
	chatService services.ChatService,
	jwtSecret []byte,
	logger *slog.Logger,
) *WebSocketHandler {
	return &WebSocketHandler{
		hub:               hub,
		tournamentService: tournamentService,
		wagerService:      wagerService,
		chatService:       chatService,
		jwtSecret:         jwtSecret,
		logger:            logger,
	}
}

// ServeWs подключает наблюдателя. Токен в query опционален: без него зритель
// анонимный и не учитывается в статусах is_online.
func (h *WebSocketHandler) ServeWs(w http.ResponseWriter, r *http.Request) {
	username := ""
	if raw := r.URL.Query().Get("token"); raw != "" {
		claims, err := middleware.ParseToken(h.jwtSecret, raw)
		if err != nil {
			errorResponse(w, r, http.StatusUnauthorized, "invalid token")
			return
		}
		username = claims.Username
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", slog.Any("error", err))
		return
	}

	client := &brackets.Client{
		Hub:      h.hub,
		Conn:     conn,
		Send:     make(chan []byte, 256),
		Username: username,
	}
	h.hub.Register <- client

	// Свежеподключённый наблюдатель получает полный снимок, дальше живёт
	// на инкрементальных событиях.
	h.greet(r, client)

	go client.WritePump()
	go client.ReadPump()
}

func (h *WebSocketHandler) greet(r *http.Request, client *brackets.Client) {
	ctx := r.Context()
	events := []brackets.Event{
		{Type: brackets.EventTournamentState, Payload: h.tournamentService.State(ctx)},
		{Type: brackets.EventUsersList, Payload: h.tournamentService.Users(ctx)},
		{Type: brackets.EventActiveBets, Payload: h.wagerService.Book(ctx)},
		{Type: brackets.EventChatHistory, Payload: h.chatService.History(ctx)},
		{Type: brackets.EventMuteTable, Payload: h.chatService.MuteTable(ctx)},
	}
	for _, event := range events {
		raw, err := json.Marshal(event)
		if err != nil {
			h.logger.Error("failed to marshal greeting event", slog.String("type", event.Type), slog.Any("error", err))
			continue
		}
		select {
		case client.Send <- raw:
		default:
		}
	}
}
