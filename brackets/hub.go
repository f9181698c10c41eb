package brackets

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Типы событий, которые арена рассылает наблюдателям. Имена совпадают
// с контрактом клиента.
const (
	EventTournamentState = "tournament-state"
	EventUsersList       = "users-list"
	EventActiveBets      = "active-bets"
	EventChatMessage     = "chat-message"
	EventChatHistory     = "chat-history"
	EventMuteTable       = "mute-table"
)

// Event — конверт одного сообщения наблюдателю.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client — одно websocket-соединение наблюдателя. Username пустой,
// пока зритель не вошёл (анонимный просмотр разрешён).
type Client struct {
	Hub      *Hub
	Conn     *websocket.Conn
	Send     chan []byte
	Username string
	IsClosed bool
	Mu       sync.Mutex
}

// Hub держит всех подключённых наблюдателей одной арены и рассылает им
// события. Все клиенты видят одно и то же состояние: комнат нет.
type Hub struct {
	Register   chan *Client
	Unregister chan *Client

	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mu.Lock()
			h.clients[client] = true
			h.logger.Info("observer connected", slog.Int("total", len(h.clients)))
			h.mu.Unlock()

		case client := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				client.Mu.Lock()
				if !client.IsClosed {
					close(client.Send)
					client.IsClosed = true
				}
				client.Mu.Unlock()
				delete(h.clients, client)
				h.logger.Info("observer disconnected", slog.Int("total", len(h.clients)))
			}
			h.mu.Unlock()
		}
	}
}

// BroadcastEvent отправляет событие всем подключённым наблюдателям.
// Вызывается только после того, как мутация полностью применена.
func (h *Hub) BroadcastEvent(eventType string, payload interface{}) {
	messageBytes, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		h.logger.Error("failed to marshal event", slog.String("type", eventType), slog.Any("error", err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		client.Mu.Lock()
		if client.IsClosed {
			client.Mu.Unlock()
			continue
		}
		select {
		case client.Send <- messageBytes:
		default:
			// Медленный клиент: пропускаем, следующий снапшот его догонит.
		}
		client.Mu.Unlock()
	}
}

// Online reports whether any connected client belongs to the given user.
func (h *Hub) Online(username string) bool {
	if username == "" {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		if client.Username == username {
			return true
		}
	}
	return false
}

func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Unregister <- c
		c.Conn.Close()
		c.Mu.Lock()
		c.IsClosed = true
		c.Mu.Unlock()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		// Все команды приходят по HTTP; входящие websocket-сообщения игнорируются.
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.logger.Warn("unexpected websocket close", slog.Any("error", err))
			}
			break
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
		c.Mu.Lock()
		c.IsClosed = true
		c.Mu.Unlock()
	}()
	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.Conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.Send)
			for i := 0; i < n; i++ {
				w.Write(<-c.Send)
			}

			if err := w.Close(); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
