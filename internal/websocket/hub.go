package websocket

import (
	"encoding/json"
	"sync"

	"github.com/verdana/verdana-backend/internal/app/model"
	"github.com/verdana/verdana-backend/pkg/logger"
)

// OrderStatusEvent is pushed to the order's owner whenever an admin
// moves the order through the status machine.
type OrderStatusEvent struct {
	Type        string            `json:"type"`
	OrderID     uint              `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	Status      model.OrderStatus `json:"status"`
}

// Client is one websocket session for one user.
type Client struct {
	Hub    *Hub
	Conn   *Conn
	UserID uint
	Send   chan []byte
}

// Hub tracks connected clients and routes notifications to them.
// A user may hold several sessions at once (multiple tabs or devices);
// every session receives every event.
type Hub struct {
	clients    map[uint][]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[uint][]*Client),
		register:   make(chan *Client, 256),
		unregister: make(chan *Client, 256),
	}
}

// Run processes registration traffic. Call it once from a goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.UserID] = append(h.clients[client.UserID], client)
			sessions := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client registered", map[string]interface{}{
				"user_id":        client.UserID,
				"total_sessions": sessions,
			})

		case client := <-h.unregister:
			h.mu.Lock()
			removed := false
			if clientList, ok := h.clients[client.UserID]; ok {
				newList := make([]*Client, 0, len(clientList))
				for _, c := range clientList {
					if c != client {
						newList = append(newList, c)
					} else {
						removed = true
					}
				}
				if len(newList) == 0 {
					delete(h.clients, client.UserID)
				} else {
					h.clients[client.UserID] = newList
				}
			}
			// A client can be unregistered twice, once by a full send
			// buffer and once by its read pump teardown. Send must only
			// be closed on the pass that actually removed the client.
			if removed {
				close(client.Send)
			}
			remaining := len(h.clients[client.UserID])
			h.mu.Unlock()
			logger.Info("WebSocket client unregistered", map[string]interface{}{
				"user_id":            client.UserID,
				"remaining_sessions": remaining,
			})
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// IsUserOnline reports whether the user has at least one open session.
func (h *Hub) IsUserOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// NotifyOrderStatus pushes an order status event to all of the owner's
// sessions. Delivery is best effort: an offline user simply misses the
// push, and a session with a full send buffer gets disconnected rather
// than blocking the caller.
func (h *Hub) NotifyOrderStatus(userID uint, orderID uint, orderNumber string, status model.OrderStatus) {
	event := OrderStatusEvent{
		Type:        "order_status",
		OrderID:     orderID,
		OrderNumber: orderNumber,
		Status:      status,
	}
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal order status event", err, nil)
		return
	}

	h.mu.RLock()
	clientList := h.clients[userID]
	h.mu.RUnlock()

	for _, client := range clientList {
		select {
		case client.Send <- data:
		default:
			go h.Unregister(client)
			logger.Warn("Client send buffer full, disconnecting", map[string]interface{}{
				"user_id": userID,
			})
		}
	}
}
