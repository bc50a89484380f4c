package ws

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"nocta-service/internal/models"
	"nocta-service/internal/observability"
)

// Hub maintains active inbox subscriptions, one room per message partition.
// A company subscribes to its own partition; a private user subscribes to
// every company partition and is only delivered the messages involving them.
type Hub struct {
	rooms map[string]map[*websocket.Conn]ConnInfo
	mu    sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*websocket.Conn]ConnInfo)}
}

// Subscribe registers a connection to a set of partition rooms.
func (h *Hub) Subscribe(partitionIDs []string, conn *websocket.Conn, info ConnInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, partitionID := range partitionIDs {
		if _, ok := h.rooms[partitionID]; !ok {
			h.rooms[partitionID] = make(map[*websocket.Conn]ConnInfo)
		}
		h.rooms[partitionID][conn] = info
	}
}

// Unsubscribe removes a connection from every room. Updates arriving after
// removal are no longer delivered to it.
func (h *Hub) Unsubscribe(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for partitionID, conns := range h.rooms {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.rooms, partitionID)
		}
	}
}

// BroadcastMessage pushes an appended message to the partition's subscribers.
func (h *Hub) BroadcastMessage(partitionID string, msg models.Message) {
	h.broadcast(partitionID, models.InboxEvent{Type: "message", Partition: partitionID, Message: &msg})
}

// BroadcastDeletion pushes a soft-delete to the partition's subscribers. The
// rewritten message rides along so clients can update in place.
func (h *Hub) BroadcastDeletion(partitionID string, msg models.Message) {
	h.broadcast(partitionID, models.InboxEvent{Type: "message_deleted", Partition: partitionID, Message: &msg, MessageID: msg.ID})
}

func (h *Hub) broadcast(partitionID string, event models.InboxEvent) {
	h.mu.RLock()
	recipients := make(map[*websocket.Conn]ConnInfo, len(h.rooms[partitionID]))
	for conn, info := range h.rooms[partitionID] {
		recipients[conn] = info
	}
	h.mu.RUnlock()

	payload, _ := json.Marshal(event)
	for conn, info := range recipients {
		if !relevantTo(info, partitionID, event.Message) {
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			log.Printf("websocket write error: %v", err)
			conn.Close()
			h.Unsubscribe(conn)
			h.publishWSError(partitionID, info, err)
		}
	}
}

// relevantTo applies the fan-out filter: the partition owner sees everything
// in its partition, a fanned-out user only the messages they take part in.
func relevantTo(info ConnInfo, partitionID string, msg *models.Message) bool {
	if info.UserID == partitionID {
		return true
	}
	if msg == nil {
		return true
	}
	return msg.SenderID == info.UserID || msg.RecipientID == info.UserID
}

func (h *Hub) publishWSError(partitionID string, info ConnInfo, err error) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"partition":   partitionID,
			"event":       "ws_error",
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      err.Error(),
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"role":      info.Role,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}

	headers := observability.BuildHeaders(info.RequestID, info.TraceID)
	_ = observability.PublishEvent(context.Background(), "ws_events.inbox", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: "ws_error",
		Payload:   payload,
	}, headers)
	observability.IncWSEvent("ws_error")
}
