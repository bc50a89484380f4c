package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"nocta-service/internal/models"
	"nocta-service/internal/repositories"
	"nocta-service/internal/telemetry"
	"nocta-service/internal/ws"
)

// MessageHandler manages the conversation surface of one partition: reading a
// conversation, appending messages and soft-deleting them.
type MessageHandler struct {
	messages repositories.MessageRepository
	profiles repositories.ProfileRepository
	hub      *ws.Hub
	audit    *telemetry.AuditEmitter
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messages repositories.MessageRepository, profiles repositories.ProfileRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *MessageHandler {
	return &MessageHandler{messages: messages, profiles: profiles, hub: hub, audit: audit}
}

// conversationScope resolves partition and counterparty for the viewer, and
// rejects access outside the viewer's conversations. Companies read their own
// partition against any counterparty; users read a company partition where
// the counterparty is always that company.
func conversationScope(c *gin.Context) (partitionID, counterpartyID string, ok bool) {
	viewerID, _, role := viewerFromContext(c)
	partitionID = c.Param("company_id")

	if role == models.RoleCompany {
		if partitionID != viewerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your partition"})
			return "", "", false
		}
		counterpartyID = c.Query("with")
		if counterpartyID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing counterparty"})
			return "", "", false
		}
		return partitionID, counterpartyID, true
	}

	// Private users always converse with the partition-owning company.
	return partitionID, partitionID, true
}

// GetConversation returns the messages between the viewer and one
// counterparty, oldest first. An empty conversation is a valid empty state.
func (h *MessageHandler) GetConversation(c *gin.Context) {
	partitionID, counterpartyID, ok := conversationScope(c)
	if !ok {
		return
	}
	viewerID, _, _ := viewerFromContext(c)

	msgs, err := h.messages.ConversationMessages(c.Request.Context(), partitionID, viewerID, counterpartyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	if msgs == nil {
		msgs = []models.Message{}
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// PostMessage appends a message to the partition and broadcasts it. The store
// assigns id and timestamp. Blank text and missing counterparties are
// rejected before any write.
func (h *MessageHandler) PostMessage(c *gin.Context) {
	viewerID, viewerEmail, role := viewerFromContext(c)
	partitionID := c.Param("company_id")

	var req struct {
		RecipientID string `json:"recipient_id"`
		Text        string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if role == models.RoleCompany {
		if partitionID != viewerID {
			c.JSON(http.StatusForbidden, gin.H{"error": "not your partition"})
			return
		}
	} else if req.RecipientID == "" {
		// A user's messages always address the partition-owning company.
		req.RecipientID = partitionID
	} else if req.RecipientID != partitionID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipient must own the partition"})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" || req.RecipientID == "" || req.RecipientID == viewerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "nothing to send"})
		return
	}

	msg, err := h.messages.Append(c.Request.Context(), partitionID, viewerID, viewerEmail, req.RecipientID, text)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.hub.BroadcastMessage(partitionID, msg)
	h.audit.Emit(c.Request.Context(), "INFO", "message_send", msg.ID, "message appended", requestIDFromContext(c), auditUserID(c))
	c.JSON(http.StatusCreated, msg)
}

// DeleteMessage performs the soft-delete transition. Only the original sender
// may redact; the rule is enforced here, not just hidden in the UI. Repeating
// the call yields the same terminal state.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	viewerID, _, role := viewerFromContext(c)
	partitionID := c.Param("company_id")
	messageID := c.Param("message_id")

	if role == models.RoleCompany && partitionID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your partition"})
		return
	}

	msg, err := h.messages.GetMessage(c.Request.Context(), partitionID, messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.SenderID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender can delete"})
		return
	}

	if err := h.messages.SoftDelete(c.Request.Context(), partitionID, messageID, viewerID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	deleted, err := h.messages.GetMessage(c.Request.Context(), partitionID, messageID)
	if err == nil {
		h.hub.BroadcastDeletion(partitionID, deleted)
	}
	h.audit.Emit(c.Request.Context(), "INFO", "message_delete", messageID, "message soft-deleted", requestIDFromContext(c), auditUserID(c))
	c.Status(http.StatusNoContent)
}
