package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nocta-service/internal/inbox"
)

// InboxHandler serves the aggregated thread list and read acknowledgements
// for both roles; only the partition scope differs between them.
type InboxHandler struct {
	inbox *inbox.Service
}

// NewInboxHandler builds an InboxHandler.
func NewInboxHandler(inboxService *inbox.Service) *InboxHandler {
	return &InboxHandler{inbox: inboxService}
}

// ListThreads recomputes and returns the viewer's threads, newest first, with
// unread flags and the aggregate unread count for the badge.
func (h *InboxHandler) ListThreads(c *gin.Context) {
	viewerID, _, role := viewerFromContext(c)

	threads, unread, err := h.inbox.Threads(c.Request.Context(), viewerID, role)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load inbox"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"threads": threads, "unread_count": unread})
}

// MarkThreadRead overwrites the viewer's watermark for the counterparty with
// the current time. Called when a thread is opened.
func (h *InboxHandler) MarkThreadRead(c *gin.Context) {
	viewerID, _, _ := viewerFromContext(c)
	counterpartyID := c.Param("counterparty_id")
	if counterpartyID == "" || counterpartyID == viewerID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid counterparty"})
		return
	}

	if err := h.inbox.Tracker().MarkRead(c.Request.Context(), viewerID, counterpartyID, time.Now()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to persist read state"})
		return
	}

	c.Status(http.StatusNoContent)
}
