package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nocta-service/internal/functions"
	"nocta-service/internal/models"
	"nocta-service/internal/observability"
	"nocta-service/internal/repositories"
	"nocta-service/internal/telemetry"
)

// EventHandler manages the event catalog: browsing, company-side authoring,
// the expiry sweep and video re-encoding.
type EventHandler struct {
	events    repositories.EventRepository
	reencoder *functions.Client
	audit     *telemetry.AuditEmitter
}

// NewEventHandler builds an EventHandler.
func NewEventHandler(events repositories.EventRepository, reencoder *functions.Client, audit *telemetry.AuditEmitter) *EventHandler {
	return &EventHandler{events: events, reencoder: reencoder, audit: audit}
}

// ListEvents returns published events that have not yet ended.
func (h *EventHandler) ListEvents(c *gin.Context) {
	events, err := h.events.ListPublished(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

// GetEvent fetches one event.
func (h *EventHandler) GetEvent(c *gin.Context) {
	event, err := h.events.Get(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrEventNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "event not found"})
		return
	}
	c.JSON(http.StatusOK, event)
}

// ListCompanyEvents returns every event the authenticated company owns,
// drafts included.
func (h *EventHandler) ListCompanyEvents(c *gin.Context) {
	companyID, _, _ := viewerFromContext(c)
	events, err := h.events.ListByCompany(c.Request.Context(), companyID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load events"})
		return
	}
	if events == nil {
		events = []models.Event{}
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

type eventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	VenueName   string    `json:"venue_name"`
	StartsAt    time.Time `json:"starts_at" binding:"required"`
	EndsAt      time.Time `json:"ends_at" binding:"required"`
	ImageURL    string    `json:"image_url"`
	VideoURL    string    `json:"video_url"`
	TicketURL   string    `json:"ticket_url"`
	Published   bool      `json:"published"`
}

// CreateEvent stores a new event owned by the authenticated company.
func (h *EventHandler) CreateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndsAt.After(req.StartsAt) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event must end after it starts"})
		return
	}

	companyID, _, _ := viewerFromContext(c)
	event, err := h.events.Create(c.Request.Context(), models.Event{
		CompanyID:   companyID,
		Title:       req.Title,
		Description: req.Description,
		VenueName:   req.VenueName,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		ImageURL:    req.ImageURL,
		VideoURL:    req.VideoURL,
		TicketURL:   req.TicketURL,
		Published:   req.Published,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create event"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "event_create", event.ID, "event created", requestIDFromContext(c), auditUserID(c))
	c.JSON(http.StatusCreated, event)
}

// UpdateEvent rewrites an event the company owns.
func (h *EventHandler) UpdateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	companyID, _, _ := viewerFromContext(c)
	err := h.events.Update(c.Request.Context(), models.Event{
		ID:          c.Param("event_id"),
		CompanyID:   companyID,
		Title:       req.Title,
		Description: req.Description,
		VenueName:   req.VenueName,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		ImageURL:    req.ImageURL,
		VideoURL:    req.VideoURL,
		TicketURL:   req.TicketURL,
		Published:   req.Published,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrEventNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not update event"})
		return
	}
	c.Status(http.StatusNoContent)
}

// SweepExpired moves events that already ended into the archive. Triggered by
// clients on view mount and by the CLI.
func (h *EventHandler) SweepExpired(c *gin.Context) {
	moved, err := h.events.ArchiveExpired(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sweep failed"})
		return
	}

	observability.AddEventsArchived(moved)
	if moved > 0 {
		h.audit.Emit(c.Request.Context(), "INFO", "event_archive", "", "expired events archived", requestIDFromContext(c), auditUserID(c))
	}
	c.JSON(http.StatusOK, gin.H{"archived": moved})
}

// ReencodeVideo triggers re-encoding of an event's video through the video
// function and stores the returned rendition URL.
func (h *EventHandler) ReencodeVideo(c *gin.Context) {
	companyID, _, _ := viewerFromContext(c)

	event, err := h.events.Get(c.Request.Context(), c.Param("event_id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrEventNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "event not found"})
		return
	}
	if event.CompanyID != companyID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your event"})
		return
	}
	if event.VideoURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event has no video"})
		return
	}

	encodedURL, err := h.reencoder.ReencodeVideo(c.Request.Context(), event.VideoURL)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "re-encoding failed"})
		return
	}

	event.VideoURL = encodedURL
	if err := h.events.Update(c.Request.Context(), event); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store encoded url"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"video_url": encodedURL})
}
