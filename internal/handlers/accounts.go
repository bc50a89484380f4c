package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nocta-service/internal/functions"
	"nocta-service/internal/models"
	"nocta-service/internal/repositories"
	"nocta-service/internal/telemetry"
)

// AccountHandler covers profile management, company verification, payment
// session initiation, media upload and account cleanup.
type AccountHandler struct {
	profiles  repositories.ProfileRepository
	functions *functions.Client
	audit     *telemetry.AuditEmitter
}

// NewAccountHandler builds an AccountHandler.
func NewAccountHandler(profiles repositories.ProfileRepository, fns *functions.Client, audit *telemetry.AuditEmitter) *AccountHandler {
	return &AccountHandler{profiles: profiles, functions: fns, audit: audit}
}

// GetProfile returns the viewer's own profile.
func (h *AccountHandler) GetProfile(c *gin.Context) {
	viewerID, _, _ := viewerFromContext(c)
	profile, err := h.profiles.Get(c.Request.Context(), viewerID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// UpsertProfile creates or updates the viewer's profile record. Identity and
// role come from the session, never from the body.
func (h *AccountHandler) UpsertProfile(c *gin.Context) {
	var req struct {
		DisplayName string `json:"display_name"`
		CompanyName string `json:"company_name"`
		Username    string `json:"username"`
		AvatarURL   string `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	viewerID, viewerEmail, role := viewerFromContext(c)
	existing, err := h.profiles.Get(c.Request.Context(), viewerID)
	if err != nil && !errors.Is(err, repositories.ErrProfileNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}

	profile := models.Profile{
		ID:          viewerID,
		Role:        role,
		DisplayName: req.DisplayName,
		CompanyName: req.CompanyName,
		Username:    req.Username,
		Email:       viewerEmail,
		AvatarURL:   req.AvatarURL,
		Verified:    existing.Verified,
	}
	if err := h.profiles.Upsert(c.Request.Context(), profile); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save profile"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// RequestVerification files a company verification request through the
// verification function.
func (h *AccountHandler) RequestVerification(c *gin.Context) {
	viewerID, viewerEmail, _ := viewerFromContext(c)

	if err := h.functions.RequestCompanyVerification(c.Request.Context(), viewerID, viewerEmail); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "verification request failed"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "verification_request", viewerID, "company verification requested", requestIDFromContext(c), auditUserID(c))
	c.JSON(http.StatusAccepted, gin.H{"status": "requested"})
}

// ApproveVerification marks a company verified. Approval itself happens in
// the external function; this records the outcome.
func (h *AccountHandler) ApproveVerification(c *gin.Context) {
	companyID := c.Param("company_id")
	if err := h.profiles.SetVerified(c.Request.Context(), companyID, true); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrProfileNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not verify company"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "verification_approve", companyID, "company verified", requestIDFromContext(c), auditUserID(c))
	c.Status(http.StatusNoContent)
}

// CreatePaymentSession starts the ticket purchase flow for an event and
// returns the hosted checkout URL.
func (h *AccountHandler) CreatePaymentSession(c *gin.Context) {
	var req struct {
		EventID  string `json:"event_id" binding:"required"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	viewerID, _, _ := viewerFromContext(c)
	session, err := h.functions.CreatePaymentSession(c.Request.Context(), viewerID, req.EventID, req.Quantity)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not start checkout"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// UploadMedia stores a binary object and returns its retrieval URL.
func (h *AccountHandler) UploadMedia(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing path"})
		return
	}

	data, err := io.ReadAll(c.Request.Body)
	if err != nil || len(data) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty upload"})
		return
	}

	url, err := h.functions.UploadObject(c.Request.Context(), path, c.ContentType(), data)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "upload failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"url": url})
}

// DeleteAccount triggers backend cleanup for the viewer's account.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	viewerID, _, _ := viewerFromContext(c)

	if err := h.functions.CleanupAccount(c.Request.Context(), viewerID); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "cleanup failed"})
		return
	}

	h.audit.Emit(c.Request.Context(), "WARN", "account_delete", viewerID, "account cleanup triggered", requestIDFromContext(c), auditUserID(c))
	c.Status(http.StatusNoContent)
}
