package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nocta-service/internal/middleware"
	"nocta-service/internal/mocks"
	"nocta-service/internal/models"
	"nocta-service/internal/repositories"
)

func setupApprovalRouter(handler *AccountHandler, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/company/verification/:company_id/approve", middleware.RequireInternalSecret(secret), handler.ApproveVerification)
	return r
}

func TestApproveVerificationRejectsUserSession(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewAccountHandler(profileRepo, nil, nil)
	router := setupApprovalRouter(handler, "callback-secret")

	// A signed-in private user must not be able to flip verification on an
	// arbitrary company; only the verification function callback may.
	req := httptest.NewRequest(http.MethodPost, "/company/verification/company-b/approve", nil)
	req.Header.Set("Authorization", "Bearer user-session-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	profileRepo.AssertNotCalled(t, "SetVerified", mock.Anything, mock.Anything, mock.Anything)
}

func TestApproveVerificationWithCallbackSecret(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewAccountHandler(profileRepo, nil, nil)
	router := setupApprovalRouter(handler, "callback-secret")

	profileRepo.On("SetVerified", mock.Anything, "company-b", true).Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/company/verification/company-b/approve", nil)
	req.Header.Set("X-Internal-Secret", "callback-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	profileRepo.AssertExpectations(t)
}

func TestApproveVerificationUnconfiguredSecretStaysClosed(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewAccountHandler(profileRepo, nil, nil)
	router := setupApprovalRouter(handler, "")

	req := httptest.NewRequest(http.MethodPost, "/company/verification/company-b/approve", nil)
	req.Header.Set("X-Internal-Secret", "")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	profileRepo.AssertNotCalled(t, "SetVerified", mock.Anything, mock.Anything, mock.Anything)
}

func setupProfileRouter(handler *AccountHandler, viewerID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", viewerID)
		c.Set("userEmail", viewerID+"@example.com")
		c.Set("role", role)
		c.Next()
	})
	r.GET("/profile", handler.GetProfile)
	return r
}

func TestGetProfileNotFound(t *testing.T) {
	profileRepo := new(mocks.ProfileRepositoryMock)
	handler := NewAccountHandler(profileRepo, nil, nil)
	router := setupProfileRouter(handler, "user-a", models.RoleUser)

	profileRepo.On("Get", mock.Anything, "user-a").Return(models.Profile{}, repositories.ErrProfileNotFound).Once()

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}
