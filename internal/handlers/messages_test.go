package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"nocta-service/internal/mocks"
	"nocta-service/internal/models"
	"nocta-service/internal/ws"
)

func setupMessageRouter(handler *MessageHandler, viewerID, role string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", viewerID)
		c.Set("userEmail", viewerID+"@example.com")
		c.Set("role", role)
		c.Next()
	})
	r.GET("/partitions/:company_id/messages", handler.GetConversation)
	r.POST("/partitions/:company_id/messages", handler.PostMessage)
	r.DELETE("/partitions/:company_id/messages/:message_id", handler.DeleteMessage)
	return r
}

func TestGetConversationAsUser(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler, "user-a", models.RoleUser)

	messageRepo.On("ConversationMessages", mock.Anything, "company-b", "user-a", "company-b").
		Return([]models.Message{{ID: "m1", SenderID: "user-a", RecipientID: "company-b", Text: "hi"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/partitions/company-b/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestGetConversationCompanyRequiresOwnPartition(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler, "company-b", models.RoleCompany)

	req := httptest.NewRequest(http.MethodGet, "/partitions/company-c/messages", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPostMessageAsCompany(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler, "company-b", models.RoleCompany)

	messageRepo.On("Append", mock.Anything, "company-b", "company-b", "company-b@example.com", "user-a", "welcome in").
		Return(models.Message{ID: "m1", PartitionID: "company-b", SenderID: "company-b", RecipientID: "user-a", Text: "welcome in"}, nil).Once()

	body := bytes.NewBufferString(`{"recipient_id":"user-a","text":"welcome in"}`)
	req := httptest.NewRequest(http.MethodPost, "/partitions/company-b/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestPostMessageUserDefaultsRecipientToCompany(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler, "user-a", models.RoleUser)

	messageRepo.On("Append", mock.Anything, "company-b", "user-a", "user-a@example.com", "company-b", "table for two?").
		Return(models.Message{ID: "m2", PartitionID: "company-b", SenderID: "user-a", RecipientID: "company-b", Text: "table for two?"}, nil).Once()

	body := bytes.NewBufferString(`{"text":"table for two?"}`)
	req := httptest.NewRequest(http.MethodPost, "/partitions/company-b/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	messageRepo.AssertExpectations(t)
}

func TestPostMessageRejectsBlankText(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler, "user-a", models.RoleUser)

	body := bytes.NewBufferString(`{"text":"   "}`)
	req := httptest.NewRequest(http.MethodPost, "/partitions/company-b/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	messageRepo.AssertNotCalled(t, "Append")
}

func TestPostMessageRejectsForeignRecipient(t *testing.T) {
	handler := NewMessageHandler(new(mocks.MessageRepositoryMock), new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler, "user-a", models.RoleUser)

	// Messages in a company partition must address that company.
	body := bytes.NewBufferString(`{"recipient_id":"company-c","text":"hi"}`)
	req := httptest.NewRequest(http.MethodPost, "/partitions/company-b/messages", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteMessageOnlySender(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler, "user-a", models.RoleUser)

	messageRepo.On("GetMessage", mock.Anything, "company-b", "m1").
		Return(models.Message{ID: "m1", PartitionID: "company-b", SenderID: "company-b", RecipientID: "user-a"}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/partitions/company-b/messages/m1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	messageRepo.AssertNotCalled(t, "SoftDelete")
}

func TestDeleteMessageIsIdempotent(t *testing.T) {
	messageRepo := new(mocks.MessageRepositoryMock)
	handler := NewMessageHandler(messageRepo, new(mocks.ProfileRepositoryMock), ws.NewHub(), nil)
	router := setupMessageRouter(handler, "user-a", models.RoleUser)

	now := time.Now()
	deleted := models.Message{
		ID: "m1", PartitionID: "company-b", SenderID: "user-a", RecipientID: "company-b",
		Text: models.DeletedText, Deleted: true, DeletedAt: &now, DeletedBy: "user-a",
	}
	messageRepo.On("GetMessage", mock.Anything, "company-b", "m1").
		Return(models.Message{ID: "m1", PartitionID: "company-b", SenderID: "user-a", RecipientID: "company-b", Text: "oops"}, nil).Once()
	messageRepo.On("GetMessage", mock.Anything, "company-b", "m1").Return(deleted, nil)
	messageRepo.On("SoftDelete", mock.Anything, "company-b", "m1", "user-a").Return(nil).Twice()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/partitions/company-b/messages/m1", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code, "call %d", i+1)
	}

	messageRepo.AssertExpectations(t)
	assert.Equal(t, models.DeletedText, deleted.Text)
}
