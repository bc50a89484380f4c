package functions

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyTokenSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/verify", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tok-123", body["token"])

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"id": "user-a", "email": "a@example.com", "role": "user"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	identity, err := client.VerifyToken(context.Background(), "tok-123")

	require.NoError(t, err)
	assert.Equal(t, "user-a", identity.ID)
	assert.Equal(t, "a@example.com", identity.Email)
	assert.Equal(t, "user", identity.Role)
}

func TestVerifyTokenEnvelopeError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{"success": false, "error": "token expired"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.VerifyToken(context.Background(), "stale")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "token expired")
}

func TestVerifyTokenRejectsEmptyIdentity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.VerifyToken(context.Background(), "tok")

	require.Error(t, err)
}

func TestFailureWithoutErrorMessageReportsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]any{"success": false})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	err := client.CleanupAccount(context.Background(), "user-a")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestCreatePaymentSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/payments/session", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "event-1", body["event_id"])
		assert.Equal(t, float64(2), body["quantity"])

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"session_id": "sess-9", "checkout_url": "https://pay.example.com/sess-9"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	session, err := client.CreatePaymentSession(context.Background(), "user-a", "event-1", 2)

	require.NoError(t, err)
	assert.Equal(t, "sess-9", session.SessionID)
	assert.Equal(t, "https://pay.example.com/sess-9", session.CheckoutURL)
}

func TestCreatePaymentSessionMissingURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"success": true, "data": map[string]string{"session_id": "sess-9"}})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	_, err := client.CreatePaymentSession(context.Background(), "user-a", "event-1", 1)

	require.Error(t, err)
}

func TestUploadObjectEncodesBase64(t *testing.T) {
	payload := []byte{0x00, 0x01, 0xfe, 0xff}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/storage/upload", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "avatars/user-a.webp", body["path"])
		assert.Equal(t, "image/webp", body["content_type"])
		assert.Equal(t, base64.StdEncoding.EncodeToString(payload), body["data"])

		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"url": "https://cdn.example.com/avatars/user-a.webp"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	url, err := client.UploadObject(context.Background(), "avatars/user-a.webp", "image/webp", payload)

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatars/user-a.webp", url)
}

func TestReencodeVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data":    map[string]string{"url": "https://cdn.example.com/videos/event-1.mp4"},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	url, err := client.ReencodeVideo(context.Background(), "https://legacy.example.com/raw/event-1.mov")

	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/videos/event-1.mp4", url)
}
