package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookSender_Send(t *testing.T) {
	type received struct {
		contentType string
		msg         webhookMessage
	}
	requests := make(chan received, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var rec received
		rec.contentType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &rec.msg)
		requests <- rec
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewWebhookSender(server.URL, nil)
	require.NoError(t, sender.Send(context.Background(), 42, "🎁 Скидки на сегодня"))

	got := <-requests
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, int64(42), got.msg.UserID)
	assert.Equal(t, "🎁 Скидки на сегодня", got.msg.Text)
}

func TestWebhookSender_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewWebhookSender(server.URL, nil).Send(context.Background(), 1, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}

func TestWebhookSender_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	err := NewWebhookSender(url, &http.Client{Timeout: time.Second}).Send(context.Background(), 1, "text")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook request")
}
