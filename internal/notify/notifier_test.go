package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/clickfix/internal/config"
	customerrors "github.com/axellelanca/clickfix/internal/errors"
)

var sampleAlert = Alert{
	EventType: "PAYLOAD_EXECUTED",
	UserID:    "abc123",
	SourceIP:  "10.0.0.7",
	Time:      time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC),
	Hostname:  "WORKSTATION-01",
	Username:  "jdoe",
}

func TestAlert_Text(t *testing.T) {
	text := sampleAlert.Text()
	assert.Contains(t, text, "**Event:** PAYLOAD_EXECUTED")
	assert.Contains(t, text, "**User ID:** abc123")
	assert.Contains(t, text, "**IP:** 10.0.0.7")
	assert.Contains(t, text, "**Time:** 2026-10-14 09:30:00 UTC")
	assert.Contains(t, text, "**Host:** WORKSTATION-01\n**User:** jdoe")

	click := Alert{EventType: "BUTTON_CLICK", UserID: "abc123", Time: sampleAlert.Time}
	assert.NotContains(t, click.Text(), "**Host:**")
}

func TestWebhookNotifier_PostsText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL, time.Second)
	require.NoError(t, n.Notify(context.Background(), sampleAlert))
	assert.Equal(t, sampleAlert.Text(), got["text"])
}

func TestWebhookNotifier_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewWebhookNotifier(srv.URL, time.Second).Notify(context.Background(), sampleAlert)
	var nf customerrors.ErrNotificationFailed
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "webhook", nf.Sink)
	assert.Contains(t, nf.Reason, "502")
}

func TestWebhookNotifier_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	err := NewWebhookNotifier(srv.URL, 50*time.Millisecond).Notify(context.Background(), sampleAlert)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestNew_SelectsDriver(t *testing.T) {
	n, err := New(config.Notify{})
	require.NoError(t, err)
	assert.IsType(t, Nop{}, n)

	n, err = New(config.Notify{WebhookURL: "https://hooks.example.test/x", TimeoutSeconds: 2})
	require.NoError(t, err)
	assert.IsType(t, &WebhookNotifier{}, n)

	_, err = New(config.Notify{Driver: "webhook"})
	assert.Error(t, err)

	_, err = New(config.Notify{Driver: "amqp"})
	assert.Error(t, err)

	_, err = New(config.Notify{Driver: "carrier-pigeon"})
	assert.Error(t, err)
}
