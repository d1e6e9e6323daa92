// Package notify delivers best-effort alerts for critical funnel events.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/axellelanca/clickfix/internal/config"
)

// Alert is the payload sent when a target clicks or executes the payload.
type Alert struct {
	EventType string    `json:"event_type"`
	UserID    string    `json:"user_id"`
	SourceIP  string    `json:"source_ip"`
	Time      time.Time `json:"time"`
	Hostname  string    `json:"hostname,omitempty"`
	Username  string    `json:"username,omitempty"`
}

// Text renders the alert as the chat-style message posted to webhooks.
func (a Alert) Text() string {
	var b strings.Builder
	b.WriteString("🚨 **ClickFix Alert** 🚨\n")
	fmt.Fprintf(&b, "**Event:** %s\n", a.EventType)
	fmt.Fprintf(&b, "**User ID:** %s\n", a.UserID)
	fmt.Fprintf(&b, "**IP:** %s\n", a.SourceIP)
	fmt.Fprintf(&b, "**Time:** %s", a.Time.UTC().Format("2006-01-02 15:04:05 UTC"))
	if a.Hostname != "" {
		fmt.Fprintf(&b, "\n**Host:** %s\n**User:** %s", a.Hostname, a.Username)
	}
	return b.String()
}

// Notifier is an outbound alert sink. Callers treat every error as non-fatal.
type Notifier interface {
	Notify(ctx context.Context, alert Alert) error
}

// Nop discards alerts. It is used when no sink is configured.
type Nop struct{}

func (Nop) Notify(context.Context, Alert) error { return nil }

// New builds the sink selected by cfg.
func New(cfg config.Notify) (Notifier, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	switch cfg.EffectiveDriver() {
	case "none":
		return Nop{}, nil
	case "webhook":
		if cfg.WebhookURL == "" {
			return nil, fmt.Errorf("notify.webhook_url is required for the webhook driver")
		}
		return NewWebhookNotifier(cfg.WebhookURL, timeout), nil
	case "amqp":
		if cfg.AMQPURL == "" {
			return nil, fmt.Errorf("notify.amqp_url is required for the amqp driver")
		}
		return NewAMQPNotifier(cfg.AMQPURL, cfg.AMQPQueue)
	default:
		return nil, fmt.Errorf("unsupported notify driver %q", cfg.Driver)
	}
}
