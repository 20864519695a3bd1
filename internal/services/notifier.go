package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/yukikurage/splitmate-api/internal/metrics"
)

// Notifier delivers invitation and reminder emails.
type Notifier interface {
	SendInvite(ctx context.Context, email, eventName string) error
	SendReminder(ctx context.Context, email, eventName string, items []string) error
}

// FeatureGate answers whether optional features are switched on right now.
type FeatureGate interface {
	SendMailEnabled(ctx context.Context, action string) bool
	SignUpEnabled(ctx context.Context, email string) bool
}

// LogNotifier only logs. It is used when no mail provider is configured.
type LogNotifier struct{}

func (LogNotifier) SendInvite(_ context.Context, email, eventName string) error {
	slog.Info("Invite email skipped, no mail provider configured", "email", email, "event", eventName)
	return nil
}

func (LogNotifier) SendReminder(_ context.Context, email, eventName string, items []string) error {
	slog.Info("Reminder email skipped, no mail provider configured",
		"email", email,
		"event", eventName,
		"items", strings.Join(items, ", "),
	)
	return nil
}

// StaticFeatureGate reads its switches from configuration.
type StaticFeatureGate struct {
	mailActions   map[string]struct{}
	signUpDomains []string
}

// NewStaticFeatureGate enables the given mail actions and restricts signup to
// the given email domains (all domains when empty).
func NewStaticFeatureGate(mailActions, signUpDomains []string) *StaticFeatureGate {
	actions := make(map[string]struct{}, len(mailActions))
	for _, a := range mailActions {
		actions[strings.ToLower(a)] = struct{}{}
	}
	return &StaticFeatureGate{mailActions: actions, signUpDomains: signUpDomains}
}

func (g *StaticFeatureGate) SendMailEnabled(_ context.Context, action string) bool {
	_, ok := g.mailActions[strings.ToLower(action)]
	return ok
}

func (g *StaticFeatureGate) SignUpEnabled(_ context.Context, email string) bool {
	if len(g.signUpDomains) == 0 {
		return true
	}
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	for _, d := range g.signUpDomains {
		if domain == d {
			return true
		}
	}
	return false
}

// dispatch hands one email to the notifier. Delivery failures are logged and
// never fail the operation that triggered them.
func dispatch(kind, email string, send func() error) {
	if err := send(); err != nil {
		metrics.EmailDispatches.WithLabelValues(kind, "error").Inc()
		slog.Warn("Email dispatch failed", "kind", kind, "email", email, "error", err)
		return
	}
	metrics.EmailDispatches.WithLabelValues(kind, "sent").Inc()
}
