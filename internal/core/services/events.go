package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/asientoflow/asientoflow/internal/middleware"
	"github.com/asientoflow/asientoflow/internal/utils"
)

// EntryEvent describes a successful lifecycle transition. Message is the
// ledger authority's literal message.
type EntryEvent struct {
	Kind       string
	EntryID    string
	CompanyID  string
	Message    string
	Entry      *domain.JournalEntry
	OccurredAt time.Time
}

// EntryEventSink receives lifecycle transition notifications. Components that
// cache entry lists or per-entry detail subscribe here and reload on every
// event; there is no ambient broadcast.
type EntryEventSink interface {
	EntryChanged(ctx context.Context, event EntryEvent)
}

// BroadcastSink fans one event out to several sinks.
type BroadcastSink []EntryEventSink

func (b BroadcastSink) EntryChanged(ctx context.Context, event EntryEvent) {
	for _, sink := range b {
		sink.EntryChanged(ctx, event)
	}
}

// LoggingSink records transitions in the request log.
type LoggingSink struct{}

func (LoggingSink) EntryChanged(ctx context.Context, event EntryEvent) {
	middleware.GetLoggerFromCtx(ctx).Info("Entry transition",
		slog.String("kind", event.Kind),
		slog.String("entry_id", event.EntryID),
		slog.String("company_id", event.CompanyID),
		slog.String("message", event.Message),
	)
}

// AnalyticsSink forwards transitions to the analytics client.
type AnalyticsSink struct {
	Client *utils.AnalyticsClient
}

func (a AnalyticsSink) EntryChanged(ctx context.Context, event EntryEvent) {
	if a.Client == nil {
		return
	}
	userID, ok := middleware.GetPrincipalFromCtx(ctx)
	if !ok {
		return
	}
	a.Client.Enqueue(userID.UserID, "entry_"+event.Kind, map[string]any{
		"entry_id":   event.EntryID,
		"company_id": event.CompanyID,
	})
}

// sessionRefreshSink updates live sessions holding the transitioned entry so
// their working copies never go stale behind the ledger.
type sessionRefreshSink struct {
	registry *SessionRegistry
}

func (r sessionRefreshSink) EntryChanged(ctx context.Context, event EntryEvent) {
	if event.Entry == nil {
		return
	}
	for _, s := range r.registry.forEntry(event.EntryID) {
		s.mu.Lock()
		s.Entry = *event.Entry
		if !s.Entry.IsEditable() && s.Mode == ModeEdit {
			s.Mode = ModeView
		}
		s.mu.Unlock()
	}
}
