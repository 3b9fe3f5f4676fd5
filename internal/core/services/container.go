package services

import (
	"time"

	portsrepo "github.com/asientoflow/asientoflow/internal/core/ports/repositories"
	portssvc "github.com/asientoflow/asientoflow/internal/core/ports/services"
	"github.com/asientoflow/asientoflow/internal/utils"
)

// Container bundles the service layer behind its ports.
type Container struct {
	Editor     portssvc.EditorSvc
	Lifecycle  portssvc.LifecycleSvc
	Suggestion portssvc.SuggestionSvc
	Export     portssvc.ExportSvc

	stopJanitor func()
}

// ContainerConfig carries the tunables the service layer needs.
// A zero SessionIdleTTL disables idle-session eviction.
type ContainerConfig struct {
	ValidationDebounce    time.Duration
	DraftAutosaveInterval time.Duration
	DraftMaxAge           time.Duration
	SessionIdleTTL        time.Duration
}

// NewContainer wires the services around a shared session registry, the
// ledger client and the local draft store.
func NewContainer(ledger portsrepo.LedgerRemote, drafts portsrepo.DraftStore, analytics *utils.AnalyticsClient, cfg ContainerConfig) *Container {
	registry := NewSessionRegistry()
	coordinator := NewValidationCoordinator(ledger, cfg.ValidationDebounce)
	draftMgr := newDraftManager(drafts, cfg.DraftAutosaveInterval, cfg.DraftMaxAge)

	sink := BroadcastSink{
		LoggingSink{},
		AnalyticsSink{Client: analytics},
		sessionRefreshSink{registry: registry},
	}

	c := &Container{
		Editor:     NewEditorService(registry, ledger, coordinator, draftMgr, sink),
		Lifecycle:  NewLifecycleService(ledger, sink),
		Suggestion: NewSuggestionService(registry, ledger, coordinator),
		Export:     NewExportService(ledger),
	}
	if cfg.SessionIdleTTL > 0 {
		c.stopJanitor = startSessionJanitor(registry, cfg.SessionIdleTTL)
	}
	return c
}

// startSessionJanitor sweeps abandoned sessions so a client that drops
// without DELETE does not leak its session and autosave goroutine.
func startSessionJanitor(registry *SessionRegistry, ttl time.Duration) func() {
	ticker := time.NewTicker(ttl / 2)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				registry.evictIdle(ttl, time.Now())
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()
	return func() { close(done) }
}

// Close stops the container's background work.
func (c *Container) Close() {
	if c.stopJanitor != nil {
		c.stopJanitor()
	}
}
