package utils

import (
	"log/slog"

	"github.com/posthog/posthog-go"
)

// AnalyticsClient is a nil-safe wrapper over the PostHog client. All methods
// are no-ops when no API key was configured.
type AnalyticsClient struct {
	client posthog.Client
}

// NewAnalyticsClient initializes the PostHog client. Returns an inert client
// when apiKey is empty.
func NewAnalyticsClient(apiKey, endpoint string, logger *slog.Logger) *AnalyticsClient {
	if apiKey == "" {
		return &AnalyticsClient{}
	}
	cfg := posthog.Config{}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	client, err := posthog.NewWithConfig(apiKey, cfg)
	if err != nil {
		logger.Warn("Failed to initialize analytics client, events disabled", slog.String("error", err.Error()))
		return &AnalyticsClient{}
	}
	return &AnalyticsClient{client: client}
}

// IsInitialized reports whether events will actually be sent.
func (a *AnalyticsClient) IsInitialized() bool {
	return a != nil && a.client != nil
}

// Enqueue sends a capture event for the user. Errors are ignored; analytics
// must never affect request handling.
func (a *AnalyticsClient) Enqueue(userID, eventName string, properties map[string]any) {
	if !a.IsInitialized() {
		return
	}
	props := posthog.NewProperties()
	for k, v := range properties {
		props.Set(k, v)
	}
	_ = a.client.Enqueue(posthog.Capture{
		DistinctId: userID,
		Event:      eventName,
		Properties: props,
	})
}

// Close flushes and shuts down the underlying client.
func (a *AnalyticsClient) Close() {
	if a.IsInitialized() {
		_ = a.client.Close()
	}
}
