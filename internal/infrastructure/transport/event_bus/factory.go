// internal/infrastructure/transport/event_bus/factory.go
package events

import (
	"time"

	"crypto-market-scanner/internal/infrastructure/config"
)

// slowEventThreshold - доставка снимка дольше этого считается медленной
const slowEventThreshold = 5 * time.Second

// NewEventBusFromConfig создает EventBus из конфигурации приложения.
// Принимаются только события скана.
func NewEventBusFromConfig(cfg *config.Config) *EventBus {
	bus := NewEventBus(EventBusConfig{
		BufferSize:    cfg.EventBus.BufferSize,
		WorkerCount:   cfg.EventBus.WorkerCount,
		EnableLogging: cfg.EventBus.EnableLogging,
	})

	bus.AddMiddleware(&ValidationMiddleware{
		Allowed: []EventType{EventScanStarted, EventScanCompleted, EventScanFailed, EventError},
	})
	if cfg.Logging.Level == "debug" {
		bus.AddMiddleware(&LoggingMiddleware{})
	}
	bus.AddMiddleware(SlowEventMiddleware(slowEventThreshold))

	return bus
}
