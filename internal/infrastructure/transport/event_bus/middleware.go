// internal/infrastructure/transport/event_bus/middleware.go
package events

import (
	"errors"
	"fmt"
	"time"

	"crypto-market-scanner/pkg/logger"
)

// ErrInvalidEvent - событие отклонено валидацией
var ErrInvalidEvent = errors.New("invalid event")

// MiddlewareFunc позволяет использовать функцию как Middleware
type MiddlewareFunc func(event Event, next HandlerFunc) error

func (f MiddlewareFunc) Process(event Event, next HandlerFunc) error {
	return f(event, next)
}

// LoggingMiddleware пишет в debug-лог каждое событие и время его обработки
type LoggingMiddleware struct{}

func (m *LoggingMiddleware) Process(event Event, next HandlerFunc) error {
	start := time.Now()
	err := next(event)
	if err != nil {
		logger.Debug("❌ [EventBus] %s (%s) от %s: ошибка за %v: %v", event.Type, event.ID, event.Source, time.Since(start), err)
		return err
	}
	logger.Debug("📨 [EventBus] %s (%s) от %s обработан за %v", event.Type, event.ID, event.Source, time.Since(start))
	return nil
}

// ValidationMiddleware отклоняет события без типа или источника.
// Если Allowed не пуст, отклоняются и типы вне списка.
type ValidationMiddleware struct {
	Allowed []EventType
}

func (m *ValidationMiddleware) Process(event Event, next HandlerFunc) error {
	switch {
	case event.Type == "":
		return fmt.Errorf("%w: type is required", ErrInvalidEvent)
	case event.Source == "":
		return fmt.Errorf("%w: source is required for %s", ErrInvalidEvent, event.Type)
	case len(m.Allowed) > 0 && !containsType(m.Allowed, event.Type):
		return fmt.Errorf("%w: unknown type %s", ErrInvalidEvent, event.Type)
	}
	return next(event)
}

// SlowEventMiddleware предупреждает, если подписчики обрабатывали событие дольше Threshold
func SlowEventMiddleware(threshold time.Duration) Middleware {
	return MiddlewareFunc(func(event Event, next HandlerFunc) error {
		start := time.Now()
		err := next(event)
		if elapsed := time.Since(start); elapsed > threshold {
			logger.Warn("🐢 [EventBus] %s обрабатывался %v (порог %v)", event.Type, elapsed, threshold)
		}
		return err
	})
}

func containsType(types []EventType, t EventType) bool {
	for _, v := range types {
		if v == t {
			return true
		}
	}
	return false
}
