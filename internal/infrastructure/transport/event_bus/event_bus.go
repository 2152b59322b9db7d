// internal/infrastructure/transport/event_bus/event_bus.go
package events

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sort"
	"strconv"
	"sync"
	"time"

	"crypto-market-scanner/pkg/logger"

	"github.com/google/uuid"
)

var (
	// ErrNotRunning - шина не запущена или уже остановлена
	ErrNotRunning = errors.New("event bus is not running")
	// ErrBufferFull - буфер событий переполнен
	ErrBufferFull = errors.New("event buffer is full")
)

// EventBus - шина событий внутри процесса
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	middlewares []Middleware
	eventBuffer chan Event
	metrics     *metricsState
	config      EventBusConfig
	running     bool
	wg          sync.WaitGroup
}

// EventBusConfig - конфигурация EventBus
type EventBusConfig struct {
	BufferSize    int  `json:"buffer_size"`
	WorkerCount   int  `json:"worker_count"`
	EnableLogging bool `json:"enable_logging"`
}

// DefaultConfig - конфигурация по умолчанию
var DefaultConfig = EventBusConfig{
	BufferSize:    100,
	WorkerCount:   2,
	EnableLogging: true,
}

// NewEventBus создает новую шину событий
func NewEventBus(config ...EventBusConfig) *EventBus {
	cfg := DefaultConfig
	if len(config) > 0 {
		cfg = config[0]
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultConfig.BufferSize
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = DefaultConfig.WorkerCount
	}

	return &EventBus{
		subscribers: make(map[EventType][]Subscriber),
		eventBuffer: make(chan Event, cfg.BufferSize),
		metrics: &metricsState{Metrics: Metrics{
			SubscribersCount: make(map[EventType]int),
		}},
		config: cfg,
	}
}

// Start запускает обработчиков событий
func (b *EventBus) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.running {
		return
	}
	b.running = true

	for i := 0; i < b.config.WorkerCount; i++ {
		b.wg.Add(1)
		go b.eventWorker(i)
	}

	if b.config.EnableLogging {
		logger.Info("🚀 EventBus запущен с %d обработчиками", b.config.WorkerCount)
	}
}

// Stop прекращает прием событий и дожидается обработки уже принятых
func (b *EventBus) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.running = false
	close(b.eventBuffer)
	b.mu.Unlock()

	b.wg.Wait()

	if b.config.EnableLogging {
		logger.Info("🛑 EventBus остановлен")
	}
}

// Subscribe подписывает обработчик на тип события
func (b *EventBus) Subscribe(eventType EventType, subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	found := false
	for _, et := range subscriber.GetSubscribedEvents() {
		if et == eventType {
			found = true
			break
		}
	}
	if !found {
		logger.Warn("⚠️ Подписчик %s не подписан на событие %s", subscriber.GetName(), eventType)
		return
	}

	b.subscribers[eventType] = append(b.subscribers[eventType], subscriber)
	b.setSubscribersCount(eventType)

	if b.config.EnableLogging {
		logger.Debug("✅ %s подписался на %s", subscriber.GetName(), eventType)
	}
}

// SubscribeAll подписывает обработчик на все его типы событий
func (b *EventBus) SubscribeAll(subscriber Subscriber) {
	for _, et := range subscriber.GetSubscribedEvents() {
		b.Subscribe(et, subscriber)
	}
}

// Unsubscribe отписывает обработчик от типа события
func (b *EventBus) Unsubscribe(eventType EventType, subscriber Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subscribers := b.subscribers[eventType]
	for i, sub := range subscribers {
		if sub == subscriber {
			b.subscribers[eventType] = append(subscribers[:i:i], subscribers[i+1:]...)
			b.setSubscribersCount(eventType)
			return
		}
	}
}

// Publish ставит событие в буфер. Переполнение буфера не блокирует издателя.
func (b *EventBus) Publish(event Event) error {
	prepare(&event)

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.running {
		return ErrNotRunning
	}

	select {
	case b.eventBuffer <- event:
		b.metrics.mu.Lock()
		b.metrics.EventsPublished++
		b.metrics.mu.Unlock()
		logger.Debug("📤 Опубликовано событие: %s от %s", event.Type, event.Source)
		return nil
	default:
		b.metrics.mu.Lock()
		b.metrics.EventsDropped++
		b.metrics.mu.Unlock()
		logger.Warn("⚠️ Буфер событий полон, событие отброшено: %s", event.Type)
		return ErrBufferFull
	}
}

// PublishSync обрабатывает событие в текущей горутине
func (b *EventBus) PublishSync(event Event) error {
	prepare(&event)
	return b.processEvent(event)
}

// AddMiddleware добавляет middleware
func (b *EventBus) AddMiddleware(middleware Middleware) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.middlewares = append(b.middlewares, middleware)
}

func prepare(event *Event) {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
}

func (b *EventBus) eventWorker(id int) {
	defer b.wg.Done()

	for event := range b.eventBuffer {
		if err := b.processEvent(event); err != nil {
			logger.Debug("❌ [EventWorker %d] %s: %v", id, event.Type, err)
		}
	}
}

// processEvent обрабатывает одно событие
func (b *EventBus) processEvent(event Event) error {
	start := time.Now()
	defer func() {
		b.metrics.mu.Lock()
		b.metrics.ProcessingTime += time.Since(start)
		b.metrics.EventsProcessed++
		b.metrics.mu.Unlock()
	}()

	b.mu.RLock()
	subscribers := append([]Subscriber(nil), b.subscribers[event.Type]...)
	middlewares := append([]Middleware(nil), b.middlewares...)
	b.mu.RUnlock()

	chain := b.createHandlerChain(subscribers)
	for i := len(middlewares) - 1; i >= 0; i-- {
		mw, next := middlewares[i], chain
		chain = func(event Event) error {
			return mw.Process(event, next)
		}
	}
	return chain(event)
}

// createHandlerChain вызывает всех подписчиков; ошибка одного не останавливает остальных
func (b *EventBus) createHandlerChain(subscribers []Subscriber) HandlerFunc {
	return func(event Event) error {
		if len(subscribers) == 0 {
			logger.Debug("⚠️ Нет подписчиков для события: %s", event.Type)
			return nil
		}

		var lastError error
		for _, subscriber := range subscribers {
			if err := b.safeHandle(event, subscriber); err != nil {
				b.metrics.mu.Lock()
				b.metrics.EventsFailed++
				b.metrics.mu.Unlock()

				logger.Error("❌ Ошибка обработки события %s подписчиком %s: %v",
					event.Type, subscriber.GetName(), err)
				lastError = err
			}
		}
		return lastError
	}
}

// safeHandle превращает панику подписчика в ошибку
func (b *EventBus) safeHandle(event Event, subscriber Subscriber) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("⚠️ Паника в подписчике %s: %v\n%s", subscriber.GetName(), r, debug.Stack())
			err = fmt.Errorf("panic in %s: %v", subscriber.GetName(), r)
		}
	}()
	return subscriber.HandleEvent(event)
}

func (b *EventBus) setSubscribersCount(eventType EventType) {
	b.metrics.mu.Lock()
	b.metrics.SubscribersCount[eventType] = len(b.subscribers[eventType])
	b.metrics.mu.Unlock()
}

// GetMetrics возвращает копию метрик
func (b *EventBus) GetMetrics() Metrics {
	b.metrics.mu.RLock()
	defer b.metrics.mu.RUnlock()

	m := b.metrics.Metrics
	m.SubscribersCount = make(map[EventType]int, len(b.metrics.SubscribersCount))
	for k, v := range b.metrics.SubscribersCount {
		m.SubscribersCount[k] = v
	}
	return m
}

// GetSubscriberCount возвращает количество подписчиков
func (b *EventBus) GetSubscriberCount(eventType EventType) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.subscribers[eventType])
}

// GetEventTypes возвращает все типы событий с подписчиками
func (b *EventBus) GetEventTypes() []EventType {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var eventTypes []EventType
	for eventType, subs := range b.subscribers {
		if len(subs) > 0 {
			eventTypes = append(eventTypes, eventType)
		}
	}
	sort.Slice(eventTypes, func(i, j int) bool {
		return eventTypes[i] < eventTypes[j]
	})
	return eventTypes
}

// IsRunning возвращает true если EventBus запущен
func (b *EventBus) IsRunning() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.running
}

// LogMetrics пишет метрики в лог
func (b *EventBus) LogMetrics() {
	m := b.GetMetrics()
	logger.Status("EventBus", map[string]string{
		"опубликовано":    strconv.FormatInt(m.EventsPublished, 10),
		"обработано":      strconv.FormatInt(m.EventsProcessed, 10),
		"ошибок":          strconv.FormatInt(m.EventsFailed, 10),
		"отброшено":       strconv.FormatInt(m.EventsDropped, 10),
		"время обработки": m.ProcessingTime.String(),
	})
}
