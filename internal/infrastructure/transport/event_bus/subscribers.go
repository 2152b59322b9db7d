// internal/infrastructure/transport/event_bus/subscribers.go
package events

import "fmt"

// FuncSubscriber - подписчик из имени, списка типов и функции
type FuncSubscriber struct {
	name   string
	types  []EventType
	handle func(Event) error
}

// NewFuncSubscriber создает подписчика поверх функции
func NewFuncSubscriber(name string, types []EventType, handle func(Event) error) *FuncSubscriber {
	return &FuncSubscriber{
		name:   name,
		types:  append([]EventType(nil), types...),
		handle: handle,
	}
}

// NewPayloadSubscriber создает подписчика, который принимает только события
// с Data типа T. Событие с другим payload возвращает ошибку и считается неуспешным.
func NewPayloadSubscriber[T any](name string, types []EventType, handle func(Event, T) error) *FuncSubscriber {
	return NewFuncSubscriber(name, types, func(event Event) error {
		payload, ok := event.Data.(T)
		if !ok {
			return fmt.Errorf("%s: unexpected payload %T for %s", name, event.Data, event.Type)
		}
		return handle(event, payload)
	})
}

func (s *FuncSubscriber) HandleEvent(event Event) error { return s.handle(event) }

func (s *FuncSubscriber) GetName() string { return s.name }

func (s *FuncSubscriber) GetSubscribedEvents() []EventType { return s.types }
