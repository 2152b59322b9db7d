// application/services/orchestrator/trigger.go
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"crypto-market-scanner/internal/core/domain/snapshot"
	"crypto-market-scanner/pkg/logger"
)

// ErrSuperseded - скан отменен более новым запуском
var ErrSuperseded = errors.New("scan superseded by a newer trigger")

type commitKey struct{}

// commitFunc атомарно проверяет актуальность скана и публикует результат.
// false означает, что скан отменен и результат доставлять нельзя.
type commitFunc func(publish func()) bool

func withCommit(ctx context.Context, fn commitFunc) context.Context {
	return context.WithValue(ctx, commitKey{}, fn)
}

// commit публикует результат скана, если ctx еще не отменен.
// Вне Trigger проверка и публикация не защищены от гонки с отменой.
func commit(ctx context.Context, publish func()) bool {
	if fn, ok := ctx.Value(commitKey{}).(commitFunc); ok {
		return fn(publish)
	}
	if ctx.Err() != nil {
		return false
	}
	publish()
	return true
}

// Scanner - то, что умеет выполнить один скан
type Scanner interface {
	RunScan(ctx context.Context) (*snapshot.Snapshot, error)
}

// Trigger сериализует запросы "просканировать сейчас".
// Новый запуск отменяет текущий, результат отмененного не доставляется.
type Trigger struct {
	scanner Scanner
	timeout time.Duration

	mu      sync.Mutex
	cancel  context.CancelCauseFunc
	current uint64
	wg      sync.WaitGroup
}

// NewTrigger создает триггер; timeout <= 0 означает без ограничения
func NewTrigger(scanner Scanner, timeout time.Duration) *Trigger {
	return &Trigger{scanner: scanner, timeout: timeout}
}

// Run отменяет текущий скан и синхронно выполняет новый
func (t *Trigger) Run(ctx context.Context) (*snapshot.Snapshot, error) {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	if t.timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, t.timeout)
		defer cancelTimeout()
	}

	t.mu.Lock()
	if t.cancel != nil {
		t.cancel(ErrSuperseded)
	}
	t.current++
	id := t.current
	t.cancel = cancel
	t.mu.Unlock()

	// Публикация идет под тем же мьютексом, что и вытеснение: скан либо
	// успевает опубликоваться до нового запуска, либо отбрасывается.
	scanCtx := runCtx
	runCtx = withCommit(runCtx, func(publish func()) bool {
		t.mu.Lock()
		defer t.mu.Unlock()
		if scanCtx.Err() != nil {
			return false
		}
		publish()
		return true
	})

	defer func() {
		t.mu.Lock()
		if t.current == id {
			t.cancel = nil
		}
		t.mu.Unlock()
	}()

	snap, err := t.scanner.RunScan(runCtx)
	if err != nil {
		if errors.Is(context.Cause(runCtx), ErrSuperseded) {
			return nil, fmt.Errorf("%w: %v", ErrSuperseded, err)
		}
		return nil, err
	}
	return snap, nil
}

// Fire запускает скан в фоне, отменяя текущий
func (t *Trigger) Fire(ctx context.Context) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if _, err := t.Run(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			logger.Debug("🔁 Trigger: скан завершился ошибкой: %v", err)
		}
	}()
}

// Cancel отменяет текущий скан, если он есть
func (t *Trigger) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel(context.Canceled)
	}
}

// Wait ждет завершения всех фоновых запусков
func (t *Trigger) Wait() {
	t.wg.Wait()
}
