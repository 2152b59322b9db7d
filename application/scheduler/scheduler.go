// application/scheduler/scheduler.go
package scheduler

import (
	"context"
	"sync"
	"time"

	"crypto-market-scanner/pkg/logger"
)

const timeLayout = "2006-01-02 15:04:05 UTC"

// Schedule определяет, когда задача запускается снова
type Schedule struct {
	interval time.Duration
	aligned  bool
}

// Every - запуск через d после окончания предыдущего
func Every(d time.Duration) Schedule {
	return Schedule{interval: d}
}

// EveryAligned - запуск на границах d по UTC (например, ровно в начале минуты
// для d = 1m), чтобы скан шел сразу после закрытия свечи
func EveryAligned(d time.Duration) Schedule {
	return Schedule{interval: d, aligned: true}
}

// nextRun вычисляет время следующего запуска относительно now
func (s Schedule) nextRun(now time.Time) time.Time {
	if s.interval <= 0 {
		return now
	}
	if s.aligned {
		return now.Truncate(s.interval).Add(s.interval)
	}
	return now.Add(s.interval)
}

// DefaultJobTimeout - таймаут задачи, если Job.Timeout не задан
const DefaultJobTimeout = 5 * time.Minute

// Job - периодическая задача. Запуски одной задачи никогда не пересекаются:
// следующий отсчитывается от окончания предыдущего.
type Job struct {
	Name        string
	Description string
	Schedule    Schedule
	Handler     func(ctx context.Context) error

	// RunImmediately - первый запуск сразу после Start
	RunImmediately bool
	// Timeout ограничивает одно выполнение Handler
	Timeout time.Duration

	mu      sync.Mutex
	nextRun time.Time
	lastRun time.Time
	lastErr error
	runs    int
	running bool
}

// JobStatus - состояние задачи на момент вызова
type JobStatus struct {
	Name        string
	Description string
	NextRun     time.Time
	LastRun     time.Time
	LastErr     error
	Runs        int
	Running     bool
}

// Status возвращает состояние задачи
func (j *Job) Status() JobStatus {
	j.mu.Lock()
	defer j.mu.Unlock()
	return JobStatus{
		Name:        j.Name,
		Description: j.Description,
		NextRun:     j.nextRun,
		LastRun:     j.lastRun,
		LastErr:     j.lastErr,
		Runs:        j.runs,
		Running:     j.running,
	}
}

// Scheduler держит по одной горутине на задачу
type Scheduler struct {
	mu       sync.RWMutex
	jobs     []*Job
	started  bool
	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New создает планировщик
func New() *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{ctx: ctx, cancel: cancel}
}

// Register добавляет задачу. Задачи, добавленные после Start, запускаются сразу.
func (s *Scheduler) Register(job *Job) {
	now := time.Now().UTC()
	job.mu.Lock()
	job.nextRun = job.Schedule.nextRun(now)
	if job.RunImmediately {
		job.nextRun = now
	}
	first := job.nextRun
	job.mu.Unlock()

	s.mu.Lock()
	s.jobs = append(s.jobs, job)
	started := s.started
	s.mu.Unlock()

	logger.Info("📋 [Scheduler] Задача %q, первый запуск %s", job.Name, first.Format(timeLayout))
	if started {
		s.spawn(job)
	}
}

// Start запускает все зарегистрированные задачи
func (s *Scheduler) Start() {
	s.mu.Lock()
	s.started = true
	jobs := append([]*Job(nil), s.jobs...)
	s.mu.Unlock()

	for _, job := range jobs {
		s.spawn(job)
	}
	logger.Info("✅ [Scheduler] Запущен (%d задач)", len(jobs))
}

// Stop отменяет контекст выполняющихся задач и ждет их завершения. Повторный вызов безопасен.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		s.wg.Wait()
		logger.Info("🛑 [Scheduler] Остановлен")
	})
}

// Jobs возвращает состояние всех задач
func (s *Scheduler) Jobs() []JobStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	statuses := make([]JobStatus, 0, len(s.jobs))
	for _, j := range s.jobs {
		statuses = append(statuses, j.Status())
	}
	return statuses
}

func (s *Scheduler) spawn(job *Job) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(job)
	}()
}

// loop ждет nextRun задачи, выполняет ее и планирует следующий запуск
func (s *Scheduler) loop(job *Job) {
	timer := time.NewTimer(time.Until(job.Status().NextRun))
	defer timer.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-timer.C:
		}

		next := s.run(job)
		timer.Reset(time.Until(next))
	}
}

// run выполняет задачу один раз и возвращает время следующего запуска
func (s *Scheduler) run(job *Job) time.Time {
	timeout := job.Timeout
	if timeout <= 0 {
		timeout = DefaultJobTimeout
	}
	ctx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()

	job.mu.Lock()
	job.running = true
	job.mu.Unlock()

	logger.Debug("▶️ [Scheduler] Запуск задачи %q", job.Name)
	start := time.Now()
	err := job.Handler(ctx)
	elapsed := time.Since(start)

	job.mu.Lock()
	job.lastRun = start
	job.lastErr = err
	job.runs++
	job.running = false
	job.nextRun = job.Schedule.nextRun(time.Now().UTC())
	next := job.nextRun
	job.mu.Unlock()

	if err != nil {
		logger.Error("❌ [Scheduler] Задача %q завершилась с ошибкой за %v: %v", job.Name, elapsed, err)
	} else {
		logger.Debug("✅ [Scheduler] Задача %q выполнена за %v, следующий запуск %s",
			job.Name, elapsed, next.Format(timeLayout))
	}
	return next
}
