package notify

import (
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hamed0406/urlcheck/internal/domain"
)

// AsyncObserver hands statuses to a wrapped observer through a bounded queue
// drained by its own goroutine. When the queue is full the status is dropped.
type AsyncObserver struct {
	next    Observer
	logger  *zap.Logger
	queue   chan domain.Status
	done    chan struct{}
	dropped atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

func Async(obs Observer, buffer int, logger *zap.Logger) *AsyncObserver {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &AsyncObserver{
		next:   obs,
		logger: logger,
		queue:  make(chan domain.Status, buffer),
		done:   make(chan struct{}),
	}
	go a.run()
	return a
}

func (a *AsyncObserver) OnStatus(st domain.Status) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		return
	}
	select {
	case a.queue <- st:
	default:
		n := a.dropped.Add(1)
		a.logger.Warn("observer_queue_full",
			zap.Bool("success", st.Success),
			zap.Bool("silent", st.Silent),
			zap.Uint64("dropped_total", n),
		)
	}
}

// Dropped reports how many statuses were discarded because the queue was full.
func (a *AsyncObserver) Dropped() uint64 { return a.dropped.Load() }

// Close stops accepting statuses and waits until the queued ones are delivered.
func (a *AsyncObserver) Close() error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()
	<-a.done
	return nil
}

func (a *AsyncObserver) run() {
	defer close(a.done)
	for st := range a.queue {
		a.deliver(st)
	}
}

func (a *AsyncObserver) deliver(st domain.Status) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("observer_panic", zap.Any("panic", r))
		}
	}()
	a.next.OnStatus(st)
}
