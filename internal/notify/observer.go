package notify

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/hamed0406/urlcheck/internal/domain"
)

// Observer receives every status the probe loop produces, in probe order.
// OnStatus runs on the loop goroutine and must return quickly; wrap slow
// observers with Async.
type Observer interface {
	OnStatus(st domain.Status)
}

type ObserverFunc func(domain.Status)

func (f ObserverFunc) OnStatus(st domain.Status) { f(st) }

// LogObserver writes one log line per status.
type LogObserver struct {
	Logger *zap.Logger
}

func (l LogObserver) OnStatus(st domain.Status) {
	fields := []zap.Field{
		zap.String("url", st.Outcome.TargetURL),
		zap.Bool("success", st.Success),
		zap.Int("status", st.Outcome.StatusCode),
		zap.Int64("latency_ms", st.Outcome.LatencyMS),
		zap.String("message", st.Message),
	}
	if st.Silent {
		l.Logger.Debug("status", fields...)
		return
	}
	l.Logger.Info("status_changed", append(fields, zap.String("title", st.Title))...)
}

// Latest keeps the most recent status for readers on other goroutines.
type Latest struct {
	v atomic.Pointer[domain.Status]
}

func (l *Latest) OnStatus(st domain.Status) { l.v.Store(&st) }

// Get returns the last status, or false before the first one arrives.
func (l *Latest) Get() (domain.Status, bool) {
	p := l.v.Load()
	if p == nil {
		return domain.Status{}, false
	}
	return *p, true
}
