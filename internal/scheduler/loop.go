package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/urlcheck/internal/domain"
	"github.com/hamed0406/urlcheck/internal/notify"
	"github.com/hamed0406/urlcheck/internal/probe"
	"github.com/hamed0406/urlcheck/internal/state"
)

// SettingsPollInterval is how often a started loop checks for settings that
// have not been supplied yet.
const SettingsPollInterval = 100 * time.Millisecond

var (
	ErrAlreadyStarted = errors.New("probe loop already started")
	ErrTerminated     = errors.New("probe loop terminated")
)

type phase int

const (
	phaseCreated phase = iota
	phaseRunning
	phaseTerminated
)

// Loop probes the configured target once per cycle and publishes a status to
// every observer. A Loop runs at most once: after Stop it cannot be restarted.
type Loop struct {
	logger  *zap.Logger
	prober  probe.Prober
	tracker state.Tracker
	latest  notify.Latest

	settings  atomic.Pointer[domain.Settings]
	subMu     sync.Mutex
	observers atomic.Pointer[[]notify.Observer]

	mu    sync.Mutex
	phase phase
	stop  chan struct{}
	done  chan struct{}
}

// New builds a loop. initial may be nil, in which case a started loop waits
// until ApplySettings is called.
func New(logger *zap.Logger, prober probe.Prober, initial *domain.Settings, observers ...notify.Observer) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Loop{
		logger: logger,
		prober: prober,
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if initial != nil {
		s := *initial
		l.settings.Store(&s)
	}
	obs := append([]notify.Observer(nil), observers...)
	l.observers.Store(&obs)
	return l
}

func (l *Loop) Start() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.phase {
	case phaseRunning:
		return ErrAlreadyStarted
	case phaseTerminated:
		return ErrTerminated
	}
	l.phase = phaseRunning
	go l.run()
	return nil
}

// Stop asks the loop to end and returns without waiting. A probe already in
// flight completes and its status is still published. Wait on Done to know
// when the loop goroutine has exited.
func (l *Loop) Stop() {
	l.mu.Lock()
	prev := l.phase
	l.phase = phaseTerminated
	l.mu.Unlock()

	switch prev {
	case phaseTerminated:
		return
	case phaseCreated:
		close(l.stop)
		close(l.done)
	default:
		close(l.stop)
	}
}

// Done is closed once the loop goroutine has exited, or by Stop on a loop
// that was never started.
func (l *Loop) Done() <-chan struct{} { return l.done }

// ApplySettings replaces the settings used from the next cycle on.
func (l *Loop) ApplySettings(s domain.Settings) {
	l.settings.Store(&s)
	v := s.View()
	l.logger.Info("settings_applied",
		zap.String("url", v.TargetURL),
		zap.Int("expected_code", v.ExpectedCode),
		zap.Int64("cycle_ms", v.CycleDurationMS),
		zap.Int64("timeout_ms", v.NetworkTimeoutMS),
	)
}

// Settings returns the current settings, or false if none were supplied yet.
func (l *Loop) Settings() (domain.Settings, bool) {
	p := l.settings.Load()
	if p == nil {
		return domain.Settings{}, false
	}
	return *p, true
}

// Subscribe adds an observer. It is safe to call while the loop runs; the
// observer sees statuses from the next publish on.
func (l *Loop) Subscribe(obs notify.Observer) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	cur := *l.observers.Load()
	next := make([]notify.Observer, 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, obs)
	l.observers.Store(&next)
}

// Latest returns the most recently published status.
func (l *Loop) Latest() (domain.Status, bool) { return l.latest.Get() }

func (l *Loop) run() {
	defer close(l.done)
	l.logger.Info("probe_loop_started")
	defer l.logger.Info("probe_loop_stopped")

	for {
		s, ok := l.awaitSettings()
		if !ok {
			return
		}
		l.cycle(s)
		if !l.sleep(s.CycleDuration()) {
			return
		}
	}
}

// awaitSettings returns the current settings snapshot, polling until one is
// available. It returns false once the loop is stopped.
func (l *Loop) awaitSettings() (domain.Settings, bool) {
	logged := false
	for {
		select {
		case <-l.stop:
			return domain.Settings{}, false
		default:
		}
		if p := l.settings.Load(); p != nil {
			return *p, true
		}
		if !logged {
			l.logger.Info("probe_loop_waiting_for_settings")
			logged = true
		}
		if !l.sleep(SettingsPollInterval) {
			return domain.Settings{}, false
		}
	}
}

func (l *Loop) sleep(d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-l.stop:
		return false
	case <-t.C:
	}
	select {
	case <-l.stop:
		return false
	default:
		return true
	}
}

func (l *Loop) cycle(s domain.Settings) {
	out := l.safeProbe(s)
	st := l.tracker.Record(out)
	l.logger.Debug("probe_cycle",
		zap.String("url", out.TargetURL),
		zap.Bool("success", out.Success),
		zap.Int("status", out.StatusCode),
		zap.Int64("latency_ms", out.LatencyMS),
		zap.String("reason", out.Reason),
		zap.Bool("silent", st.Silent),
	)
	l.publish(st)
}

func (l *Loop) safeProbe(s domain.Settings) (out domain.Outcome) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("probe_panic", zap.Any("panic", r))
			out = domain.Outcome{
				TargetURL: s.TargetURL(),
				Reason:    fmt.Sprintf("probe panic: %v", r),
				Timestamp: time.Now().UTC(),
			}
		}
	}()
	return l.prober.Probe(context.Background(), s)
}

func (l *Loop) publish(st domain.Status) {
	l.latest.OnStatus(st)
	for i, obs := range *l.observers.Load() {
		l.deliver(i, obs, st)
	}
}

func (l *Loop) deliver(i int, obs notify.Observer, st domain.Status) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("observer_panic", zap.Int("observer", i), zap.Any("panic", r))
		}
	}()
	obs.OnStatus(st)
}
