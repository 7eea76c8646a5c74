package notify

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/urlcheck/internal/domain"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	// Cooldown suppresses a failure alert sent within this long of the
	// previous one. Zero disables it.
	Cooldown    time.Duration
	SendTimeout time.Duration
}

// Alerter sends an alert for every non-silent status: always for failures,
// for successes only when AlertOnRecovery is set.
type Alerter struct {
	sender Sender
	cfg    AlerterConfig
	logger *zap.Logger
	now    func() time.Time

	mu         sync.Mutex
	lastDownAt time.Time
}

func NewAlerter(sender Sender, cfg AlerterConfig, logger *zap.Logger) *Alerter {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Alerter{sender: sender, cfg: cfg, logger: logger, now: time.Now}
}

func (a *Alerter) OnStatus(st domain.Status) {
	if st.Silent {
		return
	}
	if st.Success && !a.cfg.AlertOnRecovery {
		return
	}

	a.mu.Lock()
	now := a.now()
	if !st.Success {
		// Recovery alerts bypass the cooldown.
		if a.cfg.Cooldown > 0 && !a.lastDownAt.IsZero() && now.Sub(a.lastDownAt) < a.cfg.Cooldown {
			a.mu.Unlock()
			a.logger.Debug("alert_suppressed_cooldown", zap.String("url", st.Outcome.TargetURL))
			return
		}
		a.lastDownAt = now
	}
	a.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.SendTimeout)
	defer cancel()
	if err := a.sender.Send(ctx, st.Title, alertText(st)); err != nil {
		a.logger.Warn("alert_send_failed",
			zap.String("url", st.Outcome.TargetURL),
			zap.String("title", st.Title),
			zap.Error(err),
		)
		return
	}
	a.logger.Info("alert_sent", zap.String("url", st.Outcome.TargetURL), zap.String("title", st.Title))
}

func alertText(st domain.Status) string {
	o := st.Outcome
	httpTxt := "n/a"
	if o.StatusCode != 0 {
		httpTxt = strconv.Itoa(o.StatusCode)
	}
	return fmt.Sprintf(
		"%s\nURL: %s\nHTTP: %s\nLatency: %d ms\nChecked: %s",
		st.Detail, o.TargetURL, httpTxt, o.LatencyMS, o.Timestamp.Format(time.RFC3339),
	)
}
