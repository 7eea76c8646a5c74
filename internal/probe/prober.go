package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hamed0406/urlcheck/internal/domain"
)

// maxDrain bounds how much of a GET body is read before closing.
const maxDrain = 64 * 1024

// Prober performs one probe against the target in s.
// Implementations never return errors: every failure is a failed Outcome.
type Prober interface {
	Probe(ctx context.Context, s domain.Settings) domain.Outcome
}

// HTTPProber probes with a single HEAD (or GET) request and a fresh,
// non-pooled connection, so each probe pays for connect and teardown.
type HTTPProber struct {
	Method    string
	UserAgent string
}

func NewHTTPProber(method, userAgent string) *HTTPProber {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method != http.MethodGet {
		method = http.MethodHead
	}
	return &HTTPProber{Method: method, UserAgent: userAgent}
}

func (p *HTTPProber) Probe(ctx context.Context, s domain.Settings) (out domain.Outcome) {
	start := time.Now()
	out = domain.Outcome{TargetURL: s.TargetURL(), Timestamp: start.UTC()}
	// Runs last: latency covers request, body drain and connection close.
	defer func() { out.LatencyMS = time.Since(start).Milliseconds() }()

	timeout := s.NetworkTimeout()
	client := newProbeClient(timeout, p.UserAgent)
	defer client.CloseIdleConnections()

	// Hard ceiling: one connect phase plus one read phase.
	ctx, cancel := context.WithTimeout(ctx, 2*timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, p.method(), s.TargetURL(), nil)
	if err != nil {
		out.Reason = err.Error()
		return out
	}
	resp, err := client.Do(req)
	if err != nil {
		out.Reason = err.Error()
		return out
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
	_ = resp.Body.Close()

	out.StatusCode = resp.StatusCode
	if resp.StatusCode == s.ExpectedCode() {
		out.Success = true
		return out
	}
	out.Reason = fmt.Sprintf("%d <> %d", resp.StatusCode, s.ExpectedCode())
	return out
}

func (p *HTTPProber) method() string {
	if p.Method == "" {
		return http.MethodHead
	}
	return p.Method
}
