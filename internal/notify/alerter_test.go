package notify

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/urlcheck/internal/domain"
)

func rendered(success, silent bool) domain.Status {
	st := domain.Status{
		Success: success,
		Silent:  silent,
		Title:   "Disconnected",
		Detail:  "500 <> 200",
		Outcome: domain.Outcome{TargetURL: "https://a", Success: success, StatusCode: 500, LatencyMS: 12, Timestamp: time.Now()},
	}
	if success {
		st.Title, st.Detail, st.Outcome.StatusCode = "Connected", "https://a is available (200)", 200
	}
	return st
}

func TestAlerter_SkipsSilent(t *testing.T) {
	s := &recSender{}
	al := NewAlerter(s, AlerterConfig{AlertOnRecovery: true}, zap.NewNop())
	al.OnStatus(rendered(false, true))
	al.OnStatus(rendered(true, true))
	if len(s.titles) != 0 {
		t.Fatalf("silent statuses alerted: %v", s.titles)
	}
}

func TestAlerter_DownAndRecovery(t *testing.T) {
	s := &recSender{}
	al := NewAlerter(s, AlerterConfig{AlertOnRecovery: true}, zap.NewNop())

	al.OnStatus(rendered(false, false))
	al.OnStatus(rendered(true, false))

	if len(s.titles) != 2 || s.titles[0] != "Disconnected" || s.titles[1] != "Connected" {
		t.Fatalf("titles: %v", s.titles)
	}
	if !strings.Contains(s.texts[0], "HTTP: 500") || !strings.HasPrefix(s.texts[0], "500 <> 200") {
		t.Fatalf("down text: %q", s.texts[0])
	}
}

func TestAlerter_RecoveryDisabled(t *testing.T) {
	s := &recSender{}
	al := NewAlerter(s, AlerterConfig{AlertOnRecovery: false}, zap.NewNop())

	al.OnStatus(rendered(true, false)) // first observation, healthy
	al.OnStatus(rendered(false, false))
	al.OnStatus(rendered(true, false))

	if len(s.titles) != 1 || s.titles[0] != "Disconnected" {
		t.Fatalf("want only the down alert, got %v", s.titles)
	}
}

func TestAlerter_CooldownSuppressesFlapping(t *testing.T) {
	s := &recSender{}
	al := NewAlerter(s, AlerterConfig{AlertOnRecovery: true, Cooldown: time.Minute}, zap.NewNop())
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	al.now = func() time.Time { return now }

	al.OnStatus(rendered(false, false)) // sent
	al.OnStatus(rendered(true, false))  // recovery bypasses cooldown
	now = now.Add(30 * time.Second)
	al.OnStatus(rendered(false, false)) // within cooldown
	now = now.Add(time.Minute)
	al.OnStatus(rendered(false, false)) // cooled

	want := []string{"Disconnected", "Connected", "Disconnected"}
	if strings.Join(s.titles, ",") != strings.Join(want, ",") {
		t.Fatalf("titles %v want %v", s.titles, want)
	}
}

func TestAlerter_LogsSendFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	al := NewAlerter(&recSender{err: errors.New("nope")}, AlerterConfig{}, zap.New(core))
	al.OnStatus(rendered(false, false))
	if logs.FilterMessage("alert_send_failed").Len() != 1 {
		t.Fatalf("expected alert_send_failed log, got %v", logs.All())
	}
}
