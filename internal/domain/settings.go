package domain

import "time"

const (
	DefaultTargetURL      = "https://www.google.com"
	DefaultExpectedCode   = 200
	DefaultCycleDuration  = 5000 * time.Millisecond
	DefaultNetworkTimeout = 5000 * time.Millisecond

	MinCycleDuration  = 1000 * time.Millisecond
	MaxCycleDuration  = 3600000 * time.Millisecond
	MinNetworkTimeout = 1000 * time.Millisecond
	MaxNetworkTimeout = 60000 * time.Millisecond
)

// Settings is an immutable configuration snapshot for the probe loop.
// Build it with NewSettings; the zero value is not usable.
type Settings struct {
	targetURL      string
	expectedCode   int
	cycleDuration  time.Duration
	networkTimeout time.Duration
}

// NewSettings clamps cycle to [MinCycleDuration, MaxCycleDuration] and timeout
// to [MinNetworkTimeout, MaxNetworkTimeout]. Out-of-range values are coerced to
// the nearest bound. URL and code are taken as given; a bad URL shows up as a
// failed probe.
func NewSettings(targetURL string, expectedCode int, cycle, timeout time.Duration) Settings {
	return Settings{
		targetURL:      targetURL,
		expectedCode:   expectedCode,
		cycleDuration:  clamp(cycle, MinCycleDuration, MaxCycleDuration),
		networkTimeout: clamp(timeout, MinNetworkTimeout, MaxNetworkTimeout),
	}
}

func DefaultSettings() Settings {
	return NewSettings(DefaultTargetURL, DefaultExpectedCode, DefaultCycleDuration, DefaultNetworkTimeout)
}

func (s Settings) TargetURL() string             { return s.targetURL }
func (s Settings) ExpectedCode() int             { return s.expectedCode }
func (s Settings) CycleDuration() time.Duration  { return s.cycleDuration }
func (s Settings) NetworkTimeout() time.Duration { return s.networkTimeout }

// SettingsView is the flat, millisecond-based form used on the wire and in storage.
type SettingsView struct {
	TargetURL        string `json:"targetUrl" yaml:"targetUrl"`
	ExpectedCode     int    `json:"expectedCode" yaml:"expectedCode"`
	CycleDurationMS  int64  `json:"cycleDuration" yaml:"cycleDuration"`
	NetworkTimeoutMS int64  `json:"networkTimeout" yaml:"networkTimeout"`
}

func (s Settings) View() SettingsView {
	return SettingsView{
		TargetURL:        s.targetURL,
		ExpectedCode:     s.expectedCode,
		CycleDurationMS:  s.cycleDuration.Milliseconds(),
		NetworkTimeoutMS: s.networkTimeout.Milliseconds(),
	}
}

func clamp(d, lo, hi time.Duration) time.Duration {
	if d < lo {
		return lo
	}
	if d > hi {
		return hi
	}
	return d
}
