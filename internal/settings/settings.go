package settings

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/urlcheck/internal/domain"
	"github.com/hamed0406/urlcheck/internal/repo"
)

// Persisted keys.
const (
	KeyTargetURL      = "targetUrl"
	KeyExpectedCode   = "expectedCode"
	KeyCycleDuration  = "cycleDuration"
	KeyNetworkTimeout = "networkTimeout"
)

var ErrInvalid = errors.New("invalid setting")

// FieldError reports which input field was rejected.
type FieldError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: %q is not valid", e.Field, e.Value)
}

func (e *FieldError) Unwrap() error { return ErrInvalid }

// Input is raw user input, as typed into a form. Numbers are milliseconds.
type Input struct {
	TargetURL      string `json:"targetUrl"`
	ExpectedCode   string `json:"expectedCode"`
	CycleDuration  string `json:"cycleDuration"`
	NetworkTimeout string `json:"networkTimeout"`
}

// Parse validates user input. The URL only has to be non-empty and the numbers
// only have to be integers; range problems are clamped by domain.NewSettings.
func Parse(in Input) (domain.Settings, error) {
	url := strings.TrimSpace(in.TargetURL)
	if url == "" {
		return domain.Settings{}, &FieldError{Field: KeyTargetURL, Value: in.TargetURL, Err: errors.New("must not be empty")}
	}
	code, err := parseInt(KeyExpectedCode, in.ExpectedCode)
	if err != nil {
		return domain.Settings{}, err
	}
	cycle, err := parseInt(KeyCycleDuration, in.CycleDuration)
	if err != nil {
		return domain.Settings{}, err
	}
	timeout, err := parseInt(KeyNetworkTimeout, in.NetworkTimeout)
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.NewSettings(url, int(code), ms(cycle), ms(timeout)), nil
}

// Load reads settings from store, using the default for every missing key.
// A stored value that is not an integer is an error.
func Load(ctx context.Context, store repo.SettingsStore) (domain.Settings, error) {
	def := domain.DefaultSettings().View()

	url, ok, err := store.Get(ctx, KeyTargetURL)
	if err != nil {
		return domain.Settings{}, fmt.Errorf("load %s: %w", KeyTargetURL, err)
	}
	if !ok {
		url = def.TargetURL
	}
	code, err := loadInt(ctx, store, KeyExpectedCode, int64(def.ExpectedCode))
	if err != nil {
		return domain.Settings{}, err
	}
	cycle, err := loadInt(ctx, store, KeyCycleDuration, def.CycleDurationMS)
	if err != nil {
		return domain.Settings{}, err
	}
	timeout, err := loadInt(ctx, store, KeyNetworkTimeout, def.NetworkTimeoutMS)
	if err != nil {
		return domain.Settings{}, err
	}
	return domain.NewSettings(url, int(code), ms(cycle), ms(timeout)), nil
}

func Save(ctx context.Context, store repo.SettingsStore, s domain.Settings) error {
	v := s.View()
	err := store.Put(ctx, map[string]string{
		KeyTargetURL:      v.TargetURL,
		KeyExpectedCode:   strconv.Itoa(v.ExpectedCode),
		KeyCycleDuration:  strconv.FormatInt(v.CycleDurationMS, 10),
		KeyNetworkTimeout: strconv.FormatInt(v.NetworkTimeoutMS, 10),
	})
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Reset stores the defaults and returns them.
func Reset(ctx context.Context, store repo.SettingsStore) (domain.Settings, error) {
	s := domain.DefaultSettings()
	if err := Save(ctx, store, s); err != nil {
		return domain.Settings{}, err
	}
	return s, nil
}

func loadInt(ctx context.Context, store repo.SettingsStore, key string, def int64) (int64, error) {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load %s: %w", key, err)
	}
	if !ok {
		return def, nil
	}
	n, err := parseInt(key, raw)
	if err != nil {
		return 0, fmt.Errorf("load: %w", err)
	}
	return n, nil
}

func parseInt(field, raw string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0, &FieldError{Field: field, Value: raw, Err: errors.New("not an integer")}
	}
	return n, nil
}

// ms converts milliseconds to a Duration, saturating instead of overflowing.
func ms(n int64) time.Duration {
	const limit = math.MaxInt64 / int64(time.Millisecond)
	switch {
	case n > limit:
		return time.Duration(math.MaxInt64)
	case n < -limit:
		return time.Duration(math.MinInt64)
	}
	return time.Duration(n) * time.Millisecond
}
