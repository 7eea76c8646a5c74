package repo

import "context"

// SettingsStore is a flat key/value store for persisted settings.
// Values are strings; callers format and parse numbers themselves.
type SettingsStore interface {
	// Get returns ok=false, err=nil when the key has never been written.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	// Put writes every pair in one step; either all land or none do.
	Put(ctx context.Context, values map[string]string) error
}
