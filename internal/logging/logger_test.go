package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLogger_WritesJSONToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	log, err := NewLogger(dir, "info", false)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}

	log.Info("test_message_from_logging_test")
	log.Debug("below_level")
	_ = log.Sync()

	raw, err := os.ReadFile(filepath.Join(dir, fileName))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"test_message_from_logging_test"`) {
		t.Fatalf("message missing:\n%s", raw)
	}
	if strings.Contains(string(raw), "below_level") {
		t.Fatalf("debug line written at info level")
	}
}

func TestNewLogger_RejectsBadLevel(t *testing.T) {
	if _, err := NewLogger(t.TempDir(), "loud", false); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
