// cmd/preflight/main.go
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"

	"github.com/hamed0406/urlcheck/internal/config"
	"github.com/hamed0406/urlcheck/internal/probe"
	"github.com/hamed0406/urlcheck/internal/repo/backend"
	"github.com/hamed0406/urlcheck/internal/settings"
)

func main() {
	_ = godotenv.Load()
	os.Exit(check(context.Background(), config.FromEnv(), os.Stdout, os.Stderr))
}

// check prints one line per finding and returns the process exit code.
func check(ctx context.Context, cfg config.Config, stdout, stderr io.Writer) int {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	if _, err := zapcore.ParseLevel(cfg.LogLevel); err != nil {
		fail("LOG_LEVEL " + cfg.LogLevel + " is not a log level (debug, info, warn, error).")
	}

	for _, name := range []string{"READ_API_KEYS", "CONTROL_API_KEYS", "ALLOWED_ORIGINS"} {
		if strings.Contains(os.Getenv(name), " ") {
			warn(name + " contains spaces; use comma-separated with no spaces, e.g. key1,key2")
		}
	}

	if cfg.APIAddr == "" {
		warn("API_ADDR is empty; the control surface is disabled.")
	} else {
		ok("API_ADDR=" + cfg.APIAddr)
		if len(cfg.ControlAPIKeys) == 0 {
			warn("CONTROL_API_KEYS is empty; anyone who can reach API_ADDR can change settings.")
		}
		if len(cfg.AllowedOrigins) == 0 {
			warn("ALLOWED_ORIGINS is empty; every origin is allowed.")
		}
	}

	if cfg.ProbeMethod != "HEAD" && cfg.ProbeMethod != "GET" {
		warn("PROBE_METHOD " + cfg.ProbeMethod + " is not HEAD or GET; HEAD will be used.")
	}
	if (cfg.TelegramBotToken == "") != (cfg.TelegramChatID == 0) {
		warn("Telegram needs both TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID; alerts there are disabled.")
	}
	if cfg.SlackWebhookURL == "" && cfg.TelegramBotToken == "" {
		warn("No alert channel configured; status changes are only logged.")
	}

	sctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	store, closer, err := backend.Open(sctx, cfg, nil)
	if err != nil {
		fail(err.Error())
		return exitCode(failed)
	}
	defer closer.Close()
	ok("SETTINGS_BACKEND=" + cfg.SettingsBackend)

	s, err := settings.Load(sctx, store)
	if err != nil {
		fail("stored settings are unusable: " + err.Error())
		return exitCode(failed)
	}
	v := s.View()
	ok(fmt.Sprintf("target %s expecting %d, every %d ms, timeout %d ms", v.TargetURL, v.ExpectedCode, v.CycleDurationMS, v.NetworkTimeoutMS))

	host := probe.HostOf(v.TargetURL)
	dns := probe.CheckDNS(ctx, host)
	switch dns.Class {
	case probe.DNSResolves, probe.DNSIPLiteral:
		ok(fmt.Sprintf("DNS %s: %s", host, dns.Class))
	case probe.DNSInvalidName:
		fail("target URL " + v.TargetURL + " has no usable host.")
	default:
		detail := dns.Class
		if dns.ResolverError != "" {
			detail += " (" + dns.ResolverError + ")"
		}
		warn("DNS " + host + ": " + detail + "; probes will fail until it resolves.")
	}

	if !failed {
		ok("preflight passed")
	}
	return exitCode(failed)
}

func exitCode(failed bool) int {
	if failed {
		return 1
	}
	return 0
}
