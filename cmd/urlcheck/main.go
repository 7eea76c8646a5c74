package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/hamed0406/urlcheck/internal/config"
	"github.com/hamed0406/urlcheck/internal/httpapi"
	apimw "github.com/hamed0406/urlcheck/internal/httpapi/middleware"
	"github.com/hamed0406/urlcheck/internal/logging"
	"github.com/hamed0406/urlcheck/internal/metrics"
	"github.com/hamed0406/urlcheck/internal/notify"
	"github.com/hamed0406/urlcheck/internal/probe"
	"github.com/hamed0406/urlcheck/internal/repo/backend"
	"github.com/hamed0406/urlcheck/internal/scheduler"
	"github.com/hamed0406/urlcheck/internal/settings"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir, cfg.LogLevel, cfg.LogStderr)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Error("fatal", zap.Error(err))
		_ = logger.Sync()
		fmt.Fprintln(os.Stderr, "urlcheck:", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *zap.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, closeStore.Close()) }()

	initial, err := settings.Load(ctx, store)
	if err != nil {
		return fmt.Errorf("stored settings: %w", err)
	}

	prober := probe.NewHTTPProber(cfg.ProbeMethod, cfg.UserAgent)
	prom := metrics.New()
	hub := notify.NewHub(logger, cfg.AllowedOrigins)
	defer func() { err = multierr.Append(err, hub.Close()) }()

	observers := []notify.Observer{notify.LogObserver{Logger: logger}, prom, hub}
	senders, err := buildSenders(cfg)
	if err != nil {
		return err
	}
	if len(senders) > 0 {
		alerter := notify.NewAlerter(senders, notify.AlerterConfig{
			AlertOnRecovery: cfg.AlertOnRecovery,
			Cooldown:        cfg.AlertCooldown,
		}, logger)
		async := notify.Async(alerter, cfg.AlertQueue, logger)
		defer func() { err = multierr.Append(err, async.Close()) }()
		observers = append(observers, async)
	}

	loop := scheduler.New(logger, prober, &initial, observers...)
	if err := loop.Start(); err != nil {
		return err
	}

	srvErr := make(chan error, 1)
	var srv *http.Server
	if cfg.APIAddr != "" {
		api := httpapi.NewServer(logger, store, loop, hub, prom.Handler())
		keys := apimw.Keys{Read: cfg.ReadAPIKeys, Control: cfg.ControlAPIKeys}
		srv = &http.Server{
			Addr:              cfg.APIAddr,
			Handler:           api.Router(keys, cfg.AllowedOrigins, cfg.ControlRPM, cfg.ControlBurst),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			logger.Info("api_listen", zap.String("addr", cfg.APIAddr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				srvErr <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutdown_signal")
	case <-loop.Done():
		err = errors.New("probe loop exited unexpectedly")
	case e := <-srvErr:
		err = fmt.Errorf("api server: %w", e)
	}

	loop.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if srv != nil {
		err = multierr.Append(err, srv.Shutdown(shutdownCtx))
	}
	// An in-flight probe finishes within its own timeouts.
	v := initial.View()
	if cur, ok := loop.Settings(); ok {
		v = cur.View()
	}
	select {
	case <-loop.Done():
	case <-time.After(2*time.Duration(v.NetworkTimeoutMS)*time.Millisecond + time.Second):
		logger.Warn("probe_loop_stop_timeout")
	}
	return err
}

func buildSenders(cfg config.Config) (notify.Multi, error) {
	var out notify.Multi
	if s := notify.NewSlack(cfg.SlackWebhookURL); s != nil {
		out = append(out, s)
	}
	tg, err := notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID)
	if err != nil {
		return nil, err
	}
	if tg != nil {
		out = append(out, tg)
	}
	return out, nil
}
