package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/hamed0406/urlcheck/internal/domain"
	apimw "github.com/hamed0406/urlcheck/internal/httpapi/middleware"
	"github.com/hamed0406/urlcheck/internal/repo"
	"github.com/hamed0406/urlcheck/internal/settings"
)

// Controller is the part of the probe loop the control surface drives.
type Controller interface {
	ApplySettings(domain.Settings)
	Settings() (domain.Settings, bool)
	Latest() (domain.Status, bool)
}

type Server struct {
	Logger  *zap.Logger
	Store   repo.SettingsStore
	Loop    Controller
	Stream  http.Handler // websocket status stream, optional
	Metrics http.Handler // optional
}

func NewServer(l *zap.Logger, store repo.SettingsStore, loop Controller, stream, metrics http.Handler) *Server {
	return &Server{Logger: l, Store: store, Loop: loop, Stream: stream, Metrics: metrics}
}

// Router builds the control surface. An empty allowedOrigins allows every
// origin. writesPerMin <= 0 disables rate limiting of settings changes.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, writesPerMin, writeBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(corsHandler(allowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	if s.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(apimw.RequireAny(keys))
		r.Get("/status", s.handleStatus)
		if s.Stream != nil {
			r.Method(http.MethodGet, "/status/ws", s.Stream)
		}
		r.Get("/settings", s.handleGetSettings)

		r.Group(func(r chi.Router) {
			r.Use(apimw.RequireControl(keys))
			r.Use(apimw.RateLimit(writesPerMin, writeBurst))
			r.Put("/settings", s.handlePutSettings)
			r.Post("/settings/reset", s.handleResetSettings)
		})
	})
	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st, ok := s.Loop.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	cur, ok := s.Loop.Settings()
	if !ok {
		loaded, err := settings.Load(r.Context(), s.Store)
		if err != nil {
			s.Logger.Warn("settings_load_error", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "could not load settings")
			return
		}
		cur = loaded
	}
	writeJSON(w, http.StatusOK, cur.View())
}

// handlePutSettings accepts numbers either as JSON numbers or strings, since
// the values are parsed the same way form input is.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "bad payload")
		return
	}
	in := settings.Input{
		TargetURL:      field(raw, settings.KeyTargetURL),
		ExpectedCode:   field(raw, settings.KeyExpectedCode),
		CycleDuration:  field(raw, settings.KeyCycleDuration),
		NetworkTimeout: field(raw, settings.KeyNetworkTimeout),
	}
	next, err := settings.Parse(in)
	if err != nil {
		var fe *settings.FieldError
		if errors.As(err, &fe) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error(), "field": fe.Field})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.apply(w, r, next, "settings_updated")
}

func (s *Server) handleResetSettings(w http.ResponseWriter, r *http.Request) {
	s.apply(w, r, domain.DefaultSettings(), "settings_reset")
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, next domain.Settings, event string) {
	if err := settings.Save(r.Context(), s.Store, next); err != nil {
		s.Logger.Error("settings_save_error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "could not save settings")
		return
	}
	s.Loop.ApplySettings(next)
	v := next.View()
	s.Logger.Info(event,
		zap.String("url", v.TargetURL),
		zap.Int("expected_code", v.ExpectedCode),
		zap.Int64("cycle_ms", v.CycleDurationMS),
		zap.Int64("timeout_ms", v.NetworkTimeoutMS),
		zap.String("request_id", chimw.GetReqID(r.Context())),
	)
	writeJSON(w, http.StatusOK, v)
}

// field returns a JSON string unquoted, and any other JSON value as written.
func field(raw map[string]json.RawMessage, key string) string {
	v, ok := raw[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		return s
	}
	return string(v)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
