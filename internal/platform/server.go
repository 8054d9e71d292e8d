package platform

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"clipper/internal/clipper"
	"clipper/ui"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerConfig holds HTTP server tunables.
type HTTPServerConfig struct {
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	EnableTLS    bool          `yaml:"enable_tls"` // whether to use HTTPS
	CertFile     string        `yaml:"cert_file"`  // path to TLS certificate
	KeyFile      string        `yaml:"key_file"`   // path to TLS private key
	// CookieSecret signs the session cookie. Empty generates a key per process.
	CookieSecret string        `yaml:"cookie_secret"`
}

const (
	cookieName     = "clipper"
	prefPlatform   = "platform"
	cookieIDKey    = "id"
	sessionMaxAge  = 60 * 60 * 24 * 7 // 1 week
	maxRequestBody = 64 << 10
)

// NewCookieStore builds the session cookie store from cfg.
func NewCookieStore(cfg HTTPServerConfig) *sessions.CookieStore {
	key := []byte(cfg.CookieSecret)
	if len(key) == 0 {
		slog.Warn("http: no cookie secret configured, sessions will not survive a restart")
		key = securecookie.GenerateRandomKey(32)
	}
	return sessions.NewCookieStore(key)
}

// requestSession is what SessionMiddleware leaves in the request context.
type requestSession struct {
	id       string
	platform clipper.Platform // zero when the visitor has no stored preference
	cookie   *sessions.Session
}

type sessionCtxKey struct{}

// SessionMiddleware assigns or loads the session id and stored preferences.
func SessionMiddleware(store sessions.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, _ := store.Get(r, cookieName)
			id, ok := sess.Values[cookieIDKey].(string)
			if !ok || id == "" {
				id = uuid.NewString()
				sess.Values[cookieIDKey] = id
				sess.Options = &sessions.Options{
					Path:     "/",
					MaxAge:   sessionMaxAge,
					HttpOnly: true,
					Secure:   r.TLS != nil,
					SameSite: http.SameSiteLaxMode,
				}
				if err := sess.Save(r, w); err != nil {
					slog.Warn("http: save session cookie", "err", err)
				}
			}
			rs := &requestSession{id: id, cookie: sess}
			if name, ok := sess.Values[prefPlatform].(string); ok {
				rs.platform, _ = clipper.ParsePlatform(name)
			}
			ctx := context.WithValue(r.Context(), sessionCtxKey{}, rs)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func currentSession(r *http.Request) *requestSession {
	rs, _ := r.Context().Value(sessionCtxKey{}).(*requestSession)
	if rs == nil {
		return &requestSession{}
	}
	return rs
}

// SessionID returns the session ID from the request context.
func SessionID(r *http.Request) string {
	return currentSession(r).id
}

// SessionPlatform is the stored platform preference, or the platform detected
// from the User-Agent when there is none.
func SessionPlatform(r *http.Request) clipper.Platform {
	if p := currentSession(r).platform; p != clipper.Unknown {
		return p
	}
	return clipper.DetectPlatform(r.UserAgent())
}

// NewRouter wires every route onto a chi router.
func NewRouter(js jetstream.JetStream, svc *Services, store sessions.Store) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(chiLogger)
	r.Use(middleware.Recoverer)

	// metrics endpoint
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Get("/health", Health)

	// static assets
	staticFS, _ := fs.Sub(ui.StaticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	r.Get("/favicon.svg", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/svg+xml")
		_, _ = w.Write(ui.FaviconSVG)
	})

	// application routes
	r.Group(func(r chi.Router) {
		r.Use(SessionMiddleware(store))
		r.Get("/", InstallPageHandler(svc))
		r.Get("/terminal", TerminalPageHandler())
		r.Post("/terminal", TerminalCommandHandler(js))
		r.Post("/terminal/recall/{dir}", RecallHandler(svc))
		r.Get("/ui", UIStream(js, svc))
		r.Patch("/session/prefs", PrefsHandler(svc))
		r.Get("/session/state", StateHandler(svc))
	})
	return r
}

// RunHTTPServer starts an HTTP server and returns a channel that will receive
// an error when the server exits (gracefully or not).
func RunHTTPServer(ctx context.Context, nc *nats.Conn, svc *Services, cfg HTTPServerConfig) (<-chan error, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("jetstream context: %w", err)
	}

	errCh := make(chan error, 1)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewRouter(js, svc, NewCookieStore(cfg)),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		// wait for context cancellation then shutdown
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			errCh <- err
			return
		}
		errCh <- ctx.Err()
	}()

	go func() {
		slog.Info("http: listening", "addr", srv.Addr, "tls", cfg.EnableTLS)
		var err error
		if cfg.EnableTLS {
			err = srv.ListenAndServeTLS(cfg.CertFile, cfg.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	return errCh, nil
}

// chiLogger is a lightweight slog adapter for chi middleware.
func chiLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t0 := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		duration := time.Since(t0)
		routePattern := chi.RouteContext(r.Context()).RoutePattern()
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		if HTTPRequestsTotal != nil {
			HTTPRequestsTotal.WithLabelValues(r.Method, routePattern, fmt.Sprint(status)).Inc()
			HTTPDuration.WithLabelValues(r.Method, routePattern).Observe(duration.Seconds())
		}
		slog.Info("http", "method", r.Method, "path", r.URL.Path, "route", routePattern,
			"status", status, "duration", duration, "request_id", middleware.GetReqID(r.Context()))
	})
}
