package realtime

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/dmitrijs2005/taskhub/internal/common"
	"github.com/dmitrijs2005/taskhub/internal/logging"
)

// Server exposes the channel kinds as WebSocket routes.
type Server struct {
	gate     *Gate
	router   *Router
	cfg      ConnConfig
	upgrader websocket.Upgrader
	log      logging.Logger
}

func NewServer(gate *Gate, router *Router, cfg ConnConfig, l logging.Logger) *Server {
	return &Server{
		gate:   gate,
		router: router,
		cfg:    cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
		log: l.With("module", "realtime"),
	}
}

// Handler returns the chi router serving every channel and /healthz.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/ws", func(r chi.Router) {
		r.Get("/direct/{token}/{userId}", func(w http.ResponseWriter, r *http.Request) {
			s.serve(w, r, Direct, chi.URLParam(r, "token"), chi.URLParam(r, "userId"))
		})
		r.Get("/project/{token}/{projectId}", func(w http.ResponseWriter, r *http.Request) {
			s.serve(w, r, Group, chi.URLParam(r, "token"), chi.URLParam(r, "projectId"))
		})
		r.Get("/notifications/{token}", func(w http.ResponseWriter, r *http.Request) {
			s.serve(w, r, Notification, chi.URLParam(r, "token"), "")
		})
	})
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug(r.Context(), "http request", "method", r.Method, "path", routeLabel(r), "remote", r.RemoteAddr,
			"request_id", middleware.GetReqID(r.Context()))
		next.ServeHTTP(w, r)
	})
}

// routeLabel keeps tokens out of the logs.
func routeLabel(r *http.Request) string {
	if strings.HasPrefix(r.URL.Path, "/ws/") {
		return "/ws/..."
	}
	return r.URL.Path
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request, kind Kind, token, target string) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn(r.Context(), "upgrade failed", "kind", kind.String(), "error", err)
		return
	}

	ctx := r.Context()
	log := s.log.With("kind", kind.String(), "token", common.ShortToken(token))

	userID, err := s.gate.Admit(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			log.Info(ctx, "connection refused")
		} else {
			log.Error(ctx, "connection refused, token check failed", "error", err)
		}
		refuse(ws, "authentication failed", s.cfg.WriteTimeout)
		return
	}

	conn := newWSConn(ws, s.cfg, log)
	sess := &Session{Kind: kind, Token: token, Target: target, UserID: userID, Conn: conn}
	log = log.With("user_id", userID, "conn_id", conn.ID())

	go conn.writePump(ctx)
	s.router.Register(sess)
	log.Info(ctx, "connection admitted")

	conn.readPump(ctx, func(data []byte) {
		if err := s.router.HandleFrame(ctx, sess, data); err != nil {
			log.Warn(ctx, "frame dropped", "error", err)
		}
	})

	s.router.Unregister(sess)
	conn.Close(CloseNormal, "")
	log.Info(ctx, "connection closed")
}
