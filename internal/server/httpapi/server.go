package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophchat/internal/logging"
	"github.com/dmitrijs2005/gophchat/internal/server/ws"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/julienschmidt/httprouter"
)

// Server routes the REST API and mounts the websocket handler on /ws.
type Server struct {
	users    Users
	messages Messages
	socket   http.Handler
	origins  *ws.OriginPolicy
	validate *validator.Validate
	logger   logging.Logger
	router   *httprouter.Router
}

func New(users Users, messages Messages, socket http.Handler, origins *ws.OriginPolicy, logger logging.Logger) *Server {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	s := &Server{
		users:    users,
		messages: messages,
		socket:   socket,
		origins:  origins,
		validate: v,
		logger:   logger.With("module", "http_server"),
		router:   httprouter.New(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.POST("/submit", s.handleSubmit)
	s.router.POST("/login", s.handleLogin)
	s.router.POST("/logout", s.handleLogout)

	s.router.GET("/getuser", s.requireAuth(s.handleListUsers))
	s.router.GET("/user/:id", s.handleGetUser)
	s.router.GET("/user/:id/avatar", s.handleAvatarDownload)
	s.router.POST("/user/avatar", s.requireAuth(s.handleAvatarUpload))

	s.router.GET("/messages/:userId/:peerId", s.handleHistory)
	s.router.DELETE("/messages/:id", s.requireAuth(s.handleDeleteMessage))
	s.router.POST("/messages/:id/hide", s.requireAuth(s.handleHideMessage))

	s.router.GET("/health", s.handleHealth)
	if s.socket != nil {
		s.router.Handler(http.MethodGet, "/ws", s.socket)
	}
}

// Handler returns the router wrapped with CORS and request logging.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.cors(s.router))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within shutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	listen, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	stopped := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		stopped <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-stopped
}
