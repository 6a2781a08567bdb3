package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/MrPiglr/mrpiglr.com-sub001/internal/logger"
)

// Server wraps the HTTP listener with optional TLS.
type Server struct {
	srv      *http.Server
	certFile string
	keyFile  string
	logger   *logger.Logger
}

func NewServer(handler http.Handler, port string, certFile, keyFile string, logger *logger.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: handler,
		},
		certFile: certFile,
		keyFile:  keyFile,
		logger:   logger,
	}
}

// Start blocks until the listener stops. A clean shutdown is not an error.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "address", s.srv.Addr, "tls", s.certFile != "")

	var err error
	if s.certFile != "" && s.keyFile != "" {
		err = s.srv.ListenAndServeTLS(s.certFile, s.keyFile)
	} else {
		err = s.srv.ListenAndServe()
	}
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("http server stopping")
	return s.srv.Shutdown(ctx)
}

func (s *Server) Address() string {
	return s.srv.Addr
}
