package health

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Server is the liveness endpoint used by process supervisors. It runs on
// its own goroutine and shares no state with the polling loop.
type Server struct {
	srv    *http.Server
	logger *logrus.Entry
}

func NewServer(addr string, logger *logrus.Entry) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", Handler)
	return &Server{
		srv:    &http.Server{Addr: addr, Handler: mux},
		logger: logger,
	}
}

// Handler answers every liveness probe with a fixed 200, independent of core
// state.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		s.logger.WithField("addr", s.srv.Addr).Info("Health endpoint listening")
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Error("Health endpoint stopped unexpectedly")
		}
	}()
}

// Stop shuts the endpoint down gracefully.
func (s *Server) Stop(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
