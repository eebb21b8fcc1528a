package api

import (
	"github.com/burenotti/healthtrack/internal/adapter/storage"
	"github.com/burenotti/healthtrack/internal/app/authapp"
	"github.com/burenotti/healthtrack/internal/app/entryapp"
	"github.com/burenotti/healthtrack/internal/app/goalapp"
	"github.com/burenotti/healthtrack/internal/app/unitofwork"
	"github.com/prometheus/client_golang/prometheus"
	"log/slog"
	"net"
	"strconv"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

func DBContext(db *storage.DB) Option {
	return func(s *Server) {
		s.db = db
	}
}

func AuthService(service *authapp.Service) Option {
	return func(s *Server) {
		s.authService = service
	}
}

func GoalService(service *goalapp.Service) Option {
	return func(s *Server) {
		s.goalService = service
	}
}

func EntryService(service *entryapp.Service) Option {
	return func(s *Server) {
		s.entryService = service
	}
}

func MessageBus(bus unitofwork.MessageBus) Option {
	return func(s *Server) {
		s.msgBus = bus
	}
}

// Registry exposes the server's collectors through reg. Metrics built
// elsewhere against the same registry can be shared with WithMetrics.
func Registry(reg *prometheus.Registry) Option {
	return func(s *Server) {
		s.registry = reg
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

func WithTimeouts(t Timeouts) Option {
	return func(s *Server) {
		s.timeouts = t
	}
}
