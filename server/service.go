package server

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/samber/do/v2"

	"github.com/briwylde08/dead-mans-draw/logger"
)

// Service owns the HTTP listener. It is built through the injector so the
// command wiring can assemble it next to the store and the engine.
type Service struct {
	echo *echo.Echo
	port int
}

// NewService configures the listener and mounts the handlers provided in
// the injector under the "port" named value and the *Server type.
func NewService(i do.Injector) (*Service, error) {
	port := do.MustInvokeNamed[int](i, "port")
	srv := do.MustInvoke[*Server](i)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	log := logger.Logger()
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogMethod:  true,
		LogURI:     true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info().
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Err(v.Error).
				Msg("request")
			return nil
		},
	}))
	e.Use(middleware.Recover())

	srv.Register(e)

	return &Service{echo: e, port: port}, nil
}

// Start blocks serving HTTP until the listener fails or Shutdown runs.
func (s *Service) Start() error {
	if err := s.echo.Start(fmt.Sprintf(":%d", s.port)); err != nil {
		return fmt.Errorf("start http listener: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Service) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown http listener: %w", err)
	}
	return nil
}
