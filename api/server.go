package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/meghashyamc/searchresource/config"
	"github.com/meghashyamc/searchresource/db/kvdb"
	"github.com/meghashyamc/searchresource/db/searchdb"
	"github.com/meghashyamc/searchresource/logger"
	"github.com/meghashyamc/searchresource/services/search"
	"github.com/meghashyamc/searchresource/validation"
)

const shutdownTimeout = 10 * time.Second

type server struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	kvdb       kvdb.DB
	searchdb   searchdb.DB
	validator  *validation.Validator
	resources  []config.Resource
	logger     logger.Logger
}

// Run serves until ctx is cancelled or the process is interrupted.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s := &server{
		cfg:    cfg,
		logger: logger.New(cfg.GetLogLevel()),
	}
	if err := s.setupDependencies(); err != nil {
		return err
	}
	defer s.closeDependencies()

	s.setupRouter()
	s.setupHTTPServer()

	return s.serve(ctx)
}

func (s *server) setupDependencies() error {
	var err error
	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		return err
	}

	s.resources, err = s.cfg.GetResources()
	if err != nil {
		s.logger.Error("error reading resources", "err", err.Error())
		return err
	}
	if err := s.validateResources(); err != nil {
		return err
	}

	s.kvdb, err = kvdb.New(s.logger, s.cfg.GetKVDBPath())
	if err != nil {
		s.logger.Error("error creating kvDB", "err", err.Error())
		return err
	}
	s.searchdb, err = searchdb.New(s.logger, s.cfg.GetStoragePath(), s.cfg.GetIndexPath())
	if err != nil {
		s.logger.Error("error creating searchDB", "err", err.Error())
		s.kvdb.Close()
		return err
	}

	return nil
}

func (s *server) validateResources() error {
	if len(s.resources) == 0 {
		return errors.New("no resources configured")
	}

	names := make(map[string]struct{}, len(s.resources))
	for _, resource := range s.resources {
		if err := s.validator.Validate(resource); err != nil {
			return fmt.Errorf("invalid resource %q: %w", resource.Name, err)
		}
		if _, ok := names[resource.Name]; ok {
			return fmt.Errorf("resource %q configured more than once", resource.Name)
		}
		names[resource.Name] = struct{}{}
	}

	return nil
}

func (s *server) closeDependencies() {
	if err := s.searchdb.Close(); err != nil {
		s.logger.Error("error closing searchDB", "err", err.Error())
	}
	if err := s.kvdb.Close(); err != nil {
		s.logger.Error("error closing kvDB", "err", err.Error())
	}
}

func (s *server) setupRouter() {
	router := newRouter(s.logger)

	requestsPerSecond, burst := s.cfg.GetThrottle()
	service := search.New(s.logger, s.searchdb, s.kvdb)
	setupRoutes(router, s.logger, s.resources, service, s.searchdb, s.validator, newThrottle(requestsPerSecond, burst))

	s.router = router
}

func (s *server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler:           s.router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

func (s *server) serve(ctx context.Context) error {
	errC := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errC <- err
		}
		close(errC)
	}()

	select {
	case err := <-errC:
		if err != nil {
			s.logger.Error("http server failed", "err", err.Error())
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err)
		return err
	}
	s.logger.Info("shut down http server successfully")

	return nil
}
