package httpservice

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spinwheel-network/spinwheel/internal/config"
	interfaces "github.com/spinwheel-network/spinwheel/internal/interface"
)

const shutdownTimeout = 5 * time.Second

type service struct {
	config     Config
	appConfig  *config.Config
	server     *http.Server
	metrics    *metrics
	stopEvents context.CancelFunc
}

func NewService(
	svcConfig Config, appConfig *config.Config,
) (interfaces.Service, error) {
	if err := svcConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid service config: %s", err)
	}
	if err := appConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid app config: %s", err)
	}

	return &service{
		config:    svcConfig,
		appConfig: appConfig,
		metrics:   newMetrics(),
	}, nil
}

func (s *service) Start() error {
	appSvc, err := s.appConfig.AppService()
	if err != nil {
		return err
	}
	if err := appSvc.Start(); err != nil {
		return fmt.Errorf("failed to start app service: %s", err)
	}
	log.Info("started app service")

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.metrics.trackRoundEvents(ctx, appSvc); err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to round events: %s", err)
	}
	s.stopEvents = cancel

	s.server = &http.Server{
		Addr:              s.config.address(),
		Handler:           newRouter(appSvc, s.metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http server failed")
		}
	}()

	log.Infof("http server listening on %s", s.config.address())
	return nil
}

func (s *service) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("failed to gracefully shutdown http server")
		}
		log.Info("stopped http server")
	}
	if s.stopEvents != nil {
		s.stopEvents()
	}

	appSvc, err := s.appConfig.AppService()
	if err != nil {
		return
	}
	appSvc.Stop()
	log.Info("stopped app service")
}
