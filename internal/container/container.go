// Package container wires the node's components together: config,
// logging, store, events, proxy, identity, dispatcher, server, and the
// small observability HTTP surface. Grounded on the teacher's
// components.Container — same sync.Once singleton and staged init/start/
// shutdown shape, retargeted from an HTTP API to the line-protocol node.
package container

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"p2pbank/internal/config"
	"p2pbank/internal/dispatcher"
	"p2pbank/internal/domain"
	"p2pbank/internal/events"
	"p2pbank/internal/identity"
	"p2pbank/internal/logging"
	"p2pbank/internal/messaging/kafka"
	"p2pbank/internal/metrics"
	"p2pbank/internal/proxy"
	"p2pbank/internal/server"
	"p2pbank/internal/store"
)

// Container holds every long-lived component for the lifetime of the
// process. It is constructed once at startup and torn down once at
// shutdown. The only other package-level state is the logger in
// internal/logging and the Prometheus collectors in internal/metrics.
type Container struct {
	Config        *config.Config
	Store         *store.Store
	Broker        *events.Broker
	AuditPub      events.Publisher
	Events        *events.Fanout
	Proxy         *proxy.Forwarder
	Dispatcher    *dispatcher.Dispatcher
	Server        *server.Server
	MetricsServer *http.Server
}

var (
	instance     *Container
	instanceOnce sync.Once
	instanceErr  error
)

// GetInstance returns the process-wide Container, building it on first
// call.
func GetInstance(ctx context.Context) (*Container, error) {
	instanceOnce.Do(func() {
		instance, instanceErr = newContainer(ctx)
	})
	return instance, instanceErr
}

func newContainer(ctx context.Context) (*Container, error) {
	c := &Container{}

	c.Config = config.Load()
	logging.Init(c.Config)

	if c.Config.Bank.Get() == "" {
		c.Config.Bank.Set(identity.Resolve())
	}
	logging.Info("identity resolved", map[string]interface{}{"bank_code": c.Config.Bank.Get()})

	st, err := store.New(ctx, c.Config.DB)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	c.Store = st

	c.Broker = events.NewBroker()
	c.AuditPub = c.initAuditPublisher()
	c.Events = &events.Fanout{Broker: c.Broker, Audit: c.AuditPub}

	c.Proxy = proxy.New(
		time.Duration(c.Config.P2P.ProxyTimeoutMS)*time.Millisecond,
		c.Store,
		c.Events,
	)

	handlers := &domain.Handlers{
		Store:  c.Store,
		Proxy:  c.Proxy,
		Bank:   &c.Config.Bank,
		Events: c.Events,
	}
	c.Dispatcher = dispatcher.New(handlers)

	c.Server = server.New(server.Config{
		Host:        c.Config.P2P.Host,
		Port:        c.Config.P2P.Port,
		ReadTimeout: time.Duration(c.Config.P2P.ReadTimeoutMS) * time.Millisecond,
	}, c.Dispatcher, c.Events)

	c.MetricsServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", c.Config.Metrics.Port),
		Handler:      metrics.Router(c.Broker),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logging.Info("all components initialized", nil)
	return c, nil
}

func (c *Container) initAuditPublisher() events.Publisher {
	if !c.Config.Kafka.Enabled {
		logging.Info("kafka disabled, using no-op audit publisher", nil)
		return events.NoOpAuditPublisher{}
	}

	kafkaCfg := kafka.DefaultConfig(c.Config.Kafka.Brokers)
	producer, err := kafka.NewProducer(kafkaCfg)
	if err != nil {
		logging.Warn("failed to initialize kafka, using no-op audit publisher", map[string]interface{}{"error": err.Error()})
		return events.NoOpAuditPublisher{}
	}

	logging.Info("kafka audit publisher initialized", map[string]interface{}{"brokers": c.Config.Kafka.Brokers})
	return events.NewKafkaAuditPublisher(producer)
}

// Start runs the TCP server and the metrics HTTP surface, blocking until a
// shutdown signal arrives.
func (c *Container) Start() error {
	go func() {
		if err := c.Server.Start(); err != nil {
			logging.Error("line protocol server failed", err, nil)
		}
	}()

	go func() {
		if err := c.MetricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Error("metrics server failed", err, nil)
		}
	}()

	c.waitForShutdown()
	return nil
}

func (c *Container) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Info("shutting down", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Shutdown(ctx); err != nil {
		logging.Error("forced shutdown", err, nil)
	}

	logging.Info("shutdown complete", nil)
}

// Shutdown tears components down in reverse dependency order.
func (c *Container) Shutdown(ctx context.Context) error {
	c.Server.Stop()

	if err := c.MetricsServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("metrics server shutdown: %w", err)
	}

	if closer, ok := c.AuditPub.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logging.Error("failed to close audit publisher", err, nil)
		}
	}

	c.Store.Close()
	return nil
}
