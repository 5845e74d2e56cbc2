package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apiplan "github.com/kereval/fieldops/api/plan"
	"github.com/kereval/fieldops/config"
	coremetrics "github.com/kereval/fieldops/core/metrics"
	"github.com/kereval/fieldops/core/model"
	"github.com/kereval/fieldops/core/optimizer"
	"github.com/kereval/fieldops/core/plan"
	"github.com/kereval/fieldops/core/store"
	"github.com/kereval/fieldops/infra/logger"
	"github.com/kereval/fieldops/infra/metrics"
	"github.com/kereval/fieldops/internal/eventbus"
)

// Service wires the schedule store, planner, optimizer gateway and HTTP API.
type Service struct {
	Store   *store.ScheduleStore
	Planner plan.Planner
	Gateway *optimizer.Gateway

	bus  *eventbus.Bus[store.AssignmentCommitted]
	cfg  *config.Config
	log  logger.Logger
	sink coremetrics.MetricsSink
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	logger.SetGlobalLevel(cfg.Logging.Level)

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink()
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New[store.AssignmentCommitted]()
	st := store.New(bus, logger.New("store"), sink)
	planner := &timedPlanner{
		inner: plan.NewGreedyPlanner(cfg.Planner, logger.New("planner")),
		sink:  sink,
		log:   logg,
	}

	var gw *optimizer.Gateway
	if cfg.Optimizer.Enabled {
		client := optimizer.NewHTTPClient(cfg.Optimizer, logger.New("optimizer-client"))
		gw = optimizer.NewGateway(client, cfg.Optimizer, cfg.Planner, logger.New("optimizer"), sink)
	}

	return &Service{Store: st, Planner: planner, Gateway: gw, bus: bus, cfg: cfg, log: logg, sink: sink}, nil
}

// Run starts the HTTP API (and metrics server when enabled) and blocks until
// the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	mux := http.NewServeMux()
	mux.Handle("/api/plan", apiplan.NewPlanHandler(s.Store, s.Planner, s.Gateway, s.log))
	mux.Handle("/api/commit", apiplan.NewCommitHandler(s.Store, s.log))
	mux.Handle("/api/schedule", apiplan.NewScheduleHandler(s.Store, s.log))

	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.log.Errorf("api shutdown: %v", err)
		}
		cancel()
	}()
	s.log.Infof("api listening on %s", s.cfg.API.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	return nil
}

// timedPlanner wraps the greedy planner to record planning metrics.
type timedPlanner struct {
	inner plan.Planner
	sink  coremetrics.MetricsSink
	log   logger.Logger
}

func (p *timedPlanner) Plan(snap model.Snapshot) plan.Plan {
	start := time.Now()
	result := p.inner.Plan(snap)
	if err := p.sink.RecordPlan(coremetrics.PlanEvent{
		Assigned:   len(result.Assignments),
		Unassigned: len(result.UnassignedTaskIDs),
		Duration:   time.Since(start),
		Time:       start,
	}); err != nil {
		p.log.Errorf("metrics error: %v", err)
	}
	return result
}
