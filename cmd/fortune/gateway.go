package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/angeloszaimis/fortune-handler/config"
	"github.com/angeloszaimis/fortune-handler/internal/albevent"
	"github.com/angeloszaimis/fortune-handler/internal/healthcheck"
	"github.com/angeloszaimis/fortune-handler/internal/listener"
	"github.com/angeloszaimis/fortune-handler/internal/metrics"
	"github.com/angeloszaimis/fortune-handler/internal/strategy"
	"github.com/angeloszaimis/fortune-handler/internal/target"
	"github.com/angeloszaimis/fortune-handler/internal/targetgroup"
)

const (
	fortuneRuleName   = "fortune"
	fortuneTargetName = "fortune-lambda"
	webTargetGroup    = "web-fleet"
	metricsBufferSize = 1000
)

// gateway is the local stand-in for the ALB: a listener with the fortune
// rule, an optional web-fleet target group and the metrics collector.
type gateway struct {
	router    *http.ServeMux
	targets   []*target.Target
	checker   *healthcheck.Checker
	collector *metrics.Collector
}

func buildGateway(cfg *config.Config, log *slog.Logger) (*gateway, error) {
	collector := metrics.NewCollector(metricsBufferSize, log)

	targets, err := initializeTargets(cfg, log)
	if err != nil {
		return nil, err
	}

	fortuneAction := listener.Invoke(fortuneTargetName,
		albevent.HTTPHandler(newFortuneHandler(cfg, log), log), collector)

	defaultAction := fortuneAction
	if len(targets) > 0 {
		strat, err := strategy.New(cfg.Strategy.Type)
		if err != nil {
			return nil, fmt.Errorf("creating strategy: %w", err)
		}
		group := targetgroup.New(webTargetGroup, strat, targets)
		defaultAction = listener.Forward(group, log, collector)
	}

	l, err := listener.New(log, collector, defaultAction, listener.Rule{
		Name:        fortuneRuleName,
		Priority:    1,
		PathPattern: cfg.Gateway.FortunePath,
		Action:      fortuneAction,
	})
	if err != nil {
		return nil, fmt.Errorf("creating listener: %w", err)
	}

	checker := healthcheck.New(healthcheck.Settings{
		Path:               cfg.HealthCheck.Path,
		Interval:           config.Duration(cfg.HealthCheck.Interval),
		Timeout:            config.Duration(cfg.HealthCheck.Timeout),
		HealthyThreshold:   cfg.HealthCheck.HealthyThreshold,
		UnhealthyThreshold: cfg.HealthCheck.UnhealthyThreshold,
	}, log, func(t *target.Target, healthy bool) {
		collector.Emit(metrics.Event{
			Type:    metrics.EventHealthChanged,
			Target:  t.ID(),
			Healthy: healthy,
		})
	})

	return &gateway{
		router:    setupRouter(l, collector, cfg.Gateway.MetricsPath, cfg.Strategy.Type),
		targets:   targets,
		checker:   checker,
		collector: collector,
	}, nil
}

func initializeTargets(cfg *config.Config, log *slog.Logger) ([]*target.Target, error) {
	settings := target.BreakerSettings{
		Threshold: cfg.CircuitBreaker.Threshold,
		Cooldown:  config.Duration(cfg.CircuitBreaker.Cooldown),
	}

	var targets []*target.Target
	for _, raw := range cfg.Gateway.Targets {
		u, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parsing target %q: %w", raw, err)
		}
		targets = append(targets, target.New(u, settings, target.WithLogger(log)))
	}

	return targets, nil
}
