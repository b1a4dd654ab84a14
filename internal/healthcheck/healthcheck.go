package healthcheck

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/angeloszaimis/fortune-handler/internal/target"
)

const DefaultPath = "/health"

type Settings struct {
	Path               string
	Interval           time.Duration
	Timeout            time.Duration
	HealthyThreshold   int
	UnhealthyThreshold int
}

// ChangeFunc is called whenever a target changes health state.
type ChangeFunc func(t *target.Target, healthy bool)

type Checker struct {
	settings Settings
	client   *http.Client
	logger   *slog.Logger
	onChange ChangeFunc
}

func New(settings Settings, logger *slog.Logger, onChange ChangeFunc) *Checker {
	if settings.Path == "" {
		settings.Path = DefaultPath
	}
	if settings.Interval <= 0 {
		settings.Interval = 30 * time.Second
	}
	if settings.Timeout <= 0 {
		settings.Timeout = 5 * time.Second
	}
	if settings.HealthyThreshold < 1 {
		settings.HealthyThreshold = 1
	}
	if settings.UnhealthyThreshold < 1 {
		settings.UnhealthyThreshold = 1
	}

	return &Checker{
		settings: settings,
		client:   &http.Client{Timeout: settings.Timeout},
		logger:   logger,
		onChange: onChange,
	}
}

// Probe sends one health request and reports whether the target answered 200.
func (c *Checker) Probe(ctx context.Context, t *target.Target) bool {
	healthURL := t.URL().ResolveReference(&url.URL{Path: c.settings.Path})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL.String(), nil)
	if err != nil {
		return false
	}

	res, err := c.client.Do(req)
	if err != nil {
		return false
	}
	_, _ = io.Copy(io.Discard, res.Body)
	res.Body.Close()

	return res.StatusCode == http.StatusOK
}

// Run checks every target until ctx is cancelled. Each target is probed once
// immediately and then on every interval.
func (c *Checker) Run(ctx context.Context, targets []*target.Target) {
	var wg sync.WaitGroup
	for _, t := range targets {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.watch(ctx, t)
		}()
	}
	wg.Wait()
}

func (c *Checker) watch(ctx context.Context, t *target.Target) {
	ticker := time.NewTicker(c.settings.Interval)
	defer ticker.Stop()

	var successes, failures int

	for {
		if c.Probe(ctx, t) {
			successes++
			failures = 0
			if successes >= c.settings.HealthyThreshold {
				c.record(t, true)
			}
		} else if ctx.Err() == nil {
			failures++
			successes = 0
			if failures >= c.settings.UnhealthyThreshold {
				c.record(t, false)
			}
		}

		select {
		case <-ctx.Done():
			c.logger.Info("Health check stopped", slog.String("target", t.ID()))
			return
		case <-ticker.C:
		}
	}
}

func (c *Checker) record(t *target.Target, healthy bool) {
	if !t.SetHealthy(healthy) {
		return
	}

	if healthy {
		c.logger.Info("Target is healthy", slog.String("target", t.ID()))
	} else {
		c.logger.Warn("Target is unhealthy", slog.String("target", t.ID()))
	}

	if c.onChange != nil {
		c.onChange(t, healthy)
	}
}
