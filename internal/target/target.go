package target

import (
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"
)

// ServedByHeader names the target that produced a proxied response.
const ServedByHeader = "X-Served-By-Target"

// Target is a web-fleet member registered in a target group.
type Target struct {
	url     *url.URL
	proxy   *httputil.ReverseProxy
	breaker *breaker

	mutex       sync.Mutex
	healthy     bool
	outstanding int
}

// Option customises a Target.
type Option func(*Target)

// WithClock replaces the breaker clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(t *Target) {
		t.breaker.now = now
	}
}

// WithLogger logs proxy transport errors.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Target) {
		t.proxy.ErrorHandler = proxyErrorHandler(t.url.String(), logger)
	}
}

// New creates a Target for u. Targets start healthy so the gateway can serve
// before the first health check completes.
func New(u *url.URL, settings BreakerSettings, opts ...Option) *Target {
	t := &Target{
		url:     u,
		proxy:   httputil.NewSingleHostReverseProxy(u),
		breaker: newBreaker(settings, nil),
		healthy: true,
	}
	t.proxy.ErrorHandler = proxyErrorHandler(u.String(), nil)

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// ID is the target's URL string.
func (t *Target) ID() string {
	return t.url.String()
}

// URL returns the target URL.
func (t *Target) URL() *url.URL {
	return t.url
}

// Proxy returns the reverse proxy for this target.
func (t *Target) Proxy() http.Handler {
	return t.proxy
}

// IsHealthy returns the last health check verdict.
func (t *Target) IsHealthy() bool {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.healthy
}

// SetHealthy records a health verdict and reports whether it changed.
func (t *Target) SetHealthy(healthy bool) (changed bool) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.healthy == healthy {
		return false
	}

	t.healthy = healthy
	return true
}

// Available reports whether the target may receive a request now.
func (t *Target) Available() bool {
	return t.IsHealthy() && t.breaker.ready()
}

// Reserve counts a request against the target.
func (t *Target) Reserve() {
	t.breaker.begin()

	t.mutex.Lock()
	t.outstanding++
	t.mutex.Unlock()
}

// Release ends a reserved request and feeds its outcome to the breaker.
func (t *Target) Release(ok bool) {
	t.mutex.Lock()
	if t.outstanding > 0 {
		t.outstanding--
	}
	t.mutex.Unlock()

	if ok {
		t.breaker.success()
	} else {
		t.breaker.failure()
	}
}

// Outstanding returns the number of in-flight requests.
func (t *Target) Outstanding() int {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	return t.outstanding
}

// BreakerState returns the breaker's current state.
func (t *Target) BreakerState() BreakerState {
	return t.breaker.current()
}

func proxyErrorHandler(id string, logger *slog.Logger) func(http.ResponseWriter, *http.Request, error) {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		if logger != nil {
			logger.Warn("Target request failed",
				slog.String("target", id),
				slog.String("path", r.URL.Path),
				slog.Any("err", err))
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(ServedByHeader, id)
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error": "target unreachable"}`))
	}
}
