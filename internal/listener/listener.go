package listener

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/angeloszaimis/fortune-handler/internal/albevent"
	"github.com/angeloszaimis/fortune-handler/internal/metrics"
)

// DefaultRuleName labels requests served by the default action in metrics.
const DefaultRuleName = "default"

type Rule struct {
	Name        string
	Priority    int
	PathPattern string
	Action      http.Handler
}

type Listener struct {
	logger        *slog.Logger
	rules         []Rule
	defaultAction http.Handler
	collector     *metrics.Collector
}

// New builds a Listener. Rule priorities must be unique and positive.
func New(logger *slog.Logger, collector *metrics.Collector, defaultAction http.Handler, rules ...Rule) (*Listener, error) {
	if defaultAction == nil {
		return nil, fmt.Errorf("listener requires a default action")
	}

	sorted := slices.Clone(rules)
	slices.SortFunc(sorted, func(a, b Rule) int { return a.Priority - b.Priority })

	for i, rule := range sorted {
		if rule.Priority < 1 {
			return nil, fmt.Errorf("rule %q: priority must be at least 1", rule.Name)
		}
		if i > 0 && sorted[i-1].Priority == rule.Priority {
			return nil, fmt.Errorf("rule %q: priority %d already used by %q", rule.Name, rule.Priority, sorted[i-1].Name)
		}
		if rule.PathPattern == "" || rule.Action == nil {
			return nil, fmt.Errorf("rule %q: path pattern and action are required", rule.Name)
		}
	}

	return &Listener{
		logger:        logger,
		rules:         sorted,
		defaultAction: defaultAction,
		collector:     collector,
	}, nil
}

// Match returns the name and action for path.
func (l *Listener) Match(path string) (string, http.Handler) {
	for _, rule := range l.rules {
		if matchPath(rule.PathPattern, path) {
			return rule.Name, rule.Action
		}
	}
	return DefaultRuleName, l.defaultAction
}

func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get(albevent.RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		r.Header.Set(albevent.RequestIDHeader, requestID)
	}
	w.Header().Set(albevent.RequestIDHeader, requestID)

	rule, action := l.Match(r.URL.Path)

	l.logger.Info("Received request",
		slog.String("request_id", requestID),
		slog.String("rule", rule),
		slog.String("from", clientIP(r)),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("user_agent", r.UserAgent()))

	l.collector.Emit(metrics.Event{Type: metrics.EventRequestRouted, Rule: rule})

	action.ServeHTTP(w, r)
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
