package listener

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/angeloszaimis/fortune-handler/internal/metrics"
	"github.com/angeloszaimis/fortune-handler/internal/target"
	"github.com/angeloszaimis/fortune-handler/internal/targetgroup"
)

// Invoke returns an action that runs h in-process, standing in for a Lambda
// target registered under name.
func Invoke(name string, h http.Handler, collector *metrics.Collector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		h.ServeHTTP(recorder, r)

		collector.Emit(metrics.Event{
			Type:       metrics.EventResponseCompleted,
			Target:     name,
			Duration:   time.Since(start),
			StatusCode: recorder.statusCode,
		})
	})
}

// Forward returns an action that proxies to a target reserved from group.
// Responses with a 5xx status and aborted responses count as target failures.
func Forward(group *targetgroup.Group, logger *slog.Logger, collector *metrics.Collector) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t, err := group.Reserve()
		if err != nil {
			logger.Warn("No healthy targets available",
				slog.String("target_group", group.Name()),
				slog.Any("err", err))
			writeError(w, http.StatusServiceUnavailable, unavailableMessage(err))
			return
		}

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		w.Header().Set(target.ServedByHeader, t.ID())

		// The reservation is released even when the proxy aborts a response
		// mid-body with http.ErrAbortHandler; the panic is then re-raised.
		defer func() {
			aborted := recover()
			t.Release(aborted == nil && recorder.statusCode < http.StatusInternalServerError)

			collector.Emit(metrics.Event{
				Type:       metrics.EventResponseCompleted,
				Target:     t.ID(),
				Duration:   time.Since(start),
				StatusCode: recorder.statusCode,
			})

			if aborted != nil {
				logger.Warn("Target response aborted",
					slog.String("target", t.ID()),
					slog.String("path", r.URL.Path),
					slog.Any("err", aborted))
				panic(aborted)
			}
		}()

		t.Proxy().ServeHTTP(recorder, r)
	})
}

func unavailableMessage(err error) string {
	if errors.Is(err, targetgroup.ErrNoHealthyTargets) {
		return "No healthy targets available"
	}
	return err.Error()
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.statusCode = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
