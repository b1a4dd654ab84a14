package main

import (
	"net/http"

	"github.com/angeloszaimis/fortune-handler/internal/listener"
	"github.com/angeloszaimis/fortune-handler/internal/metrics"
)

func setupRouter(l *listener.Listener, collector *metrics.Collector, metricsPath, strategy string) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/", l)
	mux.HandleFunc("GET "+metricsPath, collector.Handler(strategy))

	return mux
}
