// Package loadgen drives concurrent GET requests at a gateway and reports how
// responses were distributed across targets.
package loadgen

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/angeloszaimis/fortune-handler/internal/target"
)

// HandlerSource labels responses that carry no target header, i.e. ones the
// gateway answered with the in-process fortune handler.
const HandlerSource = "handler"

type Options struct {
	URL         string
	Requests    int
	Concurrency int
	Timeout     time.Duration
	Client      *http.Client
}

func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.URL, validation.Required, is.URL),
		validation.Field(&o.Requests, validation.Required, validation.Min(1)),
		validation.Field(&o.Concurrency, validation.Required, validation.Min(1)),
		validation.Field(&o.Timeout, validation.Min(time.Duration(0))),
	)
}

// Latency holds percentiles over a set of samples.
type Latency struct {
	P50 time.Duration `json:"p50"`
	P95 time.Duration `json:"p95"`
	P99 time.Duration `json:"p99"`
}

type SourceReport struct {
	Count   int     `json:"count"`
	Success int     `json:"success"`
	Failure int     `json:"failure"`
	Latency Latency `json:"latency"`

	samples []time.Duration
}

type Report struct {
	Total       int                      `json:"total"`
	Success     int                      `json:"success"`
	Failure     int                      `json:"failure"`
	Errors      int                      `json:"errors"`
	Elapsed     time.Duration            `json:"elapsed"`
	Throughput  float64                  `json:"throughput_rps"`
	StatusCodes map[int]int              `json:"status_codes"`
	Sources     map[string]*SourceReport `json:"sources"`
	Latency     Latency                  `json:"latency"`
}

type outcome struct {
	source   string
	status   int
	duration time.Duration
	err      error
}

// Run sends opts.Requests GETs with opts.Concurrency workers. It stops early
// when ctx is cancelled and reports what completed.
func Run(ctx context.Context, opts Options) (Report, error) {
	if err := opts.Validate(); err != nil {
		return Report{}, fmt.Errorf("invalid load test options: %w", err)
	}

	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	jobs := make(chan struct{})
	results := make(chan outcome)

	var wg sync.WaitGroup
	for i := 0; i < opts.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				results <- send(ctx, client, opts.URL)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < opts.Requests; i++ {
			select {
			case jobs <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	start := time.Now()
	report := Report{
		StatusCodes: make(map[int]int),
		Sources:     make(map[string]*SourceReport),
	}
	var all []time.Duration

	for res := range results {
		report.Total++
		all = append(all, res.duration)

		if res.err != nil {
			report.Errors++
			report.Failure++
			continue
		}

		report.StatusCodes[res.status]++
		src, ok := report.Sources[res.source]
		if !ok {
			src = &SourceReport{}
			report.Sources[res.source] = src
		}
		src.Count++
		src.samples = append(src.samples, res.duration)

		if res.status >= 200 && res.status <= 299 {
			report.Success++
			src.Success++
		} else {
			report.Failure++
			src.Failure++
		}
	}

	report.Elapsed = time.Since(start)
	if secs := report.Elapsed.Seconds(); secs > 0 {
		report.Throughput = float64(report.Total) / secs
	}
	report.Latency = percentiles(all)
	for _, src := range report.Sources {
		src.Latency = percentiles(src.samples)
	}

	return report, nil
}

func send(ctx context.Context, client *http.Client, url string) outcome {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return outcome{err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return outcome{err: err, duration: time.Since(start)}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	source := resp.Header.Get(target.ServedByHeader)
	if source == "" {
		source = HandlerSource
	}

	return outcome{
		source:   source,
		status:   resp.StatusCode,
		duration: time.Since(start),
	}
}

func percentiles(samples []time.Duration) Latency {
	if len(samples) == 0 {
		return Latency{}
	}

	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	at := func(p float64) time.Duration {
		idx := int(float64(len(sorted)-1) * p)
		return sorted[idx]
	}

	return Latency{P50: at(0.50), P95: at(0.95), P99: at(0.99)}
}
