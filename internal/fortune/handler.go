package fortune

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Handler turns an inbound request into a fortune response.
type Handler struct {
	logger   *slog.Logger
	fetcher  Fetcher
	prefix   string
	prefixed bool
}

// NewHandler builds a Handler. Any non-empty prefix enables prefixing, even
// one that is empty after trimming.
func NewHandler(logger *slog.Logger, fetcher Fetcher, prefix string) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Handler{
		logger:   logger,
		fetcher:  fetcher,
		prefix:   strings.TrimSpace(prefix),
		prefixed: prefix != "",
	}
}

// Handle calls the fortune API once and formats the result. It never returns
// an error: upstream failures become a 503 response.
func (h *Handler) Handle(ctx context.Context, req Request) Response {
	return h.HandleWithLogger(ctx, h.logger, req)
}

// HandleWithLogger is Handle with a per-invocation logger, used by adapters
// that tag entries with a request id.
func (h *Handler) HandleWithLogger(ctx context.Context, log *slog.Logger, _ Request) Response {
	if log == nil {
		log = h.logger
	}

	result, err := h.fetch(ctx)
	if err != nil {
		logUpstreamError(ctx, log, err)
		return unavailableResponse()
	}

	log.InfoContext(ctx, "Received fortune payload", slog.String("fortune", result.Fortune))

	message := h.Format(result.Fortune)

	log.InfoContext(ctx, fmt.Sprintf("Sending back the fortune %q", message))

	return fortuneResponse(message)
}

// Prefix returns the trimmed prefix and whether prefixing is enabled.
func (h *Handler) Prefix() (string, bool) {
	return h.prefix, h.prefixed
}

// Format applies the configured prefix to a fortune.
func (h *Handler) Format(fortune string) string {
	if !h.prefixed {
		return fortune
	}
	return h.prefix + " " + fortune
}

func (h *Handler) fetch(ctx context.Context) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = newUpstreamError("fetch", fmt.Errorf("panic: %v", r))
		}
	}()

	result, err = h.fetcher.Fetch(ctx)
	if err != nil {
		var upstreamErr *UpstreamError
		if !errors.As(err, &upstreamErr) {
			err = newUpstreamError("fetch", err)
		}
	}

	return result, err
}

func logUpstreamError(ctx context.Context, log *slog.Logger, err error) {
	var upstreamErr *UpstreamError
	if !errors.As(err, &upstreamErr) {
		upstreamErr = newUpstreamError("fetch", err)
	}

	log.ErrorContext(ctx, "Fortune API request failed",
		slog.String("errorType", upstreamErr.TypeName()),
		slog.String("errorMessage", upstreamErr.Error()),
		slog.String("stackTrace", string(upstreamErr.Stack)),
	)
}
