package albevent

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"github.com/angeloszaimis/fortune-handler/internal/fortune"
)

// RequestIDHeader carries the id the gateway assigns to each request.
const RequestIDHeader = "X-Request-Id"

const maxBodyBytes = 1 << 20

// Invoker is implemented by *fortune.Handler.
type Invoker interface {
	HandleWithLogger(ctx context.Context, log *slog.Logger, req fortune.Request) fortune.Response
}

// LambdaFunc is the signature handed to lambda.Start.
type LambdaFunc func(ctx context.Context, req events.ALBTargetGroupRequest) (events.ALBTargetGroupResponse, error)

// LambdaHandler wraps an Invoker for the Lambda runtime. The returned
// function never returns an error.
func LambdaHandler(h Invoker, log *slog.Logger) LambdaFunc {
	return func(ctx context.Context, req events.ALBTargetGroupRequest) (events.ALBTargetGroupResponse, error) {
		invocationLog := log
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			invocationLog = log.With(slog.String("aws_request_id", lc.AwsRequestID))
		}

		res := h.HandleWithLogger(ctx, invocationLog, FromTargetGroupRequest(req))
		return ToTargetGroupResponse(res), nil
	}
}

// FromTargetGroupRequest converts an ALB event into a handler request.
func FromTargetGroupRequest(req events.ALBTargetGroupRequest) fortune.Request {
	return fortune.Request{
		HTTPMethod:            req.HTTPMethod,
		Path:                  req.Path,
		QueryStringParameters: req.QueryStringParameters,
		Headers:               req.Headers,
		Body:                  req.Body,
		IsBase64Encoded:       req.IsBase64Encoded,
	}
}

// ToTargetGroupResponse converts a handler response into the shape the ALB
// expects from a Lambda target.
func ToTargetGroupResponse(res fortune.Response) events.ALBTargetGroupResponse {
	return events.ALBTargetGroupResponse{
		StatusCode:        res.StatusCode,
		StatusDescription: StatusDescription(res.StatusCode),
		Headers:           res.Headers,
		Body:              res.Body,
		IsBase64Encoded:   false,
	}
}

// StatusDescription renders a status line such as "503 Service Unavailable".
func StatusDescription(code int) string {
	text := http.StatusText(code)
	if text == "" {
		return fmt.Sprintf("%d", code)
	}
	return fmt.Sprintf("%d %s", code, text)
}

// FromHTTPRequest converts a net/http request. Header and query names keep
// their first value only and header names are lower-cased, as the ALB does
// when multi-value headers are disabled. Bodies that are not valid UTF-8 are
// base64 encoded.
func FromHTTPRequest(r *http.Request) (fortune.Request, error) {
	req := fortune.Request{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
	}

	if len(r.Header) > 0 {
		req.Headers = make(map[string]string, len(r.Header))
		for name, values := range r.Header {
			if len(values) > 0 {
				req.Headers[strings.ToLower(name)] = values[0]
			}
		}
	}

	if query := r.URL.Query(); len(query) > 0 {
		req.QueryStringParameters = make(map[string]string, len(query))
		for name, values := range query {
			if len(values) > 0 {
				req.QueryStringParameters[name] = values[0]
			}
		}
	}

	if r.Body == nil {
		return req, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return req, fmt.Errorf("reading request body: %w", err)
	}

	if utf8.Valid(body) {
		req.Body = string(body)
	} else {
		req.Body = base64.StdEncoding.EncodeToString(body)
		req.IsBase64Encoded = true
	}

	return req, nil
}

// WriteHTTP writes a handler response to w.
func WriteHTTP(w http.ResponseWriter, res fortune.Response) error {
	for name, value := range res.Headers {
		w.Header().Set(name, value)
	}
	w.WriteHeader(res.StatusCode)

	_, err := io.WriteString(w, res.Body)
	return err
}

// HTTPHandler serves an Invoker over net/http.
func HTTPHandler(h Invoker, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestLog := log
		if id := r.Header.Get(RequestIDHeader); id != "" {
			requestLog = log.With(slog.String("request_id", id))
		}

		req, err := FromHTTPRequest(r)
		if err != nil {
			// The handler never reads the request.
			requestLog.Warn("Failed to read request body", slog.Any("err", err))
		}

		res := h.HandleWithLogger(r.Context(), requestLog, req)
		if err := WriteHTTP(w, res); err != nil {
			requestLog.Debug("Failed to write response", slog.Any("err", err))
		}
	})
}
