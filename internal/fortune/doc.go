// Package fortune implements the fortune request handler: one call to the
// third-party fortune API, an optional operator prefix, and an HTTP-shaped
// JSON response. Upstream failures never escape the handler; they are logged
// and mapped to a 503 response.
package fortune
