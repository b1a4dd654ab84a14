// Package target models one member of the web fleet behind the gateway: its
// reverse proxy, health flag, outstanding request count and a failure
// breaker that takes it out of rotation after repeated errors.
//
// Breaker states:
//
//   - CLOSED: requests flow normally
//   - OPEN: the target failed threshold times in a row and is skipped
//   - HALF-OPEN: the cooldown elapsed and a single probe request is allowed
package target
