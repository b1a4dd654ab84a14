// Package strategy implements the target selection algorithms of the
// gateway's target group, named after their ALB counterparts:
//
//   - round_robin: targets in turn
//   - least_outstanding_requests: the target with the fewest in-flight requests
//   - random: uniform random choice
//
// Callers pass only targets that are available.
package strategy
