// Package healthcheck probes web-fleet targets the way an ALB target group
// does: a GET to a health path on an interval, with consecutive success and
// failure thresholds before a target changes state.
package healthcheck
