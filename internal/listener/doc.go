// Package listener reproduces the ALB listener in front of the fortune
// handler. Rules are evaluated by priority against the request path; the
// first match runs its action, otherwise the default action runs. Actions
// either invoke the handler in-process (the Lambda target) or forward to a
// web-fleet target group.
package listener
