// Package albevent adapts the fortune handler to its two hosts: the Lambda
// runtime, which delivers ALB target-group events, and net/http, used by the
// local gateway and the invoke command.
package albevent
