package strategy

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sync/atomic"

	"github.com/angeloszaimis/fortune-handler/internal/target"
)

const (
	RoundRobin               = "round_robin"
	LeastOutstandingRequests = "least_outstanding_requests"
	Random                   = "random"
)

// Names lists the supported algorithms.
var Names = []string{RoundRobin, LeastOutstandingRequests, Random}

type Strategy interface {
	Select(targets []*target.Target) *target.Target
}

// New returns the strategy registered under name.
func New(name string) (Strategy, error) {
	switch name {
	case RoundRobin:
		return &roundRobin{}, nil
	case LeastOutstandingRequests:
		return &leastOutstanding{}, nil
	case Random:
		return &random{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}

type roundRobin struct {
	next atomic.Uint64
}

func (s *roundRobin) Select(targets []*target.Target) *target.Target {
	if len(targets) == 0 {
		return nil
	}

	n := s.next.Add(1)
	return targets[(n-1)%uint64(len(targets))]
}

type leastOutstanding struct{}

// Select picks the first target with the fewest outstanding requests.
func (s *leastOutstanding) Select(targets []*target.Target) *target.Target {
	var best *target.Target
	fewest := math.MaxInt

	for _, t := range targets {
		if n := t.Outstanding(); n < fewest {
			fewest = n
			best = t
		}
	}

	return best
}

type random struct{}

func (s *random) Select(targets []*target.Target) *target.Target {
	if len(targets) == 0 {
		return nil
	}
	return targets[rand.IntN(len(targets))]
}
