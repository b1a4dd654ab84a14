// Package targetgroup selects and reserves web-fleet targets for the
// gateway's default action.
package targetgroup

import (
	"errors"
	"sync"

	"github.com/angeloszaimis/fortune-handler/internal/strategy"
	"github.com/angeloszaimis/fortune-handler/internal/target"
)

var ErrNoHealthyTargets = errors.New("no healthy targets")

type Group struct {
	name     string
	strategy strategy.Strategy
	targets  []*target.Target
	mutex    sync.Mutex
}

func New(name string, strat strategy.Strategy, targets []*target.Target) *Group {
	return &Group{
		name:     name,
		strategy: strat,
		targets:  targets,
	}
}

func (g *Group) Name() string {
	return g.name
}

// Targets returns the registered targets, healthy or not.
func (g *Group) Targets() []*target.Target {
	return g.targets
}

// Reserve picks an available target and counts a request against it. The
// caller must Release the target.
func (g *Group) Reserve() (*target.Target, error) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	available := make([]*target.Target, 0, len(g.targets))
	for _, t := range g.targets {
		if t.Available() {
			available = append(available, t)
		}
	}

	if len(available) == 0 {
		return nil, ErrNoHealthyTargets
	}

	chosen := g.strategy.Select(available)
	if chosen == nil {
		return nil, ErrNoHealthyTargets
	}

	chosen.Reserve()
	return chosen, nil
}
