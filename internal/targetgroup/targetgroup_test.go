package targetgroup_test

import (
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/fortune-handler/internal/strategy"
	"github.com/angeloszaimis/fortune-handler/internal/target"
	"github.com/angeloszaimis/fortune-handler/internal/targetgroup"
)

var _ = Describe("Group", func() {
	var (
		targets []*target.Target
		group   *targetgroup.Group
	)

	BeforeEach(func() {
		settings := target.BreakerSettings{Threshold: 1, Cooldown: time.Hour}
		targets = []*target.Target{
			target.New(mustParseURL("http://localhost:8081"), settings),
			target.New(mustParseURL("http://localhost:8082"), settings),
		}
		strat, err := strategy.New(strategy.RoundRobin)
		Expect(err).NotTo(HaveOccurred())
		group = targetgroup.New("web-fleet", strat, targets)
	})

	It("should expose its name and targets", func() {
		Expect(group.Name()).To(Equal("web-fleet"))
		Expect(group.Targets()).To(HaveLen(2))
	})

	It("should reserve targets in strategy order", func() {
		first, err := group.Reserve()
		Expect(err).NotTo(HaveOccurred())
		Expect(first).To(BeIdenticalTo(targets[0]))
		Expect(first.Outstanding()).To(Equal(1))

		second, err := group.Reserve()
		Expect(err).NotTo(HaveOccurred())
		Expect(second).To(BeIdenticalTo(targets[1]))
	})

	It("should skip unhealthy targets", func() {
		targets[0].SetHealthy(false)
		for i := 0; i < 3; i++ {
			t, err := group.Reserve()
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(BeIdenticalTo(targets[1]))
			t.Release(true)
		}
	})

	It("should skip targets with an open breaker", func() {
		targets[1].Reserve()
		targets[1].Release(false)

		for i := 0; i < 3; i++ {
			t, err := group.Reserve()
			Expect(err).NotTo(HaveOccurred())
			Expect(t).To(BeIdenticalTo(targets[0]))
			t.Release(true)
		}
	})

	It("should fail when nothing is available", func() {
		targets[0].SetHealthy(false)
		targets[1].SetHealthy(false)

		t, err := group.Reserve()
		Expect(err).To(MatchError(targetgroup.ErrNoHealthyTargets))
		Expect(t).To(BeNil())
	})

	It("should fail with no targets registered", func() {
		strat, _ := strategy.New(strategy.Random)
		_, err := targetgroup.New("empty", strat, nil).Reserve()
		Expect(err).To(MatchError(targetgroup.ErrNoHealthyTargets))
	})

	It("should be safe for concurrent use", func() {
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				t, err := group.Reserve()
				if err == nil {
					t.Release(true)
				}
			}()
		}
		wg.Wait()

		Expect(targets[0].Outstanding()).To(Equal(0))
		Expect(targets[1].Outstanding()).To(Equal(0))
	})
})
