package fortune_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/fortune-handler/internal/fortune"
)

var _ = Describe("Client", func() {
	var (
		upstream *httptest.Server
		status   int
		body     string
		delay    time.Duration
		hits     atomic.Int32
	)

	BeforeEach(func() {
		status = http.StatusOK
		body = `{"fortune": "Computers are useless."}`
		delay = 0
		hits.Store(0)

		upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			if delay > 0 {
				time.Sleep(delay)
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			w.Write([]byte(body))
		}))
	})

	AfterEach(func() {
		upstream.Close()
	})

	expectUpstreamError := func(err error, op string) {
		var upstreamErr *fortune.UpstreamError
		Expect(errors.As(err, &upstreamErr)).To(BeTrue())
		Expect(upstreamErr.Op).To(Equal(op))
		Expect(upstreamErr.Stack).NotTo(BeEmpty())
	}

	Describe("NewClient", func() {
		It("should default to the yerkee fortune endpoint", func() {
			Expect(fortune.NewClient("", 0).Endpoint()).To(Equal(fortune.DefaultEndpoint))
		})
	})

	Describe("Fetch", func() {
		It("should decode the fortune", func() {
			res, err := fortune.NewClient(upstream.URL, time.Second).Fetch(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Fortune).To(Equal("Computers are useless."))
			Expect(hits.Load()).To(Equal(int32(1)))
		})

		It("should ignore extra fields", func() {
			body = `{"fortune": "ok", "category": "computers"}`
			res, err := fortune.NewClient(upstream.URL, 0).Fetch(context.Background())
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Fortune).To(Equal("ok"))
		})

		It("should fail on a non-2xx status without retrying", func() {
			status = http.StatusInternalServerError
			_, err := fortune.NewClient(upstream.URL, 0).Fetch(context.Background())
			expectUpstreamError(err, "status")
			Expect(hits.Load()).To(Equal(int32(1)))
		})

		It("should fail on a non-JSON body", func() {
			body = "<html>moved</html>"
			_, err := fortune.NewClient(upstream.URL, 0).Fetch(context.Background())
			expectUpstreamError(err, "decode")
		})

		It("should fail when the fortune field is missing", func() {
			body = `{"quote": "nope"}`
			_, err := fortune.NewClient(upstream.URL, 0).Fetch(context.Background())
			expectUpstreamError(err, "decode")
		})

		It("should fail when the API is unreachable", func() {
			url := upstream.URL
			upstream.Close()

			_, err := fortune.NewClient(url, time.Second).Fetch(context.Background())
			expectUpstreamError(err, "request")
		})

		It("should fail on client timeout", func() {
			delay = 200 * time.Millisecond
			_, err := fortune.NewClient(upstream.URL, 20*time.Millisecond).Fetch(context.Background())
			expectUpstreamError(err, "request")
		})

		It("should honour the invocation deadline", func() {
			delay = 200 * time.Millisecond
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
			defer cancel()

			_, err := fortune.NewClient(upstream.URL, 0).Fetch(ctx)
			expectUpstreamError(err, "request")
			Expect(errors.Is(err, context.DeadlineExceeded)).To(BeTrue())
		})

		It("should fail on an invalid endpoint", func() {
			_, err := fortune.NewClient("://bad", 0).Fetch(context.Background())
			expectUpstreamError(err, "build request")
		})
	})

	Describe("with the handler", func() {
		It("should map an unreachable API to 503", func() {
			url := upstream.URL
			upstream.Close()

			h := fortune.NewHandler(nil, fortune.NewClient(url, time.Second), "Prefix:")
			res := h.Handle(context.Background(), fortune.Request{})
			Expect(res.StatusCode).To(Equal(http.StatusServiceUnavailable))
		})

		It("should prefix a live fortune", func() {
			h := fortune.NewHandler(nil, fortune.NewClient(upstream.URL, time.Second), " Prefix: ")
			res := h.Handle(context.Background(), fortune.Request{})
			Expect(res.StatusCode).To(Equal(http.StatusOK))
			Expect(res.Body).To(Equal(`{"fortune": "Prefix: Computers are useless."}`))
		})
	})
})
