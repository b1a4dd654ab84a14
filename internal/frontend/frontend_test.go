package frontend_test

import (
	"log/slog"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/fortune-handler/internal/frontend"
)

var _ = Describe("Handler", func() {
	var h http.Handler

	BeforeEach(func() {
		h = frontend.Handler(slog.New(slog.DiscardHandler))
	})

	serve := func(method, path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(method, path, nil))
		return w
	}

	It("should serve the index page", func() {
		w := serve(http.MethodGet, "/")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Header().Get("Content-Type")).To(ContainSubstring("text/html"))
		Expect(w.Body.String()).To(ContainSubstring(`fetch("/fortune")`))
		Expect(w.Header().Get(frontend.HostHeader)).NotTo(BeEmpty())
	})

	It("should answer health checks", func() {
		w := serve(http.MethodGet, "/health")
		Expect(w.Code).To(Equal(http.StatusOK))
		Expect(w.Body.String()).To(Equal("ok"))
	})

	It("should 404 unknown files", func() {
		Expect(serve(http.MethodGet, "/missing.css").Code).To(Equal(http.StatusNotFound))
	})

	It("should reject non-GET methods", func() {
		Expect(serve(http.MethodPost, "/").Code).To(Equal(http.StatusMethodNotAllowed))
	})
})
