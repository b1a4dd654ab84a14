package albevent_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/fortune-handler/internal/albevent"
	"github.com/angeloszaimis/fortune-handler/internal/fortune"
)

type recordingInvoker struct {
	got fortune.Request
	res fortune.Response
}

func (r *recordingInvoker) HandleWithLogger(ctx context.Context, log *slog.Logger, req fortune.Request) fortune.Response {
	r.got = req
	log.Info("invoked")
	return r.res
}

var _ = Describe("albevent", func() {
	var (
		invoker *recordingInvoker
		buf     *bytes.Buffer
		log     *slog.Logger
	)

	BeforeEach(func() {
		invoker = &recordingInvoker{
			res: fortune.Response{
				StatusCode: http.StatusOK,
				Body:       `{"fortune": "hi"}`,
				Headers:    map[string]string{"Content-Type": "application/json"},
			},
		}
		buf = &bytes.Buffer{}
		log = slog.New(slog.NewJSONHandler(buf, nil))
	})

	Describe("LambdaHandler", func() {
		var req events.ALBTargetGroupRequest

		BeforeEach(func() {
			req = events.ALBTargetGroupRequest{
				HTTPMethod:            http.MethodGet,
				Path:                  "/fortune",
				QueryStringParameters: map[string]string{"q": "1"},
				Headers:               map[string]string{"host": "alb.example.com"},
				RequestContext: events.ALBTargetGroupRequestContext{
					ELB: events.ELBContext{TargetGroupArn: "arn:test"},
				},
			}
		})

		It("should convert the event and the response", func() {
			res, err := albevent.LambdaHandler(invoker, log)(context.Background(), req)
			Expect(err).NotTo(HaveOccurred())

			Expect(invoker.got.HTTPMethod).To(Equal(http.MethodGet))
			Expect(invoker.got.Path).To(Equal("/fortune"))
			Expect(invoker.got.QueryStringParameters).To(HaveKeyWithValue("q", "1"))

			Expect(res.StatusCode).To(Equal(http.StatusOK))
			Expect(res.StatusDescription).To(Equal("200 OK"))
			Expect(res.Body).To(Equal(`{"fortune": "hi"}`))
			Expect(res.Headers).To(HaveKeyWithValue("Content-Type", "application/json"))
			Expect(res.IsBase64Encoded).To(BeFalse())
		})

		It("should tag logs with the Lambda request id", func() {
			ctx := lambdacontext.NewContext(context.Background(), &lambdacontext.LambdaContext{AwsRequestID: "req-123"})
			_, err := albevent.LambdaHandler(invoker, log)(ctx, req)
			Expect(err).NotTo(HaveOccurred())

			var entry map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &entry)).To(Succeed())
			Expect(entry["aws_request_id"]).To(Equal("req-123"))
		})

		It("should never return an error for a 503", func() {
			invoker.res.StatusCode = http.StatusServiceUnavailable
			res, err := albevent.LambdaHandler(invoker, log)(context.Background(), req)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.StatusDescription).To(Equal("503 Service Unavailable"))
		})
	})

	Describe("StatusDescription", func() {
		It("should fall back to the bare code", func() {
			Expect(albevent.StatusDescription(799)).To(Equal("799"))
		})
	})

	Describe("FromHTTPRequest", func() {
		It("should keep first values and lower-case header names", func() {
			r := httptest.NewRequest(http.MethodPost, "/fortune?a=1&a=2", strings.NewReader("hello"))
			r.Header.Add("X-Custom", "one")
			r.Header.Add("X-Custom", "two")

			req, err := albevent.FromHTTPRequest(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.HTTPMethod).To(Equal(http.MethodPost))
			Expect(req.Path).To(Equal("/fortune"))
			Expect(req.Headers).To(HaveKeyWithValue("x-custom", "one"))
			Expect(req.QueryStringParameters).To(HaveKeyWithValue("a", "1"))
			Expect(req.Body).To(Equal("hello"))
			Expect(req.IsBase64Encoded).To(BeFalse())
		})

		It("should base64 encode binary bodies", func() {
			r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte{0xff, 0xfe}))

			req, err := albevent.FromHTTPRequest(r)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.IsBase64Encoded).To(BeTrue())
			Expect(req.Body).To(Equal("//4="))
		})
	})

	Describe("HTTPHandler", func() {
		It("should write status, headers and body", func() {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/fortune", nil)
			r.Header.Set(albevent.RequestIDHeader, "abc")

			albevent.HTTPHandler(invoker, log).ServeHTTP(w, r)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
			body, _ := io.ReadAll(w.Body)
			Expect(string(body)).To(Equal(`{"fortune": "hi"}`))
			Expect(buf.String()).To(ContainSubstring(`"request_id":"abc"`))
		})

		It("should serve the real handler end to end", func() {
			upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"fortune": "Real."}`))
			}))
			defer upstream.Close()

			h := fortune.NewHandler(log, fortune.NewClient(upstream.URL, 0), "Prefix:")
			w := httptest.NewRecorder()
			albevent.HTTPHandler(h, log).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fortune", nil))

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal(`{"fortune": "Prefix: Real."}`))
		})
	})
})
