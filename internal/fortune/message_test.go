package fortune_test

import (
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/fortune-handler/internal/fortune"
)

var _ = Describe("Response body encoding", func() {
	DescribeTable("escaping",
		func(text, want string) {
			fetcher := &stubFetcher{result: fortune.Result{Fortune: text}}
			h := fortune.NewHandler(slog.New(slog.DiscardHandler), fetcher, "")
			res := h.Handle(context.Background(), fortune.Request{})

			Expect(res.Body).To(Equal(want))

			var data map[string]string
			Expect(json.Unmarshal([]byte(res.Body), &data)).To(Succeed())
			Expect(data["fortune"]).To(Equal(text))
		},
		Entry("quotes and backslashes", `say "hi" \o/`, `{"fortune": "say \"hi\" \\o/"}`),
		Entry("control characters", "line1\nline2\ttab\x01", `{"fortune": "line1\nline2\ttab\u0001"}`),
		Entry("DEL is escaped", "a\x7fb", `{"fortune": "a\u007fb"}`),
		Entry("html is left alone", "<b>&</b>", `{"fortune": "<b>&</b>"}`),
		Entry("non-ASCII", "café", `{"fortune": "caf\u00e9"}`),
		Entry("astral plane", "😀", `{"fortune": "\ud83d\ude00"}`),
		Entry("empty fortune", "", `{"fortune": ""}`),
	)
})
