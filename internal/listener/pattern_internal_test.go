package listener

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("matchPath", func() {
	DescribeTable("ALB path patterns",
		func(pattern, path string, want bool) {
			Expect(matchPath(pattern, path)).To(Equal(want))
		},
		Entry("exact", "/fortune", "/fortune", true),
		Entry("exact mismatch", "/fortune", "/fortunes", false),
		Entry("case-sensitive", "/fortune", "/Fortune", false),
		Entry("trailing star", "/fortune*", "/fortune/today", true),
		Entry("star crosses slashes", "/api/*/fortune", "/api/v1/beta/fortune", true),
		Entry("star matches empty", "/fortune*", "/fortune", true),
		Entry("question mark", "/v?/fortune", "/v2/fortune", true),
		Entry("question mark needs a char", "/v?/fortune", "/v/fortune", false),
		Entry("catch-all", "*", "/anything/at/all", true),
		Entry("backtracking", "/a*b*c", "/axxbyyc", true),
		Entry("backtracking mismatch", "/a*b*c", "/axxbyy", false),
	)
})
