package infrastructure

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = DescribeTable("youtubeVideoID",
	func(link, want string) {
		Expect(youtubeVideoID(link)).To(Equal(want))
	},
	Entry("watch link", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ"),
	Entry("short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"),
	Entry("shorts", "https://www.youtube.com/shorts/abc123", "abc123"),
	Entry("music", "https://music.youtube.com/watch?v=xyz", "xyz"),
	Entry("channel", "https://www.youtube.com/@someone", ""),
	Entry("empty", "", ""),
)
