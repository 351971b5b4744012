package infrastructure_test

import (
	"time"

	"github.com/bwmarrin/discordgo"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/infrastructure"
)

func notifierTrack(title, link string) domain.Track {
	return domain.NewTrack(
		"https://rr1.googlevideo.com/videoplayback?id="+title,
		title,
		link,
		"https://i.ytimg.com/vi/x/hqdefault.jpg",
		215*time.Second,
		"alice",
		42,
	)
}

func buttons(components []discordgo.MessageComponent) []discordgo.Button {
	Expect(components).To(HaveLen(1))
	row, ok := components[0].(discordgo.ActionsRow)
	Expect(ok).To(BeTrue())

	result := make([]discordgo.Button, 0, len(row.Components))
	for _, c := range row.Components {
		b, ok := c.(discordgo.Button)
		Expect(ok).To(BeTrue())
		result = append(result, b)
	}
	return result
}

var _ = Describe("NowPlayingEmbed", func() {
	It("links the track and shows the up next snapshot", func() {
		next := notifierTrack("Second", "")
		embed := infrastructure.NowPlayingEmbed(domain.NowPlaying{
			Track: notifierTrack("First", "https://www.youtube.com/watch?v=abc"),
			Next:  &next,
		})

		Expect(embed.Fields).To(HaveLen(2))
		Expect(embed.Fields[0].Name).To(Equal("Now Playing 🎵"))
		Expect(embed.Fields[0].Value).To(Equal("[First](https://www.youtube.com/watch?v=abc)"))
		Expect(embed.Fields[1].Value).To(Equal("Length: 3:35\nRequested by: alice\nUp Next: Second"))
		Expect(embed.Thumbnail.URL).To(Equal("https://i.ytimg.com/vi/x/hqdefault.jpg"))
	})

	It("omits unknown details", func() {
		track := domain.NewTrack("https://s.example/1", "Live", "", "", 0, "", 0)
		embed := infrastructure.NowPlayingEmbed(domain.NowPlaying{Track: track})

		Expect(embed.Fields).To(HaveLen(1))
		Expect(embed.Fields[0].Value).To(Equal("Live"))
		Expect(embed.Thumbnail).To(BeNil())
	})

	It("marks paused playback", func() {
		embed := infrastructure.NowPlayingEmbed(domain.NowPlaying{
			Track:  notifierTrack("First", ""),
			Paused: true,
		})
		Expect(embed.Fields[0].Name).To(Equal("Paused ⏸️"))
	})
})

var _ = Describe("NowPlayingComponents", func() {
	It("offers pause, skip and stop", func() {
		bs := buttons(infrastructure.NowPlayingComponents(false))

		Expect(bs).To(HaveLen(3))
		Expect(bs[0].CustomID).To(Equal(ports.ControlTogglePause))
		Expect(bs[0].Label).To(Equal("Pause"))
		Expect(bs[1].CustomID).To(Equal(ports.ControlSkip))
		Expect(bs[2].CustomID).To(Equal(ports.ControlStop))
		Expect(bs[2].Style).To(Equal(discordgo.DangerButton))
	})

	It("offers resume while paused", func() {
		bs := buttons(infrastructure.NowPlayingComponents(true))
		Expect(bs[0].Label).To(Equal("Resume"))
		Expect(bs[0].CustomID).To(Equal(ports.ControlTogglePause))
	})
})

var _ = Describe("PlaylistAddedEmbed", func() {
	It("summarizes the playlist", func() {
		at := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
		embed := infrastructure.PlaylistAddedEmbed(ports.PlaylistSummary{
			Name:          "Road Trip",
			URL:           "https://open.spotify.com/playlist/pl1",
			TrackCount:    12,
			TotalDuration: 47*time.Minute + 30*time.Second,
			CoverImageURL: "https://i.scdn.co/image/cover",
			RequestedBy:   "alice",
		}, at)

		Expect(embed.Description).To(ContainSubstring("[Road Trip](https://open.spotify.com/playlist/pl1)"))
		Expect(embed.Description).To(ContainSubstring("`12` songs"))
		Expect(embed.Description).To(ContainSubstring("`47 minutes`"))
		Expect(embed.Description).To(ContainSubstring("`alice`"))
		Expect(embed.Thumbnail.URL).To(Equal("https://i.scdn.co/image/cover"))
		Expect(embed.Timestamp).To(Equal("2024-05-01T12:30:00Z"))
	})
})
