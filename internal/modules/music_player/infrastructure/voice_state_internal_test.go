package infrastructure

import (
	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("VoiceStateProvider", func() {
	var provider *VoiceStateProvider

	BeforeEach(func() {
		state := discordgo.NewState()
		Expect(state.GuildAdd(&discordgo.Guild{
			ID: "10",
			VoiceStates: []*discordgo.VoiceState{
				{GuildID: "10", UserID: "1", ChannelID: "500"},
				{GuildID: "10", UserID: "2", ChannelID: ""},
			},
		})).To(Succeed())
		provider = newVoiceStateProvider(state)
	})

	It("returns the user's voice channel", func() {
		channelID, err := provider.GetUserVoiceChannel(10, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(channelID).To(Equal(snowflake.ID(500)))
	})

	It("returns 0 for users outside voice", func() {
		channelID, err := provider.GetUserVoiceChannel(10, 2)
		Expect(err).NotTo(HaveOccurred())
		Expect(channelID).To(BeZero())

		channelID, err = provider.GetUserVoiceChannel(10, 3)
		Expect(err).NotTo(HaveOccurred())
		Expect(channelID).To(BeZero())
	})

	It("returns 0 for guilds missing from the cache", func() {
		channelID, err := provider.GetUserVoiceChannel(99, 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(channelID).To(BeZero())
	})
})
