package discord

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/usecases"
)

const (
	testGuildID   = "111"
	testChannelID = "222"
	testUserID    = "333"
)

// fakeCoordinator records the last request and returns canned results.
type fakeCoordinator struct {
	enqueueInput  usecases.EnqueueInput
	enqueueOutput *usecases.EnqueueOutput
	controlInput  usecases.ControlInput
	skipOutput    *usecases.SkipOutput
	listing       usecases.QueueListing
	paused        bool
	err           error

	calls     []string
	voiceLost []snowflake.ID
}

func (f *fakeCoordinator) Enqueue(_ context.Context, input usecases.EnqueueInput) (*usecases.EnqueueOutput, error) {
	f.calls = append(f.calls, "enqueue")
	f.enqueueInput = input
	return f.enqueueOutput, f.err
}

func (f *fakeCoordinator) Pause(_ context.Context, input usecases.ControlInput) error {
	f.calls = append(f.calls, "pause")
	f.controlInput = input
	return f.err
}

func (f *fakeCoordinator) Resume(_ context.Context, input usecases.ControlInput) error {
	f.calls = append(f.calls, "resume")
	f.controlInput = input
	return f.err
}

func (f *fakeCoordinator) TogglePause(_ context.Context, input usecases.ControlInput) (bool, error) {
	f.calls = append(f.calls, "toggle")
	f.controlInput = input
	return f.paused, f.err
}

func (f *fakeCoordinator) Skip(_ context.Context, input usecases.ControlInput) (*usecases.SkipOutput, error) {
	f.calls = append(f.calls, "skip")
	f.controlInput = input
	if f.err != nil {
		return nil, f.err
	}
	if f.skipOutput == nil {
		return &usecases.SkipOutput{}, nil
	}
	return f.skipOutput, nil
}

func (f *fakeCoordinator) Stop(_ context.Context, input usecases.ControlInput) error {
	f.calls = append(f.calls, "stop")
	f.controlInput = input
	return f.err
}

func (f *fakeCoordinator) ListQueue(_ snowflake.ID) usecases.QueueListing {
	f.calls = append(f.calls, "list")
	return f.listing
}

func (f *fakeCoordinator) HandleVoiceLost(_ context.Context, guildID, channelID snowflake.ID) {
	f.calls = append(f.calls, "voice_lost")
	f.voiceLost = append(f.voiceLost, guildID, channelID)
}

func commandInteraction(name string, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionApplicationCommand,
			GuildID:   testGuildID,
			ChannelID: testChannelID,
			Member: &discordgo.Member{
				Nick: "DJ",
				User: &discordgo.User{ID: testUserID, Username: "dj_user"},
			},
			Data: discordgo.ApplicationCommandInteractionData{
				Name:    name,
				Options: options,
			},
		},
	}
}

func componentInteraction(customID string) *discordgo.InteractionCreate {
	return &discordgo.InteractionCreate{
		Interaction: &discordgo.Interaction{
			Type:      discordgo.InteractionMessageComponent,
			GuildID:   testGuildID,
			ChannelID: testChannelID,
			Data: discordgo.MessageComponentInteractionData{
				CustomID:      customID,
				ComponentType: discordgo.ButtonComponent,
			},
		},
	}
}

func queryOption(value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  "query",
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}
