package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disgoorg/snowflake/v2"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/application/ports"
	"github.com/sglre6355/guildtunes/internal/modules/music_player/domain"
)

// Embed colors.
const (
	colorBlurple = 0x5865F2
	colorGreen   = 0x57F287
)

// Notifier posts playback messages to Discord channels.
type Notifier struct {
	session    *discordgo.Session
	httpClient *http.Client
}

// NewNotifier creates a new Notifier.
func NewNotifier(session *discordgo.Session) *Notifier {
	return &Notifier{
		session: session,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// PostNowPlaying sends a "Now Playing" embed with playback controls.
func (n *Notifier) PostNowPlaying(
	ctx context.Context,
	channelID snowflake.ID,
	info domain.NowPlaying,
) (domain.NowPlayingMessage, error) {
	embed := NowPlayingEmbed(info)
	embed.Thumbnail = n.thumbnail(ctx, info.Track)

	msg, err := n.session.ChannelMessageSendComplex(channelID.String(), &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: NowPlayingComponents(info.Paused),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return domain.NowPlayingMessage{}, err
	}

	messageID, err := snowflake.Parse(msg.ID)
	if err != nil {
		return domain.NowPlayingMessage{}, err
	}
	return domain.NewNowPlayingMessage(channelID, messageID), nil
}

// UpdateNowPlaying re-renders a posted "Now Playing" message.
func (n *Notifier) UpdateNowPlaying(
	ctx context.Context,
	msg domain.NowPlayingMessage,
	info domain.NowPlaying,
) error {
	embed := NowPlayingEmbed(info)
	embed.Thumbnail = n.thumbnail(ctx, info.Track)
	components := NowPlayingComponents(info.Paused)

	edit := discordgo.NewMessageEdit(msg.ChannelID.String(), msg.MessageID.String()).SetEmbed(embed)
	edit.Components = &components

	_, err := n.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return err
}

// DeleteNowPlaying deletes a posted "Now Playing" message.
func (n *Notifier) DeleteNowPlaying(ctx context.Context, msg domain.NowPlayingMessage) error {
	return n.session.ChannelMessageDelete(
		msg.ChannelID.String(),
		msg.MessageID.String(),
		discordgo.WithContext(ctx),
	)
}

// PostNotice sends a plain text message.
func (n *Notifier) PostNotice(ctx context.Context, channelID snowflake.ID, text string) error {
	_, err := n.session.ChannelMessageSend(channelID.String(), text, discordgo.WithContext(ctx))
	return err
}

// PostPlaylistAdded sends the summary of an accepted playlist.
func (n *Notifier) PostPlaylistAdded(
	ctx context.Context,
	channelID snowflake.ID,
	summary ports.PlaylistSummary,
) error {
	_, err := n.session.ChannelMessageSendEmbed(
		channelID.String(),
		PlaylistAddedEmbed(summary, time.Now()),
		discordgo.WithContext(ctx),
	)
	return err
}

// NowPlayingEmbed renders the track, its length, requester and the
// "Up Next" snapshot.
func NowPlayingEmbed(info domain.NowPlaying) *discordgo.MessageEmbed {
	name := "Now Playing 🎵"
	if info.Paused {
		name = "Paused ⏸️"
	}

	var details []string
	if info.Track.Duration > 0 {
		details = append(details, "Length: "+info.Track.FormattedDuration())
	}
	if info.Track.RequestedBy != "" {
		details = append(details, "Requested by: "+info.Track.RequestedBy)
	}
	if info.Next != nil {
		details = append(details, "Up Next: "+trackLink(*info.Next))
	}

	embed := &discordgo.MessageEmbed{
		Color: colorBlurple,
		Fields: []*discordgo.MessageEmbedField{
			{
				Name:  name,
				Value: trackLink(info.Track),
			},
		},
	}
	if len(details) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Value: strings.Join(details, "\n"),
		})
	}
	if info.Track.ThumbnailURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: info.Track.ThumbnailURL}
	}
	return embed
}

// NowPlayingComponents returns the pause/resume, skip and stop buttons.
func NowPlayingComponents(paused bool) []discordgo.MessageComponent {
	toggle := discordgo.Button{
		Label:    "Pause",
		Style:    discordgo.PrimaryButton,
		Emoji:    &discordgo.ComponentEmoji{Name: "⏸️"},
		CustomID: ports.ControlTogglePause,
	}
	if paused {
		toggle.Label = "Resume"
		toggle.Emoji = &discordgo.ComponentEmoji{Name: "▶️"}
	}

	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				toggle,
				discordgo.Button{
					Label:    "Next",
					Style:    discordgo.SecondaryButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏭️"},
					CustomID: ports.ControlSkip,
				},
				discordgo.Button{
					Label:    "Stop",
					Style:    discordgo.DangerButton,
					Emoji:    &discordgo.ComponentEmoji{Name: "⏹️"},
					CustomID: ports.ControlStop,
				},
			},
		},
	}
}

// PlaylistAddedEmbed renders the summary of an accepted playlist.
func PlaylistAddedEmbed(summary ports.PlaylistSummary, at time.Time) *discordgo.MessageEmbed {
	name := summary.Name
	if summary.URL != "" {
		name = fmt.Sprintf("[%s](%s)", summary.Name, summary.URL)
	}

	embed := &discordgo.MessageEmbed{
		Title: "📌 Playlist added 🎶",
		Description: fmt.Sprintf(
			"The playlist %s contains `%d` songs 🎶\n\nTotal duration: `%d minutes`\nAdded by: `%s`",
			name,
			summary.TrackCount,
			int(summary.TotalDuration.Minutes()),
			summary.RequestedBy,
		),
		Color:     colorGreen,
		Timestamp: at.UTC().Format(time.RFC3339),
	}
	if summary.CoverImageURL != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: summary.CoverImageURL}
	}
	return embed
}

func trackLink(t domain.Track) string {
	if t.WebpageURL == "" {
		return t.Title
	}
	return fmt.Sprintf("[%s](%s)", t.Title, t.WebpageURL)
}

// thumbnail returns the best thumbnail for the track. For YouTube it tries
// higher quality images than the one yt-dlp reported.
func (n *Notifier) thumbnail(ctx context.Context, t domain.Track) *discordgo.MessageEmbedThumbnail {
	thumb := t.ThumbnailURL
	if domain.ParseTrackSource(t.WebpageURL) == domain.TrackSourceYouTube {
		if id := youtubeVideoID(t.WebpageURL); id != "" {
			thumb = n.getYouTubeThumbnail(ctx, id, thumb)
		}
	}
	if thumb == "" {
		return nil
	}
	return &discordgo.MessageEmbedThumbnail{URL: thumb}
}

// getYouTubeThumbnail tries to find the highest quality YouTube thumbnail available.
func (n *Notifier) getYouTubeThumbnail(ctx context.Context, videoID string, fallbackURL string) string {
	qualities := []string{"maxresdefault", "sddefault", "hqdefault"}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	for _, quality := range qualities {
		thumbURL := fmt.Sprintf("https://img.youtube.com/vi/%s/%s.jpg", videoID, quality)
		if n.urlExists(ctx, thumbURL) {
			return thumbURL
		}
	}

	return fallbackURL
}

// urlExists checks if a URL returns a successful response using a HEAD request.
func (n *Notifier) urlExists(ctx context.Context, rawURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return false
	}

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	return resp.StatusCode == http.StatusOK
}

// youtubeVideoID extracts the video ID from watch and short links.
func youtubeVideoID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return ""
	}
	if strings.EqualFold(u.Hostname(), "youtu.be") {
		return strings.Trim(u.Path, "/")
	}
	if id := u.Query().Get("v"); id != "" {
		return id
	}
	if rest, ok := strings.CutPrefix(u.Path, "/shorts/"); ok {
		return strings.Trim(rest, "/")
	}
	return ""
}

// Ensure Notifier implements ports.Presenter.
var _ ports.Presenter = (*Notifier)(nil)
