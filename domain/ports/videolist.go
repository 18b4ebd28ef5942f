package ports

import (
	"context"

	"where2eat-worker/domain/models"
)

// ChannelInfo - resolved identity of a channel.
type ChannelInfo struct {
	ChannelID string
	Title     string
}

// VideoListingPort - interface over the channel/video listing collaborator.
type VideoListingPort interface {
	// ResolveChannel accepts a channel URL, @handle, or raw channel id.
	// Returns models.ErrChannelNotFound (wrapped) when nothing matches.
	ResolveChannel(ctx context.Context, ref string) (*ChannelInfo, error)

	// ListVideos returns the channel's videos newest first, already filtered
	// by date/view/duration as requested.
	ListVideos(ctx context.Context, channelID string, filters models.VideoFilters) ([]models.VideoTask, error)
}
