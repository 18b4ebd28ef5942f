package youtube

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	yt "google.golang.org/api/youtube/v3"

	"where2eat-worker/domain/models"
	"where2eat-worker/domain/ports"
)

const pageSize = 50

// Client - YouTube Data API v3 implementation of the video-listing port.
type Client struct {
	svc    *yt.Service
	logger *slog.Logger
}

func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	svc, err := yt.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create youtube service: %w", err)
	}
	return &Client{
		svc:    svc,
		logger: slog.Default().With("component", "youtube"),
	}, nil
}

// ResolveChannel accepts a raw channel id, an @handle, or a channel URL and
// resolves it to a channel id + title, falling back to a channel search.
func (c *Client) ResolveChannel(ctx context.Context, ref string) (*ports.ChannelInfo, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("empty channel reference")
	}

	if id, handle := parseChannelRef(ref); id != "" {
		return c.channelByID(ctx, id)
	} else if handle != "" {
		return c.channelByHandle(ctx, handle)
	}

	// Last resort: channel search by free text.
	search, err := c.svc.Search.List([]string{"snippet"}).
		Q(ref).Type("channel").MaxResults(1).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("channel search failed: %w", err)
	}
	if len(search.Items) == 0 {
		return nil, fmt.Errorf("no channel matches %q", ref)
	}
	return &ports.ChannelInfo{
		ChannelID: search.Items[0].Snippet.ChannelId,
		Title:     search.Items[0].Snippet.ChannelTitle,
	}, nil
}

// ListVideos walks the channel's uploads playlist newest first, hydrates
// durations and view counts, and applies the requested filters.
func (c *Client) ListVideos(ctx context.Context, channelID string, filters models.VideoFilters) ([]models.VideoTask, error) {
	channels, err := c.svc.Channels.List([]string{"contentDetails"}).
		Id(channelID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to load channel %s: %w", channelID, err)
	}
	if len(channels.Items) == 0 {
		return nil, fmt.Errorf("channel %s does not exist", channelID)
	}
	uploads := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads

	var tasks []models.VideoTask
	pageToken := ""
	for {
		page, err := c.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
			PlaylistId(uploads).MaxResults(pageSize).PageToken(pageToken).Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list uploads of %s: %w", channelID, err)
		}

		ids := make([]string, 0, len(page.Items))
		for _, item := range page.Items {
			ids = append(ids, item.ContentDetails.VideoId)
		}

		batch, pastCutoff, err := c.hydrateAndFilter(ctx, ids, filters)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, batch...)

		if filters.MaxVideos > 0 && len(tasks) >= filters.MaxVideos {
			tasks = tasks[:filters.MaxVideos]
			break
		}
		// Uploads come newest first; once a page crosses the date cutoff
		// there is nothing left to collect.
		if pastCutoff || page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	c.logger.InfoContext(ctx, "videos listed",
		"channel_id", channelID,
		"count", len(tasks),
	)
	return tasks, nil
}

func (c *Client) hydrateAndFilter(ctx context.Context, ids []string, filters models.VideoFilters) ([]models.VideoTask, bool, error) {
	if len(ids) == 0 {
		return nil, false, nil
	}
	videos, err := c.svc.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
		Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, false, fmt.Errorf("failed to hydrate videos: %w", err)
	}

	var tasks []models.VideoTask
	pastCutoff := false
	for _, v := range videos.Items {
		published, _ := time.Parse(time.RFC3339, v.Snippet.PublishedAt)
		if !filters.PublishedAfter.IsZero() && published.Before(filters.PublishedAfter) {
			pastCutoff = true
			continue
		}
		if filters.MinViews > 0 && v.Statistics != nil && v.Statistics.ViewCount < filters.MinViews {
			continue
		}
		if filters.MinDurationSecs > 0 && parseISODuration(v.ContentDetails.Duration) < filters.MinDurationSecs {
			continue
		}
		tasks = append(tasks, models.VideoTask{
			VideoID:  v.Id,
			Title:    v.Snippet.Title,
			VideoURL: "https://www.youtube.com/watch?v=" + v.Id,
		})
	}
	return tasks, pastCutoff, nil
}

func (c *Client) channelByID(ctx context.Context, id string) (*ports.ChannelInfo, error) {
	resp, err := c.svc.Channels.List([]string{"snippet"}).Id(id).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("channel lookup failed: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("channel %s does not exist", id)
	}
	return &ports.ChannelInfo{ChannelID: resp.Items[0].Id, Title: resp.Items[0].Snippet.Title}, nil
}

func (c *Client) channelByHandle(ctx context.Context, handle string) (*ports.ChannelInfo, error) {
	resp, err := c.svc.Channels.List([]string{"snippet"}).ForHandle(handle).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("handle lookup failed: %w", err)
	}
	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("handle %s does not exist", handle)
	}
	return &ports.ChannelInfo{ChannelID: resp.Items[0].Id, Title: resp.Items[0].Snippet.Title}, nil
}

// parseChannelRef splits a reference into (channelID, handle); at most one
// is non-empty. Unrecognized references return both empty.
func parseChannelRef(ref string) (string, string) {
	if strings.HasPrefix(ref, "UC") && !strings.Contains(ref, "/") {
		return ref, ""
	}
	if strings.HasPrefix(ref, "@") {
		return "", ref
	}
	if i := strings.Index(ref, "/channel/"); i >= 0 {
		id := strings.Split(ref[i+len("/channel/"):], "/")[0]
		return strings.Split(id, "?")[0], ""
	}
	if i := strings.Index(ref, "/@"); i >= 0 {
		handle := strings.Split(ref[i+1:], "/")[0]
		return "", strings.Split(handle, "?")[0]
	}
	return "", ""
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the API's ISO 8601 duration (PT1H30M5S) to
// seconds. Unparseable values come back as 0.
func parseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	hours, _ := strconv.Atoi(m[1])
	minutes, _ := strconv.Atoi(m[2])
	seconds, _ := strconv.Atoi(m[3])
	return hours*3600 + minutes*60 + seconds
}

var _ ports.VideoListingPort = (*Client)(nil)
