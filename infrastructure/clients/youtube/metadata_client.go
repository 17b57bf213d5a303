package youtube

import (
	"context"
	"fmt"

	"yt-analytics/domain/model"

	"google.golang.org/api/youtube/v3"
)

// ListVideos fetches snippet and status for one batch of at most MaxIDsPerRequest ids
func (c *Client) ListVideos(ctx context.Context, accessToken string, ids []string) ([]model.VideoMetadata, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	if len(ids) > MaxIDsPerRequest {
		return nil, fmt.Errorf("videos.list accepts at most %d ids, got %d", MaxIDsPerRequest, len(ids))
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("wait for videos.list slot: %w", err)
		}
	}

	service, err := youtube.NewService(ctx, c.options(accessToken, c.dataEndpoint)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}

	response, err := service.Videos.List([]string{"snippet", "status"}).
		Id(ids...).
		Context(ctx).
		Do()
	if err != nil {
		return nil, toUpstreamError("youtube videos.list", err)
	}

	videos := make([]model.VideoMetadata, 0, len(response.Items))
	for _, item := range response.Items {
		if item == nil || item.Id == "" {
			continue
		}
		videos = append(videos, convertToVideoMetadata(item))
	}
	return videos, nil
}

// convertToVideoMetadata converts YouTube API video to our model
func convertToVideoMetadata(video *youtube.Video) model.VideoMetadata {
	meta := model.VideoMetadata{
		ID:   video.Id,
		Tags: []string{},
	}
	if video.Snippet != nil {
		meta.Title = video.Snippet.Title
		meta.Description = video.Snippet.Description
		meta.PublishedAt = video.Snippet.PublishedAt
		if video.Snippet.Tags != nil {
			meta.Tags = video.Snippet.Tags
		}
	}
	if video.Status != nil {
		meta.PrivacyStatus = video.Status.PrivacyStatus
	}
	return meta
}
