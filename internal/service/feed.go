package service

import (
	"context"

	"github.com/sakif/photo-share/internal/model"
)

// FeedService builds the enriched feed shown to a viewer.
type FeedService struct {
	posts      *PostService
	engagement *EngagementService
}

// NewFeedService creates a FeedService on top of the post and engagement
// services.
func NewFeedService(posts *PostService, engagement *EngagementService) *FeedService {
	return &FeedService{posts: posts, engagement: engagement}
}

// Assemble returns every post, newest first, each with its like count,
// whether viewerID liked it, and its comments oldest first.
//
// Three reads per post (count, has-liked, comments). With no pagination
// the cost grows linearly with the number of posts.
func (s *FeedService) Assemble(ctx context.Context, viewerID int64) ([]model.EnrichedPost, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}

	feed := make([]model.EnrichedPost, 0, len(posts))
	for _, p := range posts {
		count, err := s.engagement.LikeCount(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		liked, err := s.engagement.HasLiked(ctx, viewerID, p.ID)
		if err != nil {
			return nil, err
		}
		comments, err := s.engagement.Comments(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if comments == nil {
			comments = []model.Comment{}
		}

		feed = append(feed, model.EnrichedPost{
			Post:      p,
			LikeCount: count,
			UserLiked: liked,
			Comments:  comments,
		})
	}

	return feed, nil
}
