package model

import "time"

// Post is one uploaded image with its caption.
//
// Username is copied from the owner at creation time so the feed shows the
// name the post was published under without joining users.
type Post struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ImagePath string    `json:"image_path"` // file name inside the upload directory
	Caption   string    `json:"caption"`
	CreatedAt time.Time `json:"created_at"`
}

// EnrichedPost is a Post plus the engagement data the feed renders.
type EnrichedPost struct {
	Post
	LikeCount int       `json:"like_count"`
	UserLiked bool      `json:"user_liked"`
	Comments  []Comment `json:"comments"`
}
