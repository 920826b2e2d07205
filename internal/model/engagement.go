package model

import "time"

// Comment is a short text attached to a post. Comments are never edited;
// they disappear only when their post is deleted.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// LikeState is the result of a like or unlike: whether the viewer now likes
// the post and the total count after the change.
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}
