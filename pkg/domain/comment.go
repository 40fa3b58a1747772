package domain

import "time"

// Comment is a comment or a reply on a record
type Comment struct {
	CommentID  int64     `json:"commentId"`
	RecordID   int64     `json:"recordId"`
	ParentID   int64     `json:"parentId,omitempty"` // zero for top-level comments
	Nickname   string    `json:"nickname"`
	Content    string    `json:"content"`
	ReplyCount int       `json:"replyCount"`
	CreatedAt  time.Time `json:"createdAt"`
}

// CommentPage is one fetched page of comments or replies
type CommentPage struct {
	Content  []Comment `json:"content"`
	Pageable Pageable  `json:"pageable"`
	Last     bool      `json:"last"`
}

// LikeEntry is one user in a record's like list
type LikeEntry struct {
	Nickname     string    `json:"nickname"`
	ProfileImage string    `json:"profileImage,omitempty"`
	LikedAt      time.Time `json:"likedAt"`
}
