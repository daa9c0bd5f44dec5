package dto

import "time"

// UserResponse is the public view of a user.
type UserResponse struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
}

// LoginResponse carries the session token.
type LoginResponse struct {
	OK    bool         `json:"ok"`
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

// IncomingShare is a file another user shared with the caller.
type IncomingShare struct {
	FileID        uint64    `json:"file_id"`
	OriginalName  string    `json:"original_name"`
	SizeBytes     int64     `json:"size_bytes"`
	CreatedAt     time.Time `json:"created_at"`
	OwnerUsername string    `json:"owner_username"`
	CanDownload   bool      `json:"can_download"`
	SharedAt      time.Time `json:"shared_at"`
}

// OutgoingShare is one grant on a file the caller owns.
type OutgoingShare struct {
	TargetUsername string    `json:"target_username"`
	CanDownload    bool      `json:"can_download"`
	CreatedAt      time.Time `json:"created_at"`
}

// CommentResponse is a comment annotated with its author.
type CommentResponse struct {
	ID        uint64    `json:"id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
	Author    string    `json:"author"`
}

// UserSummary is an admin listing row.
type UserSummary struct {
	ID        uint64    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
	FileCount int64     `json:"file_count"`
}
