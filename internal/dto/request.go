package dto

// Request bodies keep the camelCase field names of the existing web client.

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Secret   string `json:"secret"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdminRequest struct {
	Secret string `json:"secret"`
}

type DeleteUserRequest struct {
	Secret string `json:"secret"`
	UserID uint64 `json:"userId"`
}

type GrantShareRequest struct {
	FileID         uint64 `json:"fileId"`
	TargetUsername string `json:"targetUsername"`
	// CanDownload defaults to true when omitted.
	CanDownload *bool `json:"canDownload"`
}

type RevokeShareRequest struct {
	FileID         uint64 `json:"fileId"`
	TargetUsername string `json:"targetUsername"`
}

type CreateLinkRequest struct {
	FileID        uint64 `json:"fileId"`
	ExpiresInDays *int   `json:"expiresInDays"`
	MaxDownloads  *int   `json:"maxDownloads"`
}

type CommentRequest struct {
	Body string `json:"body"`
}
