package models

// OutboundMessageRequest represents requests to send a message manually via the API.
type OutboundMessageRequest struct {
	To         string `json:"to" binding:"required"`
	Message    string `json:"message" binding:"required"`
	PreviewURL bool   `json:"preview_url"`
}

// ShareRequest asks for the current user's backup to be sent to a phone number.
type ShareRequest struct {
	To string `json:"to" binding:"required"`
}
