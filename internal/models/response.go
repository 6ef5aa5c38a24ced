package models

// StatusResponse is the shape of GET /api/v1/status.
type StatusResponse struct {
	SessionID    string `json:"session_id"`
	Links        int    `json:"links"`
	Products     int    `json:"products"`
	Provider     string `json:"provider"`
	Model        string `json:"model"`
	PromptSource string `json:"prompt_source"`
}

// LinksResponse is the shape of GET /api/v1/links.
type LinksResponse struct {
	Links []string `json:"links"`
}

// MessageResponse carries a human-readable confirmation.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
