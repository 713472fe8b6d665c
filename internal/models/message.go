// Package models defines messaging and API envelope types for zamowbot.
package models

// Receipt records a delivery status event for an outbound reply.
type Receipt struct {
	To     string `json:"to"`
	Status string `json:"status"`
	Time   int64  `json:"time"`
}

// Response is an incoming user message from a delivery channel.
type Response struct {
	From string `json:"from"`
	Body string `json:"body"`
	Time int64  `json:"time"`
}

// API status values for consistent JSON responses.
const (
	APIStatusOK    = "ok"
	APIStatusError = "error"
)

// APIResponse is the standard HTTP response envelope.
type APIResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Result  any    `json:"result,omitempty"`
}

// Success builds a successful API response with a result payload.
func Success(result any) APIResponse {
	return APIResponse{Status: APIStatusOK, Result: result}
}

// Error builds an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: APIStatusError, Message: message}
}
