package constants

// Chat transport error codes.
const (
	ErrCodeInvalidToken    = "INVALID_TOKEN"
	ErrCodeRateLimited     = "RATE_LIMITED"
	ErrCodeNetworkError    = "NETWORK_ERROR"
	ErrCodeRequestRejected = "REQUEST_REJECTED"
	ErrCodeChatUnreachable = "CHAT_UNREACHABLE"
	ErrCodeInvalidResponse = "INVALID_RESPONSE"
)

var ProviderErrorMessages = map[string]string{
	ErrCodeInvalidToken:    "The bot token is missing or was rejected",
	ErrCodeRateLimited:     "Rate limit exceeded. Please try again later",
	ErrCodeNetworkError:    "Unable to reach the chat platform",
	ErrCodeRequestRejected: "The chat platform rejected the request",
	ErrCodeChatUnreachable: "The chat or user cannot be reached by the bot",
	ErrCodeInvalidResponse: "The chat platform sent an unreadable response",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := ProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
