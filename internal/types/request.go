package types

// RequestSendMessage is the multipart form of POST /api/send-message. Files
// arrive separately in the "images" field.
type RequestSendMessage struct {
	Number  string `json:"number" form:"number"`
	Message string `json:"message" form:"message"`
}

type RequestExternalSendMessage struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

type RequestIssueToken struct {
	Caller string `json:"caller"`
	// TTL is a Go duration string; empty uses the configured default and
	// "0" issues a token without expiry.
	TTL string `json:"ttl"`
}
