package types

import "time"

type ResponseStatus struct {
	Status          string `json:"status"`
	QRCodeAvailable bool   `json:"qrCodeAvailable"`
	NeedsOperator   bool   `json:"needsOperator"`
	Attempts        int    `json:"attempts"`
	LastError       string `json:"lastError,omitempty"`
	Timestamp       string `json:"timestamp"`
}

type ResponseHealth struct {
	Status         string `json:"status"`
	Timestamp      string `json:"timestamp"`
	WhatsAppStatus string `json:"whatsappStatus"`
}

type ResponseQR struct {
	QR string `json:"qr"`
}

type ResponseSent struct {
	MessageID string `json:"messageId"`
	Recipient string `json:"recipient"`
	Timestamp string `json:"timestamp"`
}

type ResponseOTP struct {
	MessageID   string `json:"messageId"`
	SessionID   string `json:"sessionId"`
	OTP         string `json:"otp"`
	PhoneNumber string `json:"phoneNumber"`
	Timestamp   string `json:"timestamp"`
}

type ResponseInitiate struct {
	MessageID   string  `json:"messageId"`
	SessionID   string  `json:"sessionId"`
	MessageType string  `json:"messageType"`
	BookingID   *string `json:"bookingId"`
	Timestamp   string  `json:"timestamp"`
}

type ResponseToken struct {
	Token     string     `json:"token"`
	Caller    string     `json:"caller"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// Timestamp formats t the way every response reports time.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}
