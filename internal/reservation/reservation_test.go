package reservation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

type fakeSender struct {
	ready bool
	sent  []pkgWhatsApp.OutboundMessage
}

func (f *fakeSender) Ready() bool {
	return f.ready
}

func (f *fakeSender) Send(ctx context.Context, msg pkgWhatsApp.OutboundMessage) (pkgWhatsApp.SendResult, error) {
	f.sent = append(f.sent, msg)
	return pkgWhatsApp.SendResult{MessageID: "INIT1", Timestamp: time.Now()}, nil
}

func post(t *testing.T, sender *fakeSender, body string) (int, router.Response) {
	t.Helper()
	app := fiber.New()
	app.Post("/initiate", New(sender).Initiate)

	req := httptest.NewRequest(http.MethodPost, "/initiate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	raw, _ := io.ReadAll(resp.Body)
	var out router.Response
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode response %q: %v", raw, err)
	}
	return resp.StatusCode, out
}

func TestDetailsMessageFallbacks(t *testing.T) {
	details := DetailsFromBody(map[string]interface{}{
		"booking_id":       "B-77",
		"number_of_guests": float64(4),
		"remarks":          "",
		"merchant_name":    nil,
	})

	expected := "*Hi, Guest (ID: N/A)*\n\n" +
		"Thank you for choosing Jio8 😎\n\n" +
		"To confirm the details of your reservation, please review the information below:\n\n" +
		"• Booking ID: B-77\n" +
		"• Merchant: N/A\n" +
		"• Commission Rate: N/A\n" +
		"• Reservation Date: N/A\n" +
		"• Reservation Time: N/A\n" +
		"• Number of Guests: 4\n" +
		"• Remarks: No special requests\n\n" +
		"If the information above is correct, please reply \"*Yes*\" to proceed.\n\n" +
		"Jio8 Customer Support"

	if got := details.Message(); got != expected {
		t.Errorf("unexpected message:\n%s", got)
	}
}

func TestDetailsZeroGuestsFallsBack(t *testing.T) {
	details := DetailsFromBody(map[string]interface{}{
		"number_of_guests": float64(0),
		"commission_rate":  false,
	})
	if details.NumberOfGuests != "N/A" {
		t.Errorf("expected N/A guests, got %q", details.NumberOfGuests)
	}
	if details.CommissionRate != "N/A" {
		t.Errorf("expected N/A commission rate, got %q", details.CommissionRate)
	}
	if !strings.Contains(details.Message(), "• Number of Guests: N/A\n") {
		t.Errorf("expected N/A guests line in message:\n%s", details.Message())
	}
}

func TestInitiateText(t *testing.T) {
	sender := &fakeSender{ready: true}
	code, out := post(t, sender, `{"phone_number": "60 12", "BP_fullname": "Aina", "booking_id": "B-1"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %+v", code, out)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}

	msg := sender.sent[0]
	if msg.Kind != pkgWhatsApp.KindText || msg.To != "6012@s.whatsapp.net" {
		t.Errorf("unexpected outbound %+v", msg)
	}
	if !strings.HasPrefix(msg.Body, "*Hi, Aina (ID: N/A)*") {
		t.Errorf("unexpected body %q", msg.Body)
	}

	data, _ := out.Data.(map[string]interface{})
	if data["bookingId"] != "B-1" || data["messageType"] != "text" || data["sessionId"] != defaultSessionID {
		t.Errorf("unexpected data %v", data)
	}
}

func TestInitiateBookingIDNull(t *testing.T) {
	_, out := post(t, &fakeSender{ready: true}, `{"phone_number": "601"}`)

	data, _ := out.Data.(map[string]interface{})
	if v, ok := data["bookingId"]; !ok || v != nil {
		t.Errorf("expected bookingId null, got %v (present=%v)", v, ok)
	}
}

func TestInitiateImageCaption(t *testing.T) {
	sender := &fakeSender{ready: true}
	code, _ := post(t, sender, `{"phone_number": "601", "messageType": "image", "message": "https://cdn.example.com/menu.jpg"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	msg := sender.sent[0]
	if msg.Kind != pkgWhatsApp.KindImage || msg.MediaURL != "https://cdn.example.com/menu.jpg" {
		t.Errorf("unexpected outbound %+v", msg)
	}
	if !strings.HasPrefix(msg.Body, "*Hi, Guest") {
		t.Errorf("expected reservation text as caption, got %q", msg.Body)
	}
}

func TestInitiateDocumentDefaults(t *testing.T) {
	sender := &fakeSender{ready: true}
	post(t, sender, `{"phone_number": "601", "messageType": "document", "message": "https://cdn.example.com/terms.pdf"}`)

	msg := sender.sent[0]
	if msg.Kind != pkgWhatsApp.KindDocument {
		t.Fatalf("expected document, got %v", msg.Kind)
	}
	if msg.Mimetype != pkgWhatsApp.DefaultDocumentMimetype || msg.FileName != pkgWhatsApp.DefaultDocumentFileName {
		t.Errorf("expected document defaults, got %+v", msg)
	}
}

func TestInitiateRejects(t *testing.T) {
	tests := []struct {
		name    string
		ready   bool
		body    string
		message string
	}{
		{"missing phone", true, `{"booking_id": "B-1"}`, "Phone number is required"},
		{"not ready", false, `{"phone_number": "601"}`, "WhatsApp client is not ready"},
		{"local media path", true, `{"phone_number": "601", "messageType": "image", "message": "/etc/passwd"}`, ""},
		{"missing media", true, `{"phone_number": "601", "messageType": "document"}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := &fakeSender{ready: tt.ready}
			code, out := post(t, sender, tt.body)
			if code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", code)
			}
			if tt.message != "" && out.Message != tt.message {
				t.Errorf("expected %q, got %q", tt.message, out.Message)
			}
			if len(sender.sent) != 0 {
				t.Error("expected no send")
			}
		})
	}
}
