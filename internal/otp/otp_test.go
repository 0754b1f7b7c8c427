package otp

import (
	"context"
	"encoding/json"
	"errors"
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
	err   error
	sent  []pkgWhatsApp.OutboundMessage
}

func (f *fakeSender) Ready() bool {
	return f.ready
}

func (f *fakeSender) Send(ctx context.Context, msg pkgWhatsApp.OutboundMessage) (pkgWhatsApp.SendResult, error) {
	if f.err != nil {
		return pkgWhatsApp.SendResult{}, f.err
	}
	f.sent = append(f.sent, msg)
	return pkgWhatsApp.SendResult{MessageID: "OTP1", Timestamp: time.Now()}, nil
}

func post(t *testing.T, sender *fakeSender, body string) (int, router.Response) {
	t.Helper()
	app := fiber.New()
	app.Post("/otp", New(sender).Send)

	req := httptest.NewRequest(http.MethodPost, "/otp", strings.NewReader(body))
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

const templateBody = `{
	"to": "+60 123",
	"sessionId": "s-9",
	"extendedMessage": {"whatsappCloudApiTemplateMessageObject": {"components": [
		{"parameters": [{"text": "482910"}]}
	]}}
}`

func TestMessage(t *testing.T) {
	expected := "*123456* is your verification code. For your security, do not share this code."
	if got := Message("123456"); got != expected {
		t.Errorf("unexpected message %q", got)
	}
}

func TestSendRelaysCode(t *testing.T) {
	sender := &fakeSender{ready: true}
	code, out := post(t, sender, templateBody)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %+v", code, out)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one send, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "60123@s.whatsapp.net" || msg.Body != Message("482910") {
		t.Errorf("unexpected outbound %+v", msg)
	}

	data, _ := out.Data.(map[string]interface{})
	if data["otp"] != "482910" || data["phoneNumber"] != "+60 123" || data["sessionId"] != "s-9" || data["messageId"] != "OTP1" {
		t.Errorf("unexpected data %v", data)
	}
}

func TestSendDefaultsSessionID(t *testing.T) {
	body := strings.Replace(templateBody, `"sessionId": "s-9",`, "", 1)
	_, out := post(t, &fakeSender{ready: true}, body)

	data, _ := out.Data.(map[string]interface{})
	if data["sessionId"] != defaultSessionID {
		t.Errorf("expected default session id, got %v", data["sessionId"])
	}
}

func TestSendMissingFieldsReportsDebug(t *testing.T) {
	sender := &fakeSender{ready: false}
	code, out := post(t, sender, `{"to": "601"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
	if out.Message != "Invalid testOTP structure - missing to or OTP text" {
		t.Errorf("unexpected message %q", out.Message)
	}

	data, _ := out.Data.(map[string]interface{})
	debug, _ := data["debug"].(map[string]interface{})
	if debug == nil {
		t.Fatalf("expected debug object, got %v", out.Data)
	}
	if debug["phoneNumber"] != "601" {
		t.Errorf("expected phoneNumber echoed, got %v", debug["phoneNumber"])
	}
	if v, ok := debug["otp"]; !ok || v != nil {
		t.Errorf("expected otp null, got %v (present=%v)", v, ok)
	}
	received, _ := debug["receivedBody"].(map[string]interface{})
	if received["to"] != "601" {
		t.Errorf("expected received body echoed, got %v", debug["receivedBody"])
	}
	if len(sender.sent) != 0 {
		t.Error("expected no send")
	}
}

func TestSendEmptyBodyReportsNullDebug(t *testing.T) {
	sender := &fakeSender{ready: true}
	code, out := post(t, sender, `{}`)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}

	data, _ := out.Data.(map[string]interface{})
	debug, _ := data["debug"].(map[string]interface{})
	if debug == nil {
		t.Fatalf("expected debug object, got %v", out.Data)
	}
	for _, key := range []string{"phoneNumber", "otp"} {
		if v, ok := debug[key]; !ok || v != nil {
			t.Errorf("expected %s null, got %v (present=%v)", key, v, ok)
		}
	}
	if len(sender.sent) != 0 {
		t.Error("expected no send")
	}
}

func TestSendNotReady(t *testing.T) {
	sender := &fakeSender{ready: false}
	code, out := post(t, sender, templateBody)
	if code != http.StatusBadRequest || out.Message != "WhatsApp client is not ready" {
		t.Errorf("unexpected response %d %+v", code, out)
	}
	if len(sender.sent) != 0 {
		t.Error("expected no send")
	}
}

func TestSendFailure(t *testing.T) {
	code, out := post(t, &fakeSender{ready: true, err: errors.New("boom")}, templateBody)
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", code)
	}
	if out.Message != "Failed to send OTP message" || out.Error != "boom" {
		t.Errorf("unexpected envelope %+v", out)
	}
}
