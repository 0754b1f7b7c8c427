package realtime

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	pkgRealtime "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/realtime"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

type fakeSession struct {
	status pkgWhatsApp.Status
}

func (f fakeSession) Status() pkgWhatsApp.Status {
	return f.status
}

func TestSnapshotWithoutQR(t *testing.T) {
	events := Snapshot(pkgWhatsApp.Status{State: pkgWhatsApp.StateReady})
	if len(events) != 1 {
		t.Fatalf("expected status only, got %+v", events)
	}
	if events[0].Event != pkgWhatsApp.EventStatus {
		t.Errorf("expected status event, got %q", events[0].Event)
	}
	data, _ := events[0].Data.(map[string]interface{})
	if data["status"] != pkgWhatsApp.StateReady || data["needsOperator"] != false {
		t.Errorf("unexpected status data %v", data)
	}
}

func TestSnapshotWithQR(t *testing.T) {
	events := Snapshot(pkgWhatsApp.Status{
		State:         pkgWhatsApp.StateQRReady,
		QR:            &pkgWhatsApp.QRCode{Code: "2@abc", DataURL: "data:image/png;base64,AAAA"},
		NeedsOperator: false,
	})
	if len(events) != 2 {
		t.Fatalf("expected status and qr, got %+v", events)
	}
	if events[0].Event != pkgWhatsApp.EventStatus || events[1].Event != pkgWhatsApp.EventQR {
		t.Errorf("expected status before qr, got %q then %q", events[0].Event, events[1].Event)
	}
	data, _ := events[1].Data.(map[string]interface{})
	if data["qr"] != "data:image/png;base64,AAAA" {
		t.Errorf("unexpected qr data %v", data)
	}
}

func TestUpgradeRequired(t *testing.T) {
	handler := New(pkgRealtime.NewHub(1), fakeSession{})
	app := fiber.New()
	app.Get("/ws", handler.Upgrade, handler.Serve())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/ws", nil))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}
