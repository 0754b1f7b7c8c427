package contacts

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

type fakeRoster struct {
	contacts []pkgWhatsApp.ContactSummary
	err      error
}

func (f fakeRoster) Contacts(ctx context.Context) ([]pkgWhatsApp.ContactSummary, error) {
	return f.contacts, f.err
}

func list(t *testing.T, roster fakeRoster) (int, router.Response) {
	t.Helper()
	app := fiber.New()
	app.Get("/api/contacts", New(roster).List)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/contacts", nil))
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

func TestList(t *testing.T) {
	code, out := list(t, fakeRoster{contacts: []pkgWhatsApp.ContactSummary{
		{ID: "60123@s.whatsapp.net", Name: "Aina", Number: "60123"},
	}})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	data, _ := out.Data.(map[string]interface{})
	contacts, _ := data["contacts"].([]interface{})
	if len(contacts) != 1 {
		t.Fatalf("expected one contact, got %v", data)
	}
	contact, _ := contacts[0].(map[string]interface{})
	if contact["id"] != "60123@s.whatsapp.net" || contact["name"] != "Aina" || contact["number"] != "60123" {
		t.Errorf("unexpected contact %v", contact)
	}
}

func TestListErrors(t *testing.T) {
	code, out := list(t, fakeRoster{err: pkgWhatsApp.ErrNotReady})
	if code != http.StatusBadRequest || out.Message != "WhatsApp client is not ready" {
		t.Errorf("unexpected not ready response %d %q", code, out.Message)
	}

	code, out = list(t, fakeRoster{err: errors.New("iq timeout")})
	if code != http.StatusInternalServerError || out.Message != "Failed to fetch contacts" || out.Error != "iq timeout" {
		t.Errorf("unexpected failure response %d %+v", code, out)
	}
}
