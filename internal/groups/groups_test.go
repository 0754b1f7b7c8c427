package groups

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
	groups []pkgWhatsApp.GroupSummary
	err    error
}

func (f fakeRoster) Groups(ctx context.Context) ([]pkgWhatsApp.GroupSummary, error) {
	return f.groups, f.err
}

func list(t *testing.T, roster fakeRoster) (int, router.Response) {
	t.Helper()
	app := fiber.New()
	app.Get("/api/groups", New(roster).List)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/groups", nil))
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
	code, out := list(t, fakeRoster{groups: []pkgWhatsApp.GroupSummary{
		{ID: "1203@g.us", Subject: "Ops", IsCommunity: true},
	}})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	data, _ := out.Data.(map[string]interface{})
	groups, _ := data["groups"].([]interface{})
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %v", data)
	}
	group, _ := groups[0].(map[string]interface{})
	if group["id"] != "1203@g.us" || group["subject"] != "Ops" || group["isCommunity"] != true {
		t.Errorf("unexpected group %v", group)
	}
}

func TestListErrors(t *testing.T) {
	code, out := list(t, fakeRoster{err: pkgWhatsApp.ErrNotReady})
	if code != http.StatusBadRequest || out.Message != "WhatsApp client is not ready" {
		t.Errorf("unexpected not ready response %d %q", code, out.Message)
	}

	code, out = list(t, fakeRoster{err: errors.New("iq timeout")})
	if code != http.StatusInternalServerError || out.Message != "Failed to fetch groups" || out.Error != "iq timeout" {
		t.Errorf("unexpected failure response %d %+v", code, out)
	}
}
