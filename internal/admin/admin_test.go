package admin

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

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/auth"
	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/router"
	pkgWhatsApp "github.com/gdbrns/go-whatsapp-relay-gateway/pkg/whatsapp"
)

type fakeVersions struct {
	status pkgWhatsApp.VersionStatus
	forced []bool
}

func (f *fakeVersions) Status() pkgWhatsApp.VersionStatus {
	return f.status
}

func (f *fakeVersions) Refresh(ctx context.Context, force bool) (pkgWhatsApp.VersionStatus, bool, error) {
	f.forced = append(f.forced, force)
	return f.status, force, nil
}

func withJWTSecret(t *testing.T, secret string) {
	t.Helper()
	previous := auth.JWTSecretKey
	auth.JWTSecretKey = secret
	t.Cleanup(func() { auth.JWTSecretKey = previous })
}

func newApp(versions *fakeVersions) *fiber.App {
	handler := New(versions)
	app := fiber.New()
	app.Post("/admin/tokens", handler.IssueToken)
	app.Get("/admin/whatsapp/version", handler.GetWhatsAppWebVersion)
	app.Post("/admin/whatsapp/version/refresh", handler.RefreshWhatsAppWebVersion)
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (int, router.Response) {
	t.Helper()
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

func issue(t *testing.T, body string) (int, router.Response) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/tokens", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(t, newApp(&fakeVersions{}), req)
}

func TestIssueToken(t *testing.T) {
	withJWTSecret(t, "test-secret")

	code, out := issue(t, `{"caller": " crm ", "ttl": "1h"}`)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %+v", code, out)
	}

	data, _ := out.Data.(map[string]interface{})
	token, _ := data["token"].(string)
	claims, err := auth.ValidateCallerToken(token)
	if err != nil {
		t.Fatalf("issued token does not validate: %v", err)
	}
	if claims.Caller != "crm" || data["caller"] != "crm" {
		t.Errorf("expected trimmed caller, got %q / %v", claims.Caller, data["caller"])
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Errorf("expected one hour expiry, got %v", claims.ExpiresAt)
	}
	if _, ok := data["expiresAt"]; !ok {
		t.Error("expected expiresAt in response")
	}
}

func TestIssueTokenWithoutExpiry(t *testing.T) {
	withJWTSecret(t, "test-secret")

	_, out := issue(t, `{"caller": "crm", "ttl": "0s"}`)
	data, _ := out.Data.(map[string]interface{})
	if _, ok := data["expiresAt"]; ok {
		t.Errorf("expected no expiresAt, got %v", data["expiresAt"])
	}
}

func TestIssueTokenRejects(t *testing.T) {
	withJWTSecret(t, "test-secret")

	tests := []struct {
		name string
		body string
	}{
		{"missing caller", `{"ttl": "1h"}`},
		{"negative ttl", `{"caller": "crm", "ttl": "-1h"}`},
		{"bad ttl", `{"caller": "crm", "ttl": "soon"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := issue(t, tt.body); code != http.StatusBadRequest {
				t.Errorf("expected 400, got %d", code)
			}
		})
	}
}

func TestIssueTokenWithoutSecret(t *testing.T) {
	withJWTSecret(t, "")

	code, out := issue(t, `{"caller": "crm"}`)
	if code != http.StatusInternalServerError || out.Error != auth.ErrJWTSecretNotSet.Error() {
		t.Errorf("expected 500 without secret, got %d %+v", code, out)
	}
}

func TestWhatsAppWebVersion(t *testing.T) {
	versions := &fakeVersions{status: pkgWhatsApp.VersionStatus{CurrentVersion: "2.3000.1"}}
	app := newApp(versions)

	code, out := do(t, app, httptest.NewRequest(http.MethodGet, "/admin/whatsapp/version", nil))
	data, _ := out.Data.(map[string]interface{})
	if code != http.StatusOK || data["current_version"] != "2.3000.1" {
		t.Errorf("unexpected version response %d %v", code, out.Data)
	}

	code, out = do(t, app, httptest.NewRequest(http.MethodPost, "/admin/whatsapp/version/refresh?force=true", nil))
	data, _ = out.Data.(map[string]interface{})
	if code != http.StatusOK || data["refreshed"] != true {
		t.Errorf("unexpected refresh response %d %v", code, out.Data)
	}
	if len(versions.forced) != 1 || !versions.forced[0] {
		t.Errorf("expected one forced refresh, got %v", versions.forced)
	}
}
