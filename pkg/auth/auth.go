package auth

import (
	"time"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/env"
)

// AdminSecretKey guards operator endpoints (/admin/*, /api/relink).
var AdminSecretKey string

// JWTSecretKey signs caller tokens. When empty, caller endpoints are open.
var JWTSecretKey string

// TokenTTL is the default lifetime of issued caller tokens.
var TokenTTL time.Duration

func init() {
	AdminSecretKey, _ = env.GetEnvString("ADMIN_SECRET_KEY")
	JWTSecretKey, _ = env.GetEnvString("AUTH_JWT_SECRET")
	TokenTTL = env.GetEnvDurationOrDefault("AUTH_JWT_TTL", 30*24*time.Hour)
}
