package whatsapp

import (
	"fmt"
	"time"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/env"
)

type Config struct {
	DatastoreType     string
	DatastoreURI      string
	LogLevel          string
	ProxyURL          string
	DeviceName        string
	QRTerminal        bool
	RosterCacheTTL    time.Duration
	MediaFetchTimeout time.Duration
	Reconnect         ReconnectPolicy
}

func LoadConfig() (Config, error) {
	var cfg Config
	var err error

	cfg.DatastoreType, err = env.GetEnvString("WHATSAPP_DATASTORE_TYPE")
	if err != nil {
		return cfg, fmt.Errorf("parse WHATSAPP_DATASTORE_TYPE: %w", err)
	}
	cfg.DatastoreURI, err = env.GetEnvString("WHATSAPP_DATASTORE_URI")
	if err != nil {
		return cfg, fmt.Errorf("parse WHATSAPP_DATASTORE_URI: %w", err)
	}

	cfg.LogLevel = env.GetEnvStringOrDefault("WHATSAPP_LOG_LEVEL", "WARN")
	cfg.ProxyURL = env.GetEnvStringOrDefault("WHATSAPP_CLIENT_PROXY_URL", "")
	cfg.DeviceName = env.GetEnvStringOrDefault("WHATSAPP_DEVICE_NAME", "Mac OS")
	cfg.QRTerminal = env.GetEnvBoolOrDefault("WHATSAPP_QR_TERMINAL", true)
	cfg.RosterCacheTTL = env.GetEnvDurationOrDefault("WHATSAPP_ROSTER_CACHE_TTL", 30*time.Second)
	cfg.MediaFetchTimeout = env.GetEnvDurationOrDefault("WHATSAPP_MEDIA_FETCH_TIMEOUT", 30*time.Second)

	cfg.Reconnect = ReconnectPolicy{
		MaxAttempts: env.GetEnvIntOrDefault("WHATSAPP_RECONNECT_MAX_ATTEMPTS", 10, 1),
		BaseBackoff: env.GetEnvDurationOrDefault("WHATSAPP_RECONNECT_BACKOFF_BASE", 2*time.Second),
		MaxBackoff:  env.GetEnvDurationOrDefault("WHATSAPP_RECONNECT_BACKOFF_MAX", 2*time.Minute),
		JitterMax:   env.GetEnvDurationOrDefault("WHATSAPP_RECONNECT_JITTER_MAX", 500*time.Millisecond),
	}

	return cfg, nil
}
