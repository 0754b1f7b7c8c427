package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waCompanionReg"
	"go.mau.fi/whatsmeow/store"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"google.golang.org/protobuf/proto"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
)

// Datastore persists the pairing credentials and signal keys of the session.
// whatsmeow writes every credential mutation through the container, so the
// relay only loads the device and hands it to the client.
type Datastore struct {
	container *sqlstore.Container
	driver    string
}

func OpenDatastore(ctx context.Context, driver string, uri string, logLevel string) (*Datastore, error) {
	driver = normalizeDatastoreDriver(driver)
	if driver == "" {
		return nil, errors.New("whatsapp datastore driver is empty")
	}
	uri = normalizeDatastoreDSN(driver, uri)

	log.Session("datastore").Info("Initializing WhatsApp datastore with driver=" + driver)

	container, err := sqlstore.New(ctx, driver, uri, log.WhatsMeow("Database", logLevel))
	if err != nil {
		return nil, fmt.Errorf("open whatsapp datastore: %w", err)
	}

	return &Datastore{container: container, driver: driver}, nil
}

// Load returns the stored device, or a fresh unpaired one when the store is empty.
func (d *Datastore) Load(ctx context.Context) (*store.Device, error) {
	device, err := d.container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("load whatsapp device: %w", err)
	}
	return device, nil
}

func (d *Datastore) Driver() string {
	return d.driver
}

func (d *Datastore) Close() error {
	return d.container.Close()
}

// NewClientFactory wires the datastore into whatsmeow clients. Automatic
// reconnects are disabled because the session owns the reconnect policy.
func NewClientFactory(ds *Datastore, cfg Config) ClientFactory {
	store.DeviceProps.Os = proto.String(cfg.DeviceName)
	store.DeviceProps.PlatformType = waCompanionReg.DeviceProps_DESKTOP.Enum()
	store.DeviceProps.RequireFullSync = proto.Bool(false)

	return func(ctx context.Context) (Client, error) {
		device, err := ds.Load(ctx)
		if err != nil {
			return nil, err
		}

		client := whatsmeow.NewClient(device, log.WhatsMeow("Client", cfg.LogLevel))
		if cfg.ProxyURL != "" {
			if err := client.SetProxyAddress(cfg.ProxyURL); err != nil {
				return nil, fmt.Errorf("set proxy: %w", err)
			}
		}
		client.EnableAutoReconnect = false
		client.AutoTrustIdentity = true

		return &meowClient{Client: client}, nil
	}
}

func normalizeDatastoreDriver(driver string) string {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "postgresql", "postgres", "pgx":
		return "pgx"
	case "pq", "libpq":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return strings.ToLower(strings.TrimSpace(driver))
	}
}

func appendDSNParam(current string, key string, value string) string {
	if strings.Contains(current, key+"=") {
		return current
	}
	separator := "?"
	if strings.Contains(current, "?") {
		if strings.HasSuffix(current, "?") || strings.HasSuffix(current, "&") {
			separator = ""
		} else {
			separator = "&"
		}
	}
	return current + separator + key + "=" + value
}

func normalizeDatastoreDSN(driver string, dsn string) string {
	switch driver {
	case "pgx":
		dsn = appendDSNParam(dsn, "prefer_simple_protocol", "true")
		dsn = appendDSNParam(dsn, "statement_cache_capacity", "0")
		dsn = appendDSNParam(dsn, "default_query_exec_mode", "simple_protocol")
	case "sqlite3":
		if !strings.HasPrefix(dsn, "file:") {
			dsn = "file:" + dsn
		}
		dsn = appendDSNParam(dsn, "_foreign_keys", "on")
	}
	return dsn
}
