package whatsapp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/store"
	"golang.org/x/sync/singleflight"
)

type VersionStatus struct {
	CurrentVersion string     `json:"current_version"`
	LastRefreshed  *time.Time `json:"last_refreshed,omitempty"`
	LastError      string     `json:"last_error,omitempty"`
}

// VersionRefresher keeps the advertised WhatsApp Web version current.
// Concurrent refreshes share one request.
type VersionRefresher struct {
	minInterval time.Duration
	http        *resty.Client
	group       singleflight.Group

	mu            sync.RWMutex
	lastRefreshed *time.Time
	lastError     string
}

func NewVersionRefresher(minInterval time.Duration) *VersionRefresher {
	return &VersionRefresher{
		minInterval: minInterval,
		http:        resty.New().SetTimeout(15 * time.Second),
	}
}

func (v *VersionRefresher) Status() VersionStatus {
	v.mu.RLock()
	defer v.mu.RUnlock()

	var last *time.Time
	if v.lastRefreshed != nil {
		t := *v.lastRefreshed
		last = &t
	}
	return VersionStatus{
		CurrentVersion: store.GetWAVersion().String(),
		LastRefreshed:  last,
		LastError:      v.lastError,
	}
}

// Refresh fetches the latest version and applies it with store.SetWAVersion.
// Unless force is set, calls within the minimum interval are skipped and
// report refreshed=false.
func (v *VersionRefresher) Refresh(ctx context.Context, force bool) (VersionStatus, bool, error) {
	if !force && v.minInterval > 0 {
		v.mu.RLock()
		last := v.lastRefreshed
		v.mu.RUnlock()
		if last != nil && time.Since(*last) < v.minInterval {
			return v.Status(), false, nil
		}
	}

	_, err, _ := v.group.Do("refresh", func() (interface{}, error) {
		latest, err := whatsmeow.GetLatestVersion(ctx, v.http.GetClient())
		if err == nil && latest == nil {
			err = errors.New("latest WhatsApp Web version is nil")
		}
		if err == nil {
			store.SetWAVersion(*latest)
		}
		v.record(err)
		return nil, err
	})
	return v.Status(), true, err
}

func (v *VersionRefresher) record(err error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	now := time.Now()
	v.lastRefreshed = &now
	if err != nil {
		v.lastError = err.Error()
	} else {
		v.lastError = ""
	}
}
