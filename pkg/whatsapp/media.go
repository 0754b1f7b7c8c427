package whatsapp

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Media is a loaded attachment ready for upload.
type Media struct {
	Data     []byte
	Mimetype string
}

// MediaLoader reads attachments from http(s) URLs or local paths.
type MediaLoader struct {
	http *resty.Client
}

func NewMediaLoader(timeout time.Duration) *MediaLoader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &MediaLoader{
		http: resty.New().
			SetTimeout(timeout).
			SetHeader("User-Agent", "WhatsApp-Relay-Gateway/1.0"),
	}
}

func (m *MediaLoader) Load(ctx context.Context, source string) (Media, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return Media{}, ErrMediaRequired
	}

	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		resp, err := m.http.R().SetContext(ctx).Get(source)
		if err != nil {
			return Media{}, fmt.Errorf("fetch media: %w", err)
		}
		if resp.IsError() {
			return Media{}, fmt.Errorf("fetch media: HTTP %d", resp.StatusCode())
		}
		data := resp.Body()
		return Media{Data: data, Mimetype: sniffMimetype(resp.Header().Get("Content-Type"), data)}, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return Media{}, fmt.Errorf("read media: %w", err)
	}
	return Media{Data: data, Mimetype: sniffMimetype("", data)}, nil
}

func sniffMimetype(header string, data []byte) string {
	if header != "" {
		if mediaType, _, err := mime.ParseMediaType(header); err == nil && mediaType != "application/octet-stream" {
			return mediaType
		}
	}
	mediaType, _, _ := mime.ParseMediaType(http.DetectContentType(data))
	return mediaType
}
