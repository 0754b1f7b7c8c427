package whatsapp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sunshineplan/imgconv"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"google.golang.org/protobuf/proto"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
)

type MessageKind string

const (
	KindText     MessageKind = "text"
	KindImage    MessageKind = "image"
	KindDocument MessageKind = "document"
)

const (
	DefaultDocumentMimetype = "application/pdf"
	DefaultDocumentFileName = "Reservation_Details.pdf"
)

var ErrMediaRequired = errors.New("media source is required")

// ParseMessageKind is case-insensitive; unknown kinds are sent as text.
func ParseMessageKind(raw string) MessageKind {
	switch MessageKind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindImage:
		return KindImage
	case KindDocument:
		return KindDocument
	default:
		return KindText
	}
}

// OutboundMessage is one logical send. Body is the text for KindText and the
// caption for media kinds. MediaURL is an http(s) URL or a local file path.
type OutboundMessage struct {
	Kind     MessageKind
	To       Recipient
	Body     string
	MediaURL string
	Mimetype string
	FileName string
}

type SendResult struct {
	MessageID string    `json:"messageId"`
	Timestamp time.Time `json:"timestamp"`
}

func TextMessage(to Recipient, body string) OutboundMessage {
	return OutboundMessage{Kind: KindText, To: to, Body: body}
}

func ImageMessage(to Recipient, source string, caption string) OutboundMessage {
	return OutboundMessage{Kind: KindImage, To: to, Body: caption, MediaURL: source}
}

func DocumentMessage(to Recipient, source string, caption string) OutboundMessage {
	return OutboundMessage{
		Kind:     KindDocument,
		To:       to,
		Body:     caption,
		MediaURL: source,
		Mimetype: DefaultDocumentMimetype,
		FileName: DefaultDocumentFileName,
	}
}

// Send dispatches msg through the ready connection.
func (s *Session) Send(ctx context.Context, msg OutboundMessage) (SendResult, error) {
	client, err := s.readyClient()
	if err != nil {
		return SendResult{}, err
	}

	to, err := msg.To.JID()
	if err != nil {
		return SendResult{}, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}

	content, err := s.buildContent(ctx, client, msg)
	if err != nil {
		return SendResult{}, err
	}

	resp, err := client.SendMessage(ctx, to, content)
	if err != nil {
		return SendResult{}, err
	}

	timestamp := resp.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	return SendResult{MessageID: string(resp.ID), Timestamp: timestamp}, nil
}

func (s *Session) buildContent(ctx context.Context, client Client, msg OutboundMessage) (*waE2E.Message, error) {
	switch msg.Kind {
	case KindImage:
		return s.buildImage(ctx, client, msg)
	case KindDocument:
		return s.buildDocument(ctx, client, msg)
	default:
		return &waE2E.Message{Conversation: proto.String(msg.Body)}, nil
	}
}

func (s *Session) buildImage(ctx context.Context, client Client, msg OutboundMessage) (*waE2E.Message, error) {
	media, err := s.media.Load(ctx, msg.MediaURL)
	if err != nil {
		return nil, err
	}
	mimetype := msg.Mimetype
	if mimetype == "" {
		mimetype = media.Mimetype
	}

	uploaded, err := client.Upload(ctx, media.Data, whatsmeow.MediaImage)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	image := &waE2E.ImageMessage{
		URL:           proto.String(uploaded.URL),
		DirectPath:    proto.String(uploaded.DirectPath),
		Mimetype:      proto.String(mimetype),
		Caption:       proto.String(msg.Body),
		FileLength:    proto.Uint64(uploaded.FileLength),
		FileSHA256:    uploaded.FileSHA256,
		FileEncSHA256: uploaded.FileEncSHA256,
		MediaKey:      uploaded.MediaKey,
	}

	thumbnail, err := imageThumbnail(media.Data)
	if err != nil {
		log.Session("send").WithError(err).Warn("Sending image without thumbnail")
	} else {
		image.JPEGThumbnail = thumbnail
	}

	return &waE2E.Message{ImageMessage: image}, nil
}

func (s *Session) buildDocument(ctx context.Context, client Client, msg OutboundMessage) (*waE2E.Message, error) {
	media, err := s.media.Load(ctx, msg.MediaURL)
	if err != nil {
		return nil, err
	}
	mimetype := msg.Mimetype
	if mimetype == "" {
		mimetype = media.Mimetype
	}
	fileName := msg.FileName
	if fileName == "" {
		fileName = DefaultDocumentFileName
	}

	uploaded, err := client.Upload(ctx, media.Data, whatsmeow.MediaDocument)
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	return &waE2E.Message{
		DocumentMessage: &waE2E.DocumentMessage{
			URL:           proto.String(uploaded.URL),
			DirectPath:    proto.String(uploaded.DirectPath),
			Mimetype:      proto.String(mimetype),
			FileName:      proto.String(fileName),
			Title:         proto.String(fileName),
			Caption:       proto.String(msg.Body),
			FileLength:    proto.Uint64(uploaded.FileLength),
			FileSHA256:    uploaded.FileSHA256,
			FileEncSHA256: uploaded.FileEncSHA256,
			MediaKey:      uploaded.MediaKey,
		},
	}, nil
}

func imageThumbnail(data []byte) ([]byte, error) {
	decoded, err := imgconv.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail source: %w", err)
	}
	encoded := new(bytes.Buffer)
	err = imgconv.Write(encoded,
		imgconv.Resize(decoded, &imgconv.ResizeOption{Width: 72}),
		&imgconv.FormatOption{Format: imgconv.JPEG})
	if err != nil {
		return nil, fmt.Errorf("encode thumbnail: %w", err)
	}
	return encoded.Bytes(), nil
}
