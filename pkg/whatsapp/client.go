package whatsapp

import (
	"context"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
)

// Client is the part of *whatsmeow.Client the session depends on.
type Client interface {
	IsConnected() bool
	IsLoggedIn() bool
	// HasIdentity reports whether the device store holds paired credentials.
	HasIdentity() bool
	Connect() error
	Disconnect()
	GetQRChannel(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error)
	SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	Upload(ctx context.Context, plaintext []byte, appInfo whatsmeow.MediaType) (whatsmeow.UploadResponse, error)
	GetJoinedGroups(ctx context.Context) ([]*types.GroupInfo, error)
	GetAllContacts(ctx context.Context) (map[types.JID]types.ContactInfo, error)
	AddEventHandler(handler whatsmeow.EventHandler) uint32
}

// ClientFactory builds a client from the persisted device. It is called on
// start and whenever the operator relinks the session.
type ClientFactory func(ctx context.Context) (Client, error)

type meowClient struct {
	*whatsmeow.Client
}

func (c *meowClient) HasIdentity() bool {
	return c.Store != nil && c.Store.ID != nil
}

func (c *meowClient) GetAllContacts(ctx context.Context) (map[types.JID]types.ContactInfo, error) {
	return c.Store.Contacts.GetAllContacts(ctx)
}
