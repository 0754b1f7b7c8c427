// Package whatsapptest provides an in-memory stand-in for the whatsmeow client.
package whatsapptest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// SentMessage records one SendMessage call.
type SentMessage struct {
	To      types.JID
	Message *waE2E.Message
}

// MockClient satisfies whatsapp.Client. Exported fields configure return
// values; they must be set before the client is handed to a session.
type MockClient struct {
	mu sync.Mutex

	Identity bool
	// ConnectEmitsConnected makes Connect deliver *events.Connected to the
	// registered handlers, like a healthy login.
	ConnectEmitsConnected bool
	// ConnectBlock, when set, holds Connect until the channel is closed.
	ConnectBlock chan struct{}

	ConnectError      error
	QRChannel         chan whatsmeow.QRChannelItem
	QRChannelError    error
	SendMessageError  error
	UploadResponse    whatsmeow.UploadResponse
	UploadError       error
	JoinedGroups      []*types.GroupInfo
	JoinedGroupsError error
	Contacts          map[types.JID]types.ContactInfo
	ContactsError     error

	connected   bool
	handlers    []whatsmeow.EventHandler
	sent        []SentMessage
	uploads     []whatsmeow.MediaType
	connects    int
	disconnects int
	groupCalls  int
	nextID      int
}

func NewMockClient() *MockClient {
	return &MockClient{
		Identity:              true,
		ConnectEmitsConnected: true,
		UploadResponse: whatsmeow.UploadResponse{
			URL:        "https://mmg.whatsapp.net/mock",
			DirectPath: "/mock",
			FileLength: 1,
		},
	}
}

func (m *MockClient) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

func (m *MockClient) IsLoggedIn() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected && m.Identity
}

func (m *MockClient) HasIdentity() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Identity
}

func (m *MockClient) Connect() error {
	m.mu.Lock()
	m.connects++
	if block := m.ConnectBlock; block != nil {
		m.mu.Unlock()
		<-block
		m.mu.Lock()
	}
	if m.ConnectError != nil {
		err := m.ConnectError
		m.mu.Unlock()
		return err
	}
	m.connected = true
	emit := m.ConnectEmitsConnected && m.Identity
	m.mu.Unlock()

	if emit {
		m.Emit(&events.Connected{})
	}
	return nil
}

func (m *MockClient) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnects++
	m.connected = false
}

func (m *MockClient) GetQRChannel(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.QRChannelError != nil {
		return nil, m.QRChannelError
	}
	if m.QRChannel == nil {
		m.QRChannel = make(chan whatsmeow.QRChannelItem, 4)
	}
	return m.QRChannel, nil
}

func (m *MockClient) SendMessage(ctx context.Context, to types.JID, message *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendMessageError != nil {
		return whatsmeow.SendResponse{}, m.SendMessageError
	}
	m.sent = append(m.sent, SentMessage{To: to, Message: message})
	m.nextID++
	return whatsmeow.SendResponse{
		ID:        types.MessageID(fmt.Sprintf("MOCK%d", m.nextID)),
		Timestamp: time.Now(),
	}, nil
}

func (m *MockClient) Upload(ctx context.Context, plaintext []byte, appInfo whatsmeow.MediaType) (whatsmeow.UploadResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploads = append(m.uploads, appInfo)
	if m.UploadError != nil {
		return whatsmeow.UploadResponse{}, m.UploadError
	}
	resp := m.UploadResponse
	resp.FileLength = uint64(len(plaintext))
	return resp, nil
}

func (m *MockClient) GetJoinedGroups(ctx context.Context) ([]*types.GroupInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.groupCalls++
	return m.JoinedGroups, m.JoinedGroupsError
}

func (m *MockClient) GetAllContacts(ctx context.Context) (map[types.JID]types.ContactInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Contacts, m.ContactsError
}

func (m *MockClient) AddEventHandler(handler whatsmeow.EventHandler) uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
	return uint32(len(m.handlers))
}

// Emit delivers evt to every registered handler on the calling goroutine.
func (m *MockClient) Emit(evt interface{}) {
	m.mu.Lock()
	handlers := append([]whatsmeow.EventHandler(nil), m.handlers...)
	m.mu.Unlock()

	for _, handler := range handlers {
		handler(evt)
	}
}

func (m *MockClient) Sent() []SentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SentMessage(nil), m.sent...)
}

func (m *MockClient) Uploads() []whatsmeow.MediaType {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]whatsmeow.MediaType(nil), m.uploads...)
}

func (m *MockClient) Connects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connects
}

func (m *MockClient) Disconnects() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disconnects
}

func (m *MockClient) GroupCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.groupCalls
}

// SetConnectError changes the Connect result after the client is in use.
func (m *MockClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConnectError = err
}
