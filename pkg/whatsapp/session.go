package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/types/events"
	"golang.org/x/sync/singleflight"

	"github.com/gdbrns/go-whatsapp-relay-gateway/pkg/log"
)

type State string

const (
	StateDisconnected State = "disconnected"
	StateQRReady      State = "qr_ready"
	StateReady        State = "ready"
)

// Realtime event names pushed to the Publisher.
const (
	EventStatus = "status"
	EventQR     = "qr"
)

var (
	ErrNotReady       = errors.New("whatsapp client is not ready")
	ErrNotStarted     = errors.New("whatsapp session is not started")
	ErrAlreadyStarted = errors.New("whatsapp session is already started")
)

// Publisher receives every state change. Implementations must not block.
type Publisher interface {
	Publish(event string, data interface{})
}

// MessageHandler is called for every inbound message in its own goroutine.
type MessageHandler func(ctx context.Context, msg *events.Message)

// Status is a point-in-time snapshot of the session.
type Status struct {
	State         State
	QR            *QRCode
	NeedsOperator bool
	Attempts      int
	LastError     string
}

type Options struct {
	ClientFactory ClientFactory
	Policy        ReconnectPolicy
	Publisher     Publisher
	Media         *MediaLoader
	RosterTTL     time.Duration
	// QRTerminal prints every pairing code to QROutput (stdout by default).
	QRTerminal bool
	QROutput   io.Writer
}

// Session owns the single WhatsApp connection of the process.
type Session struct {
	factory    ClientFactory
	policy     ReconnectPolicy
	publisher  Publisher
	media      *MediaLoader
	roster     *cache.Cache
	qrTerminal bool
	qrOutput   io.Writer

	connectGroup singleflight.Group

	mu             sync.RWMutex
	ctx            context.Context
	cancel         context.CancelFunc
	client         Client
	state          State
	qr             *QRCode
	needsOperator  bool
	attempts       int
	lastError      string
	reconnectTimer *time.Timer
	qrCancel       context.CancelFunc
	handlers       []MessageHandler
}

func NewSession(opts Options) *Session {
	if opts.Publisher == nil {
		opts.Publisher = nopPublisher{}
	}
	if opts.Media == nil {
		opts.Media = NewMediaLoader(0)
	}
	if opts.RosterTTL <= 0 {
		opts.RosterTTL = 30 * time.Second
	}
	if opts.QROutput == nil {
		opts.QROutput = os.Stdout
	}

	return &Session{
		factory:    opts.ClientFactory,
		policy:     opts.Policy.normalized(),
		publisher:  opts.Publisher,
		media:      opts.Media,
		roster:     cache.New(opts.RosterTTL, 2*opts.RosterTTL),
		qrTerminal: opts.QRTerminal,
		qrOutput:   opts.QROutput,
		state:      StateDisconnected,
	}
}

// Start builds the client and performs the first connect. A failed first
// connect is handed to the reconnect policy and is not returned.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.ctx != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.mu.Unlock()

	if err := s.connect(ctx); err != nil {
		log.Session("start").WithError(err).Error("Initial connect failed")
		s.scheduleReconnect(err)
	}
	return nil
}

// Stop cancels pending reconnects and disconnects the client.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.stopTimersLocked()
	client := s.client
	s.state = StateDisconnected
	s.qr = nil
	s.mu.Unlock()

	if client != nil {
		client.Disconnect()
	}
	log.Session("stop").Info("Session stopped")
}

// Relink clears the operator flag and connects with a client built from a
// fresh store load. A logged out device gets a new QR code.
func (s *Session) Relink(ctx context.Context) error {
	s.mu.Lock()
	if s.ctx == nil || s.ctx.Err() != nil {
		s.mu.Unlock()
		return ErrNotStarted
	}
	s.stopTimersLocked()
	old := s.client
	s.client = nil
	s.needsOperator = false
	s.attempts = 0
	s.lastError = ""
	s.state = StateDisconnected
	s.qr = nil
	s.mu.Unlock()

	if old != nil {
		old.Disconnect()
	}
	s.publishStatus()

	log.Session("relink").Info("Relinking session")
	if err := s.connect(ctx); err != nil {
		s.scheduleReconnect(err)
		return err
	}
	return nil
}

func (s *Session) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := Status{
		State:         s.state,
		NeedsOperator: s.needsOperator,
		Attempts:      s.attempts,
		LastError:     s.lastError,
	}
	if s.qr != nil {
		qr := *s.qr
		status.QR = &qr
	}
	return status
}

func (s *Session) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state == StateReady && s.client != nil
}

func (s *Session) OnMessage(handler MessageHandler) {
	s.mu.Lock()
	s.handlers = append(s.handlers, handler)
	s.mu.Unlock()
}

func (s *Session) readyClient() (Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateReady || s.client == nil {
		return nil, ErrNotReady
	}
	return s.client, nil
}

func (s *Session) connect(ctx context.Context) error {
	_, err, _ := s.connectGroup.Do("connect", func() (interface{}, error) {
		return nil, s.dial(ctx)
	})
	return err
}

// dial connects the current client. A Relink that swaps the client while
// Connect is in flight makes the result stale, so dial goes again with the
// replacement instead of reporting on a client nobody holds.
func (s *Session) dial(ctx context.Context) error {
	for {
		client, err := s.ensureClient(ctx)
		if err != nil {
			return err
		}

		err = s.dialClient(client)
		if s.isCurrent(client) {
			return err
		}

		client.Disconnect()
		s.mu.RLock()
		sessionCtx := s.ctx
		s.mu.RUnlock()
		if sessionCtx != nil && sessionCtx.Err() != nil {
			return sessionCtx.Err()
		}
		log.Session("connect").Debug("Client replaced during connect, dialing again")
	}
}

func (s *Session) dialClient(client Client) error {
	client.Disconnect()

	if !client.HasIdentity() {
		s.mu.Lock()
		if s.qrCancel != nil {
			s.qrCancel()
		}
		qrCtx, qrCancel := context.WithCancel(s.ctx)
		s.qrCancel = qrCancel
		s.mu.Unlock()

		qrChan, err := client.GetQRChannel(qrCtx)
		if err != nil {
			qrCancel()
			return fmt.Errorf("open qr channel: %w", err)
		}
		go s.watchQR(qrCtx, client, qrChan)
	}

	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

func (s *Session) ensureClient(ctx context.Context) (Client, error) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client != nil {
		return client, nil
	}

	if s.factory == nil {
		return nil, errors.New("whatsapp client factory is not configured")
	}
	client, err := s.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load device: %w", err)
	}
	client.AddEventHandler(func(evt interface{}) {
		s.handleEvent(client, evt)
	})

	s.mu.Lock()
	s.client = client
	s.mu.Unlock()
	return client, nil
}

func (s *Session) isCurrent(client Client) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client == client
}

func (s *Session) handleEvent(client Client, evt interface{}) {
	if !s.isCurrent(client) {
		return
	}

	switch e := evt.(type) {
	case *events.Connected:
		s.markReady()
	case *events.PairSuccess:
		log.Session("pair").Info("Paired as " + log.MaskJID(e.ID.String()))
	case *events.LoggedOut:
		s.halt(fmt.Sprintf("logged out: %s", e.Reason.String()))
	case *events.ConnectFailure:
		if e.Reason.IsLoggedOut() {
			s.halt(fmt.Sprintf("connect failure: %s", e.Reason.String()))
			return
		}
		s.markDisconnected(fmt.Errorf("connect failure: %s %s", e.Reason.String(), e.Message))
	case *events.StreamReplaced:
		s.markDisconnected(errors.New("stream replaced"))
	case *events.Disconnected:
		s.markDisconnected(errors.New("disconnected"))
	case *events.TemporaryBan:
		log.Session("event").Error(fmt.Sprintf("Temporarily banned, reason=%s, expires=%s", e.Code, e.Expire))
	case *events.KeepAliveTimeout:
		log.Session("event").Warn(fmt.Sprintf("Keepalive timeout, errors=%d, lastSuccess=%s", e.ErrorCount, e.LastSuccess.Format(time.RFC3339)))
	case *events.Message:
		s.dispatch(e)
	}
}

func (s *Session) dispatch(msg *events.Message) {
	s.mu.RLock()
	handlers := append([]MessageHandler(nil), s.handlers...)
	ctx := s.ctx
	s.mu.RUnlock()

	for _, handler := range handlers {
		go handler(ctx, msg)
	}
}

func (s *Session) markReady() {
	s.mu.Lock()
	s.state = StateReady
	s.qr = nil
	s.attempts = 0
	s.needsOperator = false
	s.lastError = ""
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	s.mu.Unlock()

	s.roster.Flush()
	log.Session("event").Info("Client is ready")
	s.publishStatus()
}

// halt is the terminal state: no reconnect until Relink.
func (s *Session) halt(reason string) {
	s.mu.Lock()
	s.state = StateDisconnected
	s.qr = nil
	s.needsOperator = true
	s.lastError = reason
	s.stopTimersLocked()
	s.mu.Unlock()

	log.Session("event").Error("Session needs operator action: " + reason)
	s.publishStatus()
}

func (s *Session) markDisconnected(cause error) {
	s.mu.Lock()
	s.state = StateDisconnected
	s.qr = nil
	s.mu.Unlock()

	log.Session("event").WithError(cause).Warn("Client disconnected")
	s.publishStatus()
	s.scheduleReconnect(cause)
}

func (s *Session) scheduleReconnect(cause error) {
	s.mu.Lock()
	if s.ctx == nil || s.ctx.Err() != nil || s.needsOperator || s.reconnectTimer != nil {
		s.mu.Unlock()
		return
	}
	if cause != nil {
		s.lastError = cause.Error()
	}
	s.attempts++
	attempt := s.attempts
	if s.policy.Exhausted(attempt) {
		s.needsOperator = true
		s.state = StateDisconnected
		s.mu.Unlock()

		log.Session("reconnect").Error(fmt.Sprintf("Reconnect budget of %d attempts exhausted", s.policy.MaxAttempts))
		s.publishStatus()
		return
	}

	delay := s.policy.Backoff(attempt)
	s.reconnectTimer = time.AfterFunc(delay, s.reconnect)
	s.mu.Unlock()

	log.Session("reconnect").Info(fmt.Sprintf("Reconnect attempt %d/%d in %s", attempt, s.policy.MaxAttempts, delay))
}

func (s *Session) reconnect() {
	s.mu.Lock()
	s.reconnectTimer = nil
	ctx := s.ctx
	halted := s.needsOperator
	s.mu.Unlock()

	if ctx == nil || ctx.Err() != nil || halted {
		return
	}
	if err := s.connect(ctx); err != nil {
		log.Session("reconnect").WithError(err).Warn("Reconnect failed")
		s.scheduleReconnect(err)
	}
}

func (s *Session) watchQR(ctx context.Context, client Client, qrChan <-chan whatsmeow.QRChannelItem) {
	for {
		select {
		case <-ctx.Done():
			return
		case item, ok := <-qrChan:
			if !ok {
				return
			}
			if !s.isCurrent(client) {
				return
			}

			switch item.Event {
			case whatsmeow.QRChannelEventCode:
				s.setQR(item.Code)
			case whatsmeow.QRChannelSuccess.Event:
				log.Session("qr").Info("QR code scanned")
				return
			case whatsmeow.QRChannelClientOutdated.Event:
				s.halt("whatsapp client version is outdated for QR pairing")
				return
			case whatsmeow.QRChannelTimeout.Event:
				client.Disconnect()
				s.markDisconnected(errors.New("qr channel timed out"))
				return
			default:
				cause := item.Error
				if cause == nil {
					cause = fmt.Errorf("qr channel event %q", item.Event)
				}
				client.Disconnect()
				s.markDisconnected(cause)
				return
			}
		}
	}
}

func (s *Session) setQR(code string) {
	qr, err := RenderQR(code)
	if err != nil {
		log.Session("qr").WithError(err).Error("Failed to render QR code")
		return
	}

	s.mu.Lock()
	s.state = StateQRReady
	s.qr = &qr
	s.mu.Unlock()

	if s.qrTerminal {
		PrintQR(s.qrOutput, code)
	}
	log.Session("qr").Info("QR code received, scan it with WhatsApp")

	s.publisher.Publish(EventQR, map[string]interface{}{"qr": qr.DataURL})
	s.publishStatus()
}

func (s *Session) publishStatus() {
	status := s.Status()
	s.publisher.Publish(EventStatus, map[string]interface{}{
		"status":        status.State,
		"needsOperator": status.NeedsOperator,
	})
}

func (s *Session) stopTimersLocked() {
	if s.reconnectTimer != nil {
		s.reconnectTimer.Stop()
		s.reconnectTimer = nil
	}
	if s.qrCancel != nil {
		s.qrCancel()
		s.qrCancel = nil
	}
}

type nopPublisher struct{}

func (nopPublisher) Publish(string, interface{}) {}
