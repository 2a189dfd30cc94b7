package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	waLog "go.mau.fi/whatsmeow/util/log"
	"go.uber.org/zap"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

// WhatsAppClient wraps one linked WhatsApp device belonging to a tenant.
type WhatsAppClient struct {
	Client   *whatsmeow.Client
	TenantID string

	log    *zap.Logger
	qrCode string
	qrLock sync.RWMutex
}

func NewWhatsAppClient(dbPath, tenantID string, log *zap.Logger) (*WhatsAppClient, error) {
	dbLog := waLog.Noop
	container, err := sqlstore.New(context.Background(), "sqlite", "file:"+dbPath+"?_pragma=foreign_keys(1)", dbLog)
	if err != nil {
		return nil, fmt.Errorf("failed to open device store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	client := whatsmeow.NewClient(deviceStore, waLog.Noop)

	return &WhatsAppClient{
		Client:   client,
		TenantID: tenantID,
		log:      log.With(zap.String("tenant_id", tenantID)),
	}, nil
}

// Connect establishes the session. A device with no stored identity
// starts the QR pairing flow; GetQR exposes the current code.
func (w *WhatsAppClient) Connect() error {
	if w.Client.Store.ID == nil {
		qrChan, _ := w.Client.GetQRChannel(context.Background())
		if err := w.Client.Connect(); err != nil {
			return err
		}
		go w.watchQR(qrChan)
		return nil
	}

	if err := w.Client.Connect(); err != nil {
		return err
	}
	w.log.Info("whatsapp connected (existing session)")
	return nil
}

func (w *WhatsAppClient) watchQR(qrChan <-chan whatsmeow.QRChannelItem) {
	for evt := range qrChan {
		if evt.Event == "code" {
			w.qrLock.Lock()
			w.qrCode = evt.Code
			w.qrLock.Unlock()
			w.log.Info("new pairing QR code generated")
		} else {
			w.log.Info("whatsapp login event", zap.String("event", evt.Event))
		}
	}
}

func (w *WhatsAppClient) GetQR() string {
	w.qrLock.RLock()
	defer w.qrLock.RUnlock()
	return w.qrCode
}

func (w *WhatsAppClient) IsLoggedIn() bool {
	return w.Client.Store.ID != nil
}

// IsConnected returns true if client is connected and logged in
func (w *WhatsAppClient) IsConnected() bool {
	return w.Client.IsConnected() && w.Client.Store.ID != nil
}

// DeviceInfo returns the linked phone number and push name.
func (w *WhatsAppClient) DeviceInfo() (string, string) {
	if w.Client.Store.ID == nil {
		return "", ""
	}
	return w.Client.Store.ID.User, w.Client.Store.PushName
}

// Logout clears the session and restarts the pairing flow.
func (w *WhatsAppClient) Logout() error {
	w.qrLock.Lock()
	w.qrCode = ""
	w.qrLock.Unlock()

	if err := w.Client.Logout(context.Background()); err != nil {
		return err
	}

	w.Client.Disconnect()

	qrChan, _ := w.Client.GetQRChannel(context.Background())
	if err := w.Client.Connect(); err != nil {
		w.log.Warn("failed to reconnect after logout", zap.Error(err))
		return err
	}
	go w.watchQR(qrChan)

	return nil
}

func (w *WhatsAppClient) Disconnect() {
	w.Client.Disconnect()
}

func (w *WhatsAppClient) AddHandler(handler func(interface{})) {
	w.Client.AddEventHandler(handler)
}

// SendMessage implements interfaces.Messenger. Accepts a bare phone
// number and converts it to a JID.
func (w *WhatsAppClient) SendMessage(to string, content string) error {
	jid, err := types.ParseJID(to + "@s.whatsapp.net")
	if err != nil {
		return fmt.Errorf("invalid number format: %w", err)
	}

	_, err = w.Client.SendMessage(context.Background(), jid, &waProto.Message{
		Conversation: &content,
	})
	return err
}

// SendPresence broadcasts a "composing" indicator before a reply.
func (w *WhatsAppClient) SendPresence(to string) {
	jid, err := types.ParseJID(to + "@s.whatsapp.net")
	if err != nil {
		return
	}
	w.Client.SendPresence(context.Background(), types.PresenceAvailable)
	w.Client.SendChatPresence(context.Background(), jid, types.ChatPresenceComposing, types.ChatPresenceMediaText)
}

// ParseMessage extracts the sender phone number and text body from an
// inbound event.
func (w *WhatsAppClient) ParseMessage(evt *events.Message) (string, string) {
	sender := strings.TrimSuffix(evt.Info.Sender.User, "@s.whatsapp.net")
	var content string

	if evt.Message.Conversation != nil {
		content = *evt.Message.Conversation
	} else if evt.Message.ExtendedTextMessage != nil {
		content = *evt.Message.ExtendedTextMessage.Text
	}

	return sender, content
}
