package infrastructure

import (
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"wabiz/internal/interfaces"
)

// WhatsAppManager manages per-tenant linked-device clients.
type WhatsAppManager struct {
	clients map[string]*WhatsAppClient
	mu      sync.RWMutex
	baseDir string
	log     *zap.Logger

	// Callback for registering message handlers per client
	HandlerFactory func(tenantID string) func(interface{})
}

func NewWhatsAppManager(baseDir string, log *zap.Logger) *WhatsAppManager {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		log.Warn("could not create devices directory", zap.Error(err))
	}

	return &WhatsAppManager{
		clients: make(map[string]*WhatsAppClient),
		baseDir: baseDir,
		log:     log,
	}
}

// GetClient returns the existing client for a tenant (nil if none).
func (m *WhatsAppManager) GetClient(tenantID string) *WhatsAppClient {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.clients[tenantID]
}

// GetOrCreateClient gets the existing client or creates a new one with
// a tenant-specific device store.
func (m *WhatsAppManager) GetOrCreateClient(tenantID string) (*WhatsAppClient, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, exists := m.clients[tenantID]; exists {
		return client, nil
	}

	dbPath := fmt.Sprintf("%s/tenant_%s.db", m.baseDir, tenantID)
	client, err := NewWhatsAppClient(dbPath, tenantID, m.log)
	if err != nil {
		return nil, fmt.Errorf("failed to create WhatsApp client for tenant %s: %w", tenantID, err)
	}

	if m.HandlerFactory != nil {
		client.AddHandler(m.HandlerFactory(tenantID))
	}

	m.clients[tenantID] = client
	return client, nil
}

// ConnectClient connects a tenant's client, creating it if needed.
func (m *WhatsAppManager) ConnectClient(tenantID string) (*WhatsAppClient, error) {
	client, err := m.GetOrCreateClient(tenantID)
	if err != nil {
		return nil, err
	}

	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect WhatsApp for tenant %s: %w", tenantID, err)
	}

	return client, nil
}

// DisconnectClient disconnects and forgets a tenant's client.
func (m *WhatsAppManager) DisconnectClient(tenantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if client, exists := m.clients[tenantID]; exists {
		client.Disconnect()
		delete(m.clients, tenantID)
	}
}

// LogoutClient logs out a tenant's WhatsApp session. Returns nil if
// the client doesn't exist or is already logged out.
func (m *WhatsAppManager) LogoutClient(tenantID string) error {
	m.mu.RLock()
	client, exists := m.clients[tenantID]
	m.mu.RUnlock()

	if !exists || client == nil {
		return nil
	}

	if !client.IsLoggedIn() && !client.Client.IsConnected() {
		m.mu.Lock()
		delete(m.clients, tenantID)
		m.mu.Unlock()
		return nil
	}

	err := client.Logout()

	m.mu.Lock()
	delete(m.clients, tenantID)
	m.mu.Unlock()

	return err
}

// MessengerFor returns the tenant's connected session as an outbound
// transport. Errors when the tenant never paired or is offline.
func (m *WhatsAppManager) MessengerFor(tenantID string) (interfaces.Messenger, error) {
	client := m.GetClient(tenantID)
	if client == nil || !client.IsLoggedIn() {
		return nil, fmt.Errorf("whatsapp session for tenant %s is not connected", tenantID)
	}
	return client, nil
}

// ConnectedTenants returns the tenant IDs with a logged-in client.
func (m *WhatsAppManager) ConnectedTenants() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.clients))
	for id, client := range m.clients {
		if client.IsConnected() {
			ids = append(ids, id)
		}
	}
	return ids
}
