package entities

// InboundMessage is a transport-parsed inbound WhatsApp message before
// it enters the pipeline. Transports (webhook, whatsmeow events)
// normalize into this shape.
type InboundMessage struct {
	TenantID   string
	From       string // End-user phone number, digits only
	To         string // Tenant business number the message arrived on
	Text       string
	MediaURL   string
	ProviderID string // Transport message SID, if any
}
