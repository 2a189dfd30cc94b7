package usecases

import "wabiz/internal/entities"

// DefaultEnabled is the system-level default when neither the
// conversation nor the tenant says otherwise.
const DefaultEnabled = true

// ResolveFlag resolves one bot flag through the override chain:
// conversation override, then tenant setting. The tenant setting is
// always concrete, so the system default only matters to callers that
// have no tenant at hand.
func ResolveFlag(override *bool, tenantSetting bool) bool {
	if override != nil {
		return *override
	}
	return tenantSetting
}

// EffectiveToggles is the resolved pair of bot flags for one
// conversation.
type EffectiveToggles struct {
	AIEnabled           bool
	AutoResponseEnabled bool
}

// ResolveToggles resolves both flags independently.
func ResolveToggles(ov entities.ConversationOverride, settings entities.TenantSettings) EffectiveToggles {
	return EffectiveToggles{
		AIEnabled:           ResolveFlag(ov.AIEnabled, settings.AIEnabled),
		AutoResponseEnabled: ResolveFlag(ov.AutoResponseEnabled, settings.AutoResponseEnabled),
	}
}
