package usecases

import (
	"testing"

	"wabiz/internal/entities"
)

func boolPtr(v bool) *bool { return &v }

func TestResolveFlag_TruthTable(t *testing.T) {
	tests := []struct {
		name          string
		override      *bool
		tenantSetting bool
		want          bool
	}{
		{"unset defers to tenant true", nil, true, true},
		{"unset defers to tenant false", nil, false, false},
		{"override true wins over tenant true", boolPtr(true), true, true},
		{"override true wins over tenant false", boolPtr(true), false, true},
		{"override false wins over tenant true", boolPtr(false), true, false},
		{"override false wins over tenant false", boolPtr(false), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveFlag(tt.override, tt.tenantSetting)
			if got != tt.want {
				t.Errorf("ResolveFlag(%v, %v) = %v, want %v", tt.override, tt.tenantSetting, got, tt.want)
			}
		})
	}
}

func TestResolveToggles_FlagsAreIndependent(t *testing.T) {
	ov := entities.ConversationOverride{AIEnabled: boolPtr(false)}
	settings := entities.TenantSettings{AIEnabled: true, AutoResponseEnabled: false}

	got := ResolveToggles(ov, settings)
	if got.AIEnabled {
		t.Errorf("AIEnabled = true, want false (conversation override)")
	}
	if got.AutoResponseEnabled {
		t.Errorf("AutoResponseEnabled = true, want false (tenant setting, no override)")
	}
}

func TestDefaultEnabled(t *testing.T) {
	if !DefaultEnabled {
		t.Error("system default must be enabled")
	}
}
