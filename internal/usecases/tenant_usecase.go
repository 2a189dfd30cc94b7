package usecases

import (
	"context"
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"wabiz/internal/entities"
	"wabiz/internal/repository"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// TenantUsecase handles business onboarding and settings management.
type TenantUsecase struct {
	tenants *repository.TenantRepository
	users   *repository.UserRepository
	usage   *repository.UsageRepository
	log     *zap.Logger
}

func NewTenantUsecase(tenants *repository.TenantRepository, users *repository.UserRepository, usage *repository.UsageRepository, log *zap.Logger) *TenantUsecase {
	return &TenantUsecase{tenants: tenants, users: users, usage: usage, log: log}
}

func validateTenant(t *entities.Tenant) error {
	if strings.TrimSpace(t.Name) == "" {
		return &entities.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !phonePattern.MatchString(t.WhatsAppNumber) {
		return &entities.ValidationError{Field: "whatsapp_number", Reason: "must be a phone number in international format"}
	}
	if t.Email != "" && !strings.Contains(t.Email, "@") {
		return &entities.ValidationError{Field: "email", Reason: "must be a valid email address"}
	}
	return nil
}

// Onboard creates a tenant with bot flags enabled and provisions its
// first dashboard account.
func (uc *TenantUsecase) Onboard(ctx context.Context, t *entities.Tenant, adminUsername, adminPassword string) error {
	if err := validateTenant(t); err != nil {
		return err
	}
	if adminUsername == "" || len(adminPassword) < 8 {
		return &entities.ValidationError{Field: "admin", Reason: "username required and password must be at least 8 characters"}
	}

	t.Settings.AIEnabled = true
	t.Settings.AutoResponseEnabled = true
	if err := uc.tenants.Create(ctx, t); err != nil {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	owner := &entities.User{
		Username:     adminUsername,
		PasswordHash: string(hashed),
		Role:         "owner",
		TenantID:     t.ID,
		IsActive:     true,
	}
	if err := uc.users.Create(ctx, owner); err != nil {
		uc.log.Error("tenant created but owner account failed",
			zap.String("tenant_id", t.ID), zap.Error(err))
		return err
	}

	uc.log.Info("tenant onboarded",
		zap.String("tenant_id", t.ID),
		zap.String("whatsapp_number", t.WhatsAppNumber))
	return nil
}

func (uc *TenantUsecase) Get(ctx context.Context, tenantID string) (*entities.Tenant, error) {
	return uc.tenants.Get(ctx, tenantID)
}

func (uc *TenantUsecase) List(ctx context.Context) ([]entities.Tenant, error) {
	return uc.tenants.GetAll(ctx)
}

func (uc *TenantUsecase) UpdateProfile(ctx context.Context, t *entities.Tenant) error {
	if err := validateTenant(t); err != nil {
		return err
	}
	return uc.tenants.UpdateProfile(ctx, t)
}

func (uc *TenantUsecase) UpdateSettings(ctx context.Context, tenantID string, s entities.TenantSettings) error {
	if s.DailyLimit < 0 || s.MonthlyLimit < 0 {
		return &entities.ValidationError{Field: "limits", Reason: "must not be negative"}
	}
	return uc.tenants.UpdateSettings(ctx, tenantID, s)
}

func (uc *TenantUsecase) ToggleAI(ctx context.Context, tenantID string, enabled bool) error {
	return uc.tenants.ToggleAI(ctx, tenantID, enabled)
}

func (uc *TenantUsecase) ToggleAutoResponse(ctx context.Context, tenantID string, enabled bool) error {
	return uc.tenants.ToggleAutoResponse(ctx, tenantID, enabled)
}

func (uc *TenantUsecase) Delete(ctx context.Context, tenantID string) error {
	return uc.tenants.Delete(ctx, tenantID)
}

// QuotaStatus reports where the tenant stands against its limits.
func (uc *TenantUsecase) QuotaStatus(ctx context.Context, tenantID string) (*repository.QuotaStatus, error) {
	tenant, err := uc.tenants.Get(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return uc.usage.GetQuotaStatus(ctx, tenantID, tenant.Settings.DailyLimit, tenant.Settings.MonthlyLimit)
}

// UsageHistory returns the last N days of message volume.
func (uc *TenantUsecase) UsageHistory(ctx context.Context, tenantID string, days int) ([]repository.DailyUsage, error) {
	if days <= 0 || days > 90 {
		days = 30
	}
	return uc.usage.GetUsageHistory(ctx, tenantID, days)
}
