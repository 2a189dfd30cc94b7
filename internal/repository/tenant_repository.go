package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wabiz/internal/entities"
)

type TenantRepository struct {
	db *pgxpool.Pool
}

func NewTenantRepository(db *pgxpool.Pool) *TenantRepository {
	return &TenantRepository{db: db}
}

const tenantColumns = `id, name, business, email, phone_number, whatsapp_number,
	welcome_message, ai_enabled, auto_response_enabled, daily_limit, monthly_limit,
	is_active, created_at, updated_at`

func scanTenant(row pgx.Row) (*entities.Tenant, error) {
	var t entities.Tenant
	err := row.Scan(
		&t.ID, &t.Name, &t.Business, &t.Email, &t.PhoneNumber, &t.WhatsAppNumber,
		&t.Settings.WelcomeMessage, &t.Settings.AIEnabled, &t.Settings.AutoResponseEnabled,
		&t.Settings.DailyLimit, &t.Settings.MonthlyLimit,
		&t.IsActive, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a tenant. Both bot flags default to enabled and the
// welcome message falls back to a branded greeting, matching platform
// onboarding behavior.
func (r *TenantRepository) Create(ctx context.Context, t *entities.Tenant) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.Settings.WelcomeMessage == "" {
		t.Settings.WelcomeMessage = "¡Hola! Somos " + t.Name + ". Gracias por contactarnos. ¿En qué podemos ayudarte?"
	}
	now := time.Now()
	t.IsActive = true
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO tenants (id, name, business, email, phone_number, whatsapp_number,
			welcome_message, ai_enabled, auto_response_enabled, daily_limit, monthly_limit,
			is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, t.ID, t.Name, t.Business, t.Email, t.PhoneNumber, t.WhatsAppNumber,
		t.Settings.WelcomeMessage, t.Settings.AIEnabled, t.Settings.AutoResponseEnabled,
		t.Settings.DailyLimit, t.Settings.MonthlyLimit, t.IsActive, t.CreatedAt, t.UpdatedAt)
	return err
}

func (r *TenantRepository) Get(ctx context.Context, tenantID string) (*entities.Tenant, error) {
	row := r.db.QueryRow(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE id = $1", tenantID)
	return scanTenant(row)
}

// GetByWhatsAppNumber resolves the tenant an inbound message belongs
// to, from the business number it arrived on.
func (r *TenantRepository) GetByWhatsAppNumber(ctx context.Context, number string) (*entities.Tenant, error) {
	row := r.db.QueryRow(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE whatsapp_number = $1", number)
	return scanTenant(row)
}

func (r *TenantRepository) GetAll(ctx context.Context) ([]entities.Tenant, error) {
	rows, err := r.db.Query(ctx, "SELECT "+tenantColumns+" FROM tenants WHERE is_active ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenants := []entities.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

// UpdateProfile updates the tenant's display fields.
func (r *TenantRepository) UpdateProfile(ctx context.Context, t *entities.Tenant) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tenants
		SET name=$2, business=$3, email=$4, phone_number=$5, welcome_message=$6, updated_at=NOW()
		WHERE id=$1
	`, t.ID, t.Name, t.Business, t.Email, t.PhoneNumber, t.Settings.WelcomeMessage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrTenantNotFound
	}
	return nil
}

// UpdateSettings replaces the tenant-level bot settings.
func (r *TenantRepository) UpdateSettings(ctx context.Context, tenantID string, s entities.TenantSettings) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE tenants
		SET ai_enabled=$2, auto_response_enabled=$3, welcome_message=$4,
			daily_limit=$5, monthly_limit=$6, updated_at=NOW()
		WHERE id=$1
	`, tenantID, s.AIEnabled, s.AutoResponseEnabled, s.WelcomeMessage, s.DailyLimit, s.MonthlyLimit)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrTenantNotFound
	}
	return nil
}

func (r *TenantRepository) ToggleAI(ctx context.Context, tenantID string, enabled bool) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE tenants SET ai_enabled=$2, updated_at=NOW() WHERE id=$1", tenantID, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrTenantNotFound
	}
	return nil
}

func (r *TenantRepository) ToggleAutoResponse(ctx context.Context, tenantID string, enabled bool) error {
	tag, err := r.db.Exec(ctx,
		"UPDATE tenants SET auto_response_enabled=$2, updated_at=NOW() WHERE id=$1", tenantID, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrTenantNotFound
	}
	return nil
}

// Delete removes the tenant permanently; knowledge entries,
// conversations and messages cascade.
func (r *TenantRepository) Delete(ctx context.Context, tenantID string) error {
	tag, err := r.db.Exec(ctx, "DELETE FROM tenants WHERE id=$1", tenantID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrTenantNotFound
	}
	return nil
}
