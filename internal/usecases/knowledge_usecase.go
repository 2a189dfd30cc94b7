package usecases

import (
	"context"
	"strings"

	"wabiz/internal/entities"
)

// knowledgeAuthoringRepo is the write surface the authoring API needs.
// *repository.KnowledgeRepository satisfies it.
type knowledgeAuthoringRepo interface {
	Create(ctx context.Context, e *entities.KnowledgeEntry) error
	GetByID(ctx context.Context, tenantID, id string) (*entities.KnowledgeEntry, error)
	ListByTenant(ctx context.Context, tenantID, category, search string, limit, offset int) ([]entities.KnowledgeEntry, int, error)
	Update(ctx context.Context, e *entities.KnowledgeEntry) error
	SoftDelete(ctx context.Context, tenantID, id string) error
	Reactivate(ctx context.Context, tenantID, id string) (*entities.KnowledgeEntry, error)
	DeletePermanent(ctx context.Context, tenantID, id string) error
	BulkSetActive(ctx context.Context, tenantID string, ids []string, active bool) (int64, error)
	Stats(ctx context.Context, tenantID string) (*entities.KnowledgeStats, error)
}

type tenantReader interface {
	Get(ctx context.Context, tenantID string) (*entities.Tenant, error)
}

// KnowledgeUsecase is the authoring API for a tenant's knowledge base.
// Unlike the inbound pipeline it propagates errors: authoring callers
// are dashboard users who need to see what went wrong.
type KnowledgeUsecase struct {
	repo    knowledgeAuthoringRepo
	tenants tenantReader
}

func NewKnowledgeUsecase(repo knowledgeAuthoringRepo, tenants tenantReader) *KnowledgeUsecase {
	return &KnowledgeUsecase{repo: repo, tenants: tenants}
}

// validateEntry rejects bad input before anything touches the store.
func validateEntry(e *entities.KnowledgeEntry) error {
	if strings.TrimSpace(e.Title) == "" {
		return &entities.ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if len(e.Title) > 256 {
		return &entities.ValidationError{Field: "title", Reason: "must not exceed 256 characters"}
	}
	if strings.TrimSpace(e.Content) == "" {
		return &entities.ValidationError{Field: "content", Reason: "must not be empty"}
	}
	if !entities.ValidKnowledgeCategory(e.Category) {
		return &entities.ValidationError{Field: "category", Reason: "unknown category"}
	}
	if e.Priority < entities.MinKnowledgePriority || e.Priority > entities.MaxKnowledgePriority {
		return &entities.ValidationError{Field: "priority", Reason: "must be between 1 and 10"}
	}
	return nil
}

func (uc *KnowledgeUsecase) Create(ctx context.Context, e *entities.KnowledgeEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	if _, err := uc.tenants.Get(ctx, e.TenantID); err != nil {
		return err
	}
	return uc.repo.Create(ctx, e)
}

func (uc *KnowledgeUsecase) Get(ctx context.Context, tenantID, id string) (*entities.KnowledgeEntry, error) {
	return uc.repo.GetByID(ctx, tenantID, id)
}

func (uc *KnowledgeUsecase) List(ctx context.Context, tenantID, category, search string, limit, offset int) ([]entities.KnowledgeEntry, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	if category != "" && !entities.ValidKnowledgeCategory(category) {
		return nil, 0, &entities.ValidationError{Field: "category", Reason: "unknown category"}
	}
	return uc.repo.ListByTenant(ctx, tenantID, category, search, limit, offset)
}

// Update replaces the editable fields of an entry; every successful
// update bumps the version.
func (uc *KnowledgeUsecase) Update(ctx context.Context, e *entities.KnowledgeEntry) error {
	if err := validateEntry(e); err != nil {
		return err
	}
	return uc.repo.Update(ctx, e)
}

// Deactivate soft-deletes: the entry disappears from retrieval but the
// row stays and can be reactivated.
func (uc *KnowledgeUsecase) Deactivate(ctx context.Context, tenantID, id string) error {
	return uc.repo.SoftDelete(ctx, tenantID, id)
}

// Reactivate re-enables a soft-deleted entry. Reactivating an entry
// that is already active is an error, not a silent success.
func (uc *KnowledgeUsecase) Reactivate(ctx context.Context, tenantID, id string) (*entities.KnowledgeEntry, error) {
	return uc.repo.Reactivate(ctx, tenantID, id)
}

// DeletePermanent removes the row irreversibly.
func (uc *KnowledgeUsecase) DeletePermanent(ctx context.Context, tenantID, id string) error {
	return uc.repo.DeletePermanent(ctx, tenantID, id)
}

func (uc *KnowledgeUsecase) BulkSetActive(ctx context.Context, tenantID string, ids []string, active bool) (int64, error) {
	if len(ids) == 0 {
		return 0, &entities.ValidationError{Field: "ids", Reason: "must not be empty"}
	}
	return uc.repo.BulkSetActive(ctx, tenantID, ids, active)
}

func (uc *KnowledgeUsecase) Stats(ctx context.Context, tenantID string) (*entities.KnowledgeStats, error) {
	return uc.repo.Stats(ctx, tenantID)
}
