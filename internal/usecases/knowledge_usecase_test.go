package usecases

import (
	"context"
	"errors"
	"testing"

	"wabiz/internal/entities"
)

type fakeAuthoringRepo struct {
	created     []*entities.KnowledgeEntry
	reactivated *entities.KnowledgeEntry
	reactErr    error
}

func (f *fakeAuthoringRepo) Create(_ context.Context, e *entities.KnowledgeEntry) error {
	f.created = append(f.created, e)
	return nil
}
func (f *fakeAuthoringRepo) GetByID(_ context.Context, _, _ string) (*entities.KnowledgeEntry, error) {
	return nil, entities.ErrEntryNotFound
}
func (f *fakeAuthoringRepo) ListByTenant(_ context.Context, _, _, _ string, _, _ int) ([]entities.KnowledgeEntry, int, error) {
	return nil, 0, nil
}
func (f *fakeAuthoringRepo) Update(_ context.Context, _ *entities.KnowledgeEntry) error { return nil }
func (f *fakeAuthoringRepo) SoftDelete(_ context.Context, _, _ string) error            { return nil }
func (f *fakeAuthoringRepo) Reactivate(_ context.Context, _, _ string) (*entities.KnowledgeEntry, error) {
	return f.reactivated, f.reactErr
}
func (f *fakeAuthoringRepo) DeletePermanent(_ context.Context, _, _ string) error { return nil }
func (f *fakeAuthoringRepo) BulkSetActive(_ context.Context, _ string, ids []string, _ bool) (int64, error) {
	return int64(len(ids)), nil
}
func (f *fakeAuthoringRepo) Stats(_ context.Context, _ string) (*entities.KnowledgeStats, error) {
	return &entities.KnowledgeStats{}, nil
}

func validEntry() *entities.KnowledgeEntry {
	return &entities.KnowledgeEntry{
		TenantID: "t1",
		Category: "horarios",
		Title:    "Horario de atención",
		Content:  "Lunes a viernes de 9 a 18",
		Priority: 5,
	}
}

func newTestKnowledgeUsecase(repo *fakeAuthoringRepo) *KnowledgeUsecase {
	tenants := &fakeTenantRepo{tenants: map[string]*entities.Tenant{"t1": testTenant()}}
	return NewKnowledgeUsecase(repo, tenants)
}

func TestKnowledgeUsecase_CreateValid(t *testing.T) {
	repo := &fakeAuthoringRepo{}
	uc := newTestKnowledgeUsecase(repo)

	if err := uc.Create(context.Background(), validEntry()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if len(repo.created) != 1 {
		t.Errorf("created %d entries, want 1", len(repo.created))
	}
}

func TestKnowledgeUsecase_ValidationBeforePersistence(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*entities.KnowledgeEntry)
		wantField string
	}{
		{"empty title", func(e *entities.KnowledgeEntry) { e.Title = "  " }, "title"},
		{"empty content", func(e *entities.KnowledgeEntry) { e.Content = "" }, "content"},
		{"bad category", func(e *entities.KnowledgeEntry) { e.Category = "misc" }, "category"},
		{"priority too low", func(e *entities.KnowledgeEntry) { e.Priority = 0 }, "priority"},
		{"priority too high", func(e *entities.KnowledgeEntry) { e.Priority = 11 }, "priority"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeAuthoringRepo{}
			uc := newTestKnowledgeUsecase(repo)

			e := validEntry()
			tt.mutate(e)
			err := uc.Create(context.Background(), e)

			var ve *entities.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Create() error = %v, want ValidationError", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("ValidationError.Field = %q, want %q", ve.Field, tt.wantField)
			}
			if len(repo.created) != 0 {
				t.Error("nothing must be persisted when validation fails")
			}
		})
	}
}

func TestKnowledgeUsecase_CreateUnknownTenant(t *testing.T) {
	repo := &fakeAuthoringRepo{}
	uc := newTestKnowledgeUsecase(repo)

	e := validEntry()
	e.TenantID = "missing"
	err := uc.Create(context.Background(), e)
	if !errors.Is(err, entities.ErrTenantNotFound) {
		t.Errorf("Create() error = %v, want ErrTenantNotFound", err)
	}
	if len(repo.created) != 0 {
		t.Error("nothing must be persisted for an unknown tenant")
	}
}

func TestKnowledgeUsecase_ReactivateAlreadyActive(t *testing.T) {
	repo := &fakeAuthoringRepo{reactErr: entities.ErrEntryAlreadyActive}
	uc := newTestKnowledgeUsecase(repo)

	_, err := uc.Reactivate(context.Background(), "t1", "e1")
	if !errors.Is(err, entities.ErrEntryAlreadyActive) {
		t.Errorf("Reactivate() error = %v, want ErrEntryAlreadyActive", err)
	}
}

func TestKnowledgeUsecase_BulkRejectsEmptyIDs(t *testing.T) {
	uc := newTestKnowledgeUsecase(&fakeAuthoringRepo{})

	_, err := uc.BulkSetActive(context.Background(), "t1", nil, true)
	var ve *entities.ValidationError
	if !errors.As(err, &ve) {
		t.Errorf("BulkSetActive() error = %v, want ValidationError", err)
	}
}
