package usecases

import (
	"context"
	"testing"
	"time"

	"wabiz/internal/entities"
)

type fakeKnowledgeRepo struct {
	entries []entities.KnowledgeEntry
	err     error
}

func (f *fakeKnowledgeRepo) FindActive(_ context.Context, tenantID, _ string) ([]entities.KnowledgeEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := []entities.KnowledgeEntry{}
	for _, e := range f.entries {
		if e.TenantID == tenantID && e.IsActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func entry(title, content string, keywords, tags []string, priority int) entities.KnowledgeEntry {
	return entities.KnowledgeEntry{
		TenantID:  "t1",
		Title:     title,
		Content:   content,
		Keywords:  keywords,
		Tags:      tags,
		Priority:  priority,
		IsActive:  true,
		UpdatedAt: time.Now(),
	}
}

func TestKnowledgeStore_ScoreTitleAndPriority(t *testing.T) {
	repo := &fakeKnowledgeRepo{entries: []entities.KnowledgeEntry{
		entry("Horarios", "9am-6pm", nil, nil, 9),
	}}
	store := NewKnowledgeStore(repo)

	matches, err := store.Search(context.Background(), "t1", "horario", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Search() returned %d matches, want 1", len(matches))
	}
	// title hit (3) + priority bonus (9 * 0.5)
	if matches[0].Score != 7.5 {
		t.Errorf("Search() score = %v, want 7.5", matches[0].Score)
	}
}

func TestKnowledgeStore_NoFieldHitScoresZero(t *testing.T) {
	repo := &fakeKnowledgeRepo{entries: []entities.KnowledgeEntry{
		entry("Envíos", "Hacemos envíos a todo el país", nil, nil, 10),
	}}
	store := NewKnowledgeStore(repo)

	matches, err := store.Search(context.Background(), "t1", "horario", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Search() returned %d matches, want 0: priority alone must not qualify an entry", len(matches))
	}
}

func TestKnowledgeStore_TitleMatchIsMonotonic(t *testing.T) {
	without := entry("Datos generales", "Información variada", nil, nil, 5)
	with := entry("Datos generales precio", "Información variada", nil, nil, 5)
	repo := &fakeKnowledgeRepo{entries: []entities.KnowledgeEntry{without, with}}
	store := NewKnowledgeStore(repo)

	matches, err := store.Search(context.Background(), "t1", "precio", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Search() returned %d matches, want 1", len(matches))
	}
	if matches[0].Entry.Title != with.Title {
		t.Errorf("Search() top match = %q, want the entry with the query in its title", matches[0].Entry.Title)
	}
}

func TestKnowledgeStore_AllFieldsAccumulate(t *testing.T) {
	e := entry("Precios de servicios", "Lista de precios actualizada",
		[]string{"precio", "tarifas"}, []string{"precios"}, 4)
	repo := &fakeKnowledgeRepo{entries: []entities.KnowledgeEntry{e}}
	store := NewKnowledgeStore(repo)

	matches, err := store.Search(context.Background(), "t1", "precio", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 1 {
		t.Fatalf("Search() returned %d matches, want 1", len(matches))
	}
	// title 3 + content 2 + keyword 2 + tag 1 + priority 4*0.5
	if matches[0].Score != 10 {
		t.Errorf("Search() score = %v, want 10", matches[0].Score)
	}
}

func TestKnowledgeStore_OrderingAndTieBreaks(t *testing.T) {
	old := entry("Horario de verano", "Cerramos temprano", nil, nil, 5)
	old.UpdatedAt = time.Now().Add(-48 * time.Hour)
	recent := entry("Horario de invierno", "Abrimos tarde", nil, nil, 5)
	higher := entry("Horario general", "9 a 18", nil, nil, 8)
	repo := &fakeKnowledgeRepo{entries: []entities.KnowledgeEntry{old, recent, higher}}
	store := NewKnowledgeStore(repo)

	matches, err := store.Search(context.Background(), "t1", "horario", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 3 {
		t.Fatalf("Search() returned %d matches, want 3", len(matches))
	}
	if matches[0].Entry.Title != higher.Title {
		t.Errorf("first match = %q, want highest priority %q", matches[0].Entry.Title, higher.Title)
	}
	if matches[1].Entry.Title != recent.Title {
		t.Errorf("second match = %q, want most recently updated %q", matches[1].Entry.Title, recent.Title)
	}
}

func TestKnowledgeStore_TruncatesToLimit(t *testing.T) {
	repo := &fakeKnowledgeRepo{entries: []entities.KnowledgeEntry{
		entry("Precio A", "a", nil, nil, 1),
		entry("Precio B", "b", nil, nil, 2),
		entry("Precio C", "c", nil, nil, 3),
		entry("Precio D", "d", nil, nil, 4),
	}}
	store := NewKnowledgeStore(repo)

	matches, err := store.Search(context.Background(), "t1", "precio", 2)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("Search() returned %d matches, want 2", len(matches))
	}
}

func TestKnowledgeStore_UnknownTenantIsEmpty(t *testing.T) {
	repo := &fakeKnowledgeRepo{entries: []entities.KnowledgeEntry{
		entry("Horarios", "9-18", nil, nil, 5),
	}}
	store := NewKnowledgeStore(repo)

	matches, err := store.Search(context.Background(), "nope", "horario", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Search() on unknown tenant returned %d matches, want 0", len(matches))
	}
}

func TestKnowledgeStore_InactiveEntriesExcluded(t *testing.T) {
	inactive := entry("Horarios", "9-18", nil, nil, 5)
	inactive.IsActive = false
	repo := &fakeKnowledgeRepo{entries: []entities.KnowledgeEntry{inactive}}
	store := NewKnowledgeStore(repo)

	matches, err := store.Search(context.Background(), "t1", "horario", 3)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 0 {
		t.Errorf("Search() returned %d matches, want 0 for inactive entries", len(matches))
	}
}
