package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"wabiz/internal/entities"
)

type KnowledgeRepository struct {
	db *pgxpool.Pool
}

func NewKnowledgeRepository(db *pgxpool.Pool) *KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

const knowledgeColumns = `id, tenant_id, category, title, content, keywords, tags,
	priority, is_active, version, created_at, updated_at, deleted_at`

func scanKnowledgeEntry(row pgx.Row) (*entities.KnowledgeEntry, error) {
	var e entities.KnowledgeEntry
	err := row.Scan(
		&e.ID, &e.TenantID, &e.Category, &e.Title, &e.Content, &e.Keywords, &e.Tags,
		&e.Priority, &e.IsActive, &e.Version, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrEntryNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *KnowledgeRepository) Create(ctx context.Context, e *entities.KnowledgeEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	now := time.Now()
	e.IsActive = true
	e.Version = 1
	e.CreatedAt = now
	e.UpdatedAt = now
	if e.Keywords == nil {
		e.Keywords = []string{}
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO knowledge_entries (id, tenant_id, category, title, content, keywords, tags,
			priority, is_active, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, e.ID, e.TenantID, e.Category, e.Title, e.Content, e.Keywords, e.Tags,
		e.Priority, e.IsActive, e.Version, e.CreatedAt, e.UpdatedAt)
	return err
}

func (r *KnowledgeRepository) GetByID(ctx context.Context, tenantID, id string) (*entities.KnowledgeEntry, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+knowledgeColumns+" FROM knowledge_entries WHERE tenant_id=$1 AND id=$2",
		tenantID, id)
	return scanKnowledgeEntry(row)
}

// FindActive returns the tenant's active entries, most important
// first. When filterQuery is non-empty it narrows the candidate set in
// SQL; final relevance scoring happens in the usecase layer.
func (r *KnowledgeRepository) FindActive(ctx context.Context, tenantID, filterQuery string) ([]entities.KnowledgeEntry, error) {
	query := "SELECT " + knowledgeColumns + " FROM knowledge_entries WHERE tenant_id=$1 AND is_active"
	args := []interface{}{tenantID}
	if filterQuery != "" {
		query += ` AND (title ILIKE $2 OR content ILIKE $2
			OR EXISTS (SELECT 1 FROM unnest(keywords) kw WHERE $3 ILIKE '%' || kw || '%')
			OR EXISTS (SELECT 1 FROM unnest(tags) tg WHERE $3 ILIKE '%' || tg || '%'))`
		args = append(args, "%"+filterQuery+"%", filterQuery)
	}
	query += " ORDER BY priority DESC, updated_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := []entities.KnowledgeEntry{}
	for rows.Next() {
		e, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// ListByTenant pages through a tenant's entries for the dashboard.
// category and search are optional filters; inactive entries are
// included so owners can review what they deactivated.
func (r *KnowledgeRepository) ListByTenant(ctx context.Context, tenantID, category, search string, limit, offset int) ([]entities.KnowledgeEntry, int, error) {
	where := "WHERE tenant_id=$1"
	args := []interface{}{tenantID}
	if category != "" {
		args = append(args, category)
		where += " AND category=$2"
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		where += " AND (title ILIKE $" + strconv.Itoa(len(args)) + " OR content ILIKE $" + strconv.Itoa(len(args)) + ")"
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM knowledge_entries "+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	query := "SELECT " + knowledgeColumns + " FROM knowledge_entries " + where +
		" ORDER BY priority DESC, updated_at DESC LIMIT $" + strconv.Itoa(len(args)-1) + " OFFSET $" + strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []entities.KnowledgeEntry{}
	for rows.Next() {
		e, err := scanKnowledgeEntry(rows)
		if err != nil {
			return nil, 0, err
		}
		entries = append(entries, *e)
	}
	return entries, total, rows.Err()
}

// Update replaces the editable fields and bumps the version.
func (r *KnowledgeRepository) Update(ctx context.Context, e *entities.KnowledgeEntry) error {
	row := r.db.QueryRow(ctx, `
		UPDATE knowledge_entries
		SET category=$3, title=$4, content=$5, keywords=$6, tags=$7, priority=$8,
			version=version+1, updated_at=NOW()
		WHERE tenant_id=$1 AND id=$2
		RETURNING version, updated_at
	`, e.TenantID, e.ID, e.Category, e.Title, e.Content, e.Keywords, e.Tags, e.Priority)
	err := row.Scan(&e.Version, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.ErrEntryNotFound
	}
	return err
}

// SoftDelete deactivates the entry. The row stays for audit and can be
// reactivated later.
func (r *KnowledgeRepository) SoftDelete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE knowledge_entries SET is_active=false, deleted_at=NOW(), updated_at=NOW()
		WHERE tenant_id=$1 AND id=$2
	`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrEntryNotFound
	}
	return nil
}

// Reactivate turns an inactive entry back on. The version is not
// bumped; nothing about the content changed.
func (r *KnowledgeRepository) Reactivate(ctx context.Context, tenantID, id string) (*entities.KnowledgeEntry, error) {
	e, err := r.GetByID(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if e.IsActive {
		return nil, entities.ErrEntryAlreadyActive
	}

	row := r.db.QueryRow(ctx, `
		UPDATE knowledge_entries SET is_active=true, deleted_at=NULL, updated_at=NOW()
		WHERE tenant_id=$1 AND id=$2
		RETURNING `+knowledgeColumns,
		tenantID, id)
	return scanKnowledgeEntry(row)
}

func (r *KnowledgeRepository) DeletePermanent(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx,
		"DELETE FROM knowledge_entries WHERE tenant_id=$1 AND id=$2", tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrEntryNotFound
	}
	return nil
}

// BulkSetActive flips is_active for a batch of entries and returns how
// many rows changed.
func (r *KnowledgeRepository) BulkSetActive(ctx context.Context, tenantID string, ids []string, active bool) (int64, error) {
	if active {
		t, err := r.db.Exec(ctx, `
			UPDATE knowledge_entries SET is_active=true, deleted_at=NULL, updated_at=NOW()
			WHERE tenant_id=$1 AND id = ANY($2)
		`, tenantID, ids)
		if err != nil {
			return 0, err
		}
		return t.RowsAffected(), nil
	}
	t, err := r.db.Exec(ctx, `
		UPDATE knowledge_entries SET is_active=false, deleted_at=NOW(), updated_at=NOW()
		WHERE tenant_id=$1 AND id = ANY($2)
	`, tenantID, ids)
	if err != nil {
		return 0, err
	}
	return t.RowsAffected(), nil
}

// Stats summarizes a tenant's knowledge base for the dashboard.
func (r *KnowledgeRepository) Stats(ctx context.Context, tenantID string) (*entities.KnowledgeStats, error) {
	stats := &entities.KnowledgeStats{ByCategory: map[string]int{}}
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE is_active), COUNT(*) FILTER (WHERE NOT is_active)
		FROM knowledge_entries WHERE tenant_id=$1
	`, tenantID).Scan(&stats.Total, &stats.Active, &stats.Inactive)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, `
		SELECT category, COUNT(*) FROM knowledge_entries
		WHERE tenant_id=$1 AND is_active GROUP BY category
	`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, err
		}
		stats.ByCategory[cat] = n
	}
	return stats, rows.Err()
}

