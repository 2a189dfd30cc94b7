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

type ConversationRepository struct {
	db *pgxpool.Pool
}

func NewConversationRepository(db *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// AppendTurn records one message in the append-only log and refreshes
// the conversation's denormalized last-message fields. Received turns
// bump the unread counter.
func (r *ConversationRepository) AppendTurn(ctx context.Context, turn *entities.ConversationTurn) error {
	if turn.ID == "" {
		turn.ID = uuid.New().String()
	}
	if turn.Timestamp.IsZero() {
		turn.Timestamp = time.Now()
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, tenant_id, phone_number, text, type, provider_id, ai_prompt, media_url, ts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, turn.ID, turn.TenantID, turn.PhoneNumber, turn.Text, turn.Type,
		turn.ProviderID, turn.AIPrompt, turn.MediaURL, turn.Timestamp)
	if err != nil {
		return err
	}

	unreadDelta := 0
	if turn.Type == entities.TurnReceived {
		unreadDelta = 1
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO conversations (id, tenant_id, phone_number, last_message_text, last_message_type, last_message_at, unread_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		ON CONFLICT (tenant_id, phone_number) DO UPDATE SET
			last_message_text=$4, last_message_type=$5, last_message_at=$6,
			unread_count=conversations.unread_count+$7, updated_at=NOW()
	`, uuid.New().String(), turn.TenantID, turn.PhoneNumber,
		turn.Text, turn.Type, turn.Timestamp, unreadDelta)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// RecentTurns returns the newest n turns of a conversation in
// chronological order, ready to be rendered as history.
func (r *ConversationRepository) RecentTurns(ctx context.Context, tenantID, phoneNumber string, n int) ([]entities.ConversationTurn, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, phone_number, text, type, provider_id, ai_prompt, media_url, ts
		FROM (
			SELECT id, tenant_id, phone_number, text, type, provider_id, ai_prompt, media_url, ts
			FROM messages
			WHERE tenant_id=$1 AND phone_number=$2
			ORDER BY ts DESC
			LIMIT $3
		) tail
		ORDER BY ts ASC
	`, tenantID, phoneNumber, n)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []entities.ConversationTurn{}
	for rows.Next() {
		var t entities.ConversationTurn
		if err := rows.Scan(&t.ID, &t.TenantID, &t.PhoneNumber, &t.Text, &t.Type,
			&t.ProviderID, &t.AIPrompt, &t.MediaURL, &t.Timestamp); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// History pages backwards through a conversation for the dashboard.
func (r *ConversationRepository) History(ctx context.Context, tenantID, phoneNumber string, limit, offset int) ([]entities.ConversationTurn, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, tenant_id, phone_number, text, type, provider_id, ai_prompt, media_url, ts
		FROM messages
		WHERE tenant_id=$1 AND phone_number=$2
		ORDER BY ts DESC
		LIMIT $3 OFFSET $4
	`, tenantID, phoneNumber, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []entities.ConversationTurn{}
	for rows.Next() {
		var t entities.ConversationTurn
		if err := rows.Scan(&t.ID, &t.TenantID, &t.PhoneNumber, &t.Text, &t.Type,
			&t.ProviderID, &t.AIPrompt, &t.MediaURL, &t.Timestamp); err != nil {
			return nil, err
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// GetOverride reads the per-conversation bot flags. A conversation
// that was never touched has no row yet; that is not an error, it just
// means no override.
func (r *ConversationRepository) GetOverride(ctx context.Context, tenantID, phoneNumber string) (entities.ConversationOverride, error) {
	var ov entities.ConversationOverride
	err := r.db.QueryRow(ctx, `
		SELECT ai_enabled, auto_response_enabled FROM conversations
		WHERE tenant_id=$1 AND phone_number=$2
	`, tenantID, phoneNumber).Scan(&ov.AIEnabled, &ov.AutoResponseEnabled)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.ConversationOverride{}, nil
	}
	if err != nil {
		return entities.ConversationOverride{}, err
	}
	return ov, nil
}

// SetOverride pins or clears the per-conversation flags. A nil pointer
// clears the override back to "follow the tenant setting".
func (r *ConversationRepository) SetOverride(ctx context.Context, tenantID, phoneNumber string, ov entities.ConversationOverride) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO conversations (id, tenant_id, phone_number, ai_enabled, auto_response_enabled, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		ON CONFLICT (tenant_id, phone_number) DO UPDATE SET
			ai_enabled=$4, auto_response_enabled=$5, updated_at=NOW()
	`, uuid.New().String(), tenantID, phoneNumber, ov.AIEnabled, ov.AutoResponseEnabled)
	return err
}

const conversationColumns = `id, tenant_id, phone_number, contact_name,
	last_message_text, last_message_type, last_message_at, unread_count,
	ai_enabled, auto_response_enabled, created_at, updated_at`

func scanConversation(row pgx.Row) (*entities.Conversation, error) {
	var c entities.Conversation
	err := row.Scan(&c.ID, &c.TenantID, &c.PhoneNumber, &c.ContactName,
		&c.LastMessageText, &c.LastMessageType, &c.LastMessageAt, &c.UnreadCount,
		&c.Override.AIEnabled, &c.Override.AutoResponseEnabled, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, entities.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepository) Get(ctx context.Context, tenantID, phoneNumber string) (*entities.Conversation, error) {
	row := r.db.QueryRow(ctx,
		"SELECT "+conversationColumns+" FROM conversations WHERE tenant_id=$1 AND phone_number=$2",
		tenantID, phoneNumber)
	return scanConversation(row)
}

// GetAll lists a tenant's conversations, most recently active first.
func (r *ConversationRepository) GetAll(ctx context.Context, tenantID string, limit, offset int) ([]entities.Conversation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+conversationColumns+` FROM conversations
		WHERE tenant_id=$1
		ORDER BY last_message_at DESC NULLS LAST
		LIMIT $2 OFFSET $3
	`, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	convs := []entities.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, err
		}
		convs = append(convs, *c)
	}
	return convs, rows.Err()
}

func (r *ConversationRepository) MarkAsRead(ctx context.Context, tenantID, phoneNumber string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE conversations SET unread_count=0, updated_at=NOW()
		WHERE tenant_id=$1 AND phone_number=$2
	`, tenantID, phoneNumber)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrConversationNotFound
	}
	return nil
}

func (r *ConversationRepository) SetContactName(ctx context.Context, tenantID, phoneNumber, name string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE conversations SET contact_name=$3, updated_at=NOW()
		WHERE tenant_id=$1 AND phone_number=$2
	`, tenantID, phoneNumber, name)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return entities.ErrConversationNotFound
	}
	return nil
}

// Stats counts conversations and turn volume for the dashboard.
func (r *ConversationRepository) Stats(ctx context.Context, tenantID string) (map[string]int, error) {
	stats := map[string]int{}
	var conversations, unread int
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE unread_count > 0)
		FROM conversations WHERE tenant_id=$1
	`, tenantID).Scan(&conversations, &unread)
	if err != nil {
		return nil, err
	}
	stats["conversations"] = conversations
	stats["with_unread"] = unread

	rows, err := r.db.Query(ctx,
		"SELECT type, COUNT(*) FROM messages WHERE tenant_id=$1 GROUP BY type", tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var n int
		if err := rows.Scan(&typ, &n); err != nil {
			return nil, err
		}
		stats["messages_"+typ] = n
	}
	return stats, rows.Err()
}
