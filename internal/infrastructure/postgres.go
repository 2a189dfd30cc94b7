package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresClient struct {
	Pool *pgxpool.Pool
}

func NewPostgresClient(connString string) (*PostgresClient, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool configuration
	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Verify connection
	if err := pool.Ping(context.Background()); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	client := &PostgresClient{Pool: pool}

	// Auto-migrate schema
	if err := client.Migrate(); err != nil {
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (p *PostgresClient) Migrate() error {
	ctx := context.Background()

	// Tenants Table
	_, err := p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS tenants (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			business VARCHAR(255) DEFAULT '',
			email VARCHAR(255) DEFAULT '',
			phone_number VARCHAR(32) DEFAULT '',
			whatsapp_number VARCHAR(32) UNIQUE NOT NULL,
			welcome_message TEXT DEFAULT '',
			ai_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			auto_response_enabled BOOLEAN NOT NULL DEFAULT TRUE,
			daily_limit INT NOT NULL DEFAULT 0,
			monthly_limit INT NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("create tenants table: %w", err)
	}

	// Users Table (dashboard accounts)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			id SERIAL PRIMARY KEY,
			username VARCHAR(50) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(20) NOT NULL DEFAULT 'user',
			tenant_id UUID REFERENCES tenants(id) ON DELETE CASCADE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("create users table: %w", err)
	}

	// Knowledge Entries Table
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS knowledge_entries (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
			category VARCHAR(32) NOT NULL,
			title VARCHAR(256) NOT NULL,
			content TEXT NOT NULL,
			keywords TEXT[] NOT NULL DEFAULT '{}',
			tags TEXT[] NOT NULL DEFAULT '{}',
			priority INT NOT NULL DEFAULT 1,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			version INT NOT NULL DEFAULT 1,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			deleted_at TIMESTAMPTZ
		);
	`)
	if err != nil {
		return fmt.Errorf("create knowledge_entries table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_knowledge_tenant_active
		ON knowledge_entries (tenant_id, is_active);
	`)
	if err != nil {
		return fmt.Errorf("create knowledge index: %w", err)
	}

	// Conversations Table. Per-conversation overrides are structured
	// nullable columns: NULL defers to the tenant setting.
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS conversations (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
			phone_number VARCHAR(32) NOT NULL,
			contact_name VARCHAR(255) DEFAULT '',
			last_message_text TEXT DEFAULT '',
			last_message_type VARCHAR(16) DEFAULT '',
			last_message_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			unread_count INT NOT NULL DEFAULT 0,
			ai_enabled BOOLEAN,
			auto_response_enabled BOOLEAN,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (tenant_id, phone_number)
		);
	`)
	if err != nil {
		return fmt.Errorf("create conversations table: %w", err)
	}

	// Messages Table (append-only turn log)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS messages (
			id UUID PRIMARY KEY,
			tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
			phone_number VARCHAR(32) NOT NULL,
			text TEXT NOT NULL,
			type VARCHAR(16) NOT NULL,
			provider_id VARCHAR(64) NOT NULL DEFAULT '',
			ai_prompt TEXT NOT NULL DEFAULT '',
			media_url TEXT NOT NULL DEFAULT '',
			ts TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`)
	if err != nil {
		return fmt.Errorf("create messages table: %w", err)
	}

	_, err = p.Pool.Exec(ctx, `
		CREATE INDEX IF NOT EXISTS idx_messages_conversation
		ON messages (tenant_id, phone_number, ts);
	`)
	if err != nil {
		return fmt.Errorf("create messages index: %w", err)
	}

	// Message Usage Table (per-tenant daily counters)
	_, err = p.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS message_usage (
			tenant_id UUID NOT NULL REFERENCES tenants(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			messages_sent INT NOT NULL DEFAULT 0,
			messages_received INT NOT NULL DEFAULT 0,
			ai_replies INT NOT NULL DEFAULT 0,
			PRIMARY KEY (tenant_id, date)
		);
	`)
	if err != nil {
		return fmt.Errorf("create message_usage table: %w", err)
	}

	return nil
}

func (p *PostgresClient) Close() {
	p.Pool.Close()
}
