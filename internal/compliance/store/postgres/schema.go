package postgres

import (
	"context"
	"database/sql"
	"fmt"
)

// Schema is the engine's full DDL, applied idempotently. The two unique
// indexes carry the idempotency contracts: one task assignment per
// (task, entity), one live gap per (entity, control).
const Schema = `
CREATE TABLE IF NOT EXISTS entities (
	id              UUID PRIMARY KEY,
	organization_id UUID NOT NULL,
	name            TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_entities_organization ON entities (organization_id);

CREATE TABLE IF NOT EXISTS frameworks (
	id       UUID PRIMARY KEY,
	name     TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT '',
	region   TEXT NOT NULL DEFAULT '',
	max_fine BIGINT NOT NULL DEFAULT 0,
	currency TEXT NOT NULL DEFAULT 'EUR'
);

CREATE TABLE IF NOT EXISTS controls (
	id           UUID PRIMARY KEY,
	framework_id UUID NOT NULL REFERENCES frameworks (id),
	title        TEXT NOT NULL,
	severity     TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	required     BOOLEAN NOT NULL DEFAULT TRUE,
	fine_amount  BIGINT NOT NULL DEFAULT 0,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_controls_framework ON controls (framework_id) WHERE required;

CREATE TABLE IF NOT EXISTS control_assignments (
	entity_id  UUID NOT NULL REFERENCES entities (id),
	control_id UUID NOT NULL REFERENCES controls (id),
	status     TEXT NOT NULL DEFAULT 'not_started',
	PRIMARY KEY (entity_id, control_id)
);

CREATE TABLE IF NOT EXISTS framework_assignments (
	entity_id    UUID NOT NULL REFERENCES entities (id),
	framework_id UUID NOT NULL REFERENCES frameworks (id),
	active       BOOLEAN NOT NULL DEFAULT TRUE,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (entity_id, framework_id)
);
CREATE INDEX IF NOT EXISTS idx_framework_assignments_recent ON framework_assignments (created_at DESC) WHERE active;

CREATE TABLE IF NOT EXISTS tasks (
	id             UUID PRIMARY KEY,
	control_id     UUID NOT NULL REFERENCES controls (id),
	title          TEXT NOT NULL,
	description    TEXT NOT NULL DEFAULT '',
	priority       TEXT NOT NULL DEFAULT 'medium',
	auto_generated BOOLEAN NOT NULL DEFAULT FALSE,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_tasks_control ON tasks (control_id);

CREATE TABLE IF NOT EXISTS task_assignments (
	id         UUID PRIMARY KEY,
	task_id    UUID NOT NULL REFERENCES tasks (id),
	entity_id  UUID NOT NULL REFERENCES entities (id),
	status     TEXT NOT NULL DEFAULT 'pending',
	priority   TEXT NOT NULL DEFAULT 'medium',
	due_date   TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	UNIQUE (task_id, entity_id)
);
CREATE INDEX IF NOT EXISTS idx_task_assignments_due ON task_assignments (due_date) WHERE status IN ('pending', 'in_progress');

CREATE TABLE IF NOT EXISTS audit_gaps (
	id           UUID PRIMARY KEY,
	entity_id    UUID NOT NULL REFERENCES entities (id),
	framework_id UUID NOT NULL REFERENCES frameworks (id),
	control_id   UUID NOT NULL REFERENCES controls (id),
	severity     TEXT NOT NULL,
	category     TEXT NOT NULL DEFAULT '',
	status       TEXT NOT NULL DEFAULT 'open',
	due_date     TIMESTAMPTZ,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE UNIQUE INDEX IF NOT EXISTS uq_audit_gaps_live ON audit_gaps (entity_id, control_id) WHERE status IN ('open', 'in_progress');

CREATE TABLE IF NOT EXISTS compliance_history (
	id           BIGSERIAL PRIMARY KEY,
	entity_id    UUID NOT NULL REFERENCES entities (id),
	framework_id UUID NOT NULL REFERENCES frameworks (id),
	score        INT NOT NULL,
	event_type   TEXT NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_compliance_history_pair ON compliance_history (entity_id, framework_id, recorded_at DESC);

CREATE TABLE IF NOT EXISTS audit_outbox (
	id            UUID PRIMARY KEY,
	partition_key TEXT NOT NULL,
	payload       JSONB NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	sent_at       TIMESTAMPTZ
);
CREATE INDEX IF NOT EXISTS idx_audit_outbox_pending ON audit_outbox (created_at) WHERE sent_at IS NULL;
`

// EnsureSchema applies the DDL. Safe to run on every startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
