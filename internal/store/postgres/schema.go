// Package postgres implements the durable relational store for clientsync.
package postgres

const schemaDDL = `
CREATE TABLE IF NOT EXISTS clients (
    client_id             TEXT PRIMARY KEY,
    row_index             INTEGER NOT NULL DEFAULT 0,
    company_name          TEXT NOT NULL DEFAULT '',
    service_type          TEXT NOT NULL DEFAULT '',
    urgency_level         TEXT NOT NULL DEFAULT 'Medium',
    full_name             TEXT NOT NULL,
    email                 TEXT NOT NULL DEFAULT '',
    phone                 TEXT NOT NULL DEFAULT '',
    customer_type         TEXT NOT NULL DEFAULT 'Residential',
    project_address       TEXT NOT NULL DEFAULT '',
    technical_description TEXT NOT NULL DEFAULT '',
    budget_range          TEXT NOT NULL DEFAULT '',
    expected_timeline     TEXT NOT NULL DEFAULT '',
    contact_method        TEXT NOT NULL DEFAULT 'Phone',
    notes                 TEXT NOT NULL DEFAULT '',
    special_requirements  TEXT NOT NULL DEFAULT '',
    channel               TEXT NOT NULL DEFAULT 'Website',
    assigned_to           TEXT NOT NULL DEFAULT '',
    status                TEXT NOT NULL DEFAULT 'New Lead',
    invoice_status        TEXT NOT NULL DEFAULT 'Pending',
    estimate_status       TEXT NOT NULL DEFAULT 'Pending',
    notification_status   TEXT NOT NULL DEFAULT 'Pending',
    submitted_at          TIMESTAMPTZ,
    created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_clients_status ON clients (status);
CREATE INDEX IF NOT EXISTS idx_clients_channel ON clients (channel);
CREATE INDEX IF NOT EXISTS idx_clients_created_at ON clients (created_at);

CREATE TABLE IF NOT EXISTS system_config (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS audit_log (
    id          TEXT PRIMARY KEY,
    action      TEXT NOT NULL,
    table_name  TEXT NOT NULL,
    record_id   TEXT NOT NULL DEFAULT '',
    old_values  JSONB,
    new_values  JSONB,
    actor_email TEXT,
    origin_ip   TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_audit_log_record ON audit_log (record_id);
CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON audit_log (created_at);

CREATE TABLE IF NOT EXISTS reports (
    id         TEXT PRIMARY KEY,
    client_id  TEXT NOT NULL REFERENCES clients (client_id) ON DELETE CASCADE,
    title      TEXT NOT NULL,
    body       TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_reports_client ON reports (client_id);
`
