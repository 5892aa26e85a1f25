package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema creates every table the postgres repositories use. Statements are
// idempotent so Migrate can run on every boot.
const Schema = `
CREATE TABLE IF NOT EXISTS agents (
    seq                BIGSERIAL PRIMARY KEY,
    id                 TEXT NOT NULL UNIQUE,
    name               TEXT NOT NULL,
    organization_name  TEXT NOT NULL,
    model              TEXT NOT NULL,
    voice_id           TEXT NOT NULL,
    twilio_number      TEXT NOT NULL,
    status             TEXT NOT NULL CHECK (status IN ('active', 'offline', 'error')),
    prompt             TEXT NOT NULL DEFAULT '',
    prompt_version     TEXT NOT NULL DEFAULT 'v1',
    average_latency_ms INTEGER NOT NULL DEFAULT 0 CHECK (average_latency_ms >= 0),
    updated_at         TIMESTAMPTZ NOT NULL
);

-- High-water marks for display ids so deleted ids are never reissued.
CREATE TABLE IF NOT EXISTS id_counters (
    name  TEXT PRIMARY KEY,
    value BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS call_sessions (
    seq              BIGSERIAL PRIMARY KEY,
    call_sid         TEXT NOT NULL UNIQUE,
    agent_name       TEXT NOT NULL,
    caller_number    TEXT NOT NULL,
    started_at       TIMESTAMPTZ NOT NULL,
    duration_seconds INTEGER NOT NULL DEFAULT 0 CHECK (duration_seconds >= 0),
    status           TEXT NOT NULL CHECK (status IN ('completed', 'busy', 'failed')),
    sentiment        TEXT NOT NULL CHECK (sentiment IN ('positive', 'neutral', 'negative')),
    recording_url    TEXT NOT NULL DEFAULT '',
    updated_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS platform_settings (
    id                                    INTEGER PRIMARY KEY CHECK (id = 1),
    openai_api_key                        TEXT NOT NULL DEFAULT '',
    deepgram_api_key                      TEXT NOT NULL DEFAULT '',
    twilio_account_sid                    TEXT NOT NULL DEFAULT '',
    rime_api_key                          TEXT NOT NULL DEFAULT '',
    enable_barge_in_interruption          BOOLEAN NOT NULL,
    play_latency_filler_phrase_on_timeout BOOLEAN NOT NULL,
    allow_auto_retry_on_failed_calls      BOOLEAN NOT NULL,
    updated_at                            TIMESTAMPTZ NOT NULL
);

-- Append-only. seq orders entries sharing a changed_at.
CREATE TABLE IF NOT EXISTS settings_audit_log (
    seq            BIGSERIAL NOT NULL UNIQUE,
    id             TEXT PRIMARY KEY,
    changed_at     TIMESTAMPTZ NOT NULL,
    actor          TEXT NOT NULL,
    reason         TEXT,
    changed_fields JSONB NOT NULL
);

CREATE TABLE IF NOT EXISTS organizations (
    id                  TEXT PRIMARY KEY,
    name                TEXT NOT NULL,
    subscription_status TEXT NOT NULL CHECK (subscription_status IN ('trial', 'active', 'past_due')),
    active_agents       INTEGER NOT NULL DEFAULT 0,
    monthly_minutes     INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS schema_version (
    version    INTEGER PRIMARY KEY,
    applied_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_call_sessions_started_at ON call_sessions (started_at DESC, seq DESC);
CREATE INDEX IF NOT EXISTS idx_call_sessions_agent_name ON call_sessions (lower(agent_name));
CREATE INDEX IF NOT EXISTS idx_settings_audit_log_changed_at ON settings_audit_log (changed_at DESC, seq DESC);
CREATE INDEX IF NOT EXISTS idx_settings_audit_log_fields ON settings_audit_log USING GIN (changed_fields);
`

const insertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES ($1, now())
ON CONFLICT (version) DO NOTHING
`
