package database

// Schema is idempotent. The unique (user_id, attempt_id) index is what turns
// a replayed submission into a duplicate instead of a second session;
// Postgres treats NULL attempt ids as distinct, so anonymous re-submissions
// always record a new session.
const Schema = `
CREATE TABLE IF NOT EXISTS learner_profiles (
	user_id      TEXT PRIMARY KEY,
	full_name    TEXT NOT NULL DEFAULT '',
	class_level  TEXT NOT NULL DEFAULT '',
	state        TEXT NOT NULL DEFAULT '',
	city         TEXT NOT NULL DEFAULT '',
	interests    JSONB NOT NULL DEFAULT '[]',
	constraints  JSONB NOT NULL DEFAULT '{}',
	updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS assessment_sessions (
	id             UUID PRIMARY KEY,
	user_id        TEXT NOT NULL,
	attempt_id     TEXT,
	class_level    TEXT NOT NULL,
	status         TEXT NOT NULL,
	metrics        JSONB NOT NULL,
	profile        JSONB NOT NULL,
	insights       JSONB NOT NULL,
	rules_version  TEXT NOT NULL,
	completed_at   TIMESTAMPTZ NOT NULL,
	UNIQUE (user_id, attempt_id)
);

CREATE TABLE IF NOT EXISTS student_recommendations (
	id                         UUID PRIMARY KEY,
	session_id                 UUID NOT NULL REFERENCES assessment_sessions(id),
	user_id                    TEXT NOT NULL,
	class_level                TEXT NOT NULL,
	primary_recommendations    JSONB NOT NULL,
	secondary_recommendations  JSONB NOT NULL,
	backup_recommendations     JSONB NOT NULL,
	overall_reasoning          TEXT NOT NULL,
	confidence                 DOUBLE PRECISION NOT NULL,
	insufficient_data          BOOLEAN NOT NULL,
	rules_version              TEXT NOT NULL,
	created_at                 TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assessment_sessions_user ON assessment_sessions (user_id, completed_at DESC);
`
