package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            SERIAL PRIMARY KEY,
	name          VARCHAR(255) NOT NULL,
	email         VARCHAR(255) NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_uniq ON users (lower(email));

CREATE TABLE IF NOT EXISTS workouts (
	id          SERIAL PRIMARY KEY,
	user_id     INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	name        VARCHAR(255) NOT NULL,
	category    VARCHAR(100),
	description TEXT,
	difficulty  VARCHAR(20) CHECK (difficulty IN ('beginner', 'intermediate', 'advanced')),
	status      VARCHAR(10) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS workouts_user_status_idx ON workouts (user_id, status);

CREATE TABLE IF NOT EXISTS exercises (
	id             SERIAL PRIMARY KEY,
	workout_id     INT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
	name           VARCHAR(255) NOT NULL,
	description    TEXT,
	muscle_group   VARCHAR(100),
	execution_mode VARCHAR(10) NOT NULL CHECK (execution_mode IN ('repetition', 'duration')),
	sets           INT NOT NULL DEFAULT 1,
	reps           INT,
	duration_secs  INT,
	rest_secs      INT,
	weight         NUMERIC(6, 2),
	weight_unit    VARCHAR(10) NOT NULL DEFAULT 'kg',
	notes          TEXT,
	display_order  INT NOT NULL,
	status         VARCHAR(10) NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'inactive')),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS exercises_workout_order_idx ON exercises (workout_id, display_order);

CREATE TABLE IF NOT EXISTS execution_sessions (
	id                    SERIAL PRIMARY KEY,
	user_id               INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	workout_id            INT NOT NULL REFERENCES workouts(id) ON DELETE CASCADE,
	status                VARCHAR(10) NOT NULL CHECK (status IN ('started', 'paused', 'finished', 'cancelled')),
	started_at            TIMESTAMPTZ NOT NULL,
	ended_at              TIMESTAMPTZ,
	total_seconds         INT NOT NULL DEFAULT 0,
	total_exercises       INT NOT NULL,
	completed_exercises   INT NOT NULL DEFAULT 0,
	current_exercise_id   INT,
	current_exercise_order INT,
	notes                 TEXT,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS execution_sessions_one_active_per_user
	ON execution_sessions (user_id) WHERE status IN ('started', 'paused');
CREATE INDEX IF NOT EXISTS execution_sessions_user_started_idx ON execution_sessions (user_id, started_at);

CREATE TABLE IF NOT EXISTS execution_exercises (
	id                 SERIAL PRIMARY KEY,
	session_id         INT NOT NULL REFERENCES execution_sessions(id) ON DELETE CASCADE,
	exercise_id        INT NOT NULL,
	status             VARCHAR(12) NOT NULL CHECK (status IN ('not_started', 'in_progress', 'completed', 'skipped')),
	execution_order    INT NOT NULL,
	execution_mode     VARCHAR(10) NOT NULL,
	started_at         TIMESTAMPTZ,
	ended_at           TIMESTAMPTZ,
	planned_sets       INT,
	planned_reps       INT,
	planned_weight     NUMERIC(6, 2),
	planned_duration   INT,
	planned_rest       INT,
	done_sets          INT,
	done_reps          INT,
	done_weight        NUMERIC(6, 2),
	done_duration      INT NOT NULL DEFAULT 0,
	done_rest          INT,
	weight_unit        VARCHAR(10) NOT NULL DEFAULT 'kg',
	notes              TEXT,
	extras             JSONB NOT NULL DEFAULT '{}'::jsonb
);
CREATE INDEX IF NOT EXISTS execution_exercises_session_idx ON execution_exercises (session_id, execution_order);
CREATE INDEX IF NOT EXISTS execution_exercises_exercise_idx ON execution_exercises (exercise_id, status);
`

// Migrate ensures tables and indexes exist. Safe to run on every start.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
