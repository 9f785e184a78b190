package postgres

import (
	"context"
	"fmt"
	"log"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// Schema bootstrap for activation without explicit migrations. Additive and
// idempotent: tables are created if absent, then each foreign key is added
// individually after an information-schema existence check. A duplicate
// object error from a racing bootstrap is tolerated as success.

var createTables = []string{
	`CREATE TABLE IF NOT EXISTS quiz (
		id BIGSERIAL PRIMARY KEY,
		event_id VARCHAR(128) NOT NULL,
		title VARCHAR(512) NOT NULL,
		description VARCHAR(4096),
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		created_by VARCHAR(255),
		created_at TIMESTAMPTZ,
		updated_at TIMESTAMPTZ,
		CONSTRAINT uq_quiz_event_id UNIQUE (event_id)
	)`,
	`CREATE TABLE IF NOT EXISTS quiz_question (
		id BIGSERIAL PRIMARY KEY,
		quiz_id BIGINT NOT NULL,
		"position" INT,
		question_text VARCHAR(4096),
		question_type VARCHAR(64),
		options_json TEXT,
		correct_answer_json TEXT,
		points INT
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_question_quiz_id ON quiz_question (quiz_id)`,
	`CREATE TABLE IF NOT EXISTS quiz_submission (
		id BIGSERIAL PRIMARY KEY,
		quiz_id BIGINT NOT NULL,
		event_id VARCHAR(128) NOT NULL,
		user_id VARCHAR(255),
		score INT,
		max_score INT,
		percentage INT,
		success BOOLEAN NOT NULL DEFAULT FALSE,
		answers_json TEXT,
		submitted_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_submission_quiz_id ON quiz_submission (quiz_id)`,
	`CREATE INDEX IF NOT EXISTS idx_quiz_submission_event_id ON quiz_submission (event_id)`,
}

type constraintDef struct {
	table string
	name  string
	ddl   string
}

var foreignKeys = []constraintDef{
	{
		table: "quiz_question",
		name:  "fk_quiz_question_quiz_id",
		ddl: `ALTER TABLE quiz_question ADD CONSTRAINT fk_quiz_question_quiz_id
			FOREIGN KEY (quiz_id) REFERENCES quiz (id) ON DELETE CASCADE`,
	},
	{
		table: "quiz_submission",
		name:  "fk_quiz_submission_quiz_id",
		ddl: `ALTER TABLE quiz_submission ADD CONSTRAINT fk_quiz_submission_quiz_id
			FOREIGN KEY (quiz_id) REFERENCES quiz (id) ON DELETE CASCADE`,
	},
}

// duplicate_object and duplicate_table SQLSTATEs; a concurrent bootstrap may
// add the constraint between our check and our ALTER.
func isDuplicateObject(err error) bool {
	switch sqlState(err) {
	case "42710", "42P07":
		return true
	}
	return false
}

// EnsureSchema creates the quiz tables and foreign keys if they are missing.
// On an unsupported engine it logs and skips instead of failing, so the
// service can still come up against a database it does not manage.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db.Dialect().Name() != dialect.PG {
		log.Printf("quiz schema bootstrap skipped: unsupported dialect %s", db.Dialect().Name())
		return nil
	}

	for _, ddl := range createTables {
		if _, err := db.ExecContext(ctx, ddl); err != nil {
			return fmt.Errorf("create quiz tables: %w", err)
		}
	}

	for _, fk := range foreignKeys {
		if err := ensureConstraint(ctx, db, fk); err != nil {
			return err
		}
	}
	return nil
}

func ensureConstraint(ctx context.Context, db *bun.DB, fk constraintDef) error {
	exists, err := constraintExists(ctx, db, fk.table, fk.name)
	if err != nil {
		return fmt.Errorf("check constraint %s: %w", fk.name, err)
	}
	if exists {
		return nil
	}
	if _, err := db.ExecContext(ctx, fk.ddl); err != nil {
		if isDuplicateObject(err) {
			log.Printf("constraint %s already exists on %s", fk.name, fk.table)
			return nil
		}
		return fmt.Errorf("add constraint %s: %w", fk.name, err)
	}
	return nil
}

func constraintExists(ctx context.Context, db *bun.DB, table, name string) (bool, error) {
	var count int
	err := db.NewRaw(
		`SELECT COUNT(*) FROM information_schema.table_constraints
		 WHERE constraint_schema = current_schema() AND table_name = ? AND constraint_name = ?`,
		table, name,
	).Scan(ctx, &count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
