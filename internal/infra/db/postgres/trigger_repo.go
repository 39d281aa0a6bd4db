package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/analysis-gateway/internal/domain/triggers"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_triggers (
  id          VARCHAR(36)  PRIMARY KEY,
  user_id     VARCHAR(128) NOT NULL,
  email       VARCHAR(255) NOT NULL,
  analysis_id VARCHAR(64)  NOT NULL,
  status      VARCHAR(32)  NOT NULL,
  message     TEXT         NOT NULL DEFAULT '',
  file_name   VARCHAR(255) NOT NULL DEFAULT '',
  duration_ms BIGINT       NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ  NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_analysis_triggers_user_created
  ON analysis_triggers (user_id, created_at DESC);`

type TriggerRepository struct{ db *sql.DB }

func NewTriggerRepository(db *sql.DB) *TriggerRepository { return &TriggerRepository{db: db} }

func (r *TriggerRepository) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save inserts or updates a trigger record
func (r *TriggerRepository) Save(ctx context.Context, t *domain.Trigger) error {
	const q = `
INSERT INTO analysis_triggers
(id, user_id, email, analysis_id, status, message, file_name, duration_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
ON CONFLICT (id) DO UPDATE SET
 status = EXCLUDED.status,
 message = EXCLUDED.message,
 duration_ms = EXCLUDED.duration_ms;`

	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q,
		t.ID, stringOrDash(t.UserID), stringOrDash(t.Email), stringOrDash(t.AnalysisID),
		stringOrDash(string(t.Status)), t.Message, t.FileName, t.DurationMS, created,
	)
	return err
}

// Latest lists the newest triggers of one user
func (r *TriggerRepository) Latest(ctx context.Context, userID string, limit int) ([]*domain.Trigger, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT id, user_id, email, analysis_id, status, message, file_name, duration_ms, created_at
FROM analysis_triggers
WHERE user_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]*domain.Trigger, 0, limit)
	for rows.Next() {
		var t domain.Trigger
		var status string
		if err := rows.Scan(&t.ID, &t.UserID, &t.Email, &t.AnalysisID, &status,
			&t.Message, &t.FileName, &t.DurationMS, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Status = domain.Status(status)
		out = append(out, &t)
	}
	return out, rows.Err()
}

func stringOrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
