package sqlite

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/bryanwahyu/analysis-gateway/internal/domain/triggers"
)

type triggerRow struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"size:128;not null;index:idx_user_created,priority:1"`
	Email      string    `gorm:"size:255;not null"`
	AnalysisID string    `gorm:"size:64;not null"`
	Status     string    `gorm:"size:32;not null"`
	Message    string    `gorm:"not null;default:''"`
	FileName   string    `gorm:"size:255;not null;default:''"`
	DurationMS int64     `gorm:"not null;default:0"`
	CreatedAt  time.Time `gorm:"not null;index:idx_user_created,priority:2"`
}

func (triggerRow) TableName() string { return "analysis_triggers" }

type TriggerRepository struct{ db *gorm.DB }

func NewTriggerRepository(db *gorm.DB) *TriggerRepository { return &TriggerRepository{db: db} }

func (r *TriggerRepository) Save(ctx context.Context, t *domain.Trigger) error {
	created := t.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	row := triggerRow{
		ID:         t.ID,
		UserID:     dash(t.UserID),
		Email:      dash(t.Email),
		AnalysisID: dash(t.AnalysisID),
		Status:     dash(string(t.Status)),
		Message:    t.Message,
		FileName:   t.FileName,
		DurationMS: t.DurationMS,
		CreatedAt:  created.UTC(),
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"status", "message", "duration_ms"}),
	}).Create(&row).Error
}

func (r *TriggerRepository) Latest(ctx context.Context, userID string, limit int) ([]*domain.Trigger, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []triggerRow
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Trigger, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.Trigger{
			ID:         row.ID,
			UserID:     row.UserID,
			Email:      row.Email,
			AnalysisID: row.AnalysisID,
			Status:     domain.Status(row.Status),
			Message:    row.Message,
			FileName:   row.FileName,
			DurationMS: row.DurationMS,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}

func dash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
