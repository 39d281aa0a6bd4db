package triggers

import "context"

// Repository port for the trigger log
type Repository interface {
	Save(ctx context.Context, t *Trigger) error
	Latest(ctx context.Context, userID string, limit int) ([]*Trigger, error)
}
