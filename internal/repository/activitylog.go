package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

type activityLog struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Amount    int       `db:"amount"`
	Reason    string    `db:"reason"`
	CreatedAt time.Time `db:"created_at"`
}

// UserActivitySum is one groupBy row of the leaderboard aggregation.
type UserActivitySum struct {
	UserID uuid.UUID `db:"user_id"`
	Total  int       `db:"total"`
}

func (r *Repository) AppendActivityLog(ctx context.Context, userID uuid.UUID, amount int, reason model.LogReason) error {
	query, args, err := squirrel.
		Insert("activity_logs").
		SetMap(map[string]interface{}{
			"id":         uuid.New(),
			"user_id":    userID,
			"amount":     amount,
			"reason":     string(reason),
			"created_at": time.Now().UTC(),
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build activity log insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to insert activity log: %w", err)
	}
	return nil
}

func (r *Repository) ListActivityLog(ctx context.Context) ([]model.ActivityLogEntry, error) {
	query, args, err := squirrel.
		Select("*").
		From("activity_logs").
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var logs []activityLog
	err = r.db.SelectContext(ctx, &logs, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity logs: %w", err)
	}

	list := make([]model.ActivityLogEntry, len(logs))
	for i, l := range logs {
		list[i] = model.ActivityLogEntry{
			ID:        l.ID,
			UserID:    l.UserID,
			Amount:    l.Amount,
			Reason:    model.LogReason(l.Reason),
			CreatedAt: l.CreatedAt,
		}
	}
	return list, nil
}

// SumActivityByUser groups log rows by user and sums the signed amounts
// within the time range, best totals first. An empty reason matches all rows.
func (r *Repository) SumActivityByUser(ctx context.Context, from, to time.Time, reason model.LogReason, limit int) ([]UserActivitySum, error) {
	builder := squirrel.
		Select("user_id", "SUM(amount) AS total").
		From("activity_logs").
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.LtOrEq{"created_at": to}).
		GroupBy("user_id").
		OrderBy("total DESC").
		Limit(uint64(limit))
	if reason != "" {
		builder = builder.Where(squirrel.Eq{"reason": string(reason)})
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	var sums []UserActivitySum
	err = r.db.SelectContext(ctx, &sums, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate activity logs: %w", err)
	}
	return sums, nil
}
