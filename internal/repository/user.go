package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/NaePawat/zentry-backend-challenge/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
)

// Column orderings accepted by GetUsersByIDs.
const (
	OrderByNetworkStrength = "network_strength DESC"
	OrderByReferralPoints  = "referral_points DESC"
)

type user struct {
	ID              uuid.UUID `db:"id"`
	Username        string    `db:"username"`
	NetworkStrength int       `db:"network_strength"`
	ReferralPoints  int       `db:"referral_points"`
	CreatedAt       time.Time `db:"created_at"`
}

func (u user) toModel() model.User {
	return model.User{
		ID:              u.ID,
		Username:        u.Username,
		NetworkStrength: u.NetworkStrength,
		ReferralPoints:  u.ReferralPoints,
		CreatedAt:       u.CreatedAt,
	}
}

// CreateUser inserts a user with zeroed aggregates. A username collision is
// reported as ErrAlreadyExists so callers can treat re-registration as a
// benign duplicate.
func (r *Repository) CreateUser(ctx context.Context, username string) (*model.User, error) {
	now := time.Now().UTC()
	id := uuid.New()

	query, args, err := squirrel.
		Insert("users").
		SetMap(map[string]interface{}{
			"id":               id,
			"username":         username,
			"network_strength": 0,
			"referral_points":  0,
			"created_at":       now,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	return &model.User{ID: id, Username: username, CreatedAt: now}, nil
}

func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"username": username}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u user
	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m := u.toModel()
	return &m, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var u user
	err = r.db.GetContext(ctx, &u, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m := u.toModel()
	return &m, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]model.User, error) {
	query, args, err := squirrel.
		Select("*").
		From("users").
		OrderBy("created_at ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []user
	err = r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	list := make([]model.User, len(users))
	for i, u := range users {
		list[i] = u.toModel()
	}
	return list, nil
}

func (r *Repository) GetUsersByIDs(ctx context.Context, ids []uuid.UUID, orderBy string) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"id": ids}).
		OrderBy(orderBy).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []user
	err = r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get users by ids: %w", err)
	}

	list := make([]model.User, len(users))
	for i, u := range users {
		list[i] = u.toModel()
	}
	return list, nil
}

func (r *Repository) GetTopUsersByIDs(ctx context.Context, ids []uuid.UUID, limit int) ([]model.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query, args, err := squirrel.
		Select("*").
		From("users").
		Where(squirrel.Eq{"id": ids}).
		OrderBy(OrderByNetworkStrength).
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var users []user
	err = r.db.SelectContext(ctx, &users, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get top users: %w", err)
	}

	list := make([]model.User, len(users))
	for i, u := range users {
		list[i] = u.toModel()
	}
	return list, nil
}

// UpdateUserCounters applies signed deltas to the cached aggregates through a
// single atomic UPDATE. Concurrent handlers rely on this being the only way
// the aggregates ever change.
func (r *Repository) UpdateUserCounters(ctx context.Context, id uuid.UUID, strengthDelta, pointsDelta int) error {
	builder := squirrel.Update("users").Where(squirrel.Eq{"id": id})
	if strengthDelta != 0 {
		builder = builder.Set("network_strength", squirrel.Expr("network_strength + ?", strengthDelta))
	}
	if pointsDelta != 0 {
		builder = builder.Set("referral_points", squirrel.Expr("referral_points + ?", pointsDelta))
	}
	if strengthDelta == 0 && pointsDelta == 0 {
		return nil
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user counters: %w", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}
