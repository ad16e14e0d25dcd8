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

type friendship struct {
	ID        uuid.UUID `db:"id"`
	User1ID   uuid.UUID `db:"user1_id"`
	User2ID   uuid.UUID `db:"user2_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (f friendship) toModel() model.Friendship {
	return model.Friendship{
		ID:        f.ID,
		User1ID:   f.User1ID,
		User2ID:   f.User2ID,
		CreatedAt: f.CreatedAt,
	}
}

// pairPredicate matches the edge in either column order.
func pairPredicate(user1ID, user2ID uuid.UUID) squirrel.Or {
	return squirrel.Or{
		squirrel.Eq{"user1_id": user1ID, "user2_id": user2ID},
		squirrel.Eq{"user1_id": user2ID, "user2_id": user1ID},
	}
}

func memberPredicate(userID uuid.UUID) squirrel.Or {
	return squirrel.Or{
		squirrel.Eq{"user1_id": userID},
		squirrel.Eq{"user2_id": userID},
	}
}

func (r *Repository) GetFriendship(ctx context.Context, user1ID, user2ID uuid.UUID) (*model.Friendship, error) {
	query, args, err := squirrel.
		Select("*").
		From("friendships").
		Where(pairPredicate(user1ID, user2ID)).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var f friendship
	err = r.db.GetContext(ctx, &f, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	m := f.toModel()
	return &m, nil
}

func (r *Repository) CreateFriendship(ctx context.Context, user1ID, user2ID uuid.UUID) (*model.Friendship, error) {
	now := time.Now().UTC()
	id := uuid.New()

	query, args, err := squirrel.
		Insert("friendships").
		SetMap(map[string]interface{}{
			"id":         id,
			"user1_id":   user1ID,
			"user2_id":   user2ID,
			"created_at": now,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build friendship insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to insert friendship: %w", err)
	}

	return &model.Friendship{ID: id, User1ID: user1ID, User2ID: user2ID, CreatedAt: now}, nil
}

func (r *Repository) DeleteFriendship(ctx context.Context, id uuid.UUID) error {
	query, args, err := squirrel.
		Delete("friendships").
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete friendship: %w", err)
	}

	affected, err := res.RowsAffected()
	if err == nil && affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountFriendships counts the user's edges, optionally restricted to a
// creation-time range. Zero from/to means unbounded.
func (r *Repository) CountFriendships(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	builder := squirrel.
		Select("COUNT(*)").
		From("friendships").
		Where(memberPredicate(userID))
	if !from.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"created_at": from})
	}
	if !to.IsZero() {
		builder = builder.Where(squirrel.LtOrEq{"created_at": to})
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count friendships: %w", err)
	}
	return count, nil
}

// ListFriendships returns the user's edges ordered by creation time. Zero
// from/to means unbounded; limit <= 0 disables pagination.
func (r *Repository) ListFriendships(ctx context.Context, userID uuid.UUID, from, to time.Time, offset, limit int) ([]model.Friendship, error) {
	builder := squirrel.
		Select("*").
		From("friendships").
		Where(memberPredicate(userID)).
		OrderBy("created_at ASC")
	if !from.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"created_at": from})
	}
	if !to.IsZero() {
		builder = builder.Where(squirrel.LtOrEq{"created_at": to})
	}
	if limit > 0 {
		builder = builder.Offset(uint64(offset)).Limit(uint64(limit))
	}

	query, args, err := builder.PlaceholderFormat(squirrel.Dollar).ToSql()
	if err != nil {
		return nil, err
	}

	var friendships []friendship
	err = r.db.SelectContext(ctx, &friendships, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list friendships: %w", err)
	}

	list := make([]model.Friendship, len(friendships))
	for i, f := range friendships {
		list[i] = f.toModel()
	}
	return list, nil
}
